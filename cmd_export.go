package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrusme/planr/calendar"
	"github.com/mrusme/planr/taskwarrior"
)

const defaultExportFile = "tasks.ics"

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks to other tools",
	}
	cmd.AddCommand(newExportICSCmd())
	cmd.AddCommand(newExportTaskwarriorCmd())
	return cmd
}

func newExportICSCmd() *cobra.Command {
	var output string

	return withOutputFlag(&cobra.Command{
		Use:   "ics",
		Short: "Export scheduled tasks as an iCalendar file",
		Long: `Export every scheduled task as an all-day event. Tasks without a
scheduled date are left out. Use -o - to write to stdout.`,
		Args: cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			var buf bytes.Buffer
			err := calendar.Export(&buf, a.state.Tasks(), calendar.ExportOptions{
				Name:  a.cfg.Calendar.Name,
				Stamp: time.Now(),
			})
			if errors.Is(err, calendar.ErrNothingScheduled) {
				fmt.Println("Nothing to export. Schedule a task with: planr task schedule <id> <date>")
				return nil
			}
			if err != nil {
				return fmt.Errorf("export calendar: %w", err)
			}
			return writeOutput(output, buf.Bytes())
		}),
	}, &output, defaultExportFile)
}

func newExportTaskwarriorCmd() *cobra.Command {
	var output string

	return withOutputFlag(&cobra.Command{
		Use:     "taskwarrior",
		Aliases: []string{"tw"},
		Short:   "Export tasks as Taskwarrior import JSON",
		Example: `  planr export taskwarrior | task import`,
		Args:    cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			conv := taskwarrior.Converter{
				Projects:   a.state.Projects(),
				Categories: a.state.Categories(),
				Location:   time.Local,
			}
			var buf bytes.Buffer
			if err := conv.Export(&buf, a.state.Tasks()); err != nil {
				return fmt.Errorf("export taskwarrior: %w", err)
			}
			return writeOutput(output, buf.Bytes())
		}),
	}, &output, "-")
}

func withOutputFlag(cmd *cobra.Command, output *string, def string) *cobra.Command {
	cmd.Flags().StringVarP(output, "output", "o", def, "output file, - for stdout")
	return cmd
}

func writeOutput(path string, b []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(b)
		return err
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", path)
	return nil
}
