package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrusme/planr/model"
)

type status struct {
	Database  string         `json:"database"`
	Counts    map[string]int `json:"counts"`
	Scheduled int            `json:"scheduled"`
	Loading   bool           `json:"loading"`
	Error     string         `json:"error,omitempty"`
	Compacted bool           `json:"compacted,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var shrink bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show database location and record counts",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			st := status{
				Database: a.cfg.Database,
				Counts:   map[string]int{},
				Loading:  a.state.Loading(),
				Error:    a.state.Error(),
			}
			for _, key := range []string{model.KeyTasks, model.KeyProjects, model.KeyCategories} {
				n, err := a.db.Count(key)
				if err != nil {
					return err
				}
				st.Counts[key] = n
			}
			for _, t := range a.state.Tasks() {
				if t.ScheduledDate != "" {
					st.Scheduled++
				}
			}
			if shrink {
				if err := a.db.Shrink(); err != nil {
					return fmt.Errorf("compact database: %w", err)
				}
				st.Compacted = true
			}

			if outputJson {
				return writeJSON(os.Stdout, st)
			}
			row := func(label string, value any) {
				fmt.Printf("%s %v\n", headStyle.Render(cell(label, 12)), value)
			}
			row("Database", st.Database)
			row("Tasks", fmt.Sprintf("%d (%d scheduled)", st.Counts[model.KeyTasks], st.Scheduled))
			row("Projects", st.Counts[model.KeyProjects])
			row("Categories", st.Counts[model.KeyCategories])
			if st.Error != "" {
				row("Error", errorStyle.Render(st.Error))
			}
			if st.Compacted {
				row("Compacted", "yes")
			}
			return nil
		}),
	}
	cmd.Flags().BoolVar(&shrink, "shrink", false, "compact the database file")
	return cmd
}
