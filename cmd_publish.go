package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrusme/planr/calendar"
	"github.com/mrusme/planr/dav"
)

func newPublishCmd() *cobra.Command {
	var calendarPath string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish scheduled tasks to a CalDAV calendar",
		Long: `Publish every scheduled task as an all-day event to a CalDAV server.
Each task becomes its own calendar object named after its UID, so publishing
again updates the events in place.

The server is taken from the caldav section of the config file or the
PLANR_CALDAV_* environment variables.`,
		Args: cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			cfg := a.cfg.CalDAV
			if !cfg.Configured() {
				return fmt.Errorf("no CalDAV endpoint configured, set caldav.endpoint")
			}

			events := calendar.Events(a.state.Tasks(), calendar.ExportOptions{
				Name:  a.cfg.Calendar.Name,
				Stamp: time.Now(),
			})
			if len(events) == 0 {
				fmt.Println("Nothing to publish.")
				return nil
			}

			d, err := dav.New(cfg.Endpoint, cfg.Username, cfg.Password, a.logger)
			if err != nil {
				return err
			}

			target := calendarPath
			if target == "" {
				target = cfg.Calendar
			}
			if target == "" {
				if err := d.RefreshCalendars(ctx); err != nil {
					return err
				}
				paths := d.CalendarPaths()
				if len(paths) == 0 {
					return fmt.Errorf("no calendars found for %s", cfg.Username)
				}
				target = paths[0]
				a.logger.Debug("publishing to first calendar", "path", target)
			}

			n, err := d.Publish(ctx, target, events)
			if err != nil {
				return fmt.Errorf("publish (%d of %d written): %w", n, len(events), err)
			}
			if outputJson {
				return writeJSON(os.Stdout, map[string]any{"calendar": target, "published": n})
			}
			fmt.Printf("Published %d events to %s\n", n, target)
			return nil
		}),
	}
	cmd.Flags().StringVar(&calendarPath, "calendar", "", "calendar collection path (default caldav.calendar)")
	return cmd
}
