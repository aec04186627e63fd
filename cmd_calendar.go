package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrusme/planr/calendar"
	"github.com/mrusme/planr/model"
)

type calendarDay struct {
	Date  string       `json:"date"`
	Tasks []model.Task `json:"tasks"`
}

func newCalendarCmd() *cobra.Command {
	var (
		view   string
		date   string
		offset int
	)

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show scheduled tasks by week or month",
		Example: `  planr calendar
  planr calendar --view month --offset -1
  planr calendar --date 2024-03-15`,
		Args: cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			v, err := calendar.ParseView(view)
			if err != nil {
				return err
			}

			now := time.Now()
			current := calendar.StartOfDay(now)
			if date != "" {
				if current, err = parseDayArg(date, now); err != nil {
					return err
				}
			}
			for ; offset > 0; offset-- {
				current = calendar.Next(v, current)
			}
			for ; offset < 0; offset++ {
				current = calendar.Previous(v, current)
			}

			days, err := calendar.Days(v, current, a.cfg.Calendar.WeekStart)
			if err != nil {
				return err
			}
			tasks := a.state.Tasks()
			grid := make([]calendarDay, 0, len(days))
			for _, day := range days {
				grid = append(grid, calendarDay{
					Date:  day.Format(model.DateLayout),
					Tasks: calendar.TasksForDay(tasks, day),
				})
			}

			if outputJson {
				return writeJSON(os.Stdout, grid)
			}
			printCalendar(os.Stdout, v, current, days, grid, now)
			return nil
		}),
	}
	cmd.Flags().StringVar(&view, "view", string(calendar.Week), "week or month")
	cmd.Flags().StringVar(&date, "date", "", "day to show the week or month of (default today)")
	cmd.Flags().IntVar(&offset, "offset", 0, "weeks or months to move forward (negative moves back)")
	return cmd
}

func printCalendar(w io.Writer, v calendar.View, current time.Time, days []time.Time, grid []calendarDay, now time.Time) {
	if v == calendar.Month {
		fmt.Fprintln(w, headStyle.Render(current.Format("January 2006")))
	} else {
		fmt.Fprintln(w, headStyle.Render(fmt.Sprintf("%s to %s",
			days[0].Format("Jan 2"), days[len(days)-1].Format("Jan 2, 2006"))))
	}

	for i, day := range days {
		tasks := grid[i].Tasks
		if v == calendar.Month && len(tasks) == 0 {
			continue
		}

		label := day.Format("Mon Jan 02")
		if day.Equal(calendar.StartOfDay(now)) {
			label = todayStyle.Render(label + " (today)")
		} else {
			label = headStyle.Render(label)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, label)

		if len(tasks) == 0 {
			fmt.Fprintln(w, dimStyle.Render("  nothing scheduled"))
			continue
		}
		for _, t := range tasks {
			fmt.Fprintf(w, "  %s %s %s\n",
				cell(shortID(t.ID), 10),
				cell(viewTask(t, nil, nil).urgency(), 8),
				truncate(strings.TrimSpace(t.Title), 50))
		}
	}
}
