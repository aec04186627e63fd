package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrusme/planr/model"
	"github.com/mrusme/planr/query"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "task",
		Aliases: []string{"t", "tasks"},
		Short:   "Manage tasks",
	}
	cmd.AddCommand(newTaskAddCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskShowCmd())
	cmd.AddCommand(newTaskEditCmd())
	cmd.AddCommand(newTaskDeleteCmd())
	cmd.AddCommand(newTaskScheduleCmd())
	return cmd
}

// taskFlags holds the editable task fields shared by add and edit.
type taskFlags struct {
	description string
	project     string
	urgency     string
	deadline    string
	taskType    string
	categories  []string
	schedule    string
}

func (f *taskFlags) register(cmd *cobra.Command, defaultUrgency string) {
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&f.project, "project", "p", "", "project name or id")
	cmd.Flags().StringVarP(&f.urgency, "urgency", "u", defaultUrgency, "urgency: low, medium or high")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "deadline date or date-time")
	cmd.Flags().StringVarP(&f.taskType, "type", "t", "", "free-text task type")
	cmd.Flags().StringSliceVarP(&f.categories, "category", "c", nil, "category name or id (repeatable)")
	cmd.Flags().StringVarP(&f.schedule, "schedule", "s", "", "calendar day to schedule the task on")
}

// apply copies every flag the user set onto t.
func (f *taskFlags) apply(cmd *cobra.Command, a *app, t *model.Task, now time.Time) error {
	changed := cmd.Flags().Changed

	if changed("description") {
		t.Description = f.description
	}
	if changed("project") {
		id, err := resolveProject(a.state.Projects(), f.project)
		if err != nil {
			return err
		}
		t.Project = id
	}
	if changed("urgency") || (t.Urgency == "" && f.urgency != "") {
		u, ok := model.ParseUrgency(f.urgency)
		if !ok {
			return fmt.Errorf("invalid urgency %q", f.urgency)
		}
		t.Urgency = u
	}
	if changed("deadline") {
		t.Deadline = ""
		if f.deadline != "" {
			d, err := parseDeadline(f.deadline, now)
			if err != nil {
				return err
			}
			t.Deadline = d
		}
	}
	if changed("type") {
		t.Type = f.taskType
	}
	if changed("category") {
		ids, err := resolveCategories(a.state.Categories(), f.categories)
		if err != nil {
			return err
		}
		t.Categories = ids
	}
	if changed("schedule") {
		t.ScheduledDate = ""
		if f.schedule != "" {
			day, err := parseDayArg(f.schedule, now)
			if err != nil {
				return err
			}
			t.ScheduledDate = day.Format(model.DateLayout)
		}
	}
	return nil
}

func newTaskAddCmd() *cobra.Command {
	var f taskFlags

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Example: `  planr task add "Write report" -p Work -u high -t writing -c "Deep work"
  planr task add "Dentist" --schedule 2024-03-15`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return fmt.Errorf("title must not be empty")
			}
			t := model.Task{Title: args[0], Categories: []string{}}
			if err := f.apply(cmd, a, &t, time.Now()); err != nil {
				return err
			}

			added, err := a.state.AddTask(t)
			if err != nil {
				return a.failed(err)
			}
			if outputJson {
				return writeJSON(os.Stdout, added)
			}
			fmt.Printf("Added task %s\n", added.ID)
			return nil
		}),
	}
	f.register(cmd, string(model.UrgencyMedium))
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var (
		filter     query.Filter
		urgency    string
		project    string
		categories []string
		sortBy     string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, optionally filtered and sorted",
		Example: `  planr task list --search report
  planr task list --urgency high --sort deadline
  planr task list --category errands --category quick --sort title:desc`,
		Args: cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if urgency != "" {
				u, ok := model.ParseUrgency(urgency)
				if !ok {
					return fmt.Errorf("invalid urgency %q", urgency)
				}
				filter.Urgency = u
			}

			var err error
			if filter.Project, err = resolveProject(a.state.Projects(), project); err != nil {
				return err
			}
			if filter.Categories, err = resolveCategories(a.state.Categories(), categories); err != nil {
				return err
			}
			sort, err := query.ParseSort(sortBy)
			if err != nil {
				return err
			}

			tasks := query.Apply(a.state.Tasks(), filter, sort)
			projects, cats := a.state.Projects(), a.state.Categories()
			views := make([]taskView, 0, len(tasks))
			for _, t := range tasks {
				views = append(views, viewTask(t, projects, cats))
			}

			if outputJson {
				return writeJSON(os.Stdout, views)
			}
			if len(views) == 0 {
				fmt.Println("No tasks found. Create one with: planr task add \"Your task\"")
				return nil
			}
			printTaskTable(os.Stdout, views)
			return nil
		}),
	}
	cmd.Flags().StringVar(&filter.Search, "search", "", "case-insensitive text in title or description")
	cmd.Flags().StringVarP(&project, "project", "p", "", "project name or id")
	cmd.Flags().StringVarP(&urgency, "urgency", "u", "", "urgency: low, medium or high")
	cmd.Flags().StringVarP(&filter.Type, "type", "t", "", "task type")
	cmd.Flags().StringSliceVarP(&categories, "category", "c", nil, "category name or id; any match counts (repeatable)")
	cmd.Flags().StringVar(&sortBy, "sort", "none", "none, createdAt, deadline, urgency or field[:asc|desc]")
	return cmd
}

func newTaskShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			t, err := resolveTask(a.state.Tasks(), args[0])
			if err != nil {
				return err
			}
			v := viewTask(t, a.state.Projects(), a.state.Categories())
			if outputJson {
				return writeJSON(os.Stdout, v)
			}
			printTask(os.Stdout, v)
			return nil
		}),
	}
}

func newTaskEditCmd() *cobra.Command {
	var (
		f     taskFlags
		title string
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Long: `Change fields of a task. Only the flags given are changed; the whole
record is then written back. Pass an empty value to clear an optional field,
e.g. --schedule "".`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			t, err := resolveTask(a.state.Tasks(), args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("title") {
				if title == "" {
					return fmt.Errorf("title must not be empty")
				}
				t.Title = title
			}
			if err := f.apply(cmd, a, &t, time.Now()); err != nil {
				return err
			}

			updated, err := a.state.UpdateTask(t)
			if err != nil {
				return a.failed(err)
			}
			if outputJson {
				return writeJSON(os.Stdout, updated)
			}
			fmt.Printf("Updated task %s\n", updated.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	f.register(cmd, "")
	return cmd
}

func newTaskDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			t, err := resolveTask(a.state.Tasks(), args[0])
			if err != nil {
				return err
			}
			if _, err := a.state.DeleteTask(t.ID); err != nil {
				return a.failed(err)
			}
			fmt.Printf("Deleted task %s\n", t.ID)
			return nil
		}),
	}
}

func newTaskScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <id> <date>",
		Short: "Move a task onto a calendar day",
		Example: `  planr task schedule 1f3a tomorrow
  planr task schedule 1f3a 2024-03-15`,
		Args: cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			t, err := resolveTask(a.state.Tasks(), args[0])
			if err != nil {
				return err
			}
			day, err := parseDayArg(args[1], time.Now())
			if err != nil {
				return err
			}

			moved, err := a.state.RescheduleTask(t.ID, day)
			if err != nil {
				return a.failed(err)
			}
			if outputJson {
				return writeJSON(os.Stdout, moved)
			}
			fmt.Printf("Scheduled %q on %s\n", moved.Title, moved.ScheduledDate)
			return nil
		}),
	}
}
