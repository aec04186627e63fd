package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrusme/planr/model"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"p", "projects"},
		Short:   "Manage projects",
	}
	cmd.AddCommand(newProjectAddCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectEditCmd())
	cmd.AddCommand(newProjectDeleteCmd())
	return cmd
}

func newProjectAddCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a project",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return fmt.Errorf("name must not be empty")
			}
			p, err := a.state.AddProject(model.Project{Name: args[0], Color: color})
			if err != nil {
				return a.failed(err)
			}
			if outputJson {
				return writeJSON(os.Stdout, p)
			}
			fmt.Printf("Added project %s\n", p.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&color, "color", "", "display colour, e.g. #3366ff")
	return cmd
}

func newProjectListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			projects := a.state.Projects()
			if outputJson {
				return writeJSON(os.Stdout, projects)
			}
			if len(projects) == 0 {
				fmt.Println("No projects found. Create one with: planr project add \"Name\"")
				return nil
			}

			counts := map[string]int{}
			for _, t := range a.state.Tasks() {
				counts[t.Project]++
			}
			fmt.Println(headStyle.Render(cell("ID", 38) + cell("TASKS", 7) + "NAME"))
			for _, p := range projects {
				fmt.Println(cell(p.ID, 38) + cell(fmt.Sprint(counts[p.ID]), 7) + swatch(p.Color) + p.Name)
			}
			return nil
		}),
	}
}

func newProjectEditCmd() *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:   "edit <name|id>",
		Short: "Rename or recolour a project",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := resolveProject(a.state.Projects(), args[0])
			if err != nil {
				return err
			}
			p, _ := a.state.FindProject(id)
			if cmd.Flags().Changed("name") {
				if name == "" {
					return fmt.Errorf("name must not be empty")
				}
				p.Name = name
			}
			if cmd.Flags().Changed("color") {
				p.Color = color
			}

			p, err = a.state.UpdateProject(p)
			if err != nil {
				return a.failed(err)
			}
			if outputJson {
				return writeJSON(os.Stdout, p)
			}
			fmt.Printf("Updated project %s\n", p.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new display colour")
	return cmd
}

func newProjectDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name|id>",
		Aliases: []string{"rm"},
		Short:   "Delete a project",
		Long: `Delete a project. Tasks that belong to it keep their reference and
show no project afterwards.`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			id, err := resolveProject(a.state.Projects(), args[0])
			if err != nil {
				return err
			}
			if _, err := a.state.DeleteProject(id); err != nil {
				return a.failed(err)
			}
			fmt.Printf("Deleted project %s\n", id)
			return nil
		}),
	}
}
