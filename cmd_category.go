package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrusme/planr/model"
)

func newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"c", "categories"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(newCategoryAddCmd())
	cmd.AddCommand(newCategoryListCmd())
	cmd.AddCommand(newCategoryEditCmd())
	cmd.AddCommand(newCategoryDeleteCmd())
	return cmd
}

// resolveCategory accepts a category id or a case-insensitive name.
func resolveCategory(categories []model.Category, ref string) (model.Category, error) {
	ids, err := resolveCategories(categories, []string{ref})
	if err != nil {
		return model.Category{}, err
	}
	c, _ := model.FindCategory(categories, ids[0])
	return c, nil
}

func newCategoryAddCmd() *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			if args[0] == "" {
				return fmt.Errorf("name must not be empty")
			}
			c, err := a.state.AddCategory(model.Category{Name: args[0], Color: color})
			if err != nil {
				return a.failed(err)
			}
			if outputJson {
				return writeJSON(os.Stdout, c)
			}
			fmt.Printf("Added category %s\n", c.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&color, "color", "", "display colour, e.g. #00aa00")
	return cmd
}

func newCategoryListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories",
		Args:    cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			categories := a.state.Categories()
			if outputJson {
				return writeJSON(os.Stdout, categories)
			}
			if len(categories) == 0 {
				fmt.Println("No categories found. Create one with: planr category add \"Name\"")
				return nil
			}

			counts := map[string]int{}
			for _, t := range a.state.Tasks() {
				for _, id := range t.Categories {
					counts[id]++
				}
			}
			fmt.Println(headStyle.Render(cell("ID", 38) + cell("TASKS", 7) + "NAME"))
			for _, c := range categories {
				fmt.Println(cell(c.ID, 38) + cell(fmt.Sprint(counts[c.ID]), 7) + swatch(c.Color) + c.Name)
			}
			return nil
		}),
	}
}

func newCategoryEditCmd() *cobra.Command {
	var name, color string

	cmd := &cobra.Command{
		Use:   "edit <name|id>",
		Short: "Rename or recolour a category",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			c, err := resolveCategory(a.state.Categories(), args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				if name == "" {
					return fmt.Errorf("name must not be empty")
				}
				c.Name = name
			}
			if cmd.Flags().Changed("color") {
				c.Color = color
			}

			c, err = a.state.UpdateCategory(c)
			if err != nil {
				return a.failed(err)
			}
			if outputJson {
				return writeJSON(os.Stdout, c)
			}
			fmt.Printf("Updated category %s\n", c.ID)
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&color, "color", "", "new display colour")
	return cmd
}

func newCategoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name|id>",
		Aliases: []string{"rm"},
		Short:   "Delete a category",
		Long: `Delete a category. Tasks keep the reference; it simply no longer
resolves to a name.`,
		Args: cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
			c, err := resolveCategory(a.state.Categories(), args[0])
			if err != nil {
				return err
			}
			if _, err := a.state.DeleteCategory(c.ID); err != nil {
				return a.failed(err)
			}
			fmt.Printf("Deleted category %s\n", c.ID)
			return nil
		}),
	}
}
