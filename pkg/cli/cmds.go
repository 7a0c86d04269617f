package cli

import (
	"github.com/spf13/cobra"

	"simpletasks/pkg/commands"
)

func (a *app) newAddCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Long: `Add a task. A +name tag in the title picks the category by name.

Examples:
  simpletasks add "Buy milk"
  simpletasks add "Prepare slides +work" -d "for the monday sync"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			_, err := commands.HandleAddTask(cmd.Context(), a.backend, out(cmd), args[0], description)
			return err
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	return cmd
}

func (a *app) newListCmd() *cobra.Command {
	var status, category string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			return commands.HandleList(a.backend, out(cmd), status, category)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "all", "all, active or completed")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category name or id")
	return cmd
}

func (a *app) newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Flip a task between done and not done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			return commands.HandleToggle(cmd.Context(), a.backend, out(cmd), args[0])
		},
	}
}

func (a *app) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			return commands.HandleRemove(cmd.Context(), a.backend, out(cmd), args[0])
		},
	}
}

func (a *app) newCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			return commands.HandleCategoryAdd(cmd.Context(), a.backend, out(cmd), args[0], color)
		},
	}
	add.Flags().StringVar(&color, "color", "", "hex color, e.g. #84cc16")

	rm := &cobra.Command{
		Use:   "rm <name-or-id>",
		Short: "Delete a category; its tasks move to General",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			return commands.HandleCategoryRemove(cmd.Context(), a.backend, out(cmd), args[0])
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			commands.HandleCategoryList(a.backend, out(cmd))
			return nil
		},
	}

	cmd.AddCommand(add, rm, list)
	return cmd
}

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a markdown checklist",
		Long: `Import a markdown checklist. "Work:" or "## Work" lines select the
category for the tasks below them; "- [x]" marks a task done.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			_, err := commands.HandleImportCommand(cmd.Context(), a.backend, out(cmd), args[0])
			return err
		},
	}
}

func (a *app) newExportCmd() *cobra.Command {
	var exportType string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export tasks to json, txt, yaml or xlsx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			return commands.HandleExportCommand(a.backend, out(cmd), args[0], exportType)
		},
	}
	cmd.Flags().StringVarP(&exportType, "type", "t", "json", "export file type (json, txt, yaml, xlsx)")
	return cmd
}

func (a *app) newPurgeCmd() *cobra.Command {
	var doneOnly, yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete all tasks, or only completed ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(cmd.Context()); err != nil {
				return err
			}
			_, err := commands.HandlePurge(cmd.Context(), a.backend, cmd.InOrStdin(), out(cmd), doneOnly, yes)
			return err
		},
	}
	cmd.Flags().BoolVar(&doneOnly, "done", false, "only delete completed tasks")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}
