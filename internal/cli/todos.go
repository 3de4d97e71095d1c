package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"taskpad-cli/internal/model"
	"taskpad-cli/internal/todo"
)

func newTodosCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "todos",
		Aliases: []string{"todo"},
		Short:   "Todo commands",
	}

	cmd.AddCommand(newTodosListCmd(app))
	cmd.AddCommand(newTodosShowCmd(app))
	cmd.AddCommand(newTodosAddCmd(app))
	cmd.AddCommand(newTodosEditCmd(app))
	cmd.AddCommand(newTodosDoneCmd(app, true))
	cmd.AddCommand(newTodosDoneCmd(app, false))
	cmd.AddCommand(newTodosRmCmd(app))
	cmd.AddCommand(newTodosStatsCmd(app))

	return cmd
}

func parseTodoID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid todo id: %q", arg)
	}
	return id, nil
}

func newTodosListCmd(app *App) *cobra.Command {
	var filterArg string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.requireAuth(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			filter, ok := todo.ParseFilter(filterArg)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown filter: %s (want all|pending|completed|high)", filterArg))
			}
			items, err := e.todos.Load(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, todo.Filtered(items, filter))
		},
	}

	cmd.Flags().StringVarP(&filterArg, "filter", "f", "all", "Filter (all|pending|completed|high)")
	return cmd
}

func newTodosShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.requireAuth(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := parseTodoID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			item, err := e.api.Todo(cmd.Context(), id)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, item)
		},
	}
}

func newTodosAddCmd(app *App) *cobra.Command {
	var draft model.TodoDraft

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a todo",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.requireAuth(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := e.todos.Create(cmd.Context(), draft); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"message": "todo created",
				"stats":   e.todos.Stats(),
			})
		},
	}

	cmd.Flags().StringVarP(&draft.Title, "title", "t", "", "Title")
	cmd.Flags().StringVarP(&draft.Description, "description", "d", "", "Description (1-100 chars)")
	cmd.Flags().IntVarP(&draft.Priority, "priority", "p", 3, "Priority 1 (low) - 5 (critical)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newTodosEditCmd(app *App) *cobra.Command {
	var title string
	var description string
	var priority int

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a todo (unset fields keep their current value)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.requireAuth(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := parseTodoID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := e.todos.Load(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			item, ok := e.todos.Find(id)
			if !ok {
				return writeErr(cmd, todo.ErrNotFound)
			}

			update := model.UpdateOf(item)
			if cmd.Flags().Changed("title") {
				update.Title = title
			}
			if cmd.Flags().Changed("description") {
				update.Description = description
			}
			if cmd.Flags().Changed("priority") {
				update.Priority = priority
			}

			if err := e.todos.Update(cmd.Context(), id, update); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"message": "todo updated"})
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "New priority (1-5)")
	return cmd
}

func newTodosDoneCmd(app *App, complete bool) *cobra.Command {
	use := "done <id>"
	short := "Mark a todo complete"
	if !complete {
		use = "undone <id>"
		short = "Mark a todo pending again"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.requireAuth(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := parseTodoID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := e.todos.Load(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			if err := e.todos.Toggle(cmd.Context(), id, complete); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"message": "todo updated",
				"stats":   e.todos.Stats(),
			})
		},
	}
}

func newTodosRmCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.requireAuth(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := parseTodoID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete todo %d? [y/N] ", id))
				if err != nil {
					return writeErr(cmd, err)
				}
				if !ok {
					return writeOut(cmd, app, map[string]any{"message": "cancelled"})
				}
			}
			if err := e.todos.Delete(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"message": "todo deleted",
				"stats":   e.todos.Stats(),
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newTodosStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show todo counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.requireAuth(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := e.todos.Load(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, e.todos.Stats())
		},
	}
}

func confirm(cmd *cobra.Command, label string) (bool, error) {
	line, err := promptLine(cmd, label)
	if err != nil {
		return false, nil // EOF/empty means "no"
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
