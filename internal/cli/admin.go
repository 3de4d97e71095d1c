package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAdminCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin commands (admin role required)",
	}

	todos := &cobra.Command{
		Use:   "todos",
		Short: "Admin todo commands",
	}
	todos.AddCommand(newAdminTodosListCmd(app))
	todos.AddCommand(newAdminTodosRmCmd(app))
	cmd.AddCommand(todos)

	return cmd
}

// adminEnv gates admin commands on the decoded token role. This is only a
// UX courtesy saving a doomed round-trip; the server is the real gate.
func (app *App) adminEnv(cmd *cobra.Command) (*env, error) {
	e, err := app.requireAuth(cmd.Context())
	if err != nil {
		return nil, err
	}
	if claims := e.sess.Claims(); claims != nil && claims.Role != "admin" {
		return nil, errAdminOnly(claims.Username())
	}
	return e, nil
}

func newAdminTodosListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every user's todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.adminEnv(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			items, err := e.todos.LoadAll(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, items)
		},
	}
}

func newAdminTodosRmCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete any user's todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.adminEnv(cmd)
			if err != nil {
				return writeErr(cmd, err)
			}
			id, err := parseTodoID(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete todo %d (admin, any owner)? [y/N] ", id))
				if err != nil {
					return writeErr(cmd, err)
				}
				if !ok {
					return writeOut(cmd, app, map[string]any{"message": "cancelled"})
				}
			}
			if err := e.todos.AdminDelete(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"message": "todo deleted"})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
