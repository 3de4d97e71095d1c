package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskpad-cli/internal/api"
	"taskpad-cli/internal/format"
	"taskpad-cli/internal/session"
	"taskpad-cli/internal/store"
	"taskpad-cli/internal/todo"
	"taskpad-cli/internal/tui"
)

type App struct {
	Server     string
	Format     string
	PrettyJSON bool
	Verbose    bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskpad",
		Short:        "Terminal client for the todo service (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  taskpad

  # Scriptable commands
  taskpad login
  taskpad todos list --filter pending

  # Direct todo lookup (shortcut for: taskpad todos show <id>)
  taskpad 42
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if app.Verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", envOr("TASKPAD_SERVER", ""), "Base URL of the todo service (default: config.json serverUrl, then http://localhost:8000)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKPAD_FORMAT", ""), "Output format (json|table)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Verbose (debug) logging")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newPasswdCmd(app))
	cmd.AddCommand(newPhoneCmd(app))
	cmd.AddCommand(newTodosCmd(app))
	cmd.AddCommand(newAdminCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

// env is the environment the commands run against: the wired-together core
// (credential store -> api client -> session manager -> todo store).
type env struct {
	cfg   *store.Config
	creds store.Credentials
	api   *api.Client
	sess  *session.Manager
	todos *todo.Store
}

func (app *App) bootstrap(ctx context.Context) (*env, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	server := app.Server
	if server == "" {
		server = cfg.ServerURL
	}
	if app.Format == "" {
		app.Format = cfg.Format
	}

	creds := store.Credentials{}
	client := api.New(server)
	sess := session.NewManager(creds, client, slog.Default())
	if err := sess.Restore(ctx); err != nil {
		return nil, err
	}
	return &env{
		cfg:   cfg,
		creds: creds,
		api:   client,
		sess:  sess,
		todos: todo.NewStore(client),
	}, nil
}

func (app *App) requireAuth(ctx context.Context) (*env, error) {
	e, err := app.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	if !e.sess.Authenticated() {
		return nil, errNotLoggedIn()
	}
	return e, nil
}

func runTUI(app *App) error {
	e, err := app.bootstrap(context.Background())
	if err != nil {
		return err
	}
	return tui.Run(e.sess, e.todos, e.cfg)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
