package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"taskpad-cli/internal/model"
)

func newLoginCmd(app *App) *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.bootstrap(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}

			u := strings.TrimSpace(username)
			if u == "" {
				u, err = promptLine(cmd, "Username: ")
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			p := password
			if p == "" {
				p, err = promptPassword(cmd, "Password: ")
				if err != nil {
					return writeErr(cmd, err)
				}
			}

			if err := e.sess.Login(cmd.Context(), u, p); err != nil {
				return writeErr(cmd, err)
			}
			user, _ := e.sess.User()
			return writeOut(cmd, app, map[string]any{
				"message":  "login successful",
				"username": user.Username,
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted when omitted)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted; prefer the prompt over shell history)")
	return cmd
}

func newRegisterCmd(app *App) *cobra.Command {
	var draft model.RegisterDraft
	var role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account (does not log in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.bootstrap(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if draft.Password == "" {
				p, err := promptPassword(cmd, "Password: ")
				if err != nil {
					return writeErr(cmd, err)
				}
				draft.Password = p
			}
			draft.Role = model.Role(role)

			if err := e.sess.Register(cmd.Context(), draft); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"message": "registration successful; run `taskpad login`",
			})
		},
	}

	cmd.Flags().StringVar(&draft.Username, "username", "", "Username")
	cmd.Flags().StringVar(&draft.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&draft.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&draft.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&draft.PhoneNumber, "phone", "", "Phone number")
	cmd.Flags().StringVar(&draft.Password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().StringVar(&role, "role", "user", "Role (user|admin)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.bootstrap(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if !e.sess.Authenticated() {
				return writeOut(cmd, app, map[string]any{"message": "already logged out"})
			}
			if err := e.sess.Logout(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"message": "logged out"})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.requireAuth(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			user, _ := e.sess.User()
			out := map[string]any{"user": user}
			if claims := e.sess.Claims(); claims != nil {
				tok := map[string]any{"role": claims.Role}
				if claims.ExpiresAt != nil {
					tok["expires_at"] = claims.ExpiresAt.Time.Format(time.RFC3339)
					tok["expired"] = claims.Expired(time.Now())
				}
				out["token"] = tok
			}
			return writeOut(cmd, app, out)
		},
	}
}

func newPasswdCmd(app *App) *cobra.Command {
	var oldPassword string
	var newPassword string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the account password",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.requireAuth(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			o := oldPassword
			if o == "" {
				if o, err = promptPassword(cmd, "Current password: "); err != nil {
					return writeErr(cmd, err)
				}
			}
			n := newPassword
			if n == "" {
				if n, err = promptPassword(cmd, "New password: "); err != nil {
					return writeErr(cmd, err)
				}
			}
			if err := e.sess.ChangePassword(cmd.Context(), o, n); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"message": "password updated"})
		},
	}

	cmd.Flags().StringVar(&oldPassword, "old", "", "Current password (prompted when omitted)")
	cmd.Flags().StringVar(&newPassword, "new", "", "New password (prompted when omitted)")
	return cmd
}

func newPhoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "phone <new-number>",
		Short: "Change the account phone number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := app.requireAuth(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := e.sess.ChangePhone(cmd.Context(), strings.TrimSpace(args[0])); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"message": "phone number updated"})
		},
	}
}

func promptLine(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	r := bufio.NewReader(cmd.InOrStdin())
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("empty input")
	}
	return line, nil
}

func promptPassword(cmd *cobra.Command, label string) (string, error) {
	// Hidden input needs a real terminal; fall back to a plain line read when
	// stdin is a pipe (scripts, tests).
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		if len(b) == 0 {
			return "", errors.New("empty password")
		}
		return string(b), nil
	}
	return promptLine(cmd, label)
}
