package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"taskpad-cli/internal/session"
	"taskpad-cli/internal/store"
	"taskpad-cli/internal/todo"
)

// Run starts the interactive TUI. It is a pure view over the session manager
// and todo store: every mutation goes through them, and session invalidation
// arrives as an event (the manager's OnInvalidated subscription), never as a
// direct UI manipulation from the API layer.
func Run(sess *session.Manager, todos *todo.Store, cfg *store.Config) error {
	m := newAppModel(sess, todos, cfg)
	sess.OnInvalidated(func(reason session.InvalidateReason) {
		// Callbacks fire on whatever goroutine hit the 401; hand the event
		// to the update loop through the channel. Non-blocking: repeat
		// invalidations beyond the buffer carry no extra information.
		select {
		case m.invalidated <- reason:
		default:
		}
	})
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
