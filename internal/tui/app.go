package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"taskpad-cli/internal/model"
	"taskpad-cli/internal/session"
	"taskpad-cli/internal/store"
	"taskpad-cli/internal/todo"
)

type view int

const (
	viewLogin view = iota
	viewRegister
	viewList
	viewDetail
	viewForm
)

// Messages produced by commands. Results always come back as messages so all
// state changes happen on the single update loop.
type (
	todosMsg struct {
		items []model.TodoItem
		err   error
	}
	actionDoneMsg struct {
		notice string
		err    error
	}
	loginDoneMsg struct {
		err error
	}
	registerDoneMsg struct {
		err error
	}
	invalidatedMsg struct {
		reason session.InvalidateReason
	}
	noticeExpiredMsg struct {
		seq int
	}
)

const noticeTimeout = 5 * time.Second

type appModel struct {
	sess  *session.Manager
	todos *todo.Store
	cfg   *store.Config

	width  int
	height int

	view   view
	filter todo.Filter
	items  []model.TodoItem
	cursor int
	busy   bool

	notice     string
	noticeErr  bool
	noticeSeq  int
	spin       spinner.Model
	login      loginModel
	register   registerModel
	form       formModel
	confirming *confirmState

	invalidated chan session.InvalidateReason
}

type confirmState struct {
	todoID int
	title  string
	admin  bool
}

func newAppModel(sess *session.Manager, todos *todo.Store, cfg *store.Config) *appModel {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	filter := todo.FilterAll
	if cfg != nil && cfg.TUI != nil {
		if f, ok := todo.ParseFilter(cfg.TUI.Filter); ok {
			filter = f
		}
	}

	m := &appModel{
		sess:        sess,
		todos:       todos,
		cfg:         cfg,
		filter:      filter,
		spin:        sp,
		login:       newLoginModel(),
		register:    newRegisterModel(),
		invalidated: make(chan session.InvalidateReason, 4),
	}
	if sess.Authenticated() {
		m.view = viewList
	} else {
		m.view = viewLogin
	}
	return m
}

func (m *appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitInvalidated(), m.spin.Tick}
	if m.view == viewList {
		m.busy = true
		cmds = append(cmds, m.loadCmd())
	} else {
		cmds = append(cmds, m.login.focusCmd())
	}
	return tea.Batch(cmds...)
}

func (m *appModel) waitInvalidated() tea.Cmd {
	ch := m.invalidated
	return func() tea.Msg {
		return invalidatedMsg{reason: <-ch}
	}
}

func (m *appModel) loadCmd() tea.Cmd {
	s := m.todos
	return func() tea.Msg {
		items, err := s.Load(context.Background())
		return todosMsg{items: items, err: err}
	}
}

func (m *appModel) setNotice(text string, isErr bool) tea.Cmd {
	m.notice = text
	m.noticeErr = isErr
	m.noticeSeq++
	seq := m.noticeSeq
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return noticeExpiredMsg{seq: seq}
	})
}

// visible is the filtered projection the list renders. Filtering is pure;
// the snapshot itself is never reordered or trimmed.
func (m *appModel) visible() []model.TodoItem {
	return todo.Filtered(m.items, m.filter)
}

func (m *appModel) clampCursor() {
	n := len(m.visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *appModel) selected() (model.TodoItem, bool) {
	vis := m.visible()
	if m.cursor < 0 || m.cursor >= len(vis) {
		return model.TodoItem{}, false
	}
	return vis[m.cursor], true
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case invalidatedMsg:
		// Forced logout (401) or voluntary logout. In-flight results that
		// arrive after this are stale and harmless: the list view is gone.
		m.view = viewLogin
		m.login = newLoginModel()
		m.items = nil
		m.cursor = 0
		m.busy = false
		m.confirming = nil
		notice := "Logged out"
		isErr := false
		if msg.reason == session.ReasonExpired {
			notice = "Session expired. Please login again."
			isErr = true
		}
		return m, tea.Batch(m.setNotice(notice, isErr), m.waitInvalidated(), m.login.focusCmd())

	case noticeExpiredMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil

	case todosMsg:
		m.busy = false
		if msg.err != nil {
			// Snapshot is unchanged on failure; keep showing what we have.
			return m, m.setNotice(msg.err.Error(), true)
		}
		m.items = msg.items
		m.clampCursor()
		return m, nil

	case actionDoneMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.setNotice(msg.err.Error(), true)
		}
		m.items = m.todos.Items()
		m.clampCursor()
		if m.view == viewForm {
			m.view = viewList
		}
		return m, m.setNotice(msg.notice, false)

	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.setNotice(msg.err.Error(), true)
		}
		m.view = viewList
		m.busy = true
		user, _ := m.sess.User()
		return m, tea.Batch(m.setNotice("Welcome, "+user.Username, false), m.loadCmd())

	case registerDoneMsg:
		m.busy = false
		if msg.err != nil {
			return m, m.setNotice(msg.err.Error(), true)
		}
		// Registration never authenticates; back to the login form.
		m.view = viewLogin
		m.login = newLoginModel()
		return m, tea.Batch(m.setNotice("Registration successful! Please login.", false), m.login.focusCmd())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	switch m.view {
	case viewLogin:
		return m.updateLogin(msg)
	case viewRegister:
		return m.updateRegister(msg)
	case viewForm:
		return m.updateForm(msg)
	case viewDetail:
		return m.updateDetail(msg)
	default:
		return m.updateList(msg)
	}
}

func (m *appModel) View() string {
	var body string
	switch m.view {
	case viewLogin:
		body = m.loginView()
	case viewRegister:
		body = m.registerView()
	case viewForm:
		body = m.formView()
	case viewDetail:
		body = m.detailView()
	default:
		body = m.listView()
	}

	lines := []string{body}
	if m.notice != "" {
		st := styleNoticeOK
		if m.noticeErr {
			st = styleNoticeErr
		}
		lines = append(lines, "", st.Render(m.notice))
	}
	return strings.Join(lines, "\n")
}

func (m *appModel) headerView() string {
	title := styleHeader.Render("taskpad")
	who := ""
	if user, ok := m.sess.User(); ok {
		who = styleMuted.Render("  " + user.Username)
		if user.IsAdmin() {
			who += styleMuted.Render(" (admin)")
		}
	}
	busy := ""
	if m.busy {
		busy = "  " + m.spin.View()
	}
	return title + who + busy
}

func (m *appModel) statsView() string {
	s := todo.StatsOf(m.items)
	return styleMuted.Render(fmt.Sprintf("%d total · %d pending · %d completed · filter: %s",
		s.Total, s.Pending, s.Completed, m.filter))
}
