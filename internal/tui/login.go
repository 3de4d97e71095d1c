package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskpad-cli/internal/model"
)

type loginModel struct {
	inputs []textinput.Model
	focus  int
}

func newLoginModel() loginModel {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128

	return loginModel{inputs: []textinput.Model{username, password}}
}

func (l *loginModel) focusCmd() tea.Cmd {
	return l.inputs[l.focus].Focus()
}

func (l *loginModel) cycle(delta int) tea.Cmd {
	l.inputs[l.focus].Blur()
	l.focus = (l.focus + delta + len(l.inputs)) % len(l.inputs)
	return l.inputs[l.focus].Focus()
}

func (m *appModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			return m, tea.Quit
		case "tab", "down":
			return m, m.login.cycle(1)
		case "shift+tab", "up":
			return m, m.login.cycle(-1)
		case "ctrl+r":
			m.view = viewRegister
			m.register = newRegisterModel()
			return m, m.register.focusCmd()
		case "enter":
			username := strings.TrimSpace(m.login.inputs[0].Value())
			password := m.login.inputs[1].Value()
			if username == "" || password == "" {
				return m, m.setNotice("Username and password are required", true)
			}
			m.busy = true
			sess := m.sess
			return m, func() tea.Msg {
				return loginDoneMsg{err: sess.Login(context.Background(), username, password)}
			}
		}
	}

	var cmd tea.Cmd
	m.login.inputs[m.login.focus], cmd = m.login.inputs[m.login.focus].Update(msg)
	return m, cmd
}

func (m *appModel) loginView() string {
	var b strings.Builder
	b.WriteString(m.headerView() + "\n\n")
	b.WriteString(styleTitle.Render("Login") + "\n\n")
	b.WriteString("  " + m.login.inputs[0].View() + "\n")
	b.WriteString("  " + m.login.inputs[1].View() + "\n\n")
	b.WriteString(styleMuted.Render("enter: login   ctrl+r: register   esc: quit"))
	return b.String()
}

// Registration form field order.
const (
	regUsername = iota
	regEmail
	regFirstName
	regLastName
	regPhone
	regPassword
	regFieldCount
)

type registerModel struct {
	inputs []textinput.Model
	focus  int
}

func newRegisterModel() registerModel {
	labels := []string{"username", "email", "first name", "last name", "phone number", "password"}
	inputs := make([]textinput.Model, regFieldCount)
	for i, label := range labels {
		ti := textinput.New()
		ti.Placeholder = label
		ti.CharLimit = 128
		inputs[i] = ti
	}
	inputs[regPassword].EchoMode = textinput.EchoPassword
	inputs[regPassword].EchoCharacter = '•'
	return registerModel{inputs: inputs}
}

func (r *registerModel) focusCmd() tea.Cmd {
	return r.inputs[r.focus].Focus()
}

func (r *registerModel) cycle(delta int) tea.Cmd {
	r.inputs[r.focus].Blur()
	r.focus = (r.focus + delta + len(r.inputs)) % len(r.inputs)
	return r.inputs[r.focus].Focus()
}

func (r *registerModel) draft() model.RegisterDraft {
	return model.RegisterDraft{
		Username:    strings.TrimSpace(r.inputs[regUsername].Value()),
		Email:       strings.TrimSpace(r.inputs[regEmail].Value()),
		FirstName:   strings.TrimSpace(r.inputs[regFirstName].Value()),
		LastName:    strings.TrimSpace(r.inputs[regLastName].Value()),
		PhoneNumber: strings.TrimSpace(r.inputs[regPhone].Value()),
		Password:    r.inputs[regPassword].Value(),
		Role:        model.RoleUser,
	}
}

func (m *appModel) updateRegister(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.view = viewLogin
			m.login = newLoginModel()
			return m, m.login.focusCmd()
		case "tab", "down":
			return m, m.register.cycle(1)
		case "shift+tab", "up":
			return m, m.register.cycle(-1)
		case "enter":
			if m.register.focus < regFieldCount-1 {
				return m, m.register.cycle(1)
			}
			m.busy = true
			sess := m.sess
			draft := m.register.draft()
			return m, func() tea.Msg {
				return registerDoneMsg{err: sess.Register(context.Background(), draft)}
			}
		}
	}

	var cmd tea.Cmd
	m.register.inputs[m.register.focus], cmd = m.register.inputs[m.register.focus].Update(msg)
	return m, cmd
}

func (m *appModel) registerView() string {
	var b strings.Builder
	b.WriteString(m.headerView() + "\n\n")
	b.WriteString(styleTitle.Render("Register") + "\n\n")
	for _, in := range m.register.inputs {
		b.WriteString("  " + in.View() + "\n")
	}
	b.WriteString("\n" + styleMuted.Render("enter: next/submit   esc: back to login"))
	return b.String()
}
