package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskpad-cli/internal/model"
)

// Add/edit form field order.
const (
	formTitle = iota
	formDescription
	formPriority
	formFieldCount
)

type formModel struct {
	inputs []textinput.Model
	focus  int

	// editID is nil for creation. For edits we keep the complete flag from
	// the snapshot item so the full-update payload reproduces it.
	editID   *int
	complete bool
}

func newFormModel(item *model.TodoItem) formModel {
	title := textinput.New()
	title.Placeholder = "title"
	title.CharLimit = 100

	desc := textinput.New()
	desc.Placeholder = "description (1-100 chars)"
	desc.CharLimit = 100

	prio := textinput.New()
	prio.Placeholder = "priority 1-5"
	prio.CharLimit = 1

	f := formModel{inputs: []textinput.Model{title, desc, prio}}
	if item != nil {
		id := item.ID
		f.editID = &id
		f.complete = item.Complete
		f.inputs[formTitle].SetValue(item.Title)
		f.inputs[formDescription].SetValue(item.Description)
		f.inputs[formPriority].SetValue(strconv.Itoa(item.Priority))
	}
	return f
}

func (f *formModel) focusCmd() tea.Cmd {
	return f.inputs[f.focus].Focus()
}

func (f *formModel) cycle(delta int) tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (m *appModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			m.view = viewList
			return m, nil
		case "tab", "down":
			return m, m.form.cycle(1)
		case "shift+tab", "up":
			return m, m.form.cycle(-1)
		case "enter":
			if m.form.focus < formFieldCount-1 {
				return m, m.form.cycle(1)
			}
			return m.submitForm()
		}
	}

	var cmd tea.Cmd
	m.form.inputs[m.form.focus], cmd = m.form.inputs[m.form.focus].Update(msg)
	return m, cmd
}

func (m *appModel) submitForm() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.form.inputs[formTitle].Value())
	desc := strings.TrimSpace(m.form.inputs[formDescription].Value())
	prio, err := strconv.Atoi(strings.TrimSpace(m.form.inputs[formPriority].Value()))
	if err != nil {
		return m, m.setNotice("Priority must be a number from 1 to 5", true)
	}

	m.busy = true
	s := m.todos

	if m.form.editID == nil {
		draft := model.TodoDraft{Title: title, Description: desc, Priority: prio}
		return m, func() tea.Msg {
			return actionDoneMsg{notice: "Todo created", err: s.Create(context.Background(), draft)}
		}
	}

	id := *m.form.editID
	update := model.TodoUpdate{Title: title, Description: desc, Priority: prio, Complete: m.form.complete}
	return m, func() tea.Msg {
		return actionDoneMsg{notice: "Todo updated", err: s.Update(context.Background(), id, update)}
	}
}

func (m *appModel) formView() string {
	var b strings.Builder
	b.WriteString(m.headerView() + "\n\n")
	heading := "New todo"
	if m.form.editID != nil {
		heading = "Edit todo"
	}
	b.WriteString(styleTitle.Render(heading) + "\n\n")
	for _, in := range m.form.inputs {
		b.WriteString("  " + in.View() + "\n")
	}
	b.WriteString("\n" + styleMuted.Render("enter: next/save   esc: cancel"))
	return b.String()
}
