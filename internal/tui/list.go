package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"taskpad-cli/internal/store"
	"taskpad-cli/internal/todo"
)

func (m *appModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.confirming != nil {
		return m.updateConfirm(key)
	}

	switch key.String() {
	case "q", "esc":
		return m, tea.Quit

	case "up", "k":
		m.cursor--
		m.clampCursor()
	case "down", "j":
		m.cursor++
		m.clampCursor()

	case "a":
		m.setFilter(todo.FilterAll)
	case "p":
		m.setFilter(todo.FilterPending)
	case "c":
		m.setFilter(todo.FilterCompleted)
	case "h":
		m.setFilter(todo.FilterHigh)

	case "R":
		m.busy = true
		return m, m.loadCmd()

	case " ", "x":
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.busy = true
		s := m.todos
		id, target := item.ID, !item.Complete
		return m, func() tea.Msg {
			err := s.Toggle(context.Background(), id, target)
			notice := "Marked pending"
			if target {
				notice = "Marked complete"
			}
			return actionDoneMsg{notice: notice, err: err}
		}

	case "n":
		m.form = newFormModel(nil)
		m.view = viewForm
		return m, m.form.focusCmd()

	case "e":
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.form = newFormModel(&item)
		m.view = viewForm
		return m, m.form.focusCmd()

	case "d":
		item, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.confirming = &confirmState{todoID: item.ID, title: item.Title}

	case "enter":
		if _, ok := m.selected(); ok {
			m.view = viewDetail
		}

	case "L":
		// The manager's invalidation event brings us back to the login view.
		sess := m.sess
		return m, func() tea.Msg {
			_ = sess.Logout(context.Background())
			return nil
		}
	}

	return m, nil
}

func (m *appModel) setFilter(f todo.Filter) {
	m.filter = f
	m.cursor = 0
	// Remember the filter for the next launch. Best effort.
	if m.cfg != nil {
		if m.cfg.TUI == nil {
			m.cfg.TUI = &store.TUIConfig{}
		}
		m.cfg.TUI.Filter = string(f)
		_ = store.SaveConfig(m.cfg)
	}
}

func (m *appModel) updateConfirm(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirming
	switch key.String() {
	case "y", "enter":
		m.confirming = nil
		m.busy = true
		s := m.todos
		id := c.todoID
		return m, func() tea.Msg {
			return actionDoneMsg{notice: "Todo deleted", err: s.Delete(context.Background(), id)}
		}
	case "n", "esc":
		m.confirming = nil
	}
	return m, nil
}

func (m *appModel) listView() string {
	var b strings.Builder
	b.WriteString(m.headerView() + "\n\n")

	if m.confirming != nil {
		body := fmt.Sprintf("Delete %q?\n\n%s",
			m.confirming.title,
			styleMuted.Render("y/enter: delete   n/esc: cancel"))
		b.WriteString(styleModal.Render(body))
		return b.String()
	}

	vis := m.visible()
	if len(vis) == 0 {
		b.WriteString(styleMuted.Render("Nothing here. Press n to add a todo, or a/p/c/h to switch filters."))
	}
	for i, item := range vis {
		mark := "[ ]"
		if item.Complete {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %-4d %s  %s", mark, item.ID, item.Title,
			styleMuted.Render(todo.PriorityLabel(item.Priority)))
		switch {
		case i == m.cursor:
			line = styleSelected.Render(line)
		case item.Complete:
			line = styleDone.Render(line)
		case item.Priority >= 4:
			line = styleUrgent.Render(line)
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + m.statsView() + "\n")
	b.WriteString(styleMuted.Render("space: toggle   n: new   e: edit   d: delete   enter: detail   a/p/c/h: filter   R: reload   q: quit"))
	return b.String()
}
