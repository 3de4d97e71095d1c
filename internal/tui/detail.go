package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"taskpad-cli/internal/todo"
)

func (m *appModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q", "enter", "backspace":
			m.view = viewList
		}
	}
	return m, nil
}

func (m *appModel) detailView() string {
	item, ok := m.selected()
	if !ok {
		return m.headerView() + "\n\n" + styleMuted.Render("Nothing selected")
	}

	var b strings.Builder
	b.WriteString(m.headerView() + "\n\n")
	b.WriteString(styleTitle.Render(item.Title) + "\n")

	state := "pending"
	if item.Complete {
		state = "completed"
	}
	b.WriteString(styleMuted.Render(fmt.Sprintf("#%d · %s · %s", item.ID, todo.PriorityLabel(item.Priority), state)) + "\n\n")

	b.WriteString(m.renderDescription(item.Description))
	b.WriteString("\n" + styleMuted.Render("esc: back"))
	return b.String()
}

// renderDescription renders the description as markdown. Descriptions are
// plain short strings most of the time; on any render failure we fall back
// to the raw text rather than surfacing an error.
func (m *appModel) renderDescription(desc string) string {
	if strings.TrimSpace(desc) == "" {
		return styleMuted.Render("(no description)") + "\n"
	}
	width := m.width
	if width <= 0 || width > 100 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width-4))
	if err != nil {
		return desc + "\n"
	}
	out, err := r.Render(desc)
	if err != nil {
		return desc + "\n"
	}
	return out
}
