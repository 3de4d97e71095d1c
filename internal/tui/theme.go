package tui

import "github.com/charmbracelet/lipgloss"

// Palette helpers. The TUI must remain readable on both light and dark
// terminal backgrounds, so everything goes through AdaptiveColor.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted    = ac("240", "243")
	colorAccent   = ac("27", "39") // blue
	colorDanger   = ac("124", "203")
	colorSuccess  = ac("28", "42")
	colorSelected = ac("#e9e9e9", "#262626")
	colorDone     = ac("245", "240")
	colorUrgent   = ac("130", "214") // priority >= 4
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true)

	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)

	styleSelected = lipgloss.NewStyle().Background(colorSelected).Bold(true)

	styleDone = lipgloss.NewStyle().Foreground(colorDone).Strikethrough(true)

	styleUrgent = lipgloss.NewStyle().Foreground(colorUrgent)

	styleNoticeOK = lipgloss.NewStyle().Foreground(colorSuccess)

	styleNoticeErr = lipgloss.NewStyle().Foreground(colorDanger)

	styleHeader = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	styleModal = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(1, 2)
)
