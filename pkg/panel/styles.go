package panel

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles the panel renders with.
type Styles struct {
	Title     lipgloss.Style
	Selected  lipgloss.Style
	Normal    lipgloss.Style
	Label     lipgloss.Style
	ToggleOn  lipgloss.Style
	ToggleOff lipgloss.Style
	Error     lipgloss.Style
	Button    lipgloss.Style
	Muted     lipgloss.Style
}

// DefaultStyles returns the default panel styles.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Selected:  lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true),
		Normal:    lipgloss.NewStyle(),
		Label:     lipgloss.NewStyle().Faint(true),
		ToggleOn:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		ToggleOff: lipgloss.NewStyle().Faint(true),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		Button:    lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()),
		Muted:     lipgloss.NewStyle().Faint(true),
	}
}
