package tui

import "github.com/charmbracelet/lipgloss"

// Styles for the full-screen menu
type Styles struct {
	Header  lipgloss.Style
	Title   lipgloss.Style
	Cursor  lipgloss.Style
	Item    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	History lipgloss.Style
}

// NewStyles builds the menu styles for r. A renderer with the Ascii profile
// renders them without color.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1),
		Title: r.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true),
		Cursor: r.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true),
		Item: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")),
		Success: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		Error: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		Info: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		History: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#626262")),
	}
}
