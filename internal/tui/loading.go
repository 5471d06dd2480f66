package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// renderLoadingPlaceholder centers a spinner frame and a label, shown while
// the first view is still being fetched.
func renderLoadingPlaceholder(frame, label string, width, height int) string {
	text := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true).
		Render(frame + " " + label)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, text)
}
