package tui

import "github.com/charmbracelet/lipgloss"

// Palette. Gold and ivory follow the printed invitation.
var (
	ColorNavy  = lipgloss.Color("17")
	ColorGold  = lipgloss.Color("178")
	ColorIvory = lipgloss.Color("230")
	ColorGray  = lipgloss.Color("244")
	ColorWhite = lipgloss.Color("15")
	ColorRed   = lipgloss.Color("196")
	ColorGreen = lipgloss.Color("41")
	ColorBlue  = lipgloss.Color("39")
)

var (
	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	activeSectionStyle = sectionStyle.
				BorderForeground(ColorGold)

	tabStyle = lipgloss.NewStyle().
			Foreground(ColorGray).
			Padding(0, 2)

	activeTabStyle = tabStyle.
			Foreground(ColorNavy).
			Background(ColorGold).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(ColorWhite)

	helpStyle = lipgloss.NewStyle().Foreground(ColorGray)

	labelStyle = lipgloss.NewStyle().Foreground(ColorGold).Bold(true)

	errorStyle = lipgloss.NewStyle().Foreground(ColorRed)
)
