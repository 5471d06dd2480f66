package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all client key bindings with built-in help text.
type KeyMap struct {
	// Global
	Quit      key.Binding
	ForceQuit key.Binding
	Escape    key.Binding
	Admin     key.Binding

	// Navigation
	NextView   key.Binding
	PrevView   key.Binding
	Home       key.Binding
	Album      key.Binding
	Invitation key.Binding
	NextLink   key.Binding
	Follow     key.Binding

	// Scrolling
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Actions
	Form    key.Binding
	Upload  key.Binding
	Refresh key.Binding
	Toggle  key.Binding
	Submit  key.Binding
	Field   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "force quit"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Admin: key.NewBinding(
			key.WithKeys("ctrl+a"),
		),

		NextView: key.NewBinding(
			key.WithKeys("]", "right"),
			key.WithHelp("]/→", "next section"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("[", "left"),
			key.WithHelp("[/←", "prev section"),
		),
		Home: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "home"),
		),
		Album: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "album"),
		),
		Invitation: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "invitation"),
		),
		NextLink: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next link"),
		),
		Follow: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "follow link"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", " "),
			key.WithHelp("pgdn", "page down"),
		),

		Form: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "open form"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upload photos"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "toggle attendance"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "send"),
		),
		Field: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "next field"),
		),
	}
}

// ShortHelp is shown in the status line of the site page.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextView, k.NextLink, k.Follow, k.Form, k.Upload, k.Quit}
}
