package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ToastKind picks a toast's accent color and icon.
type ToastKind int

const (
	ToastSuccess ToastKind = iota
	ToastError
	ToastInfo
	ToastWarning
)

// DefaultToastDuration is how long a toast stays up.
const DefaultToastDuration = 4 * time.Second

type toast struct {
	id   int
	kind ToastKind
	text string
}

type toastExpiredMsg struct{ id int }

// Toasts is a stack of auto-dismissing notifications drawn at the bottom
// of the screen.
type Toasts struct {
	items    []toast
	next     int
	duration time.Duration
}

// Push shows text and returns the command that dismisses it later.
func (t *Toasts) Push(kind ToastKind, text string) tea.Cmd {
	t.next++
	id := t.next
	t.items = append(t.items, toast{id: id, kind: kind, text: text})
	d := t.duration
	if d <= 0 {
		d = DefaultToastDuration
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

// Dismiss removes the toast with id, if it is still shown.
func (t *Toasts) Dismiss(id int) {
	for i, item := range t.items {
		if item.id == id {
			t.items = append(t.items[:i], t.items[i+1:]...)
			return
		}
	}
}

// Len is the number of toasts on screen.
func (t *Toasts) Len() int { return len(t.items) }

func (t *Toasts) View(width int) string {
	if len(t.items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.items))
	for _, item := range t.items {
		icon, color := "✓", ColorGold
		switch item.kind {
		case ToastError:
			icon, color = "✕", ColorRed
		case ToastInfo:
			icon, color = "i", ColorBlue
		case ToastWarning:
			icon, color = "!", lipgloss.Color("214")
		}
		style := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(color).
			Padding(0, 1).
			MaxWidth(width)
		lines = append(lines, style.Render(lipgloss.NewStyle().Foreground(color).Render(icon)+" "+item.text))
	}
	return strings.Join(lines, "\n")
}
