package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/heyojules/invite/internal/model"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type formState int

const (
	formIdle formState = iota
	formSending
	formSent
)

// form is a column of labelled text inputs with one focused.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
	state  formState
}

func newForm(fields ...[2]string) *form {
	f := &form{}
	for _, fd := range fields {
		in := textinput.New()
		in.Placeholder = fd[1]
		in.CharLimit = model.MaxTextLength
		f.labels = append(f.labels, fd[0])
		f.inputs = append(f.inputs, in)
	}
	f.inputs[0].Focus()
	return f
}

func (f *form) value(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

func (f *form) reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
		f.inputs[i].Blur()
	}
	f.focus = 0
	f.inputs[0].Focus()
	f.state = formIdle
}

func (f *form) update(msg tea.KeyMsg, keys KeyMap) tea.Cmd {
	if f.state == formSending {
		return nil
	}
	if key.Matches(msg, keys.Field) {
		f.inputs[f.focus].Blur()
		if msg.String() == "shift+tab" {
			f.focus = (f.focus + len(f.inputs) - 1) % len(f.inputs)
		} else {
			f.focus = (f.focus + 1) % len(f.inputs)
		}
		return f.inputs[f.focus].Focus()
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) view(button string) string {
	var b strings.Builder
	for i, in := range f.inputs {
		b.WriteString(labelStyle.Render(f.labels[i]))
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	btn := activeTabStyle
	switch f.state {
	case formSending:
		btn = tabStyle
	case formSent:
		btn = activeTabStyle.Background(ColorGreen)
	}
	b.WriteString(btn.Render(button))
	return b.String()
}

// rsvpForm is the invitation view's confirmation form.
type rsvpForm struct {
	*form
	declining bool
}

const (
	rsvpName = iota
	rsvpGuests
	rsvpNotes
)

func newRSVPForm() *rsvpForm {
	f := &rsvpForm{form: newForm(
		[2]string{"Nombre completo", "Nombre completo"},
		[2]string{"Pases", "1"},
		[2]string{"Notas", "Restricciones alimentarias, canción favorita..."},
	)}
	f.inputs[rsvpGuests].CharLimit = 2
	f.inputs[rsvpGuests].Validate = func(s string) error {
		if s == "" {
			return nil
		}
		if _, err := strconv.Atoi(s); err != nil {
			return fmt.Errorf("pases: %w", err)
		}
		return nil
	}
	return f
}

// submission returns the RSVP to send, or false when the name is blank.
func (f *rsvpForm) submission() (model.RSVP, bool) {
	name := f.value(rsvpName)
	if name == "" {
		return model.RSVP{}, false
	}
	r := model.RSVP{
		Name:       name,
		Attendance: model.AttendanceYes,
		Guests:     1,
		Notes:      f.value(rsvpNotes),
	}
	if n, err := strconv.Atoi(f.value(rsvpGuests)); err == nil {
		r.Guests = n
	}
	if f.declining {
		r.Attendance = model.AttendanceNo
	}
	return r, true
}

func (f *rsvpForm) reset() {
	f.form.reset()
	f.declining = false
}

func (f *rsvpForm) view(button string) string {
	yes, no := "(•) Sí asistiré", "( ) No podré asistir"
	if f.declining {
		yes, no = "( ) Sí asistiré", "(•) No podré asistir"
	}
	return labelStyle.Render("Asistencia") + "\n" + yes + "   " + no + "\n\n" + f.form.view(button)
}

// guestbookForm is the home view's wall form.
type guestbookForm struct {
	*form
}

func newGuestbookForm() *guestbookForm {
	return &guestbookForm{form: newForm(
		[2]string{"Tu nombre", "Tu nombre"},
		[2]string{"Tu deseo", "Tu deseo"},
	)}
}

func (f *guestbookForm) submission() (model.GuestbookEntry, bool) {
	e := model.GuestbookEntry{Name: f.value(0), Message: f.value(1)}
	return e, e.Name != "" && e.Message != ""
}
