package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrNotFound is returned by stores when a record id does not exist.
var ErrNotFound = errors.New("not found")

// ValidationError reports which field of a submission was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NormalizeRSVP trims free text and checks the submission. Declining guests
// always carry zero passes.
func NormalizeRSVP(r RSVP) (RSVP, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Notes = strings.TrimSpace(r.Notes)

	if r.Name == "" {
		return r, invalid("name", "required")
	}
	if utf8.RuneCountInString(r.Name) > MaxNameLength {
		return r, invalid("name", "too long")
	}
	if utf8.RuneCountInString(r.Notes) > MaxTextLength {
		return r, invalid("notes", "too long")
	}

	switch r.Attendance {
	case "":
		r.Attendance = AttendanceYes
	case AttendanceYes, AttendanceNo:
	default:
		return r, invalid("attendance", fmt.Sprintf("unknown value %q", r.Attendance))
	}

	if r.Attendance == AttendanceNo {
		r.Guests = 0
		return r, nil
	}
	if r.Guests < 1 || r.Guests > MaxGuestsPerRSVP {
		return r, invalid("guests", fmt.Sprintf("must be between 1 and %d", MaxGuestsPerRSVP))
	}
	return r, nil
}

// NormalizeGuestbookEntry trims and checks a wall message.
func NormalizeGuestbookEntry(e GuestbookEntry) (GuestbookEntry, error) {
	e.Name = strings.TrimSpace(e.Name)
	e.Message = strings.TrimSpace(e.Message)

	if e.Name == "" {
		return e, invalid("name", "required")
	}
	if utf8.RuneCountInString(e.Name) > MaxNameLength {
		return e, invalid("name", "too long")
	}
	if e.Message == "" {
		return e, invalid("message", "required")
	}
	if utf8.RuneCountInString(e.Message) > MaxTextLength {
		return e, invalid("message", "too long")
	}
	return e, nil
}
