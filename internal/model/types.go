package model

import "time"

// Attendance is the answer a guest gives on the RSVP form.
type Attendance string

const (
	AttendanceYes Attendance = "yes"
	AttendanceNo  Attendance = "no"
)

// RSVP is one confirmation submitted from the invitation view.
// It is the canonical type for storage, transport (socket RPC), and display.
type RSVP struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Attendance Attendance `json:"attendance"`
	Guests     int        `json:"guests"` // passes requested; 0 when declining
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Attending reports whether the guest confirmed.
func (r RSVP) Attending() bool { return r.Attendance == AttendanceYes }

// GuestbookEntry is a wish left on the home view wall.
type GuestbookEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Photo describes an album upload. The encoded bytes live in the store and
// are fetched separately so listings stay small.
type Photo struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// PhotoUpload is a compressed image ready to be stored.
type PhotoUpload struct {
	ContentType string
	Width       int
	Height      int
	Data        []byte
}
