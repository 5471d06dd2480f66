// Package storetest holds the behavior every model.Backend must show, run
// against each driver from its own package tests.
package storetest

import (
	"errors"
	"testing"
	"time"

	"github.com/heyojules/invite/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Clock hands out strictly increasing timestamps so newest-first ordering
// is deterministic even on coarse system clocks.
type Clock struct{ t time.Time }

// NewClock starts at a fixed instant.
func NewClock() *Clock {
	return &Clock{t: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)}
}

// Now advances by one second per call.
func (c *Clock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

// Run exercises a fresh backend from newBackend in each subtest.
func Run(t *testing.T, newBackend func(t *testing.T) model.Backend) {
	t.Run("RSVPRoundTrip", func(t *testing.T) {
		b := newBackend(t)

		saved, err := b.InsertRSVP(model.RSVP{Name: "  Ana Gómez ", Attendance: model.AttendanceYes, Guests: 2, Notes: "sin gluten"})
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
		assert.Equal(t, "Ana Gómez", saved.Name)
		assert.False(t, saved.CreatedAt.IsZero())

		_, err = b.InsertRSVP(model.RSVP{Name: "Luis", Attendance: model.AttendanceNo, Guests: 4})
		require.NoError(t, err)

		rows, err := b.ListRSVPs()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, saved.ID, rows[0].ID)
		assert.Equal(t, "sin gluten", rows[0].Notes)
		assert.True(t, rows[0].CreatedAt.Equal(saved.CreatedAt))
		assert.Equal(t, model.AttendanceNo, rows[1].Attendance)
		assert.Zero(t, rows[1].Guests)
	})

	t.Run("RSVPValidation", func(t *testing.T) {
		b := newBackend(t)

		_, err := b.InsertRSVP(model.RSVP{Name: "", Guests: 1})
		var ve *model.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, "name", ve.Field)

		rows, err := b.ListRSVPs()
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("GuestbookNewestFirst", func(t *testing.T) {
		b := newBackend(t)

		for _, msg := range []string{"primero", "segundo", "tercero"} {
			_, err := b.InsertGuestbookEntry(model.GuestbookEntry{Name: "Tía Marta", Message: msg})
			require.NoError(t, err)
		}

		entries, err := b.ListGuestbook(2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "tercero", entries[0].Message)
		assert.Equal(t, "segundo", entries[1].Message)

		require.NoError(t, b.DeleteGuestbookEntry(entries[0].ID))
		entries, err = b.ListGuestbook(0)
		require.NoError(t, err)
		assert.Len(t, entries, 2)

		err = b.DeleteGuestbookEntry("missing")
		assert.True(t, errors.Is(err, model.ErrNotFound))
	})

	t.Run("Photos", func(t *testing.T) {
		b := newBackend(t)

		_, err := b.InsertPhoto(model.PhotoUpload{ContentType: "image/jpeg"})
		require.Error(t, err)

		data := []byte{0xff, 0xd8, 0xff, 0xe0, 1, 2, 3}
		first, err := b.InsertPhoto(model.PhotoUpload{ContentType: "image/jpeg", Width: 800, Height: 600, Data: data})
		require.NoError(t, err)
		assert.Equal(t, int64(len(data)), first.Size)
		second, err := b.InsertPhoto(model.PhotoUpload{ContentType: "image/jpeg", Width: 600, Height: 800, Data: data[:4]})
		require.NoError(t, err)

		photos, err := b.ListPhotos(10)
		require.NoError(t, err)
		require.Len(t, photos, 2)
		assert.Equal(t, second.ID, photos[0].ID)

		p, got, err := b.PhotoData(first.ID)
		require.NoError(t, err)
		assert.Equal(t, data, got)
		assert.Equal(t, 800, p.Width)

		require.NoError(t, b.DeletePhoto(first.ID))
		_, _, err = b.PhotoData(first.ID)
		assert.True(t, errors.Is(err, model.ErrNotFound))
		assert.True(t, errors.Is(b.DeletePhoto(first.ID), model.ErrNotFound))
	})
}
