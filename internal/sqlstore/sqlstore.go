// Package sqlstore implements the record operations shared by the DuckDB and
// SQLite backends. Both drivers accept ? placeholders and the schema in
// internal/migrate, so only opening, snapshotting, and closing differ.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/heyojules/invite/internal/model"

	"github.com/google/uuid"
)

// DefaultQueryTimeout bounds each statement unless the caller overrides it.
const DefaultQueryTimeout = 30 * time.Second

// Store runs the RSVP, guestbook, and photo queries against db.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	QueryTimeout time.Duration

	// Now stamps new records. Tests replace it for stable ordering.
	Now func() time.Time
}

// New wraps an already migrated database.
func New(db *sql.DB, queryTimeout time.Duration) *Store {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &Store{db: db, QueryTimeout: queryTimeout, Now: time.Now}
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB { return s.db }

// Exclusive runs fn while no query is in flight.
func (s *Store) Exclusive(fn func(db *sql.DB) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.db)
}

func (s *Store) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.QueryTimeout)
}

func (s *Store) stamp() (time.Time, int64) {
	t := s.Now().UTC().Truncate(time.Millisecond)
	return t, t.UnixMilli()
}

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func listLimit(limit int) int {
	if limit <= 0 {
		return model.DefaultListLimit
	}
	return limit
}

func (s *Store) exec(query string, args ...any) (sql.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()
	return s.db.ExecContext(ctx, query, args...)
}

func (s *Store) deleteByID(table, id string) error {
	res, err := s.exec("DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", table, id, model.ErrNotFound)
	}
	return nil
}

// InsertRSVP validates and stores a confirmation.
func (s *Store) InsertRSVP(r model.RSVP) (model.RSVP, error) {
	r, err := model.NormalizeRSVP(r)
	if err != nil {
		return r, err
	}
	r.ID = uuid.NewString()
	var ms int64
	r.CreatedAt, ms = s.stamp()

	_, err = s.exec(
		"INSERT INTO rsvps (id, name, attendance, guests, notes, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		r.ID, r.Name, string(r.Attendance), r.Guests, r.Notes, ms,
	)
	if err != nil {
		return r, fmt.Errorf("insert rsvp: %w", err)
	}
	return r, nil
}

// ListRSVPs returns every confirmation in submission order.
func (s *Store) ListRSVPs() ([]model.RSVP, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, attendance, guests, notes, created_at FROM rsvps ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}
	defer rows.Close()

	var out []model.RSVP
	for rows.Next() {
		var (
			r          model.RSVP
			attendance string
			ms         int64
		)
		if err := rows.Scan(&r.ID, &r.Name, &attendance, &r.Guests, &r.Notes, &ms); err != nil {
			return nil, fmt.Errorf("scan rsvp: %w", err)
		}
		r.Attendance = model.Attendance(attendance)
		r.CreatedAt = fromMillis(ms)
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertGuestbookEntry validates and stores a wall message.
func (s *Store) InsertGuestbookEntry(e model.GuestbookEntry) (model.GuestbookEntry, error) {
	e, err := model.NormalizeGuestbookEntry(e)
	if err != nil {
		return e, err
	}
	e.ID = uuid.NewString()
	var ms int64
	e.CreatedAt, ms = s.stamp()

	if _, err := s.exec("INSERT INTO guestbook (id, name, message, created_at) VALUES (?, ?, ?, ?)",
		e.ID, e.Name, e.Message, ms); err != nil {
		return e, fmt.Errorf("insert guestbook entry: %w", err)
	}
	return e, nil
}

// ListGuestbook returns up to limit messages, newest first.
func (s *Store) ListGuestbook(limit int) ([]model.GuestbookEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, message, created_at FROM guestbook ORDER BY created_at DESC, id DESC LIMIT ?",
		listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list guestbook: %w", err)
	}
	defer rows.Close()

	var out []model.GuestbookEntry
	for rows.Next() {
		var (
			e  model.GuestbookEntry
			ms int64
		)
		if err := rows.Scan(&e.ID, &e.Name, &e.Message, &ms); err != nil {
			return nil, fmt.Errorf("scan guestbook entry: %w", err)
		}
		e.CreatedAt = fromMillis(ms)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteGuestbookEntry removes a message by id.
func (s *Store) DeleteGuestbookEntry(id string) error {
	return s.deleteByID("guestbook", id)
}

// InsertPhoto stores an already compressed image.
func (s *Store) InsertPhoto(p model.PhotoUpload) (model.Photo, error) {
	if len(p.Data) == 0 {
		return model.Photo{}, &model.ValidationError{Field: "file", Reason: "empty"}
	}
	if p.ContentType == "" {
		return model.Photo{}, &model.ValidationError{Field: "content_type", Reason: "required"}
	}

	photo := model.Photo{
		ID:          uuid.NewString(),
		ContentType: p.ContentType,
		Width:       p.Width,
		Height:      p.Height,
		Size:        int64(len(p.Data)),
	}
	var ms int64
	photo.CreatedAt, ms = s.stamp()

	_, err := s.exec(
		"INSERT INTO photos (id, content_type, width, height, size, data, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		photo.ID, photo.ContentType, photo.Width, photo.Height, photo.Size, p.Data, ms,
	)
	if err != nil {
		return model.Photo{}, fmt.Errorf("insert photo: %w", err)
	}
	return photo, nil
}

// ListPhotos returns up to limit photo descriptions, newest first.
func (s *Store) ListPhotos(limit int) ([]model.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, content_type, width, height, size, created_at FROM photos ORDER BY created_at DESC, id DESC LIMIT ?",
		listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	var out []model.Photo
	for rows.Next() {
		var (
			p  model.Photo
			ms int64
		)
		if err := rows.Scan(&p.ID, &p.ContentType, &p.Width, &p.Height, &p.Size, &ms); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		p.CreatedAt = fromMillis(ms)
		out = append(out, p)
	}
	return out, rows.Err()
}

// PhotoData returns a photo and its encoded bytes.
func (s *Store) PhotoData(id string) (model.Photo, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var (
		p    model.Photo
		data []byte
		ms   int64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, content_type, width, height, size, data, created_at FROM photos WHERE id = ?", id,
	).Scan(&p.ID, &p.ContentType, &p.Width, &p.Height, &p.Size, &data, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil, fmt.Errorf("photo %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return p, nil, fmt.Errorf("read photo: %w", err)
	}
	p.CreatedAt = fromMillis(ms)
	return p, data, nil
}

// DeletePhoto removes a photo by id.
func (s *Store) DeletePhoto(id string) error {
	return s.deleteByID("photos", id)
}
