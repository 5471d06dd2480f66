package model

// RSVPWriter accepts confirmations from the invitation view.
type RSVPWriter interface {
	InsertRSVP(r RSVP) (RSVP, error)
}

// RSVPReader exposes confirmations to the admin dashboard.
type RSVPReader interface {
	ListRSVPs() ([]RSVP, error)
}

// GuestbookStore backs the wish wall.
type GuestbookStore interface {
	InsertGuestbookEntry(e GuestbookEntry) (GuestbookEntry, error)
	ListGuestbook(limit int) ([]GuestbookEntry, error)
	DeleteGuestbookEntry(id string) error
}

// PhotoStore backs the collaborative album.
type PhotoStore interface {
	InsertPhoto(p PhotoUpload) (Photo, error)
	ListPhotos(limit int) ([]Photo, error)
	PhotoData(id string) (Photo, []byte, error)
	DeletePhoto(id string) error
}

// Backend is the unified contract for a hosted data backend.
// Both the DuckDB and SQLite stores implement it.
type Backend interface {
	RSVPWriter
	RSVPReader
	GuestbookStore
	PhotoStore
	DBPath() string
	SnapshotTo(dstPath string) error
	Close() error
}
