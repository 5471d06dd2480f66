package model

import "time"

// Shared defaults used by both the server and CLI binaries.
const (
	DefaultAPIPort      = 3000
	DefaultHideDelay    = 600 * time.Millisecond
	DefaultListLimit    = 200
	DefaultLanguage     = "es"
	DefaultTimeZone     = "America/Bogota"
	DefaultWeddingDate  = "2026-10-25T17:00:00"
	DefaultCoupleTitle  = "Felipe & Daniela"
	MaxGuestsPerRSVP    = 10
	MaxTextLength       = 500
	MaxNameLength       = 80
	MaxPhotoUploadBytes = 15 << 20
)

// WeddingTime parses DefaultWeddingDate-style timestamps in the given zone.
func WeddingTime(value, zone string) (time.Time, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation("2006-01-02T15:04:05", value, loc)
}
