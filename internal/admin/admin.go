// Package admin backs the couple's hidden dashboard: password checks and
// the RSVP summary.
package admin

import (
	"errors"
	"fmt"
	"sort"

	"github.com/heyojules/invite/internal/model"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUnauthorized is returned for a wrong or missing password.
	ErrUnauthorized = errors.New("admin: unauthorized")
	// ErrNoPassword means neither a hash nor a password was configured.
	ErrNoPassword = errors.New("admin: no password configured")
)

// Auth checks dashboard passwords against a bcrypt hash.
type Auth struct {
	hash []byte
}

// NewAuth prefers a stored bcrypt hash; a plain password is hashed once.
func NewAuth(hash, password string) (*Auth, error) {
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		return &Auth{hash: []byte(hash)}, nil
	}
	if password == "" {
		return nil, ErrNoPassword
	}
	h, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &Auth{hash: []byte(h)}, nil
}

// HashPassword returns a bcrypt hash suitable for admin-password-hash.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing admin password: %w", err)
	}
	return string(h), nil
}

// Check returns ErrUnauthorized unless password matches. A nil Auth
// rejects everything.
func (a *Auth) Check(password string) error {
	if a == nil || password == "" {
		return ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword(a.hash, []byte(password)) != nil {
		return ErrUnauthorized
	}
	return nil
}

// Summary is what the dashboard shows.
type Summary struct {
	Rows        []model.RSVP `json:"rows"`
	TotalPasses int          `json:"total_passes"`
	Confirmed   int          `json:"confirmed"`
	Declined    int          `json:"declined"`
}

// Summarize orders attending rows first, keeping submission order within
// each group, and totals the passes of those attending.
func Summarize(rows []model.RSVP) Summary {
	out := make([]model.RSVP, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Attending() && !out[j].Attending()
	})

	s := Summary{Rows: out}
	for _, r := range out {
		if r.Attending() {
			s.Confirmed++
			s.TotalPasses += r.Guests
		} else {
			s.Declined++
		}
	}
	return s
}
