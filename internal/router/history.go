package router

import (
	"net/url"
	"sync"
)

// MemoryHistory is an in-process address bar for hosts without a browser.
// It keeps every pushed entry; there is no popstate.
type MemoryHistory struct {
	mu      sync.Mutex
	current url.URL
	entries []string
}

// NewMemoryHistory starts the address bar at rawURL.
func NewMemoryHistory(rawURL string) (*MemoryHistory, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return &MemoryHistory{current: *u, entries: []string{u.String()}}, nil
}

func (h *MemoryHistory) Fragment() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.Fragment
}

// Push records a new entry with the given fragment, keeping path and query.
func (h *MemoryHistory) Push(fragment string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current.Fragment = fragment
	h.entries = append(h.entries, h.current.String())
}

// URL returns the current address.
func (h *MemoryHistory) URL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current.String()
}

// Len is the number of entries, including the initial one.
func (h *MemoryHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
