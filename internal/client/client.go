// Package client talks to the invitation service's HTTP API. The terminal
// client's view hooks use it for RSVPs, the guestbook, and the album.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/heyojules/invite/internal/admin"
	"github.com/heyojules/invite/internal/model"
)

// APIError is a non-2xx API response.
type APIError struct {
	Status  int
	Message string `json:"error"`
	Field   string `json:"field"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
}

// Unwrap maps well-known statuses onto the shared sentinel errors.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return admin.ErrUnauthorized
	case http.StatusNotFound:
		return model.ErrNotFound
	case http.StatusBadRequest:
		if e.Field != "" {
			return &model.ValidationError{Field: e.Field, Reason: e.Message}
		}
	}
	return nil
}

// Client is an HTTP client for the API.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a client for baseURL. A nil httpClient uses one with a 60s
// timeout, enough for a slow photo upload.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api base url: unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{base: u, http: httpClient}, nil
}

// BaseURL is the API root the client was created with.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) url(path string, query url.Values) string {
	u := *c.base
	u.Path += path
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) do(req *http.Request, dest any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(apiErr)
		return apiErr
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, header http.Header, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path, query), nil)
	if err != nil {
		return err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	return c.do(req, dest)
}

func (c *Client) postJSON(ctx context.Context, path string, body, dest any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path, nil), bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, dest)
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		return nil
	}
	return url.Values{"limit": {strconv.Itoa(limit)}}
}

// SubmitRSVP sends a confirmation from the invitation view.
func (c *Client) SubmitRSVP(ctx context.Context, r model.RSVP) (model.RSVP, error) {
	var saved model.RSVP
	err := c.postJSON(ctx, "/api/rsvps", map[string]any{
		"name":       r.Name,
		"attendance": r.Attendance,
		"guests":     r.Guests,
		"notes":      r.Notes,
	}, &saved)
	return saved, err
}

// AdminSummary fetches the dashboard totals.
func (c *Client) AdminSummary(ctx context.Context, password string) (admin.Summary, error) {
	var s admin.Summary
	err := c.getJSON(ctx, "/api/rsvps", url.Values{"summary": {"1"}},
		http.Header{"X-Admin-Password": {password}}, &s)
	return s, err
}

// ListGuestbook returns wall messages, newest first.
func (c *Client) ListGuestbook(ctx context.Context, limit int) ([]model.GuestbookEntry, error) {
	var entries []model.GuestbookEntry
	err := c.getJSON(ctx, "/api/guestbook", limitQuery(limit), nil, &entries)
	return entries, err
}

// SignGuestbook leaves a message on the wall.
func (c *Client) SignGuestbook(ctx context.Context, e model.GuestbookEntry) (model.GuestbookEntry, error) {
	var saved model.GuestbookEntry
	err := c.postJSON(ctx, "/api/guestbook", map[string]string{"name": e.Name, "message": e.Message}, &saved)
	return saved, err
}

// ListPhotos returns album photos, newest first.
func (c *Client) ListPhotos(ctx context.Context, limit int) ([]model.Photo, error) {
	var photos []model.Photo
	err := c.getJSON(ctx, "/api/photos", limitQuery(limit), nil, &photos)
	return photos, err
}

// UploadPhoto sends one image as the multipart field "file".
func (c *Client) UploadPhoto(ctx context.Context, filename string, r io.Reader) (model.Photo, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return model.Photo{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return model.Photo{}, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return model.Photo{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/api/photos", nil), &body)
	if err != nil {
		return model.Photo{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var photo model.Photo
	if err := c.do(req, &photo); err != nil {
		return model.Photo{}, err
	}
	return photo, nil
}

// PhotoURL is where the encoded image of a photo is served.
func (c *Client) PhotoURL(id string) string {
	return c.base.String() + "/api/photos/" + url.PathEscape(id) + "/image"
}

// IsUnauthorized reports whether err came from a rejected admin password.
func IsUnauthorized(err error) bool { return errors.Is(err, admin.ErrUnauthorized) }
