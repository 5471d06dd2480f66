package fragment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxFragmentBytes bounds a single fragment response.
const maxFragmentBytes = 1 << 20

// ErrFragmentTooLarge is returned for a response over the fragment size
// limit. Partial markup is never handed back.
var ErrFragmentTooLarge = errors.New("fragment: response too large")

// StatusError is a non-2xx fragment response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fragment %s: unexpected status %d", e.URL, e.Code)
}

// HTTPSource fetches fragments relative to a base URL.
type HTTPSource struct {
	base   *url.URL
	client *http.Client
}

// NewHTTPSource creates a source rooted at baseURL. A nil client uses one
// with a 30s timeout.
func NewHTTPSource(baseURL string, client *http.Client) (*HTTPSource, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("fragment base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("fragment base url: unsupported scheme %q", u.Scheme)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSource{base: u, client: client}, nil
}

// Fetch implements router.FragmentSource.
func (s *HTTPSource) Fetch(ctx context.Context, source string) (string, error) {
	ref, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("fragment source %q: %w", source, err)
	}
	target := s.base.ResolveReference(ref).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxFragmentBytes))
		return "", &StatusError{URL: target, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFragmentBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading fragment %s: %w", target, err)
	}
	if len(body) > maxFragmentBytes {
		return "", fmt.Errorf("fragment %s: %w", target, ErrFragmentTooLarge)
	}
	return string(body), nil
}
