package fragment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/heyojules/invite/internal/router"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultManifest(t *testing.T) {
	m, err := DefaultManifest()
	require.NoError(t, err)

	assert.Equal(t, router.Home, m.DefaultView())
	var ids []router.ViewID
	for _, v := range m.RouterViews() {
		ids = append(ids, v.ID)
	}
	if diff := cmp.Diff([]router.ViewID{router.Home, router.Album, router.Invitation}, ids); diff != "" {
		t.Fatalf("view ids mismatch (-want +got):\n%s", diff)
	}
}

func TestParseManifest_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		ok   bool
	}{
		{"valid", "default: a\nviews:\n  - {id: a, source: pages/a.html}\n", true},
		{"default filled", "views:\n  - {id: a, source: pages/a.html}\n", true},
		{"no views", "default: a\n", false},
		{"empty id", "views:\n  - {id: '', source: pages/a.html}\n", false},
		{"duplicate", "views:\n  - {id: a, source: pages/a.html}\n  - {id: a, source: pages/b.html}\n", false},
		{"absolute source", "views:\n  - {id: a, source: /etc/passwd}\n", false},
		{"traversal", "views:\n  - {id: a, source: pages/../../x.html}\n", false},
		{"unknown default", "default: z\nviews:\n  - {id: a, source: pages/a.html}\n", false},
		{"bad yaml", "views: [", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseManifest([]byte(tt.yaml))
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "a", m.Default)
		})
	}
}

func TestCatalog_Embedded(t *testing.T) {
	m, err := DefaultManifest()
	require.NoError(t, err)
	c, err := NewCatalog(m, "", nil)
	require.NoError(t, err)

	data, err := c.Fragment("pages/home.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), `data-target="invitation"`)

	_, err = c.Fragment("pages/manifest.yml")
	assert.True(t, errors.Is(err, ErrUnknownFragment))

	markup, err := c.Fetch(context.Background(), "pages/album.html")
	require.NoError(t, err)
	assert.Contains(t, markup, "photo-gallery")

	assert.NoError(t, c.Watch(context.Background()))
}

func TestCatalog_OverrideDirReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pages"), 0o755))
	file := filepath.Join(dir, "pages", "home.html")
	require.NoError(t, os.WriteFile(file, []byte("<p>v1</p>"), 0o644))

	m := Manifest{Default: "home", Views: []ViewSpec{{ID: "home", Source: "pages/home.html"}}}
	c, err := NewCatalog(m, dir, nil)
	require.NoError(t, err)

	data, err := c.Fragment("pages/home.html")
	require.NoError(t, err)
	assert.Equal(t, "<p>v1</p>", string(data))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// Give the watcher time to register before writing.
	require.Eventually(t, func() bool {
		require.NoError(t, os.WriteFile(file, []byte("<p>v2</p>"), 0o644))
		data, err := c.Fragment("pages/home.html")
		return err == nil && string(data) == "<p>v2</p>"
	}, 3*time.Second, 50*time.Millisecond)
}

func TestNewCatalog_MissingDir(t *testing.T) {
	_, err := NewCatalog(Manifest{}, filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, err)
}

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/site/pages/home.html":
			w.Write([]byte("<section>home</section>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL+"/site", nil)
	require.NoError(t, err)

	markup, err := src.Fetch(context.Background(), "pages/home.html")
	require.NoError(t, err)
	assert.Equal(t, "<section>home</section>", markup)

	_, err = src.Fetch(context.Background(), "pages/missing.html")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestHTTPSource_RejectsOversizedFragment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/exact.html":
			w.Write([]byte(strings.Repeat("a", maxFragmentBytes)))
		default:
			w.Write([]byte(strings.Repeat("a", maxFragmentBytes+1)))
		}
	}))
	defer srv.Close()

	src, err := NewHTTPSource(srv.URL, nil)
	require.NoError(t, err)

	markup, err := src.Fetch(context.Background(), "exact.html")
	require.NoError(t, err)
	assert.Len(t, markup, maxFragmentBytes)

	markup, err = src.Fetch(context.Background(), "huge.html")
	assert.ErrorIs(t, err, ErrFragmentTooLarge)
	assert.Empty(t, markup)
}

func TestHTTPSource_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	src, err := NewHTTPSource(srv.URL, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = src.Fetch(ctx, "pages/home.html")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewHTTPSource_RejectsScheme(t *testing.T) {
	_, err := NewHTTPSource("ftp://example.com", nil)
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	out := Sanitize(`<p onclick="x()">Hola <script>alert(1)</script><a class="nav-link" data-target="album" href="#album">Álbum</a></p>`)

	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, `data-target="album"`)
	assert.Contains(t, out, `class="nav-link"`)

	assert.NotContains(t, Sanitize(`<a data-target="x onload=y">x</a>`), "data-target")
}

func TestLinks(t *testing.T) {
	m, err := DefaultManifest()
	require.NoError(t, err)
	c, err := NewCatalog(m, "", nil)
	require.NoError(t, err)
	data, err := c.Fragment("pages/invitation.html")
	require.NoError(t, err)

	links, err := Links(string(data))
	require.NoError(t, err)
	require.NotEmpty(t, links)
	assert.Equal(t, "album", links[len(links)-1].Target)

	links, err = Links(`<div><button data-target="home">  Volver
		al inicio </button><span data-target="">x</span></div>`)
	require.NoError(t, err)
	if diff := cmp.Diff([]Link{{Target: "home", Text: "Volver al inicio"}}, links); diff != "" {
		t.Fatalf("links mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, strings.Contains(links[0].Text, "\n"))
}
