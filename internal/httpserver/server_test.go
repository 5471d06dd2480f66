package httpserver

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heyojules/invite/internal/admin"
	"github.com/heyojules/invite/internal/duckdb"
	"github.com/heyojules/invite/internal/fragment"
	"github.com/heyojules/invite/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testPassword = "boda26"

func newTestServer(t *testing.T, opts Options) (*Server, *duckdb.Store, http.Handler) {
	t.Helper()
	store, err := duckdb.NewStore("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	m, err := fragment.DefaultManifest()
	require.NoError(t, err)
	catalog, err := fragment.NewCatalog(m, "", nil)
	require.NoError(t, err)

	auth, err := admin.NewAuth("", testPassword)
	require.NoError(t, err)

	srv := NewServer("", store, catalog, auth, opts)
	return srv, store, srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body []byte, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	_, _, h := newTestServer(t, Options{})

	w := do(t, h, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	_, _, h := newTestServer(t, Options{})

	w := do(t, h, http.MethodPost, "/api/health", nil)
	// Gin returns 405 for method not allowed when a route exists but not for this method
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Errorf("health POST status = %d, want 405 or 404", w.Code)
	}
}

func TestPagesAndManifest(t *testing.T) {
	_, _, h := newTestServer(t, Options{})

	w := do(t, h, http.MethodGet, "/pages/album.html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "photo-gallery")

	w = do(t, h, http.MethodGet, "/pages/secret.html", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/api/manifest", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var m fragment.Manifest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Equal(t, "home", m.Default)
	assert.Len(t, m.Views, 3)
}

func TestRSVPFlow(t *testing.T) {
	_, _, h := newTestServer(t, Options{})

	w := do(t, h, http.MethodPost, "/api/rsvps", []byte(`{"name":"Ana","attendance":"yes","guests":2,"notes":"vegetariana"}`))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var saved model.RSVP
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.NotEmpty(t, saved.ID)

	w = do(t, h, http.MethodPost, "/api/rsvps", []byte(`{"name":"Luis","attendance":"no","guests":3}`))
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodPost, "/api/rsvps", []byte(`{"name":"Ana","guests":40}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"guests"`)

	w = do(t, h, http.MethodPost, "/api/rsvps", []byte(`{bad`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/rsvps", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = do(t, h, http.MethodGet, "/api/rsvps", nil, AdminHeader, "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, h, http.MethodGet, "/api/rsvps", nil, AdminHeader, testPassword)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []model.RSVP
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	assert.Len(t, rows, 2)

	w = do(t, h, http.MethodGet, "/api/rsvps?summary=1", nil, AdminHeader, testPassword)
	require.Equal(t, http.StatusOK, w.Code)
	var s admin.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	assert.Equal(t, 2, s.TotalPasses)
	assert.Equal(t, 1, s.Declined)
}

func TestGuestbookFlow(t *testing.T) {
	_, _, h := newTestServer(t, Options{})

	w := do(t, h, http.MethodGet, "/api/guestbook", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/guestbook", []byte(`{"name":"Abuela","message":"¡Los quiero!"}`))
	require.Equal(t, http.StatusCreated, w.Code)
	var e model.GuestbookEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))

	w = do(t, h, http.MethodPost, "/api/guestbook", []byte(`{"name":"Abuela","message":"   "}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/guestbook?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodDelete, "/api/guestbook/"+e.ID, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = do(t, h, http.MethodDelete, "/api/guestbook/"+e.ID, nil, AdminHeader, testPassword)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodDelete, "/api/guestbook/"+e.ID, nil, AdminHeader, testPassword)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func multipartPNG(t *testing.T, w, h int) (*bytes.Buffer, string) {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, w, h))))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "foto.png")
	require.NoError(t, err)
	_, err = part.Write(img.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestPhotoFlow(t *testing.T) {
	_, _, h := newTestServer(t, Options{})

	body, ct := multipartPNG(t, 1200, 900)
	req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var p model.Photo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, 800, p.Width)
	assert.Equal(t, 600, p.Height)
	assert.Equal(t, "image/jpeg", p.ContentType)

	w = do(t, h, http.MethodGet, "/api/photos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var photos []model.Photo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &photos))
	require.Len(t, photos, 1)

	w = do(t, h, http.MethodGet, "/api/photos/"+p.ID+"/image", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	_, format, err := image.DecodeConfig(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)

	w = do(t, h, http.MethodDelete, "/api/photos/"+p.ID, nil, AdminHeader, testPassword)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodGet, "/api/photos/"+p.ID+"/image", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPhotoUpload_Rejects(t *testing.T) {
	_, _, h := newTestServer(t, Options{MaxUploadBytes: 256})

	req := httptest.NewRequest(http.MethodPost, "/api/photos", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	body, ct := multipartPNG(t, 600, 600)
	req = httptest.NewRequest(http.MethodPost, "/api/photos", body)
	req.Header.Set("Content-Type", ct)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.GreaterOrEqual(t, w.Code, 400)
	assert.Less(t, w.Code, 500)

	_, _, h = newTestServer(t, Options{})
	var garbage bytes.Buffer
	mw := multipart.NewWriter(&garbage)
	part, err := mw.CreateFormFile("file", "nota.txt")
	require.NoError(t, err)
	part.Write([]byte("no soy una imagen"))
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/api/photos", &garbage)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPhotoUpload_RejectsHugeDimensions(t *testing.T) {
	_, _, h := newTestServer(t, Options{})

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewGray(image.Rect(0, 0, 1, 1))))
	b := img.Bytes()
	binary.BigEndian.PutUint32(b[16:20], 12000)
	binary.BigEndian.PutUint32(b[20:24], 12000)
	binary.BigEndian.PutUint32(b[29:33], crc32.ChecksumIEEE(b[12:29]))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "enorme.png")
	require.NoError(t, err)
	_, err = part.Write(b)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "image dimensions too large")
}

func TestWebDirFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>boda</html>"), 0o644))
	_, _, h := newTestServer(t, Options{WebDir: dir})

	w := do(t, h, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "boda")

	w = do(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/nothing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
