package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/heyojules/invite/internal/admin"
	"github.com/heyojules/invite/internal/client"
	"github.com/heyojules/invite/internal/countdown"
	"github.com/heyojules/invite/internal/i18n"
	"github.com/heyojules/invite/internal/model"
	"github.com/heyojules/invite/internal/router"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ router.Surface   = (*Shell)(nil)
	_ router.History   = (*Shell)(nil)
	_ router.Indicator = (*NavGroup)(nil)
)

const (
	homeHTML       = `<h1>Felipe &amp; Daniela</h1><a class="nav-link" data-target="invitation" href="#invitation">Confirmar asistencia</a><script>alert(1)</script>`
	albumHTML      = `<h1>Álbum colaborativo</h1><a class="nav-link" data-target="home" href="#home">Volver al inicio</a>`
	invitationHTML = `<h1>Invitación</h1><p>Ceremonia 5:00 p.m.</p><a class="nav-link" data-target="album" href="#album">Ver el álbum</a>`
)

// syncScheduler runs transition callbacks immediately.
type syncScheduler struct{}

func (syncScheduler) AfterFunc(_ time.Duration, f func()) { f() }
func (syncScheduler) NextFrame(f func())                  { f() }

type fakeSource struct {
	mu      sync.Mutex
	fetches map[string]int
	fail    map[string]bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{fetches: map[string]int{}, fail: map[string]bool{}}
}

func (f *fakeSource) Fetch(_ context.Context, source string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[source]++
	if f.fail[source] {
		return "", errors.New("boom")
	}
	switch source {
	case "pages/home.html":
		return homeHTML, nil
	case "pages/album.html":
		return albumHTML, nil
	case "pages/invitation.html":
		return invitationHTML, nil
	}
	return "", errors.New("unknown")
}

func (f *fakeSource) count(source string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[source]
}

type fakeData struct {
	mu         sync.Mutex
	rsvps      []model.RSVP
	signed     []model.GuestbookEntry
	gbLists    int
	photoLists int
	uploads    [][]string
}

func (d *fakeData) SubmitRSVP(_ context.Context, r model.RSVP) (model.RSVP, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.rsvps = append(d.rsvps, r)
	return r, nil
}

func (d *fakeData) ListGuestbook(context.Context, int) ([]model.GuestbookEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gbLists++
	return append([]model.GuestbookEntry(nil), d.signed...), nil
}

func (d *fakeData) SignGuestbook(_ context.Context, e model.GuestbookEntry) (model.GuestbookEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.signed = append([]model.GuestbookEntry{e}, d.signed...)
	return e, nil
}

func (d *fakeData) ListPhotos(context.Context, int) ([]model.Photo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.photoLists++
	return []model.Photo{{ID: "p1", Width: 800, Height: 600, Size: 40 << 10}}, nil
}

func (d *fakeData) UploadPhotos(_ context.Context, files []string, _ int, onProgress func(client.Progress)) client.UploadReport {
	d.mu.Lock()
	d.uploads = append(d.uploads, files)
	d.mu.Unlock()
	report := client.UploadReport{Failed: map[string]error{}}
	for i, f := range files {
		if strings.HasSuffix(f, "bad.jpg") {
			report.Failed[f] = errors.New("corrupt")
		} else {
			report.Uploaded = append(report.Uploaded, model.Photo{ID: f})
		}
		if onProgress != nil {
			onProgress(client.Progress{Done: i + 1, Total: len(files), File: f})
		}
	}
	return report
}

func (d *fakeData) PhotoURL(id string) string { return "http://test/api/photos/" + id + "/image" }

func (d *fakeData) counts() (gb, photos int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gbLists, d.photoLists
}

type harness struct {
	site   *Site
	source *fakeSource
	data   *fakeData
	msgs   chan tea.Msg
}

func newHarness(t *testing.T, startURL string, withData bool, mods ...func(*SiteConfig)) *harness {
	t.Helper()
	h := &harness{source: newFakeSource(), data: &fakeData{}, msgs: make(chan tea.Msg, 256)}
	cfg := SiteConfig{
		Source:    h.source,
		Views:     router.DefaultViews(),
		StartURL:  startURL,
		Renderer:  NewRenderer("notty"),
		Scheduler: syncScheduler{},
	}
	if withData {
		cfg.Data = h.data
	}
	for _, mod := range mods {
		mod(&cfg)
	}
	site, err := NewSite(cfg)
	require.NoError(t, err)
	t.Cleanup(site.Close)
	site.Attach(func(m tea.Msg) { h.msgs <- m })
	h.site = site
	return h
}

// pump feeds posted messages to the site until done reports true.
func (h *harness) pump(t *testing.T, done func() bool) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for !done() {
		select {
		case m := <-h.msgs:
			h.site.Update(m)
		case <-deadline:
			t.Fatal("timed out waiting for site state")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// settle waits for nav and delivers its completion message.
func (h *harness) settle(t *testing.T, nav *router.Navigation) {
	t.Helper()
	_, err := nav.Wait(context.Background())
	require.NoError(t, err)
	h.site.Update(navDoneMsg{nav: nav})
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	h.site.Init()
	h.settle(t, h.site.pending)
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestRenderer_SanitizesAndConverts(t *testing.T) {
	r := NewRenderer("notty")
	md, err := r.Markdown(homeHTML)
	require.NoError(t, err)
	assert.Contains(t, md, "# Felipe & Daniela")
	assert.NotContains(t, md, "alert")

	out, err := r.Render(homeHTML, 60)
	require.NoError(t, err)
	assert.Contains(t, out, "Felipe & Daniela")
}

func TestShell_InjectAndLinks(t *testing.T) {
	shell, err := NewShell(router.DefaultViews(), NewRenderer("notty"), "/?view=album#home")
	require.NoError(t, err)
	assert.Equal(t, "home", shell.Fragment())

	require.NoError(t, shell.Inject(router.Home, homeHTML))
	pane, ok := shell.Pane(router.Home)
	require.True(t, ok)
	assert.Equal(t, 1, pane.Version)
	assert.Contains(t, pane.Body, "Felipe")
	require.Len(t, pane.Links, 1)
	assert.Equal(t, "invitation", pane.Links[0].Target)

	assert.Error(t, shell.Inject("faq", homeHTML))

	shell.Push("album")
	assert.Equal(t, "/?view=album#album", shell.URL())
}

func TestShell_DisplayedFollowsLastShown(t *testing.T) {
	shell, err := NewShell(router.DefaultViews(), NewRenderer("notty"), "/")
	require.NoError(t, err)

	_, ok := shell.Displayed()
	assert.False(t, ok)

	shell.Show(router.Home)
	shell.SetActive(router.Home, true)
	shell.SetActive(router.Home, false)
	shell.Show(router.Album)

	p, ok := shell.Displayed()
	require.True(t, ok)
	assert.Equal(t, router.Album, p.View.ID)
	assert.False(t, p.Active)

	shell.Hide(router.Album)
	shell.SetActive(router.Home, true)
	p, ok = shell.Displayed()
	require.True(t, ok)
	assert.Equal(t, router.Home, p.View.ID)
}

func TestShell_NotifyCoalescesUntilAck(t *testing.T) {
	shell, err := NewShell(router.DefaultViews(), NewRenderer("notty"), "/")
	require.NoError(t, err)

	var calls int
	shell.SetNotifier(func() { calls++ })
	shell.Show(router.Home)
	shell.ScrollTop(router.Home)
	shell.TabBar().MarkActive(router.Home)
	assert.Equal(t, 1, calls)

	shell.Ack()
	shell.Hide(router.Home)
	assert.Equal(t, 2, calls)
	assert.Equal(t, router.Home, shell.TabBar().Active())
}

func TestSite_StartsOnQueryView(t *testing.T) {
	h := newHarness(t, "/?view=album", true)
	h.start(t)

	assert.Equal(t, router.State{Phase: router.Active, View: router.Album}, h.site.Router().State())
	assert.Equal(t, 1, h.source.count("pages/album.html"))
	assert.Zero(t, h.source.count("pages/home.html"))
	assert.Equal(t, router.Album, h.site.Shell().TabBar().Active())
	assert.Equal(t, router.Album, h.site.Shell().SideMenu().Active())

	h.pump(t, func() bool { return h.site.galleryReady && len(h.site.photos) == 1 })
	gb, photos := h.data.counts()
	assert.Zero(t, gb, "home collaborators must not run")
	assert.Equal(t, 1, photos)

	view := h.site.View(100, 30)
	assert.Contains(t, view, "Álbum colaborativo")
	assert.Contains(t, view, "http://test/api/photos/p1/image")
}

func TestSite_DeepLinkLeavesOtherViewsIdle(t *testing.T) {
	timer := countdown.NewTimer(time.Now().Add(49*time.Hour), 10*time.Millisecond)
	h := newHarness(t, "/?view=album", true, func(c *SiteConfig) { c.Countdown = timer })
	h.start(t)

	h.pump(t, func() bool { return h.site.galleryReady && len(h.site.photos) == 1 })
	// Give any background loads a chance to show up.
	deadline := time.Now().Add(200 * time.Millisecond)
	h.pump(t, func() bool { return time.Now().After(deadline) })

	assert.False(t, h.site.Router().Loaded(router.Home))
	assert.False(t, h.site.Router().Loaded(router.Invitation))
	assert.Zero(t, h.source.count("pages/home.html"))
	assert.Zero(t, h.source.count("pages/invitation.html"))
	assert.False(t, timer.Armed(), "countdown belongs to home")
	gb, _ := h.data.counts()
	assert.Zero(t, gb)
	assert.False(t, h.site.rsvpReady)
}

func TestSite_PreloadIsOptIn(t *testing.T) {
	h := newHarness(t, "/?view=album", false, func(c *SiteConfig) { c.Preload = true })
	h.start(t)

	h.pump(t, func() bool {
		return h.site.Router().Loaded(router.Home) && h.site.Router().Loaded(router.Invitation)
	})
	assert.Equal(t, router.Album, h.site.Router().State().View)
	assert.Equal(t, 1, h.source.count("pages/home.html"))
}

func TestSite_KeyNavigationAndLinks(t *testing.T) {
	h := newHarness(t, "/", true)
	h.start(t)
	require.Equal(t, router.Home, h.site.Router().State().View)

	h.site.Update(keyRunes("3"))
	h.settle(t, h.site.pending)
	assert.Equal(t, router.Invitation, h.site.Router().State().View)
	assert.Equal(t, "invitation", h.site.Shell().Fragment())

	h.pump(t, func() bool {
		p, _ := h.site.Shell().Displayed()
		return p.View.ID == router.Invitation && len(p.Links) == 1
	})

	// The invitation links to the album.
	h.site.Update(tea.KeyMsg{Type: tea.KeyEnter})
	h.settle(t, h.site.pending)
	assert.Equal(t, router.Album, h.site.Router().State().View)

	// Returning to a loaded view does not fetch it again.
	h.site.Update(keyRunes("["))
	h.settle(t, h.site.pending)
	assert.Equal(t, router.Home, h.site.Router().State().View)
	assert.Equal(t, 1, h.source.count("pages/home.html"))
	assert.Equal(t, 1, h.source.count("pages/invitation.html"))
}

func TestSite_FailedLoadShowsToast(t *testing.T) {
	h := newHarness(t, "/", false)
	h.source.fail["pages/album.html"] = true
	h.start(t)

	h.site.Update(keyRunes("2"))
	nav := h.site.pending
	_, err := nav.Wait(context.Background())
	require.Error(t, err)
	h.site.Update(navDoneMsg{nav: nav})

	assert.Equal(t, router.State{Phase: router.Active, View: router.Home}, h.site.Router().State())
	assert.Equal(t, 1, h.site.toasts.Len())
	assert.Contains(t, h.site.View(100, 30), "No se pudo cargar la sección")
}

func TestSite_WithoutDataStillNavigates(t *testing.T) {
	h := newHarness(t, "/#invitation", false)
	h.start(t)
	assert.Equal(t, router.Invitation, h.site.Router().State().View)

	h.site.Update(keyRunes("f"))
	assert.Equal(t, modeBrowse, h.site.mode, "form needs the rsvp collaborator")
}

func TestSite_RSVPSubmission(t *testing.T) {
	h := newHarness(t, "/#invitation", true)
	h.start(t)
	h.pump(t, func() bool { return h.site.rsvpReady })

	h.site.Update(keyRunes("f"))
	require.Equal(t, modeRSVP, h.site.mode)
	h.site.Update(keyRunes("Marta Gómez"))
	h.site.Update(tea.KeyMsg{Type: tea.KeyTab})
	h.site.Update(keyRunes("3"))
	h.site.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Equal(t, formSending, h.site.rsvp.state)

	h.pump(t, func() bool { return h.site.rsvp.state == formSent })
	require.Len(t, h.data.rsvps, 1)
	assert.Equal(t, model.RSVP{Name: "Marta Gómez", Attendance: model.AttendanceYes, Guests: 3}, h.data.rsvps[0])

	h.site.Update(rsvpResetMsg{})
	assert.Equal(t, formIdle, h.site.rsvp.state)
	assert.Equal(t, modeBrowse, h.site.mode)
	assert.Empty(t, h.site.rsvp.value(rsvpName))
}

func TestSite_GuestbookSubmission(t *testing.T) {
	h := newHarness(t, "/", true)
	h.start(t)
	h.pump(t, func() bool { return h.site.guestbookReady })
	assert.Contains(t, h.site.View(100, 40), "Sé el primero en dejar un deseo.")

	h.site.Update(keyRunes("f"))
	require.Equal(t, modeGuestbook, h.site.mode)
	h.site.Update(keyRunes("Abuela"))
	h.site.Update(tea.KeyMsg{Type: tea.KeyTab})
	h.site.Update(keyRunes("Los quiero"))
	h.site.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	h.pump(t, func() bool { return len(h.site.guestbook) == 1 })
	assert.Equal(t, modeBrowse, h.site.mode)
	assert.Contains(t, h.site.View(100, 40), "ABUELA")
}

func TestSite_UploadReport(t *testing.T) {
	h := newHarness(t, "/?view=album", true)
	h.start(t)
	h.pump(t, func() bool { return h.site.galleryReady })

	h.site.mode = modePicker
	h.site.selected = []string{"/tmp/a.jpg", "/tmp/bad.jpg"}
	h.site.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.True(t, h.site.uploading)

	h.pump(t, func() bool { return !h.site.uploading })
	assert.Equal(t, 2, h.site.toasts.Len(), "one success and one failure toast")
	require.Len(t, h.data.uploads, 1)
}

func TestSite_CountdownHook(t *testing.T) {
	timer := countdown.NewTimer(time.Now().Add(49*time.Hour), 10*time.Millisecond)
	h := newHarness(t, "/", false, func(c *SiteConfig) { c.Countdown = timer })
	h.start(t)

	h.pump(t, func() bool { return h.site.hasCountdown })
	assert.True(t, timer.Armed())
	assert.Equal(t, 2, h.site.countdown.Days)
	assert.Contains(t, h.site.View(100, 30), "02 días")
}

type stubAdmin struct{ summary admin.Summary }

func (s stubAdmin) AdminSummary(_ context.Context, password string) (admin.Summary, error) {
	if password != "boda26" {
		return admin.Summary{}, admin.ErrUnauthorized
	}
	return s.summary, nil
}

func TestAdminPage_Login(t *testing.T) {
	tr, err := i18n.New("es")
	require.NoError(t, err)
	rows := []model.RSVP{
		{Name: "Ana", Attendance: model.AttendanceYes, Guests: 3},
		{Name: "Luis", Attendance: model.AttendanceNo},
	}
	p := NewAdminPage(stubAdmin{summary: admin.Summarize(rows)}, tr)
	p.Init()

	p.Update(keyRunes("nope"))
	cmd, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	p.Update(cmd())
	assert.Equal(t, adminPrompt, p.state)
	assert.Contains(t, p.View(100, 30), "Contraseña incorrecta")

	p.Update(keyRunes("boda26"))
	cmd, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	p.Update(cmd())
	require.Equal(t, adminReady, p.state)

	view := p.View(120, 40)
	assert.Contains(t, view, "Total Pases Confirmados: 3")
	assert.Contains(t, view, "1 invitación confirmada")
	assert.Contains(t, view, "1 declinada")
	assert.Contains(t, view, "Ana")

	_, nav := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, nav)
	assert.Equal(t, PageSite, nav.PageID)
}

func TestApp_SwitchesToAdminAndBack(t *testing.T) {
	h := newHarness(t, "/", false)
	tr, err := i18n.New()
	require.NoError(t, err)
	app := NewApp(h.site, NewAdminPage(nil, tr))
	app.Init()
	h.settle(t, h.site.pending)

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlA})
	assert.Equal(t, PageAdmin, app.ActivePage())
	assert.Contains(t, app.View(), "Panel de confirmaciones")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, PageSite, app.ActivePage())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestToasts(t *testing.T) {
	var ts Toasts
	ts.duration = time.Millisecond
	cmd := ts.Push(ToastSuccess, "listo")
	ts.Push(ToastError, "falló")
	assert.Equal(t, 2, ts.Len())
	assert.Contains(t, ts.View(40), "falló")

	msg := cmd()
	expired, ok := msg.(toastExpiredMsg)
	require.True(t, ok)
	ts.Dismiss(expired.id)
	assert.Equal(t, 1, ts.Len())
	assert.NotContains(t, ts.View(40), "listo")
}
