package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/heyojules/invite/internal/client"
	"github.com/heyojules/invite/internal/countdown"
	"github.com/heyojules/invite/internal/i18n"
	"github.com/heyojules/invite/internal/model"
	"github.com/heyojules/invite/internal/router"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// DataClient is the guest-facing API the view collaborators call.
type DataClient interface {
	SubmitRSVP(ctx context.Context, r model.RSVP) (model.RSVP, error)
	ListGuestbook(ctx context.Context, limit int) ([]model.GuestbookEntry, error)
	SignGuestbook(ctx context.Context, e model.GuestbookEntry) (model.GuestbookEntry, error)
	ListPhotos(ctx context.Context, limit int) ([]model.Photo, error)
	UploadPhotos(ctx context.Context, files []string, parallelism int, onProgress func(client.Progress)) client.UploadReport
	PhotoURL(id string) string
}

// SiteConfig wires the site page. Data and Countdown are optional: a view
// whose collaborator is missing still loads and shows its fragment.
type SiteConfig struct {
	Source   router.FragmentSource
	Views    []router.View
	Default  router.ViewID
	StartURL string
	Title    string

	Data       DataClient
	Countdown  *countdown.Timer
	Translator *i18n.Translator
	Renderer   *Renderer
	Logger     *zap.Logger

	// Preload fetches the remaining views after the first one is shown.
	// Their load hooks run right away, so it is off unless asked for.
	Preload   bool
	Scheduler router.Scheduler
	HideDelay time.Duration
}

type siteMode int

const (
	modeBrowse siteMode = iota
	modeGuestbook
	modeRSVP
	modePicker
)

// Messages posted from router goroutines and collaborator hooks.
type (
	shellChangedMsg   struct{}
	navDoneMsg        struct{ nav *router.Navigation }
	countdownMsg      struct{ parts countdown.Parts }
	guestbookReadyMsg struct{}
	galleryReadyMsg   struct{}
	rsvpReadyMsg      struct{}
	guestbookMsg      struct {
		entries []model.GuestbookEntry
		err     error
	}
	guestbookSentMsg struct{ err error }
	photosMsg        struct {
		photos []model.Photo
		err    error
	}
	uploadProgressMsg struct{ p client.Progress }
	uploadDoneMsg     struct{ report client.UploadReport }
	rsvpSentMsg       struct{ err error }
	rsvpResetMsg      struct{}
)

// rsvpResetDelay is how long the sent state stays on the button.
const rsvpResetDelay = 3 * time.Second

// Site is the page that hosts the view router.
type Site struct {
	router *router.Router
	shell  *Shell
	cfg    SiteConfig
	tr     *i18n.Translator
	keys   KeyMap
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	sendMu sync.Mutex
	send   func(tea.Msg)

	started   bool
	width     int
	height    int
	viewports map[router.ViewID]*viewport.Model
	versions  map[router.ViewID]int
	scrolls   map[router.ViewID]int
	linkFocus int

	spinner  spinner.Model
	spinning bool
	pending  *router.Navigation
	toasts   Toasts
	mode     siteMode

	countdown    countdown.Parts
	hasCountdown bool

	guestbookReady bool
	guestbook      []model.GuestbookEntry
	gbForm         *guestbookForm

	galleryReady bool
	photos       []model.Photo
	picker       filepicker.Model
	selected     []string
	uploading    bool
	uploadStatus string

	rsvpReady bool
	rsvp      *rsvpForm
}

// NewSite builds the shell, registers the view collaborators as lifecycle
// hooks and creates the router over them.
func NewSite(cfg SiteConfig) (*Site, error) {
	if cfg.Title == "" {
		cfg.Title = model.DefaultCoupleTitle
	}
	if cfg.StartURL == "" {
		cfg.StartURL = "/"
	}
	if cfg.Renderer == nil {
		cfg.Renderer = NewRenderer("")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tr := cfg.Translator
	if tr == nil {
		var err error
		if tr, err = i18n.New(); err != nil {
			return nil, err
		}
	}

	shell, err := NewShell(cfg.Views, cfg.Renderer, cfg.StartURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(ColorGold)

	s := &Site{
		shell:     shell,
		cfg:       cfg,
		tr:        tr,
		keys:      DefaultKeyMap(),
		logger:    logger.Named("site"),
		ctx:       ctx,
		cancel:    cancel,
		viewports: make(map[router.ViewID]*viewport.Model, len(cfg.Views)),
		versions:  make(map[router.ViewID]int, len(cfg.Views)),
		scrolls:   make(map[router.ViewID]int, len(cfg.Views)),
		spinner:   sp,
		gbForm:    newGuestbookForm(),
		rsvp:      newRSVPForm(),
	}
	for _, v := range cfg.Views {
		vp := viewport.New(80, 20)
		s.viewports[v.ID] = &vp
	}

	reg := router.NewRegistry()
	s.registerHooks(reg)

	opts := []router.Option{
		router.WithLogger(logger),
		router.WithRegistry(reg),
		router.WithHistory(shell),
		router.WithIndicators(shell.TabBar(), shell.SideMenu()),
	}
	if cfg.Default != "" {
		opts = append(opts, router.WithDefault(cfg.Default))
	}
	if cfg.Scheduler != nil {
		opts = append(opts, router.WithScheduler(cfg.Scheduler))
	}
	if cfg.HideDelay > 0 {
		opts = append(opts, router.WithHideDelay(cfg.HideDelay))
	}
	r, err := router.New(cfg.Source, shell, cfg.Views, opts...)
	if err != nil {
		cancel()
		return nil, err
	}
	s.router = r
	shell.SetNotifier(func() { s.post(shellChangedMsg{}) })
	return s, nil
}

// Attach sets where asynchronous results are delivered, normally
// (*tea.Program).Send. It must be called before the program runs.
func (s *Site) Attach(send func(tea.Msg)) {
	s.sendMu.Lock()
	s.send = send
	s.sendMu.Unlock()
}

// post delivers msg without blocking the caller, which may be the router
// holding its lock.
func (s *Site) post(msg tea.Msg) {
	s.sendMu.Lock()
	send := s.send
	s.sendMu.Unlock()
	if send != nil {
		go send(msg)
	}
}

// async runs fn off the UI loop and posts its result.
func (s *Site) async(fn func() tea.Msg) {
	go func() { s.post(fn()) }()
}

// Close stops background work started by the page.
func (s *Site) Close() {
	s.cancel()
	if s.cfg.Countdown != nil {
		s.cfg.Countdown.Disarm()
	}
}

// Router exposes the page's router.
func (s *Site) Router() *router.Router { return s.router }

// Shell exposes the page's view containers.
func (s *Site) Shell() *Shell { return s.shell }

func (s *Site) ID() string { return PageSite }

func (s *Site) Init() tea.Cmd {
	if s.started {
		return nil
	}
	s.started = true
	nav := s.router.Start(s.ctx, s.cfg.StartURL)
	return s.track(nav)
}

// navigate switches to id, as a nav-link with that data-target would.
func (s *Site) navigate(id router.ViewID) tea.Cmd {
	s.linkFocus = 0
	s.mode = modeBrowse
	return s.track(s.router.SwitchView(s.ctx, id))
}

func (s *Site) track(nav *router.Navigation) tea.Cmd {
	s.pending = nav
	wait := func() tea.Msg {
		<-nav.Done()
		return navDoneMsg{nav: nav}
	}
	if s.spinning {
		return wait
	}
	s.spinning = true
	return tea.Batch(wait, s.spinner.Tick)
}

func (s *Site) loading() bool {
	return s.router.State().Phase == router.Loading
}

func (s *Site) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		if err := s.shell.Resize(s.contentWidth()); err != nil {
			s.logger.Warn("re-render failed", zap.Error(err))
		}
		s.syncViewports()
		s.picker.Height = max(msg.Height-12, 5)
		return nil, nil

	case tea.KeyMsg:
		return s.handleKey(msg)

	case shellChangedMsg:
		s.shell.Ack()
		s.syncViewports()
		return nil, nil

	case navDoneMsg:
		return s.handleNavDone(msg.nav), nil

	case spinner.TickMsg:
		if !s.loading() {
			s.spinning = false
			return nil, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return cmd, nil

	case toastExpiredMsg:
		s.toasts.Dismiss(msg.id)
		return nil, nil

	case countdownMsg:
		s.countdown, s.hasCountdown = msg.parts, true
		return nil, nil

	case guestbookReadyMsg:
		s.guestbookReady = true
		return nil, nil

	case guestbookMsg:
		if msg.err != nil {
			s.logger.Warn("guestbook load failed", zap.Error(msg.err))
			return nil, nil
		}
		s.guestbook = msg.entries
		return nil, nil

	case guestbookSentMsg:
		if msg.err != nil {
			s.gbForm.state = formIdle
			s.logger.Warn("guestbook submit failed", zap.Error(msg.err))
			return s.toasts.Push(ToastError, s.tr.T(i18n.GuestbookError)), nil
		}
		s.gbForm.reset()
		s.mode = modeBrowse
		s.loadGuestbook()
		return s.toasts.Push(ToastSuccess, s.tr.T(i18n.GuestbookSent)), nil

	case galleryReadyMsg:
		s.galleryReady = true
		return nil, nil

	case photosMsg:
		if msg.err != nil {
			s.logger.Warn("photo list failed", zap.Error(msg.err))
			return nil, nil
		}
		s.photos = msg.photos
		return nil, nil

	case uploadProgressMsg:
		s.uploadStatus = s.tr.T(i18n.UploadProgress, map[string]any{"Current": msg.p.Done, "Total": msg.p.Total})
		return nil, nil

	case uploadDoneMsg:
		return s.handleUploadDone(msg.report), nil

	case rsvpReadyMsg:
		s.rsvpReady = true
		return nil, nil

	case rsvpSentMsg:
		if msg.err != nil {
			s.rsvp.state = formIdle
			s.logger.Warn("rsvp submit failed", zap.Error(msg.err))
			return s.toasts.Push(ToastError, s.tr.T(i18n.RSVPError)), nil
		}
		s.rsvp.state = formSent
		return tea.Tick(rsvpResetDelay, func(time.Time) tea.Msg { return rsvpResetMsg{} }), nil

	case rsvpResetMsg:
		s.rsvp.reset()
		if s.mode == modeRSVP {
			s.mode = modeBrowse
		}
		return nil, nil
	}

	if s.mode == modePicker {
		var cmd tea.Cmd
		s.picker, cmd = s.picker.Update(msg)
		return cmd, nil
	}
	return nil, nil
}

func (s *Site) handleNavDone(nav *router.Navigation) tea.Cmd {
	if s.pending == nav {
		s.pending = nil
	}
	s.syncViewports()

	var cmds []tea.Cmd
	switch nav.Outcome() {
	case router.Failed:
		s.logger.Debug("navigation failed", zap.String("view", string(nav.View)), zap.Error(nav.Err()))
		cmds = append(cmds, s.toasts.Push(ToastError, s.tr.T(i18n.ViewLoadFailed)))
	case router.Activated:
		if s.cfg.Preload {
			s.cfg.Preload = false
			s.preloadRest(nav.View)
		}
	}
	return tea.Batch(cmds...)
}

func (s *Site) preloadRest(shown router.ViewID) {
	for _, v := range s.router.Views() {
		if v.ID == shown {
			continue
		}
		id := v.ID
		go func() {
			if err := s.router.Preload(s.ctx, id); err != nil {
				s.logger.Debug("preload failed", zap.String("view", string(id)), zap.Error(err))
			}
		}()
	}
}

func (s *Site) handleUploadDone(report client.UploadReport) tea.Cmd {
	s.uploading = false
	s.uploadStatus = ""
	s.selected = nil
	for file, err := range report.Failed {
		s.logger.Warn("photo upload failed", zap.String("file", file), zap.Error(err))
	}
	var cmds []tea.Cmd
	if len(report.Uploaded) > 0 {
		cmds = append(cmds, s.toasts.Push(ToastSuccess, s.tr.T(i18n.UploadDone)))
	}
	if n := len(report.Failed); n > 0 {
		cmds = append(cmds, s.toasts.Push(ToastError, s.tr.T(i18n.UploadFailed, map[string]any{"Count": n})))
	}
	s.loadPhotos()
	return tea.Batch(cmds...)
}

func (s *Site) handleKey(msg tea.KeyMsg) (tea.Cmd, *PageNav) {
	if key.Matches(msg, s.keys.Admin) {
		s.mode = modeBrowse
		return nil, &PageNav{PageID: PageAdmin}
	}

	switch s.mode {
	case modeGuestbook:
		return s.handleGuestbookKey(msg), nil
	case modeRSVP:
		return s.handleRSVPKey(msg), nil
	case modePicker:
		return s.handlePickerKey(msg), nil
	}

	shown, _ := s.shell.Displayed()
	switch {
	case key.Matches(msg, s.keys.Quit):
		return tea.Quit, nil
	case key.Matches(msg, s.keys.NextView):
		return s.navigate(s.neighbor(+1)), nil
	case key.Matches(msg, s.keys.PrevView):
		return s.navigate(s.neighbor(-1)), nil
	case key.Matches(msg, s.keys.Home):
		return s.navigateIndex(0), nil
	case key.Matches(msg, s.keys.Album):
		return s.navigateIndex(1), nil
	case key.Matches(msg, s.keys.Invitation):
		return s.navigateIndex(2), nil
	case key.Matches(msg, s.keys.NextLink):
		if n := len(shown.Links); n > 0 {
			s.linkFocus = (s.linkFocus + 1) % n
		}
	case key.Matches(msg, s.keys.Follow):
		if s.linkFocus < len(shown.Links) {
			return s.navigate(router.ViewID(shown.Links[s.linkFocus].Target)), nil
		}
	case key.Matches(msg, s.keys.Form):
		switch {
		case shown.View.ID == router.Home && s.guestbookReady:
			s.mode = modeGuestbook
		case shown.View.ID == router.Invitation && s.rsvpReady:
			s.mode = modeRSVP
		}
	case key.Matches(msg, s.keys.Upload):
		if shown.View.ID == router.Album && s.galleryReady && !s.uploading {
			s.mode = modePicker
			s.picker = s.newPicker()
			return s.picker.Init(), nil
		}
	case key.Matches(msg, s.keys.Refresh):
		switch {
		case shown.View.ID == router.Album && s.galleryReady:
			s.loadPhotos()
		case shown.View.ID == router.Home && s.guestbookReady:
			s.loadGuestbook()
		}
	default:
		if vp, ok := s.viewports[shown.View.ID]; ok {
			var cmd tea.Cmd
			*vp, cmd = vp.Update(msg)
			return cmd, nil
		}
	}
	return nil, nil
}

func (s *Site) handleGuestbookKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keys.Escape):
		s.mode = modeBrowse
		return nil
	case key.Matches(msg, s.keys.Submit):
		entry, ok := s.gbForm.submission()
		if !ok || s.gbForm.state == formSending || s.cfg.Data == nil {
			return nil
		}
		s.gbForm.state = formSending
		data := s.cfg.Data
		s.async(func() tea.Msg {
			_, err := data.SignGuestbook(s.ctx, entry)
			return guestbookSentMsg{err: err}
		})
		return nil
	}
	return s.gbForm.update(msg, s.keys)
}

func (s *Site) handleRSVPKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keys.Escape):
		s.mode = modeBrowse
		return nil
	case key.Matches(msg, s.keys.Toggle):
		if s.rsvp.state == formIdle {
			s.rsvp.declining = !s.rsvp.declining
		}
		return nil
	case key.Matches(msg, s.keys.Submit):
		r, ok := s.rsvp.submission()
		if !ok || s.rsvp.state != formIdle || s.cfg.Data == nil {
			return nil
		}
		s.rsvp.state = formSending
		data := s.cfg.Data
		s.async(func() tea.Msg {
			_, err := data.SubmitRSVP(s.ctx, r)
			return rsvpSentMsg{err: err}
		})
		return nil
	}
	return s.rsvp.update(msg, s.keys)
}

func (s *Site) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keys.Escape):
		s.mode = modeBrowse
		s.selected = nil
		return nil
	case key.Matches(msg, s.keys.Submit):
		if len(s.selected) == 0 || s.cfg.Data == nil {
			return nil
		}
		s.mode = modeBrowse
		s.uploading = true
		s.uploadStatus = s.tr.T(i18n.UploadProcessing)
		files := append([]string(nil), s.selected...)
		data := s.cfg.Data
		s.async(func() tea.Msg {
			report := data.UploadPhotos(s.ctx, files, client.DefaultUploadParallelism, func(p client.Progress) {
				s.post(uploadProgressMsg{p: p})
			})
			return uploadDoneMsg{report: report}
		})
		return nil
	}

	var cmd tea.Cmd
	s.picker, cmd = s.picker.Update(msg)
	if ok, path := s.picker.DidSelectFile(msg); ok {
		s.selected = append(s.selected, path)
	}
	return cmd
}

func (s *Site) newPicker() filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	fp.Height = max(s.height-12, 5)
	if s.picker.CurrentDirectory != "" {
		fp.CurrentDirectory = s.picker.CurrentDirectory
	}
	return fp
}

// neighbor is the view delta positions away from the current one.
func (s *Site) neighbor(delta int) router.ViewID {
	views := s.router.Views()
	cur := s.router.State().View
	if cur == "" {
		cur = s.router.Default()
	}
	idx := 0
	for i, v := range views {
		if v.ID == cur {
			idx = i
		}
	}
	return views[(idx+delta+len(views))%len(views)].ID
}

func (s *Site) navigateIndex(i int) tea.Cmd {
	views := s.router.Views()
	if i >= len(views) {
		return nil
	}
	return s.navigate(views[i].ID)
}

// syncViewports copies changed pane bodies into their viewports and honors
// scroll-to-top requests.
func (s *Site) syncViewports() {
	for id, vp := range s.viewports {
		pane, ok := s.shell.Pane(id)
		if !ok {
			continue
		}
		if pane.Version != s.versions[id] {
			vp.SetContent(pane.Body)
			s.versions[id] = pane.Version
		}
		if pane.ScrollSeq != s.scrolls[id] {
			vp.GotoTop()
			s.scrolls[id] = pane.ScrollSeq
		}
	}
}

func (s *Site) contentWidth() int {
	w := s.width - 4
	if w < 20 {
		w = 20
	}
	return w
}

func (s *Site) loadGuestbook() {
	data := s.cfg.Data
	if data == nil {
		return
	}
	s.async(func() tea.Msg {
		entries, err := data.ListGuestbook(s.ctx, 0)
		return guestbookMsg{entries: entries, err: err}
	})
}

func (s *Site) loadPhotos() {
	data := s.cfg.Data
	if data == nil {
		return
	}
	s.async(func() tea.Msg {
		photos, err := data.ListPhotos(s.ctx, 0)
		return photosMsg{photos: photos, err: err}
	})
}

func (s *Site) View(width, height int) string {
	if width == 0 {
		width, height = 80, 24
	}
	narrow := width < 80

	header := s.renderHeader(width, narrow)
	status := s.renderStatus(width)
	toasts := s.toasts.View(width)

	shown, ok := s.shell.Displayed()
	var extra, links string
	if ok {
		extra = s.renderExtras(shown.View.ID, width-4)
		links = s.renderLinks(shown)
	}

	var bottomNav string
	if narrow {
		bottomNav = s.renderMenu(width)
	}

	used := lipgloss.Height(header) + lipgloss.Height(status) + 2
	for _, part := range []string{toasts, extra, links, bottomNav} {
		if part != "" {
			used += lipgloss.Height(part)
		}
	}
	bodyHeight := max(height-used-2, 3)

	var body string
	switch {
	case !ok && s.loading():
		body = renderLoadingPlaceholder(s.spinner.View(), s.tr.T(i18n.AdminLoading), width-2, bodyHeight)
	case !ok:
		body = lipgloss.Place(width-2, bodyHeight, lipgloss.Center, lipgloss.Center, helpStyle.Render(s.tr.T(i18n.ViewLoadFailed)))
	default:
		body = s.renderPane(shown, width, bodyHeight)
	}

	parts := []string{header, body}
	for _, part := range []string{links, extra, toasts, bottomNav} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (s *Site) renderHeader(width int, narrow bool) string {
	title := lipgloss.NewStyle().Foreground(ColorGold).Bold(true).Render(s.cfg.Title)
	if narrow {
		return title
	}
	active := s.shell.TabBar().Active()
	tabs := make([]string, 0, len(s.cfg.Views))
	for _, v := range s.router.Views() {
		style := tabStyle
		if v.ID == active {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(v.Title))
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	gap := max(width-lipgloss.Width(title)-lipgloss.Width(bar)-1, 1)
	return title + strings.Repeat(" ", gap) + bar
}

func (s *Site) renderMenu(width int) string {
	active := s.shell.SideMenu().Active()
	items := make([]string, 0, len(s.cfg.Views))
	for _, v := range s.router.Views() {
		label := "  " + v.Title
		style := helpStyle
		if v.ID == active {
			label = "› " + v.Title
			style = labelStyle
		}
		items = append(items, style.Render(label))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(items, "  "))
}

func (s *Site) renderPane(shown PaneState, width, height int) string {
	style := sectionStyle
	if shown.Active {
		style = activeSectionStyle
	}
	innerW, innerH := width-4, height

	var content string
	switch s.mode {
	case modeGuestbook:
		content = s.gbForm.view(s.formButton(s.gbForm.state, i18n.GuestbookSubmit, i18n.GuestbookSending, i18n.GuestbookSubmit))
	case modeRSVP:
		content = s.rsvp.view(s.formButton(s.rsvp.state, i18n.RSVPSubmit, i18n.RSVPProcessing, i18n.RSVPSent))
	case modePicker:
		content = s.picker.View()
		if n := len(s.selected); n > 0 {
			content += "\n" + helpStyle.Render(fmt.Sprintf("%d seleccionadas · ctrl+s para subir", n))
		}
	default:
		vp := s.viewports[shown.View.ID]
		vp.Width, vp.Height = innerW, innerH
		content = vp.View()
	}
	return style.Width(width - 2).Height(innerH).Render(content)
}

func (s *Site) formButton(state formState, idle, sending, sent string) string {
	switch state {
	case formSending:
		return s.tr.T(sending)
	case formSent:
		return s.tr.T(sent)
	default:
		return s.tr.T(idle)
	}
}

func (s *Site) renderLinks(shown PaneState) string {
	if len(shown.Links) == 0 || s.mode != modeBrowse {
		return ""
	}
	out := make([]string, 0, len(shown.Links))
	for i, l := range shown.Links {
		style := helpStyle
		if i == s.linkFocus {
			style = labelStyle.Underline(true)
		}
		out = append(out, style.Render("→ "+l.Text))
	}
	return strings.Join(out, "   ")
}

func (s *Site) renderExtras(id router.ViewID, width int) string {
	switch id {
	case router.Home:
		var lines []string
		if s.hasCountdown {
			if s.countdown.Done {
				lines = append(lines, labelStyle.Render(s.tr.T(i18n.CountdownDone)))
			} else {
				d, h, m := s.countdown.Fields()
				lines = append(lines, labelStyle.Render(fmt.Sprintf("%s días  %s horas  %s minutos", d, h, m)))
			}
		}
		if s.guestbookReady {
			lines = append(lines, s.renderGuestbook(width))
		}
		return strings.Join(lines, "\n")
	case router.Album:
		if !s.galleryReady {
			return ""
		}
		return s.renderGallery(width)
	}
	return ""
}

// guestbookPreview bounds the wall messages shown under the home view.
const guestbookPreview = 3

func (s *Site) renderGuestbook(width int) string {
	if len(s.guestbook) == 0 {
		return helpStyle.Italic(true).Render(s.tr.T(i18n.GuestbookEmpty))
	}
	var b strings.Builder
	for i, e := range s.guestbook {
		if i == guestbookPreview {
			break
		}
		msg := lipgloss.NewStyle().MaxWidth(width).Render(fmt.Sprintf("%q", e.Message))
		b.WriteString(msg + " " + labelStyle.Render(strings.ToUpper(e.Name)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Site) renderGallery(width int) string {
	if s.uploading {
		return s.spinner.View() + " " + s.uploadStatus
	}
	if len(s.photos) == 0 {
		return helpStyle.Italic(true).Render(s.tr.T(i18n.GalleryEmpty))
	}
	var b strings.Builder
	for i, p := range s.photos {
		if i == guestbookPreview {
			fmt.Fprintf(&b, "… +%d", len(s.photos)-i)
			break
		}
		line := fmt.Sprintf("▣ %d×%d  %d KB  %s", p.Width, p.Height, p.Size/1024, s.cfg.Data.PhotoURL(p.ID))
		b.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(line) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *Site) renderStatus(width int) string {
	left := s.shell.URL()
	if s.loading() {
		left = s.spinner.View() + " " + left
	}
	var help []string
	for _, b := range s.keys.ShortHelp() {
		help = append(help, b.Help().Key+" "+b.Help().Desc)
	}
	right := strings.Join(help, " · ")
	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return statusStyle.Width(width).Render(" " + left)
	}
	return statusStyle.Width(width).Render(" " + left + strings.Repeat(" ", gap) + right + " ")
}
