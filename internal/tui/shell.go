package tui

import (
	"fmt"
	"sync"

	"github.com/heyojules/invite/internal/fragment"
	"github.com/heyojules/invite/internal/router"

	"go.uber.org/atomic"
)

// Shell is the terminal rendition of the page's view containers. The
// router writes to it from its own goroutines; the site page reads
// snapshots of it from the Bubble Tea loop.
type Shell struct {
	renderer *Renderer
	history  *router.MemoryHistory
	tabs     *NavGroup
	menu     *NavGroup

	mu        sync.Mutex
	views     []router.View
	panes     map[router.ViewID]*pane
	width     int
	lastShown router.ViewID

	notify  func()
	pending atomic.Bool
}

type pane struct {
	markup    string
	body      string
	links     []fragment.Link
	version   int
	visible   bool
	active    bool
	scrollSeq int
}

// PaneState is a read-only copy of one container.
type PaneState struct {
	View      router.View
	Body      string
	Links     []fragment.Link
	Version   int
	Visible   bool
	Active    bool
	ScrollSeq int
}

// NewShell creates containers for views, all hidden, with the address bar
// starting at rawURL.
func NewShell(views []router.View, renderer *Renderer, rawURL string) (*Shell, error) {
	history, err := router.NewMemoryHistory(rawURL)
	if err != nil {
		return nil, fmt.Errorf("start url: %w", err)
	}
	s := &Shell{
		renderer: renderer,
		history:  history,
		views:    append([]router.View(nil), views...),
		panes:    make(map[router.ViewID]*pane, len(views)),
		width:    80,
	}
	for _, v := range views {
		s.panes[v.ID] = &pane{}
	}
	s.tabs = &NavGroup{changed: s.changed}
	s.menu = &NavGroup{changed: s.changed}
	return s, nil
}

// SetNotifier registers fn to be called, at most once until Ack, after the
// shell changes.
func (s *Shell) SetNotifier(fn func()) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// Ack re-enables change notification after the host has re-read the shell.
func (s *Shell) Ack() { s.pending.Store(false) }

func (s *Shell) changed() {
	s.mu.Lock()
	fn := s.notify
	s.mu.Unlock()
	if fn != nil && s.pending.CompareAndSwap(false, true) {
		fn()
	}
}

// Inject renders markup into id's container.
func (s *Shell) Inject(id router.ViewID, markup string) error {
	links, err := fragment.Links(markup)
	if err != nil {
		return fmt.Errorf("scanning links: %w", err)
	}

	s.mu.Lock()
	p, ok := s.panes[id]
	width := s.width
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("no container for view %q", id)
	}

	body, err := s.renderer.Render(markup, width)
	if err != nil {
		return err
	}

	s.mu.Lock()
	p.markup = markup
	p.body = body
	p.links = links
	p.version++
	s.mu.Unlock()
	s.changed()
	return nil
}

func (s *Shell) Show(id router.ViewID) {
	s.update(id, func(p *pane) {
		p.visible = true
		s.lastShown = id
	})
}

func (s *Shell) Hide(id router.ViewID) {
	s.update(id, func(p *pane) { p.visible = false })
}

func (s *Shell) SetActive(id router.ViewID, active bool) {
	s.update(id, func(p *pane) { p.active = active })
}

func (s *Shell) IsActive(id router.ViewID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.panes[id]
	return ok && p.active
}

func (s *Shell) ScrollTop(id router.ViewID) {
	s.update(id, func(p *pane) { p.scrollSeq++ })
}

func (s *Shell) update(id router.ViewID, fn func(*pane)) {
	s.mu.Lock()
	p, ok := s.panes[id]
	if ok {
		fn(p)
	}
	s.mu.Unlock()
	if ok {
		s.changed()
	}
}

// Fragment and Push make the shell the router's address bar.
func (s *Shell) Fragment() string { return s.history.Fragment() }

func (s *Shell) Push(fragment string) {
	s.history.Push(fragment)
	s.changed()
}

// URL is the current address, shown in the status line.
func (s *Shell) URL() string { return s.history.URL() }

// TabBar is the primary navigation group.
func (s *Shell) TabBar() *NavGroup { return s.tabs }

// SideMenu is the secondary navigation group used on narrow terminals.
func (s *Shell) SideMenu() *NavGroup { return s.menu }

// Resize re-renders loaded containers for a new content width.
func (s *Shell) Resize(width int) error {
	s.mu.Lock()
	if width == s.width {
		s.mu.Unlock()
		return nil
	}
	s.width = width
	type job struct {
		p      *pane
		markup string
	}
	var jobs []job
	for _, p := range s.panes {
		if p.markup != "" {
			jobs = append(jobs, job{p, p.markup})
		}
	}
	s.mu.Unlock()

	for _, j := range jobs {
		body, err := s.renderer.Render(j.markup, width)
		if err != nil {
			return err
		}
		s.mu.Lock()
		j.p.body = body
		j.p.version++
		s.mu.Unlock()
	}
	return nil
}

// Displayed is the container the user should see: the most recently shown
// one while it is visible, else whichever is active.
func (s *Shell) Displayed() (PaneState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.panes[s.lastShown]; ok && p.visible {
		return s.stateLocked(s.lastShown), true
	}
	for _, v := range s.views {
		if s.panes[v.ID].active {
			return s.stateLocked(v.ID), true
		}
	}
	return PaneState{}, false
}

// Pane returns a copy of id's container.
func (s *Shell) Pane(id router.ViewID) (PaneState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.panes[id]; !ok {
		return PaneState{}, false
	}
	return s.stateLocked(id), true
}

func (s *Shell) stateLocked(id router.ViewID) PaneState {
	p := s.panes[id]
	var view router.View
	for _, v := range s.views {
		if v.ID == id {
			view = v
		}
	}
	return PaneState{
		View:      view,
		Body:      p.body,
		Links:     append([]fragment.Link(nil), p.links...),
		Version:   p.version,
		Visible:   p.visible,
		Active:    p.active,
		ScrollSeq: p.scrollSeq,
	}
}

// NavGroup is a set of navigation entries with one marked active.
type NavGroup struct {
	mu      sync.Mutex
	active  router.ViewID
	changed func()
}

func (g *NavGroup) MarkActive(id router.ViewID) {
	g.mu.Lock()
	g.active = id
	g.mu.Unlock()
	if g.changed != nil {
		g.changed()
	}
}

// Active is the entry currently marked.
func (g *NavGroup) Active() router.ViewID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}
