package router

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type fakeSource struct {
	mu     sync.Mutex
	calls  map[string]int
	errs   map[string]error
	gates  map[string]chan struct{}
	markup map[string]string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls:  make(map[string]int),
		errs:   make(map[string]error),
		gates:  make(map[string]chan struct{}),
		markup: make(map[string]string),
	}
}

// gate makes fetches of source block until the returned func is called.
func (s *fakeSource) gate(source string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.gates[source] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (s *fakeSource) fail(source string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[source] = err
}

func (s *fakeSource) count(source string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[source]
}

func (s *fakeSource) Fetch(ctx context.Context, source string) (string, error) {
	s.mu.Lock()
	s.calls[source]++
	gate := s.gates[source]
	err := s.errs[source]
	markup, ok := s.markup[source]
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if !ok {
		markup = "<section>" + source + "</section>"
	}
	return markup, nil
}

type container struct {
	markup  string
	shown   bool
	active  bool
	scrolls int
}

type fakeSurface struct {
	mu         sync.Mutex
	containers map[ViewID]*container
	injectErr  map[ViewID]error
}

func newFakeSurface(views []View) *fakeSurface {
	s := &fakeSurface{
		containers: make(map[ViewID]*container),
		injectErr:  make(map[ViewID]error),
	}
	for _, v := range views {
		s.containers[v.ID] = &container{}
	}
	return s
}

var errNoContainer = errors.New("no container")

func (s *fakeSurface) Inject(id ViewID, markup string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.injectErr[id]; err != nil {
		return err
	}
	c, ok := s.containers[id]
	if !ok {
		return errNoContainer
	}
	c.markup = markup
	return nil
}

func (s *fakeSurface) with(id ViewID, f func(c *container)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.containers[id]; ok {
		f(c)
	}
}

func (s *fakeSurface) Show(id ViewID) { s.with(id, func(c *container) { c.shown = true }) }
func (s *fakeSurface) Hide(id ViewID) { s.with(id, func(c *container) { c.shown = false }) }
func (s *fakeSurface) SetActive(id ViewID, active bool) {
	s.with(id, func(c *container) { c.active = active })
}
func (s *fakeSurface) ScrollTop(id ViewID) { s.with(id, func(c *container) { c.scrolls++ }) }

func (s *fakeSurface) IsActive(id ViewID) bool {
	var active bool
	s.with(id, func(c *container) { active = c.active })
	return active
}

func (s *fakeSurface) get(id ViewID) container {
	var out container
	s.with(id, func(c *container) { out = *c })
	return out
}

// activeViews lists every container carrying the active state.
func (s *fakeSurface) activeViews() []ViewID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ViewID
	for id, c := range s.containers {
		if c.active {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *fakeSurface) shownViews() []ViewID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []ViewID
	for id, c := range s.containers {
		if c.shown {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type timer struct {
	at time.Duration
	f  func()
}

// manualScheduler runs frames and timers only when the test says so.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []timer
	frames []func()
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timers = append(s.timers, timer{at: s.now + d, f: f})
}

func (s *manualScheduler) NextFrame(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
}

// Frame runs every queued frame callback.
func (s *manualScheduler) Frame() {
	s.mu.Lock()
	frames := s.frames
	s.frames = nil
	s.mu.Unlock()
	for _, f := range frames {
		f()
	}
}

// Advance moves the clock and fires due timers.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []func()
	kept := s.timers[:0]
	for _, t := range s.timers {
		if t.at <= s.now {
			due = append(due, t.f)
		} else {
			kept = append(kept, t)
		}
	}
	s.timers = kept
	s.mu.Unlock()
	for _, f := range due {
		f()
	}
}

// Settle runs the next frame and then the hide delay.
func (s *manualScheduler) Settle() {
	s.Frame()
	s.Advance(DefaultHideDelay)
}

type fakeIndicator struct {
	mu    sync.Mutex
	marks []ViewID
}

func (i *fakeIndicator) MarkActive(id ViewID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.marks = append(i.marks, id)
}

func (i *fakeIndicator) last() ViewID {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.marks) == 0 {
		return ""
	}
	return i.marks[len(i.marks)-1]
}

type hookCounter struct {
	mu    sync.Mutex
	calls map[string]int
}

func newHookCounter() *hookCounter {
	return &hookCounter{calls: make(map[string]int)}
}

func (h *hookCounter) hook(name string) Hook {
	return func(context.Context) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.calls[name]++
		return nil
	}
}

func (h *hookCounter) count(name string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[name]
}
