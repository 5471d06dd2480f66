// Package router swaps between statically defined views whose markup is
// fetched lazily from a FragmentSource.
//
// A fragment is fetched at most once per Router. The first time a view's
// fragment lands in its container the view's load hooks run, exactly once.
// Switching views deactivates every container, hides the inactive ones after
// the hide delay, activates the target on the next frame, marks navigation
// indicators, pushes the view onto History when the fragment identifier
// differs, and resets scroll.
//
// Failures are absorbed: an unknown view is ignored silently, and a failed
// fetch is logged and leaves the previously active view in place.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultHideDelay matches the CSS transition length of the view containers.
const DefaultHideDelay = 600 * time.Millisecond

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the logger used for fetch failures and hook errors.
func WithLogger(l *zap.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRegistry attaches the lifecycle hooks.
func WithRegistry(reg *Registry) Option {
	return func(r *Router) {
		if reg != nil {
			r.hooks = reg
		}
	}
}

// WithHistory keeps h in sync with the active view.
func WithHistory(h History) Option {
	return func(r *Router) { r.history = h }
}

// WithIndicators adds navigation indicators. The first is the primary
// navigation; any others are secondary.
func WithIndicators(ind ...Indicator) Option {
	return func(r *Router) {
		for _, i := range ind {
			if i != nil {
				r.indicators = append(r.indicators, i)
			}
		}
	}
}

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(r *Router) {
		if s != nil {
			r.sched = s
		}
	}
}

// WithHideDelay sets how long inactive views stay in layout.
func WithHideDelay(d time.Duration) Option {
	return func(r *Router) {
		if d >= 0 {
			r.hideDelay = d
		}
	}
}

// WithDefault sets the view used when the URL names none.
func WithDefault(id ViewID) Option {
	return func(r *Router) { r.def = id }
}

// Stats counts router activity since construction.
type Stats struct {
	Fetches    int64
	Failures   int64
	Switches   int64
	LoadHooks  int64
	EnterHooks int64
}

// Router owns the view set, the fragment cache and the active view for one
// page session.
type Router struct {
	views      []View
	byID       map[ViewID]View
	def        ViewID
	source     FragmentSource
	surface    Surface
	history    History
	indicators []Indicator
	sched      Scheduler
	hooks      *Registry
	hideDelay  time.Duration
	logger     *zap.Logger

	loads singleflight.Group

	// generation and target are read by scheduled callbacks, which must not
	// take mu.
	generation atomic.Uint64
	target     atomic.String

	mu       sync.Mutex
	loaded   map[ViewID]bool
	hookRuns map[ViewID]chan struct{}
	state    State
	active   ViewID
	latest   *Navigation

	fetches    atomic.Int64
	failures   atomic.Int64
	switches   atomic.Int64
	loadHooks  atomic.Int64
	enterHooks atomic.Int64
}

// New builds a router over views. The first view is the default unless
// WithDefault says otherwise.
func New(source FragmentSource, surface Surface, views []View, opts ...Option) (*Router, error) {
	if source == nil {
		return nil, errors.New("router: nil fragment source")
	}
	if surface == nil {
		return nil, errors.New("router: nil surface")
	}
	if len(views) == 0 {
		return nil, errors.New("router: no views")
	}

	r := &Router{
		views:     append([]View(nil), views...),
		byID:      make(map[ViewID]View, len(views)),
		def:       views[0].ID,
		source:    source,
		surface:   surface,
		sched:     ClockScheduler{},
		hooks:     NewRegistry(),
		hideDelay: DefaultHideDelay,
		logger:    zap.NewNop(),
		loaded:    make(map[ViewID]bool, len(views)),
		hookRuns:  make(map[ViewID]chan struct{}),
	}
	for _, v := range views {
		if v.ID == "" {
			return nil, errors.New("router: view with empty id")
		}
		if _, dup := r.byID[v.ID]; dup {
			return nil, fmt.Errorf("router: duplicate view %q", v.ID)
		}
		r.byID[v.ID] = v
	}
	for _, opt := range opts {
		opt(r)
	}
	if !r.Valid(r.def) {
		return nil, fmt.Errorf("router: default view %q is not defined", r.def)
	}
	return r, nil
}

// Views returns the static view set in declaration order.
func (r *Router) Views() []View {
	return append([]View(nil), r.views...)
}

// Valid reports whether id names one of the router's views.
func (r *Router) Valid(id ViewID) bool {
	_, ok := r.byID[id]
	return ok
}

// Default is the view used when the URL names none.
func (r *Router) Default() ViewID { return r.def }

// State returns the current lifecycle state.
func (r *Router) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Loaded reports whether id's fragment is in its container.
func (r *Router) Loaded(id ViewID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loaded[id]
}

// Stats returns activity counters.
func (r *Router) Stats() Stats {
	return Stats{
		Fetches:    r.fetches.Load(),
		Failures:   r.failures.Load(),
		Switches:   r.switches.Load(),
		LoadHooks:  r.loadHooks.Load(),
		EnterHooks: r.enterHooks.Load(),
	}
}

// Start resolves the initial view from rawURL (?view=, then #fragment, then
// the default) and switches to it.
func (r *Router) Start(ctx context.Context, rawURL string) *Navigation {
	return r.SwitchView(ctx, Resolve(rawURL, r.Valid, r.def))
}

// Preload fetches and injects id's fragment without switching to it.
// Unknown views are ignored.
func (r *Router) Preload(ctx context.Context, id ViewID) error {
	view, ok := r.byID[id]
	if !ok {
		return nil
	}
	return r.ensureLoaded(ctx, view)
}

// SwitchView makes id the active view, loading its fragment first if
// needed. It never blocks on the network: a view that still has to be
// fetched is loaded in the background and the returned Navigation reports
// the outcome. Switching to an already loaded view completes before
// SwitchView returns.
//
// ctx bounds the fragment fetch only. The latest call wins: an earlier
// navigation that finishes loading afterwards keeps its load effects but
// does not transition.
func (r *Router) SwitchView(ctx context.Context, id ViewID) *Navigation {
	view, ok := r.byID[id]
	if !ok {
		return finishedNavigation(id, Ignored, nil)
	}

	nav := newNavigation(id)

	r.mu.Lock()
	r.latest = nav
	loaded := r.loaded[id]
	if !loaded {
		r.state = State{Phase: Loading, View: id}
	}
	r.mu.Unlock()

	if loaded {
		r.complete(ctx, nav)
		return nav
	}

	go func() {
		if err := r.ensureLoaded(ctx, view); err != nil {
			r.fail(nav, err)
			return
		}
		r.complete(ctx, nav)
	}()
	return nav
}

// ensureLoaded fetches and injects view's fragment once. Concurrent callers
// for the same view share one fetch. The load hooks run after the shared
// fetch returns, so a hook may call back into Preload or SwitchView; the
// other callers of that fetch wait for the hooks to finish.
func (r *Router) ensureLoaded(ctx context.Context, view View) error {
	v, err, _ := r.loads.Do(string(view.ID), func() (any, error) {
		if r.Loaded(view.ID) {
			return nil, nil
		}

		r.fetches.Inc()
		markup, err := r.source.Fetch(ctx, view.Source)
		if err != nil {
			r.failures.Inc()
			r.logger.Warn("fragment fetch failed",
				zap.String("view", string(view.ID)),
				zap.String("source", view.Source),
				zap.Error(err))
			return nil, fmt.Errorf("fetch %s: %w", view.Source, err)
		}
		if err := r.surface.Inject(view.ID, markup); err != nil {
			r.failures.Inc()
			r.logger.Warn("fragment inject failed",
				zap.String("view", string(view.ID)),
				zap.Error(err))
			return nil, fmt.Errorf("inject %s: %w", view.ID, err)
		}

		hooksDone := make(chan struct{})
		r.mu.Lock()
		r.loaded[view.ID] = true
		r.hookRuns[view.ID] = hooksDone
		r.mu.Unlock()
		return hooksDone, nil
	})
	if err != nil {
		return err
	}
	hooksDone, _ := v.(chan struct{})
	if hooksDone == nil {
		return nil
	}

	// Exactly one caller of the shared fetch claims the hook run.
	r.mu.Lock()
	claimed := r.hookRuns[view.ID] == hooksDone
	if claimed {
		delete(r.hookRuns, view.ID)
	}
	r.mu.Unlock()

	if !claimed {
		<-hooksDone
		return nil
	}
	n := r.hooks.runLoad(ctx, view.ID, r.logger)
	r.loadHooks.Add(int64(n))
	close(hooksDone)
	return nil
}

func (r *Router) complete(ctx context.Context, nav *Navigation) {
	r.mu.Lock()
	if nav.cancelled.Load() {
		if r.latest == nav {
			r.restoreLocked()
		}
		r.mu.Unlock()
		nav.resolve(Cancelled, nil)
		return
	}
	if r.latest != nav {
		r.mu.Unlock()
		nav.resolve(Superseded, nil)
		return
	}

	r.activateLocked(nav.View)
	r.active = nav.View
	r.state = State{Phase: Active, View: nav.View}
	r.mu.Unlock()

	r.switches.Inc()
	n := r.hooks.runEnter(ctx, nav.View, r.logger)
	r.enterHooks.Add(int64(n))
	nav.resolve(Activated, nil)
}

func (r *Router) fail(nav *Navigation, err error) {
	r.mu.Lock()
	if r.latest == nav {
		r.restoreLocked()
	}
	r.mu.Unlock()
	nav.resolve(Failed, err)
}

// restoreLocked returns the state to the last activated view.
func (r *Router) restoreLocked() {
	if r.active == "" {
		r.state = State{Phase: Uninitialized}
		return
	}
	r.state = State{Phase: Active, View: r.active}
}

// activateLocked runs the visual transition to id and syncs navigation.
func (r *Router) activateLocked(id ViewID) {
	gen := r.generation.Inc()
	r.target.Store(string(id))

	for _, v := range r.views {
		r.surface.SetActive(v.ID, false)
		if v.ID == id {
			continue
		}
		other := v.ID
		r.sched.AfterFunc(r.hideDelay, func() {
			if ViewID(r.target.Load()) != other && !r.surface.IsActive(other) {
				r.surface.Hide(other)
			}
		})
	}

	r.surface.Show(id)
	r.sched.NextFrame(func() {
		if r.generation.Load() == gen {
			r.surface.SetActive(id, true)
		}
	})

	for _, ind := range r.indicators {
		ind.MarkActive(id)
	}
	if r.history != nil && r.history.Fragment() != string(id) {
		r.history.Push(string(id))
	}
	r.surface.ScrollTop(id)
}
