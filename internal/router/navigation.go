package router

import (
	"context"
	"sync"

	"go.uber.org/atomic"
)

// Outcome is how a navigation ended.
type Outcome int

const (
	Pending Outcome = iota
	// Activated: the target view is now the active view.
	Activated
	// Superseded: a later SwitchView became the latest request before this
	// one finished loading. Its load and load hooks still applied.
	Superseded
	// Cancelled: Cancel was called before the load finished. The load and
	// load hooks still applied.
	Cancelled
	// Failed: the fragment could not be fetched or injected.
	Failed
	// Ignored: the view identifier is not one of the router's views.
	Ignored
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Activated:
		return "activated"
	case Superseded:
		return "superseded"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Navigation is the handle for one SwitchView call. The in-flight fragment
// fetch is never aborted by Cancel or by a newer navigation; only the visual
// transition is skipped.
type Navigation struct {
	View ViewID

	cancelled atomic.Bool
	done      chan struct{}
	once      sync.Once

	mu      sync.Mutex
	outcome Outcome
	err     error
}

func newNavigation(view ViewID) *Navigation {
	return &Navigation{View: view, done: make(chan struct{})}
}

func finishedNavigation(view ViewID, outcome Outcome, err error) *Navigation {
	n := newNavigation(view)
	n.resolve(outcome, err)
	return n
}

func (n *Navigation) resolve(outcome Outcome, err error) {
	n.once.Do(func() {
		n.mu.Lock()
		n.outcome = outcome
		n.err = err
		n.mu.Unlock()
		close(n.done)
	})
}

// Done is closed once the navigation has an outcome.
func (n *Navigation) Done() <-chan struct{} { return n.done }

// Wait blocks until the navigation finishes or ctx ends.
func (n *Navigation) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-n.done:
		return n.Outcome(), n.Err()
	case <-ctx.Done():
		return Pending, ctx.Err()
	}
}

// Cancel asks the router not to activate this navigation's view when its
// load completes. It has no effect on a finished navigation.
func (n *Navigation) Cancel() { n.cancelled.Store(true) }

// Outcome returns Pending until the navigation finishes.
func (n *Navigation) Outcome() Outcome {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.outcome
}

// Err is the load failure behind a Failed outcome.
func (n *Navigation) Err() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.err
}
