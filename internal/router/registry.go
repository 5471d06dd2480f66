package router

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Hook is a collaborator callback tied to a view's lifecycle. Returned
// errors are logged; they never affect navigation.
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// Registry maps views to optional lifecycle hooks. Modules that own a
// view's behavior register here once at startup; a view with no hooks is a
// valid configuration.
type Registry struct {
	mu    sync.RWMutex
	load  map[ViewID][]namedHook
	enter map[ViewID][]namedHook
}

// NewRegistry creates an empty hook registry.
func NewRegistry() *Registry {
	return &Registry{
		load:  make(map[ViewID][]namedHook),
		enter: make(map[ViewID][]namedHook),
	}
}

// OnLoad registers h to run once, right after the view's fragment first
// enters its container.
func (r *Registry) OnLoad(view ViewID, name string, h Hook) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load[view] = append(r.load[view], namedHook{name: name, fn: h})
}

// OnEnter registers h to run every time the view becomes the active view.
func (r *Registry) OnEnter(view ViewID, name string, h Hook) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enter[view] = append(r.enter[view], namedHook{name: name, fn: h})
}

// Names lists the registered load and enter hook names for view.
func (r *Registry) Names(view ViewID) (load, enter []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.load[view] {
		load = append(load, h.name)
	}
	for _, h := range r.enter[view] {
		enter = append(enter, h.name)
	}
	return load, enter
}

func (r *Registry) runLoad(ctx context.Context, view ViewID, logger *zap.Logger) int {
	return r.run(ctx, r.snapshot(r.load, view), "load", view, logger)
}

func (r *Registry) runEnter(ctx context.Context, view ViewID, logger *zap.Logger) int {
	return r.run(ctx, r.snapshot(r.enter, view), "enter", view, logger)
}

func (r *Registry) snapshot(m map[ViewID][]namedHook, view ViewID) []namedHook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]namedHook(nil), m[view]...)
}

func (r *Registry) run(ctx context.Context, hooks []namedHook, kind string, view ViewID, logger *zap.Logger) int {
	for _, h := range hooks {
		if err := callHook(ctx, h.fn); err != nil {
			logger.Error("view hook failed",
				zap.String("view", string(view)),
				zap.String("kind", kind),
				zap.String("hook", h.name),
				zap.Error(err))
		}
	}
	return len(hooks)
}

// callHook isolates the router from panicking collaborators.
func callHook(ctx context.Context, h Hook) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return h(ctx)
}
