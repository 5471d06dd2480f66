//go:build js && wasm

package dom

import (
	"context"
	"syscall/js"

	"github.com/heyojules/invite/internal/router"

	"go.uber.org/zap"
)

// Options configure Mount.
type Options struct {
	Source  router.FragmentSource
	Views   []router.View
	Default router.ViewID
	Logger  *zap.Logger
}

// Mount creates the router over the page, exposes window.switchView,
// delegates clicks on [data-target] elements to it, and starts on the view
// named by the current URL.
func Mount(ctx context.Context, opts Options) (*router.Router, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	reg := router.NewRegistry()
	RegisterGlobalHooks(reg)

	routerOpts := []router.Option{
		router.WithLogger(logger),
		router.WithRegistry(reg),
		router.WithHistory(History{}),
		router.WithScheduler(Scheduler{}),
		router.WithIndicators(NavLinks{Selector: ".nav-link"}, NavLinks{Selector: ".mobile-nav-link"}),
	}
	if opts.Default != "" {
		routerOpts = append(routerOpts, router.WithDefault(opts.Default))
	}
	r, err := router.New(opts.Source, NewSurface(), opts.Views, routerOpts...)
	if err != nil {
		return nil, err
	}

	global := js.Global()
	global.Set("switchView", js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			r.SwitchView(ctx, router.ViewID(args[0].String()))
		}
		return nil
	}))

	doc := global.Get("document")
	doc.Call("addEventListener", "click", js.FuncOf(func(_ js.Value, args []js.Value) any {
		link := args[0].Get("target").Call("closest", "[data-target]")
		if link.IsNull() {
			return nil
		}
		args[0].Call("preventDefault")
		if link.Get("classList").Call("contains", "mobile-nav-link").Bool() {
			if menu := doc.Call("getElementById", "mobile-menu"); !menu.IsNull() {
				menu.Get("classList").Call("remove", "open")
			}
		}
		r.SwitchView(ctx, router.ViewID(link.Get("dataset").Get("target").String()))
		return nil
	}))

	// Only the view the URL names is fetched; the others load, and run their
	// load hooks, when first visited.
	r.Start(ctx, global.Get("location").Get("href").String())
	return r, nil
}
