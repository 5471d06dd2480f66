//go:build js && wasm

// Package dom binds the view router to the browser page: view containers
// are the #view-<id> sections, the address bar is location.hash, and
// navigation controls are any element carrying data-target.
package dom

import (
	"context"
	"fmt"
	"strings"
	"syscall/js"
	"time"

	"github.com/heyojules/invite/internal/router"
)

// Surface drives the #view-<id> containers.
type Surface struct {
	doc    js.Value
	win    js.Value
	prefix string
}

// NewSurface binds the current document.
func NewSurface() *Surface {
	return &Surface{
		doc:    js.Global().Get("document"),
		win:    js.Global(),
		prefix: "view-",
	}
}

func (s *Surface) el(id router.ViewID) js.Value {
	return s.doc.Call("getElementById", s.prefix+string(id))
}

func (s *Surface) Inject(id router.ViewID, markup string) error {
	el := s.el(id)
	if el.IsNull() {
		return fmt.Errorf("no element #%s%s", s.prefix, id)
	}
	el.Set("innerHTML", markup)
	return nil
}

func (s *Surface) Show(id router.ViewID) {
	if el := s.el(id); !el.IsNull() {
		el.Get("style").Set("display", "block")
	}
}

func (s *Surface) Hide(id router.ViewID) {
	if el := s.el(id); !el.IsNull() {
		el.Get("style").Set("display", "none")
	}
}

func (s *Surface) SetActive(id router.ViewID, active bool) {
	if el := s.el(id); !el.IsNull() {
		el.Get("classList").Call("toggle", "active", active)
	}
}

func (s *Surface) IsActive(id router.ViewID) bool {
	el := s.el(id)
	return !el.IsNull() && el.Get("classList").Call("contains", "active").Bool()
}

func (s *Surface) ScrollTop(id router.ViewID) {
	if el := s.el(id); !el.IsNull() {
		el.Call("scrollTo", 0, 0)
	}
	s.win.Call("scrollTo", 0, 0)
}

// History is location.hash plus history.pushState.
type History struct{}

func (History) Fragment() string {
	return strings.TrimPrefix(js.Global().Get("location").Get("hash").String(), "#")
}

func (History) Push(fragment string) {
	js.Global().Get("history").Call("pushState", js.Null(), "", "#"+fragment)
}

// Scheduler is setTimeout and requestAnimationFrame.
type Scheduler struct{}

func (Scheduler) AfterFunc(d time.Duration, f func()) {
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		cb.Release()
		f()
		return nil
	})
	js.Global().Call("setTimeout", cb, d.Milliseconds())
}

func (Scheduler) NextFrame(f func()) {
	var cb js.Func
	cb = js.FuncOf(func(js.Value, []js.Value) any {
		cb.Release()
		f()
		return nil
	})
	js.Global().Call("requestAnimationFrame", cb)
}

// NavLinks marks the elements matching Selector whose data-target is the
// active view.
type NavLinks struct {
	Selector string
}

func (n NavLinks) MarkActive(id router.ViewID) {
	doc := js.Global().Get("document")
	each(doc.Call("querySelectorAll", n.Selector), func(el js.Value) {
		el.Get("classList").Call("remove", "active")
	})
	sel := fmt.Sprintf(`%s[data-target="%s"]`, n.Selector, id)
	each(doc.Call("querySelectorAll", sel), func(el js.Value) {
		el.Get("classList").Call("add", "active")
	})
}

func each(list js.Value, fn func(js.Value)) {
	for i := 0; i < list.Get("length").Int(); i++ {
		fn(list.Call("item", i))
	}
}

// globalHook names a page script function run after a view loads.
type globalHook struct {
	view  router.ViewID
	name  string
	enter bool
}

// globalHooks are looked up on window when they fire; a page without the
// script simply has no such function.
var globalHooks = []globalHook{
	{view: router.Home, name: "initReveal"},
	{view: router.Home, name: "initCountdown", enter: true},
	{view: router.Home, name: "initGuestbook"},
	{view: router.Album, name: "initGallery"},
	{view: router.Album, name: "loadPhotos"},
	{view: router.Invitation, name: "initRsvp"},
}

// RegisterGlobalHooks adds the page script functions to reg.
func RegisterGlobalHooks(reg *router.Registry) {
	for _, h := range globalHooks {
		if h.enter {
			reg.OnEnter(h.view, h.name, callGlobal(h.name))
			continue
		}
		reg.OnLoad(h.view, h.name, callGlobal(h.name))
	}
}

func callGlobal(name string) router.Hook {
	return func(context.Context) error {
		fn := js.Global().Get(name)
		if fn.Type() != js.TypeFunction {
			return nil
		}
		fn.Invoke()
		return nil
	}
}
