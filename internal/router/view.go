package router

import (
	"context"
	"time"
)

// ViewID names one top-level navigable section of the site.
type ViewID string

const (
	Home       ViewID = "home"
	Album      ViewID = "album"
	Invitation ViewID = "invitation"
)

// View is a statically defined section and the locator of its fragment.
type View struct {
	ID     ViewID
	Source string
	Title  string
}

// DefaultViews returns the three sections served under pages/.
func DefaultViews() []View {
	return []View{
		{ID: Home, Source: "pages/home.html", Title: "Inicio"},
		{ID: Album, Source: "pages/album.html", Title: "Álbum"},
		{ID: Invitation, Source: "pages/invitation.html", Title: "Invitación"},
	}
}

// Phase is the router's coarse lifecycle state.
type Phase int

const (
	Uninitialized Phase = iota
	Loading
	Active
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Loading:
		return "loading"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// State pairs a phase with the view it refers to. View is empty while
// Uninitialized.
type State struct {
	Phase Phase
	View  ViewID
}

// FragmentSource fetches the markup behind a view's source locator.
type FragmentSource interface {
	Fetch(ctx context.Context, source string) (string, error)
}

// FragmentSourceFunc adapts a function to FragmentSource.
type FragmentSourceFunc func(ctx context.Context, source string) (string, error)

func (f FragmentSourceFunc) Fetch(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}

// Surface is the set of view containers the router swaps between.
// Implementations must be safe for use from multiple goroutines; the router
// is their only writer.
type Surface interface {
	// Inject replaces the container's content with markup.
	Inject(id ViewID, markup string) error
	// Show makes the container participate in layout.
	Show(id ViewID)
	// Hide removes the container from layout.
	Hide(id ViewID)
	SetActive(id ViewID, active bool)
	IsActive(id ViewID) bool
	ScrollTop(id ViewID)
}

// Indicator is a navigation control group (tab bar, side menu) that marks
// the entry for the active view.
type Indicator interface {
	MarkActive(id ViewID)
}

// History is the address bar: the current fragment identifier and a way to
// push a new entry without reloading.
type History interface {
	Fragment() string
	Push(fragment string)
}

// Scheduler provides the two timing primitives a transition needs.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
	NextFrame(f func())
}
