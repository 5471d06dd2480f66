package tui

import (
	"context"

	"github.com/heyojules/invite/internal/countdown"
	"github.com/heyojules/invite/internal/router"
)

// registerHooks binds each view's collaborators. Load hooks run once, when
// the fragment first arrives; enter hooks run on every activation, the first
// one included. Hooks only post messages so the router is never held up by
// the network.
func (s *Site) registerHooks(reg *router.Registry) {
	if timer := s.cfg.Countdown; timer != nil {
		arm := func(context.Context) error {
			timer.Arm(func(p countdown.Parts) { s.post(countdownMsg{parts: p}) })
			return nil
		}
		reg.OnEnter(router.Home, "countdown", arm)
	}

	if s.cfg.Data == nil {
		return
	}

	reg.OnLoad(router.Home, "guestbook", func(context.Context) error {
		s.post(guestbookReadyMsg{})
		s.loadGuestbook()
		return nil
	})
	reg.OnLoad(router.Album, "gallery", func(context.Context) error {
		s.post(galleryReadyMsg{})
		s.loadPhotos()
		return nil
	})
	reg.OnLoad(router.Invitation, "rsvp", func(context.Context) error {
		s.post(rsvpReadyMsg{})
		return nil
	})
}
