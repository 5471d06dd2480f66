package router

import "time"

// DefaultFrameInterval approximates one display frame at 60 Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// ClockScheduler runs callbacks on wall-clock timers.
type ClockScheduler struct {
	FrameInterval time.Duration
}

func (s ClockScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

func (s ClockScheduler) NextFrame(f func()) {
	d := s.FrameInterval
	if d <= 0 {
		d = DefaultFrameInterval
	}
	time.AfterFunc(d, f)
}
