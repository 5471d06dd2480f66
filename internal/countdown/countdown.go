// Package countdown computes the time left until the ceremony and keeps a
// single ticker alive for whoever displays it.
package countdown

import (
	"fmt"
	"sync"
	"time"
)

// Parts is the remaining time broken down for display.
type Parts struct {
	Days    int
	Hours   int
	Minutes int
	// Done is set once the target has passed. All other parts are zero then.
	Done bool
}

// Remaining splits target-now into whole days, hours, and minutes.
func Remaining(now, target time.Time) Parts {
	gap := target.Sub(now)
	if gap <= 0 {
		return Parts{Done: true}
	}
	return Parts{
		Days:    int(gap / (24 * time.Hour)),
		Hours:   int(gap % (24 * time.Hour) / time.Hour),
		Minutes: int(gap % time.Hour / time.Minute),
	}
}

// Fields returns days, hours, and minutes padded to two digits.
func (p Parts) Fields() (days, hours, minutes string) {
	return pad(p.Days), pad(p.Hours), pad(p.Minutes)
}

func (p Parts) String() string {
	d, h, m := p.Fields()
	return d + "d " + h + "h " + m + "m"
}

func pad(n int) string { return fmt.Sprintf("%02d", n) }

// Timer calls a function with fresh Parts on every tick. Arm is idempotent
// so a view can re-arm it each time it is shown without stacking tickers.
type Timer struct {
	target   time.Time
	interval time.Duration
	now      func() time.Time

	mu    sync.Mutex
	stop  chan struct{}
	done  chan struct{}
	armed bool
}

// NewTimer creates a disarmed timer ticking every interval (1s if zero).
func NewTimer(target time.Time, interval time.Duration) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{target: target, interval: interval, now: time.Now}
}

// Target is the instant being counted down to.
func (t *Timer) Target() time.Time { return t.target }

// Now returns the remaining parts at this moment.
func (t *Timer) Now() Parts { return Remaining(t.now(), t.target) }

// Armed reports whether a ticker is running.
func (t *Timer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// Arm calls fn immediately and then on every tick until Disarm. It returns
// false when the timer was already armed; fn is not replaced in that case.
func (t *Timer) Arm(fn func(Parts)) bool {
	t.mu.Lock()
	if t.armed {
		t.mu.Unlock()
		return false
	}
	t.armed = true
	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop, t.done = stop, done
	t.mu.Unlock()

	fn(t.Now())
	go func() {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn(t.Now())
			}
		}
	}()
	return true
}

// Disarm stops the ticker and waits for it to exit. Disarming a disarmed
// timer is a no-op.
func (t *Timer) Disarm() {
	t.mu.Lock()
	if !t.armed {
		t.mu.Unlock()
		return
	}
	t.armed = false
	stop, done := t.stop, t.done
	t.mu.Unlock()

	close(stop)
	<-done
}
