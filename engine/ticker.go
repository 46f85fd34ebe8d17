package engine

import (
	"errors"
	"time"
)

// DefaultFPS is the frame rate used when none is configured
const DefaultFPS = 60

// ErrClockUnavailable is returned when the time provider yields no reading
var ErrClockUnavailable = errors.New("engine: monotonic clock unavailable")

// Ticker converts clock readings into fixed-duration update ticks
// Elapsed time beyond whole ticks is kept and paid out later, so the
// average rate stays exact even when Tick is called irregularly
type Ticker struct {
	clock    TimeProvider
	interval time.Duration
	fn       func(dt time.Duration) error

	prev        time.Time
	accumulated time.Duration
	ticks       uint64
}

// IntervalForRate returns the tick duration for fps ticks per second
// Rates below 1 fall back to DefaultFPS
func IntervalForRate(fps int) time.Duration {
	if fps < 1 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

// NewTicker creates a ticker firing fn once per interval of clock time
func NewTicker(interval time.Duration, clock TimeProvider, fn func(dt time.Duration) error) (*Ticker, error) {
	if interval <= 0 {
		return nil, errors.New("engine: ticker interval must be positive")
	}
	if clock == nil {
		return nil, ErrClockUnavailable
	}
	now := clock.Now()
	if now.IsZero() {
		return nil, ErrClockUnavailable
	}
	return &Ticker{
		clock:    clock,
		interval: interval,
		fn:       fn,
		prev:     now,
	}, nil
}

// Restart forgets elapsed and accumulated time, counting from now
func (t *Ticker) Restart() error {
	now := t.clock.Now()
	if now.IsZero() {
		return ErrClockUnavailable
	}
	t.prev = now
	t.accumulated = 0
	return nil
}

// Tick fires the callback for every whole interval elapsed since the last
// firing, then drains the accumulated remainder
// Tick never blocks; the first callback error stops the pass and is returned
func (t *Ticker) Tick() error {
	now := t.clock.Now()
	if now.IsZero() {
		return ErrClockUnavailable
	}

	elapsed := now.Sub(t.prev)
	if elapsed >= t.interval {
		t.prev = now
		for elapsed >= t.interval {
			elapsed -= t.interval
			if err := t.fire(); err != nil {
				return err
			}
		}
		t.accumulated += elapsed
	}

	for t.accumulated >= t.interval {
		t.accumulated -= t.interval
		if err := t.fire(); err != nil {
			return err
		}
	}
	return nil
}

func (t *Ticker) fire() error {
	t.ticks++
	return t.fn(t.interval)
}

// Until returns the time left before the next tick is due, zero if overdue
func (t *Ticker) Until() time.Duration {
	now := t.clock.Now()
	if now.IsZero() {
		return 0
	}
	left := t.interval - now.Sub(t.prev)
	if left < 0 {
		return 0
	}
	return left
}

// Interval returns the fixed tick duration
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Accumulated returns the carried remainder not yet paid out as a tick
func (t *Ticker) Accumulated() time.Duration {
	return t.accumulated
}

// Ticks returns the number of callbacks fired
func (t *Ticker) Ticks() uint64 {
	return t.ticks
}
