// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ratelimit enforces a requests-per-minute ceiling for API calls.
package ratelimit

import "time"

const window = time.Minute

// Limiter is an in-process governor for a single caller. It combines a
// rolling one-minute window counter with a minimum inter-request spacing of
// window/ceiling. Not safe for concurrent use; the pipeline is sequential.
type Limiter struct {
	rpm         int
	windowStart time.Time
	count       int
	lastRequest time.Time

	// now and sleep are swapped out by tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// New returns a limiter with the given requests-per-minute ceiling.
// Non-positive ceilings are treated as 1.
func New(rpm int) *Limiter {
	l := &Limiter{
		now:   time.Now,
		sleep: time.Sleep,
	}
	l.Reconfigure(rpm)
	l.windowStart = l.now()
	return l
}

// Reconfigure changes the ceiling for subsequent Throttle calls. Already
// elapsed timing is not adjusted retroactively.
func (l *Limiter) Reconfigure(rpm int) {
	if rpm <= 0 {
		rpm = 1
	}
	l.rpm = rpm
}

// Throttle blocks until the next request is allowed, then counts it.
// If the current window has elapsed, the counter resets. If the ceiling is
// reached, Throttle sleeps out the remainder of the window. Independently,
// requests are spaced at least window/ceiling apart.
func (l *Limiter) Throttle() {
	now := l.now()

	if now.Sub(l.windowStart) >= window {
		l.windowStart = now
		l.count = 0
	}

	if l.count >= l.rpm {
		remaining := window - now.Sub(l.windowStart)
		if remaining > 0 {
			l.sleep(remaining)
		}
		now = l.now()
		l.windowStart = now
		l.count = 0
	}

	spacing := window / time.Duration(l.rpm)
	if !l.lastRequest.IsZero() {
		if elapsed := now.Sub(l.lastRequest); elapsed < spacing {
			l.sleep(spacing - elapsed)
			now = l.now()
		}
	}

	l.lastRequest = now
	l.count++
}
