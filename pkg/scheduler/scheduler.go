// Package scheduler drives the guest's update export at a guest-controlled
// rate. It is a single-threaded cooperative pacer: Step invokes update
// exactly once and is non-blocking beyond the guest call itself; Sleep is
// the only suspension point.
package scheduler

import (
	"context"
	"math"
	"sync/atomic"
	"time"
)

const defaultTicksPerSecond = 60.0

// Guest is the surface the scheduler drives. Implemented by the compiled
// module instance (see pkg/loader).
type Guest interface {
	Update(ctx context.Context) error
}

// Scheduler owns the tick interval and the time of the last step.
type Scheduler struct {
	intervalNanos int64 // atomic; time.Duration as int64
	lastTick      time.Time
	guest         Guest
}

// New returns a Scheduler at the default rate of 60 ticks per second. guest
// may be nil if it isn't available yet (e.g. loading it requires a
// SetRate-capable scheduler to already exist); wire it in later with
// SetGuest before calling Step.
func New(guest Guest) *Scheduler {
	s := &Scheduler{guest: guest}
	atomic.StoreInt64(&s.intervalNanos, int64(time.Second/defaultTicksPerSecond))
	return s
}

// SetGuest assigns the guest Step drives. Lets construction begin (and
// SetRate start accepting calls) before the guest finishes instantiating.
func (s *Scheduler) SetGuest(guest Guest) {
	s.guest = guest
}

// Interval returns the current inter-tick interval.
func (s *Scheduler) Interval() time.Duration {
	return time.Duration(atomic.LoadInt64(&s.intervalNanos))
}

// SetRate sets interval := 1/rate immediately. Values that are non-positive,
// NaN, or infinite are ignored, leaving the previous rate in effect.
func (s *Scheduler) SetRate(ticksPerSecond float64) {
	if ticksPerSecond <= 0 || math.IsNaN(ticksPerSecond) || math.IsInf(ticksPerSecond, 0) {
		return
	}
	interval := time.Duration(float64(time.Second) / ticksPerSecond)
	atomic.StoreInt64(&s.intervalNanos, int64(interval))
}

// Step invokes the guest's update export exactly once. It returns the
// guest's error (e.g. a trap) without otherwise changing scheduler state;
// a later Step remains usable: step-time traps are reported, not fatal.
func (s *Scheduler) Step(ctx context.Context) error {
	s.lastTick = time.Now()
	return s.guest.Update(ctx)
}

// Sleep blocks until at least Interval has elapsed since the most recent
// Step began. If more than Interval has already elapsed, it returns
// immediately. Interval is re-read here, so a rate change made during the
// preceding Step takes effect on this very delay.
func (s *Scheduler) Sleep() {
	if s.lastTick.IsZero() {
		return
	}
	elapsed := time.Since(s.lastTick)
	if remaining := s.Interval() - elapsed; remaining > 0 {
		time.Sleep(remaining)
	}
}
