package scheduler

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingGuest struct {
	calls int
}

func (g *countingGuest) Update(ctx context.Context) error {
	g.calls++
	return nil
}

func TestDefaultRateIsSixty(t *testing.T) {
	s := New(&countingGuest{})
	assert.InDelta(t, float64(time.Second)/60.0, float64(s.Interval()), 1)
}

func TestSetRateUpdatesInterval(t *testing.T) {
	s := New(&countingGuest{})
	s.SetRate(120)
	assert.InDelta(t, float64(time.Second)/120.0, float64(s.Interval()), 1)
}

func TestSetRateIgnoresNonPositiveAndNonFinite(t *testing.T) {
	s := New(&countingGuest{})
	before := s.Interval()

	s.SetRate(0)
	assert.Equal(t, before, s.Interval())

	s.SetRate(-5)
	assert.Equal(t, before, s.Interval())

	s.SetRate(math.NaN())
	assert.Equal(t, before, s.Interval())
}

func TestStepInvokesUpdateExactlyOnce(t *testing.T) {
	guest := &countingGuest{}
	s := New(guest)

	assert.NoError(t, s.Step(context.Background()))
	assert.Equal(t, 1, guest.calls)
}

func TestSleepReturnsImmediatelyWhenIntervalAlreadyElapsed(t *testing.T) {
	guest := &countingGuest{}
	s := New(guest)
	s.SetRate(1000000) // tiny interval

	require := s.Step(context.Background())
	assert.NoError(t, require)

	start := time.Now()
	s.Sleep()
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}
