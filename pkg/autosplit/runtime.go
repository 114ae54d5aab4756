// Package autosplit is the runtime façade: it owns the process handle
// table, the host ABI, the module loader, and the tick scheduler, and
// exposes construction, stepping, sleeping, and teardown to the embedder.
// A plain struct of owned sub-components plus a logger, constructed in one
// fallible step and torn down by a single Close.
package autosplit

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/jesseduffield/wasmsplit/pkg/hostabi"
	"github.com/jesseduffield/wasmsplit/pkg/loader"
	"github.com/jesseduffield/wasmsplit/pkg/process"
	"github.com/jesseduffield/wasmsplit/pkg/scheduler"
	"github.com/jesseduffield/wasmsplit/pkg/timer"
)

// Runtime owns every resource a loaded guest needs for its lifetime: the
// process handle table, the guest instance, and the tick scheduler. There
// is no reload; a Runtime is constructed once per guest and torn down once.
type Runtime struct {
	log       *logrus.Entry
	procs     *process.Table
	guest     *loader.Guest
	scheduler *scheduler.Scheduler
}

// New loads the guest module at path, validates it against the host ABI,
// invokes its configure export once, and returns a Runtime ready to be
// stepped. On any failure no resources are left allocated.
//
// The scheduler is constructed (at initialTickRate, or the default if
// initialTickRate isn't positive) before the guest is loaded, because
// loader.Load invokes the guest's configure export synchronously before
// returning, and configure is allowed to call set_tick_rate. Wiring
// Host.SetRate to a live scheduler ahead of that call is what makes such a
// call during configure take effect instead of being silently dropped.
func New(ctx context.Context, path string, t timer.Timer, initialTickRate float64, log *logrus.Entry) (*Runtime, error) {
	procs := process.NewTable(log)
	sched := scheduler.New(nil)
	sched.SetRate(initialTickRate)

	rt := &Runtime{log: log, procs: procs, scheduler: sched}

	host := &hostabi.Host{
		Procs:   procs,
		Timer:   t,
		Log:     log,
		SetRate: sched.SetRate,
	}

	guest, err := loader.Load(ctx, path, host)
	if err != nil {
		procs.Close()
		return nil, err
	}

	sched.SetGuest(guest)
	rt.guest = guest

	return rt, nil
}

// Step invokes the guest's update export exactly once. A trap surfaces as
// an error but leaves the Runtime usable for a later Step.
func (r *Runtime) Step(ctx context.Context) error {
	return r.scheduler.Step(ctx)
}

// Sleep blocks until at least the current tick interval has elapsed since
// the most recent Step.
func (r *Runtime) Sleep() {
	r.scheduler.Sleep()
}

// Close releases the guest's WASM engine resources and detaches every
// outstanding process handle. Safe to call from a different thread than
// the one that called Step, provided no Step is in progress.
func (r *Runtime) Close(ctx context.Context) error {
	r.procs.Close()
	if r.guest != nil {
		return r.guest.Close(ctx)
	}
	return nil
}
