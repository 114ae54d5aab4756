package autosplit

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesseduffield/wasmsplit/internal/wasmfixture"
	"github.com/jesseduffield/wasmsplit/pkg/timer"
)

func writeFixture(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guest.wasm")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestNewLoadsGuestAndRunsConfigure(t *testing.T) {
	rt := timer.NewRecordingTimer()
	path := writeFixture(t, wasmfixture.Basic())
	log := logrus.NewEntry(logrus.New())

	runtime, err := New(context.Background(), path, rt, 60, log)
	require.NoError(t, err)
	defer runtime.Close(context.Background())

	assert.NotEmpty(t, rt.Events())
}

func TestStepDrivesGuestUpdateAndTickRate(t *testing.T) {
	rt := timer.NewRecordingTimer()
	path := writeFixture(t, wasmfixture.TickRateSimple())
	log := logrus.NewEntry(logrus.New())

	runtime, err := New(context.Background(), path, rt, 60, log)
	require.NoError(t, err)
	defer runtime.Close(context.Background())

	// configure() called set_tick_rate(120), which must have reached the
	// scheduler (wired in before the guest loaded) before any Step.
	assert.InDelta(t, 1e9/120.0, float64(runtime.scheduler.Interval()), 1)

	for i := 0; i < 3; i++ {
		require.NoError(t, runtime.Step(context.Background()))
	}

	splits := 0
	for _, e := range rt.Events() {
		if e.Method == "Split" {
			splits++
		}
	}
	assert.Equal(t, 3, splits)
}

func TestCloseIsSafeWithoutStep(t *testing.T) {
	rt := timer.NewRecordingTimer()
	path := writeFixture(t, wasmfixture.Basic())
	log := logrus.NewEntry(logrus.New())

	runtime, err := New(context.Background(), path, rt, 60, log)
	require.NoError(t, err)
	assert.NoError(t, runtime.Close(context.Background()))
}
