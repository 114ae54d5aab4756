package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jesseduffield/wasmsplit/internal/wasmfixture"
	"github.com/jesseduffield/wasmsplit/pkg/errs"
	"github.com/jesseduffield/wasmsplit/pkg/hostabi"
	"github.com/jesseduffield/wasmsplit/pkg/process"
	"github.com/jesseduffield/wasmsplit/pkg/timer"
)

func writeFixture(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guest.wasm")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestHost() (*hostabi.Host, *timer.RecordingTimer) {
	rt := timer.NewRecordingTimer()
	log := logrus.NewEntry(logrus.New())
	host := &hostabi.Host{
		Procs: process.NewTable(log),
		Timer: rt,
		Log:   log,
	}
	return host, rt
}

func TestLoadAcceptsBasicGuestAndRunsConfigure(t *testing.T) {
	host, rt := newTestHost()
	path := writeFixture(t, wasmfixture.Basic())

	guest, err := Load(context.Background(), path, host)
	require.NoError(t, err)
	defer guest.Close(context.Background())

	methods := make([]string, len(rt.Events()))
	for i, e := range rt.Events() {
		methods[i] = e.Method
	}
	assert.Equal(t, []string{"Start", "Split", "PauseGameTime", "ResumeGameTime", "Reset"}, methods)

	require.NoError(t, guest.Update(context.Background()))
}

func TestLoadRejectsGuestMissingUpdateExport(t *testing.T) {
	host, _ := newTestHost()
	path := writeFixture(t, wasmfixture.WrongInterface())

	_, err := Load(context.Background(), path, host)
	require.Error(t, err)
	assert.True(t, errs.HasKind(err, errs.InvalidInterface))
}

func TestLoadRejectsGuestWithUnknownImport(t *testing.T) {
	host, _ := newTestHost()
	path := writeFixture(t, wasmfixture.UnknownFunc())

	_, err := Load(context.Background(), path, host)
	require.Error(t, err)
	assert.True(t, errs.HasKind(err, errs.UnknownHostFunction))
}

func TestLoadRejectsMissingFile(t *testing.T) {
	host, _ := newTestHost()

	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.wasm"), host)
	require.Error(t, err)
	assert.True(t, errs.HasKind(err, errs.Io))
}

func TestLoadRunsGuestThatChecksForMissingProcess(t *testing.T) {
	host, rt := newTestHost()
	path := writeFixture(t, wasmfixture.MissingProcess())

	guest, err := Load(context.Background(), path, host)
	require.NoError(t, err)
	defer guest.Close(context.Background())

	// attach() found nothing running under that name, so configure's early
	// return means start is never reached.
	assert.Empty(t, rt.Events())
}

func TestLoadRunsGuestThatReadsProcessMemory(t *testing.T) {
	rt := timer.NewRecordingTimer()
	log := logrus.NewEntry(logrus.New())

	const (
		pid        = 4242
		moduleBase = uint64(0x10000)
		readOffset = 0x2000
	)
	fb := process.NewFakeBackend()
	fb.AddProcess("fakegame", pid)
	fb.AddModule(pid, "fakemodule", moduleBase)
	fb.AddMemory(pid, moduleBase+readOffset, []byte{42})

	host := &hostabi.Host{
		Procs: process.NewTableWithBackend(fb, log),
		Timer: rt,
		Log:   log,
	}
	path := writeFixture(t, wasmfixture.ProcessRead())

	guest, err := Load(context.Background(), path, host)
	require.NoError(t, err)
	defer guest.Close(context.Background())

	methods := make([]string, len(rt.Events()))
	for i, e := range rt.Events() {
		methods[i] = e.Method
	}
	// attach found the process, get_module found the module, the memory
	// read succeeded, and the byte it read back was the expected 42.
	assert.Equal(t, []string{"Start", "Split", "Split", "Split"}, methods)
}

func TestLoadRunsGuestThatHandlesMissingModule(t *testing.T) {
	rt := timer.NewRecordingTimer()
	log := logrus.NewEntry(logrus.New())

	const pid = 4242
	fb := process.NewFakeBackend()
	fb.AddProcess("fakegame", pid)
	// No module registered: get_module will report not-found.

	host := &hostabi.Host{
		Procs: process.NewTableWithBackend(fb, log),
		Timer: rt,
		Log:   log,
	}
	path := writeFixture(t, wasmfixture.MissingModule())

	guest, err := Load(context.Background(), path, host)
	require.NoError(t, err)
	defer guest.Close(context.Background())

	methods := make([]string, len(rt.Events()))
	for i, e := range rt.Events() {
		methods[i] = e.Method
	}
	// attach and start succeeded, but get_module's early return means
	// split is never reached.
	assert.Equal(t, []string{"Start"}, methods)
}
