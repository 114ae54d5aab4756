package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeBackend lets table_test.go exercise Table's handle-arena logic
// without touching the real OS process list.
type fakeBackend struct {
	processes map[string]int          // name -> pid
	modules   map[int]map[string]uint64 // pid -> module name -> base
	memory    map[int]map[uint64]byte
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		processes: map[string]int{},
		modules:   map[int]map[string]uint64{},
		memory:    map[int]map[uint64]byte{},
	}
}

func (f *fakeBackend) findProcess(name string) (int, bool) {
	pid, ok := f.processes[name]
	return pid, ok
}

func (f *fakeBackend) moduleBase(pid int, name string) (uint64, bool) {
	mods, ok := f.modules[pid]
	if !ok {
		return 0, false
	}
	base, ok := mods[name]
	return base, ok
}

func (f *fakeBackend) readMem(pid int, addr uint64, buf []byte) bool {
	mem, ok := f.memory[pid]
	if !ok {
		return false
	}
	for i := range buf {
		b, ok := mem[addr+uint64(i)]
		if !ok {
			return false
		}
		buf[i] = b
	}
	return true
}

func newTestTable(b *fakeBackend) *Table {
	return &Table{backend: b}
}

func TestAttachReturnsInvalidHandleForUnknownProcess(t *testing.T) {
	table := newTestTable(newFakeBackend())
	assert.Equal(t, InvalidHandle, table.Attach("nonexistent"))
}

func TestAttachDetachLifecycle(t *testing.T) {
	fb := newFakeBackend()
	fb.processes["fakegame"] = 1234
	fb.modules[1234] = map[string]uint64{"fakemodule": 0x1000}
	fb.memory[1234] = map[uint64]byte{0x1042: 42}

	table := newTestTable(fb)
	h := table.Attach("fakegame")
	assert.NotEqual(t, InvalidHandle, h)

	assert.Equal(t, uint64(0x1000), table.GetModule(h, "fakemodule"))

	buf := make([]byte, 1)
	assert.True(t, table.ReadMem(h, 0x1042, buf))
	assert.Equal(t, byte(42), buf[0])

	table.Detach(h)

	assert.Equal(t, uint64(0), table.GetModule(h, "fakemodule"))
	assert.False(t, table.ReadMem(h, 0x1042, buf))
}

func TestDetachIsIdempotentOnSentinel(t *testing.T) {
	table := newTestTable(newFakeBackend())
	table.Detach(InvalidHandle)
	table.Detach(InvalidHandle)
}

func TestHandleGenerationPreventsABA(t *testing.T) {
	fb := newFakeBackend()
	fb.processes["a"] = 1
	fb.processes["b"] = 2
	fb.modules[2] = map[string]uint64{"mod": 0x500}

	table := newTestTable(fb)
	h1 := table.Attach("a")
	table.Detach(h1)

	h2 := table.Attach("b") // reuses h1's freed slot with a bumped generation
	assert.NotEqual(t, InvalidHandle, h2)

	// The stale handle must never resolve to the new attachment's process.
	assert.Equal(t, uint64(0), table.GetModule(h1, "mod"))
	assert.Equal(t, uint64(0x500), table.GetModule(h2, "mod"))
}

func TestMultipleConcurrentAttachmentsGetIndependentHandles(t *testing.T) {
	fb := newFakeBackend()
	fb.processes["shared"] = 99

	table := newTestTable(fb)
	h1 := table.Attach("shared")
	h2 := table.Attach("shared")

	assert.NotEqual(t, h1, h2)
	table.Detach(h1)
	// h2 remains valid after h1 is detached.
	fb.modules[99] = map[string]uint64{"mod": 0x1}
	assert.Equal(t, uint64(0x1), table.GetModule(h2, "mod"))
}
