package process

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// FakeBackend is an in-memory process backend for tests outside this
// package that need to drive attach/get_module/read_mem through a real
// Table without a real OS process to attach to.
type FakeBackend struct {
	mu        sync.Mutex
	processes map[string]int
	modules   map[int]map[string]uint64
	memory    map[int]map[uint64][]byte
}

// NewFakeBackend returns an empty FakeBackend; populate it with
// AddProcess/AddModule/AddMemory before attaching.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		processes: map[string]int{},
		modules:   map[int]map[string]uint64{},
		memory:    map[int]map[uint64][]byte{},
	}
}

// AddProcess makes findProcess report pid for name.
func (f *FakeBackend) AddProcess(name string, pid int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processes[name] = pid
}

// AddModule makes moduleBase report base for name within pid.
func (f *FakeBackend) AddModule(pid int, name string, base uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.modules[pid] == nil {
		f.modules[pid] = map[string]uint64{}
	}
	f.modules[pid][name] = base
}

// AddMemory makes readMem serve data for reads starting at addr within pid.
// A read is only satisfied if it fits entirely within data.
func (f *FakeBackend) AddMemory(pid int, addr uint64, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.memory[pid] == nil {
		f.memory[pid] = map[uint64][]byte{}
	}
	f.memory[pid][addr] = append([]byte{}, data...)
}

func (f *FakeBackend) findProcess(name string) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pid, ok := f.processes[name]
	return pid, ok
}

func (f *FakeBackend) moduleBase(pid int, name string) (uint64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	base, ok := f.modules[pid][name]
	return base, ok
}

func (f *FakeBackend) readMem(pid int, addr uint64, buf []byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.memory[pid][addr]
	if !ok || len(data) < len(buf) {
		return false
	}
	copy(buf, data)
	return true
}

var _ backend = (*FakeBackend)(nil)

// NewTableWithBackend returns a Table driven by the given FakeBackend,
// bypassing the platform's default process inspection. Used by tests
// elsewhere in the module that exercise get_module/read_mem through
// FakeBackend.
func NewTableWithBackend(b *FakeBackend, log *logrus.Entry) *Table {
	return &Table{backend: b, log: log}
}
