// Package process implements the handle table that mediates all access to
// target-process memory: attach-by-name, module-base lookup, and bounded
// memory reads. An arena of OS-process wrappers indexed by a
// generation-tagged 64-bit identifier, which prevents ABA when a handle
// index is reused after detach.
package process

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Handle is an opaque 64-bit value identifying a live attachment. Zero is
// the reserved invalid/sentinel value.
type Handle uint64

// InvalidHandle is the sentinel returned on a failed attach.
const InvalidHandle Handle = 0

// backend is the OS-specific surface the Table drives. Implementations
// never return errors: every failure is total and encoded in the bool/zero
// return value.
type backend interface {
	// findProcess returns the lowest PID of a running process whose
	// executable basename equals name.
	findProcess(name string) (pid int, ok bool)
	// moduleBase returns the lowest base address among modules loaded in
	// pid whose basename equals name.
	moduleBase(pid int, name string) (base uint64, ok bool)
	// readMem copies len(buf) bytes from address addr in pid into buf.
	readMem(pid int, addr uint64, buf []byte) bool
}

type slot struct {
	generation uint64
	pid        int
	active     bool
}

// Table owns every outstanding process attachment for one runtime
// instance.
type Table struct {
	mu      sync.Mutex
	slots   []slot
	free    []int
	backend backend
	log     *logrus.Entry
}

// NewTable returns a Table backed by the current platform's process
// inspection primitives.
func NewTable(log *logrus.Entry) *Table {
	return &Table{backend: newBackend(), log: log}
}

func encodeHandle(index int, generation uint64) Handle {
	return Handle(uint64(uint32(index+1)) | (generation << 32))
}

func decodeHandle(h Handle) (index int, generation uint64, ok bool) {
	if h == InvalidHandle {
		return 0, 0, false
	}
	idx := uint32(uint64(h))
	if idx == 0 {
		return 0, 0, false
	}
	return int(idx - 1), uint64(h) >> 32, true
}

// Attach scans the OS process list for the first running process whose
// executable name matches name (lowest PID wins on ties). Returns a fresh
// non-zero handle on success, InvalidHandle if no such process exists or
// permission is denied.
func (t *Table) Attach(name string) Handle {
	pid, ok := t.backend.findProcess(name)
	if !ok {
		if t.log != nil {
			t.log.WithField("name", name).Debug("process: attach failed, no matching process")
		}
		return InvalidHandle
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var idx int
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[idx].generation++
	} else {
		idx = len(t.slots)
		t.slots = append(t.slots, slot{generation: 1})
	}
	t.slots[idx].pid = pid
	t.slots[idx].active = true

	h := encodeHandle(idx, t.slots[idx].generation)
	if t.log != nil {
		t.log.WithFields(logrus.Fields{"name": name, "pid": pid, "handle": uint64(h)}).Debug("process: attached")
	}
	return h
}

// Detach releases the OS resource associated with handle. Idempotent on
// InvalidHandle and on an already-detached or unknown handle.
func (t *Table) Detach(h Handle) {
	idx, generation, ok := decodeHandle(h)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if idx >= len(t.slots) || !t.slots[idx].active || t.slots[idx].generation != generation {
		return
	}
	t.slots[idx].active = false
	t.free = append(t.free, idx)
}

// lookup resolves a handle to its backing PID, returning false if the
// handle is invalid, detached, or stale (reused generation).
func (t *Table) lookup(h Handle) (int, bool) {
	idx, generation, ok := decodeHandle(h)
	if !ok {
		return 0, false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if idx >= len(t.slots) || !t.slots[idx].active || t.slots[idx].generation != generation {
		return 0, false
	}
	return t.slots[idx].pid, true
}

// GetModule returns the base load address of the module named name within
// the process denoted by h, or zero if the target is gone, the handle is
// invalid, or no such module is loaded.
func (t *Table) GetModule(h Handle, name string) uint64 {
	pid, ok := t.lookup(h)
	if !ok {
		return 0
	}
	base, ok := t.backend.moduleBase(pid, name)
	if !ok {
		return 0
	}
	return base
}

// ReadMem copies len(buf) bytes from absolute address addr in the process
// denoted by h into buf, returning true on full success.
func (t *Table) ReadMem(h Handle, addr uint64, buf []byte) bool {
	pid, ok := t.lookup(h)
	if !ok {
		return false
	}
	return t.backend.readMem(pid, addr, buf)
}

// Close detaches every outstanding handle, as runtime teardown requires.
func (t *Table) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.slots {
		t.slots[i].active = false
	}
	t.free = nil
}
