//go:build linux

package process

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

// unsafeBytePtrFromAddr turns an absolute remote-process address into the
// *byte value process_vm_readv's remote iovec expects. It is never
// dereferenced locally: the kernel interprets it in the target's address
// space, not ours.
func unsafeBytePtrFromAddr(addr uint64) *byte {
	return (*byte)(unsafe.Pointer(uintptr(addr)))
}

// linuxBackend drives target-process introspection via /proc, in the
// directory-walking, field-scanning idiom guillermo-go.procstat uses to
// read /proc/<pid>/stat.
type linuxBackend struct{}

func newBackend() backend {
	return linuxBackend{}
}

func (linuxBackend) findProcess(name string) (int, bool) {
	pids, err := listPids()
	if err != nil {
		return 0, false
	}
	sort.Ints(pids)

	for _, pid := range pids {
		exe, err := processExeBasename(pid)
		if err != nil {
			continue
		}
		if exe == name {
			return pid, true
		}
	}
	return 0, false
}

func (linuxBackend) moduleBase(pid int, name string) (uint64, bool) {
	file, err := os.Open(filepath.Join("/proc", strconv.Itoa(pid), "maps"))
	if err != nil {
		return 0, false
	}
	defer file.Close()

	var best uint64
	found := false

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}
		mappedPath := fields[len(fields)-1]
		if filepath.Base(mappedPath) != name {
			continue
		}
		addrRange := fields[0]
		startStr, _, ok := strings.Cut(addrRange, "-")
		if !ok {
			continue
		}
		start, err := strconv.ParseUint(startStr, 16, 64)
		if err != nil {
			continue
		}
		if !found || start < best {
			best = start
			found = true
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, false
	}
	return best, found
}

func (linuxBackend) readMem(pid int, addr uint64, buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	if !processAlive(pid) {
		return false
	}

	local := []unix.Iovec{{Base: &buf[0], Len: uint64(len(buf))}}
	remote := []unix.Iovec{{Base: (*byte)(nil), Len: uint64(len(buf))}}
	remote[0].Base = unsafeBytePtrFromAddr(addr)

	n, err := unix.ProcessVMReadv(pid, local, remote, 0)
	if err == nil && n == len(buf) {
		return true
	}

	// Fall back to /proc/<pid>/mem, which works across more kernel
	// configurations (e.g. when yama ptrace_scope denies process_vm_readv).
	return readMemFallback(pid, addr, buf)
}

func readMemFallback(pid int, addr uint64, buf []byte) bool {
	file, err := os.Open(filepath.Join("/proc", strconv.Itoa(pid), "mem"))
	if err != nil {
		return false
	}
	defer file.Close()

	n, err := file.ReadAt(buf, int64(addr))
	return err == nil && n == len(buf)
}

func listPids() ([]int, error) {
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return nil, err
	}
	pids := make([]int, 0, len(entries))
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		pids = append(pids, pid)
	}
	return pids, nil
}

func processExeBasename(pid int) (string, error) {
	target, err := os.Readlink(filepath.Join("/proc", strconv.Itoa(pid), "exe"))
	if err != nil {
		return "", err
	}
	return filepath.Base(target), nil
}

func processAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}
