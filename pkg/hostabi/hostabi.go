// Package hostabi wires the fixed set of functions exported to the guest as
// a wazero host module named "env". Each function decodes its arguments
// from the guest's linear memory and dispatches to the process handle
// table, the timer capability, or the tick scheduler.
//
// The export style — explicit WithGoModuleFunction chains reading a raw
// stack and an api.Module, rather than reflection-based bindings — mirrors
// the wapc-go wazero engine's instantiateWapcHost, which the retrieval pack
// includes as the reference implementation of a wazero host module built
// this way.
package hostabi

import (
	"context"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/jesseduffield/wasmsplit/pkg/process"
	"github.com/jesseduffield/wasmsplit/pkg/timer"
)

const (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
	f64 = api.ValueTypeF64
)

// ModuleName is the name under which these functions are exported; guest
// modules import against it.
const ModuleName = "env"

// RateSetter adjusts the tick scheduler's rate. Implemented by
// pkg/scheduler.Scheduler.SetRate.
type RateSetter func(ratePerSecond float64)

// Host owns the state the ABI functions dispatch to.
type Host struct {
	Procs   *process.Table
	Timer   timer.Timer
	SetRate RateSetter
	Log     *logrus.Entry
}

// Instantiate builds and instantiates the "env" host module exporting
// every function in the ABI table.
func (h *Host) Instantiate(ctx context.Context, r wazero.Runtime) (api.Module, error) {
	return r.NewHostModuleBuilder(ModuleName).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.printMessage), []api.ValueType{i32, i32}, []api.ValueType{}).
		WithParameterNames("ptr", "len").
		Export("print_message").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.attach), []api.ValueType{i32, i32}, []api.ValueType{i64}).
		WithParameterNames("name_ptr", "name_len").
		Export("attach").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.detach), []api.ValueType{i64}, []api.ValueType{}).
		WithParameterNames("handle").
		Export("detach").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.getModule), []api.ValueType{i64, i32, i32}, []api.ValueType{i64}).
		WithParameterNames("handle", "name_ptr", "name_len").
		Export("get_module").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.readMem), []api.ValueType{i64, i64, i32, i32}, []api.ValueType{i32}).
		WithParameterNames("handle", "address", "buf_ptr", "buf_len").
		Export("read_mem").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.start), []api.ValueType{}, []api.ValueType{}).
		Export("start").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.split), []api.ValueType{}, []api.ValueType{}).
		Export("split").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.reset), []api.ValueType{}, []api.ValueType{}).
		Export("reset").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.pauseGameTime), []api.ValueType{}, []api.ValueType{}).
		Export("pause_game_time").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.resumeGameTime), []api.ValueType{}, []api.ValueType{}).
		Export("resume_game_time").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.setTickRate), []api.ValueType{f64}, []api.ValueType{}).
		WithParameterNames("rate").
		Export("set_tick_rate").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.setVariable), []api.ValueType{i32, i32, i32, i32}, []api.ValueType{}).
		WithParameterNames("key_ptr", "key_len", "value_ptr", "value_len").
		Export("set_variable").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.setGameTime), []api.ValueType{f64}, []api.ValueType{}).
		WithParameterNames("seconds").
		Export("set_game_time").
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.getTimerState), []api.ValueType{}, []api.ValueType{i32}).
		Export("get_timer_state").
		Instantiate(ctx)
}

// ExportNames lists every symbol exported under ModuleName: the set the
// loader validates guest imports against.
func ExportNames() []string {
	return []string{
		"print_message", "attach", "detach", "get_module", "read_mem",
		"start", "split", "reset", "pause_game_time", "resume_game_time",
		"set_tick_rate", "set_variable", "set_game_time", "get_timer_state",
	}
}

// requireRead reads byteCount bytes at offset from mod's linear memory,
// panicking (which wazero turns into a guest trap) if the range is out of
// bounds, mirroring the wapc-go wazero engine's requireRead helper.
func requireRead(mod api.Module, fieldName string, offset, byteCount uint32) []byte {
	buf, ok := mod.Memory().Read(offset, byteCount)
	if !ok {
		panic(fmt.Errorf("hostabi: out of bounds reading %s (offset=%d len=%d)", fieldName, offset, byteCount))
	}
	return buf
}

func requireReadString(mod api.Module, fieldName string, offset, byteCount uint32) string {
	return string(requireRead(mod, fieldName, offset, byteCount))
}

func (h *Host) printMessage(_ context.Context, mod api.Module, stack []uint64) {
	ptr, length := uint32(stack[0]), uint32(stack[1])
	buf := requireRead(mod, "message", ptr, length)
	if !utf8.Valid(buf) {
		return
	}
	if h.Log != nil {
		h.Log.Debug(string(buf))
	}
}

func (h *Host) attach(_ context.Context, mod api.Module, stack []uint64) {
	ptr, length := uint32(stack[0]), uint32(stack[1])
	name := requireReadString(mod, "name", ptr, length)
	stack[0] = uint64(h.Procs.Attach(name))
}

func (h *Host) detach(_ context.Context, _ api.Module, stack []uint64) {
	h.Procs.Detach(process.Handle(stack[0]))
}

func (h *Host) getModule(_ context.Context, mod api.Module, stack []uint64) {
	handle := process.Handle(stack[0])
	ptr, length := uint32(stack[1]), uint32(stack[2])
	name := requireReadString(mod, "name", ptr, length)
	stack[0] = h.Procs.GetModule(handle, name)
}

func (h *Host) readMem(_ context.Context, mod api.Module, stack []uint64) {
	handle := process.Handle(stack[0])
	address := stack[1]
	bufPtr, bufLen := uint32(stack[2]), uint32(stack[3])

	// Validate the destination range before touching process memory, so a
	// guest that points read_mem's buffer out of bounds traps rather than
	// silently losing the read.
	requireRead(mod, "read_mem buf", bufPtr, bufLen)

	buf := make([]byte, bufLen)
	if !h.Procs.ReadMem(handle, address, buf) {
		stack[0] = 0
		return
	}
	if !mod.Memory().Write(bufPtr, buf) {
		stack[0] = 0
		return
	}
	stack[0] = 1
}

func (h *Host) start(_ context.Context, _ api.Module, _ []uint64)          { h.Timer.Start() }
func (h *Host) split(_ context.Context, _ api.Module, _ []uint64)          { h.Timer.Split() }
func (h *Host) reset(_ context.Context, _ api.Module, _ []uint64)          { h.Timer.Reset() }
func (h *Host) pauseGameTime(_ context.Context, _ api.Module, _ []uint64)  { h.Timer.PauseGameTime() }
func (h *Host) resumeGameTime(_ context.Context, _ api.Module, _ []uint64) { h.Timer.ResumeGameTime() }

func (h *Host) setTickRate(_ context.Context, _ api.Module, stack []uint64) {
	rate := api.DecodeF64(stack[0])
	if h.SetRate != nil {
		h.SetRate(rate)
	}
}

func (h *Host) setVariable(_ context.Context, mod api.Module, stack []uint64) {
	keyPtr, keyLen := uint32(stack[0]), uint32(stack[1])
	valPtr, valLen := uint32(stack[2]), uint32(stack[3])
	key := requireReadString(mod, "key", keyPtr, keyLen)
	value := requireReadString(mod, "value", valPtr, valLen)
	h.Timer.SetVariable(key, value)
}

func (h *Host) setGameTime(_ context.Context, _ api.Module, stack []uint64) {
	seconds := api.DecodeF64(stack[0])
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return
	}
	h.Timer.SetGameTime(timer.TimeSpan(seconds))
}

func (h *Host) getTimerState(_ context.Context, _ api.Module, stack []uint64) {
	stack[0] = uint64(h.Timer.State())
}
