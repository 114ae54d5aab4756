package timer

import "sync"

// Event records a single call made against a RecordingTimer, in call
// order. Method is the capability name ("Start", "SetVariable", ...); Args
// holds the call's arguments in positional order.
type Event struct {
	Method string
	Args   []interface{}
}

// RecordingTimer implements Timer for tests: every call is appended to an
// ordered, mutex-guarded history rather than acting on anything. Built in
// the shape of a recording mock/call-log pattern.
type RecordingTimer struct {
	mu      sync.Mutex
	state   State
	history []Event
}

// NewRecordingTimer returns a RecordingTimer starting in NotRunning state.
func NewRecordingTimer() *RecordingTimer {
	return &RecordingTimer{state: NotRunning}
}

func (t *RecordingTimer) record(method string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = append(t.history, Event{Method: method, Args: args})
}

// Events returns a copy of the recorded call history, in call order.
func (t *RecordingTimer) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.history))
	copy(out, t.history)
	return out
}

// SetState lets a test put the timer into a specific state before
// get_timer_state is read by the guest.
func (t *RecordingTimer) SetState(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
}

func (t *RecordingTimer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *RecordingTimer) Start() {
	t.record("Start")
	t.mu.Lock()
	t.state = Running
	t.mu.Unlock()
}

func (t *RecordingTimer) Split() {
	t.record("Split")
}

func (t *RecordingTimer) Reset() {
	t.record("Reset")
	t.mu.Lock()
	t.state = NotRunning
	t.mu.Unlock()
}

func (t *RecordingTimer) PauseGameTime() {
	t.record("PauseGameTime")
}

func (t *RecordingTimer) ResumeGameTime() {
	t.record("ResumeGameTime")
}

func (t *RecordingTimer) SetGameTime(span TimeSpan) {
	t.record("SetGameTime", span)
}

func (t *RecordingTimer) SetVariable(key, value string) {
	t.record("SetVariable", key, value)
}

var _ Timer = (*RecordingTimer)(nil)
