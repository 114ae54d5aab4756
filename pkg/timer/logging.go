package timer

import "github.com/sirupsen/logrus"

// NullTimer discards every command. Useful as a default capability when an
// embedder hasn't wired a real timer yet.
type NullTimer struct{}

func (NullTimer) State() State                   { return NotRunning }
func (NullTimer) Start()                         {}
func (NullTimer) Split()                         {}
func (NullTimer) Reset()                         {}
func (NullTimer) PauseGameTime()                 {}
func (NullTimer) ResumeGameTime()                {}
func (NullTimer) SetGameTime(TimeSpan)           {}
func (NullTimer) SetVariable(key, value string)  {}

var _ Timer = NullTimer{}

// LoggingTimer wraps another Timer and logs every call at debug level
// before forwarding it.
type LoggingTimer struct {
	Inner Timer
	Log   *logrus.Entry
}

func NewLoggingTimer(inner Timer, log *logrus.Entry) *LoggingTimer {
	return &LoggingTimer{Inner: inner, Log: log}
}

func (t *LoggingTimer) State() State {
	return t.Inner.State()
}

func (t *LoggingTimer) Start() {
	t.Log.Debug("timer: start")
	t.Inner.Start()
}

func (t *LoggingTimer) Split() {
	t.Log.Debug("timer: split")
	t.Inner.Split()
}

func (t *LoggingTimer) Reset() {
	t.Log.Debug("timer: reset")
	t.Inner.Reset()
}

func (t *LoggingTimer) PauseGameTime() {
	t.Log.Debug("timer: pause game time")
	t.Inner.PauseGameTime()
}

func (t *LoggingTimer) ResumeGameTime() {
	t.Log.Debug("timer: resume game time")
	t.Inner.ResumeGameTime()
}

func (t *LoggingTimer) SetGameTime(span TimeSpan) {
	t.Log.WithField("seconds", float64(span)).Debug("timer: set game time")
	t.Inner.SetGameTime(span)
}

func (t *LoggingTimer) SetVariable(key, value string) {
	t.Log.WithFields(logrus.Fields{"key": key, "value": value}).Debug("timer: set variable")
	t.Inner.SetVariable(key, value)
}

var _ Timer = (*LoggingTimer)(nil)
