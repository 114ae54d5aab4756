package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordingTimerOrdersEvents(t *testing.T) {
	rt := NewRecordingTimer()

	rt.Start()
	rt.Split()
	rt.PauseGameTime()
	rt.ResumeGameTime()
	rt.Reset()

	methods := make([]string, 0, 5)
	for _, e := range rt.Events() {
		methods = append(methods, e.Method)
	}

	assert.Equal(t, []string{"Start", "Split", "PauseGameTime", "ResumeGameTime", "Reset"}, methods)
}

func TestRecordingTimerTracksArgs(t *testing.T) {
	rt := NewRecordingTimer()

	rt.SetVariable("igt", "12.5")
	rt.SetGameTime(TimeSpan(42.5))

	events := rt.Events()
	assert.Equal(t, []interface{}{"igt", "12.5"}, events[0].Args)
	assert.Equal(t, []interface{}{TimeSpan(42.5)}, events[1].Args)
}

func TestRecordingTimerStateTransitions(t *testing.T) {
	rt := NewRecordingTimer()
	assert.Equal(t, NotRunning, rt.State())

	rt.Start()
	assert.Equal(t, Running, rt.State())

	rt.Reset()
	assert.Equal(t, NotRunning, rt.State())
}
