package model

import (
	"sync/atomic"
)

// RecordingModel tracks whether a photo finish session is recording. The zero
// value is idle and usable. Concurrency-safe: scheduler listeners and UI
// ticks may race.
type RecordingModel struct{ recording atomic.Bool }

// Recording reports whether a session is recording.
func (m *RecordingModel) Recording() bool {
	if m == nil {
		return false
	}
	return m.recording.Load()
}

// SetRecording stores the recording flag and reports whether it changed.
func (m *RecordingModel) SetRecording(b bool) bool {
	if m == nil {
		return false
	}
	return m.recording.Swap(b) != b
}
