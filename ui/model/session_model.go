package model

import (
	"time"
)

// SessionModel tracks recording durations and how many photos were produced
// since the application started. Presenters poll Values() and update views.
// The zero value is ready to use.
type SessionModel struct {
	active              bool
	recordStart         time.Time
	lastSessionDuration time.Duration
	accumulated         time.Duration
	sessions            int
}

// NewSessionModel returns a pointer to a ready-to-use SessionModel.
func NewSessionModel() *SessionModel { return &SessionModel{} }

// OnTick updates the model using the current recording state and timestamp.
func (m *SessionModel) OnTick(recording bool, now time.Time) {
	if m == nil {
		return
	}
	if recording {
		if !m.active { // idle -> recording
			m.active = true
			m.recordStart = now
			m.lastSessionDuration = 0
			m.sessions++
		}
		m.lastSessionDuration = now.Sub(m.recordStart)
	} else if m.active { // recording -> idle
		m.lastSessionDuration = now.Sub(m.recordStart)
		m.accumulated += m.lastSessionDuration
		m.active = false
	}
}

// Values returns the current session duration and the total recorded time.
// The total includes the ongoing session when recording.
func (m *SessionModel) Values() (session, total time.Duration) {
	if m == nil {
		return 0, 0
	}
	session = m.lastSessionDuration
	total = m.accumulated
	if m.active {
		total += session
	}
	return
}

// Sessions returns how many recordings were observed.
func (m *SessionModel) Sessions() int {
	if m == nil {
		return 0
	}
	return m.sessions
}
