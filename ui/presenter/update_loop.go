package presenter

import "time"

// Loop aggregates feature presenters and drives periodic updates.
//
// It calls Tick/ProcessFrame on the sub-presenters and invokes a
// scheduler callback. The zero value is usable (methods are nil-safe).
type Loop struct {
	Record   *RecordPresenter
	Session  *SessionPresenter
	Preview  *PreviewPresenter
	Photos   *PhotosPresenter
	Schedule func()
}

func NewLoop(rec *RecordPresenter, sess *SessionPresenter, preview *PreviewPresenter, photos *PhotosPresenter, schedule func()) *Loop {
	return &Loop{Record: rec, Session: sess, Preview: preview, Photos: photos, Schedule: schedule}
}

func (l *Loop) Tick() {
	if l == nil {
		return
	}
	now := time.Now()
	// Record first so the button reflects events before the counters.
	l.Record.Tick(now)
	l.Session.Tick(now)
	l.Preview.ProcessFrame()
	l.Photos.Tick(now)
	if l.Schedule != nil {
		l.Schedule()
	}
}
