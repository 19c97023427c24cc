package presenter

import (
	"time"

	"github.com/soocke/photo-finish-go/ui/model"
)

// RecordingState reports whether a session is recording.
type RecordingState interface{ Recording() bool }

// PhotoCounter reports the collection size.
type PhotoCounter interface{ Len() int }

// SessionView displays formatted durations and the photo count.
type SessionView interface {
	SetSession(session, total time.Duration, photos int)
}

// SessionPresenter formats session and total durations from the model to the view.
type SessionPresenter struct {
	sess   *model.SessionModel
	rec    RecordingState
	photos PhotoCounter
	view   SessionView
}

// NewSessionPresenter returns a new SessionPresenter.
func NewSessionPresenter(sess *model.SessionModel, rec RecordingState, photos PhotoCounter, view SessionView) *SessionPresenter {
	return &SessionPresenter{sess: sess, rec: rec, photos: photos, view: view}
}

// Tick advances the session model and pushes values to the view.
func (p *SessionPresenter) Tick(now time.Time) {
	if p == nil || p.sess == nil || p.rec == nil || p.view == nil {
		return
	}
	p.sess.OnTick(p.rec.Recording(), now)
	s, t := p.sess.Values()
	n := 0
	if p.photos != nil {
		n = p.photos.Len()
	}
	p.view.SetSession(s, t, n)
}
