package finish

import (
	"errors"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/photo-finish-go/domain/capture"
)

var (
	// ErrSessionActive rejects a start while a session is recording.
	ErrSessionActive = errors.New("capture session already active")
	// ErrNoFrameSize rejects a start before the source reported its size.
	ErrNoFrameSize = errors.New("frame size unknown")
)

// Recorder owns the one live CaptureSession and its strip. It is not safe
// for concurrent use; the Scheduler drives it from a single goroutine.
type Recorder struct {
	settings Settings
	comp     *Compositor
	photos   *PhotoCollection
	observer Observer
	logger   *slog.Logger
	now      func() time.Time

	session *CaptureSession
	strip   *image.RGBA
}

// NewRecorder wires a recorder. A nil compositor uses the default scaler and
// a nil observer discards events.
func NewRecorder(settings Settings, comp *Compositor, photos *PhotoCollection, observer Observer, logger *slog.Logger) *Recorder {
	if comp == nil {
		comp = NewCompositor("")
	}
	if photos == nil {
		photos = NewPhotoCollection()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{settings: settings, comp: comp, photos: photos, observer: observer, logger: logger, now: time.Now}
}

// Settings returns the geometry in use.
func (r *Recorder) Settings() Settings { return r.settings }

// Photos returns the collection finalized photos are appended to.
func (r *Recorder) Photos() *PhotoCollection { return r.photos }

// Start opens a new session with a strip of StripWidth × size.Y pixels.
func (r *Recorder) Start(size image.Point) error {
	if r.session != nil {
		return ErrSessionActive
	}
	w := r.settings.StripWidth()
	if size.X <= 0 || size.Y <= 0 || w <= 0 {
		return ErrNoFrameSize
	}
	if r.strip == nil || r.strip.Bounds().Dx() != w || r.strip.Bounds().Dy() != size.Y {
		r.strip = image.NewRGBA(image.Rect(0, 0, w, size.Y))
	}
	r.session = newCaptureSession(r.now())
	r.observer.SessionStarted()
	r.logger.Info("capture session started",
		"session", r.session.ID,
		"direction", r.settings.Direction.String(),
		"strip_width", w,
		"strip_height", size.Y,
	)
	return nil
}

// Stop marks the session inactive. The next frame still draws its slice and
// then finalizes. It reports whether a session was active.
func (r *Recorder) Stop() bool {
	if r.session == nil || !r.session.Active {
		return false
	}
	r.session.Active = false
	r.logger.Debug("capture stop requested", "session", r.session.ID)
	return true
}

// Discard drops the live session without producing a photo and clears the
// strip. It reports whether a session existed.
func (r *Recorder) Discard() bool {
	if r.session == nil {
		return false
	}
	r.logger.Warn("capture session discarded", "session", r.session.ID)
	r.session = nil
	if r.strip != nil {
		clear(r.strip.Pix)
	}
	return true
}

// Recording reports whether a session exists, including one that was
// stopped and is waiting for its final frame.
func (r *Recorder) Recording() bool { return r.session != nil }

// Session returns a copy of the live session state.
func (r *Recorder) Session() (CaptureSession, bool) {
	if r.session == nil {
		return CaptureSession{}, false
	}
	return *r.session, true
}

// Strip returns the live strip buffer. Only the owning goroutine may read it.
func (r *Recorder) Strip() *image.RGBA { return r.strip }

// HandleFrame composites one frame. When the session ends on this frame it
// returns the finalized photo.
func (r *Recorder) HandleFrame(f capture.FrameSnapshot) (*CapturedPhoto, error) {
	sess := r.session
	if sess == nil || f.Image == nil {
		return nil, nil
	}
	if !sess.Started {
		sess.begin(f.Timestamp)
	} else if f.Timestamp < sess.LastTimestamp {
		r.observer.FrameSkipped()
		r.logger.Debug("stale frame discarded", "timestamp", f.Timestamp, "last", sess.LastTimestamp)
		return nil, nil
	}

	sl := ComputeSlice(r.settings, sess, f.Timestamp)
	if sl.Wrapped && sess.Active {
		sess.Active = false
		r.observer.Wrapped()
		r.logger.Debug("strip wrapped", "session", sess.ID, "cycle", sl.Cycle)
	}
	if r.comp.Draw(r.strip, f.Image, sl) {
		sess.Slices++
		r.observer.SliceDrawn()
	}
	sess.advance(f.Timestamp, sl)
	r.observer.FrameProcessed()

	if sess.Active {
		return nil, nil
	}
	return r.finalize()
}

// finalize encodes the strip, appends it, clears the buffer and ends the
// session. The session ends even when encoding fails.
func (r *Recorder) finalize() (*CapturedPhoto, error) {
	sess := r.session
	r.session = nil
	photo, err := newCapturedPhoto(r.strip, sess, r.settings.Direction, r.now())
	clear(r.strip.Pix)
	if err != nil {
		r.logger.Error("failed to finalize photo", "session", sess.ID, "err", err)
		return nil, err
	}
	idx := r.photos.Append(photo)
	r.observer.PhotoFinalized()
	r.logger.Info("photo finalized",
		"session", sess.ID,
		"index", idx,
		"frames", sess.Frames,
		"slices", sess.Slices,
		"elapsed_ms", sess.Elapsed(),
	)
	return &photo, nil
}
