package finish

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"github.com/soocke/photo-finish-go/domain/capture"
)

var (
	// ErrSchedulerClosed is returned by requests made after Close.
	ErrSchedulerClosed = errors.New("scheduler closed")
	// ErrHandlerPanic wraps a panic recovered while handling a request or frame.
	ErrHandlerPanic = errors.New("scheduler recovered from panic")
)

// FrameFeed is the video source the scheduler consumes.
type FrameFeed interface {
	Frames() <-chan capture.FrameSnapshot
	capture.SizeProvider
}

// EventKind identifies a scheduler notification.
type EventKind int

const (
	EventStarted EventKind = iota
	EventStopRequested
	EventRejected
	EventPhoto
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStopRequested:
		return "stop-requested"
	case EventRejected:
		return "rejected"
	case EventPhoto:
		return "photo"
	case EventFailed:
		return "failed"
	}
	return "unknown"
}

// Event is delivered to listeners from the scheduler goroutine. Listeners
// must not block.
type Event struct {
	Kind    EventKind
	Session uuid.UUID
	Photo   *CapturedPhoto
	Err     error
}

// Listener receives scheduler events.
type Listener func(Event)

// Status is a point-in-time view of the recording state.
type Status struct {
	Recording bool
	Active    bool
	Session   uuid.UUID
	Frames    int
	Slices    int
	ElapsedMs float64
}

// SchedulerOptions tunes the preview snapshots.
type SchedulerOptions struct {
	// PreviewInterval throttles preview snapshots; zero uses 100ms.
	PreviewInterval time.Duration
	// PreviewMaxWidth bounds the preview width; zero uses 1024.
	PreviewMaxWidth int
}

// Scheduler is the event loop that feeds frames to a Recorder for as long as
// a session is recording. Start, Stop and frames are serialized through one
// goroutine, so the Recorder and its strip are never shared.
type Scheduler struct {
	rec    *Recorder
	feed   FrameFeed
	logger *slog.Logger
	opts   SchedulerOptions

	events    chan interface{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	listeners   []Listener
	lastPreview time.Time

	status  atomic.Pointer[Status]
	preview atomic.Pointer[image.RGBA]
}

type (
	evtStart       struct{ reply chan error }
	evtStop        struct{ reply chan bool }
	evtAddListener struct{ l Listener }
)

// NewScheduler constructs and starts the event loop.
func NewScheduler(logger *slog.Logger, rec *Recorder, feed FrameFeed, opts SchedulerOptions) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PreviewInterval <= 0 {
		opts.PreviewInterval = 100 * time.Millisecond
	}
	if opts.PreviewMaxWidth <= 0 {
		opts.PreviewMaxWidth = 1024
	}
	s := &Scheduler{
		rec:    rec,
		feed:   feed,
		logger: logger,
		opts:   opts,
		events: make(chan interface{}, 16),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	s.status.Store(&Status{})
	go func() {
		defer close(s.done)
		s.loop()
	}()
	return s
}

func (s *Scheduler) loop() {
	for {
		// Frames are only pulled while recording. Idle, a lossless source
		// blocks and a lossy one drops its oldest frames.
		var frames <-chan capture.FrameSnapshot
		if s.rec.Recording() && s.feed != nil {
			frames = s.feed.Frames()
		}
		select {
		case <-s.quit:
			return
		case ev := <-s.events:
			s.safely(ev, func() { s.handle(ev) })
		case f := <-frames:
			s.safely(nil, func() { s.handleFrame(f) })
		}
	}
}

// safely runs fn for one event. A panic discards the live session, fails the
// pending request if any, and leaves the loop running.
func (s *Scheduler) safely(ev interface{}, fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s.logger.Error("scheduler panic", "error", r, "stack", string(debug.Stack()))
		err := fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		switch e := ev.(type) {
		case evtStart:
			select {
			case e.reply <- err:
			default:
			}
		case evtStop:
			select {
			case e.reply <- false:
			default:
			}
		}
		sess, had := s.rec.Session()
		s.rec.Discard()
		s.preview.Store(nil)
		s.publishStatus()
		if had {
			s.emit(Event{Kind: EventFailed, Session: sess.ID, Err: err})
		}
	}()
	fn()
}

func (s *Scheduler) handle(ev interface{}) {
	switch e := ev.(type) {
	case evtAddListener:
		s.listeners = append(s.listeners, e.l)
	case evtStart:
		var size image.Point
		if s.feed != nil {
			size = s.feed.Size()
		}
		err := s.rec.Start(size)
		e.reply <- err
		if err != nil {
			s.logger.Debug("start ignored", "err", err)
			s.emit(Event{Kind: EventRejected, Err: err})
			return
		}
		s.lastPreview = time.Time{}
		s.publishStatus()
		sess, _ := s.rec.Session()
		s.emit(Event{Kind: EventStarted, Session: sess.ID})
	case evtStop:
		sess, _ := s.rec.Session()
		ok := s.rec.Stop()
		e.reply <- ok
		if ok {
			s.publishStatus()
			s.emit(Event{Kind: EventStopRequested, Session: sess.ID})
		}
	}
}

func (s *Scheduler) handleFrame(f capture.FrameSnapshot) {
	sess, _ := s.rec.Session()
	photo, err := s.rec.HandleFrame(f)
	switch {
	case err != nil:
		s.preview.Store(nil)
		s.publishStatus()
		s.emit(Event{Kind: EventFailed, Session: sess.ID, Err: err})
	case photo != nil:
		s.preview.Store(nil)
		s.publishStatus()
		s.emit(Event{Kind: EventPhoto, Session: sess.ID, Photo: photo})
	default:
		s.publishStatus()
		s.snapshotPreview()
	}
}

func (s *Scheduler) publishStatus() {
	st := &Status{}
	if sess, ok := s.rec.Session(); ok {
		st.Recording = true
		st.Active = sess.Active
		st.Session = sess.ID
		st.Frames = sess.Frames
		st.Slices = sess.Slices
		st.ElapsedMs = sess.Elapsed()
	}
	s.status.Store(st)
}

// snapshotPreview stores a downscaled copy of the strip, at most once per
// PreviewInterval.
func (s *Scheduler) snapshotPreview() {
	now := time.Now()
	if now.Sub(s.lastPreview) < s.opts.PreviewInterval {
		return
	}
	s.lastPreview = now
	strip := s.rec.Strip()
	if strip == nil {
		return
	}
	b := strip.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > s.opts.PreviewMaxWidth {
		h = h * s.opts.PreviewMaxWidth / w
		w = s.opts.PreviewMaxWidth
	}
	if w <= 0 || h <= 0 {
		return
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), strip, b, xdraw.Src, nil)
	s.preview.Store(dst)
}

func (s *Scheduler) emit(ev Event) {
	for _, l := range s.listeners {
		func() {
			defer recoverLog(s.logger, "scheduler listener panic")
			l(ev)
		}()
	}
}

func (s *Scheduler) send(ev interface{}) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.quit:
		return false
	}
}

// Start opens a new session sized from the feed. It returns ErrSessionActive
// or ErrNoFrameSize when the request is ignored.
func (s *Scheduler) Start() error {
	reply := make(chan error, 1)
	if !s.send(evtStart{reply: reply}) {
		return ErrSchedulerClosed
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return ErrSchedulerClosed
	}
}

// Stop requests the session to end after its next frame. It reports whether
// an active session was stopped.
func (s *Scheduler) Stop() bool {
	reply := make(chan bool, 1)
	if !s.send(evtStop{reply: reply}) {
		return false
	}
	select {
	case ok := <-reply:
		return ok
	case <-s.done:
		return false
	}
}

// AddListener registers l for subsequent events.
func (s *Scheduler) AddListener(l Listener) {
	if l != nil {
		s.send(evtAddListener{l: l})
	}
}

// Recording reports whether a session exists.
func (s *Scheduler) Recording() bool { return s.status.Load().Recording }

// Status returns the latest recording state.
func (s *Scheduler) Status() Status { return *s.status.Load() }

// Preview returns a downscaled copy of the in-progress strip, or nil when
// idle. The image is never written after it is returned.
func (s *Scheduler) Preview() *image.RGBA { return s.preview.Load() }

// Photos returns the collection the recorder appends to.
func (s *Scheduler) Photos() *PhotoCollection { return s.rec.Photos() }

// Close stops the loop and waits for it to exit. An unfinished session is
// discarded.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
