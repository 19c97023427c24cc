package capture

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

const (
	captureStatsLogInterval = 5 * time.Second
	defaultMaxGrabFailures  = 50
	maxGrabBackoff          = 50 * time.Millisecond
)

// CaptureService acquires frames from a Grabber and exposes the latest
// capture, a frame channel and instrumentation data. Use NewCaptureService to
// construct an instance.
type CaptureService interface {
	Start(ctx context.Context) error
	Stop()
	LatestFrame() FrameSnapshot
	Frames() <-chan FrameSnapshot
	Size() image.Point
	Running() bool
	Stats() SourceStats
}

// ServiceOptions tune the capture loop.
type ServiceOptions struct {
	// Interval paces Grab calls; zero grabs as fast as the grabber allows.
	Interval time.Duration
	// Lossless blocks on the frame channel instead of dropping the oldest frame.
	Lossless bool
	// Buffer is the frame channel capacity (minimum 1).
	Buffer int
	// MaxGrabFailures ends the loop after this many consecutive failed grabs;
	// zero uses 50.
	MaxGrabFailures int
}

type captureService struct {
	grabber  Grabber
	opts     ServiceOptions
	logger   *slog.Logger
	frames   chan FrameSnapshot
	running  atomic.Bool
	latest   atomic.Pointer[FrameSnapshot]
	size     atomic.Pointer[image.Point]
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
	openedAt time.Time

	captures     atomic.Uint64
	skipped      atomic.Uint64
	dropped      atomic.Uint64
	captureNanos atomic.Uint64
	sequence     atomic.Uint64
}

func newCaptureService(logger *slog.Logger, grabber Grabber, opts ServiceOptions) *captureService {
	if opts.Buffer < 1 {
		opts.Buffer = 1
	}
	if opts.MaxGrabFailures < 1 {
		opts.MaxGrabFailures = defaultMaxGrabFailures
	}
	return &captureService{grabber: grabber, opts: opts, logger: logger, frames: make(chan FrameSnapshot, opts.Buffer)}
}

// NewCaptureService constructs a capture service that provides frames via Frames().
func NewCaptureService(logger *slog.Logger, grabber Grabber, opts ServiceOptions) CaptureService {
	return newCaptureService(logger, grabber, opts)
}

func (s *captureService) LatestFrame() FrameSnapshot {
	snap := s.latest.Load()
	if snap == nil {
		return FrameSnapshot{}
	}
	return *snap
}

// Size reports the dimensions of the latest frame, or the zero point before
// the first frame arrived.
func (s *captureService) Size() image.Point {
	p := s.size.Load()
	if p == nil {
		return image.Point{}
	}
	return *p
}

func (s *captureService) Frames() <-chan FrameSnapshot { return s.frames }

func (s *captureService) Running() bool { return s.running.Load() }

func (s *captureService) Stats() SourceStats {
	st := SourceStats{
		Frames:  s.captures.Load(),
		Skipped: s.skipped.Load(),
		Dropped: s.dropped.Load(),
	}
	if total := s.captureNanos.Load(); st.Frames > 0 {
		st.AvgGrab = time.Duration(total / st.Frames)
	}
	if last := s.LatestFrame(); !last.Empty() {
		st.FrameAge = time.Since(last.CapturedAt)
		st.Sequence = last.Sequence
	}
	return st
}

// Start opens the grabber and launches the capture loop. Opening happens
// synchronously so acquisition failures surface to the caller exactly once.
func (s *captureService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running.Load() {
		return nil
	}
	if s.grabber == nil {
		return &AcquisitionError{Kind: KindNotFound, Err: errors.New("no video source configured")}
	}
	if err := s.grabber.Open(ctx); err != nil {
		return acquisitionError(err)
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.openedAt = time.Now()
	s.running.Store(true)
	go s.loop(loopCtx, s.done)
	return nil
}

// Stop ends the capture loop and waits for the grabber to be closed.
func (s *captureService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	s.running.Store(false)
	cancel()
	<-done
}

func (s *captureService) timestamp() float64 {
	if mc, ok := s.grabber.(MediaClock); ok {
		return mc.MediaTime()
	}
	return float64(time.Since(s.openedAt).Microseconds()) / 1000
}

func (s *captureService) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer func() {
		s.running.Store(false)
		if err := s.grabber.Close(); err != nil && s.logger != nil {
			s.logger.Warn("capture close", "error", err)
		}
	}()
	logTicker := time.NewTicker(captureStatsLogInterval)
	defer logTicker.Stop()
	fails := grabFailures{max: s.opts.MaxGrabFailures}
	var pace <-chan time.Time
	if s.opts.Interval > 0 {
		t := time.NewTicker(s.opts.Interval)
		defer t.Stop()
		pace = t.C
	}
	for {
		if pace != nil {
			select {
			case <-ctx.Done():
				return
			case <-pace:
			}
		} else if ctx.Err() != nil {
			return
		}

		start := time.Now()
		img, err := s.grabber.Grab()
		if errors.Is(err, io.EOF) {
			if s.logger != nil {
				s.logger.Info("capture source exhausted", "frames", s.captures.Load())
			}
			return
		}
		if errors.Is(err, ErrSourceClosed) {
			if s.logger != nil && ctx.Err() == nil {
				s.logger.Error("capture source closed", "error", err, "frames", s.captures.Load())
			}
			return
		}
		if err != nil || img == nil {
			s.skipped.Add(1)
			if ctx.Err() != nil {
				return
			}
			if !fails.record(err, s.logger) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(fails.backoff()):
			}
			continue
		}
		fails.reset()

		elapsed := time.Since(start)
		s.captureNanos.Add(uint64(elapsed.Nanoseconds()))
		s.captures.Add(1)
		seq := s.sequence.Add(1)
		snap := FrameSnapshot{Image: img, Timestamp: s.timestamp(), CapturedAt: time.Now(), Sequence: seq}
		s.latest.Store(&snap)
		size := img.Bounds().Size()
		s.size.Store(&size)

		if !s.publish(ctx, snap) {
			return
		}

		select {
		case <-logTicker.C:
			s.logStats()
		default:
		}
	}
}

// grabFailures tracks consecutive failed grabs. The first failure of a run
// is logged, later ones at most once per captureStatsLogInterval.
type grabFailures struct {
	max     int
	n       int
	total   uint64
	lastLog time.Time
}

// record counts a failure and reports whether the loop should keep going.
func (f *grabFailures) record(err error, logger *slog.Logger) bool {
	f.n++
	f.total++
	if err == nil {
		err = errors.New("grabber returned no image")
	}
	if f.n >= f.max {
		if logger != nil {
			logger.Error("capture source failing, giving up", "error", err, "consecutive", f.n)
		}
		return false
	}
	if logger != nil && (f.n == 1 || time.Since(f.lastLog) >= captureStatsLogInterval) {
		logger.Warn("capture grab failed", "error", err, "consecutive", f.n, "total", f.total)
		f.lastLog = time.Now()
	}
	return true
}

// backoff doubles from 1ms up to maxGrabBackoff.
func (f *grabFailures) backoff() time.Duration {
	d := time.Millisecond
	for i := 1; i < f.n && d < maxGrabBackoff; i++ {
		d *= 2
	}
	return min(d, maxGrabBackoff)
}

func (f *grabFailures) reset() { f.n = 0 }

// publish hands the frame to the consumer. In lossy mode the oldest queued
// frame is dropped to make room; in lossless mode publish blocks.
func (s *captureService) publish(ctx context.Context, snap FrameSnapshot) bool {
	if s.opts.Lossless {
		select {
		case s.frames <- snap:
			return true
		case <-ctx.Done():
			return false
		}
	}
	select {
	case s.frames <- snap:
		return true
	default:
	}
	select {
	case <-s.frames:
		s.dropped.Add(1)
	default:
	}
	select {
	case s.frames <- snap:
	default:
		s.dropped.Add(1)
	}
	return true
}

func (s *captureService) logStats() {
	if s.logger == nil {
		return
	}
	stats := s.Stats()
	s.logger.Debug("source stats",
		"frames", stats.Frames,
		"skipped", stats.Skipped,
		"dropped", stats.Dropped,
		"avg_grab", stats.AvgGrab,
		"frame_age", stats.FrameAge,
	)
}
