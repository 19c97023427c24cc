package finish

import (
	"errors"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"testing"

	"github.com/soocke/photo-finish-go/domain/capture"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type countingObserver struct {
	mu                                                     sync.Mutex
	started, processed, skipped, drawn, wrapped, finalized int
}

func (o *countingObserver) SessionStarted() { o.mu.Lock(); o.started++; o.mu.Unlock() }
func (o *countingObserver) FrameProcessed() { o.mu.Lock(); o.processed++; o.mu.Unlock() }
func (o *countingObserver) FrameSkipped()   { o.mu.Lock(); o.skipped++; o.mu.Unlock() }
func (o *countingObserver) SliceDrawn()     { o.mu.Lock(); o.drawn++; o.mu.Unlock() }
func (o *countingObserver) Wrapped()        { o.mu.Lock(); o.wrapped++; o.mu.Unlock() }
func (o *countingObserver) PhotoFinalized() { o.mu.Lock(); o.finalized++; o.mu.Unlock() }

var (
	red  = color.RGBA{R: 255, A: 255}
	blue = color.RGBA{B: 255, A: 255}
)

func newTestRecorder(dir Direction) (*Recorder, *countingObserver) {
	obs := &countingObserver{}
	return NewRecorder(testSettings(dir), NewCompositor("nearest"), NewPhotoCollection(), obs, discardLogger), obs
}

func frameAt(ts float64, img *image.RGBA) capture.FrameSnapshot {
	return capture.FrameSnapshot{Image: img, Timestamp: ts}
}

// feed delivers frames every 100ms over [from, to] and returns the photos
// produced.
func feed(t *testing.T, r *Recorder, from, to float64, img *image.RGBA) []*CapturedPhoto {
	t.Helper()
	var out []*CapturedPhoto
	for ts := from; ts <= to; ts += 100 {
		p, err := r.HandleFrame(frameAt(ts, img))
		if err != nil {
			t.Fatalf("frame %v: %v", ts, err)
		}
		if p != nil {
			out = append(out, p)
		}
	}
	return out
}

func TestRecorder_LeftToRightWrapsAfterFullStrip(t *testing.T) {
	r, obs := newTestRecorder(LeftToRight)
	frame := solidRGBA(400, 480, red)
	if err := r.Start(image.Pt(400, 480)); err != nil {
		t.Fatalf("start: %v", err)
	}
	// The reference time is the previous frame, so t=15000 still draws the
	// last slice [14900,15000) and the cycle advances on the next frame.
	if got := feed(t, r, 0, 15000, frame); len(got) != 0 {
		t.Fatalf("expected no photo before wrap, got %d", len(got))
	}
	if !r.Recording() {
		t.Fatalf("expected recording before wrap")
	}
	p, err := r.HandleFrame(frameAt(15100, frame))
	if err != nil || p == nil {
		t.Fatalf("expected photo on wrap, got %v %v", p, err)
	}
	if p.Width != 15000 || p.Height != 480 {
		t.Fatalf("photo size = %dx%d", p.Width, p.Height)
	}
	if r.Recording() {
		t.Fatalf("session should end on wrap")
	}
	if n := r.Photos().Len(); n != 1 {
		t.Fatalf("collection len = %d, want 1", n)
	}
	if obs.wrapped != 1 || obs.finalized != 1 || obs.drawn != 151 {
		t.Fatalf("observer = %+v", obs)
	}
	img, err := p.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, _, _, a := img.At(14950, 100).RGBA(); a == 0 {
		t.Fatalf("last slice not drawn")
	}
	for _, px := range r.Strip().Pix {
		if px != 0 {
			t.Fatalf("strip not cleared after finalize")
		}
	}
}

func TestRecorder_RightToLeftWrapsOnFrame151(t *testing.T) {
	r, _ := newTestRecorder(RightToLeft)
	frame := solidRGBA(400, 480, red)
	if err := r.Start(image.Pt(400, 480)); err != nil {
		t.Fatalf("start: %v", err)
	}
	photos := feed(t, r, 0, 14900, frame)
	if len(photos) != 0 {
		t.Fatalf("expected no photo before frame 151")
	}
	p, err := r.HandleFrame(frameAt(15000, frame))
	if err != nil || p == nil {
		t.Fatalf("expected photo at t=15000, got %v %v", p, err)
	}
}

func TestRecorder_WrapFrameOverdrawsStripStart(t *testing.T) {
	// Known boundary inaccuracy: the wrapping frame's slice is drawn at
	// offset 0 over the first slice of the cycle before finalizing.
	r, _ := newTestRecorder(LeftToRight)
	if err := r.Start(image.Pt(400, 480)); err != nil {
		t.Fatalf("start: %v", err)
	}
	feed(t, r, 0, 15000, solidRGBA(400, 480, red))
	p, err := r.HandleFrame(frameAt(15100, solidRGBA(400, 480, blue)))
	if err != nil || p == nil {
		t.Fatalf("expected photo, got %v %v", p, err)
	}
	img, err := p.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cr, _, cb, _ := img.At(50, 10).RGBA(); cr != 0 || cb == 0 {
		t.Fatalf("expected wrap slice at offset 0, got r=%d b=%d", cr, cb)
	}
	if cr, _, _, _ := img.At(150, 10).RGBA(); cr == 0 {
		t.Fatalf("slice after offset 100 should keep the earlier frame")
	}
}

func TestRecorder_StopDrawsOneMoreSlice(t *testing.T) {
	r, obs := newTestRecorder(LeftToRight)
	frame := solidRGBA(400, 480, red)
	if err := r.Start(image.Pt(400, 480)); err != nil {
		t.Fatalf("start: %v", err)
	}
	feed(t, r, 0, 500, frame)
	drawn := obs.drawn
	if !r.Stop() {
		t.Fatalf("stop should report an active session")
	}
	sess, _ := r.Session()
	if sess.Active {
		t.Fatalf("session should be inactive after stop")
	}
	p, err := r.HandleFrame(frameAt(600, frame))
	if err != nil || p == nil {
		t.Fatalf("expected photo after stop, got %v %v", p, err)
	}
	if obs.drawn != drawn+1 {
		t.Fatalf("slices drawn after stop = %d, want 1", obs.drawn-drawn)
	}
	if r.Photos().Len() != 1 || r.Recording() {
		t.Fatalf("expected one photo and no session")
	}
	if p, _ := r.HandleFrame(frameAt(700, frame)); p != nil {
		t.Fatalf("frames after finalize must be ignored")
	}
	if r.Stop() {
		t.Fatalf("stop without a session should report false")
	}
}

func TestRecorder_StartWhileActiveIsRejected(t *testing.T) {
	r, obs := newTestRecorder(LeftToRight)
	if err := r.Start(image.Pt(400, 480)); err != nil {
		t.Fatalf("start: %v", err)
	}
	feed(t, r, 0, 300, solidRGBA(400, 480, red))
	before, _ := r.Session()
	if err := r.Start(image.Pt(400, 480)); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
	after, _ := r.Session()
	if after != before {
		t.Fatalf("existing session changed: %+v -> %+v", before, after)
	}
	if obs.started != 1 {
		t.Fatalf("sessions started = %d", obs.started)
	}
}

func TestRecorder_StartWithoutFrameSize(t *testing.T) {
	r, _ := newTestRecorder(LeftToRight)
	if err := r.Start(image.Point{}); !errors.Is(err, ErrNoFrameSize) {
		t.Fatalf("expected ErrNoFrameSize, got %v", err)
	}
	if r.Recording() {
		t.Fatalf("no session should exist")
	}
	if p, err := r.HandleFrame(frameAt(0, solidRGBA(4, 4, red))); p != nil || err != nil {
		t.Fatalf("idle recorder should ignore frames")
	}
}

func TestRecorder_StaleFrameSkipped(t *testing.T) {
	r, obs := newTestRecorder(LeftToRight)
	frame := solidRGBA(400, 480, red)
	if err := r.Start(image.Pt(400, 480)); err != nil {
		t.Fatalf("start: %v", err)
	}
	feed(t, r, 1000, 1200, frame)
	if _, err := r.HandleFrame(frameAt(1100, frame)); err != nil {
		t.Fatalf("stale frame: %v", err)
	}
	sess, _ := r.Session()
	if obs.skipped != 1 || sess.LastTimestamp != 1200 || sess.StartTimestamp != 1000 {
		t.Fatalf("skipped=%d session=%+v", obs.skipped, sess)
	}
}

func TestRecorder_DiscardDropsSession(t *testing.T) {
	rec := NewRecorder(testSettings(LeftToRight), nil, nil, nil, discardLogger)
	if rec.Discard() {
		t.Fatalf("discard without a session should report false")
	}
	if err := rec.Start(image.Pt(64, 48)); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !rec.Discard() || rec.Recording() {
		t.Fatalf("session should be gone after discard")
	}
	if rec.Photos().Len() != 0 {
		t.Fatalf("discard must not produce a photo")
	}
	if err := rec.Start(image.Pt(64, 48)); err != nil {
		t.Fatalf("start after discard: %v", err)
	}
}
