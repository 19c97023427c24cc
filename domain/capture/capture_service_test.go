package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/soocke/photo-finish-go/config"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func solidFrame(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

type failingGrabber struct{ err error }

func (g *failingGrabber) Open(context.Context) error  { return g.err }
func (g *failingGrabber) Grab() (*image.RGBA, error) { return nil, io.EOF }
func (g *failingGrabber) Close() error               { return nil }

// scriptedGrabber fails the first failFirst grabs with err (all of them when
// negative), then serves frames solid frames followed by io.EOF.
type scriptedGrabber struct {
	err       error
	failFirst int
	frames    int
	calls     int
}

func (g *scriptedGrabber) Open(context.Context) error { return nil }
func (g *scriptedGrabber) Close() error               { return nil }
func (g *scriptedGrabber) Grab() (*image.RGBA, error) {
	g.calls++
	if g.failFirst < 0 || g.calls <= g.failFirst {
		return nil, g.err
	}
	if g.calls-max(g.failFirst, 0) > g.frames {
		return nil, io.EOF
	}
	return solidFrame(2, 2, color.RGBA{A: 255}), nil
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) count(substr string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), substr)
}

func waitStopped(t *testing.T, svc CaptureService) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for svc.Running() && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if svc.Running() {
		t.Fatal("capture loop should have ended")
	}
}

func TestCaptureService_LosslessSequenceDeliversAllFrames(t *testing.T) {
	frames := []*image.RGBA{
		solidFrame(8, 6, color.RGBA{255, 0, 0, 255}),
		solidFrame(8, 6, color.RGBA{0, 255, 0, 255}),
		solidFrame(8, 6, color.RGBA{0, 0, 255, 255}),
	}
	svc := NewCaptureService(discardLogger, NewSequenceGrabber(frames, 40), ServiceOptions{Lossless: true})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer svc.Stop()

	var got []FrameSnapshot
	timeout := time.After(2 * time.Second)
	for len(got) < len(frames) {
		select {
		case f := <-svc.Frames():
			got = append(got, f)
		case <-timeout:
			t.Fatalf("timed out after %d frames", len(got))
		}
	}
	for i, f := range got {
		if want := float64(i) * 40; f.Timestamp != want {
			t.Fatalf("frame %d: timestamp %v want %v", i, f.Timestamp, want)
		}
		if f.Sequence != uint64(i+1) {
			t.Fatalf("frame %d: sequence %d", i, f.Sequence)
		}
	}
	if sz := svc.Size(); sz != (image.Point{X: 8, Y: 6}) {
		t.Fatalf("unexpected size %v", sz)
	}
	deadline := time.Now().Add(time.Second)
	for svc.Running() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if svc.Running() {
		t.Fatal("service should stop after the sequence is exhausted")
	}
	if st := svc.Stats(); st.Frames != 3 {
		t.Fatalf("expected 3 frames, got %d", st.Frames)
	}
}

func TestCaptureService_SizeUnknownBeforeFirstFrame(t *testing.T) {
	svc := NewCaptureService(discardLogger, NewSequenceGrabber(nil, 10), ServiceOptions{})
	if sz := svc.Size(); sz != (image.Point{}) {
		t.Fatalf("expected zero size, got %v", sz)
	}
	if !svc.LatestFrame().Empty() {
		t.Fatal("expected empty latest frame")
	}
}

func TestCaptureService_StartReportsAcquisitionError(t *testing.T) {
	svc := NewCaptureService(discardLogger, &failingGrabber{err: fmt.Errorf("open /dev/video9: %w", os.ErrPermission)}, ServiceOptions{})
	err := svc.Start(context.Background())
	var ae *AcquisitionError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AcquisitionError, got %v", err)
	}
	if ae.Kind != KindNotAllowed {
		t.Fatalf("expected %s, got %s", KindNotAllowed, ae.Kind)
	}
	if svc.Running() {
		t.Fatal("service must stay idle after acquisition failure")
	}
	svc.Stop() // no-op
}

func TestCaptureService_NilGrabber(t *testing.T) {
	svc := NewCaptureService(discardLogger, nil, ServiceOptions{})
	var ae *AcquisitionError
	if err := svc.Start(context.Background()); !errors.As(err, &ae) || ae.Kind != KindNotFound {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestCaptureService_LossyDropsOldest(t *testing.T) {
	frames := make([]*image.RGBA, 5)
	for i := range frames {
		frames[i] = solidFrame(2, 2, color.RGBA{uint8(i), 0, 0, 255})
	}
	svc := NewCaptureService(discardLogger, NewSequenceGrabber(frames, 10), ServiceOptions{})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(time.Second)
	for svc.Running() && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	f := <-svc.Frames()
	if f.Sequence != 5 {
		t.Fatalf("expected newest frame to survive, got sequence %d", f.Sequence)
	}
	if st := svc.Stats(); st.Dropped != 4 {
		t.Fatalf("expected 4 dropped frames, got %d", st.Dropped)
	}
}

func TestAcquisitionError_Classification(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{os.ErrNotExist, KindNotFound},
		{fmt.Errorf("wrap: %w", os.ErrPermission), KindNotAllowed},
		{errors.New("device busy"), KindNotReadable},
	}
	for _, c := range cases {
		var ae *AcquisitionError
		if !errors.As(acquisitionError(c.err), &ae) || ae.Kind != c.kind {
			t.Fatalf("%v: expected %s, got %v", c.err, c.kind, ae)
		}
	}
	pre := &AcquisitionError{Kind: KindNotFound, Err: errors.New("x")}
	if acquisitionError(pre) != error(pre) {
		t.Fatal("classified errors should pass through")
	}
	if got := pre.Error(); got != "NotFoundError: x" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestDirGrabber_ReplaysImagesInOrder(t *testing.T) {
	dir := t.TempDir()
	for i, c := range []color.RGBA{{10, 0, 0, 255}, {20, 0, 0, 255}} {
		f, err := os.Create(filepath.Join(dir, fmt.Sprintf("frame-%02d.png", i)))
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, solidFrame(4, 3, c)); err != nil {
			t.Fatal(err)
		}
		f.Close()
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	g := NewDirGrabber(dir, 33.5)
	if err := g.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	first, err := g.Grab()
	if err != nil || first.Pix[0] != 10 {
		t.Fatalf("first frame: err=%v", err)
	}
	second, _ := g.Grab()
	if second.Pix[0] != 20 || g.MediaTime() != 33.5 {
		t.Fatalf("second frame red=%d time=%v", second.Pix[0], g.MediaTime())
	}
	if _, err := g.Grab(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestDirGrabber_EmptyDirIsNotFound(t *testing.T) {
	g := NewDirGrabber(t.TempDir(), 10)
	var ae *AcquisitionError
	if err := g.Open(context.Background()); !errors.As(err, &ae) || ae.Kind != KindNotFound {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestParseFrameRate(t *testing.T) {
	if fps, err := parseFrameRate("30000/1001"); err != nil || fps < 29.96 || fps > 29.98 {
		t.Fatalf("ntsc rate: %v %v", fps, err)
	}
	if fps, err := parseFrameRate("25"); err != nil || fps != 25 {
		t.Fatalf("plain rate: %v %v", fps, err)
	}
	if _, err := parseFrameRate("30/0"); err == nil {
		t.Fatal("expected error for zero denominator")
	}
}

func TestFromConfig_SelectsGrabber(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source = config.SourceFrames
	cfg.SourcePath = "/tmp/frames"
	g, opts := FromConfig(cfg)
	if _, ok := g.(*SequenceGrabber); !ok || !opts.Lossless {
		t.Fatalf("frames source: got %T lossless=%v", g, opts.Lossless)
	}
	cfg.Source = config.SourceScreen
	g, opts = FromConfig(cfg)
	if _, ok := g.(*ScreenGrabber); !ok || opts.Interval <= 0 {
		t.Fatalf("screen source: got %T interval=%v", g, opts.Interval)
	}
	cfg.Source = config.SourceWebcam
	if g, _ = FromConfig(cfg); g == nil {
		t.Fatal("expected webcam grabber")
	}
}

func TestCaptureService_GivesUpOnPersistentGrabErrors(t *testing.T) {
	logs := &lockedBuffer{}
	logger := slog.New(slog.NewTextHandler(logs, nil))
	g := &scriptedGrabber{err: errors.New("ffmpeg: exit status 1"), failFirst: -1}
	svc := NewCaptureService(logger, g, ServiceOptions{Lossless: true, MaxGrabFailures: 5})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer svc.Stop()
	waitStopped(t, svc)

	if st := svc.Stats(); st.Skipped != 5 || st.Frames != 0 {
		t.Fatalf("stats = %+v", st)
	}
	if n := logs.count("capture grab failed"); n != 1 {
		t.Fatalf("expected one rate-limited failure line, got %d", n)
	}
	if n := logs.count("giving up"); n != 1 {
		t.Fatalf("expected one give-up line, got %d", n)
	}
}

func TestCaptureService_RecoversFromTransientGrabErrors(t *testing.T) {
	g := &scriptedGrabber{err: errors.New("screen locked"), failFirst: 3, frames: 2}
	svc := NewCaptureService(discardLogger, g, ServiceOptions{MaxGrabFailures: 5, Buffer: 4})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer svc.Stop()
	waitStopped(t, svc)

	if st := svc.Stats(); st.Skipped != 3 || st.Frames != 2 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestCaptureService_EndsOnClosedSource(t *testing.T) {
	g := &scriptedGrabber{err: fmt.Errorf("%w: race.mp4: exit status 1", ErrSourceClosed), failFirst: -1}
	svc := NewCaptureService(discardLogger, g, ServiceOptions{Lossless: true})
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer svc.Stop()
	waitStopped(t, svc)

	if g.calls != 1 {
		t.Fatalf("closed source grabbed %d times, want 1", g.calls)
	}
}
