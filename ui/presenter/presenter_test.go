package presenter

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/photo-finish-go/domain/capture"
	"github.com/soocke/photo-finish-go/domain/finish"
	"github.com/soocke/photo-finish-go/ui/model"
)

type mockController struct {
	started, stopped int
	startErr         error
	active           bool
}

func (c *mockController) Start() error {
	c.started++
	if c.startErr != nil {
		return c.startErr
	}
	c.active = true
	return nil
}

func (c *mockController) Stop() bool {
	if !c.active {
		return false
	}
	c.stopped++
	c.active = false
	return true
}

type mockRecordView struct {
	button, editable bool
	buttonCalls      int
	state            string
	alerts           []string
}

func (v *mockRecordView) SetRecordButton(b bool) { v.buttonCalls++; v.button = b }
func (v *mockRecordView) SetStateLabel(s string) { v.state = s }
func (v *mockRecordView) ConfigEditable(b bool)  { v.editable = b }
func (v *mockRecordView) Alert(msg string)       { v.alerts = append(v.alerts, msg) }

func TestRecordPresenter_ToggleFollowsEvents(t *testing.T) {
	m := &model.RecordingModel{}
	ctl := &mockController{}
	view := &mockRecordView{editable: true}
	p := NewRecordPresenter(m, ctl, view, nil)

	p.Toggle()
	if ctl.started != 1 || m.Recording() {
		t.Fatalf("start should wait for the started event: started=%d recording=%v", ctl.started, m.Recording())
	}
	p.OnEvent(finish.Event{Kind: finish.EventStarted})
	p.Tick(time.Now())
	if !m.Recording() || !view.button || view.editable || view.state != "State: recording" {
		t.Fatalf("after start event: %+v", view)
	}

	p.Toggle()
	if ctl.stopped != 1 || view.state != "State: finishing" {
		t.Fatalf("toggle while recording should stop: stopped=%d state=%q", ctl.stopped, view.state)
	}
	p.OnEvent(finish.Event{Kind: finish.EventStopRequested})
	p.OnEvent(finish.Event{Kind: finish.EventPhoto})
	p.Tick(time.Now())
	if m.Recording() || view.button || !view.editable || view.state != "State: idle" {
		t.Fatalf("after photo event: %+v", view)
	}
	if view.buttonCalls != 2 {
		t.Fatalf("button updates = %d, want 2", view.buttonCalls)
	}
}

func TestRecordPresenter_StartRejectedIsSilent(t *testing.T) {
	m := &model.RecordingModel{}
	view := &mockRecordView{}
	p := NewRecordPresenter(m, &mockController{startErr: finish.ErrNoFrameSize}, view, nil)
	p.Toggle()
	p.OnEvent(finish.Event{Kind: finish.EventRejected, Err: finish.ErrNoFrameSize})
	p.Tick(time.Now())
	if m.Recording() || len(view.alerts) != 0 || view.buttonCalls != 0 {
		t.Fatalf("rejected start should not touch the view: %+v", view)
	}
}

func TestRecordPresenter_FailureAlerts(t *testing.T) {
	m := &model.RecordingModel{}
	view := &mockRecordView{}
	p := NewRecordPresenter(m, &mockController{}, view, nil)
	p.OnEvent(finish.Event{Kind: finish.EventStarted})
	p.OnEvent(finish.Event{Kind: finish.EventFailed, Err: errors.New("encode strip: boom")})
	p.Tick(time.Now())
	if m.Recording() || len(view.alerts) != 1 {
		t.Fatalf("expected one alert and idle state, got %v", view.alerts)
	}
}

type mockFrames struct{ snap capture.FrameSnapshot }

func (f *mockFrames) Running() bool                      { return true }
func (f *mockFrames) LatestFrame() capture.FrameSnapshot { return f.snap }

type mockStrip struct{ img *image.RGBA }

func (s *mockStrip) Preview() *image.RGBA { return s.img }

type mockPreviewView struct {
	captures, strips, resets int
	w, h                     int
	last                     image.Image
}

func (v *mockPreviewView) UpdateCapture(img image.Image) { v.captures++; v.last = img }
func (v *mockPreviewView) UpdateStrip(image.Image)       { v.strips++ }
func (v *mockPreviewView) SetFrameSize(w, h int)         { v.w, v.h = w, h }
func (v *mockPreviewView) PreviewReset()                 { v.resets++ }

func TestPreviewPresenter_UpdatesOnNewFrames(t *testing.T) {
	frames := &mockFrames{}
	strip := &mockStrip{}
	view := &mockPreviewView{}
	p := NewPreviewPresenter(frames, strip, view, image.Rect(10, 0, 14, 48))

	p.ProcessFrame()
	if view.captures != 0 {
		t.Fatalf("empty frame should not render")
	}
	frames.snap = capture.FrameSnapshot{Image: image.NewRGBA(image.Rect(0, 0, 64, 48)), Sequence: 1}
	p.ProcessFrame()
	p.ProcessFrame()
	if view.captures != 1 || view.w != 64 || view.h != 48 {
		t.Fatalf("captures=%d size=%dx%d", view.captures, view.w, view.h)
	}
	if _, _, _, a := view.last.At(10, 20).RGBA(); a == 0 {
		t.Fatalf("video box outline missing")
	}

	strip.img = image.NewRGBA(image.Rect(0, 0, 100, 10))
	p.ProcessFrame()
	p.ProcessFrame()
	strip.img = nil
	p.ProcessFrame()
	if view.strips != 1 || view.resets != 1 {
		t.Fatalf("strips=%d resets=%d", view.strips, view.resets)
	}
}

type mockPhotosView struct {
	thumbs  int
	calls   int
	enabled bool
	alerts  []string
}

func (v *mockPhotosView) SetPhotos(t [][]byte)   { v.calls++; v.thumbs = len(t) }
func (v *mockPhotosView) SetPhotoActions(b bool) { v.enabled = b }
func (v *mockPhotosView) Alert(msg string)       { v.alerts = append(v.alerts, msg) }

type mockExporter struct {
	names []string
	err   error
}

func (e *mockExporter) Export(_ context.Context, name string, _ finish.CapturedPhoto) error {
	e.names = append(e.names, name)
	return e.err
}

func testPhoto(t *testing.T) finish.CapturedPhoto {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 300, 20))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return finish.CapturedPhoto{ID: uuid.New(), PNG: buf.Bytes(), Width: 300, Height: 20}
}

func TestPhotosPresenter_SyncExportClear(t *testing.T) {
	photos := finish.NewPhotoCollection()
	view := &mockPhotosView{}
	exp := &mockExporter{}
	p := NewPhotosPresenter(photos, exp, "photo-finish", view, nil, nil)

	p.Tick(time.Now())
	if view.calls != 1 || view.enabled {
		t.Fatalf("initial sync: calls=%d enabled=%v", view.calls, view.enabled)
	}
	p.Tick(time.Now())
	if view.calls != 1 {
		t.Fatalf("unchanged collection should not refresh")
	}
	p.Export()
	if len(exp.names) != 0 {
		t.Fatalf("export of empty collection should do nothing")
	}

	photos.Append(testPhoto(t))
	photos.Append(testPhoto(t))
	p.Tick(time.Now())
	if view.thumbs != 2 || !view.enabled {
		t.Fatalf("after append: thumbs=%d enabled=%v", view.thumbs, view.enabled)
	}
	p.Export()
	if len(exp.names) != 2 || exp.names[1] != "photo-finish-0001.png" {
		t.Fatalf("exported %v", exp.names)
	}

	exp.err = errors.New("read-only")
	p.Export()
	if len(view.alerts) != 1 {
		t.Fatalf("expected export alert")
	}

	p.Clear()
	if photos.Len() != 0 || view.thumbs != 0 || view.enabled {
		t.Fatalf("after clear: len=%d thumbs=%d enabled=%v", photos.Len(), view.thumbs, view.enabled)
	}
}

type mockSessionView struct {
	session, total time.Duration
	photos         int
}

func (v *mockSessionView) SetSession(s, t time.Duration, n int) { v.session, v.total, v.photos = s, t, n }

func TestSessionPresenter_Tick(t *testing.T) {
	rec := &model.RecordingModel{}
	rec.SetRecording(true)
	photos := finish.NewPhotoCollection()
	photos.Append(finish.CapturedPhoto{})
	view := &mockSessionView{}
	p := NewSessionPresenter(model.NewSessionModel(), rec, photos, view)
	base := time.Unix(100, 0)
	p.Tick(base)
	p.Tick(base.Add(2 * time.Second))
	if view.session != 2*time.Second || view.total != 2*time.Second || view.photos != 1 {
		t.Fatalf("view = %+v", view)
	}
}

func TestLoop_NilSafe(t *testing.T) {
	scheduled := 0
	l := NewLoop(nil, nil, nil, nil, func() { scheduled++ })
	l.Tick()
	var nilLoop *Loop
	nilLoop.Tick()
	if scheduled != 1 {
		t.Fatalf("scheduled = %d", scheduled)
	}
}
