package presenter

import (
	"log/slog"
	"sync"
	"time"

	"github.com/soocke/photo-finish-go/domain/finish"
)

// RecordModel provides recording state access.
type RecordModel interface {
	Recording() bool
	SetRecording(bool) bool
}

// RecordController narrows what the presenter needs from the scheduler.
type RecordController interface {
	Start() error
	Stop() bool
}

// RecordView updates UI elements affected by starting and stopping.
type RecordView interface {
	SetRecordButton(recording bool)
	SetStateLabel(text string)
	ConfigEditable(bool)
	Alert(msg string)
}

// RecordPresenter owns the start/stop button. Scheduler events arrive on the
// scheduler goroutine and are queued; Tick reflects them on the UI thread.
type RecordPresenter struct {
	model  RecordModel
	ctl    RecordController
	view   RecordView
	logger *slog.Logger

	mu      sync.Mutex
	pending []finish.Event
}

func NewRecordPresenter(model RecordModel, ctl RecordController, view RecordView, logger *slog.Logger) *RecordPresenter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordPresenter{model: model, ctl: ctl, view: view, logger: logger}
}

// Toggle starts a session when idle and requests a stop while recording.
// A start that cannot proceed (no frame yet, session already active) is a
// silent no-op.
func (p *RecordPresenter) Toggle() {
	if p == nil || p.model == nil || p.ctl == nil || p.view == nil {
		return
	}
	if p.model.Recording() {
		if p.ctl.Stop() {
			p.view.SetStateLabel("State: finishing")
		}
		return
	}
	if err := p.ctl.Start(); err != nil {
		p.logger.Debug("start ignored", "error", err)
	}
}

// OnEvent queues a scheduler event. Safe to call from any goroutine.
func (p *RecordPresenter) OnEvent(ev finish.Event) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.pending = append(p.pending, ev)
	p.mu.Unlock()
}

// Tick applies queued events to the model and view.
func (p *RecordPresenter) Tick(now time.Time) {
	if p == nil || p.model == nil || p.view == nil {
		return
	}
	p.mu.Lock()
	evs := p.pending
	p.pending = nil
	p.mu.Unlock()
	for _, ev := range evs {
		switch ev.Kind {
		case finish.EventStarted:
			p.setRecording(true)
			p.view.SetStateLabel("State: recording")
		case finish.EventStopRequested:
			p.view.SetStateLabel("State: finishing")
		case finish.EventPhoto:
			p.setRecording(false)
			p.view.SetStateLabel("State: idle")
		case finish.EventFailed:
			p.setRecording(false)
			p.view.SetStateLabel("State: idle")
			if ev.Err != nil {
				p.view.Alert("Photo could not be saved: " + ev.Err.Error())
			}
		}
	}
}

func (p *RecordPresenter) setRecording(b bool) {
	if !p.model.SetRecording(b) {
		return
	}
	p.view.SetRecordButton(b)
	p.view.ConfigEditable(!b)
}
