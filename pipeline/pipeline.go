// Package pipeline assembles the capture, recording and export services
// shared by the GUI, the headless record command and the HTTP server.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/soocke/photo-finish-go/config"
	"github.com/soocke/photo-finish-go/domain/capture"
	"github.com/soocke/photo-finish-go/domain/finish"
	"github.com/soocke/photo-finish-go/metrics"
)

// Pipeline owns one video source feeding one recorder.
type Pipeline struct {
	Config    *config.Config
	Capture   capture.CaptureService
	Recorder  *finish.Recorder
	Scheduler *finish.Scheduler
	Exporter  *finish.DirExporter
	Metrics   *metrics.Metrics
}

// Options customize New.
type Options struct {
	// Grabber replaces the source built from the config.
	Grabber capture.Grabber
	// ConfigureGrabber is called with the grabber before the service is built.
	ConfigureGrabber func(capture.Grabber)
	Scheduler        finish.SchedulerOptions
}

// New builds the services. Nothing runs until Start.
func New(cfg *config.Config, logger *slog.Logger, met *metrics.Metrics, opts Options) *Pipeline {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	grabber, svcOpts := capture.FromConfig(cfg)
	if opts.Grabber != nil {
		grabber = opts.Grabber
	}
	if opts.ConfigureGrabber != nil {
		opts.ConfigureGrabber(grabber)
	}
	p := &Pipeline{Config: cfg, Metrics: met}
	p.Capture = capture.NewCaptureService(logger.With("component", "capture"), grabber, svcOpts)

	var observer finish.Observer
	if met != nil {
		observer = met
	}
	p.Recorder = finish.NewRecorder(finish.SettingsFromConfig(cfg), finish.NewCompositor(cfg.Interpolation), finish.NewPhotoCollection(), observer, logger.With("component", "recorder"))
	p.Scheduler = finish.NewScheduler(logger.With("component", "scheduler"), p.Recorder, p.Capture, opts.Scheduler)
	p.Exporter = finish.NewDirExporter(cfg.ExportDir, logger.With("component", "export"))
	if met != nil {
		p.Scheduler.AddListener(func(ev finish.Event) {
			switch ev.Kind {
			case finish.EventStarted:
				met.SetRecording(true)
			case finish.EventPhoto, finish.EventFailed:
				met.SetRecording(false)
			}
		})
	}
	return p
}

// Start opens the video source. Failures are *capture.AcquisitionError.
func (p *Pipeline) Start(ctx context.Context) error {
	return p.Capture.Start(ctx)
}

// Photos returns the collection recorded photos are appended to.
func (p *Pipeline) Photos() *finish.PhotoCollection { return p.Recorder.Photos() }

// Close stops the scheduler and the video source.
func (p *Pipeline) Close() {
	if p == nil {
		return
	}
	p.Scheduler.Close()
	p.Capture.Stop()
}
