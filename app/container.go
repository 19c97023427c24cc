package app

import (
	"image"
	"log/slog"

	"github.com/soocke/photo-finish-go/config"
	"github.com/soocke/photo-finish-go/domain/capture"
	"github.com/soocke/photo-finish-go/domain/finish"
	"github.com/soocke/photo-finish-go/metrics"
	"github.com/soocke/photo-finish-go/pipeline"
	"github.com/soocke/photo-finish-go/ui/images"
	"github.com/soocke/photo-finish-go/ui/model"
	"github.com/soocke/photo-finish-go/ui/presenter"
	"github.com/soocke/photo-finish-go/ui/view"
)

const thumbnailCacheSize = 64

// AppContainer assembles models, services, presenters and the root view.
type AppContainer struct {
	Config    *config.Config
	CfgPath   string
	Logger    *slog.Logger
	Metrics   *metrics.Metrics

	Recording *model.RecordingModel
	Session   *model.SessionModel
	Selection *model.SelectionModel

	Pipeline   *pipeline.Pipeline
	CaptureSvc capture.CaptureService
	Recorder   *finish.Recorder
	Scheduler  *finish.Scheduler
	Exporter   *finish.DirExporter
	Thumbs     *images.ThumbnailCache

	RootView *view.RootView

	// Presenters
	RecordPresenter  *presenter.RecordPresenter
	SessionPresenter *presenter.SessionPresenter
	PreviewPresenter *presenter.PreviewPresenter
	PhotosPresenter  *presenter.PhotosPresenter
	Loop             *presenter.Loop
}

// BuildContainer constructs the services and the view. Nothing is started;
// presenters are wired by BuildPresenters once the view exists.
func BuildContainer(cfg *config.Config, cfgPath string, logger *slog.Logger, met *metrics.Metrics) *AppContainer {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &AppContainer{Config: cfg, CfgPath: cfgPath, Logger: logger, Metrics: met}
	c.Recording = &model.RecordingModel{}
	c.Session = model.NewSessionModel()
	c.Selection = model.NewSelectionModel(image.Rect(cfg.SelectionX, cfg.SelectionY, cfg.SelectionX+cfg.SelectionW, cfg.SelectionY+cfg.SelectionH))

	c.Pipeline = pipeline.New(cfg, logger, met, pipeline.Options{
		ConfigureGrabber: func(g capture.Grabber) {
			if sg, ok := g.(*capture.ScreenGrabber); ok {
				sg.Selection = c.Selection.Active
			}
		},
	})
	c.CaptureSvc = c.Pipeline.Capture
	c.Recorder = c.Pipeline.Recorder
	c.Scheduler = c.Pipeline.Scheduler
	c.Exporter = c.Pipeline.Exporter
	c.Thumbs = images.NewThumbnailCache(thumbnailCacheSize, 160, 90)

	c.RootView = view.NewRootView(cfg, cfgPath, logger)
	return c
}

// BuildPresenters wires presenters to the built view. schedule re-arms the
// UI tick.
func (c *AppContainer) BuildPresenters(schedule func()) {
	rv := c.RootView
	c.RecordPresenter = presenter.NewRecordPresenter(c.Recording, c.Scheduler, rv, c.Logger)
	c.SessionPresenter = presenter.NewSessionPresenter(c.Session, c.Recording, c.Recorder.Photos(), rv)
	videoBox := c.Recorder.Settings().VideoBox(c.Config.FrameRate)
	c.PreviewPresenter = presenter.NewPreviewPresenter(c.CaptureSvc, c.Scheduler, rv, videoBox)
	c.PhotosPresenter = presenter.NewPhotosPresenter(c.Recorder.Photos(), c.Exporter, c.Config.ExportPrefix, rv, c.Thumbs, c.Logger)
	c.Loop = presenter.NewLoop(c.RecordPresenter, c.SessionPresenter, c.PreviewPresenter, c.PhotosPresenter, schedule)
	c.Scheduler.AddListener(c.RecordPresenter.OnEvent)
}

// Close stops the scheduler and the capture service.
func (c *AppContainer) Close() {
	if c == nil {
		return
	}
	c.Pipeline.Close()
}
