package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soocke/photo-finish-go/config"
	"github.com/soocke/photo-finish-go/debug"
	"github.com/soocke/photo-finish-go/domain/capture"
	"github.com/soocke/photo-finish-go/metrics"
	"github.com/soocke/photo-finish-go/ui/theme"
	"github.com/soocke/photo-finish-go/ui/view"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

const tick = 100 * time.Millisecond

type app struct {
	c       *AppContainer
	logger  *slog.Logger
	width   int
	height  int
	afterID string
	cancel  context.CancelFunc
}

// NewApp creates the main window and all components behind it.
func NewApp(title string, width, height int, cfg *config.Config, cfgPath string, logger *slog.Logger) *app {
	a := &app{logger: logger, width: width, height: height}
	a.c = BuildContainer(cfg, cfgPath, logger, metrics.New())

	App.WmTitle(title)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	WmGeometry(App, fmt.Sprintf("%dx%d+100+100", width, height))
	return a
}

// Start builds the UI, opens the video source and blocks in the Tk event loop.
func (a *app) Start() {
	cfg := a.c.Config
	if cfg.Debug {
		debug.Start(10*time.Second, a.logger.With("component", "debug"))
	}
	theme.InitStyles()

	rv := a.c.RootView
	overlay := view.NewSelectionOverlay(cfg, a.c.CfgPath, a.c.Selection, a.logger)
	a.c.BuildPresenters(a.scheduleUpdate)
	rv.Build(view.Actions{
		ToggleRecord: a.c.RecordPresenter.Toggle,
		Export:       a.c.PhotosPresenter.Export,
		Clear:        a.c.PhotosPresenter.Clear,
		Selection:    overlay.OpenOrFocus,
		Exit:         a.exitHandler,
	}, cfg.Source == config.SourceScreen)
	rv.Selection = overlay

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	if err := a.c.CaptureSvc.Start(ctx); err != nil {
		// Stay idle; the Start button is a no-op until a frame size is known.
		var ae *capture.AcquisitionError
		if errors.As(err, &ae) {
			a.logger.Error("video source unavailable", "kind", ae.Kind, "error", ae.Err)
		}
		rv.SetStateLabel("State: no source")
		rv.Alert(err.Error())
	}

	a.scheduleUpdate()
	App.Wait()
}

func (a *app) exitHandler() {
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
		a.afterID = ""
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.c.Close()
	Destroy(App)
}

func (a *app) update() {
	a.c.Loop.Tick()
}

func (a *app) scheduleUpdate() {
	// TclAfter keeps the callback on Tk's event loop thread.
	a.afterID = TclAfter(tick, a.update)
}
