package view

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/photo-finish-go/config"
	"github.com/soocke/photo-finish-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// RootView composes the top-level application layout and wires UI callbacks.
// It owns high-level subviews but exposes minimal exported fields for presenters.
type RootView struct {
	cfg     *config.Config
	cfgPath string
	logger  *slog.Logger

	// Subviews
	Session     SessionStats
	ConfigPanel ConfigPanel
	Preview     CapturePreview
	PhotoList   PhotoList
	Selection   SelectionOverlay

	// Widgets
	StateLabel *TLabelWidget
	SizeLabel  *TLabelWidget
	RecordBtn  *TButtonWidget
	ExportBtn  *TButtonWidget
	ClearBtn   *TButtonWidget
}

// Actions are the user callbacks wired into the buttons.
type Actions struct {
	ToggleRecord func()
	Export       func()
	Clear        func()
	Selection    func()
	Exit         func()
}

func NewRootView(cfg *config.Config, cfgPath string, logger *slog.Logger) *RootView {
	return &RootView{cfg: cfg, cfgPath: cfgPath, logger: logger}
}

// Build constructs the layout. showSelection adds the screen selection button.
func (rv *RootView) Build(actions Actions, showSelection bool) {
	if rv == nil {
		return
	}
	// Row 0: session stats, state + size labels, buttons frame
	header := Frame()
	Grid(header, Row(0), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	rv.Session = NewSessionStats(header, 0, 0)
	rv.StateLabel = TLabel(Txt("State: idle"), Style(theme.StyleStateLabel))
	Grid(rv.StateLabel, In(header), Row(0), Column(3), Sticky("we"), Padx("0.4m"))
	rv.SizeLabel = TLabel(Txt("Source: waiting"), Style(theme.StyleAccentLabel))
	Grid(rv.SizeLabel, In(header), Row(0), Column(4), Sticky("we"), Padx("0.4m"))

	btnFrame := Frame()
	Grid(btnFrame, Row(0), Column(4), Sticky("ne"), Padx("0.3m"), Pady("0.3m"))
	rv.RecordBtn = TButton(Txt("Start"), Style(theme.StylePrimaryButton), Command(actions.ToggleRecord))
	Grid(rv.RecordBtn, In(btnFrame), Row(0), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.ExportBtn = TButton(Txt("Export All"), Command(actions.Export), State("disabled"))
	Grid(rv.ExportBtn, In(btnFrame), Row(1), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	rv.ClearBtn = TButton(Txt("Clear"), Style(theme.StyleDangerButton), Command(actions.Clear), State("disabled"))
	Grid(rv.ClearBtn, In(btnFrame), Row(2), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	row := 3
	if showSelection && actions.Selection != nil {
		selBtn := TButton(Txt("Selection Grid"), Command(actions.Selection))
		Grid(selBtn, In(btnFrame), Row(row), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
		row++
	}
	themeBtn := TButton(Txt("Dark / Light"), Command(func() { theme.SetDark(!theme.IsDark()) }))
	Grid(themeBtn, In(btnFrame), Row(row), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	row++
	exitBtn := TButton(Txt("Exit"), Command(actions.Exit))
	Grid(exitBtn, In(btnFrame), Row(row), Column(0), Sticky("we"), Padx("0.2m"), Pady("0.2m"))

	// Config panel rows
	rv.ConfigPanel = NewConfigPanel(rv.cfg, rv.cfgPath, rv.logger)
	endRow := rv.ConfigPanel.Build(1)

	rv.Preview = NewCapturePreview(endRow)
	rv.PhotoList = NewPhotoList(endRow + 2)
}

// SetStateLabel updates the state label text.
func (rv *RootView) SetStateLabel(text string) {
	if rv != nil && rv.StateLabel != nil {
		rv.StateLabel.Configure(Txt(text))
	}
}

// SetFrameSize shows the source resolution.
func (rv *RootView) SetFrameSize(w, h int) {
	if rv != nil && rv.SizeLabel != nil {
		rv.SizeLabel.Configure(Txt(fmt.Sprintf("Source: %dx%d", w, h)))
	}
}

// SetRecordButton switches the record button between Start and Stop.
func (rv *RootView) SetRecordButton(recording bool) {
	if rv == nil || rv.RecordBtn == nil {
		return
	}
	if recording {
		rv.RecordBtn.Configure(Txt("Stop"), Style(theme.StyleDangerButton))
		return
	}
	rv.RecordBtn.Configure(Txt("Start"), Style(theme.StylePrimaryButton))
}

// SetPhotoActions enables export and clear when photos exist.
func (rv *RootView) SetPhotoActions(enabled bool) {
	if rv == nil {
		return
	}
	state := "disabled"
	if enabled {
		state = "normal"
	}
	if rv.ExportBtn != nil {
		rv.ExportBtn.Configure(State(state))
	}
	if rv.ClearBtn != nil {
		rv.ClearBtn.Configure(State(state))
	}
}

// SetPhotos proxies to the photo list.
func (rv *RootView) SetPhotos(thumbs [][]byte) {
	if rv != nil && rv.PhotoList != nil {
		rv.PhotoList.SetPhotos(thumbs)
	}
}

// ConfigEditable toggles config panel editability.
func (rv *RootView) ConfigEditable(enabled bool) {
	if rv != nil && rv.ConfigPanel != nil {
		rv.ConfigPanel.SetEditable(enabled)
	}
}

// UpdateCapture proxies to the preview view.
func (rv *RootView) UpdateCapture(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.UpdateCapture(img)
	}
}

// UpdateStrip proxies to the preview view.
func (rv *RootView) UpdateStrip(img image.Image) {
	if rv != nil && rv.Preview != nil {
		rv.Preview.UpdateStrip(img)
	}
}

// PreviewReset clears the strip preview.
func (rv *RootView) PreviewReset() {
	if rv != nil && rv.Preview != nil {
		rv.Preview.ResetStrip()
	}
}

// SetSession updates durations and the photo count.
func (rv *RootView) SetSession(session, total time.Duration, photos int) {
	if rv == nil || rv.Session == nil {
		return
	}
	rv.Session.SetSession(session)
	rv.Session.SetTotal(total)
	rv.Session.SetPhotos(photos)
}

// Alert shows a modal error message.
func (rv *RootView) Alert(msg string) {
	if rv != nil && rv.logger != nil {
		rv.logger.Warn("alert", "message", msg)
	}
	MessageBox(Title("Photo Finish"), Msg(msg), Icon("error"))
}
