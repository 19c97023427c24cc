package view

import (
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/soocke/photo-finish-go/config"
	"github.com/soocke/photo-finish-go/ui/model"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders
	. "modernc.org/tk9.0"
)

// SelectionOverlay manages the optional selection window that constrains the
// screen source to a rectangle, for example around a race video playing in
// another window.
type SelectionOverlay interface {
	OpenOrFocus()
	Clear()
	ActiveRect() *image.Rectangle
}

type selectionOverlay struct {
	logger    *slog.Logger
	cfg       *config.Config
	cfgPath   string
	selection *model.SelectionModel
	win       *ToplevelWidget
}

// NewSelectionOverlay creates a new overlay manager writing into sel.
func NewSelectionOverlay(cfg *config.Config, cfgPath string, sel *model.SelectionModel, logger *slog.Logger) SelectionOverlay {
	if sel == nil {
		sel = &model.SelectionModel{}
	}
	return &selectionOverlay{logger: logger, cfg: cfg, cfgPath: cfgPath, selection: sel}
}

// OpenOrFocus shows a translucent frame the user drags over the race video.
// It opens on the current selection, or centered on a 1920x1080 screen.
func (v *selectionOverlay) OpenOrFocus() {
	if v.win != nil {
		WmGeometry(v.win.Window)
		return
	}
	v.win = App.Toplevel(Borderwidth(2), Background(overlayKey))
	v.win.WmTitle("Video Selection")
	WmGeometry(v.win.Window, geometryString(v.initialRect()))
	WmAttributes(v.win.Window, "-topmost", 1)
	WmProtocol(v.win.Window, "WM_DELETE_WINDOW", v.destroy)
	if runtime.GOOS == "windows" {
		WmAttributes(v.win.Window, "-toolwindow", true)
		WmAttributes(v.win.Window, "-transparentcolor", overlayKey)
	}

	GridRowConfigure(v.win.Window, 0, Weight(1))
	GridColumnConfigure(v.win.Window, 0, Weight(1))
	Grid(v.win.Frame(Background(overlayKey), Borderwidth(3), Relief("solid")), Row(0), Column(0), Sticky("nsew"))

	bar := v.win.Frame()
	Grid(bar, Row(1), Column(0), Sticky("we"))
	for i, b := range []struct {
		label string
		cmd   func()
	}{
		{"Use Selection [Enter]", v.confirm},
		{"Full Screen", v.Clear},
		{"Cancel [Esc]", v.destroy},
	} {
		Grid(v.win.Button(Txt(b.label), Command(b.cmd)), In(bar), Row(0), Column(i), Sticky("we"), Padx("0.2m"), Pady("0.2m"))
	}
	Bind(v.win, "<Return>", Command(v.confirm))
	Bind(v.win, "<Escape>", Command(v.destroy))
}

const overlayKey = "#008080"

func (v *selectionOverlay) initialRect() image.Rectangle {
	if r := v.selection.Active(); r != nil {
		return *r
	}
	const screenW, screenH = 1920, 1080
	w, h := screenW*2/3, screenH*5/9
	x, y := (screenW-w)/2, (screenH-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// Clear drops the selection so the whole screen is captured again.
func (v *selectionOverlay) Clear() {
	v.selection.Set(image.Rectangle{})
	v.persist(image.Rectangle{})
	v.destroy()
}

func (v *selectionOverlay) confirm() {
	if v.win == nil {
		return
	}
	if rect, ok := parseGeometry(WmGeometry(v.win.Window)); ok {
		v.selection.Set(rect)
		v.persist(rect)
		if v.logger != nil {
			v.logger.Info("screen selection set", "rect", rect)
		}
	}
	v.destroy()
}

func (v *selectionOverlay) destroy() {
	if v.win != nil {
		Destroy(v.win)
		v.win = nil
	}
}

func (v *selectionOverlay) ActiveRect() *image.Rectangle { return v.selection.Active() }

// persist stores r in the config file so the next launch starts with it.
func (v *selectionOverlay) persist(r image.Rectangle) {
	if v.cfg == nil || v.cfgPath == "" {
		return
	}
	v.cfg.SelectionX, v.cfg.SelectionY = r.Min.X, r.Min.Y
	v.cfg.SelectionW, v.cfg.SelectionH = r.Dx(), r.Dy()
	if err := v.cfg.Save(v.cfgPath); err != nil && v.logger != nil {
		v.logger.Error("config save failed", "error", err)
	}
}

func geometryString(r image.Rectangle) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Dx(), r.Dy(), r.Min.X, r.Min.Y)
}

// geometryRe matches Tk geometry strings "WIDTHxHEIGHT+X+Y".
var geometryRe = regexp.MustCompile(`^(\d+)x(\d+)\+(-?\d+)\+(-?\d+)$`)

func parseGeometry(g string) (image.Rectangle, bool) {
	m := geometryRe.FindStringSubmatch(strings.TrimSpace(g))
	if m == nil {
		return image.Rectangle{}, false
	}
	var n [4]int
	for i := range n {
		n[i], _ = strconv.Atoi(m[i+1])
	}
	if n[0] <= 0 || n[1] <= 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(n[2], n[3], n[2]+n[0], n[3]+n[1]), true
}
