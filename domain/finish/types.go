package finish

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/soocke/photo-finish-go/config"
)

// Direction is the direction objects move across the camera view.
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
)

func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "left-to-right"
	case RightToLeft:
		return "right-to-left"
	default:
		return "unknown"
	}
}

// ParseDirection accepts "left-to-right"/"ltr" and "right-to-left"/"rtl".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left-to-right", "ltr", "left to right":
		return LeftToRight, nil
	case "right-to-left", "rtl", "right to left":
		return RightToLeft, nil
	}
	return LeftToRight, fmt.Errorf("unknown direction %q", s)
}

// Settings is the fixed photo finish geometry. Output axis: DurationMs and
// PixelsPerMs. Source axis: the video box sampled from each frame.
type Settings struct {
	Direction          Direction
	DurationMs         int
	PixelsPerMs        float64
	VideoBoxX          int
	VideoBoxY          int
	VideoBoxHeight     int
	VideoBoxWidthPerMs float64
}

// DefaultSettings mirrors config.DefaultConfig.
func DefaultSettings() Settings {
	return SettingsFromConfig(config.DefaultConfig())
}

// SettingsFromConfig extracts the geometry from a validated config.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	dir, _ := ParseDirection(cfg.Direction)
	return Settings{
		Direction:          dir,
		DurationMs:         cfg.DurationMs,
		PixelsPerMs:        cfg.PixelsPerMs,
		VideoBoxX:          cfg.VideoBoxX,
		VideoBoxY:          cfg.VideoBoxY,
		VideoBoxHeight:     cfg.VideoBoxHeight,
		VideoBoxWidthPerMs: cfg.VideoBoxWidthPerMs,
	}
}

// StripWidthF is durationMs × pixelsPerMs, the period of the slice offset.
func (s Settings) StripWidthF() float64 {
	return float64(s.DurationMs) * s.PixelsPerMs
}

// StripWidth is the pixel width of the strip image.
func (s Settings) StripWidth() int {
	return int(math.Round(s.StripWidthF()))
}

// VideoBox is the source region sampled by one frame interval at frameRate,
// used to outline the sampled column in previews. Width is at least 2.
func (s Settings) VideoBox(frameRate int) image.Rectangle {
	if frameRate <= 0 {
		frameRate = 30
	}
	w := int(math.Round(s.VideoBoxWidthPerMs * 1000 / float64(frameRate)))
	if w < 2 {
		w = 2
	}
	return image.Rect(s.VideoBoxX, s.VideoBoxY, s.VideoBoxX+w, s.VideoBoxY+s.VideoBoxHeight)
}

// Observer receives compositing events, typically for metrics.
type Observer interface {
	SessionStarted()
	FrameProcessed()
	FrameSkipped()
	SliceDrawn()
	Wrapped()
	PhotoFinalized()
}

type nopObserver struct{}

func (nopObserver) SessionStarted() {}
func (nopObserver) FrameProcessed() {}
func (nopObserver) FrameSkipped()   {}
func (nopObserver) SliceDrawn()     {}
func (nopObserver) Wrapped()        {}
func (nopObserver) PhotoFinalized() {}

// Alerter shows a single user-facing message.
type Alerter interface {
	Alert(msg string)
}
