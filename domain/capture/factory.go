package capture

import (
	"image"
	"time"

	"github.com/soocke/photo-finish-go/config"
)

// FromConfig builds the grabber and loop options for the configured source.
// Sources carrying their own clock (files, frame sequences) run lossless and
// unpaced; live sources drop stale frames.
func FromConfig(cfg *config.Config) (Grabber, ServiceOptions) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	interval := time.Second / time.Duration(cfg.FrameRate)
	switch cfg.Source {
	case config.SourceScreen:
		sel := image.Rect(cfg.SelectionX, cfg.SelectionY, cfg.SelectionX+cfg.SelectionW, cfg.SelectionY+cfg.SelectionH)
		return NewScreenGrabber(sel), ServiceOptions{Interval: interval}
	case config.SourceFile:
		return NewVideoFileGrabber(cfg.SourcePath), ServiceOptions{Lossless: true, Buffer: 4}
	case config.SourceFrames:
		return NewDirGrabber(cfg.SourcePath, 1000/float64(cfg.FrameRate)), ServiceOptions{Lossless: true, Buffer: 4}
	default:
		return NewWebcamGrabber(cfg.Device, cfg.FrameWidth, cfg.FrameHeight, cfg.FrameRate), ServiceOptions{}
	}
}
