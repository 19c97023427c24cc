package presenter

import (
	"image"
	"image/color"

	"github.com/soocke/photo-finish-go/domain/capture"
	"github.com/soocke/photo-finish-go/ui/images"
)

// FrameSource supplies the most recent frame from the video source.
type FrameSource interface {
	Running() bool
	LatestFrame() capture.FrameSnapshot
}

// StripSource supplies a snapshot of the strip being recorded.
type StripSource interface {
	Preview() *image.RGBA
}

// PreviewView describes the UI surface updated by the presenter.
type PreviewView interface {
	UpdateCapture(img image.Image)
	UpdateStrip(img image.Image)
	SetFrameSize(w, h int)
	PreviewReset()
}

var videoBoxColor = color.NRGBA{R: 0xdc, G: 0x26, B: 0x26, A: 0xff}

// PreviewPresenter pushes the live source frame, with the sampled video box
// outlined, and the in-progress strip to the view.
type PreviewPresenter struct {
	Source   FrameSource
	Strip    StripSource
	View     PreviewView
	VideoBox image.Rectangle

	lastSeq   uint64
	lastStrip *image.RGBA
	size      image.Point
}

// NewPreviewPresenter constructs a preview presenter.
func NewPreviewPresenter(source FrameSource, strip StripSource, view PreviewView, videoBox image.Rectangle) *PreviewPresenter {
	return &PreviewPresenter{Source: source, Strip: strip, View: view, VideoBox: videoBox}
}

// ProcessFrame pulls the latest frame and strip snapshot and updates the view
// when either changed.
func (p *PreviewPresenter) ProcessFrame() {
	if p == nil || p.Source == nil || p.View == nil {
		return
	}
	snap := p.Source.LatestFrame()
	if !snap.Empty() && snap.Sequence != p.lastSeq {
		p.lastSeq = snap.Sequence
		if sz := snap.Image.Bounds().Size(); sz != p.size {
			p.size = sz
			p.View.SetFrameSize(sz.X, sz.Y)
		}
		p.View.UpdateCapture(images.OutlineRect(snap.Image, p.VideoBox, 2, videoBoxColor))
	}
	if p.Strip == nil {
		return
	}
	if strip := p.Strip.Preview(); strip != p.lastStrip {
		p.lastStrip = strip
		if strip == nil {
			p.View.PreviewReset()
			return
		}
		p.View.UpdateStrip(strip)
	}
}
