package view

import (
	"image"

	"github.com/soocke/photo-finish-go/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// CapturePreview shows the live source frame and the strip being recorded.
type CapturePreview interface {
	UpdateCapture(img image.Image)
	UpdateStrip(img image.Image)
	ResetStrip()
}

type capturePreview struct {
	captureLabel   *LabelWidget
	stripLabel     *LabelWidget
	prevCapture    *Img
	prevStrip      *Img
	placeholderPNG []byte
}

const (
	maxPreviewW = 400
	maxPreviewH = 225
	maxStripW   = 960
	maxStripH   = 160
)

// NewCapturePreview creates the preview labels. The source frame spans the
// given row; the strip preview sits on the row below.
func NewCapturePreview(row int) CapturePreview {
	placeholder := images.EncodePNG(image.NewRGBA(image.Rect(0, 0, 200, 120)))
	capPhoto := NewPhoto(Data(placeholder))
	stripPhoto := NewPhoto(Data(placeholder))
	capture := Label(Image(capPhoto), Borderwidth(1), Relief("sunken"))
	strip := Label(Image(stripPhoto), Borderwidth(1), Relief("sunken"))
	Grid(capture, Row(row), Column(0), Columnspan(4), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	Grid(strip, Row(row+1), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	return &capturePreview{captureLabel: capture, stripLabel: strip, prevCapture: capPhoto, prevStrip: stripPhoto, placeholderPNG: placeholder}
}

// replace swaps the label image, deleting the previous Tk photo so obsolete
// pixel data is not retained.
func replace(label *LabelWidget, prev **Img, png []byte) {
	if label == nil || len(png) == 0 {
		return
	}
	if *prev != nil {
		(*prev).Delete()
	}
	*prev = NewPhoto(Data(png))
	label.Configure(Image(*prev))
}

func (v *capturePreview) UpdateCapture(img image.Image) {
	if img == nil {
		return
	}
	replace(v.captureLabel, &v.prevCapture, images.EncodePNG(images.ScaleToFit(img, maxPreviewW, maxPreviewH)))
}

func (v *capturePreview) UpdateStrip(img image.Image) {
	if img == nil {
		return
	}
	replace(v.stripLabel, &v.prevStrip, images.EncodePNG(images.ScaleToFit(img, maxStripW, maxStripH)))
}

func (v *capturePreview) ResetStrip() {
	replace(v.stripLabel, &v.prevStrip, v.placeholderPNG)
}
