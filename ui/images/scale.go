package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// EncodePNG encodes an image to PNG bytes. Errors are ignored and may return an empty slice.
func EncodePNG(img image.Image) []byte {
	if img == nil {
		return nil
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// ScaleToFit scales src so it fits within maxW x maxH preserving aspect ratio.
// If the source already fits, the original is returned.
func ScaleToFit(src image.Image, maxW, maxH int) image.Image {
	if src == nil {
		return nil
	}
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}
	b := src.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return src
	}
	return imaging.Fit(src, maxW, maxH, imaging.Box)
}

// OutlineRect draws a rectangle outline of the given thickness onto a copy
// of src. Used to show the sampled video box on the live preview. The
// rectangle is clipped to src.
func OutlineRect(src image.Image, r image.Rectangle, thickness int, c color.NRGBA) *image.NRGBA {
	if src == nil {
		return nil
	}
	dst := imaging.Clone(src)
	r = r.Sub(src.Bounds().Min).Intersect(dst.Bounds())
	if r.Empty() {
		return dst
	}
	if thickness < 1 {
		thickness = 1
	}
	fill := func(x0, y0, x1, y1 int) {
		rect := image.Rect(x0, y0, x1, y1).Intersect(r)
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				dst.SetNRGBA(x, y, c)
			}
		}
	}
	fill(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness)
	fill(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y)
	fill(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y)
	fill(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y)
	return dst
}
