package capture

import (
	"image"

	"golang.org/x/image/draw"
)

// toRGBA returns img as *image.RGBA with a zero origin, copying only when
// the decoder produced a different pixel layout (JPEG yields YCbCr).
func toRGBA(img image.Image) *image.RGBA {
	if img == nil {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
