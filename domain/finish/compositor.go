package finish

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Slice describes where one frame lands on the strip and which part of the
// frame is sampled. DestWidth is negative for RightToLeft: the slice grows
// backward from DestX.
type Slice struct {
	DestX     float64
	DestWidth float64
	SrcX      float64
	SrcY      float64
	SrcWidth  float64
	SrcHeight float64
	// Cycle counts completed strip widths since the session origin.
	Cycle int64
	// Wrapped is set when this frame starts a new strip cycle.
	Wrapped bool
}

// ComputeSlice maps [sess.LastTimestamp, timestamp] onto the strip. It does
// not mutate sess. The session origin must already be set.
func ComputeSlice(s Settings, sess *CaptureSession, timestamp float64) Slice {
	ref := sess.LastTimestamp
	if s.Direction == RightToLeft {
		ref = timestamp
	}
	t := ref - sess.StartTimestamp
	period := s.StripWidthF()
	x := t * s.PixelsPerMs

	// destX = x mod period, with the cycle derived from the same division so
	// both always agree.
	cycle := math.Floor(x / period)
	destX := x - cycle*period
	if destX >= period {
		destX -= period
		cycle++
	} else if destX < 0 {
		destX += period
		cycle--
	}

	dt := timestamp - sess.LastTimestamp
	width := dt * s.PixelsPerMs
	if s.Direction == RightToLeft {
		width = -width
	}
	c := int64(cycle)
	return Slice{
		DestX:     destX,
		DestWidth: width,
		SrcX:      float64(s.VideoBoxX),
		SrcY:      float64(s.VideoBoxY),
		SrcWidth:  dt * s.VideoBoxWidthPerMs,
		SrcHeight: float64(s.VideoBoxHeight),
		Cycle:     c,
		Wrapped:   destX < sess.LastSliceOffset || c > sess.Cycle,
	}
}

// DestRect returns the normalized destination rectangle spanning the full
// strip height. Edges are floored from the cumulative offsets so adjacent
// slices abut. The rectangle may extend past the strip's right edge (or left
// of zero for RightToLeft); drawing clips it.
func (sl Slice) DestRect(height int) image.Rectangle {
	x0, x1 := sl.DestX, sl.DestX+sl.DestWidth
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	return image.Rect(int(math.Floor(x0)), 0, int(math.Floor(x1)), height)
}

// SrcRect returns the sampled source rectangle relative to the frame origin.
// Any positive sample width is at least one pixel wide.
func (sl Slice) SrcRect() image.Rectangle {
	if sl.SrcWidth <= 0 || sl.SrcHeight <= 0 {
		return image.Rectangle{}
	}
	w := int(math.Round(sl.SrcWidth))
	if w < 1 {
		w = 1
	}
	x0 := int(math.Floor(sl.SrcX))
	y0 := int(math.Floor(sl.SrcY))
	return image.Rect(x0, y0, x0+w, y0+int(math.Round(sl.SrcHeight)))
}

// Compositor performs the stretch/shrink blit of a slice into the strip.
type Compositor struct {
	scaler xdraw.Scaler
}

// NewCompositor returns a compositor using the named interpolation:
// "nearest", "approx-bilinear" (default), "bilinear" or "catmull-rom".
func NewCompositor(interpolation string) *Compositor {
	var s xdraw.Scaler
	switch interpolation {
	case "nearest":
		s = xdraw.NearestNeighbor
	case "bilinear":
		s = xdraw.BiLinear
	case "catmull-rom":
		s = xdraw.CatmullRom
	default:
		s = xdraw.ApproxBiLinear
	}
	return &Compositor{scaler: s}
}

// Draw blits the slice's source region of frame into strip. It reports
// whether anything was drawn; zero-width slices and source boxes outside the
// frame draw nothing.
func (c *Compositor) Draw(strip *image.RGBA, frame image.Image, sl Slice) bool {
	if strip == nil || frame == nil {
		return false
	}
	dr := sl.DestRect(strip.Bounds().Dy())
	if dr.Empty() || dr.Intersect(strip.Bounds()).Empty() {
		return false
	}
	fb := frame.Bounds()
	sr := sl.SrcRect().Add(fb.Min).Intersect(fb)
	if sr.Empty() {
		return false
	}
	c.scaler.Scale(strip, dr, frame, sr, xdraw.Src, nil)
	return true
}
