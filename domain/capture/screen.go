package capture

import (
	"context"
	"fmt"
	"image"
)

// GrabScreen captures the full primary screen.
func GrabScreen() (*image.RGBA, error) {
	r, err := screenBounds()
	if err != nil {
		return nil, err
	}
	return captureScreenRect(r)
}

// GrabSelection captures sel clipped to the screen bounds.
func GrabSelection(sel image.Rectangle) (*image.RGBA, error) {
	screen, err := screenBounds()
	if err != nil {
		return nil, err
	}
	r := sel.Intersect(screen)
	if r.Empty() {
		return nil, fmt.Errorf("capture: selection out of bounds sel=%v screen=%v", sel, screen)
	}
	return captureScreenRect(r)
}

// ScreenGrabber uses the desktop as a video source. Selection, when set and
// non-empty, restricts capture to that rectangle.
type ScreenGrabber struct {
	Selection func() *image.Rectangle
}

// NewScreenGrabber returns a grabber capturing sel, or the full screen when
// sel is empty.
func NewScreenGrabber(sel image.Rectangle) *ScreenGrabber {
	if sel.Empty() {
		return &ScreenGrabber{}
	}
	return &ScreenGrabber{Selection: func() *image.Rectangle { return &sel }}
}

func (g *ScreenGrabber) Open(ctx context.Context) error {
	r, err := screenBounds()
	if err != nil {
		return &AcquisitionError{Kind: KindNotReadable, Err: err}
	}
	if r.Empty() {
		return &AcquisitionError{Kind: KindNotFound, Err: fmt.Errorf("no screen available")}
	}
	return nil
}

func (g *ScreenGrabber) Grab() (*image.RGBA, error) {
	if g.Selection != nil {
		if r := g.Selection(); r != nil && !r.Empty() {
			return GrabSelection(*r)
		}
	}
	return GrabScreen()
}

func (g *ScreenGrabber) Close() error { return nil }
