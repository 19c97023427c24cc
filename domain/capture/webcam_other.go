//go:build !linux

package capture

import (
	"context"
	"errors"
	"image"
)

// WebcamGrabber is only available on Linux (V4L2).
type WebcamGrabber struct {
	Path string
}

// NewWebcamGrabber returns a grabber that always fails to open on this platform.
func NewWebcamGrabber(path string, width, height, fps int) *WebcamGrabber {
	return &WebcamGrabber{Path: path}
}

func (g *WebcamGrabber) Open(ctx context.Context) error {
	return &AcquisitionError{Kind: KindNotFound, Err: errors.New("webcam capture requires a V4L2 device (linux)")}
}

func (g *WebcamGrabber) Grab() (*image.RGBA, error) { return nil, errors.New("webcam: not open") }

func (g *WebcamGrabber) Close() error { return nil }
