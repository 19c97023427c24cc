//go:build linux

package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/vladimirvivien/go4vl/device"
	"github.com/vladimirvivien/go4vl/v4l2"
)

// WebcamGrabber reads MJPEG frames from a V4L2 device.
type WebcamGrabber struct {
	Path   string
	Width  uint32
	Height uint32
	FPS    uint32

	cam    *device.Device
	output <-chan []byte
	cancel context.CancelFunc
}

// NewWebcamGrabber returns a grabber for the V4L2 device at path.
func NewWebcamGrabber(path string, width, height, fps int) *WebcamGrabber {
	return &WebcamGrabber{Path: path, Width: uint32(width), Height: uint32(height), FPS: uint32(fps)}
}

func (g *WebcamGrabber) Open(ctx context.Context) error {
	opts := []device.Option{
		device.WithBufferSize(1),
		device.WithPixFormat(v4l2.PixFormat{
			PixelFormat: v4l2.PixelFmtMJPEG,
			Width:       g.Width,
			Height:      g.Height,
		}),
	}
	if g.FPS > 0 {
		opts = append(opts, device.WithFPS(g.FPS))
	}
	cam, err := device.Open(g.Path, opts...)
	if err != nil {
		return acquisitionError(fmt.Errorf("open device %s: %w", g.Path, err))
	}
	camCtx, cancel := context.WithCancel(ctx)
	if err := cam.Start(camCtx); err != nil {
		cancel()
		_ = cam.Close()
		return acquisitionError(fmt.Errorf("start device %s: %w", g.Path, err))
	}
	g.cam = cam
	g.output = cam.GetOutput()
	g.cancel = cancel
	return nil
}

// Grab blocks until the device delivers the next frame.
func (g *WebcamGrabber) Grab() (*image.RGBA, error) {
	if g.output == nil {
		return nil, errors.New("webcam: not open")
	}
	data, ok := <-g.output
	if !ok {
		return nil, io.EOF
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("webcam: decode frame: %w", err)
	}
	return toRGBA(img), nil
}

func (g *WebcamGrabber) Close() error {
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	if g.cam == nil {
		return nil
	}
	err := g.cam.Close()
	g.cam = nil
	g.output = nil
	return err
}
