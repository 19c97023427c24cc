package capture

import (
	"context"
	"image"
)

// Grabber produces raw frames from a video device, screen or file.
// Open is called once before the first Grab; Grab may block until a frame is
// available and returns io.EOF when the stream is exhausted, or an error
// wrapping ErrSourceClosed when it can never deliver again.
type Grabber interface {
	Open(ctx context.Context) error
	Grab() (*image.RGBA, error)
	Close() error
}

// MediaClock is implemented by grabbers whose frames carry their own
// presentation time (files, frame sequences). MediaTime returns the
// timestamp in milliseconds of the most recently grabbed frame.
type MediaClock interface {
	MediaTime() float64
}

// FrameSource provides read-only access to captured frames.
// LatestFrame returns the freshest snapshot while Running reports activity.
type FrameSource interface {
	LatestFrame() FrameSnapshot
	Running() bool
}

// SizeProvider exposes the frame dimensions once the first frame arrived.
type SizeProvider interface {
	Size() image.Point
}

// ServiceContract exposes basic lifecycle control for capture services.
type ServiceContract interface {
	Start(ctx context.Context) error
	Stop()
	Running() bool
}
