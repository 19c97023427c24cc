package finish

import (
	"time"

	"github.com/google/uuid"
)

// CaptureSession is the running state of one start-to-finalize capture.
// StartTimestamp is only meaningful once Started is true: the origin is the
// first frame delivered after start, not the moment Start was called.
type CaptureSession struct {
	ID              uuid.UUID
	Started         bool
	StartTimestamp  float64
	LastTimestamp   float64
	LastSliceOffset float64
	Cycle           int64
	Active          bool
	Frames          int
	Slices          int
	CreatedAt       time.Time
}

func newCaptureSession(now time.Time) *CaptureSession {
	return &CaptureSession{ID: uuid.New(), Active: true, CreatedAt: now}
}

// begin sets the time origin from the first delivered frame.
func (s *CaptureSession) begin(timestamp float64) {
	s.Started = true
	s.StartTimestamp = timestamp
	s.LastTimestamp = timestamp
}

// advance records the frame just composited.
func (s *CaptureSession) advance(timestamp float64, sl Slice) {
	s.LastTimestamp = timestamp
	s.LastSliceOffset = sl.DestX
	s.Cycle = sl.Cycle
	s.Frames++
}

// Elapsed is the time covered so far, in milliseconds.
func (s *CaptureSession) Elapsed() float64 {
	if s == nil || !s.Started {
		return 0
	}
	return s.LastTimestamp - s.StartTimestamp
}
