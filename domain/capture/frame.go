package capture

import (
	"image"
	"time"
)

// FrameSnapshot is one acquired frame. Timestamp is milliseconds since the
// source was opened and never decreases within a run.
type FrameSnapshot struct {
	Image      *image.RGBA
	Timestamp  float64
	CapturedAt time.Time
	Sequence   uint64
}

// Empty reports whether no frame has been captured yet.
func (f FrameSnapshot) Empty() bool { return f.Image == nil }

// SourceStats are counters of the acquisition loop since Start.
type SourceStats struct {
	Frames   uint64
	Skipped  uint64
	Dropped  uint64
	AvgGrab  time.Duration
	FrameAge time.Duration
	Sequence uint64
}
