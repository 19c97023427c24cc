package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/soocke/photo-finish-go/domain/finish"
)

// ErrSourceEnded is returned when the video source stops before the
// requested photos are recorded.
var ErrSourceEnded = errors.New("video source ended")

const (
	pollInterval    = 50 * time.Millisecond
	frameSizeWait   = 10 * time.Second
	idleTicksOnStop = 4
)

// RecordOptions drive a headless recording run.
type RecordOptions struct {
	// Count is the number of photos to record (minimum 1).
	Count int
	// StopAfter requests a stop this long after each start; zero waits for
	// the strip to fill.
	StopAfter time.Duration
}

// Recorded describes one photo produced by Record.
type Recorded struct {
	Index  int
	Photo  finish.CapturedPhoto
	Took   time.Duration
	Frames int
}

// Record opens the source and records opts.Count photos back to back. Photos
// recorded before an error are returned with it.
func Record(ctx context.Context, p *Pipeline, opts RecordOptions, logger *slog.Logger) ([]Recorded, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Count < 1 {
		opts.Count = 1
	}
	if err := p.Start(ctx); err != nil {
		return nil, err
	}

	results := make(chan finish.Event, opts.Count)
	p.Scheduler.AddListener(func(ev finish.Event) {
		if ev.Kind == finish.EventPhoto || ev.Kind == finish.EventFailed {
			select {
			case results <- ev:
			default:
			}
		}
	})

	if err := waitFrameSize(ctx, p); err != nil {
		return nil, err
	}

	var out []Recorded
	for i := 0; i < opts.Count; i++ {
		started := time.Now()
		if err := p.Scheduler.Start(); err != nil {
			return out, fmt.Errorf("start photo %d: %w", i, err)
		}
		logger.Info("recording", "photo", i+1, "of", opts.Count)
		ev, err := waitPhoto(ctx, p, results, opts.StopAfter)
		if err != nil {
			return out, fmt.Errorf("photo %d: %w", i, err)
		}
		if ev.Kind == finish.EventFailed {
			return out, fmt.Errorf("photo %d: %w", i, ev.Err)
		}
		out = append(out, Recorded{Index: p.Photos().Len() - 1, Photo: *ev.Photo, Took: time.Since(started), Frames: ev.Photo.Frames})
	}
	return out, nil
}

func waitFrameSize(ctx context.Context, p *Pipeline) error {
	deadline := time.NewTimer(frameSizeWait)
	defer deadline.Stop()
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for p.Capture.Size() == (image.Point{}) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("no frame within %s: %w", frameSizeWait, finish.ErrNoFrameSize)
		case <-t.C:
			if !p.Capture.Running() && p.Capture.Size() == (image.Point{}) {
				return ErrSourceEnded
			}
		}
	}
	return nil
}

// waitPhoto blocks until the scheduler reports the session outcome. A source
// that stopped running is given a few ticks to drain its queued frames.
func waitPhoto(ctx context.Context, p *Pipeline, results <-chan finish.Event, stopAfter time.Duration) (finish.Event, error) {
	var stop <-chan time.Time
	if stopAfter > 0 {
		timer := time.NewTimer(stopAfter)
		defer timer.Stop()
		stop = timer.C
	}
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	idle, lastFrames := 0, -1
	for {
		select {
		case <-ctx.Done():
			p.Scheduler.Stop()
			return finish.Event{}, ctx.Err()
		case ev := <-results:
			return ev, nil
		case <-stop:
			stop = nil
			p.Scheduler.Stop()
		case <-t.C:
			if p.Capture.Running() {
				continue
			}
			frames := p.Scheduler.Status().Frames
			if frames == lastFrames {
				idle++
			} else {
				idle, lastFrames = 0, frames
			}
			if idle >= idleTicksOnStop {
				return finish.Event{}, ErrSourceEnded
			}
		}
	}
}
