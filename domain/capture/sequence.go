package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SequenceGrabber replays a fixed list of frames with a constant frame
// interval. Frames come either from memory or from the image files of a
// directory, in lexical order.
type SequenceGrabber struct {
	Dir        string
	IntervalMs float64

	frames []*image.RGBA
	files  []string
	index  int
}

// NewSequenceGrabber replays in-memory frames intervalMs apart.
func NewSequenceGrabber(frames []*image.RGBA, intervalMs float64) *SequenceGrabber {
	return &SequenceGrabber{frames: frames, IntervalMs: intervalMs}
}

// NewDirGrabber replays the PNG/JPEG files found in dir intervalMs apart.
func NewDirGrabber(dir string, intervalMs float64) *SequenceGrabber {
	return &SequenceGrabber{Dir: dir, IntervalMs: intervalMs}
}

func (g *SequenceGrabber) Open(ctx context.Context) error {
	g.index = 0
	if g.Dir == "" {
		if len(g.frames) == 0 {
			return &AcquisitionError{Kind: KindNotFound, Err: errors.New("frame sequence is empty")}
		}
		return nil
	}
	entries, err := os.ReadDir(g.Dir)
	if err != nil {
		return acquisitionError(err)
	}
	g.files = g.files[:0]
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg":
			g.files = append(g.files, filepath.Join(g.Dir, e.Name()))
		}
	}
	sort.Strings(g.files)
	if len(g.files) == 0 {
		return &AcquisitionError{Kind: KindNotFound, Err: fmt.Errorf("no image frames in %s", g.Dir)}
	}
	return nil
}

func (g *SequenceGrabber) count() int {
	if g.Dir != "" {
		return len(g.files)
	}
	return len(g.frames)
}

func (g *SequenceGrabber) Grab() (*image.RGBA, error) {
	if g.index >= g.count() {
		return nil, io.EOF
	}
	i := g.index
	g.index++
	if g.Dir == "" {
		return g.frames[i], nil
	}
	f, err := os.Open(g.files[i])
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", g.files[i], err)
	}
	return toRGBA(img), nil
}

// MediaTime returns the timestamp of the last grabbed frame in ms.
func (g *SequenceGrabber) MediaTime() float64 {
	if g.index == 0 {
		return 0
	}
	return float64(g.index-1) * g.IntervalMs
}

func (g *SequenceGrabber) Close() error { return nil }
