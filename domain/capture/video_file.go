package capture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoFileGrabber decodes a video file through ffmpeg into raw RGBA frames.
// Frames are stamped with their presentation time derived from the stream
// frame rate, so playback speed does not affect the composite.
type VideoFileGrabber struct {
	Path string

	width, height int
	fps           float64
	index         int
	reader        *io.PipeReader
	done          chan error
}

// NewVideoFileGrabber returns a grabber for the video file at path.
func NewVideoFileGrabber(path string) *VideoFileGrabber {
	return &VideoFileGrabber{Path: path}
}

type probeResult struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
}

// parseFrameRate parses ffprobe rates such as "30000/1001" or "25".
func parseFrameRate(s string) (float64, error) {
	num, den, found := strings.Cut(strings.TrimSpace(s), "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("frame rate %q: %w", s, err)
	}
	if !found {
		return n, nil
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0, fmt.Errorf("frame rate %q: invalid denominator", s)
	}
	return n / d, nil
}

func (g *VideoFileGrabber) Open(ctx context.Context) error {
	if _, err := os.Stat(g.Path); err != nil {
		return acquisitionError(err)
	}
	raw, err := ffmpeg.Probe(g.Path)
	if err != nil {
		return &AcquisitionError{Kind: KindNotReadable, Err: fmt.Errorf("probe %s: %w", g.Path, err)}
	}
	var probe probeResult
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return &AcquisitionError{Kind: KindNotReadable, Err: fmt.Errorf("probe %s: %w", g.Path, err)}
	}
	for _, st := range probe.Streams {
		if st.CodecType != "video" {
			continue
		}
		g.width, g.height = st.Width, st.Height
		if fps, err := parseFrameRate(st.RFrameRate); err == nil && fps > 0 {
			g.fps = fps
		}
		break
	}
	if g.width <= 0 || g.height <= 0 {
		return &AcquisitionError{Kind: KindNotReadable, Err: fmt.Errorf("%s: no video stream", g.Path)}
	}
	if g.fps <= 0 {
		g.fps = 30
	}

	pr, pw := io.Pipe()
	g.reader = pr
	g.done = make(chan error, 1)
	g.index = 0
	go func() {
		err := ffmpeg.Input(g.Path).
			Output("pipe:", ffmpeg.KwArgs{"format": "rawvideo", "pix_fmt": "rgba"}).
			WithOutput(pw).
			Silent(true).
			Run()
		pw.CloseWithError(err)
		g.done <- err
	}()
	return nil
}

// Grab reads the next decoded frame. It returns io.EOF after the last frame
// and ErrSourceClosed when ffmpeg failed.
func (g *VideoFileGrabber) Grab() (*image.RGBA, error) {
	if g.reader == nil {
		return nil, errors.New("video file: not open")
	}
	img := image.NewRGBA(image.Rect(0, 0, g.width, g.height))
	if _, err := io.ReadFull(g.reader, img.Pix); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		// The pipe only fails once ffmpeg is gone.
		return nil, fmt.Errorf("%w: %s: %w", ErrSourceClosed, g.Path, err)
	}
	g.index++
	return img, nil
}

// MediaTime returns the presentation time of the last grabbed frame in ms.
func (g *VideoFileGrabber) MediaTime() float64 {
	if g.index == 0 || g.fps <= 0 {
		return 0
	}
	return float64(g.index-1) * 1000 / g.fps
}

func (g *VideoFileGrabber) Close() error {
	if g.reader == nil {
		return nil
	}
	err := g.reader.Close()
	g.reader = nil
	return err
}
