package finish

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"

	"github.com/google/uuid"
)

const pngMIME = "image/png"

// CapturedPhoto is an immutable, finalized strip image encoded as PNG.
type CapturedPhoto struct {
	ID         uuid.UUID
	SessionID  uuid.UUID
	PNG        []byte
	Width      int
	Height     int
	Frames     int
	Direction  Direction
	CapturedAt time.Time
}

// newCapturedPhoto encodes img and records its declared dimensions.
func newCapturedPhoto(img image.Image, sess *CaptureSession, dir Direction, now time.Time) (CapturedPhoto, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return CapturedPhoto{}, fmt.Errorf("encode strip: %w", err)
	}
	b := img.Bounds()
	p := CapturedPhoto{
		ID:         uuid.New(),
		PNG:        buf.Bytes(),
		Width:      b.Dx(),
		Height:     b.Dy(),
		Direction:  dir,
		CapturedAt: now,
	}
	if sess != nil {
		p.SessionID = sess.ID
		p.Frames = sess.Frames
	}
	return p, nil
}

// Decode returns the photo's pixels.
func (p CapturedPhoto) Decode() (image.Image, error) {
	return png.Decode(bytes.NewReader(p.PNG))
}

// DataURI renders the photo as "data:image/png;base64,...".
func (p CapturedPhoto) DataURI() string {
	return "data:" + pngMIME + ";base64," + base64.StdEncoding.EncodeToString(p.PNG)
}

// DecodeDataURI splits a base64 data URI into its MIME type and payload.
// URL-encoded (non-base64) data URIs are not supported.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("data URI without payload")
	}
	mime, enc, _ := strings.Cut(meta, ";")
	if enc != "base64" {
		return "", nil, fmt.Errorf("unsupported data URI encoding %q", enc)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URI: %w", err)
	}
	return mime, data, nil
}
