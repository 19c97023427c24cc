package capture

import (
	"errors"
	"os"
	"syscall"
)

// Acquisition failure kinds, named after the media-device errors users know
// from browsers.
const (
	KindNotFound    = "NotFoundError"
	KindNotAllowed  = "NotAllowedError"
	KindNotReadable = "NotReadableError"
)

// ErrSourceClosed is returned by Grab when the source failed for good, for
// example when the decoder process exited with an error. The capture loop
// ends on it like on io.EOF.
var ErrSourceClosed = errors.New("video source closed")

// AcquisitionError reports that a video source could not be opened.
type AcquisitionError struct {
	Kind string
	Err  error
}

func (e *AcquisitionError) Error() string {
	if e.Err == nil {
		return e.Kind
	}
	return e.Kind + ": " + e.Err.Error()
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// acquisitionError classifies err into an AcquisitionError. Errors that are
// already classified pass through unchanged.
func acquisitionError(err error) error {
	if err == nil {
		return nil
	}
	var ae *AcquisitionError
	if errors.As(err, &ae) {
		return err
	}
	kind := KindNotReadable
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, syscall.ENODEV):
		kind = KindNotFound
	case errors.Is(err, os.ErrPermission):
		kind = KindNotAllowed
	}
	return &AcquisitionError{Kind: kind, Err: err}
}
