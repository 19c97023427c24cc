package finish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
)

const (
	lockRetryDelay = 50 * time.Millisecond
	exportFileMode = os.FileMode(0o644)
)

// PadIndex zero-pads i to four digits. Values of 10000 and above print at
// their natural width.
func PadIndex(i int) string {
	return fmt.Sprintf("%04d", i)
}

// ExportName is the file name for the photo at position i.
func ExportName(prefix string, i int) string {
	return prefix + "-" + PadIndex(i) + ".png"
}

// Exporter emits one encoded photo under the given name.
type Exporter interface {
	Export(ctx context.Context, name string, photo CapturedPhoto) error
}

// ExportAll emits every photo in the collection in insertion order. Each
// item is attempted; failures are joined.
func ExportAll(ctx context.Context, exp Exporter, c *PhotoCollection, prefix string) (int, error) {
	if exp == nil || c == nil {
		return 0, nil
	}
	var errs []error
	n := 0
	for i, p := range c.All() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		name := ExportName(prefix, i)
		if err := exp.Export(ctx, name, p); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// DirExporter writes photos into a directory. A lock file serializes
// concurrent exporters (GUI and HTTP) writing to the same directory.
type DirExporter struct {
	Dir    string
	logger *slog.Logger
}

// NewDirExporter returns an exporter rooted at dir.
func NewDirExporter(dir string, logger *slog.Logger) *DirExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &DirExporter{Dir: dir, logger: logger}
}

// Export writes photo to Dir/name through a temporary file.
func (e *DirExporter) Export(ctx context.Context, name string, photo CapturedPhoto) error {
	if e == nil || e.Dir == "" {
		return errors.New("export directory not set")
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	lock := flock.New(filepath.Join(e.Dir, ".photo-finish.lock"))
	ok, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire export lock: %w", err)
	}
	if !ok {
		return errors.New("export directory is locked")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			e.logger.Warn("failed to release export lock", "err", err)
		}
	}()

	dst := filepath.Join(e.Dir, filepath.Base(name))
	tmp, err := os.CreateTemp(e.Dir, ".export-*.png")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	// CreateTemp uses 0600; exported photos are meant to be shared.
	if err := tmp.Chmod(exportFileMode); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("chmod %s: %w", name, err)
	}
	if _, err := tmp.Write(photo.PNG); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", name, err)
	}
	e.logger.Info("photo exported",
		"path", dst,
		"size", humanize.Bytes(uint64(len(photo.PNG))),
		"width", photo.Width,
		"height", photo.Height,
	)
	return nil
}
