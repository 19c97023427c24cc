package presenter

import (
	"context"
	"log/slog"
	"time"

	"github.com/soocke/photo-finish-go/domain/finish"
	"github.com/soocke/photo-finish-go/ui/images"
)

const exportTimeout = 30 * time.Second

// PhotosView lists finished photos and exposes the bulk actions.
type PhotosView interface {
	SetPhotos(thumbs [][]byte)
	SetPhotoActions(enabled bool)
	Alert(msg string)
}

// PhotosPresenter mirrors the photo collection into the view and runs the
// export and clear actions.
type PhotosPresenter struct {
	photos   *finish.PhotoCollection
	exporter finish.Exporter
	prefix   string
	view     PhotosView
	thumbs   *images.ThumbnailCache
	logger   *slog.Logger

	synced      bool
	lastVersion uint64
}

func NewPhotosPresenter(photos *finish.PhotoCollection, exporter finish.Exporter, prefix string, view PhotosView, thumbs *images.ThumbnailCache, logger *slog.Logger) *PhotosPresenter {
	if thumbs == nil {
		thumbs = images.NewThumbnailCache(64, 240, 120)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PhotosPresenter{photos: photos, exporter: exporter, prefix: prefix, view: view, thumbs: thumbs, logger: logger}
}

// Tick refreshes the view when the collection changed.
func (p *PhotosPresenter) Tick(now time.Time) {
	if p == nil || p.photos == nil || p.view == nil {
		return
	}
	v := p.photos.Version()
	if p.synced && v == p.lastVersion {
		return
	}
	p.synced, p.lastVersion = true, v
	all := p.photos.All()
	thumbs := make([][]byte, 0, len(all))
	for _, ph := range all {
		b, err := p.thumbs.Get(ph.ID, ph.Decode)
		if err != nil {
			p.logger.Error("thumbnail failed", "photo", ph.ID, "error", err)
			continue
		}
		thumbs = append(thumbs, b)
	}
	p.view.SetPhotos(thumbs)
	p.view.SetPhotoActions(len(all) > 0)
}

// Export writes every photo through the exporter.
func (p *PhotosPresenter) Export() {
	if p == nil || p.photos == nil || p.exporter == nil || p.photos.Len() == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
	defer cancel()
	n, err := finish.ExportAll(ctx, p.exporter, p.photos, p.prefix)
	if err != nil {
		p.logger.Error("export failed", "exported", n, "error", err)
		if p.view != nil {
			p.view.Alert("Export failed: " + err.Error())
		}
		return
	}
	p.logger.Info("photos exported", "count", n)
}

// Clear empties the collection without asking for confirmation.
func (p *PhotosPresenter) Clear() {
	if p == nil || p.photos == nil {
		return
	}
	p.photos.Clear()
	p.thumbs.Purge()
	p.Tick(time.Now())
}
