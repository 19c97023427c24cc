package images

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Thumbnail scales img to fit within maxW x maxH.
func Thumbnail(img image.Image, maxW, maxH int) image.Image {
	if img == nil {
		return nil
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

// ThumbnailCache keeps encoded PNG thumbnails keyed by photo ID so the photo
// list can be rebuilt without rescaling every strip.
type ThumbnailCache struct {
	cache      *lru.Cache[uuid.UUID, []byte]
	maxW, maxH int
}

// NewThumbnailCache returns a cache holding up to size thumbnails.
func NewThumbnailCache(size, maxW, maxH int) *ThumbnailCache {
	if size < 1 {
		size = 1
	}
	c, _ := lru.New[uuid.UUID, []byte](size)
	return &ThumbnailCache{cache: c, maxW: maxW, maxH: maxH}
}

// Get returns the PNG thumbnail for id, building it with decode on a miss.
func (t *ThumbnailCache) Get(id uuid.UUID, decode func() (image.Image, error)) ([]byte, error) {
	if b, ok := t.cache.Get(id); ok {
		return b, nil
	}
	img, err := decode()
	if err != nil {
		return nil, err
	}
	b := EncodePNG(Thumbnail(img, t.maxW, t.maxH))
	t.cache.Add(id, b)
	return b, nil
}

// Len reports the cached entry count.
func (t *ThumbnailCache) Len() int { return t.cache.Len() }

// Purge drops every cached thumbnail.
func (t *ThumbnailCache) Purge() { t.cache.Purge() }
