package finish

import "sync"

// PhotoCollection holds finalized photos in insertion order. It is
// append-only except for Clear. Safe for concurrent use: the scheduler
// appends while UI and HTTP readers take snapshots.
type PhotoCollection struct {
	mu      sync.RWMutex
	photos  []CapturedPhoto
	version uint64
}

// NewPhotoCollection returns an empty collection.
func NewPhotoCollection() *PhotoCollection { return &PhotoCollection{} }

// Append adds p at the end and returns its position.
func (c *PhotoCollection) Append(p CapturedPhoto) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.photos = append(c.photos, p)
	c.version++
	return len(c.photos) - 1
}

// Len returns the number of photos.
func (c *PhotoCollection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.photos)
}

// At returns the photo at position i.
func (c *PhotoCollection) At(i int) (CapturedPhoto, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.photos) {
		return CapturedPhoto{}, false
	}
	return c.photos[i], true
}

// All returns a snapshot of the photos in insertion order.
func (c *PhotoCollection) All() []CapturedPhoto {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CapturedPhoto, len(c.photos))
	copy(out, c.photos)
	return out
}

// Clear removes every photo. It never asks for confirmation.
func (c *PhotoCollection) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.photos) == 0 {
		return
	}
	c.photos = nil
	c.version++
}

// Version increases on every change; views poll it to detect updates.
func (c *PhotoCollection) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}
