package model

import (
	"image"
	"sync/atomic"
)

// SelectionModel holds the screen rectangle the screen source captures.
// The zero value means the full primary screen. Safe for concurrent use: the
// capture goroutine reads it on every grab.
type SelectionModel struct {
	rect atomic.Pointer[image.Rectangle]
}

// NewSelectionModel returns a model seeded with r.
func NewSelectionModel(r image.Rectangle) *SelectionModel {
	m := &SelectionModel{}
	m.Set(r)
	return m
}

// Set stores r. Empty or inverted rectangles clear the selection.
func (m *SelectionModel) Set(r image.Rectangle) {
	if m == nil {
		return
	}
	if r.Empty() {
		m.rect.Store(nil)
		return
	}
	m.rect.Store(&r)
}

// Active returns the current selection or nil for the full screen.
func (m *SelectionModel) Active() *image.Rectangle {
	if m == nil {
		return nil
	}
	r := m.rect.Load()
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}
