package view

import (
	"fmt"
	"time"

	//lint:ignore ST1001 Dot import for concise Tk widget DSL.
	. "modernc.org/tk9.0"
)

// SessionStats shows the session and total recording durations and the photo count.
type SessionStats interface {
	SetSession(d time.Duration)
	SetTotal(d time.Duration)
	SetPhotos(n int)
}

type sessionStats struct {
	sessionLbl *LabelWidget
	totalLbl   *LabelWidget
	photosLbl  *LabelWidget
}

// NewSessionStats creates the labels at (row, startCol..startCol+2) inside parent.
func NewSessionStats(parent *FrameWidget, row, startCol int) SessionStats {
	s := &sessionStats{sessionLbl: Label(Width(14)), totalLbl: Label(Width(14)), photosLbl: Label(Width(12))}
	for i, l := range []*LabelWidget{s.sessionLbl, s.totalLbl, s.photosLbl} {
		Grid(l, In(parent), Row(row), Column(startCol+i), Sticky("w"), Padx("0.2m"))
	}
	s.sessionLbl.Configure(Txt("Session: 00:00"))
	s.totalLbl.Configure(Txt("Total: 00:00"))
	s.photosLbl.Configure(Txt("Photos: 0"))
	return s
}

func formatMinSec(d time.Duration) string {
	seconds := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// SetSession updates the session duration display.
func (s *sessionStats) SetSession(d time.Duration) {
	if s == nil || s.sessionLbl == nil {
		return
	}
	s.sessionLbl.Configure(Txt("Session: " + formatMinSec(d)))
}

// SetTotal updates the total duration display.
func (s *sessionStats) SetTotal(d time.Duration) {
	if s == nil || s.totalLbl == nil {
		return
	}
	s.totalLbl.Configure(Txt("Total: " + formatMinSec(d)))
}

// SetPhotos updates the photo count.
func (s *sessionStats) SetPhotos(n int) {
	if s == nil || s.photosLbl == nil {
		return
	}
	s.photosLbl.Configure(Txt(fmt.Sprintf("Photos: %d", n)))
}
