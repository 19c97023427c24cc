package model

import (
	"image"
	"testing"
	"time"
)

func TestSessionModel_BasicLifecycle(t *testing.T) {
	m := NewSessionModel()
	base := time.Unix(0, 0)

	// Record for 5s.
	m.OnTick(true, base)
	m.OnTick(true, base.Add(5*time.Second))
	session, total := m.Values()
	if session != 5*time.Second || total != 5*time.Second {
		t.Fatalf("expected 5s session & total; got session=%v total=%v", session, total)
	}

	m.OnTick(false, base.Add(5*time.Second))
	m.OnTick(false, base.Add(7*time.Second))
	session2, total2 := m.Values()
	if session2 != session || total2 != total {
		t.Fatalf("idle tick should not change durations: session=%v total=%v", session2, total2)
	}

	// Second recording lasting 3s.
	m.OnTick(true, base.Add(10*time.Second))
	m.OnTick(true, base.Add(13*time.Second))
	if s, tot := m.Values(); s != 3*time.Second || tot != 8*time.Second {
		t.Fatalf("ongoing: session=%v total=%v", s, tot)
	}
	m.OnTick(false, base.Add(13*time.Second))
	if s, tot := m.Values(); s != 3*time.Second || tot != 8*time.Second {
		t.Fatalf("final: session=%v total=%v", s, tot)
	}
	if m.Sessions() != 2 {
		t.Fatalf("sessions = %d", m.Sessions())
	}
}

func TestRecordingModel_ReportsChanges(t *testing.T) {
	var m RecordingModel
	if m.SetRecording(false) {
		t.Fatalf("no change expected")
	}
	if !m.SetRecording(true) || !m.Recording() {
		t.Fatalf("expected change to recording")
	}
	var nilModel *RecordingModel
	if nilModel.Recording() || nilModel.SetRecording(true) {
		t.Fatalf("nil model should be inert")
	}
}

func TestSelectionModel_EmptyClears(t *testing.T) {
	m := NewSelectionModel(image.Rect(10, 10, 110, 60))
	if r := m.Active(); r == nil || r.Dx() != 100 {
		t.Fatalf("active = %v", r)
	}
	m.Set(image.Rectangle{})
	if m.Active() != nil {
		t.Fatalf("empty rect should clear the selection")
	}
}
