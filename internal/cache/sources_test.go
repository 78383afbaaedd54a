package cache

import (
	"testing"
	"time"

	"github.com/dennisdiepolder/availability/internal/types"
)

func TestSourcesKeepLastValue(t *testing.T) {
	s := NewSources()
	if s.Snapshot().HasData() {
		t.Fatal("new cache should have no data")
	}

	t0 := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	s.SetCounts([]types.TSECount{{Name: "Salman", Open: 3}}, t0)
	s.SetDailyMetrics(types.DailyMetrics{NewConversations: 12}, t0)

	snap := s.Snapshot()
	if !snap.HasData() || len(snap.Counts) != 1 || snap.Daily.NewConversations != 12 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if !snap.Updated[SourceCounts].Equal(t0) {
		t.Errorf("expected counts updated at %v, got %v", t0, snap.Updated[SourceCounts])
	}

	// snapshot copies are independent of the cache
	snap.Counts[0].Open = 99
	snap.Daily.NewConversations = 0
	again := s.Snapshot()
	if again.Counts[0].Open != 3 || again.Daily.NewConversations != 12 {
		t.Error("mutating a snapshot must not affect the cache")
	}
}

func TestBreachesFollowUnassignedList(t *testing.T) {
	s := NewSources()
	now := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

	s.SetUnassigned([]types.Conversation{{ID: "a"}, {ID: "b"}, {ID: "c"}}, now)
	s.RecordAssignments([]types.AssignmentStatus{
		{ID: "a", Assigned: false},
		{ID: "b", Assigned: true},
		{ID: "c", Assigned: false},
	}, now)

	snap := s.Snapshot()
	if len(snap.Breached) != 2 || snap.Breached[0].ID != "a" || snap.Breached[1].ID != "c" {
		t.Fatalf("expected breaches a and c, got %+v", snap.Breached)
	}
	if !snap.Unassigned[0].FetchedAt.Equal(now) {
		t.Error("expected fetch time stamped on conversations")
	}

	// c was picked up, so it drops off both lists
	s.SetUnassigned([]types.Conversation{{ID: "a"}}, now.Add(time.Minute))
	snap = s.Snapshot()
	if len(snap.Breached) != 1 || snap.Breached[0].ID != "a" {
		t.Errorf("expected only a to remain breached, got %+v", snap.Breached)
	}
}

func TestSourcesClear(t *testing.T) {
	s := NewSources()
	now := time.Now()
	s.SetUnassigned([]types.Conversation{{ID: "1"}}, now)
	s.SetCounts([]types.TSECount{{Name: "Salman", Open: 3}}, now)

	s.Clear()

	snap := s.Snapshot()
	if snap.HasData() || len(snap.Unassigned) != 0 || len(snap.Counts) != 0 {
		t.Errorf("expected empty snapshot after clear, got %+v", snap)
	}
}
