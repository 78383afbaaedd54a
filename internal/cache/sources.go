// Package cache keeps the last good value of every external feed.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/dennisdiepolder/availability/internal/types"
)

// Source names, also used as metric labels and in /api/sources
const (
	SourceUnassigned = "unassigned"
	SourceOpen       = "open"
	SourceCounts     = "tse_counts"
	SourceMetrics    = "daily_metrics"
	SourceOnCall     = "on_call"
	SourceBreach     = "breach"
)

// Sources holds the latest successful result per feed. A failed poll never
// touches it, so readers keep seeing the previous value.
type Sources struct {
	unassigned []types.Conversation
	open       []types.Conversation
	counts     []types.TSECount
	daily      *types.DailyMetrics
	onCall     types.OnCallReport
	breached   map[string]types.AssignmentStatus
	updated    map[string]time.Time
	mu         sync.RWMutex
}

// NewSources creates an empty source cache
func NewSources() *Sources {
	return &Sources{
		breached: make(map[string]types.AssignmentStatus),
		updated:  make(map[string]time.Time),
	}
}

// Snapshot is a consistent copy of every feed
type Snapshot struct {
	Unassigned []types.Conversation
	Open       []types.Conversation
	Counts     []types.TSECount
	Daily      *types.DailyMetrics
	OnCall     types.OnCallReport
	Breached   []types.AssignmentStatus
	Updated    map[string]time.Time
}

// HasData reports whether any feed has ever succeeded
func (s Snapshot) HasData() bool {
	return len(s.Updated) > 0
}

// SetUnassigned stores the unassigned conversations
func (s *Sources) SetUnassigned(convs []types.Conversation, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range convs {
		convs[i].FetchedAt = at
	}
	s.unassigned = convs

	// a conversation that left the unassigned list is no longer a breach
	still := make(map[string]bool, len(convs))
	for _, c := range convs {
		still[c.ID] = true
	}
	for id := range s.breached {
		if !still[id] {
			delete(s.breached, id)
		}
	}
	s.updated[SourceUnassigned] = at
}

// SetOpen stores the team's open conversations
func (s *Sources) SetOpen(convs []types.Conversation, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range convs {
		convs[i].FetchedAt = at
	}
	s.open = convs
	s.updated[SourceOpen] = at
}

// SetCounts stores per-engineer conversation counts
func (s *Sources) SetCounts(counts []types.TSECount, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = counts
	s.updated[SourceCounts] = at
}

// SetDailyMetrics stores today's metrics
func (s *Sources) SetDailyMetrics(m types.DailyMetrics, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.daily = &m
	s.updated[SourceMetrics] = at
}

// SetOnCall stores the on-call report
func (s *Sources) SetOnCall(r types.OnCallReport, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCall = r
	s.updated[SourceOnCall] = at
}

// RecordAssignments stores breach-check answers. Conversations still
// unassigned are kept as breaches; assigned ones are cleared.
func (s *Sources) RecordAssignments(statuses []types.AssignmentStatus, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range statuses {
		if st.Assigned {
			delete(s.breached, st.ID)
			continue
		}
		s.breached[st.ID] = st
	}
	s.updated[SourceBreach] = at
}

// Unassigned returns the cached unassigned conversations
func (s *Sources) Unassigned() []types.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Conversation, len(s.unassigned))
	copy(out, s.unassigned)
	return out
}

// Snapshot returns a copy of every feed
func (s *Sources) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Unassigned: append([]types.Conversation(nil), s.unassigned...),
		Open:       append([]types.Conversation(nil), s.open...),
		Counts:     append([]types.TSECount(nil), s.counts...),
		OnCall: types.OnCallReport{
			OnCall:    append([]types.OnCallEntry(nil), s.onCall.OnCall...),
			Incidents: append([]types.Incident(nil), s.onCall.Incidents...),
		},
		Updated: s.lastUpdatedLocked(),
	}
	if s.daily != nil {
		d := *s.daily
		snap.Daily = &d
	}
	for _, b := range s.breached {
		snap.Breached = append(snap.Breached, b)
	}
	sort.Slice(snap.Breached, func(i, j int) bool { return snap.Breached[i].ID < snap.Breached[j].ID })
	return snap
}

// LastUpdated returns the time of the last successful poll per source
func (s *Sources) LastUpdated() map[string]time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdatedLocked()
}

func (s *Sources) lastUpdatedLocked() map[string]time.Time {
	out := make(map[string]time.Time, len(s.updated))
	for k, v := range s.updated {
		out[k] = v
	}
	return out
}

// Clear forgets every feed, as if no poll had succeeded yet
func (s *Sources) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unassigned = nil
	s.open = nil
	s.counts = nil
	s.daily = nil
	s.onCall = types.OnCallReport{}
	s.breached = make(map[string]types.AssignmentStatus)
	s.updated = make(map[string]time.Time)
}
