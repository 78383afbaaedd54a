package storage

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/dennisdiepolder/availability/internal/types"
)

// Store persists agent status transitions
type Store interface {
	SaveStatusChange(ctx context.Context, record types.StatusChangeRecord) error
	GetStatusHistory(ctx context.Context, agentName, date string) ([]types.StatusChangeRecord, error)
}

// NoopStore is a no-op implementation when DynamoDB is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveStatusChange(_ context.Context, _ types.StatusChangeRecord) error { return nil }
func (s *NoopStore) GetStatusHistory(_ context.Context, _, _ string) ([]types.StatusChangeRecord, error) {
	return nil, nil
}

// MemoryStore keeps history in process memory, for local runs without DynamoDB
type MemoryStore struct {
	records map[string][]types.StatusChangeRecord // agent name -> records
	mu      sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]types.StatusChangeRecord)}
}

func (s *MemoryStore) SaveStatusChange(_ context.Context, record types.StatusChangeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.AgentName] = append(s.records[record.AgentName], record)
	return nil
}

// GetStatusHistory returns the records for one agent and day ordered by time
func (s *MemoryStore) GetStatusHistory(_ context.Context, agentName, date string) ([]types.StatusChangeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.StatusChangeRecord
	for _, r := range s.records[agentName] {
		if strings.HasPrefix(r.ChangedAt, date) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ChangedAt < out[j].ChangedAt })
	return out, nil
}
