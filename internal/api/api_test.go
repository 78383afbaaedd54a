package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dennisdiepolder/availability/internal/auth"
	"github.com/dennisdiepolder/availability/internal/bindings"
	"github.com/dennisdiepolder/availability/internal/cache"
	"github.com/dennisdiepolder/availability/internal/storage"
	"github.com/dennisdiepolder/availability/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type fakeSnapshots struct {
	latest  *types.Dashboard
	people  []types.Person
	updated map[string]time.Time
}

func (f *fakeSnapshots) Latest() *types.Dashboard { return f.latest }
func (f *fakeSnapshots) Roster() []types.Person { return f.people }
func (f *fakeSnapshots) SourcesUpdated() map[string]time.Time { return f.updated }

func withClaims(r *http.Request, c *auth.Claims) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), auth.UserContextKey, c))
}

func TestGetDashboard(t *testing.T) {
	lon := []types.ResolvedAgent{{Person: types.Person{Name: "Salman"}, Status: types.StatusChat}}
	syd := []types.ResolvedAgent{{Person: types.Person{Name: "Chloe"}, Status: types.StatusAway}}
	snaps := &fakeSnapshots{latest: &types.Dashboard{
		Type: "snapshot",
		Zones: []types.Zone{
			{City: types.City{Code: "LON"}, Agents: lon},
			{City: types.City{Code: "SYD"}, Agents: syd},
		},
		Summary: types.Summarize(append(lon, syd...)),
	}}
	h := NewDashboardHandler(snaps, zerolog.New(&bytes.Buffer{}))

	req := withClaims(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil), &auth.Claims{AllowedZones: []string{"SYD"}})
	rec := httptest.NewRecorder()
	h.GetDashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var d types.Dashboard
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(d.Zones) != 1 || d.Zones[0].City.Code != "SYD" || d.Summary.TotalAgents != 1 {
		t.Errorf("expected only the Sydney zone, got %+v", d)
	}
}

func TestGetDashboardBeforeFirstSnapshot(t *testing.T) {
	h := NewDashboardHandler(&fakeSnapshots{}, zerolog.New(&bytes.Buffer{}))

	rec := httptest.NewRecorder()
	h.GetDashboard(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestGetRosterAndSources(t *testing.T) {
	at := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	h := NewDashboardHandler(&fakeSnapshots{
		updated: map[string]time.Time{"binding:schedule": at},
	}, zerolog.New(&bytes.Buffer{}))

	rec := httptest.NewRecorder()
	h.GetRoster(rec, httptest.NewRequest(http.MethodGet, "/api/roster", nil))
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", body)
	}

	rec = httptest.NewRecorder()
	h.GetSources(rec, httptest.NewRequest(http.MethodGet, "/api/sources", nil))
	var got map[string]time.Time
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if !got["binding:schedule"].Equal(at) {
		t.Errorf("unexpected sources %v", got)
	}
}

func historyRouter(h *AgentHistoryHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/agents/{name}/history", h.GetHistory)
	return r
}

func TestGetHistory(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	store.SaveStatusChange(ctx, types.StatusChangeRecord{AgentName: "Priya Raman", ChangedAt: "2026-07-01T09:00:00Z", Status: "chat"})
	store.SaveStatusChange(ctx, types.StatusChangeRecord{AgentName: "Priya Raman", ChangedAt: "2026-07-02T09:00:00Z", Status: "lunch"})

	h := NewAgentHistoryHandler(store, zerolog.New(&bytes.Buffer{}))
	h.now = func() time.Time { return time.Date(2026, 7, 2, 15, 0, 0, 0, time.UTC) }
	router := historyRouter(h)

	tests := []struct {
		name   string
		path   string
		code   int
		status string
	}{
		{"explicit date", "/api/agents/Priya%20Raman/history?date=2026-07-01", http.StatusOK, "chat"},
		{"defaults to today", "/api/agents/Priya%20Raman/history", http.StatusOK, "lunch"},
		{"bad date", "/api/agents/Priya%20Raman/history?date=yesterday", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, rec.Code, rec.Body.String())
			}
			if tt.status == "" {
				return
			}
			var records []types.StatusChangeRecord
			if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if len(records) != 1 || records[0].Status != tt.status {
				t.Errorf("expected one %s record, got %+v", tt.status, records)
			}
		})
	}
}

func TestGetHistoryUnknownAgent(t *testing.T) {
	h := NewAgentHistoryHandler(storage.NewMemoryStore(), zerolog.New(&bytes.Buffer{}))

	rec := httptest.NewRecorder()
	historyRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agents/Nobody/history?date=2026-07-01", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "[]\n" {
		t.Errorf("expected 200 with empty array, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestAdminReset(t *testing.T) {
	store := bindings.NewStore()
	store.Put(bindings.KindSchedule, bindings.Table{"name": {"Salman"}})
	sources := cache.NewSources()
	sources.SetCounts([]types.TSECount{{Name: "Salman"}}, time.Now())

	h := NewAdminHandler(store, sources, zerolog.New(&bytes.Buffer{}))
	handler := RequireAdmin(http.HandlerFunc(h.ResetMemory))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withClaims(httptest.NewRequest(http.MethodPost, "/api/admin/reset", nil), &auth.Claims{Role: "lead"}))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for lead, got %d", rec.Code)
	}
	if store.Empty() {
		t.Fatal("forbidden request must not reset state")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, withClaims(httptest.NewRequest(http.MethodPost, "/api/admin/reset", nil), &auth.Claims{Role: "admin"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
	if !store.Empty() || sources.Snapshot().HasData() {
		t.Error("expected bindings and feeds cleared")
	}
}
