package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dennisdiepolder/availability/internal/auth"
	"github.com/dennisdiepolder/availability/internal/types"
	"github.com/dennisdiepolder/availability/internal/websocket"
	"github.com/rs/zerolog"
)

// Snapshots is the read side of the aggregator
type Snapshots interface {
	Latest() *types.Dashboard
	Roster() []types.Person
	SourcesUpdated() map[string]time.Time
}

// DashboardHandler serves the latest snapshot and its inputs over REST
type DashboardHandler struct {
	snapshots Snapshots
	logger    zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(snapshots Snapshots, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		snapshots: snapshots,
		logger:    logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// GetDashboard returns the latest snapshot filtered to the user's zones
// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d := h.snapshots.Latest()
	if d == nil {
		writeError(w, http.StatusServiceUnavailable, "no snapshot yet")
		return
	}

	claims, _ := auth.GetUserFromContext(r.Context())
	writeJSON(w, websocket.FilterDashboard(d, claims))
}

// GetRoster returns the configured people
// GET /api/roster
func (h *DashboardHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	people := h.snapshots.Roster()
	if people == nil {
		people = []types.Person{}
	}
	writeJSON(w, people)
}

// GetSources returns when each input last delivered data
// GET /api/sources
func (h *DashboardHandler) GetSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.snapshots.SourcesUpdated())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
