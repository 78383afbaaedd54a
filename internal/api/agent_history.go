package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/dennisdiepolder/availability/internal/storage"
	"github.com/dennisdiepolder/availability/internal/types"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

// AgentHistoryHandler provides REST endpoints for agent status history
type AgentHistoryHandler struct {
	store  storage.Store
	now    func() time.Time
	logger zerolog.Logger
}

// NewAgentHistoryHandler creates a new AgentHistoryHandler
func NewAgentHistoryHandler(store storage.Store, logger zerolog.Logger) *AgentHistoryHandler {
	return &AgentHistoryHandler{
		store:  store,
		now:    time.Now,
		logger: logger.With().Str("component", "agent_history_handler").Logger(),
	}
}

// GetHistory returns the status changes of one agent on a UTC day, today
// when no date is given
// GET /api/agents/{name}/history?date=YYYY-MM-DD
func (h *AgentHistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.now().UTC().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	records, err := h.store.GetStatusHistory(r.Context(), name, date)
	if err != nil {
		h.logger.Error().Err(err).
			Str("agent", name).
			Str("date", date).
			Msg("failed to get status history")
		writeError(w, http.StatusInternalServerError, "failed to retrieve history")
		return
	}

	if records == nil {
		records = []types.StatusChangeRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(records)
}
