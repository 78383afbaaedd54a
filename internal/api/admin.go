package api

import (
	"encoding/json"
	"net/http"

	"github.com/dennisdiepolder/availability/internal/auth"
	"github.com/dennisdiepolder/availability/internal/bindings"
	"github.com/dennisdiepolder/availability/internal/cache"
	"github.com/rs/zerolog"
)

// AdminHandler resets in-memory state
type AdminHandler struct {
	bindings *bindings.Store
	sources  *cache.Sources
	logger   zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler. sources may be nil.
func NewAdminHandler(store *bindings.Store, sources *cache.Sources, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		bindings: store,
		sources:  sources,
		logger:   logger.With().Str("component", "admin").Logger(),
	}
}

// RequireAdmin middleware: only admin role allowed
func RequireAdmin(next http.Handler) http.Handler {
	return requireRole("admin", next)
}

// RequireLead middleware: lead or admin role allowed
func RequireLead(next http.Handler) http.Handler {
	return requireRole("lead", next)
}

func requireRole(role string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ := auth.GetUserFromContext(r.Context())
		if !auth.HasRole(claims, role) {
			writeError(w, http.StatusForbidden, role+" role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ResetMemory drops every pushed binding and polled feed. With DEMO_MODE=auto
// the demo source takes over again until the host pushes.
// POST /api/admin/reset
func (h *AdminHandler) ResetMemory(w http.ResponseWriter, r *http.Request) {
	tables := h.bindings.Clear()
	if h.sources != nil {
		h.sources.Clear()
	}

	h.logger.Info().Int("tables", tables).Msg("in-memory state reset")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":       "in-memory state reset",
		"tablesCleared": tables,
	})
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
