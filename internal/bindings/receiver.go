package bindings

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/dennisdiepolder/availability/internal/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxPushBytes bounds one pushed table; host tables are tens of rows
const maxPushBytes = 4 << 20

// Receiver handles table pushes from the host plugin frame
type Receiver struct {
	store          *Store
	logger         zerolog.Logger
	pushesReceived int64
}

// NewReceiver creates a new binding receiver
func NewReceiver(store *Store, logger zerolog.Logger) *Receiver {
	return &Receiver{
		store:  store,
		logger: logger.With().Str("component", "bindings").Logger(),
	}
}

// PushResponse acknowledges a table push
type PushResponse struct {
	RequestID string `json:"requestId"`
	Table     Kind   `json:"table"`
	Rows      int    `json:"rows"`
}

// HandlePush receives one table
// POST /internal/bindings/{table}
func (r *Receiver) HandlePush(w http.ResponseWriter, req *http.Request) {
	m := metrics.Get()

	kind, err := ParseKind(chi.URLParam(req, "table"))
	if err != nil {
		m.RecordBindingError()
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var table Table
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxPushBytes))
	dec.UseNumber()
	if err := dec.Decode(&table); err != nil {
		r.logger.Error().Err(err).Str("table", string(kind)).Msg("failed to decode binding push")
		m.RecordBindingError()
		http.Error(w, "invalid table", http.StatusBadRequest)
		return
	}
	if table == nil {
		table = Table{}
	}

	r.store.Put(kind, table)
	m.RecordBindingPush(string(kind))
	count := atomic.AddInt64(&r.pushesReceived, 1)

	reqID := chimiddleware.GetReqID(req.Context())
	if reqID == "" {
		reqID = uuid.New().String()
	}

	resp := PushResponse{
		RequestID: reqID,
		Table:     kind,
		Rows:      table.Rows(),
	}

	r.logger.Debug().
		Str("request_id", resp.RequestID).
		Str("table", string(kind)).
		Int("rows", resp.Rows).
		Int("columns", len(table)).
		Int64("total_pushes", count).
		Msg("binding received")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// TableStats describes one stored binding
type TableStats struct {
	Table      Kind      `json:"table"`
	Rows       int       `json:"rows"`
	Columns    []string  `json:"columns"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// GetStats returns what is currently stored per binding
// GET /internal/bindings
func (r *Receiver) GetStats(w http.ResponseWriter, req *http.Request) {
	snap := r.store.Snapshot()

	tables := make([]TableStats, 0, len(snap))
	for _, kind := range AllKinds {
		e, ok := snap[kind]
		if !ok {
			continue
		}
		cols := make([]string, 0, len(e.Table))
		for c := range e.Table {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		tables = append(tables, TableStats{
			Table:      kind,
			Rows:       e.Table.Rows(),
			Columns:    cols,
			ReceivedAt: e.ReceivedAt,
		})
	}

	stats := map[string]interface{}{
		"pushes_received": atomic.LoadInt64(&r.pushesReceived),
		"tables":          tables,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
