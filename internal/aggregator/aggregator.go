package aggregator

import (
	"context"
	"sync"
	"time"

	"github.com/dennisdiepolder/availability/internal/alerts"
	"github.com/dennisdiepolder/availability/internal/bindings"
	"github.com/dennisdiepolder/availability/internal/cache"
	"github.com/dennisdiepolder/availability/internal/config"
	"github.com/dennisdiepolder/availability/internal/demo"
	"github.com/dennisdiepolder/availability/internal/metrics"
	"github.com/dennisdiepolder/availability/internal/queue"
	"github.com/dennisdiepolder/availability/internal/region"
	"github.com/dennisdiepolder/availability/internal/roster"
	"github.com/dennisdiepolder/availability/internal/status"
	"github.com/dennisdiepolder/availability/internal/storage"
	"github.com/dennisdiepolder/availability/internal/types"
	"github.com/rs/zerolog"
)

// RefreshInterval is how often a snapshot is rebuilt and pushed
const RefreshInterval = 1 * time.Second

// IncidentRotation is how long each open incident stays in the banner
const IncidentRotation = 10 * time.Second

const historyTimeout = 5 * time.Second

// Publisher receives every snapshot the aggregator builds
type Publisher interface {
	Broadcast(d *types.Dashboard)
}

// Options wires the aggregator to its inputs. Sources and Demo may be nil.
type Options struct {
	Static   config.Static
	Bindings *bindings.Store
	Sources  *cache.Sources
	Demo     *demo.Source
	DemoMode config.DemoMode
	History  storage.Store
	Hub      Publisher

	// BreachAfter is the service level threshold for unassigned conversations
	BreachAfter time.Duration
}

// Aggregator reconciles every input into one dashboard snapshot per tick
type Aggregator struct {
	static   config.Static
	roster   *roster.Roster
	loc      *time.Location
	bindings *bindings.Store
	sources  *cache.Sources
	demo     *demo.Source
	demoMode config.DemoMode
	history  storage.Store
	hub      Publisher
	checker  *alerts.Checker

	breachAfter time.Duration

	// last recorded state per agent, for history change detection
	previous map[string]types.ResolvedAgent

	latest *types.Dashboard
	mu     sync.RWMutex

	logger zerolog.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(opts Options, logger zerolog.Logger) *Aggregator {
	loc, err := opts.Static.Layout.Location()
	if err != nil {
		loc = time.UTC
	}
	history := opts.History
	if history == nil {
		history = storage.NewNoopStore()
	}

	return &Aggregator{
		static:   opts.Static,
		roster:   opts.Static.Roster(),
		loc:      loc,
		bindings: opts.Bindings,
		sources:  opts.Sources,
		demo:     opts.Demo,
		demoMode: opts.DemoMode,
		history:  history,
		hub:      opts.Hub,
		checker:  alerts.NewChecker(),
		previous: make(map[string]types.ResolvedAgent),
		logger:   logger.With().Str("component", "aggregator").Logger(),

		breachAfter: opts.BreachAfter,
	}
}

// Start rebuilds and broadcasts the snapshot every second until ctx is done
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()

	a.logger.Info().Msg("aggregator started")
	a.Refresh(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			a.logger.Info().Msg("aggregator stopped")
			return

		case now := <-ticker.C:
			a.Refresh(ctx, now)
		}
	}
}

// Refresh builds one snapshot, stores it as the latest and hands it to the hub
func (a *Aggregator) Refresh(ctx context.Context, now time.Time) *types.Dashboard {
	m := metrics.Get()
	cycleStart := time.Now()

	d, agents, err := a.Build(now)
	if err != nil {
		// partial decode; the snapshot still carries whatever decoded
		m.RecordRefreshError()
		a.logger.Warn().Err(err).Msg("binding decode failed")
	}

	a.mu.Lock()
	a.latest = d
	a.mu.Unlock()

	m.UpdateAgentStats(agents)
	if !d.Demo {
		a.recordChanges(ctx, agents, now)
	}

	if a.hub != nil {
		a.hub.Broadcast(d)
	}
	m.RecordRefresh(time.Since(cycleStart))

	a.logger.Debug().
		Int("agents", len(agents)).
		Int("zones", len(d.Zones)).
		Bool("demo", d.Demo).
		Msg("snapshot broadcasted")
	return d
}

// Latest returns the most recent snapshot, or nil before the first refresh
func (a *Aggregator) Latest() *types.Dashboard {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.latest
}

// Roster returns the configured people
func (a *Aggregator) Roster() []types.Person {
	return a.roster.People()
}

// SourcesUpdated returns the last update time of every input
func (a *Aggregator) SourcesUpdated() map[string]time.Time {
	out := make(map[string]time.Time)
	if a.bindings != nil {
		for k, t := range a.bindings.LastUpdated() {
			out[k] = t
		}
	}
	if a.sources != nil {
		for k, t := range a.sources.LastUpdated() {
			out[k] = t
		}
	}
	return out
}

// Build reconciles the current inputs at now. The returned error is a decode
// failure of one or more bindings; the snapshot is always usable.
func (a *Aggregator) Build(now time.Time) (*types.Dashboard, []types.ResolvedAgent, error) {
	var snap map[bindings.Kind]bindings.Entry
	if a.bindings != nil {
		snap = a.bindings.Snapshot()
	}

	useDemo := a.demoActive(len(snap) == 0)
	if useDemo {
		snap = a.demo.Tables(now)
	}

	decoded, err := bindings.Decode(snap, a.static.Layout, a.loc, now)
	agents := status.Resolve(a.roster, decoded.Schedule, decoded.Live, decoded.OOO)
	a.checker.CheckAgentAlerts(agents, now)

	utc := region.UTCHour(now)
	d := &types.Dashboard{
		Type:          "snapshot",
		Timestamp:     now.UTC(),
		UTCHour:       utc,
		CursorPercent: region.Cursor(utc),
		Zones:         region.Group(agents, a.static.Cities, utc),
		Handoffs:      region.Handoffs(a.static.Cities),
		Summary:       types.Summarize(agents),
		Demo:          useDemo,
	}
	if c, ok := region.CurrentCity(a.static.Cities, utc); ok {
		d.CurrentCity = c.Name
	}
	if c, ok := region.IncomingCity(a.static.Cities, utc); ok {
		d.IncomingCity = c.Name
	}

	var feeds cache.Snapshot
	if a.sources != nil {
		feeds = a.sources.Snapshot()
	}

	unassigned := 0
	_, polledUnassigned := feeds.Updated[cache.SourceUnassigned]
	switch {
	case polledUnassigned:
		unassigned = len(feeds.Unassigned)
	case useDemo:
		unassigned = a.demo.UnassignedChats(now)
	case decoded.HasChats:
		unassigned = decoded.Chats
	}

	open := unassigned
	if _, ok := feeds.Updated[cache.SourceOpen]; ok {
		open = len(feeds.Open)
	}

	d.Queue = queue.Health(unassigned, open, chattingAgents(agents), a.static.Capacity)
	if polledUnassigned && a.breachAfter > 0 {
		sl := queue.MeasureServiceLevel(feeds.Unassigned, now, a.breachAfter)
		d.Queue.ServiceLevel = &sl
	}
	d.Breaches = breachReport(feeds.Breached)
	d.TSECounts = feeds.Counts
	d.DailyMetrics = feeds.Daily
	d.OnCall = feeds.OnCall.OnCall
	d.Incident = rotateIncident(feeds.OnCall.Incidents, now)

	d.Sources = a.SourcesUpdated()
	d.NeedsDataSource = !useDemo && len(snap) == 0 && a.sources == nil

	return d, agents, err
}

// demoActive decides whether the synthetic source stands in for the bindings.
// It only ever does so while no real binding is held.
func (a *Aggregator) demoActive(noBindings bool) bool {
	if a.demo == nil || !noBindings {
		return false
	}
	return a.demoMode == config.DemoAuto
}

// recordChanges appends a history record for every agent whose status or
// ring changed since the last refresh, or who appeared for the first time
func (a *Aggregator) recordChanges(ctx context.Context, agents []types.ResolvedAgent, now time.Time) {
	var changes []types.StatusChangeRecord
	seen := make(map[string]bool, len(agents))

	for _, agent := range agents {
		name := agent.Person.Name
		seen[name] = true

		prev, ok := a.previous[name]
		if ok && prev.Status == agent.Status && prev.Ring == agent.Ring {
			continue
		}
		a.previous[name] = agent

		rec := types.StatusChangeRecord{
			AgentName:   name,
			ChangedAt:   now.UTC().Format(time.RFC3339),
			DateKey:     now.UTC().Format("2006-01-02"),
			Status:      string(agent.Status),
			Ring:        string(agent.Ring),
			Label:       agent.StatusLabel,
			Source:      string(agent.Source),
			HourCode:    string(agent.HourCode),
			OutOfOffice: agent.OutOfOffice,
		}
		if ok {
			rec.PrevStatus = string(prev.Status)
		}
		changes = append(changes, rec)
	}

	// agents that dropped off the schedule start fresh when they return
	for name := range a.previous {
		if !seen[name] {
			delete(a.previous, name)
		}
	}

	if len(changes) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, historyTimeout)
	defer cancel()

	m := metrics.Get()
	for _, rec := range changes {
		err := a.history.SaveStatusChange(ctx, rec)
		m.RecordHistoryWrite(err)
		if err != nil {
			a.logger.Error().
				Err(err).
				Str("agent", rec.AgentName).
				Msg("failed to save status change")
		}
	}
}

func chattingAgents(agents []types.ResolvedAgent) int {
	n := 0
	for _, a := range agents {
		if a.Status == types.StatusChat {
			n++
		}
	}
	return n
}

func breachReport(breached []types.AssignmentStatus) *types.BreachReport {
	if len(breached) == 0 {
		return nil
	}
	r := &types.BreachReport{Count: len(breached), IDs: make([]string, 0, len(breached))}
	for _, b := range breached {
		r.IDs = append(r.IDs, b.ID)
	}
	return r
}

// rotateIncident picks the incident shown at now, advancing every IncidentRotation
func rotateIncident(incidents []types.Incident, now time.Time) *types.Incident {
	if len(incidents) == 0 {
		return nil
	}
	idx := int(now.Unix()/int64(IncidentRotation/time.Second)) % len(incidents)
	inc := incidents[idx]
	return &inc
}
