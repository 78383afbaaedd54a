// Package poller refreshes the external feeds on fixed intervals.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/dennisdiepolder/availability/internal/cache"
	"github.com/dennisdiepolder/availability/internal/config"
	"github.com/dennisdiepolder/availability/internal/metrics"
	"github.com/dennisdiepolder/availability/internal/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// API is the subset of the operations client the poller needs
type API interface {
	UnassignedConversations(ctx context.Context) ([]types.Conversation, error)
	OpenTeamConversations(ctx context.Context) ([]types.Conversation, error)
	AssignmentStatus(ctx context.Context, ids []string) ([]types.AssignmentStatus, error)
	TSECounts(ctx context.Context) ([]types.TSECount, error)
	DailyMetrics(ctx context.Context) (types.DailyMetrics, error)
	OnCall(ctx context.Context) (types.OnCallReport, error)
}

// Poller runs one loop per feed. Failures are logged and the cached value
// is left alone; there are no retries beyond the next tick.
type Poller struct {
	api         API
	sources     *cache.Sources
	intervals   config.PollIntervals
	breachAfter time.Duration
	logger      zerolog.Logger
	now         func() time.Time

	checked map[string]bool
	mu      sync.Mutex
}

// NewPoller creates a new Poller
func NewPoller(api API, sources *cache.Sources, intervals config.PollIntervals, breachAfter time.Duration, logger zerolog.Logger) *Poller {
	return &Poller{
		api:         api,
		sources:     sources,
		intervals:   intervals,
		breachAfter: breachAfter,
		logger:      logger.With().Str("component", "poller").Logger(),
		now:         time.Now,
		checked:     make(map[string]bool),
	}
}

// Start runs every loop until ctx is cancelled
func (p *Poller) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	p.logger.Info().
		Dur("conversations", p.intervals.Conversations).
		Dur("counts", p.intervals.Counts).
		Dur("metrics", p.intervals.Metrics).
		Dur("on_call", p.intervals.OnCall).
		Dur("breach", p.intervals.Breach).
		Msg("poller started")

	g.Go(p.loop(ctx, cache.SourceUnassigned, p.intervals.Conversations, p.pollUnassigned))
	g.Go(p.loop(ctx, cache.SourceOpen, p.intervals.Conversations, p.pollOpen))
	g.Go(p.loop(ctx, cache.SourceCounts, p.intervals.Counts, p.pollCounts))
	g.Go(p.loop(ctx, cache.SourceMetrics, p.intervals.Metrics, p.pollDailyMetrics))
	g.Go(p.loop(ctx, cache.SourceOnCall, p.intervals.OnCall, p.pollOnCall))
	g.Go(p.loop(ctx, cache.SourceBreach, p.intervals.Breach, p.checkBreaches))

	err := g.Wait()
	p.logger.Info().Msg("poller stopped")
	return err
}

// loop polls once immediately, then on every tick
func (p *Poller) loop(ctx context.Context, source string, interval time.Duration, poll func(context.Context) error) func() error {
	return func() error {
		if interval <= 0 {
			p.logger.Warn().Str("source", source).Msg("polling disabled, interval not set")
			return nil
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			p.runOnce(ctx, source, poll)

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
	}
}

func (p *Poller) runOnce(ctx context.Context, source string, poll func(context.Context) error) {
	err := poll(ctx)
	if ctx.Err() != nil {
		return
	}
	metrics.Get().RecordPoll(source, err)
	if err != nil {
		p.logger.Warn().Err(err).Str("source", source).Msg("poll failed, keeping previous value")
		return
	}
	p.logger.Debug().Str("source", source).Msg("poll completed")
}

func (p *Poller) pollUnassigned(ctx context.Context) error {
	convs, err := p.api.UnassignedConversations(ctx)
	if err != nil {
		return err
	}
	p.sources.SetUnassigned(convs, p.now())
	return nil
}

func (p *Poller) pollOpen(ctx context.Context) error {
	convs, err := p.api.OpenTeamConversations(ctx)
	if err != nil {
		return err
	}
	p.sources.SetOpen(convs, p.now())
	return nil
}

func (p *Poller) pollCounts(ctx context.Context) error {
	counts, err := p.api.TSECounts(ctx)
	if err != nil {
		return err
	}
	p.sources.SetCounts(counts, p.now())
	return nil
}

func (p *Poller) pollDailyMetrics(ctx context.Context) error {
	m, err := p.api.DailyMetrics(ctx)
	if err != nil {
		return err
	}
	p.sources.SetDailyMetrics(m, p.now())
	return nil
}

func (p *Poller) pollOnCall(ctx context.Context) error {
	r, err := p.api.OnCall(ctx)
	if err != nil {
		return err
	}
	p.sources.SetOnCall(r, p.now())
	return nil
}

// checkBreaches sends conversations waiting longer than breachAfter to the
// assignment-status endpoint. Each id is sent at most once while it stays in
// the unassigned list.
func (p *Poller) checkBreaches(ctx context.Context) error {
	now := p.now()
	unassigned := p.sources.Unassigned()

	p.mu.Lock()
	present := make(map[string]bool, len(unassigned))
	var ids []string
	for _, c := range unassigned {
		present[c.ID] = true
		if c.ID == "" || p.checked[c.ID] || c.WaitingFor(now) < p.breachAfter {
			continue
		}
		p.checked[c.ID] = true
		ids = append(ids, c.ID)
	}
	for id := range p.checked {
		if !present[id] {
			delete(p.checked, id)
		}
	}
	p.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}

	statuses, err := p.api.AssignmentStatus(ctx, ids)
	if err != nil {
		return err
	}
	metrics.Get().RecordBreachChecks(len(ids))
	p.sources.RecordAssignments(statuses, now)

	p.logger.Info().Int("checked", len(ids)).Int("answers", len(statuses)).Msg("breach check completed")
	return nil
}
