// Package demo generates plausible schedule and status tables so the
// dashboard has something to show before the host pushes real data.
package demo

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/dennisdiepolder/availability/internal/bindings"
	"github.com/dennisdiepolder/availability/internal/region"
	"github.com/dennisdiepolder/availability/internal/types"
	"github.com/rs/zerolog"
)

// JitterInterval is how often demo statuses change
const JitterInterval = 10 * time.Second

// live status texts the demo cycles through; "" means no live status
const (
	textAvailable = "Available"
	textBreak     = "On a break ☕"
	textLunch     = "Lunch 🍔"
	textZoom      = "On Zoom 🖥️"
	textOffChat   = "Off chat"
	textNone      = ""
)

type agentState struct {
	code  types.HourCode
	text  string
	since time.Time
}

// Source is a synthetic stand-in for the host bindings
type Source struct {
	people []types.Person
	cities []types.City
	layout bindings.Layout
	loc    *time.Location
	rng    *rand.Rand
	states map[string]*agentState
	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewSource creates a demo source. The same seed yields the same sequence.
func NewSource(people []types.Person, cities []types.City, layout bindings.Layout, seed int64, logger zerolog.Logger) *Source {
	loc, err := layout.Location()
	if err != nil {
		loc = time.UTC
	}

	s := &Source{
		people: people,
		cities: cities,
		layout: layout,
		loc:    loc,
		rng:    rand.New(rand.NewSource(seed)),
		states: make(map[string]*agentState, len(people)),
		logger: logger.With().Str("component", "demo").Logger(),
	}

	now := time.Now()
	for _, p := range people {
		s.states[p.Name] = &agentState{
			code:  s.initialCode(),
			text:  s.initialText(),
			since: now.Add(-time.Duration(s.rng.Intn(40)) * time.Minute),
		}
	}
	return s
}

// Start jitters statuses until ctx is cancelled
func (s *Source) Start(ctx context.Context) {
	ticker := time.NewTicker(JitterInterval)
	defer ticker.Stop()

	s.logger.Info().Int("agents", len(s.people)).Msg("demo source started")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("demo source stopped")
			return
		case now := <-ticker.C:
			changed := s.Jitter(now)
			s.logger.Debug().Int("changed", changed).Msg("demo statuses jittered")
		}
	}
}

// Jitter moves some agents to a new status and returns how many changed
func (s *Source) Jitter(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for _, p := range s.people {
		st := s.states[p.Name]
		if s.rng.Float64() >= 0.25 {
			continue
		}
		next := s.nextText(st.text)
		if next == st.text {
			continue
		}
		st.text = next
		st.since = now
		changed++
	}
	return changed
}

// Tables returns the schedule and status tables for now, laid out with the
// configured column ids
func (s *Source) Tables(now time.Time) map[bindings.Kind]bindings.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sl := s.layout.Schedule
	hourCol := sl.HourColumn(s.loc, now)
	utc := region.UTCHour(now)

	schedule := bindings.Table{sl.Name: {}, hourCol: {}}
	if sl.OOO != "" {
		schedule[sl.OOO] = []any{}
	}
	status := bindings.Table{s.layout.Status.Name: {}, s.layout.Status.Status: {}}
	if s.layout.Status.Minutes != "" {
		status[s.layout.Status.Minutes] = []any{}
	}

	for _, p := range s.people {
		st := s.states[p.Name]
		code := types.HourDone
		if s.onShift(p, utc) {
			code = st.code
		}

		schedule[sl.Name] = append(schedule[sl.Name], p.Name)
		schedule[hourCol] = append(schedule[hourCol], string(code))
		if sl.OOO != "" {
			schedule[sl.OOO] = append(schedule[sl.OOO], false)
		}

		if st.text == textNone {
			continue
		}
		status[s.layout.Status.Name] = append(status[s.layout.Status.Name], p.Name)
		status[s.layout.Status.Status] = append(status[s.layout.Status.Status], st.text)
		if s.layout.Status.Minutes != "" {
			mins := int(now.Sub(st.since).Minutes())
			status[s.layout.Status.Minutes] = append(status[s.layout.Status.Minutes], float64(mins))
		}
	}

	return map[bindings.Kind]bindings.Entry{
		bindings.KindSchedule: {Table: schedule, ReceivedAt: now},
		bindings.KindStatus:   {Table: status, ReceivedAt: now},
	}
}

// UnassignedChats returns a demo queue depth that drifts with the clock
func (s *Source) UnassignedChats(now time.Time) int {
	// 0..6, stepping once a minute
	return int(now.Unix()/60) % 7
}

func (s *Source) onShift(p types.Person, utc float64) bool {
	for _, c := range s.cities {
		if c.Timezone == p.Timezone {
			return region.Active(c, utc)
		}
	}
	return false
}

func (s *Source) initialCode() types.HourCode {
	roll := s.rng.Float64()
	switch {
	case roll < 0.7:
		return types.HourChat
	case roll < 0.8:
		return types.HourFocus
	case roll < 0.9:
		return types.HourLunch
	}
	return types.HourClosing
}

func (s *Source) initialText() string {
	roll := s.rng.Float64()
	switch {
	case roll < 0.6:
		return textAvailable
	case roll < 0.75:
		return textBreak
	case roll < 0.85:
		return textZoom
	}
	return textNone
}

// nextText determines the next live status based on the current one
func (s *Source) nextText(current string) string {
	roll := s.rng.Float64()

	switch current {
	case textAvailable:
		if roll < 0.5 {
			return textBreak
		} else if roll < 0.75 {
			return textZoom
		} else if roll < 0.9 {
			return textLunch
		}
		return textOffChat

	case textBreak, textLunch, textZoom:
		if roll < 0.85 {
			return textAvailable
		}
		return textNone

	case textOffChat:
		if roll < 0.6 {
			return textAvailable
		}
		return textOffChat
	}

	return textAvailable
}
