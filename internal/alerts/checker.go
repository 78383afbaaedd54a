package alerts

import (
	"fmt"
	"sync"
	"time"

	"github.com/dennisdiepolder/availability/internal/types"
)

const (
	lunchLimit       = 60 * time.Minute
	unconfirmedLimit = 15 * time.Minute
)

type mark struct {
	status      types.AgentStatus
	ring        types.RingColor
	statusSince time.Time
	ringSince   time.Time
}

// Checker evaluates alert rules across refreshes. It remembers when each
// agent entered their current status and ring so sources without a
// minutes-in-status value can still trip duration rules.
type Checker struct {
	marks map[string]mark
	mu    sync.Mutex
}

// NewChecker creates a new alert checker
func NewChecker() *Checker {
	return &Checker{
		marks: make(map[string]mark),
	}
}

// CheckAgentAlerts evaluates alert rules for a slice of agents,
// mutating each agent's Alerts field in place.
func (c *Checker) CheckAgentAlerts(agents []types.ResolvedAgent, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(agents))
	for i := range agents {
		a := &agents[i]
		a.Alerts = nil
		seen[a.Person.Name] = true

		m, ok := c.marks[a.Person.Name]
		if !ok {
			m = mark{status: a.Status, ring: a.Ring, statusSince: now, ringSince: now}
		}
		if m.status != a.Status {
			m.status, m.statusSince = a.Status, now
		}
		if m.ring != a.Ring {
			m.ring, m.ringSince = a.Ring, now
		}
		c.marks[a.Person.Name] = m

		inStatus := now.Sub(m.statusSince)
		if live := time.Duration(a.MinutesInStatus) * time.Minute; live > inStatus {
			inStatus = live
		}

		if a.Status == types.StatusLunch && inStatus > lunchLimit {
			a.Alerts = append(a.Alerts, types.AgentAlert{
				Rule:     "lunch_long",
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("On a break for %s", formatDuration(inStatus)),
			})
		}

		switch a.Ring {
		case types.RingRed:
			a.Alerts = append(a.Alerts, types.AgentAlert{
				Rule:     "off_chat",
				Severity: types.SeverityCritical,
				Message:  "Scheduled for chat but off chat",
			})
		case types.RingOrange:
			if dur := now.Sub(m.ringSince); dur > unconfirmedLimit {
				a.Alerts = append(a.Alerts, types.AgentAlert{
					Rule:     "unconfirmed_long",
					Severity: types.SeverityWarning,
					Message:  fmt.Sprintf("No live status for %s", formatDuration(dur)),
				})
			}
		}
	}

	// agents who dropped off the schedule start fresh when they return
	for name := range c.marks {
		if !seen[name] {
			delete(c.marks, name)
		}
	}
}

func formatDuration(d time.Duration) string {
	mins := int(d.Minutes())
	if mins >= 60 {
		return fmt.Sprintf("%dh%dm", mins/60, mins%60)
	}
	return fmt.Sprintf("%dm", mins)
}
