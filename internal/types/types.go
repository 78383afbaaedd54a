package types

import (
	"strings"
	"time"
)

// AgentStatus is the single resolved status shown for an agent
type AgentStatus string

const (
	StatusAway    AgentStatus = "away"
	StatusCall    AgentStatus = "call"
	StatusLunch   AgentStatus = "lunch"
	StatusChat    AgentStatus = "chat"
	StatusClosing AgentStatus = "closing"
)

// AllStatuses lists every status in display order
var AllStatuses = []AgentStatus{
	StatusChat,
	StatusClosing,
	StatusCall,
	StatusLunch,
	StatusAway,
}

// RingColor classifies how an agent's reality lines up with their schedule
type RingColor string

const (
	RingGreen  RingColor = "green"  // on chat as scheduled
	RingYellow RingColor = "yellow" // on a break but scheduled for chat
	RingRed    RingColor = "red"    // off chat but scheduled for chat
	RingOrange RingColor = "orange" // scheduled, no live status to confirm
	RingPurple RingColor = "purple" // not scheduled for chat
	RingZoom   RingColor = "zoom"   // on a call
)

// AllRingColors lists every ring colour
var AllRingColors = []RingColor{
	RingGreen,
	RingYellow,
	RingRed,
	RingOrange,
	RingPurple,
	RingZoom,
}

// HourCode is the single-letter schedule marker for one hour bucket
type HourCode string

const (
	HourChat    HourCode = "Y"
	HourClosing HourCode = "N"
	HourFocus   HourCode = "F"
	HourLunch   HourCode = "L"
	HourDone    HourCode = "X"
	HourNone    HourCode = ""
)

// ParseHourCode normalises a raw schedule cell into an hour code
func ParseHourCode(raw string) HourCode {
	return HourCode(strings.ToUpper(strings.TrimSpace(raw)))
}

// Valid reports whether the person is on the schedule for this hour at all
func (c HourCode) Valid() bool {
	return c != HourNone && c != HourDone
}

// StatusSource records which input decided an agent's status
type StatusSource string

const (
	SourceLive     StatusSource = "live"
	SourceOOO      StatusSource = "ooo"
	SourceSchedule StatusSource = "schedule"
)

// Person is a static roster entry
type Person struct {
	Name      string `json:"name" yaml:"name"`
	Timezone  string `json:"timezone" yaml:"timezone"`
	AvatarRef string `json:"avatarRef,omitempty" yaml:"avatar"`
}

// ScheduleRow is one person's schedule for the current hour bucket
type ScheduleRow struct {
	PersonName  string   `json:"personName"`
	HourCode    HourCode `json:"hourCode"`
	OutOfOffice bool     `json:"outOfOffice"`
}

// LiveStatusRow is a free-text status reported by the chat system
type LiveStatusRow struct {
	PersonName      string `json:"personName"`
	RawStatusText   string `json:"rawStatusText"`
	MinutesInStatus int    `json:"minutesInStatus"`
}

// AlertSeverity represents the severity of an agent alert
type AlertSeverity string

const (
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

// AllSeverities lists alert severities in display order
var AllSeverities = []AlertSeverity{SeverityWarning, SeverityCritical}

// AgentAlert represents an alert condition for an agent
type AgentAlert struct {
	Rule     string        `json:"rule"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// ResolvedAgent is the reconciled view of one scheduled person for one refresh
type ResolvedAgent struct {
	Person          Person       `json:"person"`
	Status          AgentStatus  `json:"status"`
	Ring            RingColor    `json:"ringColor"`
	StatusLabel     string       `json:"statusLabel"`
	StatusEmoji     string       `json:"statusEmoji"`
	MinutesInStatus int          `json:"minutesInStatus"`
	HourCode        HourCode     `json:"hourCode"`
	OutOfOffice     bool         `json:"outOfOffice"`
	Source          StatusSource `json:"source"`
	Alerts          []AgentAlert `json:"alerts,omitempty"`
}

// Summary contains aggregated counts over a set of agents
type Summary struct {
	TotalAgents     int                 `json:"totalAgents"`
	StatusBreakdown map[AgentStatus]int `json:"statusBreakdown"`
	RingBreakdown   map[RingColor]int   `json:"ringBreakdown"`

	// agents carrying at least one alert of each severity
	AlertBreakdown map[AlertSeverity]int `json:"alertBreakdown"`
}

// Summarize counts agents by status and ring colour
func Summarize(agents []ResolvedAgent) Summary {
	s := Summary{
		TotalAgents:     len(agents),
		StatusBreakdown: make(map[AgentStatus]int),
		RingBreakdown:   make(map[RingColor]int),
		AlertBreakdown:  make(map[AlertSeverity]int),
	}
	for _, a := range agents {
		s.StatusBreakdown[a.Status]++
		s.RingBreakdown[a.Ring]++

		seen := make(map[AlertSeverity]bool, len(a.Alerts))
		for _, al := range a.Alerts {
			if !seen[al.Severity] {
				seen[al.Severity] = true
				s.AlertBreakdown[al.Severity]++
			}
		}
	}
	return s
}

// Dashboard is the single payload pushed to the browser every tick
type Dashboard struct {
	Type            string               `json:"type"` // always "snapshot"
	Timestamp       time.Time            `json:"timestamp"`
	UTCHour         float64              `json:"utcHour"`
	CursorPercent   float64              `json:"cursorPercent"`
	CurrentCity     string               `json:"currentCity,omitempty"`
	IncomingCity    string               `json:"incomingCity,omitempty"`
	Zones           []Zone               `json:"zones"`
	Handoffs        []HandoffBand        `json:"handoffs,omitempty"`
	Summary         Summary              `json:"summary"`
	Queue           QueueHealth          `json:"queue"`
	TSECounts       []TSECount           `json:"tseCounts,omitempty"`
	DailyMetrics    *DailyMetrics        `json:"dailyMetrics,omitempty"`
	OnCall          []OnCallEntry        `json:"onCall,omitempty"`
	Incident        *Incident            `json:"incident,omitempty"`
	Breaches        *BreachReport        `json:"breaches,omitempty"`
	Sources         map[string]time.Time `json:"sources,omitempty"` // last updated per source
	NeedsDataSource bool                 `json:"needsDataSource,omitempty"`
	Demo            bool                 `json:"demo,omitempty"`
}
