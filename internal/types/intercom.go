package types

import "time"

// Conversation is a chat conversation as reported by the conversations API.
// Every field is optional on the wire.
type Conversation struct {
	ID            string    `json:"id"`
	State         string    `json:"state,omitempty"`
	AdminAssignee string    `json:"adminAssigneeName,omitempty"`
	TeamAssignee  string    `json:"teamAssigneeId,omitempty"`
	CreatedAt     int64     `json:"createdAt,omitempty"` // unix seconds
	WaitingSince  int64     `json:"waitingSince,omitempty"`
	Subject       string    `json:"subject,omitempty"`
	FetchedAt     time.Time `json:"-"`
}

// WaitingFor returns how long the conversation has been waiting at now
func (c Conversation) WaitingFor(now time.Time) time.Duration {
	since := c.WaitingSince
	if since == 0 {
		since = c.CreatedAt
	}
	if since == 0 {
		return 0
	}
	d := now.Sub(time.Unix(since, 0))
	if d < 0 {
		return 0
	}
	return d
}

// AssignmentStatus is the answer for one conversation from the assignment-status endpoint
type AssignmentStatus struct {
	ID       string `json:"id"`
	Assigned bool   `json:"assigned"`
	Assignee string `json:"assignee,omitempty"`
}

// TSECount is the per-engineer conversation count
type TSECount struct {
	Name    string `json:"name"`
	Open    int    `json:"open"`
	Snoozed int    `json:"snoozed,omitempty"`
	Closed  int    `json:"closed,omitempty"`
}

// DailyMetrics is the day's aggregated conversation metrics
type DailyMetrics struct {
	Date                string  `json:"date,omitempty"`
	NewConversations    int     `json:"newConversations"`
	ClosedConversations int     `json:"closedConversations"`
	MedianFirstResponse float64 `json:"medianFirstResponseSeconds,omitempty"`
	MedianTimeToClose   float64 `json:"medianTimeToCloseSeconds,omitempty"`
}

// OnCallEntry is one on-call rotation slot
type OnCallEntry struct {
	Schedule string `json:"schedule"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Until    string `json:"until,omitempty"`
}

// Incident is an open incident shown in the rotating banner
type Incident struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Severity string `json:"severity,omitempty"`
	Status   string `json:"status,omitempty"`
	URL      string `json:"url,omitempty"`
}

// OnCallReport is the full payload of the on-call endpoint
type OnCallReport struct {
	OnCall    []OnCallEntry `json:"onCall"`
	Incidents []Incident    `json:"incidents"`
}
