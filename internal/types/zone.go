package types

// City is a statically configured region with a UTC shift window.
// EndHourUTC may exceed 24 when the window crosses midnight UTC.
type City struct {
	Name         string  `json:"name" yaml:"name"`
	Code         string  `json:"code" yaml:"code"`
	Timezone     string  `json:"timezone" yaml:"timezone"`
	StartHourUTC float64 `json:"startHourUtc" yaml:"start"`
	EndHourUTC   float64 `json:"endHourUtc" yaml:"end"`
}

// Zone groups resolved agents under one city
type Zone struct {
	City     City            `json:"city"`
	Active   bool            `json:"active"`
	Current  bool            `json:"current,omitempty"`
	Incoming bool            `json:"incoming,omitempty"`
	Agents   []ResolvedAgent `json:"agents"`
	Summary  Summary         `json:"summary"`
}

// HandoffBand is the overlap between two city windows
type HandoffBand struct {
	From         string  `json:"from"`
	To           string  `json:"to"`
	StartHourUTC float64 `json:"startHourUtc"`
	EndHourUTC   float64 `json:"endHourUtc"`
}

// QueueHealth describes chat-queue load against current chat capacity
type QueueHealth struct {
	Unassigned        int     `json:"unassigned"`
	Open              int     `json:"open"`
	ChattingAgents    int     `json:"chattingAgents"`
	Capacity          int     `json:"capacity"`
	UtilizationPct    float64 `json:"utilizationPct"`
	RecommendedAgents int     `json:"recommendedAgents"`
	Intensity         int     `json:"intensity"`
	Hue               float64 `json:"hue"`

	// only set when the unassigned list is polled with wait times
	ServiceLevel *ServiceLevel `json:"serviceLevel,omitempty"`
}

// BreachReport lists conversations the assignment-status check confirmed are
// still unassigned after the breach threshold
type BreachReport struct {
	Count int      `json:"count"`
	IDs   []string `json:"ids"`
}

// ServiceLevel is the share of waiting conversations still inside the breach threshold
type ServiceLevel struct {
	ThresholdSecs int     `json:"thresholdSecs"`
	Within        int     `json:"within"`
	Total         int     `json:"total"`
	Percent       float64 `json:"percent"`
}
