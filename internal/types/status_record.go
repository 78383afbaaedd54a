package types

// StatusChangeRecord is one status transition persisted to the history table
type StatusChangeRecord struct {
	AgentName   string `json:"agentName" dynamodbav:"AgentName"` // partition key
	ChangedAt   string `json:"changedAt" dynamodbav:"ChangedAt"` // RFC3339 (sort key)
	DateKey     string `json:"dateKey" dynamodbav:"DateKey"`     // YYYY-MM-DD
	Status      string `json:"status" dynamodbav:"Status"`
	PrevStatus  string `json:"prevStatus,omitempty" dynamodbav:"PrevStatus"`
	Ring        string `json:"ringColor" dynamodbav:"Ring"`
	Label       string `json:"label" dynamodbav:"Label"`
	Source      string `json:"source" dynamodbav:"Source"`
	HourCode    string `json:"hourCode" dynamodbav:"HourCode"`
	OutOfOffice bool   `json:"outOfOffice" dynamodbav:"OutOfOffice"`
}
