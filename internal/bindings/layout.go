package bindings

import (
	"fmt"
	"time"
)

// ScheduleLayout names the schedule table's columns. The hour column for the
// current hour is HourColumns[hour] when all 24 are listed, otherwise
// HourPrefix followed by the two-digit hour.
type ScheduleLayout struct {
	Name        string   `yaml:"name"`
	OOO         string   `yaml:"ooo"`
	HourPrefix  string   `yaml:"hourPrefix"`
	HourColumns []string `yaml:"hourColumns"`
}

// StatusLayout names the live status table's columns
type StatusLayout struct {
	Name    string `yaml:"name"`
	Status  string `yaml:"status"`
	Minutes string `yaml:"minutes"`
}

// OOOLayout names the out-of-office table's columns
type OOOLayout struct {
	Name string `yaml:"name"`
}

// ChatsLayout names the chats trigger table's column. An empty Column counts
// every row.
type ChatsLayout struct {
	Column string `yaml:"column"`
}

// Layout is the column configuration for every binding
type Layout struct {
	ReferenceZone string         `yaml:"referenceZone"`
	Schedule      ScheduleLayout `yaml:"schedule"`
	Legacy        ScheduleLayout `yaml:"legacy"`
	Status        StatusLayout   `yaml:"status"`
	OOO           OOOLayout      `yaml:"ooo"`
	Chats         ChatsLayout    `yaml:"chats"`
}

// DefaultLayout matches the column ids the widget's config panel suggests
func DefaultLayout() Layout {
	return Layout{
		ReferenceZone: "America/Los_Angeles",
		Schedule:      ScheduleLayout{Name: "name", OOO: "ooo", HourPrefix: "h"},
		Legacy:        ScheduleLayout{Name: "TSE", HourPrefix: "hour_"},
		Status:        StatusLayout{Name: "name", Status: "status", Minutes: "minutes"},
		OOO:           OOOLayout{Name: "name"},
	}
}

// Location loads the reference zone, falling back to UTC
func (l Layout) Location() (*time.Location, error) {
	if l.ReferenceZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(l.ReferenceZone)
	if err != nil {
		return time.UTC, fmt.Errorf("load reference zone %q: %w", l.ReferenceZone, err)
	}
	return loc, nil
}

// HourColumn returns the column id holding the hour code for now
func (s ScheduleLayout) HourColumn(loc *time.Location, now time.Time) string {
	hour := now.In(loc).Hour()
	if len(s.HourColumns) == 24 {
		return s.HourColumns[hour]
	}
	if s.HourPrefix == "" {
		return ""
	}
	return fmt.Sprintf("%s%02d", s.HourPrefix, hour)
}
