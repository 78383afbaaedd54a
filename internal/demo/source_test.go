package demo

import (
	"bytes"
	"testing"
	"time"

	"github.com/dennisdiepolder/availability/internal/bindings"
	"github.com/dennisdiepolder/availability/internal/types"
	"github.com/rs/zerolog"
)

var (
	testPeople = []types.Person{
		{Name: "Salman", Timezone: "Europe/London"},
		{Name: "Nathan", Timezone: "America/New_York"},
		{Name: "Chloe", Timezone: "Australia/Sydney"},
		{Name: "Nomad", Timezone: "Antarctica/Troll"},
	}
	testCities = []types.City{
		{Name: "London", Timezone: "Europe/London", StartHourUTC: 8, EndHourUTC: 17},
		{Name: "New York", Timezone: "America/New_York", StartHourUTC: 13, EndHourUTC: 22},
		{Name: "Sydney", Timezone: "Australia/Sydney", StartHourUTC: 22, EndHourUTC: 31},
	}
)

func newTestSource(seed int64) *Source {
	layout := bindings.DefaultLayout()
	layout.ReferenceZone = "UTC"
	return NewSource(testPeople, testCities, layout, seed, zerolog.New(&bytes.Buffer{}))
}

func TestTablesDecode(t *testing.T) {
	s := newTestSource(1)
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC) // London only

	layout := bindings.DefaultLayout()
	d, err := bindings.Decode(s.Tables(now), layout, time.UTC, now)
	if err != nil {
		t.Fatalf("demo tables should decode cleanly: %v", err)
	}
	if len(d.Schedule) != len(testPeople) {
		t.Fatalf("expected a schedule row per person, got %d", len(d.Schedule))
	}

	for _, row := range d.Schedule {
		onShift := row.PersonName == "Salman"
		if onShift && !row.HourCode.Valid() {
			t.Errorf("%s should be scheduled, got %q", row.PersonName, row.HourCode)
		}
		if !onShift && row.HourCode != types.HourDone {
			t.Errorf("%s should be off shift, got %q", row.PersonName, row.HourCode)
		}
	}
}

func TestSameSeedSameSequence(t *testing.T) {
	now := time.Date(2026, 7, 1, 14, 0, 0, 0, time.UTC)
	a := newTestSource(42)
	b := newTestSource(42)

	for i := 0; i < 5; i++ {
		tick := now.Add(time.Duration(i) * JitterInterval)
		if a.Jitter(tick) != b.Jitter(tick) {
			t.Fatalf("jitter %d diverged for identical seeds", i)
		}
	}

	ta := a.Tables(now)[bindings.KindStatus].Table
	tb := b.Tables(now)[bindings.KindStatus].Table
	if ta.Rows() != tb.Rows() {
		t.Fatalf("status tables diverged: %d vs %d rows", ta.Rows(), tb.Rows())
	}
	for i := 0; i < ta.Rows(); i++ {
		if ta.Cell("status", i) != tb.Cell("status", i) {
			t.Errorf("row %d diverged: %q vs %q", i, ta.Cell("status", i), tb.Cell("status", i))
		}
	}
}

func TestJitterEventuallyChangesStatuses(t *testing.T) {
	s := newTestSource(7)
	now := time.Date(2026, 7, 1, 14, 0, 0, 0, time.UTC)

	total := 0
	for i := 0; i < 50; i++ {
		total += s.Jitter(now.Add(time.Duration(i) * JitterInterval))
	}
	if total == 0 {
		t.Error("expected some status changes over 50 jitters")
	}
}

func TestUnassignedChatsBounded(t *testing.T) {
	s := newTestSource(1)
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		n := s.UnassignedChats(start.Add(time.Duration(i) * time.Minute))
		if n < 0 || n > 6 {
			t.Fatalf("unexpected demo queue depth %d", n)
		}
	}
}
