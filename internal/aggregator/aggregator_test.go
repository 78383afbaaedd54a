package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dennisdiepolder/availability/internal/bindings"
	"github.com/dennisdiepolder/availability/internal/cache"
	"github.com/dennisdiepolder/availability/internal/config"
	"github.com/dennisdiepolder/availability/internal/demo"
	"github.com/dennisdiepolder/availability/internal/queue"
	"github.com/dennisdiepolder/availability/internal/storage"
	"github.com/dennisdiepolder/availability/internal/types"
	"github.com/rs/zerolog"
)

var testNow = time.Date(2026, 7, 1, 14, 0, 0, 0, time.UTC)

type recordingHub struct {
	snapshots []*types.Dashboard
}

func (h *recordingHub) Broadcast(d *types.Dashboard) {
	h.snapshots = append(h.snapshots, d)
}

func testStatic() config.Static {
	layout := bindings.DefaultLayout()
	layout.ReferenceZone = ""

	return config.Static{
		People: []types.Person{
			{Name: "Salman", Timezone: "Europe/London"},
			{Name: "Nathan", Timezone: "America/New_York"},
			{Name: "Ghost", Timezone: "Asia/Tokyo"},
		},
		Cities: []types.City{
			{Name: "London", Code: "LON", Timezone: "Europe/London", StartHourUTC: 8, EndHourUTC: 17},
			{Name: "New York", Code: "NYC", Timezone: "America/New_York", StartHourUTC: 13, EndHourUTC: 22},
		},
		Layout:   layout,
		Capacity: queue.DefaultCapacity(),
	}
}

func pushDefaults(store *bindings.Store) {
	store.Put(bindings.KindSchedule, bindings.Table{
		"name": {"Salman", "Nathan", "Ghost"},
		"h14":  {"Y", "Y", "Y"},
	})
	store.Put(bindings.KindStatus, bindings.Table{
		"name":   {"Nathan"},
		"status": {"Lunch 🍔"},
	})
}

func findAgent(d *types.Dashboard, name string) (types.ResolvedAgent, bool) {
	for _, z := range d.Zones {
		for _, a := range z.Agents {
			if a.Person.Name == name {
				return a, true
			}
		}
	}
	return types.ResolvedAgent{}, false
}

func TestBuildFromBindings(t *testing.T) {
	store := bindings.NewStore()
	pushDefaults(store)

	agg := NewAggregator(Options{Static: testStatic(), Bindings: store}, zerolog.New(&bytes.Buffer{}))
	d, agents, err := agg.Build(testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(agents) != 3 {
		t.Fatalf("expected 3 resolved agents, got %d", len(agents))
	}
	if len(d.Zones) != 3 || d.Zones[2].City.Code != "OTHER" {
		t.Fatalf("expected London, New York and Other zones, got %+v", d.Zones)
	}
	if d.CurrentCity != "New York" || d.IncomingCity != "London" {
		t.Errorf("unexpected cities current=%q incoming=%q", d.CurrentCity, d.IncomingCity)
	}
	if d.UTCHour != 14 {
		t.Errorf("expected utc hour 14, got %v", d.UTCHour)
	}

	salman, _ := findAgent(d, "Salman")
	if salman.Status != types.StatusChat || salman.Ring != types.RingOrange {
		t.Errorf("Salman: expected chat/orange, got %s/%s", salman.Status, salman.Ring)
	}
	nathan, _ := findAgent(d, "Nathan")
	if nathan.Status != types.StatusLunch || nathan.Ring != types.RingYellow {
		t.Errorf("Nathan: expected lunch/yellow, got %s/%s", nathan.Status, nathan.Ring)
	}

	if d.Queue.ChattingAgents != 2 || d.Queue.Capacity != 12 {
		t.Errorf("unexpected queue health %+v", d.Queue)
	}
	if d.NeedsDataSource || d.Demo {
		t.Error("bindings present, expected neither demo nor needs-data-source")
	}
	if _, ok := d.Sources["binding:schedule"]; !ok {
		t.Errorf("expected binding:schedule in sources, got %v", d.Sources)
	}
}

func TestBuildWithoutAnyInput(t *testing.T) {
	agg := NewAggregator(Options{
		Static:   testStatic(),
		Bindings: bindings.NewStore(),
		DemoMode: config.DemoOff,
	}, zerolog.New(&bytes.Buffer{}))

	d, agents, err := agg.Build(testNow)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(agents) != 0 {
		t.Errorf("expected no agents, got %d", len(agents))
	}
	if !d.NeedsDataSource {
		t.Error("expected needs-data-source with no bindings, polling or demo")
	}
	if d.Queue.RecommendedAgents != 1 {
		t.Errorf("expected baseline recommendation, got %d", d.Queue.RecommendedAgents)
	}
}

func TestDemoAutoYieldsToBindings(t *testing.T) {
	static := testStatic()
	logger := zerolog.New(&bytes.Buffer{})
	store := bindings.NewStore()

	agg := NewAggregator(Options{
		Static:   static,
		Bindings: store,
		Demo:     demo.NewSource(static.People, static.Cities, static.Layout, 1, logger),
		DemoMode: config.DemoAuto,
	}, logger)

	d, _, _ := agg.Build(testNow)
	if !d.Demo || d.NeedsDataSource {
		t.Fatalf("expected demo snapshot before any push, got demo=%v needs=%v", d.Demo, d.NeedsDataSource)
	}

	pushDefaults(store)
	d, _, _ = agg.Build(testNow)
	if d.Demo {
		t.Error("expected real bindings to replace demo data")
	}
}

func TestRealBindingsAlwaysReplaceDemo(t *testing.T) {
	static := testStatic()
	logger := zerolog.New(&bytes.Buffer{})
	store := bindings.NewStore()
	pushDefaults(store)

	agg := NewAggregator(Options{
		Static:   static,
		Bindings: store,
		Demo:     demo.NewSource(static.People, static.Cities, static.Layout, 1, logger),
		DemoMode: config.DemoAuto,
	}, logger)

	d, _, _ := agg.Build(testNow)
	if d.Demo {
		t.Fatal("demo data must not replace real bindings")
	}
	salman, ok := findAgent(d, "Salman")
	if !ok || salman.Ring != types.RingOrange {
		t.Errorf("expected Salman resolved from bindings with an orange ring, got %+v", salman)
	}

	off := NewAggregator(Options{
		Static:   static,
		Bindings: bindings.NewStore(),
		Demo:     demo.NewSource(static.People, static.Cities, static.Layout, 1, logger),
		DemoMode: config.DemoOff,
	}, logger)
	d, _, _ = off.Build(testNow)
	if d.Demo {
		t.Error("expected no demo data when demo mode is off")
	}
}

func TestBuildUsesPolledFeeds(t *testing.T) {
	store := bindings.NewStore()
	pushDefaults(store)
	sources := cache.NewSources()
	sources.SetUnassigned([]types.Conversation{
		{ID: "1", WaitingSince: testNow.Add(-2 * time.Minute).Unix()},
		{ID: "2", WaitingSince: testNow.Add(-9 * time.Minute).Unix()},
	}, testNow)
	sources.SetOpen([]types.Conversation{{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"}}, testNow)
	sources.SetOnCall(types.OnCallReport{
		OnCall:    []types.OnCallEntry{{Schedule: "primary", Name: "Kenji"}},
		Incidents: []types.Incident{{ID: "a"}, {ID: "b"}},
	}, testNow)

	agg := NewAggregator(Options{
		Static:      testStatic(),
		Bindings:    store,
		Sources:     sources,
		BreachAfter: 5 * time.Minute,
	}, zerolog.New(&bytes.Buffer{}))
	d, _, _ := agg.Build(testNow)

	if d.Queue.Unassigned != 2 || d.Queue.Open != 4 {
		t.Errorf("expected 2 unassigned of 4 open, got %+v", d.Queue)
	}
	if sl := d.Queue.ServiceLevel; sl == nil || sl.Within != 1 || sl.Percent != 50 {
		t.Errorf("expected half the queue inside the threshold, got %+v", sl)
	}
	if len(d.OnCall) != 1 || d.Incident == nil {
		t.Fatalf("expected on-call and incident, got %+v %+v", d.OnCall, d.Incident)
	}
	if _, ok := d.Sources[cache.SourceUnassigned]; !ok {
		t.Errorf("expected polled source in sources, got %v", d.Sources)
	}
}

func TestBuildReportsBreaches(t *testing.T) {
	sources := cache.NewSources()
	sources.SetUnassigned([]types.Conversation{
		{ID: "c1", WaitingSince: testNow.Add(-30 * time.Minute).Unix()},
		{ID: "c2", WaitingSince: testNow.Add(-20 * time.Minute).Unix()},
	}, testNow)
	sources.RecordAssignments([]types.AssignmentStatus{
		{ID: "c1", Assigned: false},
		{ID: "c2", Assigned: true},
	}, testNow)

	agg := NewAggregator(Options{
		Static:      testStatic(),
		Bindings:    bindings.NewStore(),
		Sources:     sources,
		BreachAfter: 5 * time.Minute,
	}, zerolog.New(&bytes.Buffer{}))
	d, _, _ := agg.Build(testNow)

	if d.Breaches == nil || d.Breaches.Count != 1 || len(d.Breaches.IDs) != 1 || d.Breaches.IDs[0] != "c1" {
		t.Fatalf("expected breach c1 in snapshot, got %+v", d.Breaches)
	}

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"breaches":{"count":1,"ids":["c1"]}`) {
		t.Errorf("breaches missing from snapshot JSON: %s", data)
	}

	// once the conversation leaves the unassigned list it is no longer reported
	sources.SetUnassigned(nil, testNow.Add(time.Minute))
	d, _, _ = agg.Build(testNow.Add(time.Minute))
	if d.Breaches != nil {
		t.Errorf("expected no breaches, got %+v", d.Breaches)
	}
}

func TestRotateIncident(t *testing.T) {
	incidents := []types.Incident{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	base := time.Unix(1_800_000_000, 0) // divisible by 10

	if got := rotateIncident(incidents, base); got.ID != "a" {
		t.Errorf("expected a, got %s", got.ID)
	}
	if got := rotateIncident(incidents, base.Add(9*time.Second)); got.ID != "a" {
		t.Errorf("expected a within the same slot, got %s", got.ID)
	}
	if got := rotateIncident(incidents, base.Add(10*time.Second)); got.ID != "b" {
		t.Errorf("expected b, got %s", got.ID)
	}
	if got := rotateIncident(incidents, base.Add(30*time.Second)); got.ID != "a" {
		t.Errorf("expected wrap to a, got %s", got.ID)
	}
	if rotateIncident(nil, base) != nil {
		t.Error("expected nil with no incidents")
	}
}

func TestRefreshRecordsStatusChanges(t *testing.T) {
	ctx := context.Background()
	store := bindings.NewStore()
	pushDefaults(store)
	history := storage.NewMemoryStore()
	hub := &recordingHub{}

	agg := NewAggregator(Options{
		Static:   testStatic(),
		Bindings: store,
		History:  history,
		Hub:      hub,
	}, zerolog.New(&bytes.Buffer{}))

	agg.Refresh(ctx, testNow)
	agg.Refresh(ctx, testNow.Add(time.Second))

	records, err := history.GetStatusHistory(ctx, "Nathan", "2026-07-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one record for an unchanged agent, got %d", len(records))
	}

	// Nathan's live status clears, so the schedule decides again
	store.Put(bindings.KindStatus, bindings.Table{"name": {}, "status": {}})
	agg.Refresh(ctx, testNow.Add(2*time.Second))

	records, _ = history.GetStatusHistory(ctx, "Nathan", "2026-07-01")
	if len(records) != 2 {
		t.Fatalf("expected a second record after the change, got %d", len(records))
	}
	last := records[len(records)-1]
	if last.PrevStatus != string(types.StatusLunch) || last.Status != string(types.StatusChat) {
		t.Errorf("expected lunch -> chat, got %s -> %s", last.PrevStatus, last.Status)
	}

	if len(hub.snapshots) != 3 {
		t.Errorf("expected 3 broadcasts, got %d", len(hub.snapshots))
	}
	if agg.Latest() != hub.snapshots[2] {
		t.Error("expected Latest to return the last broadcast snapshot")
	}
}
