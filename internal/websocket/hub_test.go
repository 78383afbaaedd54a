package websocket

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/dennisdiepolder/availability/internal/auth"
	"github.com/dennisdiepolder/availability/internal/types"
	"github.com/rs/zerolog"
)

func testDashboard() *types.Dashboard {
	lon := []types.ResolvedAgent{
		{Person: types.Person{Name: "Salman"}, Status: types.StatusChat, Ring: types.RingGreen},
		{Person: types.Person{Name: "Priya"}, Status: types.StatusLunch, Ring: types.RingYellow},
	}
	nyc := []types.ResolvedAgent{
		{Person: types.Person{Name: "Nathan"}, Status: types.StatusChat, Ring: types.RingOrange},
	}
	all := append(append([]types.ResolvedAgent{}, lon...), nyc...)

	return &types.Dashboard{
		Type:        "snapshot",
		Timestamp:   time.Date(2026, 7, 1, 14, 0, 0, 0, time.UTC),
		CurrentCity: "New York",
		Zones: []types.Zone{
			{City: types.City{Name: "London", Code: "LON"}, Agents: lon, Summary: types.Summarize(lon)},
			{City: types.City{Name: "New York", Code: "NYC"}, Agents: nyc, Summary: types.Summarize(nyc)},
		},
		Summary: types.Summarize(all),
	}
}

func TestNewHub(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	hub := NewHub(logger)

	if hub == nil {
		t.Fatal("expected hub to be created")
	}
	if hub.clients == nil {
		t.Error("expected clients map to be initialized")
	}
	if hub.broadcast == nil {
		t.Error("expected broadcast channel to be initialized")
	}
	if hub.register == nil {
		t.Error("expected register channel to be initialized")
	}
	if hub.unregister == nil {
		t.Error("expected unregister channel to be initialized")
	}
}

func TestHubClientCount(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	hub := NewHub(logger)

	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.ClientCount())
	}

	// Simulate adding clients
	hub.mu.Lock()
	hub.clients[&Client{id: "test1"}] = true
	hub.clients[&Client{id: "test2"}] = true
	hub.mu.Unlock()

	if hub.ClientCount() != 2 {
		t.Errorf("expected 2 clients, got %d", hub.ClientCount())
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	hub := NewHub(logger)
	go hub.Run()

	client := &Client{
		id:   "test-client",
		hub:  hub,
		send: make(chan []byte, 1),
	}

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 1 {
		t.Errorf("expected 1 client after register, got %d", hub.ClientCount())
	}

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	if hub.ClientCount() != 0 {
		t.Errorf("expected 0 clients after unregister, got %d", hub.ClientCount())
	}
}

func receive(t *testing.T, c *Client) types.Dashboard {
	t.Helper()
	select {
	case msg := <-c.send:
		var d types.Dashboard
		if err := json.Unmarshal(msg, &d); err != nil {
			t.Fatalf("%s received invalid JSON: %v", c.id, err)
		}
		return d
	case <-time.After(200 * time.Millisecond):
		t.Fatalf("%s did not receive a snapshot", c.id)
	}
	return types.Dashboard{}
}

func TestHubBroadcastFiltersZones(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	hub := NewHub(logger)
	go hub.Run()

	admin := &Client{id: "admin", hub: hub, send: make(chan []byte, 4)}
	london := &Client{
		id:     "london-lead",
		hub:    hub,
		send:   make(chan []byte, 4),
		claims: &auth.Claims{Role: "lead", AllowedZones: []string{"LON"}},
	}

	hub.register <- admin
	hub.register <- london
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(testDashboard())

	full := receive(t, admin)
	if len(full.Zones) != 2 || full.Summary.TotalAgents != 3 {
		t.Errorf("admin expected full snapshot, got %d zones %d agents", len(full.Zones), full.Summary.TotalAgents)
	}

	lon := receive(t, london)
	if len(lon.Zones) != 1 || lon.Zones[0].City.Code != "LON" {
		t.Fatalf("expected only London zone, got %+v", lon.Zones)
	}
	if lon.Summary.TotalAgents != 2 || lon.Summary.StatusBreakdown[types.StatusLunch] != 1 {
		t.Errorf("expected summary recounted over London, got %+v", lon.Summary)
	}
	if lon.CurrentCity != "New York" {
		t.Errorf("shared timeline fields should survive filtering, got %q", lon.CurrentCity)
	}
}

func TestHubSendsLatestSnapshotOnConnect(t *testing.T) {
	logger := zerolog.New(&bytes.Buffer{})
	hub := NewHub(logger)
	go hub.Run()

	hub.Broadcast(testDashboard())
	time.Sleep(10 * time.Millisecond)

	late := &Client{id: "late", hub: hub, send: make(chan []byte, 4)}
	hub.register <- late

	d := receive(t, late)
	if d.Type != "snapshot" || len(d.Zones) != 2 {
		t.Errorf("expected the cached snapshot, got %+v", d)
	}
}

func TestFilterDashboardDoesNotMutateInput(t *testing.T) {
	d := testDashboard()
	c := &Client{claims: &auth.Claims{AllowedZones: []string{"NYC"}}}

	out := c.FilterDashboard(d)
	if len(out.Zones) != 1 || len(d.Zones) != 2 {
		t.Errorf("expected filtered copy, got %d zones (input %d)", len(out.Zones), len(d.Zones))
	}
	if d.Summary.TotalAgents != 3 {
		t.Error("input summary was modified")
	}
}
