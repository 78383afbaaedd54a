package region

import (
	"sort"
	"strings"

	"github.com/dennisdiepolder/availability/internal/types"
)

// OtherCity collects agents whose timezone matches no configured city
var OtherCity = types.City{Name: "Other", Code: "OTHER"}

// Group places resolved agents into one zone per configured city, matching on
// timezone. Zones keep the configured city order; agents whose timezone fits
// no city land in a trailing "Other" zone that is never active.
func Group(agents []types.ResolvedAgent, cities []types.City, now float64) []types.Zone {
	zones := make([]types.Zone, 0, len(cities)+1)
	byTZ := make(map[string]int, len(cities))
	for _, c := range cities {
		if _, seen := byTZ[c.Timezone]; !seen {
			byTZ[c.Timezone] = len(zones)
		}
		zones = append(zones, types.Zone{
			City:   c,
			Active: Active(c, now),
			Agents: []types.ResolvedAgent{},
		})
	}

	current, hasCurrent := CurrentCity(cities, now)
	incoming, hasIncoming := IncomingCity(cities, now)
	for i := range zones {
		zones[i].Current = hasCurrent && zones[i].City.Code == current.Code
		zones[i].Incoming = hasIncoming && zones[i].City.Code == incoming.Code
	}

	var other []types.ResolvedAgent
	for _, a := range agents {
		if idx, ok := byTZ[a.Person.Timezone]; ok && a.Person.Timezone != "" {
			zones[idx].Agents = append(zones[idx].Agents, a)
			continue
		}
		other = append(other, a)
	}
	if len(other) > 0 {
		zones = append(zones, types.Zone{City: OtherCity, Agents: other})
	}

	for i := range zones {
		SortAgents(zones[i].Agents)
		zones[i].Summary = types.Summarize(zones[i].Agents)
	}
	return zones
}

// SortAgents orders agents by status display order, then by name
func SortAgents(agents []types.ResolvedAgent) {
	rank := make(map[types.AgentStatus]int, len(types.AllStatuses))
	for i, s := range types.AllStatuses {
		rank[s] = i
	}
	sort.SliceStable(agents, func(i, j int) bool {
		ri, rj := rank[agents[i].Status], rank[agents[j].Status]
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(agents[i].Person.Name) < strings.ToLower(agents[j].Person.Name)
	})
}
