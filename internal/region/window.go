// Package region derives the active region of the support day from the UTC
// clock and the configured city shift windows.
package region

import (
	"math"
	"sort"
	"time"

	"github.com/dennisdiepolder/availability/internal/types"
)

const dayHours = 24.0

// UTCHour returns the fractional UTC hour of t in [0, 24)
func UTCHour(t time.Time) float64 {
	u := t.UTC()
	return float64(u.Hour()) + float64(u.Minute())/60 + float64(u.Second())/3600
}

// Cursor returns the timeline cursor position as a percentage of the UTC day
func Cursor(now float64) float64 {
	return wrap(now) / dayHours * 100
}

// Active reports whether the city's half-open window contains now.
// Windows with an end past 24 continue into the next UTC day.
func Active(c types.City, now float64) bool {
	if c.EndHourUTC <= dayHours {
		return now >= c.StartHourUTC && now < c.EndHourUTC
	}
	return now >= c.StartHourUTC || now < c.EndHourUTC-dayHours
}

// CurrentCity picks the active city with the latest start. When no window is
// active it falls back to the city whose start is most recently in the past on
// the wrapped clock. ok is false only for an empty list.
func CurrentCity(cities []types.City, now float64) (types.City, bool) {
	if len(cities) == 0 {
		return types.City{}, false
	}

	best := -1
	for i, c := range cities {
		if !Active(c, now) {
			continue
		}
		if best < 0 || c.StartHourUTC > cities[best].StartHourUTC {
			best = i
		}
	}
	if best >= 0 {
		return cities[best], true
	}

	bestScore := math.Inf(-1)
	for i, c := range cities {
		score := c.StartHourUTC
		if c.StartHourUTC > now {
			score -= dayHours
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return cities[best], true
}

// IncomingCity picks the city with the earliest start still ahead of now,
// wrapping to the earliest start of the day when none remain.
func IncomingCity(cities []types.City, now float64) (types.City, bool) {
	if len(cities) == 0 {
		return types.City{}, false
	}

	next, earliest := -1, 0
	for i, c := range cities {
		if c.StartHourUTC < cities[earliest].StartHourUTC {
			earliest = i
		}
		if c.StartHourUTC > now && (next < 0 || c.StartHourUTC < cities[next].StartHourUTC) {
			next = i
		}
	}
	if next < 0 {
		next = earliest
	}
	return cities[next], true
}

// Handoffs returns the overlap bands between every pair of city windows,
// ordered by start. From is the city whose window opened first.
func Handoffs(cities []types.City) []types.HandoffBand {
	var bands []types.HandoffBand
	for i := 0; i < len(cities); i++ {
		for j := i + 1; j < len(cities); j++ {
			bands = append(bands, overlaps(cities[i], cities[j])...)
		}
	}
	sort.SliceStable(bands, func(a, b int) bool {
		return bands[a].StartHourUTC < bands[b].StartHourUTC
	})
	return bands
}

func overlaps(a, b types.City) []types.HandoffBand {
	var out []types.HandoffBand
	for _, shift := range []float64{-dayHours, 0, dayHours} {
		bs, be := b.StartHourUTC+shift, b.EndHourUTC+shift
		start := math.Max(a.StartHourUTC, bs)
		end := math.Min(a.EndHourUTC, be)
		if end <= start {
			continue
		}

		from, to := a, b
		if bs < a.StartHourUTC {
			from, to = b, a
		}
		ns := wrap(start)
		out = append(out, types.HandoffBand{
			From:         from.Name,
			To:           to.Name,
			StartHourUTC: ns,
			EndHourUTC:   ns + (end - start),
		})
	}
	return out
}

func wrap(h float64) float64 {
	h = math.Mod(h, dayHours)
	if h < 0 {
		h += dayHours
	}
	return h
}
