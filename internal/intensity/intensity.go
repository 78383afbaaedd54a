// Package intensity maps queue depth to a 0-100 load value and a colour hue.
package intensity

import (
	"math"
	"strconv"
)

// countTable holds the intensity for row counts 0 through 7. Counts in
// between are interpolated linearly; counts at or above 7 saturate at 100.
var countTable = []float64{0, 5, 22, 39, 56, 73, 90, 100}

// FromCount converts a row count (a queue-depth proxy) into an intensity
func FromCount(n float64) int {
	if n <= 0 || math.IsNaN(n) {
		return 0
	}
	last := len(countTable) - 1
	if n >= float64(last) {
		return int(countTable[last])
	}
	lo := int(math.Floor(n))
	frac := n - float64(lo)
	v := countTable[lo] + frac*(countTable[lo+1]-countTable[lo])
	return int(math.Round(v))
}

// Hue maps an intensity onto a green (120) to yellow (60) to red (0) ramp
func Hue(v float64) float64 {
	v = Clamp(v)
	if v <= 50 {
		return 120 - (v/50)*60
	}
	return 60 - ((v-50)/50)*60
}

// Clamp bounds an intensity to [0, 100]
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// HSL renders the hue as a CSS colour string the widget can use directly
func HSL(v float64) string {
	h := math.Round(Hue(v)*10) / 10
	return "hsl(" + strconv.FormatFloat(h, 'f', -1, 64) + ", 80%, 45%)"
}
