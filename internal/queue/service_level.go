package queue

import (
	"math"
	"time"

	"github.com/dennisdiepolder/availability/internal/types"
)

// MeasureServiceLevel counts the waiting conversations that have waited no
// longer than threshold at now. An empty queue is 100%.
func MeasureServiceLevel(waiting []types.Conversation, now time.Time, threshold time.Duration) types.ServiceLevel {
	sl := types.ServiceLevel{
		ThresholdSecs: int(threshold / time.Second),
		Total:         len(waiting),
		Percent:       100.0,
	}
	for _, c := range waiting {
		if c.WaitingFor(now) <= threshold {
			sl.Within++
		}
	}
	if sl.Total > 0 {
		sl.Percent = math.Round(float64(sl.Within)/float64(sl.Total)*1000) / 10
	}
	return sl
}
