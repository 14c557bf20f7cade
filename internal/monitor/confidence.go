package monitor

import (
	"math"

	"github.com/samber/lo"
)

const (
	confidenceBase     = 30.0
	confidenceOICap    = 40.0
	confidenceOIWeight = 2.0
	confidenceVolCap   = 30.0
	confidenceVolScale = 100.0
)

// Confidence maps OI deviation and volume surge to a 0-100 heuristic score.
// The base is 30, |oiPct| adds up to 40 at weight 2, and the volume surge above
// 1x adds up to 30. Below-average volume adds nothing.
func Confidence(oiPct, volRatio float64) int {
	oiTerm := math.Min(confidenceOICap, math.Abs(oiPct)*confidenceOIWeight)
	volTerm := math.Min(confidenceVolCap, math.Max(0, (volRatio-1)*confidenceVolScale))
	return int(lo.Clamp(confidenceBase+oiTerm+volTerm, 0, 100))
}
