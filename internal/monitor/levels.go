package monitor

import (
	"strconv"

	"github.com/rewired-gh/oiwatch/internal/models"
	"github.com/shopspring/decimal"
)

const levelPlaces = 2

// ComputeLevels derives entry, stop-loss and take-profit prices from the
// signal direction. BUY stops below and targets above the price; SELL mirrors it.
// Levels are computed in float64 and rounded half-to-even on the exact binary
// value, the same rounding the price itself is printed with.
func ComputeLevels(t models.SignalType, price float64, pts models.LevelPoints) models.AlertLevels {
	dir := float64(t.Direction())

	return models.AlertLevels{
		Entry:    roundLevel(price),
		StopLoss: roundLevel(price - dir*pts.StopLoss),
		TP1:      roundLevel(price + dir*pts.TP1),
		TP2:      roundLevel(price + dir*pts.TP2),
		TP3:      roundLevel(price + dir*pts.TP3),
	}
}

func roundLevel(v float64) decimal.Decimal {
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', levelPlaces, 64))
	if err != nil {
		return decimal.Zero
	}
	return d
}
