package monitor

import (
	"errors"
	"fmt"

	"github.com/rewired-gh/oiwatch/internal/models"
)

// ErrEmptySeries means a fetched series had no usable samples.
var ErrEmptySeries = errors.New("empty series")

// Thresholds gate the BUY/SELL rule.
type Thresholds struct {
	// OIPercentMin is the minimum deviation of current OI from its baseline, in percent.
	OIPercentMin float64
	// VolRatioMin is the minimum ratio of current volume to its baseline.
	VolRatioMin float64
}

// DefaultThresholds returns the strict-mode defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OIPercentMin: 5,
		VolRatioMin:  1.15,
	}
}

// Evaluate classifies the latest samples of window. OI above its baseline by
// more than OIPercentMin with a volume surge is BUY, OI below by the same
// margin with a volume surge is SELL, anything else is NONE.
func Evaluate(window models.SampleWindow, th Thresholds) (models.Signal, error) {
	if missing := window.Missing(); missing != "" {
		return models.Signal{Type: models.SignalNone}, fmt.Errorf("%s: %w", missing, ErrEmptySeries)
	}

	avgVol, err := VolumeBaseline(window.Volumes)
	if err != nil {
		return models.Signal{Type: models.SignalNone}, err
	}
	avgOI, err := OpenInterestBaseline(window.OpenInterest)
	if err != nil {
		return models.Signal{Type: models.SignalNone}, err
	}

	sig := models.Signal{
		Type:          models.SignalNone,
		CurrentVolume: window.Volumes[len(window.Volumes)-1],
		AvgVolume:     avgVol,
		CurrentOI:     window.OpenInterest[len(window.OpenInterest)-1],
		AvgOI:         avgOI,
		Price:         window.Closes[len(window.Closes)-1],
	}
	sig.VolRatio = Ratio(sig.CurrentVolume, avgVol)
	sig.OIPct = PercentChange(sig.CurrentOI, avgOI)

	volumeSurge := sig.VolRatio >= th.VolRatioMin
	switch {
	case sig.CurrentOI > avgOI*(1+th.OIPercentMin/100) && volumeSurge:
		sig.Type = models.SignalBuy
	case sig.CurrentOI < avgOI*(1-th.OIPercentMin/100) && volumeSurge:
		sig.Type = models.SignalSell
	}

	return sig, nil
}
