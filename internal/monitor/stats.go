package monitor

import (
	"errors"

	"github.com/samber/lo"
)

// ErrEmptyInput is returned by Mean for an empty series.
var ErrEmptyInput = errors.New("empty input")

const (
	// VolumeBaselineMinSamples is the window length at which the volume
	// baseline switches to the fixed trailing slice.
	VolumeBaselineMinSamples = 22
	// VolumeBaselineSpan is the number of samples in the trailing slice.
	VolumeBaselineSpan = 20
)

// Mean returns the arithmetic mean of xs.
func Mean(xs []float64) (float64, error) {
	if len(xs) == 0 {
		return 0, ErrEmptyInput
	}
	return lo.Sum(xs) / float64(len(xs)), nil
}

// Ratio returns current/baseline. A non-positive baseline is replaced by 1,
// which is an approximation: a zero-volume history yields current itself.
func Ratio(current, baseline float64) float64 {
	return current / safeBaseline(baseline)
}

// PercentChange returns the change from baseline to current in percent,
// with the same baseline substitution as Ratio.
func PercentChange(current, baseline float64) float64 {
	return (current - baseline) / safeBaseline(baseline) * 100
}

func safeBaseline(baseline float64) float64 {
	if baseline > 0 {
		return baseline
	}
	return 1
}

// VolumeBaseline averages the volume history that the latest sample is
// compared against. With at least 22 samples it is the 20 samples right before
// the latest one; shorter windows use everything but the latest sample, or the
// whole window when it holds a single sample.
func VolumeBaseline(vols []float64) (float64, error) {
	n := len(vols)
	if n >= VolumeBaselineMinSamples {
		return Mean(vols[n-1-VolumeBaselineSpan : n-1])
	}
	if n > 1 {
		return Mean(vols[:n-1])
	}
	return Mean(vols)
}

// OpenInterestBaseline averages every OI sample but the latest, or the single
// sample when only one exists.
func OpenInterestBaseline(oi []float64) (float64, error) {
	if len(oi) >= 2 {
		return Mean(oi[:len(oi)-1])
	}
	return Mean(oi)
}
