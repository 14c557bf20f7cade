package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeat(v float64, n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = v
	}
	return xs
}

func TestMean(t *testing.T) {
	got, err := Mean([]float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, got, 1e-12)

	_, err = Mean(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = Mean([]float64{})
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestRatio(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		baseline float64
		want     float64
	}{
		{"normal", 150, 100, 1.5},
		{"zero baseline substitutes one", 42, 0, 42},
		{"negative baseline substitutes one", 7, -3, 7},
		{"zero current", 0, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.current, tt.baseline), 1e-12)
		})
	}
}

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		baseline float64
		want     float64
	}{
		{"increase", 1100, 1000, 10},
		{"decrease", 900, 1000, -10},
		{"unchanged", 1000, 1000, 0},
		{"zero baseline", 3, 0, 300},
		{"zero baseline negative current", -2, 0, -200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PercentChange(tt.current, tt.baseline), 1e-9)
		})
	}
}

func TestVolumeBaseline_TrailingSlice(t *testing.T) {
	// 22 samples: the oldest one is outside the 20-sample slice before the latest.
	vols := append([]float64{1000}, repeat(100, 20)...)
	vols = append(vols, 150)
	require.Len(t, vols, 22)

	got, err := VolumeBaseline(vols)
	require.NoError(t, err)
	assert.InDelta(t, 100, got, 1e-12)
}

func TestVolumeBaseline_LongWindow(t *testing.T) {
	vols := make([]float64, 50)
	for i := range vols {
		vols[i] = float64(i)
	}

	// samples 29..48
	got, err := VolumeBaseline(vols)
	require.NoError(t, err)
	assert.InDelta(t, 38.5, got, 1e-12)
}

func TestVolumeBaseline_BoundaryAt22(t *testing.T) {
	// 21 samples fall back to all-but-last, so the oldest sample is included.
	vols := append([]float64{1000}, repeat(100, 19)...)
	vols = append(vols, 150)
	require.Len(t, vols, 21)

	got, err := VolumeBaseline(vols)
	require.NoError(t, err)
	assert.InDelta(t, (1000+19*100)/20.0, got, 1e-12)
}

func TestVolumeBaseline_ShortWindows(t *testing.T) {
	got, err := VolumeBaseline([]float64{10, 20, 30})
	require.NoError(t, err)
	assert.InDelta(t, 15, got, 1e-12)

	got, err = VolumeBaseline([]float64{42})
	require.NoError(t, err)
	assert.InDelta(t, 42, got, 1e-12)

	_, err = VolumeBaseline(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestOpenInterestBaseline(t *testing.T) {
	got, err := OpenInterestBaseline(append(repeat(1000, 11), 1100))
	require.NoError(t, err)
	assert.InDelta(t, 1000, got, 1e-12)

	got, err = OpenInterestBaseline([]float64{900, 1100})
	require.NoError(t, err)
	assert.InDelta(t, 900, got, 1e-12)

	got, err = OpenInterestBaseline([]float64{777})
	require.NoError(t, err)
	assert.InDelta(t, 777, got, 1e-12)

	_, err = OpenInterestBaseline(nil)
	assert.ErrorIs(t, err, ErrEmptyInput)
}
