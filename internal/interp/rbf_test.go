package interp

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

const tolerance = 1e-6

func homeNetStore() *survey.Store {
	s := survey.NewStore()
	for _, p := range []struct {
		x, y, rssi int
	}{
		{0, 0, -40},
		{100, 0, -60},
		{0, 100, -70},
		{100, 100, -80},
	} {
		s.Add(survey.Position{X: p.x, Y: p.y}, survey.NewPointSample(
			survey.Measurement{Key: "AA:BB:CC:DD:EE:FF", Label: "HomeNet", Strength: p.rssi},
			survey.Measurement{Key: "11:11:11:11:11:11", Label: "Neighbour", Strength: -90},
		))
	}
	return s
}

func TestForEmitter_SquareScenario(t *testing.T) {
	r, err := ForEmitter(homeNetStore(), "AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)
	require.Equal(t, 4, r.Len())

	center := r.Eval(50, 50)
	assert.False(t, math.IsNaN(center) || math.IsInf(center, 0))
	assert.Greater(t, center, -80.0)
	assert.Less(t, center, -40.0)

	assert.InDelta(t, -40, r.Eval(0, 0), tolerance)
	assert.InDelta(t, -60, r.Eval(100, 0), tolerance)
	assert.InDelta(t, -70, r.Eval(0, 100), tolerance)
	assert.InDelta(t, -80, r.Eval(100, 100), tolerance)
}

func TestForEmitter_UnknownEmitter(t *testing.T) {
	_, err := ForEmitter(homeNetStore(), "00:00:00:00:00:00")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownEmitter))
}

func TestNew_NoSamples(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrUnknownEmitter)
}

func TestNew_SingleSampleIsConstant(t *testing.T) {
	r, err := New([]Sample{{X: 12, Y: 34, Z: -63}})
	require.NoError(t, err)

	for _, p := range [][2]float64{{12, 34}, {0, 0}, {1e6, -1e6}} {
		assert.Equal(t, -63.0, r.Eval(p[0], p[1]))
	}
}

func TestNew_ConflictingDuplicatePosition(t *testing.T) {
	_, err := New([]Sample{
		{X: 10, Y: 10, Z: -50},
		{X: 10, Y: 10, Z: -70},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllConditioned)

	_, err = New([]Sample{
		{X: 0, Y: 0, Z: -40},
		{X: 10, Y: 10, Z: -50},
		{X: 30, Y: 5, Z: -55},
		{X: 10, Y: 10, Z: -70},
	})
	assert.ErrorIs(t, err, ErrIllConditioned)
}

func TestNew_IdenticalDuplicatesCollapse(t *testing.T) {
	r, err := New([]Sample{
		{X: 10, Y: 10, Z: -50},
		{X: 10, Y: 10, Z: -50},
		{X: 40, Y: 0, Z: -65},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.InDelta(t, -50, r.Eval(10, 10), tolerance)
	assert.InDelta(t, -65, r.Eval(40, 0), tolerance)
}

func TestNew_NonFiniteSample(t *testing.T) {
	_, err := New([]Sample{{X: 0, Y: 0, Z: math.NaN()}, {X: 1, Y: 1, Z: -40}})
	assert.ErrorIs(t, err, ErrIllConditioned)
}

func TestNew_ExactRecovery(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for _, n := range []int{2, 3, 10, 60} {
		seen := make(map[[2]int]bool)
		samples := make([]Sample, 0, n)
		for len(samples) < n {
			p := [2]int{rng.Intn(800), rng.Intn(600)}
			if seen[p] {
				continue
			}
			seen[p] = true
			samples = append(samples, Sample{X: float64(p[0]), Y: float64(p[1]), Z: -float64(20 + rng.Intn(80))})
		}

		r, err := New(samples)
		require.NoError(t, err, "n=%d", n)
		for _, s := range samples {
			assert.InDelta(t, s.Z, r.Eval(s.X, s.Y), tolerance, "n=%d at (%g,%g)", n, s.X, s.Y)
		}
	}
}

func TestRBF_EvalAll(t *testing.T) {
	r, err := New([]Sample{{X: 0, Y: 0, Z: -40}, {X: 10, Y: 0, Z: -60}})
	require.NoError(t, err)

	out := make([]float64, 3)
	require.NoError(t, r.EvalAll([]float64{0, 10, 5}, []float64{0, 0, 0}, out))
	assert.InDelta(t, -40, out[0], tolerance)
	assert.InDelta(t, -60, out[1], tolerance)
	// linear kernel between two points is a straight line along the segment
	assert.InDelta(t, -50, out[2], tolerance)
}

func TestRBF_EvalAllLengthMismatch(t *testing.T) {
	r, err := New([]Sample{{X: 0, Y: 0, Z: -40}, {X: 10, Y: 0, Z: -60}})
	require.NoError(t, err)

	tests := []struct {
		name   string
		xs, ys []float64
		outLen int
	}{
		{"ys shorter", []float64{0, 1}, []float64{0}, 2},
		{"xs shorter", []float64{0}, []float64{0, 1}, 2},
		{"out shorter", []float64{0, 1}, []float64{0, 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, r.EvalAll(tt.xs, tt.ys, make([]float64, tt.outLen)), ErrLengthMismatch)
		})
	}
}
