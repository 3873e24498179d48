package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 25, 50, 75, 100}, linspace(0, 100, 5))
	assert.Equal(t, []float64{0}, linspace(0, 100, 1))
	assert.Equal(t, []float64{0, 0, 0}, linspace(0, 0, 3))
}

func TestRBF_EvaluateShape(t *testing.T) {
	r, err := ForEmitter(homeNetStore(), "AA:BB:CC:DD:EE:FF")
	require.NoError(t, err)

	f, err := r.Evaluate(Grid{Width: 100, Height: 100, Cols: 3, Rows: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, f.Cols)
	assert.Equal(t, 2, f.Rows)
	assert.Len(t, f.Values, 6)
	assert.Equal(t, []float64{0, 50, 100}, f.XS)
	assert.Equal(t, []float64{0, 100}, f.YS)

	// row-major, rows run along Y
	assert.InDelta(t, -40, f.At(0, 0), tolerance)
	assert.InDelta(t, -60, f.At(0, 2), tolerance)
	assert.InDelta(t, -70, f.At(1, 0), tolerance)
	assert.InDelta(t, -80, f.At(1, 2), tolerance)
	assert.InDelta(t, r.Eval(50, 100), f.At(1, 1), tolerance)
}

func TestRBF_EvaluateDefaultResolution(t *testing.T) {
	r, err := New([]Sample{{X: 0, Y: 0, Z: -40}, {X: 640, Y: 480, Z: -80}})
	require.NoError(t, err)

	f, err := r.Evaluate(NewGrid(640, 480))
	require.NoError(t, err)
	assert.Len(t, f.Values, DefaultResolution*DefaultResolution)
	assert.InDelta(t, -40, f.At(0, 0), tolerance)
	assert.InDelta(t, -80, f.At(DefaultResolution-1, DefaultResolution-1), tolerance)

	stats := f.Stats()
	assert.LessOrEqual(t, stats.Min, stats.Mean)
	assert.LessOrEqual(t, stats.Mean, stats.Max)
}

func TestRBF_EvaluateInvalidGrid(t *testing.T) {
	r, err := New([]Sample{{X: 0, Y: 0, Z: -40}})
	require.NoError(t, err)

	for _, g := range []Grid{
		{Width: 10, Height: 10, Cols: 0, Rows: 10},
		{Width: 10, Height: 10, Cols: 10, Rows: -1},
		{Width: -1, Height: 10, Cols: 10, Rows: 10},
	} {
		_, err := r.Evaluate(g)
		assert.ErrorIs(t, err, ErrInvalidGrid, "%+v", g)
	}
}

func TestField_StatsEmpty(t *testing.T) {
	assert.Equal(t, FieldStats{}, (&Field{}).Stats())
}
