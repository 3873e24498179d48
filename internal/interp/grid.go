package interp

import (
	"errors"
	"fmt"
	"math"
)

// DefaultResolution is the number of lattice points per axis used when a grid
// does not specify one.
const DefaultResolution = 100

// ErrInvalidGrid is returned for grids with negative extents or resolution.
var ErrInvalidGrid = errors.New("invalid grid")

// Grid describes an evenly spaced lattice spanning [0, Width] x [0, Height].
type Grid struct {
	Width, Height float64 // Bounding box of the rendering area
	Cols, Rows    int     // Horizontal and vertical resolution
}

// NewGrid creates a grid over width x height with the default resolution.
func NewGrid(width, height float64) Grid {
	return Grid{
		Width:  width,
		Height: height,
		Cols:   DefaultResolution,
		Rows:   DefaultResolution,
	}
}

func (g Grid) validate() error {
	switch {
	case g.Cols <= 0 || g.Rows <= 0:
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidGrid, g.Cols, g.Rows)
	case !isFinite(g.Width) || !isFinite(g.Height) || g.Width < 0 || g.Height < 0:
		return fmt.Errorf("%w: bounds %gx%g", ErrInvalidGrid, g.Width, g.Height)
	}
	return nil
}

// XS returns the horizontal lattice coordinates.
func (g Grid) XS() []float64 {
	return linspace(0, g.Width, g.Cols)
}

// YS returns the vertical lattice coordinates.
func (g Grid) YS() []float64 {
	return linspace(0, g.Height, g.Rows)
}

// linspace returns n evenly spaced values from start to stop inclusive.
func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}

// Field is a dense, row-major grid of interpolated values.
type Field struct {
	Cols, Rows int
	XS, YS     []float64 // Lattice coordinates of columns and rows
	Values     []float64 // len = Rows*Cols, Values[row*Cols+col]
}

// At returns the value at the given lattice row and column.
func (f *Field) At(row, col int) float64 {
	return f.Values[row*f.Cols+col]
}

// FieldStats summarizes the values of a field.
type FieldStats struct {
	Min  float64
	Max  float64
	Mean float64
}

// Stats returns the minimum, maximum and mean value of the field.
func (f *Field) Stats() FieldStats {
	if len(f.Values) == 0 {
		return FieldStats{}
	}

	stats := FieldStats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, v := range f.Values {
		stats.Min = min(stats.Min, v)
		stats.Max = max(stats.Max, v)
		sum += v
	}
	stats.Mean = sum / float64(len(f.Values))
	return stats
}

// Evaluate evaluates the field at every lattice point of g.
func (r *RBF) Evaluate(g Grid) (*Field, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	f := &Field{
		Cols:   g.Cols,
		Rows:   g.Rows,
		XS:     g.XS(),
		YS:     g.YS(),
		Values: make([]float64, g.Cols*g.Rows),
	}
	xs := make([]float64, len(f.Values))
	ys := make([]float64, len(f.Values))
	for row, y := range f.YS {
		off := row * f.Cols
		for col, x := range f.XS {
			xs[off+col], ys[off+col] = x, y
		}
	}
	if err := r.EvalAll(xs, ys, f.Values); err != nil {
		return nil, err
	}
	return f, nil
}
