// Package interp reconstructs a continuous signal strength field from sparse
// samples of one emitter, and discretizes it into contour bands.
package interp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

var (
	// ErrUnknownEmitter is returned when interpolation is requested for an
	// emitter that has no samples.
	ErrUnknownEmitter = errors.New("unknown emitter selected")

	// ErrIllConditioned is returned when the interpolation system is singular
	// or too badly conditioned to be solved reliably.
	ErrIllConditioned = errors.New("ill-conditioned input")

	// ErrLengthMismatch is returned by EvalAll for coordinate and output
	// slices of inconsistent length.
	ErrLengthMismatch = errors.New("mismatched lengths")
)

// Sample is a known field value Z at (X, Y).
type Sample struct {
	X, Y, Z float64
}

// RBF is a radial basis function interpolator with a linear kernel: the field
// at p is sum_i w_i * |p - p_i|, with the weights chosen so that the field
// passes exactly through every sample.
//
// An RBF is immutable once built and may be evaluated from several goroutines.
type RBF struct {
	xs, ys  []float64
	weights []float64

	constant bool // single sample, field is weights[0] everywhere
}

// New builds an interpolator through samples.
//
// Samples repeating the same position and value are collapsed into one. Two
// samples at the same position with different values make the system singular
// and New returns ErrIllConditioned.
func New(samples []Sample) (*RBF, error) {
	if len(samples) == 0 {
		return nil, ErrUnknownEmitter
	}

	samples = dedupe(samples)
	for _, s := range samples {
		if !isFinite(s.X) || !isFinite(s.Y) || !isFinite(s.Z) {
			return nil, fmt.Errorf("%w: non-finite sample (%g, %g, %g)", ErrIllConditioned, s.X, s.Y, s.Z)
		}
	}

	n := len(samples)
	r := &RBF{
		xs: make([]float64, n),
		ys: make([]float64, n),
	}
	for i, s := range samples {
		r.xs[i], r.ys[i] = s.X, s.Y
	}

	if n == 1 {
		r.constant = true
		r.weights = []float64{samples[0].Z}
		return r, nil
	}

	a := mat.NewDense(n, n, nil)
	z := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		z.SetVec(i, samples[i].Z)
		for j := i + 1; j < n; j++ {
			d := math.Hypot(r.xs[i]-r.xs[j], r.ys[i]-r.ys[j])
			a.Set(i, j, d)
			a.Set(j, i, d)
		}
	}

	weights, err := solve(a, z)
	if err != nil {
		return nil, err
	}
	r.weights = weights
	return r, nil
}

func solve(a *mat.Dense, b *mat.VecDense) ([]float64, error) {
	var lu mat.LU
	lu.Factorize(a)

	if cond := lu.Cond(); math.IsInf(cond, 0) || math.IsNaN(cond) || cond > mat.ConditionTolerance {
		return nil, fmt.Errorf("%w: condition number %g", ErrIllConditioned, cond)
	}

	var w mat.VecDense
	if err := lu.SolveVecTo(&w, false, b); err != nil {
		var cond mat.Condition
		if errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: condition number %g", ErrIllConditioned, float64(cond))
		}
		return nil, fmt.Errorf("solving weights: %w", err)
	}

	weights := make([]float64, b.Len())
	for i := range weights {
		weights[i] = w.AtVec(i)
		if !isFinite(weights[i]) {
			return nil, fmt.Errorf("%w: non-finite weight", ErrIllConditioned)
		}
	}
	return weights, nil
}

// Len returns the number of distinct sample points.
func (r *RBF) Len() int {
	return len(r.xs)
}

// Eval evaluates the field at (x, y).
func (r *RBF) Eval(x, y float64) float64 {
	if r.constant {
		return r.weights[0]
	}

	var sum float64
	for i, w := range r.weights {
		sum += w * math.Hypot(x-r.xs[i], y-r.ys[i])
	}
	return sum
}

// EvalAll evaluates the field at every (xs[i], ys[i]) into out[i]. xs and ys
// must have the same length and out must be at least as long.
func (r *RBF) EvalAll(xs, ys, out []float64) error {
	if len(xs) != len(ys) || len(out) < len(xs) {
		return fmt.Errorf("%w: %d xs, %d ys, %d out", ErrLengthMismatch, len(xs), len(ys), len(out))
	}

	for i := range xs {
		out[i] = r.Eval(xs[i], ys[i])
	}
	return nil
}

// ForEmitter builds the interpolator for one emitter from every position of
// the store where it was observed.
func ForEmitter(store *survey.Store, key string) (*RBF, error) {
	observed := store.SamplesFor(key)
	if len(observed) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEmitter, key)
	}

	samples := make([]Sample, len(observed))
	for i, o := range observed {
		samples[i] = Sample{
			X: float64(o.Position.X),
			Y: float64(o.Position.Y),
			Z: float64(o.Strength),
		}
	}

	r, err := New(samples)
	if err != nil {
		return nil, fmt.Errorf("interpolating %q: %w", key, err)
	}
	return r, nil
}

func dedupe(samples []Sample) []Sample {
	type key struct{ x, y, z float64 }

	seen := make(map[key]struct{}, len(samples))
	out := make([]Sample, 0, len(samples))
	for _, s := range samples {
		k := key{s.X, s.Y, s.Z}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
