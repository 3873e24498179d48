package interp

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrInvalidThresholds is returned for an empty, unsorted or non-finite
// threshold set.
var ErrInvalidThresholds = errors.New("invalid thresholds")

// DefaultThresholds are the band edges in dBm used for contour display.
var DefaultThresholds = Thresholds{-85, -75, -65, -55, -45, -35}

// Thresholds are strictly increasing band edges. They partition the value
// range into len(t)+1 bands: band 0 holds values below t[0], band i holds
// values in [t[i-1], t[i]), and band len(t) is open-ended above the last edge.
type Thresholds []float64

// Validate reports whether the thresholds are usable.
func (t Thresholds) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidThresholds)
	}
	for i, v := range t {
		if !isFinite(v) {
			return fmt.Errorf("%w: non-finite edge %g", ErrInvalidThresholds, v)
		}
		if i > 0 && v <= t[i-1] {
			return fmt.Errorf("%w: %g does not follow %g", ErrInvalidThresholds, v, t[i-1])
		}
	}
	return nil
}

// Bands returns the number of bands the thresholds define.
func (t Thresholds) Bands() int {
	return len(t) + 1
}

// Classify returns the band v falls into.
func (t Thresholds) Classify(v float64) int {
	// first edge strictly greater than v
	return sort.Search(len(t), func(i int) bool { return t[i] > v })
}

// Label describes band i, e.g. "< -85", "[-85, -75)" or ">= -35".
func (t Thresholds) Label(i int) string {
	switch {
	case i <= 0:
		return "< " + formatEdge(t[0])
	case i >= len(t):
		return ">= " + formatEdge(t[len(t)-1])
	default:
		return "[" + formatEdge(t[i-1]) + ", " + formatEdge(t[i]) + ")"
	}
}

func formatEdge(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// BandGrid is a row-major grid of band indices, aligned with the Field it was
// derived from.
type BandGrid struct {
	Cols, Rows int
	Thresholds Thresholds
	Bands      []int
}

// At returns the band at the given lattice row and column.
func (b *BandGrid) At(row, col int) int {
	return b.Bands[row*b.Cols+col]
}

// Histogram returns the number of cells in each band.
func (b *BandGrid) Histogram() []int {
	counts := make([]int, b.Thresholds.Bands())
	for _, band := range b.Bands {
		counts[band]++
	}
	return counts
}

// Bands classifies every cell of the field against t.
func (f *Field) Bands(t Thresholds) (*BandGrid, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	edges := make(Thresholds, len(t))
	copy(edges, t)

	bg := &BandGrid{
		Cols:       f.Cols,
		Rows:       f.Rows,
		Thresholds: edges,
		Bands:      make([]int, len(f.Values)),
	}
	for i, v := range f.Values {
		bg.Bands[i] = edges.Classify(v)
	}
	return bg, nil
}
