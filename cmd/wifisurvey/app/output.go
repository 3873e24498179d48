package app

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/roman-kulish/wifi-survey/internal/interp"
)

const cornerCell = `y\x`

// writeField writes f as a matrix: a header row of column coordinates, then
// one row per lattice row led by its coordinate.
func writeField(w io.Writer, f *interp.Field) error {
	return writeMatrix(w, f, func(row, col int) string {
		return strconv.FormatFloat(f.At(row, col), 'f', 2, 64)
	})
}

// writeBands writes the band index of every cell, laid out as writeField does.
func writeBands(w io.Writer, f *interp.Field, bg *interp.BandGrid) error {
	return writeMatrix(w, f, func(row, col int) string {
		return strconv.Itoa(bg.At(row, col))
	})
}

func writeMatrix(w io.Writer, f *interp.Field, cell func(row, col int) string) error {
	cw := csv.NewWriter(w)

	record := make([]string, f.Cols+1)
	record[0] = cornerCell
	for col, x := range f.XS {
		record[col+1] = formatCoord(x)
	}
	if err := cw.Write(record); err != nil {
		return err
	}

	for row, y := range f.YS {
		record[0] = formatCoord(y)
		for col := range f.XS {
			record[col+1] = cell(row, col)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
