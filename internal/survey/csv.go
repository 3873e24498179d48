package survey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	columnX = "X"
	columnY = "Y"

	// emitterSeparator separates the emitter key from its label in a column header.
	emitterSeparator = ";"
)

// WriteCSV serializes the store as CSV. The header is "X,Y" followed by one
// "key;label" column per emitter in Emitters order. Each row holds a position
// and the strength of every emitter there, or an empty field when the emitter
// was not observed at that position.
func (s *Store) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	emitters := s.Emitters()
	keys := make([]string, len(emitters))
	header := make([]string, 0, len(emitters)+2)
	header = append(header, columnX, columnY)
	for i, e := range emitters {
		keys[i] = e.Key
		header = append(header, e.Key+emitterSeparator+e.Label)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := make([]string, len(header))
	for _, entry := range s.Positions() {
		row[0] = strconv.Itoa(entry.Position.X)
		row[1] = strconv.Itoa(entry.Position.Y)
		for i, strength := range entry.Sample.Strengths(keys) {
			if strength == nil {
				row[i+2] = ""
				continue
			}
			row[i+2] = strconv.Itoa(*strength)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing position %s: %w", entry.Position, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// ReadOption configures ReadCSV.
type ReadOption func(*reader)

// WithSampleHandler registers fn to be called for every row loaded into the store.
func WithSampleHandler(fn func(Position, PointSample)) ReadOption {
	return func(r *reader) {
		r.onSample = fn
	}
}

type reader struct {
	onSample func(Position, PointSample)
}

type column struct {
	name    string
	emitter Emitter
}

// ReadCSV loads rows written by WriteCSV into the store. Rows are added on top
// of the existing content; a row at an already known position replaces it.
// Empty strength fields are skipped, so absence survives a round trip.
//
// On a malformed record ReadCSV stops and returns a *RecordError. Rows read
// before the failing one stay in the store.
func (s *Store) ReadCSV(r io.Reader, opts ...ReadOption) error {
	var rd reader
	for _, opt := range opts {
		opt(&rd)
	}

	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return wrapCSVError(err)
	}

	columns, xIdx, yIdx, err := parseHeader(header)
	if err != nil {
		return err
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return wrapCSVError(err)
		}

		line, _ := cr.FieldPos(0)

		pos, ps, err := parseRecord(record, columns, xIdx, yIdx, line)
		if err != nil {
			return err
		}

		s.Add(pos, ps)
		if rd.onSample != nil {
			rd.onSample(pos, ps)
		}
	}
}

func parseHeader(header []string) (columns []column, xIdx, yIdx int, err error) {
	xIdx, yIdx = -1, -1
	columns = make([]column, len(header))

	for i, name := range header {
		switch name {
		case columnX:
			xIdx = i
			continue
		case columnY:
			yIdx = i
			continue
		}

		key, label, found := strings.Cut(name, emitterSeparator)
		if !found {
			return nil, 0, 0, &RecordError{Line: 1, Column: name, Err: errors.New("missing key;label separator")}
		}
		if key == "" {
			return nil, 0, 0, &RecordError{Line: 1, Column: name, Err: errors.New("empty emitter key")}
		}
		columns[i] = column{name: name, emitter: Emitter{Key: key, Label: label}}
	}

	if xIdx < 0 || yIdx < 0 {
		return nil, 0, 0, &RecordError{Line: 1, Err: errors.New("missing X or Y column")}
	}
	return columns, xIdx, yIdx, nil
}

func parseRecord(record []string, columns []column, xIdx, yIdx, line int) (Position, PointSample, error) {
	var pos Position
	var err error

	if pos.X, err = parseInt(record[xIdx]); err != nil {
		return pos, nil, &RecordError{Line: line, Column: columnX, Err: err}
	}
	if pos.Y, err = parseInt(record[yIdx]); err != nil {
		return pos, nil, &RecordError{Line: line, Column: columnY, Err: err}
	}

	ps := make(PointSample)
	for i, value := range record {
		if i == xIdx || i == yIdx || value == "" {
			continue
		}

		strength, err := parseInt(value)
		if err != nil {
			return pos, nil, &RecordError{Line: line, Column: columns[i].name, Err: err}
		}
		ps.Add(Measurement{
			Key:      columns[i].emitter.Key,
			Label:    columns[i].emitter.Label,
			Strength: strength,
		})
	}
	return pos, ps, nil
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) {
			return 0, fmt.Errorf("invalid integer %q: %w", s, numErr.Err)
		}
		return 0, err
	}
	return v, nil
}

func wrapCSVError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return &RecordError{Line: parseErr.Line, Err: parseErr.Err}
	}
	return fmt.Errorf("reading csv: %w", err)
}
