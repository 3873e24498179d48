package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

// ReaderOption configures which part of a session ReadSurvey loads.
type ReaderOption func(*surveyReader)

// WithEmitters restricts the result to the given emitter keys. Positions
// where none of them was observed are left out.
func WithEmitters(keys ...string) ReaderOption {
	return func(r *surveyReader) {
		r.emitters = append(r.emitters, keys...)
	}
}

// WithRegion restricts the result to positions inside the rectangle,
// bounds included.
func WithRegion(minX, minY, maxX, maxY int) ReaderOption {
	return func(r *surveyReader) {
		r.region = &region{minX, minY, maxX, maxY}
	}
}

type region struct {
	minX, minY, maxX, maxY int
}

type surveyReader struct {
	db        *sql.DB
	sessionID int64
	emitters  []string
	region    *region
}

func newSurveyReader(db *sql.DB, sessionID int64, opts ...ReaderOption) *surveyReader {
	r := surveyReader{db: db, sessionID: sessionID}
	for _, opt := range opts {
		opt(&r)
	}
	return &r
}

func (r *surveyReader) query() (string, []any) {
	var sb strings.Builder
	var args []any

	sb.WriteString(selectSurveySQL)

	if len(r.emitters) > 0 {
		sb.WriteString(" AND s.bssid IN (")
		for i, key := range r.emitters {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("?")
			args = append(args, key)
		}
		sb.WriteString(")")
	}

	sb.WriteString("\nWHERE p.session_id = ?")
	args = append(args, r.sessionID)

	if r.region != nil {
		sb.WriteString("\n  AND p.x BETWEEN ? AND ?\n  AND p.y BETWEEN ? AND ?")
		args = append(args, r.region.minX, r.region.maxX, r.region.minY, r.region.maxY)
	}

	sb.WriteString("\nORDER BY p.id, s.bssid")
	return sb.String(), args
}

func (r *surveyReader) read(ctx context.Context) (store *survey.Store, err error) {
	q, args := r.query()

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		err = fmt.Errorf("querying samples: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	result := survey.NewStore()

	var (
		current survey.PointSample
		pos     survey.Position
		started bool
	)

	flush := func() {
		if !started {
			return
		}
		if len(current) > 0 || len(r.emitters) == 0 {
			result.Add(pos, current)
		}
	}

	for rows.Next() {
		var row surveyRow
		if err = rows.Scan(&row.X, &row.Y, &row.BSSID, &row.SSID, &row.RSSI); err != nil {
			err = fmt.Errorf("scanning sample: %w", err)
			return
		}

		if p := (survey.Position{X: row.X, Y: row.Y}); !started || p != pos {
			flush()
			pos, current, started = p, make(survey.PointSample), true
		}

		if m, ok := toMeasurement(&row); ok {
			current.Add(m)
		}
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating samples: %w", err)
		return
	}

	flush()
	return result, nil
}
