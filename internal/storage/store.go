// Package storage persists survey sessions in a sqlite database.
package storage

import (
	"context"
	"errors"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

// ErrSessionNotFound is returned when the requested session does not exist.
var ErrSessionNotFound = errors.New("session not found")

// Store provides an interface for managing survey data storage operations.
// All operations that write to the database should be considered atomic.
type Store interface {
	// CreateSession initializes a new survey session and returns its unique identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - name: Human readable session name
	//   - floorPlan: Optional path to the floor plan image, empty if none
	CreateSession(ctx context.Context, name, floorPlan string) (sessionID int64, err error)

	// Session retrieves a specific survey session by its ID.
	// Returns ErrSessionNotFound if there is no such session.
	Session(ctx context.Context, id int64) (session *Session, err error)

	// Sessions returns all survey sessions stored in the database,
	// ordered by start time in ascending order.
	Sessions(ctx context.Context) (sessions []*Session, err error)

	// StoreSample saves the point sample taken at pos. Any sample previously
	// stored at the same position of the session is replaced as a whole.
	StoreSample(ctx context.Context, sessionID int64, pos survey.Position, ps survey.PointSample) error

	// StoreSurvey saves every position of s in a single transaction, with the
	// same replacement rule as StoreSample.
	StoreSurvey(ctx context.Context, sessionID int64, s *survey.Store) error

	// ReadSurvey loads the session back into a survey.Store. Positions keep
	// the order in which they were first stored.
	ReadSurvey(ctx context.Context, sessionID int64, opts ...ReaderOption) (*survey.Store, error)

	// Close releases all database connections and resources.
	// It is safe to call Close multiple times.
	Close() error
}

var _ Store = (*SqliteStore)(nil)
