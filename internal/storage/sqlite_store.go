package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

// SqliteStore handles database operations
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error

	now func() time.Time
}

// NewSqliteStore creates a new store backed by the sqlite database at dbPath.
// Connections are opened and the schema is initialized on first use.
func NewSqliteStore(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath, now: time.Now}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		// the read-only connection cannot create the schema
		if _, err := s.getWriteDB(); err != nil {
			s.readDBErr = err
			return
		}

		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateSession(ctx context.Context, name, floorPlan string) (sessionID int64, err error) {
	var floorPlanData sql.NullString
	if floorPlan != "" {
		floorPlanData.Valid = true
		floorPlanData.String = floorPlan
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, name, floorPlanData)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	sessionID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting session ID: %w", err)
	}
	return
}

func (s *SqliteStore) Session(ctx context.Context, id int64) (session *Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var data sessionData
	if err = stmt.QueryRowContext(ctx, id).Scan(&data.ID, &data.StartTime, &data.Name, &data.FloorPlan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("session %d: %w", id, ErrSessionNotFound)
			return
		}
		err = fmt.Errorf("scanning session: %w", err)
		return
	}

	return toSession(&data), nil
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []*Session, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data sessionData
		if err = rows.Scan(&data.ID, &data.StartTime, &data.Name, &data.FloorPlan); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		sessions = append(sessions, toSession(&data))
	}
	if err = rows.Err(); err != nil {
		err = fmt.Errorf("iterating sessions: %w", err)
	}
	return
}

// ReadSurvey loads a session into a survey store. Options narrow the result
// down to some emitters or a region of the floor plan.
//
// Returns ErrSessionNotFound if the session does not exist. A session without
// samples yields an empty store.
func (s *SqliteStore) ReadSurvey(ctx context.Context, sessionID int64, opts ...ReaderOption) (*survey.Store, error) {
	if _, err := s.Session(ctx, sessionID); err != nil {
		return nil, err
	}

	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	store, err := newSurveyReader(db, sessionID, opts...).read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading session %d: %w", sessionID, err)
	}
	return store, nil
}

func (s *SqliteStore) StoreSample(ctx context.Context, sessionID int64, pos survey.Position, ps survey.PointSample) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	if err = s.storeSample(ctx, tx, sessionID, pos, ps); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *SqliteStore) StoreSurvey(ctx context.Context, sessionID int64, store *survey.Store) (err error) {
	if store.Len() == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	for _, entry := range store.Positions() {
		if err = s.storeSample(ctx, tx, sessionID, entry.Position, entry.Sample); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// storeSample writes one position within tx, replacing its previous readings.
func (s *SqliteStore) storeSample(ctx context.Context, tx *sql.Tx, sessionID int64, pos survey.Position, ps survey.PointSample) error {
	if _, err := tx.ExecContext(ctx, upsertPositionSQL, sessionID, pos.X, pos.Y); err != nil {
		return fmt.Errorf("inserting position %s: %w", pos, err)
	}

	var positionID int64
	if err := tx.QueryRowContext(ctx, selectPositionSQL, sessionID, pos.X, pos.Y).Scan(&positionID); err != nil {
		return fmt.Errorf("selecting position %s: %w", pos, err)
	}

	if _, err := tx.ExecContext(ctx, deleteSamplesSQL, positionID); err != nil {
		return fmt.Errorf("deleting samples at %s: %w", pos, err)
	}

	if len(ps) == 0 {
		return nil
	}

	// Prepare values array
	values := make([]interface{}, 0, len(ps)*5)

	// Build batch insert query
	valuesPlaceholder := "(?, ?, ?, ?, ?)"

	var sb strings.Builder

	sb.WriteString(insertSampleSQL)

	timestamp := s.now()
	for i, key := range ps.Keys() {
		data := toSampleData(positionID, timestamp, ps[key])
		values = append(values,
			data.PositionID,
			data.Timestamp,
			data.BSSID,
			data.SSID,
			data.RSSI,
		)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valuesPlaceholder)
	}

	// Single batch insert
	if _, err := tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting samples at %s: %w", pos, err)
	}

	return nil
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, "PRAGMA wal_checkpoint(TRUNCATE)")

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		s.closeErr = errors.Join(writeErr, readErr)
	})

	return s.closeErr
}
