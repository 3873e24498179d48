package storage

import (
	"database/sql"
	"time"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && *err == nil && cErr != sql.ErrTxDone {
		*err = cErr
	}
}

func toSession(data *sessionData) *Session {
	sess := Session{
		ID:        data.ID,
		StartTime: data.StartTime,
		Name:      data.Name,
	}
	if data.FloorPlan.Valid {
		sess.FloorPlan = &data.FloorPlan.String
	}
	return &sess
}

func toSampleData(positionID int64, timestamp time.Time, m survey.Measurement) *sampleData {
	return &sampleData{
		PositionID: positionID,
		Timestamp:  timestamp.UTC(),
		BSSID:      m.Key,
		SSID:       m.Label,
		RSSI:       m.Strength,
	}
}

func toMeasurement(row *surveyRow) (survey.Measurement, bool) {
	if !row.BSSID.Valid {
		return survey.Measurement{}, false
	}
	return survey.Measurement{
		Key:      row.BSSID.String,
		Label:    row.SSID.String,
		Strength: int(row.RSSI.Int64),
	}, true
}
