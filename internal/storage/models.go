package storage

import (
	"database/sql"
	"time"
)

type sessionData struct {
	ID        int64
	StartTime time.Time
	Name      string
	FloorPlan sql.NullString
}

type sampleData struct {
	PositionID int64
	Timestamp  time.Time
	BSSID      string
	SSID       string
	RSSI       int
}

type surveyRow struct {
	X     int
	Y     int
	BSSID sql.NullString
	SSID  sql.NullString
	RSSI  sql.NullInt64
}
