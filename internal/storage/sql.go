package storage

const (
	initSchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT      NOT NULL,
    floor_plan TEXT,
    start_time TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL REFERENCES sessions (id) ON DELETE CASCADE,
    x          INTEGER NOT NULL,
    y          INTEGER NOT NULL,
    UNIQUE (session_id, x, y)
);

CREATE TABLE IF NOT EXISTS samples (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    position_id INTEGER   NOT NULL REFERENCES positions (id) ON DELETE CASCADE,
    timestamp   TIMESTAMP NOT NULL,
    bssid       TEXT      NOT NULL,
    ssid        TEXT      NOT NULL,
    rssi        INTEGER   NOT NULL,
    UNIQUE (position_id, bssid)
);

CREATE INDEX IF NOT EXISTS idx_samples_bssid ON samples (bssid);`

	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      name,
                      floor_plan)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	selectSessionSQL = `
SELECT 
    id, 
    start_time, 
    name, 
    floor_plan 
FROM sessions 
WHERE 
    id = ?`

	selectSessionsSQL = `
SELECT 
    id, 
    start_time, 
    name, 
    floor_plan 
FROM sessions
ORDER BY start_time, id`

	upsertPositionSQL = `
INSERT INTO positions (session_id, x, y)
VALUES (?, ?, ?)
ON CONFLICT (session_id, x, y) DO NOTHING`

	selectPositionSQL = `
SELECT id
FROM positions
WHERE session_id = ?
  AND x = ?
  AND y = ?`

	deleteSamplesSQL = `
DELETE FROM samples
WHERE position_id = ?`

	insertSampleSQL = `
INSERT INTO samples (
                     position_id,
                     timestamp,
                     bssid,
                     ssid,
                     rssi)
VALUES `

	selectSurveySQL = `
SELECT
    p.x,
    p.y,
    s.bssid,
    s.ssid,
    s.rssi
FROM positions p
    LEFT JOIN samples s ON s.position_id = p.id`
)
