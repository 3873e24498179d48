package storage

import (
	"time"
)

// Session is a survey session: one walk through a floor plan.
type Session struct {
	ID        int64     `json:"id"`
	StartTime time.Time `json:"startTime"`
	Name      string    `json:"name"`
	FloorPlan *string   `json:"floorPlan,omitempty"` // Path to the floor plan image, if any
}
