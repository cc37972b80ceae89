package models

import "time"

// Station statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DefaultAutoSwitchMinutes is applied when a station is registered without
// an explicit idle threshold.
const DefaultAutoSwitchMinutes = 10

// Station represents a charging station.
type Station struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Location          string    `db:"location" json:"location"`
	MaxCapacityKW     float64   `db:"max_capacity_kw" json:"maxCapacityKW"`
	Status            string    `db:"status" json:"status"`
	AutoSwitchMinutes int       `db:"auto_switch_minutes" json:"autoSwitchMinutes"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// ValidStatus reports whether status is one of the known station statuses.
func ValidStatus(status string) bool {
	return status == StatusActive || status == StatusInactive
}

// ToggledStatus returns the opposite station status.
func ToggledStatus(status string) string {
	if status == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// Metrics aggregates fleet-level station numbers.
type Metrics struct {
	TotalStations    int     `json:"totalStations"`
	ActiveStations   int     `json:"activeStations"`
	InactiveStations int     `json:"inactiveStations"`
	AvgCapacity      float64 `json:"avgCapacity"`
}
