package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Fleet aircraft status values
const (
	FleetIdle        = "idle"
	FleetInFlight    = "in_flight"
	FleetMaintenance = "maintenance"
)

const (
	// MaintenanceInterval is the number of completed flights between maintenance checks.
	MaintenanceInterval = 3
	MaintenanceDuration = 2 * time.Hour
)

// FleetAircraft is a concrete airframe of the virtual fleet
type FleetAircraft struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Registration     string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"registration"`
	AircraftID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"aircraft_id"`
	Aircraft         *Aircraft       `gorm:"foreignKey:AircraftID" json:"aircraft,omitempty"`
	LocationICAO     string          `gorm:"column:location_icao;type:varchar(4)" json:"location_icao"`
	Status           string          `gorm:"type:varchar(20);not null;default:'idle';index" json:"status"`
	TotalFlights     int             `gorm:"not null;default:0" json:"total_flights"`
	TotalHours       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_hours"`
	MaintenanceUntil *time.Time      `json:"maintenance_until"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (FleetAircraft) TableName() string {
	return "virtual_fleet"
}

func (a *FleetAircraft) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// CompleteFlight books a finished flight on the airframe. Every MaintenanceInterval-th
// flight grounds it for MaintenanceDuration. Otherwise it goes back to idle when
// release is set and stays in flight for the rest of its dispatch chain when not.
// It reports whether maintenance started.
func (a *FleetAircraft) CompleteFlight(hours decimal.Decimal, now time.Time, release bool) bool {
	a.TotalFlights++
	a.TotalHours = a.TotalHours.Add(hours)

	if a.TotalFlights%MaintenanceInterval == 0 {
		until := now.Add(MaintenanceDuration)
		a.Status = FleetMaintenance
		a.MaintenanceUntil = &until
		return true
	}

	if release {
		a.Status = FleetIdle
	} else {
		a.Status = FleetInFlight
	}
	return false
}

// ReleaseIfDue returns the airframe to idle once its maintenance window has elapsed.
func (a *FleetAircraft) ReleaseIfDue(now time.Time) bool {
	if a.Status != FleetMaintenance {
		return false
	}
	if a.MaintenanceUntil != nil && now.Before(*a.MaintenanceUntil) {
		return false
	}
	a.Status = FleetIdle
	a.MaintenanceUntil = nil
	return true
}
