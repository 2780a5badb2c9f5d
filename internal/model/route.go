package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RouteCatalog is static reference data drawn from when building careers
type RouteCatalog struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FlightNumber    string    `gorm:"type:varchar(20);not null;index" json:"flight_number"`
	DepartureICAO   string    `gorm:"column:departure_icao;type:varchar(4);not null;index" json:"departure_icao"`
	ArrivalICAO     string    `gorm:"column:arrival_icao;type:varchar(4);not null;index" json:"arrival_icao"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	AircraftFamily  string    `gorm:"type:varchar(50)" json:"aircraft_family"`
	IsActive        bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (RouteCatalog) TableName() string {
	return "route_catalog"
}

func (r *RouteCatalog) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Route is a materialized, per-dispatch copy of a catalog entry (or a synthetic leg)
type Route struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FlightNumber    string     `gorm:"type:varchar(20);not null" json:"flight_number"`
	DepartureICAO   string     `gorm:"column:departure_icao;type:varchar(4);not null" json:"departure_icao"`
	ArrivalICAO     string     `gorm:"column:arrival_icao;type:varchar(4);not null" json:"arrival_icao"`
	AircraftID      *uuid.UUID `gorm:"type:uuid" json:"aircraft_id"`
	DurationMinutes int        `gorm:"not null" json:"duration_minutes"`
	DistanceNM      int        `gorm:"column:distance_nm;not null" json:"distance_nm"`
	CatalogID       *uuid.UUID `gorm:"type:uuid;index" json:"catalog_id"`
	IsSynthetic     bool       `gorm:"not null;default:false" json:"is_synthetic"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (r *Route) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Dispatch leg status values
const (
	LegAssigned         = "assigned"
	LegDispatched       = "dispatched"
	LegAwaitingApproval = "awaiting_approval"
	LegCompleted        = "completed"
)

// DispatchLeg is one segment of a pilot's career chain
type DispatchLeg struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DispatchGroupID uuid.UUID      `gorm:"type:uuid;not null;index" json:"dispatch_group_id"`
	LegNumber       int            `gorm:"not null" json:"leg_number"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	RouteID         uuid.UUID      `gorm:"type:uuid;not null" json:"route_id"`
	Route           *Route         `gorm:"foreignKey:RouteID" json:"route,omitempty"`
	AircraftID      *uuid.UUID     `gorm:"type:uuid" json:"aircraft_id"`
	Aircraft        *Aircraft      `gorm:"foreignKey:AircraftID" json:"aircraft,omitempty"`
	FleetAircraftID *uuid.UUID     `gorm:"type:uuid" json:"fleet_aircraft_id"`
	Status          string         `gorm:"type:varchar(30);not null;default:'assigned';index" json:"status"`
	OFP             datatypes.JSON `gorm:"column:ofp;type:jsonb" json:"ofp,omitempty"`
	DispatchedAt    *time.Time     `json:"dispatched_at"`
	CompletedAt     *time.Time     `json:"completed_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (l *DispatchLeg) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// IsOpen reports whether the leg still needs flying or review.
func (l *DispatchLeg) IsOpen() bool {
	return l.Status != LegCompleted
}
