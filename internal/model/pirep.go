package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Pirep is a pilot's post-flight report. Rewards are filled in on approval.
// A leg carries at most one non-rejected report.
type Pirep struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *Profile         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DispatchLegID   *uuid.UUID       `gorm:"type:uuid;uniqueIndex:idx_pirep_leg_open,where:status <> 'rejected'" json:"dispatch_leg_id"`
	FlightNumber    string           `gorm:"type:varchar(20);not null" json:"flight_number"`
	DepartureICAO   string           `gorm:"column:departure_icao;type:varchar(4);not null" json:"departure_icao"`
	ArrivalICAO     string           `gorm:"column:arrival_icao;type:varchar(4);not null" json:"arrival_icao"`
	AircraftID      uuid.UUID        `gorm:"type:uuid;not null" json:"aircraft_id"`
	Aircraft        *Aircraft        `gorm:"foreignKey:AircraftID" json:"aircraft,omitempty"`
	FleetAircraftID *uuid.UUID       `gorm:"type:uuid" json:"fleet_aircraft_id"`
	FlightHours     decimal.Decimal  `gorm:"type:decimal(6,2);not null" json:"flight_hours"`
	LandingRate     int              `gorm:"not null;default:0" json:"landing_rate"`
	FuelUsed        int              `gorm:"not null;default:0" json:"fuel_used"`
	Remarks         string           `gorm:"type:text" json:"remarks"`
	Status          string           `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Multiplier      *decimal.Decimal `gorm:"type:decimal(8,4)" json:"multiplier"`
	XPEarned        int64            `gorm:"column:xp_earned;not null;default:0" json:"xp_earned"`
	MoneyEarned     int64            `gorm:"not null;default:0" json:"money_earned"`
	ReviewedBy      *uuid.UUID       `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt      *time.Time       `json:"reviewed_at"`
	RejectionReason string           `gorm:"type:text" json:"rejection_reason"`
	CreatedAt       time.Time        `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

func (p *Pirep) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
