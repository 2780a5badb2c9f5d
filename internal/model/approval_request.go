package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review status shared by registration approvals, career requests and PIREPs
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// RegistrationApproval gates a new profile until an admin reviews it.
// At most one pending row exists per user.
type RegistrationApproval struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_registration_pending,where:status = 'pending'" json:"user_id"`
	User       *Profile   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status     string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedBy *uuid.UUID `gorm:"type:uuid" json:"reviewed_by"`
	Reviewer   *Profile   `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt *time.Time `json:"reviewed_at"`
	Reason     string     `gorm:"type:text" json:"reason"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (r *RegistrationApproval) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// CareerRequest records a pilot asking for (or being given) a dispatch chain.
// At most one pending row exists per user.
type CareerRequest struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_career_pending,where:status = 'pending'" json:"user_id"`
	User            *Profile   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AircraftID      *uuid.UUID `gorm:"type:uuid" json:"aircraft_id"`
	Aircraft        *Aircraft  `gorm:"foreignKey:AircraftID" json:"aircraft,omitempty"`
	BaseICAO        string     `gorm:"type:varchar(4)" json:"base_icao"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DispatchGroupID *uuid.UUID `gorm:"type:uuid;index" json:"dispatch_group_id"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt      *time.Time `json:"reviewed_at"`
	Notes           string     `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (r *CareerRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
