package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NOTAM priority values
const (
	NotamLow    = "low"
	NotamNormal = "normal"
	NotamHigh   = "high"
)

// Notam is an operator notice shown to pilots; Body is markdown
type Notam struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Body          string     `gorm:"type:text;not null" json:"body"`
	AirportICAO   string     `gorm:"column:airport_icao;type:varchar(4);index" json:"airport_icao"`
	Priority      string     `gorm:"type:varchar(10);not null;default:'normal'" json:"priority"`
	EffectiveFrom time.Time  `gorm:"not null;index" json:"effective_from"`
	EffectiveTo   *time.Time `gorm:"index" json:"effective_to"`
	IsActive      bool       `gorm:"not null;default:true" json:"is_active"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (n *Notam) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// Chart types
const (
	ChartAirport  = "AIRPORT"
	ChartSID      = "SID"
	ChartSTAR     = "STAR"
	ChartApproach = "APPROACH"
	ChartOther    = "OTHER"
)

// AeronauticalChart links an airport to a published chart document
type AeronauticalChart struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AirportICAO string    `gorm:"column:airport_icao;type:varchar(4);not null;index" json:"airport_icao"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	ChartType   string    `gorm:"type:varchar(20);not null" json:"chart_type"`
	URL         string    `gorm:"column:url;type:text;not null" json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *AeronauticalChart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
