package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Aircraft is a flyable type (B738, A20N...) with its reward multiplier and type-rating price
type Aircraft struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ICAOType        string          `gorm:"column:icao_type;type:varchar(8);uniqueIndex;not null" json:"icao_type"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Family          string          `gorm:"type:varchar(50);index" json:"family"`
	Multiplier      decimal.Decimal `gorm:"type:decimal(6,2);not null;default:1" json:"multiplier"`
	TypeRatingPrice int64           `gorm:"not null;default:0" json:"type_rating_price"`
	IsActive        bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (a *Aircraft) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TypeRating is an aircraft type bought by a pilot in the shop
type TypeRating struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_type_rating_owner" json:"user_id"`
	AircraftID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_type_rating_owner" json:"aircraft_id"`
	Aircraft    *Aircraft `gorm:"foreignKey:AircraftID" json:"aircraft,omitempty"`
	PricePaid   int64     `gorm:"not null" json:"price_paid"`
	PurchasedAt time.Time `gorm:"autoCreateTime" json:"purchased_at"`
}

func (t *TypeRating) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Base is a hub airport pilots can be based at
type Base struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ICAO       string          `gorm:"column:icao;type:varchar(4);uniqueIndex;not null" json:"icao"`
	Name       string          `gorm:"type:varchar(255);not null" json:"name"`
	Multiplier decimal.Decimal `gorm:"type:decimal(6,2);not null;default:1" json:"multiplier"`
	IsActive   bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// FlightHourMultiplier is a block-time bracket used when pricing PIREPs. Bounds are inclusive.
type FlightHourMultiplier struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string          `gorm:"type:varchar(100);not null" json:"name"`
	MinHours   decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"min_hours"`
	MaxHours   decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"max_hours"`
	Multiplier decimal.Decimal `gorm:"type:decimal(6,2);not null;default:1" json:"multiplier"`
	IsActive   bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (m *FlightHourMultiplier) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
