package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Role names stored in user_roles
const (
	RoleAdmin = "admin"
	RolePilot = "pilot"
)

// Profile is the pilot account: credentials, career stats and wallet.
type Profile struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Username         string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email            string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password         string          `gorm:"type:varchar(255);not null" json:"-"`
	DisplayName      string          `gorm:"type:varchar(255)" json:"display_name"`
	Callsign         string          `gorm:"type:varchar(20)" json:"callsign"`
	BaseAirport      string          `gorm:"type:varchar(4);index" json:"base_airport"`
	XP               int64           `gorm:"not null;default:0" json:"xp"`
	Money            int64           `gorm:"not null;default:0" json:"money"`
	TotalHours       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_hours"`
	TotalFlights     int             `gorm:"not null;default:0" json:"total_flights"`
	IsApproved       bool            `gorm:"not null;default:false;index" json:"is_approved"`
	DiscordID        *string         `gorm:"type:varchar(32);uniqueIndex" json:"discord_id"`
	SimbriefUsername string          `gorm:"type:varchar(100)" json:"simbrief_username"`
	Roles            []UserRole      `gorm:"foreignKey:UserID" json:"roles,omitempty"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// HasRole reports whether the loaded Roles contain role.
func (p *Profile) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// UserRole grants a role to a profile
type UserRole struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_role" json:"user_id"`
	Role      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_role" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *UserRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RefreshToken stores long-lived tokens allowing pilots to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      Profile   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (t *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
