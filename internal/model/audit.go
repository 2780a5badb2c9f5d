package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionApproveRegistration = "APPROVE_REGISTRATION"
	ActionRejectRegistration  = "REJECT_REGISTRATION"

	ActionCreateCareerRequest = "CREATE_CAREER_REQUEST"
	ActionAssignCareer        = "ASSIGN_CAREER"
	ActionRejectCareer        = "REJECT_CAREER_REQUEST"

	ActionApprovePirep = "APPROVE_PIREP"
	ActionRejectPirep  = "REJECT_PIREP"

	ActionPurchaseTypeRating = "PURCHASE_TYPE_RATING"
	ActionImportRoutes       = "IMPORT_ROUTE_CATALOG"

	ActionCreateFleetAircraft = "CREATE_FLEET_AIRCRAFT"
	ActionUpdateFleetAircraft = "UPDATE_FLEET_AIRCRAFT"
	ActionSetFleetStatus      = "SET_FLEET_STATUS"

	ActionGrantRole  = "GRANT_ROLE"
	ActionRevokeRole = "REVOKE_ROLE"

	ActionUpsertReference = "UPSERT_REFERENCE_DATA"
	ActionDeleteReference = "DELETE_REFERENCE_DATA"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"` // nil for scheduler / bot actions
	User       *Profile       `gorm:"foreignKey:UserID" json:"user"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string         `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string         `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    datatypes.JSON `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
