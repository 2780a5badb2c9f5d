package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"vaops/internal/model"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// systemActor names entries written by the scheduler, the CLI or the Discord bot.
const systemActor = "system"

type AuditLogResponse struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"user_id"`
	Actor      string          `json:"actor"`
	Action     string          `json:"action"`
	EntityID   string          `json:"entity_id"`
	EntityName string          `json:"entity_name,omitempty"`
	Details    json.RawMessage `json:"details"`
	CreatedAt  time.Time       `json:"created_at"`
}

type AuditFilter struct {
	Action   string
	EntityID string
	ActorID  *uuid.UUID
	Page     int
	Limit    int
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, filter AuditFilter) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) GetAuditLogs(ctx context.Context, filter AuditFilter) ([]AuditLogResponse, int64, error) {
	logs, total, err := s.repo.List(ctx, repository.AuditFilter{
		Action:   strings.ToUpper(strings.TrimSpace(filter.Action)),
		EntityID: strings.TrimSpace(filter.EntityID),
		ActorID:  filter.ActorID,
	}, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		actor := systemActor
		if l.User != nil {
			actor = l.User.Username
		}
		details := json.RawMessage(l.Details)
		if len(details) == 0 {
			details = json.RawMessage("{}")
		}
		res = append(res, AuditLogResponse{
			ID:         l.ID,
			UserID:     l.UserID,
			Actor:      actor,
			Action:     l.Action,
			EntityID:   l.EntityID,
			EntityName: l.EntityName,
			Details:    details,
			CreatedAt:  l.CreatedAt,
		})
	}
	return res, total, nil
}

// auditor writes audit rows inside the caller's transaction.
type auditor struct {
	repo repository.AuditRepository
	log  *zap.Logger
}

func (a auditor) record(ctx context.Context, actor *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	raw, err := json.Marshal(details)
	if err != nil {
		raw = []byte("{}")
	}
	entry := &model.AuditLog{
		UserID:     actor,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    datatypes.JSON(raw),
	}
	if err := a.repo.Log(ctx, entry); err != nil {
		a.log.Error("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}
