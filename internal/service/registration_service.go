package service

import (
	"context"
	"fmt"
	"time"

	"vaops/internal/email"
	"vaops/internal/events"
	"vaops/internal/model"
	"vaops/internal/notify"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RegistrationFilter struct {
	Status string
	Page   int
	Limit  int
}

type ReviewRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

type RegistrationResponse struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	DisplayName  string     `json:"display_name"`
	Status       string     `json:"status"`
	ReviewedBy   *uuid.UUID `json:"reviewed_by"`
	ReviewerName string     `json:"reviewer_name"`
	ReviewedAt   *string    `json:"reviewed_at"`
	Reason       string     `json:"reason"`
	CreatedAt    string     `json:"created_at"`
}

type RegistrationService interface {
	List(ctx context.Context, filter RegistrationFilter) ([]RegistrationResponse, int64, error)
	Approve(ctx context.Context, id, reviewerID uuid.UUID) (*RegistrationResponse, error)
	Reject(ctx context.Context, id, reviewerID uuid.UUID, reason string) (*RegistrationResponse, error)
}

type registrationService struct {
	repo     repository.RegistrationRepository
	profiles repository.ProfileRepository
	tx       repository.TransactionManager
	audit    auditor
	mailer   email.Sender
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewRegistrationService(
	repo repository.RegistrationRepository,
	profiles repository.ProfileRepository,
	audits repository.AuditRepository,
	tx repository.TransactionManager,
	mailer email.Sender,
	notifier notify.Notifier,
	log *zap.Logger,
) RegistrationService {
	return &registrationService{
		repo:     repo,
		profiles: profiles,
		tx:       tx,
		audit:    auditor{repo: audits, log: log},
		mailer:   mailer,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func toRegistrationResponse(r *model.RegistrationApproval) RegistrationResponse {
	res := RegistrationResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		Status:     r.Status,
		ReviewedBy: r.ReviewedBy,
		Reason:     r.Reason,
		CreatedAt:  r.CreatedAt.Format(time.RFC3339),
	}
	if r.User != nil {
		res.Username = r.User.Username
		res.Email = r.User.Email
		res.DisplayName = r.User.DisplayName
	}
	if r.Reviewer != nil {
		res.ReviewerName = r.Reviewer.Username
	}
	if r.ReviewedAt != nil {
		t := r.ReviewedAt.Format(time.RFC3339)
		res.ReviewedAt = &t
	}
	return res
}

func (s *registrationService) List(ctx context.Context, filter RegistrationFilter) ([]RegistrationResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	rows, total, err := s.repo.List(ctx, filter.Status, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch registrations: %w", err)
	}
	res := make([]RegistrationResponse, 0, len(rows))
	for i := range rows {
		res = append(res, toRegistrationResponse(&rows[i]))
	}
	return res, total, nil
}

func (s *registrationService) Approve(ctx context.Context, id, reviewerID uuid.UUID) (*RegistrationResponse, error) {
	return s.review(ctx, id, reviewerID, model.StatusApproved, "")
}

func (s *registrationService) Reject(ctx context.Context, id, reviewerID uuid.UUID, reason string) (*RegistrationResponse, error) {
	return s.review(ctx, id, reviewerID, model.StatusRejected, reason)
}

func (s *registrationService) review(ctx context.Context, id, reviewerID uuid.UUID, status, reason string) (*RegistrationResponse, error) {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		reg, err := s.repo.FindByIDForUpdate(txCtx, id)
		if err != nil {
			return notFound("registration", err)
		}
		if reg.Status != model.StatusPending {
			return fmt.Errorf("%w: registration is already %s", ErrNotPending, reg.Status)
		}

		now := s.now()
		reg.Status = status
		reg.ReviewedBy = &reviewerID
		reg.ReviewedAt = &now
		reg.Reason = reason
		if err := s.repo.Update(txCtx, reg); err != nil {
			return fmt.Errorf("failed to update registration: %w", err)
		}

		if err := s.profiles.SetApproved(txCtx, reg.UserID, status == model.StatusApproved); err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}

		action := model.ActionApproveRegistration
		if status == model.StatusRejected {
			action = model.ActionRejectRegistration
		}
		return s.audit.record(txCtx, &reviewerID, action, reg.ID.String(), reg.UserID.String(), map[string]interface{}{
			"user_id": reg.UserID.String(),
			"reason":  reason,
		})
	})
	if err != nil {
		return nil, err
	}

	reg, err := s.repo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload registration: %w", err)
	}

	s.afterReview(ctx, reg)
	res := toRegistrationResponse(reg)
	return &res, nil
}

// afterReview mails the pilot. Delivery failures are logged only.
func (s *registrationService) afterReview(ctx context.Context, reg *model.RegistrationApproval) {
	if reg.User == nil {
		return
	}
	name := reg.User.DisplayName
	if name == "" {
		name = reg.User.Username
	}

	msg := email.RegistrationApproved(reg.User.Email, name)
	if reg.Status == model.StatusRejected {
		msg = email.RegistrationRejected(reg.User.Email, name, reg.Reason)
	} else {
		s.notifier.Notify(ctx, events.Event{Type: events.PilotApproved, Audience: reg.UserID.String(), Payload: map[string]string{
			"user_id":  reg.UserID.String(),
			"username": reg.User.Username,
		}})
	}

	if _, err := s.mailer.Send(ctx, msg); err != nil {
		s.log.Warn("registration email failed", zap.String("user_id", reg.UserID.String()), zap.Error(err))
	}
}
