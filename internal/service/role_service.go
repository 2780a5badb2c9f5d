package service

import (
	"context"
	"fmt"

	"vaops/internal/model"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// --- DTOs ---

type RoleGrantRequest struct {
	Role string `json:"role" binding:"required"`
}

type UserRolesResponse struct {
	UserID uuid.UUID `json:"user_id"`
	Roles  []string  `json:"roles"`
}

// --- Interface ---

// RoleService grants and revokes the built-in roles. Access tokens carry the role, so a change
// takes effect on the pilot's next login or refresh.
type RoleService interface {
	ListRoles() []model.RoleInfo
	UserRoles(ctx context.Context, userID uuid.UUID) (*UserRolesResponse, error)
	Grant(ctx context.Context, adminID, userID uuid.UUID, req RoleGrantRequest) (*UserRolesResponse, error)
	Revoke(ctx context.Context, adminID, userID uuid.UUID, role string) (*UserRolesResponse, error)
}

type roleService struct {
	roles    repository.RoleRepository
	profiles repository.ProfileRepository
	tx       repository.TransactionManager
	audit    auditor
}

func NewRoleService(roles repository.RoleRepository, profiles repository.ProfileRepository, audits repository.AuditRepository, tx repository.TransactionManager, log *zap.Logger) RoleService {
	return &roleService{
		roles:    roles,
		profiles: profiles,
		tx:       tx,
		audit:    auditor{repo: audits, log: log},
	}
}

// --- Implementation ---

func (s *roleService) ListRoles() []model.RoleInfo {
	return model.Roles
}

func (s *roleService) UserRoles(ctx context.Context, userID uuid.UUID) (*UserRolesResponse, error) {
	if _, err := s.profiles.GetByID(ctx, userID); err != nil {
		return nil, notFound("pilot", err)
	}
	return s.load(ctx, userID)
}

func (s *roleService) Grant(ctx context.Context, adminID, userID uuid.UUID, req RoleGrantRequest) (*UserRolesResponse, error) {
	if !model.IsKnownRole(req.Role) {
		return nil, validation("unknown role %q", req.Role)
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.profiles.GetByID(txCtx, userID)
		if err != nil {
			return notFound("pilot", err)
		}
		if err := s.roles.Grant(txCtx, userID, req.Role); err != nil {
			return fmt.Errorf("failed to grant role: %w", err)
		}
		return s.audit.record(txCtx, &adminID, model.ActionGrantRole, userID.String(), p.Username, map[string]interface{}{
			"role": req.Role,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID)
}

func (s *roleService) Revoke(ctx context.Context, adminID, userID uuid.UUID, role string) (*UserRolesResponse, error) {
	if !model.IsKnownRole(role) {
		return nil, validation("unknown role %q", role)
	}
	if role == model.RoleAdmin && adminID == userID {
		return nil, fmt.Errorf("%w: cannot revoke your own admin role", ErrForbidden)
	}

	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.profiles.GetByID(txCtx, userID)
		if err != nil {
			return notFound("pilot", err)
		}
		grants, err := s.roles.ListByUser(txCtx, userID)
		if err != nil {
			return fmt.Errorf("failed to fetch roles: %w", err)
		}
		if !holds(grants, role) {
			return fmt.Errorf("role grant %w", ErrNotFound)
		}
		if role == model.RoleAdmin {
			holders, err := s.roles.CountHoldersForUpdate(txCtx, model.RoleAdmin)
			if err != nil {
				return fmt.Errorf("failed to count admins: %w", err)
			}
			if holders <= 1 {
				return fmt.Errorf("%w: the last admin cannot be demoted", ErrConflict)
			}
		}

		removed, err := s.roles.Revoke(txCtx, userID, role)
		if err != nil {
			return fmt.Errorf("failed to revoke role: %w", err)
		}
		if !removed {
			return fmt.Errorf("role grant %w", ErrNotFound)
		}
		return s.audit.record(txCtx, &adminID, model.ActionRevokeRole, userID.String(), p.Username, map[string]interface{}{
			"role": role,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, userID)
}

func holds(grants []model.UserRole, role string) bool {
	for _, g := range grants {
		if g.Role == role {
			return true
		}
	}
	return false
}

func (s *roleService) load(ctx context.Context, userID uuid.UUID) (*UserRolesResponse, error) {
	grants, err := s.roles.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roles: %w", err)
	}
	res := &UserRolesResponse{UserID: userID, Roles: make([]string, 0, len(grants))}
	for _, g := range grants {
		res.Roles = append(res.Roles, g.Role)
	}
	return res, nil
}
