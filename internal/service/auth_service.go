package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"vaops/internal/model"
	"vaops/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	AccessTokenTTL  = 24 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// DTOs for Request validation
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name"`
	Callsign    string `json:"callsign" binding:"omitempty,max=20"`
	BaseAirport string `json:"base_airport" binding:"omitempty,len=4"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName      *string `json:"display_name" binding:"omitempty,max=255"`
	Callsign         *string `json:"callsign" binding:"omitempty,max=20"`
	BaseAirport      *string `json:"base_airport" binding:"omitempty,len=4"`
	DiscordID        *string `json:"discord_id" binding:"omitempty,max=32"`
	SimbriefUsername *string `json:"simbrief_username" binding:"omitempty,max=100"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ProfileResponse never exposes the password hash
type ProfileResponse struct {
	ID               uuid.UUID       `json:"id"`
	Username         string          `json:"username"`
	Email            string          `json:"email"`
	DisplayName      string          `json:"display_name"`
	Callsign         string          `json:"callsign"`
	BaseAirport      string          `json:"base_airport"`
	XP               int64           `json:"xp"`
	Money            int64           `json:"money"`
	TotalHours       decimal.Decimal `json:"total_hours"`
	TotalFlights     int             `json:"total_flights"`
	IsApproved       bool            `json:"is_approved"`
	DiscordID        *string         `json:"discord_id"`
	SimbriefUsername string          `json:"simbrief_username"`
	Roles            []string        `json:"roles"`
	IsAdmin          bool            `json:"is_admin"`
	CreatedAt        string          `json:"created_at"`
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*ProfileResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileResponse, error)
	ListPilots(ctx context.Context, page, limit int) ([]ProfileResponse, int64, error)
	GrantAdmin(ctx context.Context, email string) error
}

type authService struct {
	profiles      repository.ProfileRepository
	tokens        repository.RefreshTokenRepository
	registrations repository.RegistrationRepository
	bases         repository.BaseRepository
	tx            repository.TransactionManager
	secret        []byte
	log           *zap.Logger
	now           func() time.Time
}

func NewAuthService(
	profiles repository.ProfileRepository,
	tokens repository.RefreshTokenRepository,
	registrations repository.RegistrationRepository,
	bases repository.BaseRepository,
	tx repository.TransactionManager,
	secret []byte,
	log *zap.Logger,
) AuthService {
	return &authService{
		profiles:      profiles,
		tokens:        tokens,
		registrations: registrations,
		bases:         bases,
		tx:            tx,
		secret:        secret,
		log:           log,
		now:           time.Now,
	}
}

func toProfileResponse(p *model.Profile) *ProfileResponse {
	roles := make([]string, 0, len(p.Roles))
	for _, r := range p.Roles {
		roles = append(roles, r.Role)
	}
	return &ProfileResponse{
		ID:               p.ID,
		Username:         p.Username,
		Email:            p.Email,
		DisplayName:      p.DisplayName,
		Callsign:         p.Callsign,
		BaseAirport:      p.BaseAirport,
		XP:               p.XP,
		Money:            p.Money,
		TotalHours:       p.TotalHours,
		TotalFlights:     p.TotalFlights,
		IsApproved:       p.IsApproved,
		DiscordID:        p.DiscordID,
		SimbriefUsername: p.SimbriefUsername,
		Roles:            roles,
		IsAdmin:          p.HasRole(model.RoleAdmin),
		CreatedAt:        p.CreatedAt.Format(time.RFC3339),
	}
}

// Register creates an unapproved pilot and queues the registration for review.
func (s *authService) Register(ctx context.Context, req RegisterRequest) (*ProfileResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if _, err := s.profiles.GetByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username already exists", ErrConflict)
	}
	if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already exists", ErrConflict)
	}

	base := strings.ToUpper(strings.TrimSpace(req.BaseAirport))
	if base != "" {
		if err := s.checkBase(ctx, base); err != nil {
			return nil, err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}
	profile := &model.Profile{
		Username:    username,
		Email:       email,
		Password:    string(hashed),
		DisplayName: displayName,
		Callsign:    strings.ToUpper(strings.TrimSpace(req.Callsign)),
		BaseAirport: base,
		TotalHours:  decimal.Zero,
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.profiles.Create(txCtx, profile); err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		if err := s.profiles.AddRole(txCtx, profile.ID, model.RolePilot); err != nil {
			return fmt.Errorf("failed to assign role: %w", err)
		}
		if err := s.registrations.Create(txCtx, &model.RegistrationApproval{UserID: profile.ID, Status: model.StatusPending}); err != nil {
			return fmt.Errorf("failed to queue registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("pilot registered", zap.String("user_id", profile.ID.String()), zap.String("username", username))
	profile.Roles = []model.UserRole{{UserID: profile.ID, Role: model.RolePilot}}
	return toProfileResponse(profile), nil
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	profile, err := s.profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.Password), []byte(req.Password)); err != nil {
		return nil, ErrUnauthorized
	}
	return s.issueTokens(ctx, profile)
}

// Refresh rotates the refresh token and re-reads the profile, so approval and role
// changes take effect on the next refresh.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	stored, err := s.tokens.FindValid(ctx, refreshToken, s.now())
	if err != nil {
		return nil, ErrUnauthorized
	}
	profile, err := s.profiles.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if err := s.tokens.Delete(ctx, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return s.issueTokens(ctx, profile)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Delete(ctx, refreshToken)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*ProfileResponse, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound("profile", err)
	}
	return toProfileResponse(profile), nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*ProfileResponse, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound("profile", err)
	}

	if req.DisplayName != nil {
		profile.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Callsign != nil {
		profile.Callsign = strings.ToUpper(strings.TrimSpace(*req.Callsign))
	}
	if req.BaseAirport != nil {
		base := strings.ToUpper(strings.TrimSpace(*req.BaseAirport))
		if err := s.checkBase(ctx, base); err != nil {
			return nil, err
		}
		profile.BaseAirport = base
	}
	if req.DiscordID != nil {
		id := strings.TrimSpace(*req.DiscordID)
		if id == "" {
			profile.DiscordID = nil
		} else {
			if other, err := s.profiles.GetByDiscordID(ctx, id); err == nil && other.ID != profile.ID {
				return nil, fmt.Errorf("%w: discord account already linked to another pilot", ErrConflict)
			}
			profile.DiscordID = &id
		}
	}
	if req.SimbriefUsername != nil {
		profile.SimbriefUsername = strings.TrimSpace(*req.SimbriefUsername)
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return toProfileResponse(profile), nil
}

func (s *authService) ListPilots(ctx context.Context, page, limit int) ([]ProfileResponse, int64, error) {
	profiles, total, err := s.profiles.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	res := make([]ProfileResponse, 0, len(profiles))
	for i := range profiles {
		res = append(res, *toProfileResponse(&profiles[i]))
	}
	return res, total, nil
}

// GrantAdmin gives the admin role and approves the account. Used by the CLI to bootstrap.
func (s *authService) GrantAdmin(ctx context.Context, email string) error {
	profile, err := s.profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return notFound("profile", err)
	}
	return s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.profiles.AddRole(txCtx, profile.ID, model.RoleAdmin); err != nil {
			return err
		}
		return s.profiles.SetApproved(txCtx, profile.ID, true)
	})
}

func (s *authService) checkBase(ctx context.Context, icao string) error {
	base, err := s.bases.FindByICAO(ctx, icao)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return validation("unknown base %s", icao)
		}
		return err
	}
	if !base.IsActive {
		return validation("base %s is not active", icao)
	}
	return nil
}

func (s *authService) issueTokens(ctx context.Context, p *model.Profile) (*TokenResponse, error) {
	role := model.RolePilot
	if p.HasRole(model.RoleAdmin) {
		role = model.RoleAdmin
	}

	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      p.ID.String(),
		"role":     role,
		"approved": p.IsApproved,
		"iat":      now.Unix(),
		"exp":      now.Add(AccessTokenTTL).Unix(),
	})
	access, err := token.SignedString(s.secret)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	refresh, err := randomToken()
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Create(ctx, &model.RefreshToken{
		UserID:    p.ID,
		Token:     refresh,
		ExpiresAt: now.Add(RefreshTokenTTL),
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(AccessTokenTTL.Seconds()),
	}, nil
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
