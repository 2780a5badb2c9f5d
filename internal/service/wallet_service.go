package service

import (
	"context"
	"fmt"

	"vaops/internal/model"
	"vaops/internal/repository"
	"vaops/pkg/pagination"

	"github.com/google/uuid"
)

type WalletResponse struct {
	Balance int64                     `json:"balance"`
	Items   []model.WalletTransaction `json:"items"`
	Total   int64                     `json:"total"`
	Page    int                       `json:"page"`
	Limit   int                       `json:"limit"`
}

type WalletService interface {
	History(ctx context.Context, userID uuid.UUID, page, limit int) (*WalletResponse, error)
}

type walletService struct {
	repo     repository.WalletRepository
	profiles repository.ProfileRepository
}

func NewWalletService(repo repository.WalletRepository, profiles repository.ProfileRepository) WalletService {
	return &walletService{repo: repo, profiles: profiles}
}

func (s *walletService) History(ctx context.Context, userID uuid.UUID, page, limit int) (*WalletResponse, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound("profile", err)
	}
	p := pagination.New(page, limit)
	items, total, err := s.repo.ListByUser(ctx, userID, p.Page, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wallet history: %w", err)
	}
	return &WalletResponse{Balance: profile.Money, Items: items, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

// ledger writes wallet entries inside the caller's transaction. The caller holds the profile row lock,
// so balance is the locked balance before delta is applied.
type ledger struct {
	repo repository.WalletRepository
}

func (l ledger) record(ctx context.Context, userID uuid.UUID, balance, delta int64, reason string, ref uuid.UUID) error {
	if delta == 0 {
		return nil
	}
	entry := &model.WalletTransaction{
		UserID:       userID,
		Type:         model.LedgerCredit,
		Reason:       reason,
		ReferenceID:  &ref,
		Amount:       delta,
		BalanceAfter: balance + delta,
	}
	if delta < 0 {
		entry.Type = model.LedgerDebit
		entry.Amount = -delta
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write wallet entry: %w", err)
	}
	return nil
}
