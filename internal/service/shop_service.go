package service

import (
	"context"
	"fmt"
	"time"

	"vaops/internal/model"
	"vaops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PurchaseTypeRatingRequest struct {
	AircraftID uuid.UUID `json:"aircraft_id" binding:"required"`
}

type ShopItem struct {
	AircraftID uuid.UUID       `json:"aircraft_id"`
	ICAOType   string          `json:"icao_type"`
	Name       string          `json:"name"`
	Family     string          `json:"family"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Price      int64           `json:"price"`
	Owned      bool            `json:"owned"`
}

type ShopResponse struct {
	Balance int64      `json:"balance"`
	Items   []ShopItem `json:"items"`
}

type PurchaseResponse struct {
	AircraftID  uuid.UUID `json:"aircraft_id"`
	ICAOType    string    `json:"icao_type"`
	PricePaid   int64     `json:"price_paid"`
	Balance     int64     `json:"balance"`
	PurchasedAt time.Time `json:"purchased_at"`
}

type ShopService interface {
	Catalog(ctx context.Context, userID uuid.UUID) (*ShopResponse, error)
	PurchaseTypeRating(ctx context.Context, userID uuid.UUID, req PurchaseTypeRatingRequest) (*PurchaseResponse, error)
}

type shopService struct {
	aircraft repository.AircraftRepository
	ratings  repository.TypeRatingRepository
	profiles repository.ProfileRepository
	tx       repository.TransactionManager
	audit    auditor
	ledger   ledger
	log      *zap.Logger
	now      func() time.Time
}

func NewShopService(
	aircraft repository.AircraftRepository,
	ratings repository.TypeRatingRepository,
	profiles repository.ProfileRepository,
	audits repository.AuditRepository,
	wallet repository.WalletRepository,
	tx repository.TransactionManager,
	log *zap.Logger,
) ShopService {
	return &shopService{
		aircraft: aircraft,
		ratings:  ratings,
		profiles: profiles,
		tx:       tx,
		audit:    auditor{repo: audits, log: log},
		ledger:   ledger{repo: wallet},
		log:      log,
		now:      time.Now,
	}
}

func (s *shopService) Catalog(ctx context.Context, userID uuid.UUID) (*ShopResponse, error) {
	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound("profile", err)
	}
	aircraft, err := s.aircraft.List(ctx, true)
	if err != nil {
		return nil, err
	}
	owned, err := s.ratings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ownedSet := make(map[uuid.UUID]bool, len(owned))
	for _, r := range owned {
		ownedSet[r.AircraftID] = true
	}

	res := &ShopResponse{Balance: profile.Money, Items: make([]ShopItem, 0, len(aircraft))}
	for _, a := range aircraft {
		res.Items = append(res.Items, ShopItem{
			AircraftID: a.ID,
			ICAOType:   a.ICAOType,
			Name:       a.Name,
			Family:     a.Family,
			Multiplier: a.Multiplier,
			Price:      a.TypeRatingPrice,
			Owned:      ownedSet[a.ID],
		})
	}
	return res, nil
}

// PurchaseTypeRating debits the pilot's wallet. The profile row is locked so two
// purchases cannot spend the same balance.
func (s *shopService) PurchaseTypeRating(ctx context.Context, userID uuid.UUID, req PurchaseTypeRatingRequest) (*PurchaseResponse, error) {
	var out *PurchaseResponse
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		profile, err := s.profiles.GetByIDForUpdate(txCtx, userID)
		if err != nil {
			return notFound("profile", err)
		}
		ac, err := s.aircraft.FindByID(txCtx, req.AircraftID)
		if err != nil {
			return notFound("aircraft", err)
		}
		if !ac.IsActive {
			return validation("aircraft %s is not for sale", ac.ICAOType)
		}

		owned, err := s.ratings.Exists(txCtx, userID, ac.ID)
		if err != nil {
			return err
		}
		if owned {
			return fmt.Errorf("%w: type rating %s already owned", ErrConflict, ac.ICAOType)
		}
		if profile.Money < ac.TypeRatingPrice {
			return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, ac.TypeRatingPrice, profile.Money)
		}

		if err := s.profiles.AdjustMoney(txCtx, userID, -ac.TypeRatingPrice); err != nil {
			return fmt.Errorf("failed to debit wallet: %w", err)
		}
		rating := &model.TypeRating{UserID: userID, AircraftID: ac.ID, PricePaid: ac.TypeRatingPrice, PurchasedAt: s.now()}
		if err := s.ratings.Create(txCtx, rating); err != nil {
			return fmt.Errorf("failed to store type rating: %w", err)
		}
		if err := s.ledger.record(txCtx, userID, profile.Money, -ac.TypeRatingPrice, model.LedgerTypeRating, rating.ID); err != nil {
			return err
		}

		out = &PurchaseResponse{
			AircraftID:  ac.ID,
			ICAOType:    ac.ICAOType,
			PricePaid:   ac.TypeRatingPrice,
			Balance:     profile.Money - ac.TypeRatingPrice,
			PurchasedAt: rating.PurchasedAt,
		}
		return s.audit.record(txCtx, &userID, model.ActionPurchaseTypeRating, rating.ID.String(), ac.ICAOType, map[string]interface{}{
			"price": ac.TypeRatingPrice,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("type rating purchased", zap.String("user_id", userID.String()), zap.String("aircraft", out.ICAOType))
	return out, nil
}
