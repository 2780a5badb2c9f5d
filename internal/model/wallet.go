package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger entry directions
const (
	LedgerCredit = "CREDIT"
	LedgerDebit  = "DEBIT"
)

// Ledger reasons
const (
	LedgerPirepReward = "pirep_reward"
	LedgerTypeRating  = "type_rating"
)

// WalletTransaction records one change to a pilot's money with the resulting balance.
// Amount is always positive; Type carries the direction.
type WalletTransaction struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Type         string     `gorm:"type:varchar(10);not null" json:"type"`
	Reason       string     `gorm:"type:varchar(30);not null" json:"reason"`
	ReferenceID  *uuid.UUID `gorm:"type:uuid;index" json:"reference_id"`
	Amount       int64      `gorm:"not null" json:"amount"`
	BalanceAfter int64      `gorm:"not null" json:"balance_after"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
}

func (t *WalletTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
