package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Wallet holds a user's FORE token balance plus lifetime earn/spend totals.
// Balance is mutated only through the ledger service; the invariant
// balance == total_earned - total_spent holds after every credit/debit.
type Wallet struct {
	ID     string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID string `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"` // External user ID

	Balance      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`
	TotalEarned  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_earned"`
	TotalSpent   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_spent"`
	FrozenAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"frozen_amount"`

	// Optimistic-concurrency guard for read-modify-write on the balance.
	Version int64 `gorm:"not null;default:0" json:"-"`

	Timestamps
}

// AvailableBalance is what the user can actually spend right now.
func (w *Wallet) AvailableBalance() decimal.Decimal {
	return w.Balance.Sub(w.FrozenAmount)
}

func (w *Wallet) CanSpend(amount decimal.Decimal) bool {
	return w.AvailableBalance().GreaterThanOrEqual(amount)
}

// TransactionType classifies every ledger movement.
type TransactionType string

const (
	// Earnings
	TxLessonCompleted   TransactionType = "lesson_completed"
	TxQuizPassed        TransactionType = "quiz_passed"
	TxCourseCompleted   TransactionType = "course_completed"
	TxAchievementEarned TransactionType = "achievement_earned"
	TxDailyLogin        TransactionType = "daily_login"
	TxReferralBonus     TransactionType = "referral_bonus"
	TxAdminBonus        TransactionType = "admin_bonus"

	// Spending
	TxRewardPurchase      TransactionType = "reward_purchase"
	TxPremiumFeature      TransactionType = "premium_feature"
	TxMarketplacePurchase TransactionType = "marketplace_purchase"

	// Other
	TxTransferIn  TransactionType = "transfer_in"
	TxTransferOut TransactionType = "transfer_out"
	TxRefund      TransactionType = "refund"
	TxAdjustment  TransactionType = "adjustment"
)

// Transaction is one immutable, append-only ledger entry. Amount is signed:
// positive for credits, negative for debits. BalanceAfter snapshots the
// wallet balance immediately after the movement, so transactions ordered by
// creation time form a verifiable walk.
type Transaction struct {
	ID     string          `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID string          `gorm:"type:uuid;index:idx_tx_user_created;not null" json:"user_id"`
	Type   TransactionType `gorm:"type:varchar(30);index;not null" json:"type"`

	Amount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	BalanceAfter decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"balance_after"`
	Description  string          `gorm:"type:text" json:"description"`

	// Optional references to the originating activity.
	CourseID      *string `gorm:"type:uuid" json:"course_id,omitempty"`
	LessonID      *string `gorm:"type:uuid" json:"lesson_id,omitempty"`
	QuizID        *string `gorm:"type:uuid" json:"quiz_id,omitempty"`
	AchievementID *string `gorm:"type:uuid" json:"achievement_id,omitempty"`

	// Set when an administrator credited/debited manually.
	CreatedByAdmin *string `gorm:"type:uuid" json:"created_by_admin,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_tx_user_created,sort:desc" json:"created_at"`
}

// TransactionRefs carries the optional originating-object references for a
// ledger movement.
type TransactionRefs struct {
	CourseID       *string
	LessonID       *string
	QuizID         *string
	AchievementID  *string
	CreatedByAdmin *string
}

func (t *Transaction) IsEarning() bool {
	return t.Amount.IsPositive()
}

func (t *Transaction) IsSpending() bool {
	return t.Amount.IsNegative()
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
