package services

import (
	"errors"
	"log"

	"fore-rewards-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService is the single writer for wallet balances and the append-only
// transaction log. Credit and Debit are terminal operations: they never
// trigger achievement checks or leaderboard updates themselves — reward
// cascades are orchestrated explicitly by the caller (see ActivityService).
type LedgerService struct {
	DB *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{DB: db}
}

// GetOrCreateWallet returns the user's wallet, creating it lazily on first use.
func (s *LedgerService) GetOrCreateWallet(userID string) (*models.Wallet, error) {
	return s.getOrCreateWallet(s.DB, userID)
}

func (s *LedgerService) getOrCreateWallet(tx *gorm.DB, userID string) (*models.Wallet, error) {
	var wallet models.Wallet
	err := tx.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = models.Wallet{
		ID:           uuid.NewString(),
		UserID:       userID,
		Balance:      decimal.Zero,
		TotalEarned:  decimal.Zero,
		TotalSpent:   decimal.Zero,
		FrozenAmount: decimal.Zero,
	}
	if err := tx.Create(&wallet).Error; err != nil {
		// Lost a creation race; the other writer's row wins.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
				return nil, err
			}
			return &wallet, nil
		}
		return nil, err
	}
	return &wallet, nil
}

// Credit adds tokens to the wallet and appends the matching transaction in
// one atomic unit. Returns the new balance.
func (s *LedgerService) Credit(userID string, amount decimal.Decimal, txType models.TransactionType, description string, refs models.TransactionRefs) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := s.withConflictRetry(func(tx *gorm.DB) error {
		var err error
		newBalance, err = s.CreditInTx(tx, userID, amount, txType, description, refs)
		return err
	})
	return newBalance, err
}

// CreditInTx is Credit running inside an existing transaction, for callers
// that must combine the credit with their own writes (grants, claims).
func (s *LedgerService) CreditInTx(tx *gorm.DB, userID string, amount decimal.Decimal, txType models.TransactionType, description string, refs models.TransactionRefs) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	wallet, err := s.getOrCreateWallet(tx, userID)
	if err != nil {
		return decimal.Zero, err
	}

	newBalance := wallet.Balance.Add(amount)
	if err := s.updateWallet(tx, wallet, map[string]any{
		"balance":      newBalance,
		"total_earned": wallet.TotalEarned.Add(amount),
	}); err != nil {
		return decimal.Zero, err
	}

	if err := s.appendTransaction(tx, userID, txType, amount, newBalance, description, refs); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// Debit removes tokens from the wallet, rejecting overdrafts against the
// available (non-frozen) balance. Returns the new balance.
func (s *LedgerService) Debit(userID string, amount decimal.Decimal, txType models.TransactionType, description string, refs models.TransactionRefs) (decimal.Decimal, error) {
	var newBalance decimal.Decimal
	err := s.withConflictRetry(func(tx *gorm.DB) error {
		var err error
		newBalance, err = s.DebitInTx(tx, userID, amount, txType, description, refs)
		return err
	})
	return newBalance, err
}

// DebitInTx is Debit running inside an existing transaction.
func (s *LedgerService) DebitInTx(tx *gorm.DB, userID string, amount decimal.Decimal, txType models.TransactionType, description string, refs models.TransactionRefs) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	wallet, err := s.getOrCreateWallet(tx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if !wallet.CanSpend(amount) {
		return decimal.Zero, ErrInsufficientBalance
	}

	newBalance := wallet.Balance.Sub(amount)
	if err := s.updateWallet(tx, wallet, map[string]any{
		"balance":     newBalance,
		"total_spent": wallet.TotalSpent.Add(amount),
	}); err != nil {
		return decimal.Zero, err
	}

	if err := s.appendTransaction(tx, userID, txType, amount.Neg(), newBalance, description, refs); err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// updateWallet applies a guarded (compare-and-swap on version) update to the
// wallet row. A lost race rolls the enclosing transaction back with
// ErrConcurrencyConflict so the retry loop can run the whole unit again.
func (s *LedgerService) updateWallet(tx *gorm.DB, wallet *models.Wallet, fields map[string]any) error {
	fields["version"] = wallet.Version + 1
	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND version = ?", wallet.ID, wallet.Version).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConcurrencyConflict
	}
	return nil
}

func (s *LedgerService) appendTransaction(tx *gorm.DB, userID string, txType models.TransactionType, amount, balanceAfter decimal.Decimal, description string, refs models.TransactionRefs) error {
	return tx.Create(&models.Transaction{
		ID:             uuid.NewString(),
		UserID:         userID,
		Type:           txType,
		Amount:         amount,
		BalanceAfter:   balanceAfter,
		Description:    description,
		CourseID:       refs.CourseID,
		LessonID:       refs.LessonID,
		QuizID:         refs.QuizID,
		AchievementID:  refs.AchievementID,
		CreatedByAdmin: refs.CreatedByAdmin,
	}).Error
}

// withConflictRetry runs fn in a transaction, retrying a bounded number of
// times when the wallet compare-and-swap loses a race.
func (s *LedgerService) withConflictRetry(fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.DB.Transaction(fn)
		if !errors.Is(err, ErrConcurrencyConflict) {
			return err
		}
		log.Printf("[LEDGER] wallet update conflict, retrying (%d/%d)", attempt+1, maxConflictRetries)
	}
	return err
}

// AvailableBalance returns balance minus frozen amount; zero for users who
// have no wallet yet.
func (s *LedgerService) AvailableBalance(userID string) (decimal.Decimal, error) {
	var wallet models.Wallet
	err := s.DB.Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return wallet.AvailableBalance(), nil
}

// Transactions returns the user's ledger history, newest first, optionally
// filtered by type.
func (s *LedgerService) Transactions(userID string, txType models.TransactionType, page, size int) ([]models.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	query := s.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if txType != "" {
		query = query.Where("type = ?", txType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []models.Transaction
	err := query.Order("created_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&txs).Error
	return txs, total, err
}

// AdminAdjust credits or debits a wallet on behalf of an administrator,
// recording who made the adjustment.
func (s *LedgerService) AdminAdjust(userID string, amount decimal.Decimal, description, adminID string) (decimal.Decimal, error) {
	refs := models.TransactionRefs{CreatedByAdmin: &adminID}
	if amount.IsNegative() {
		return s.Debit(userID, amount.Neg(), models.TxAdjustment, description, refs)
	}
	return s.Credit(userID, amount, models.TxAdminBonus, description, refs)
}

// EconomyStats is the admin overview of the token economy.
type EconomyStats struct {
	TotalWallets        int64           `json:"total_wallets"`
	TotalTransactions   int64           `json:"total_transactions"`
	TokensInCirculation decimal.Decimal `json:"tokens_in_circulation"`
	TopEarners          []models.Wallet `json:"top_earners"`
}

func (s *LedgerService) Stats() (*EconomyStats, error) {
	var stats EconomyStats

	if err := s.DB.Model(&models.Wallet{}).Count(&stats.TotalWallets).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Transaction{}).Count(&stats.TotalTransactions).Error; err != nil {
		return nil, err
	}

	var circulation decimal.NullDecimal
	if err := s.DB.Model(&models.Wallet{}).
		Select("SUM(balance)").Scan(&circulation).Error; err != nil {
		return nil, err
	}
	stats.TokensInCirculation = circulation.Decimal

	err := s.DB.Order("total_earned DESC").Limit(10).Find(&stats.TopEarners).Error
	return &stats, err
}
