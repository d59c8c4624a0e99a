package services

import (
	"errors"
	"strings"
	"time"

	"fore-rewards-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RedemptionService converts wallet balance into claims against the finite
// reward catalog. The debit, the redemption row, the stock decrement, and
// the redeemed counter move in one atomic unit — a user is never charged
// without a redemption record, and never the other way around.
type RedemptionService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewRedemptionService(db *gorm.DB, ledger *LedgerService) *RedemptionService {
	return &RedemptionService{DB: db, Ledger: ledger}
}

// DeliveryInfo is what the user supplies for physically shipped rewards.
type DeliveryInfo struct {
	Address string `json:"delivery_address"`
	Phone   string `json:"delivery_phone"`
}

// Redeem checks the preconditions in order (first failure wins): active and
// in window, stock, per-user limit, balance, delivery info — then applies
// all four side effects atomically.
func (s *RedemptionService) Redeem(userID, rewardID string, delivery DeliveryInfo) (*models.RewardRedemption, error) {
	var redemption *models.RewardRedemption

	err := s.Ledger.withConflictRetry(func(tx *gorm.DB) error {
		redemption = nil
		now := time.Now()

		var reward models.Reward
		err := tx.Where("id = ?", rewardID).First(&reward).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRewardNotFound
		}
		if err != nil {
			return err
		}

		if !reward.IsAvailable(now) {
			return ErrNotAvailable
		}
		if reward.StockQuantity != nil && *reward.StockQuantity <= 0 {
			return ErrOutOfStock
		}

		if reward.MaxPerUser != nil {
			var count int64
			if err := tx.Model(&models.RewardRedemption{}).
				Where("user_id = ? AND reward_id = ? AND status <> ?", userID, reward.ID, models.RedemptionCancelled).
				Count(&count).Error; err != nil {
				return err
			}
			if count >= *reward.MaxPerUser {
				return ErrPerUserLimitReached
			}
		}

		wallet, err := s.Ledger.getOrCreateWallet(tx, userID)
		if err != nil {
			return err
		}
		if !wallet.CanSpend(reward.ForeCost) {
			return ErrInsufficientBalance
		}

		if reward.RequiresShipping && strings.TrimSpace(delivery.Address) == "" {
			return ErrMissingDeliveryInfo
		}

		// Stock reconfirmation happens in the guarded decrement: under two
		// concurrent redemptions of the last unit, exactly one update hits.
		if reward.StockQuantity != nil {
			res := tx.Model(&models.Reward{}).
				Where("id = ? AND stock_quantity > 0", reward.ID).
				Updates(map[string]any{
					"stock_quantity": gorm.Expr("stock_quantity - 1"),
					"total_redeemed": gorm.Expr("total_redeemed + 1"),
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrOutOfStock
			}
		} else {
			if err := tx.Model(&models.Reward{}).
				Where("id = ?", reward.ID).
				Update("total_redeemed", gorm.Expr("total_redeemed + 1")).Error; err != nil {
				return err
			}
		}

		if _, err := s.Ledger.DebitInTx(tx, userID, reward.ForeCost,
			models.TxRewardPurchase,
			"Reward redemption: "+reward.Title,
			models.TransactionRefs{}); err != nil {
			return err
		}

		r := models.RewardRedemption{
			ID:              uuid.NewString(),
			UserID:          userID,
			RewardID:        reward.ID,
			ForeCost:        reward.ForeCost,
			Status:          models.RedemptionPending,
			DeliveryAddress: delivery.Address,
			DeliveryPhone:   delivery.Phone,
			RedemptionCode:  newRedemptionCode(),
		}
		if err := tx.Create(&r).Error; err != nil {
			// Code collisions are rare; one fresh code is enough in practice.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				r.ID = uuid.NewString()
				r.RedemptionCode = newRedemptionCode()
				if err := tx.Create(&r).Error; err != nil {
					return err
				}
			} else {
				return err
			}
		}

		redemption = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return redemption, nil
}

// newRedemptionCode builds the short human-relayable fulfillment code:
// 8 uppercase alphanumeric characters.
func newRedemptionCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// MyRedemptions returns the user's claims, newest first.
func (s *RedemptionService) MyRedemptions(userID string, page, size int) ([]models.RewardRedemption, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}

	query := s.DB.Model(&models.RewardRedemption{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var redemptions []models.RewardRedemption
	err := query.Preload("Reward").
		Order("redeemed_at DESC").
		Limit(size).Offset((page - 1) * size).
		Find(&redemptions).Error
	return redemptions, total, err
}

// validStatusTransitions encodes the fulfillment pipeline: pending →
// processing → shipped/delivered → completed, with cancellation allowed
// before shipping.
var validStatusTransitions = map[models.RedemptionStatus][]models.RedemptionStatus{
	models.RedemptionPending:    {models.RedemptionProcessing, models.RedemptionCancelled},
	models.RedemptionProcessing: {models.RedemptionShipped, models.RedemptionDelivered, models.RedemptionCompleted, models.RedemptionCancelled},
	models.RedemptionShipped:    {models.RedemptionDelivered, models.RedemptionCompleted},
	models.RedemptionDelivered:  {models.RedemptionCompleted},
}

// UpdateStatus advances a redemption through the fulfillment pipeline
// (admin operation). Cancelling refunds the tokens and restores stock.
func (s *RedemptionService) UpdateStatus(redemptionID string, next models.RedemptionStatus, trackingCode, adminNotes string) (*models.RewardRedemption, error) {
	var updated *models.RewardRedemption

	err := s.Ledger.withConflictRetry(func(tx *gorm.DB) error {
		var r models.RewardRedemption
		if err := tx.Where("id = ?", redemptionID).Preload("Reward").First(&r).Error; err != nil {
			return err
		}

		allowed := false
		for _, to := range validStatusTransitions[r.Status] {
			if to == next {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrInvalidTransition
		}

		now := time.Now()
		fields := map[string]any{"status": next}
		if trackingCode != "" {
			fields["tracking_code"] = trackingCode
		}
		if adminNotes != "" {
			fields["admin_notes"] = adminNotes
		}
		switch next {
		case models.RedemptionProcessing:
			fields["processed_at"] = now
		case models.RedemptionCompleted:
			fields["completed_at"] = now
		}
		if err := tx.Model(&models.RewardRedemption{}).
			Where("id = ?", r.ID).Updates(fields).Error; err != nil {
			return err
		}

		if next == models.RedemptionCancelled {
			if _, err := s.Ledger.CreditInTx(tx, r.UserID, r.ForeCost,
				models.TxRefund,
				"Redemption cancelled: "+r.RedemptionCode,
				models.TransactionRefs{}); err != nil {
				return err
			}
			stock := tx.Model(&models.Reward{}).Where("id = ?", r.RewardID)
			fields := map[string]any{"total_redeemed": gorm.Expr("total_redeemed - 1")}
			if r.Reward != nil && r.Reward.StockQuantity != nil {
				fields["stock_quantity"] = gorm.Expr("stock_quantity + 1")
			}
			if err := stock.Updates(fields).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("id = ?", r.ID).Preload("Reward").First(&r).Error; err != nil {
			return err
		}
		updated = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// LookupByCode finds a redemption by its fulfillment code (admin operation).
func (s *RedemptionService) LookupByCode(code string) (*models.RewardRedemption, error) {
	var r models.RewardRedemption
	err := s.DB.Where("redemption_code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Preload("Reward").First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}
