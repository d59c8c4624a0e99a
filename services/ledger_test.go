package services

import (
	"testing"

	"fore-rewards-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerCreditDebit(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	userID := uuid.NewString()

	balance, err := ledger.Credit(userID, dec(100), models.TxLessonCompleted, "Lesson completed: Greetings", models.TransactionRefs{})
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(100)))

	balance, err = ledger.Debit(userID, dec(30), models.TxRewardPurchase, "Reward redemption: mug", models.TransactionRefs{})
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(70)))

	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&wallet).Error)
	assert.True(t, wallet.Balance.Equal(dec(70)))
	assert.True(t, wallet.TotalEarned.Equal(dec(100)))
	assert.True(t, wallet.TotalSpent.Equal(dec(30)))
	// Conservation: balance always equals total_earned - total_spent.
	assert.True(t, wallet.Balance.Equal(wallet.TotalEarned.Sub(wallet.TotalSpent)))
}

func TestLedgerRejectsOverdraft(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	userID := uuid.NewString()

	_, err := ledger.Credit(userID, dec(100), models.TxQuizPassed, "Quiz passed: Tenses", models.TransactionRefs{})
	require.NoError(t, err)

	_, err = ledger.Debit(userID, dec(1000), models.TxRewardPurchase, "too expensive", models.TransactionRefs{})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Nothing changed and no transaction was appended.
	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&wallet).Error)
	assert.True(t, wallet.Balance.Equal(dec(100)))

	var count int64
	require.NoError(t, db.Model(&models.Transaction{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLedgerRejectsNonPositiveAmounts(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	userID := uuid.NewString()

	_, err := ledger.Credit(userID, dec(0), models.TxDailyLogin, "zero", models.TransactionRefs{})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ledger.Credit(userID, dec(-5), models.TxDailyLogin, "negative", models.TransactionRefs{})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ledger.Debit(userID, dec(-5), models.TxRewardPurchase, "negative", models.TransactionRefs{})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestLedgerTransactionChain(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	userID := uuid.NewString()

	_, err := ledger.Credit(userID, dec(50), models.TxLessonCompleted, "lesson 1", models.TransactionRefs{})
	require.NoError(t, err)
	_, err = ledger.Credit(userID, dec(25), models.TxQuizPassed, "quiz 1", models.TransactionRefs{})
	require.NoError(t, err)
	_, err = ledger.Debit(userID, dec(40), models.TxRewardPurchase, "redeem", models.TransactionRefs{})
	require.NoError(t, err)

	var txs []models.Transaction
	require.NoError(t, db.Where("user_id = ?", userID).Order("created_at ASC").Find(&txs).Error)
	require.Len(t, txs, 3)

	// Debits carry negative amounts; each BalanceAfter is the running sum.
	running := dec(0)
	for _, tx := range txs {
		running = running.Add(tx.Amount)
		assert.True(t, tx.BalanceAfter.Equal(running), "balance_after mismatch on %s", tx.Description)
	}

	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&wallet).Error)
	assert.True(t, wallet.Balance.Equal(running))
	assert.True(t, txs[2].Amount.Equal(dec(-40)))
}

func TestLedgerGetOrCreateWalletIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	userID := uuid.NewString()

	w1, err := ledger.GetOrCreateWallet(userID)
	require.NoError(t, err)
	w2, err := ledger.GetOrCreateWallet(userID)
	require.NoError(t, err)
	assert.Equal(t, w1.ID, w2.ID)
	assert.True(t, w1.Balance.IsZero())

	var count int64
	require.NoError(t, db.Model(&models.Wallet{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestLedgerAvailableBalanceWithFrozenAmount(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	userID := uuid.NewString()

	_, err := ledger.Credit(userID, dec(100), models.TxCourseCompleted, "course", models.TransactionRefs{})
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("frozen_amount", dec(60)).Error)

	available, err := ledger.AvailableBalance(userID)
	require.NoError(t, err)
	assert.True(t, available.Equal(dec(40)))

	// Debits are checked against the available balance, not the raw balance.
	_, err = ledger.Debit(userID, dec(50), models.TxRewardPurchase, "redeem", models.TransactionRefs{})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = ledger.Debit(userID, dec(40), models.TxRewardPurchase, "redeem", models.TransactionRefs{})
	assert.NoError(t, err)
}

func TestLedgerAvailableBalanceNoWallet(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)

	available, err := ledger.AvailableBalance(uuid.NewString())
	require.NoError(t, err)
	assert.True(t, available.IsZero())
}

func TestLedgerTransactionsFilterAndPagination(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	userID := uuid.NewString()

	for i := 0; i < 5; i++ {
		_, err := ledger.Credit(userID, dec(10), models.TxLessonCompleted, "lesson", models.TransactionRefs{})
		require.NoError(t, err)
	}
	_, err := ledger.Credit(userID, dec(20), models.TxQuizPassed, "quiz", models.TransactionRefs{})
	require.NoError(t, err)

	txs, total, err := ledger.Transactions(userID, models.TxLessonCompleted, 1, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Len(t, txs, 3)

	txs, total, err = ledger.Transactions(userID, "", 1, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 6, total)
	assert.Len(t, txs, 6)
}

func TestLedgerAdminAdjust(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	userID := uuid.NewString()
	adminID := uuid.NewString()

	balance, err := ledger.AdminAdjust(userID, dec(500), "welcome bonus", adminID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(500)))

	balance, err = ledger.AdminAdjust(userID, dec(-200), "correction", adminID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(dec(300)))

	var txs []models.Transaction
	require.NoError(t, db.Where("user_id = ?", userID).Order("created_at ASC").Find(&txs).Error)
	require.Len(t, txs, 2)
	assert.Equal(t, models.TxAdminBonus, txs[0].Type)
	assert.Equal(t, models.TxAdjustment, txs[1].Type)
	require.NotNil(t, txs[0].CreatedByAdmin)
	assert.Equal(t, adminID, *txs[0].CreatedByAdmin)
}

func TestLedgerEconomyStats(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)

	userA := uuid.NewString()
	userB := uuid.NewString()
	_, err := ledger.Credit(userA, dec(300), models.TxCourseCompleted, "course", models.TransactionRefs{})
	require.NoError(t, err)
	_, err = ledger.Credit(userB, dec(100), models.TxLessonCompleted, "lesson", models.TransactionRefs{})
	require.NoError(t, err)

	stats, err := ledger.Stats()
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalWallets)
	assert.EqualValues(t, 2, stats.TotalTransactions)
	assert.True(t, stats.TokensInCirculation.Equal(dec(400)))
	require.NotEmpty(t, stats.TopEarners)
	assert.Equal(t, userA, stats.TopEarners[0].UserID)
}
