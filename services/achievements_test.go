package services

import (
	"testing"

	"fore-rewards-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedAchievement(t *testing.T, db *gorm.DB, a models.Achievement) models.Achievement {
	t.Helper()

	a.ID = uuid.NewString()
	a.IsActive = true
	require.NoError(t, db.Create(&a).Error)
	return a
}

func TestAchievementGrantAtThreshold(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewAchievementService(db, ledger)
	userID := uuid.NewString()

	seedAchievement(t, db, models.Achievement{
		Title:           "Active Student",
		Tier:            models.TierSilver,
		Category:        models.AchievementCategoryProgress,
		RequiredLessons: 10,
		TokenReward:     dec(50),
	})

	// 9 lessons: not yet.
	completeLessons(t, db, userID, 9)
	grants, err := svc.EvaluateAndGrant(userID, "lesson_completed")
	require.NoError(t, err)
	assert.Empty(t, grants)

	// 10th lesson crosses the threshold.
	completeLessons(t, db, userID, 1)
	grants, err = svc.EvaluateAndGrant(userID, "lesson_completed")
	require.NoError(t, err)
	require.Len(t, grants, 1)
	assert.True(t, grants[0].TokensAwarded.Equal(dec(50)))
	assert.Equal(t, "lesson_completed", grants[0].ProgressSnapshot["activity"])

	// The reward landed in the wallet with an achievement_earned transaction.
	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&wallet).Error)
	assert.True(t, wallet.Balance.Equal(dec(50)))

	var tx models.Transaction
	require.NoError(t, db.Where("user_id = ? AND type = ?", userID, models.TxAchievementEarned).First(&tx).Error)
	assert.Contains(t, tx.Description, "Active Student")
	require.NotNil(t, tx.AchievementID)
}

func TestAchievementGrantIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewAchievementService(db, ledger)
	userID := uuid.NewString()

	seedAchievement(t, db, models.Achievement{
		Title:           "First Step",
		RequiredLessons: 1,
		TokenReward:     dec(10),
	})
	completeLessons(t, db, userID, 1)

	grants, err := svc.EvaluateAndGrant(userID, "lesson_completed")
	require.NoError(t, err)
	require.Len(t, grants, 1)

	// A second evaluation grants nothing and credits nothing.
	grants, err = svc.EvaluateAndGrant(userID, "lesson_completed")
	require.NoError(t, err)
	assert.Empty(t, grants)

	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", userID).First(&wallet).Error)
	assert.True(t, wallet.Balance.Equal(dec(10)))

	var count int64
	require.NoError(t, db.Model(&models.UserAchievement{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAchievementCriteriaAreANDed(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewAchievementService(db, ledger)
	userID := uuid.NewString()

	seedAchievement(t, db, models.Achievement{
		Title:                "Well Rounded",
		RequiredLessons:      5,
		RequiredTokensEarned: 100,
		TokenReward:          dec(30),
	})

	// Lessons satisfied, tokens not.
	completeLessons(t, db, userID, 5)
	grants, err := svc.EvaluateAndGrant(userID, "lesson_completed")
	require.NoError(t, err)
	assert.Empty(t, grants)

	// Both satisfied now.
	_, err = ledger.Credit(userID, dec(100), models.TxQuizPassed, "quiz streak", models.TransactionRefs{})
	require.NoError(t, err)
	grants, err = svc.EvaluateAndGrant(userID, "quiz_passed")
	require.NoError(t, err)
	assert.Len(t, grants, 1)
}

func TestAchievementCapacityCap(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewAchievementService(db, ledger)

	one := int64(1)
	a := seedAchievement(t, db, models.Achievement{
		Title:           "Pioneer",
		RequiredLessons: 1,
		TokenReward:     dec(100),
		MaxRecipients:   &one,
	})

	userA := uuid.NewString()
	userB := uuid.NewString()
	completeLessons(t, db, userA, 1)
	completeLessons(t, db, userB, 1)

	grants, err := svc.EvaluateAndGrant(userA, "lesson_completed")
	require.NoError(t, err)
	require.Len(t, grants, 1)

	// Capacity exhausted: second user gets nothing, silently.
	grants, err = svc.EvaluateAndGrant(userB, "lesson_completed")
	require.NoError(t, err)
	assert.Empty(t, grants)

	var reloaded models.Achievement
	require.NoError(t, db.Where("id = ?", a.ID).First(&reloaded).Error)
	assert.EqualValues(t, 1, reloaded.GrantCount)
}

func TestAchievementStreakNeverSatisfied(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewAchievementService(db, ledger)
	userID := uuid.NewString()

	seedAchievement(t, db, models.Achievement{
		Title:              "Consistency",
		RequiredStreakDays: 7,
		TokenReward:        dec(75),
	})
	completeLessons(t, db, userID, 20)

	grants, err := svc.EvaluateAndGrant(userID, "lesson_completed")
	require.NoError(t, err)
	assert.Empty(t, grants)
}

func TestAchievementCatalogHidesSecretsUntilEarned(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewAchievementService(db, ledger)
	userID := uuid.NewString()

	seedAchievement(t, db, models.Achievement{
		Title:           "Hidden Gem",
		RequiredLessons: 1,
		TokenReward:     dec(20),
		IsSecret:        true,
	})
	seedAchievement(t, db, models.Achievement{
		Title:           "Visible Goal",
		RequiredLessons: 3,
		TokenReward:     dec(10),
	})

	catalog, err := svc.Catalog(userID, "", "")
	require.NoError(t, err)
	require.Len(t, catalog, 1)
	assert.Equal(t, "Visible Goal", catalog[0].Title)
	assert.False(t, catalog[0].Earned)

	// Secrecy hides, it never blocks: earning reveals the entry.
	completeLessons(t, db, userID, 1)
	_, err = svc.EvaluateAndGrant(userID, "lesson_completed")
	require.NoError(t, err)

	catalog, err = svc.Catalog(userID, "", "")
	require.NoError(t, err)
	titles := []string{catalog[0].Title, catalog[1].Title}
	assert.Contains(t, titles, "Hidden Gem")
}

func TestAchievementProgressAnnotations(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewAchievementService(db, ledger)
	userID := uuid.NewString()

	seedAchievement(t, db, models.Achievement{
		Title:           "Lesson Expert",
		RequiredLessons: 50,
		TokenReward:     dec(200),
	})
	completeLessons(t, db, userID, 7)

	catalog, err := svc.Catalog(userID, "", "")
	require.NoError(t, err)
	require.Len(t, catalog, 1)

	progress, ok := catalog[0].Progress["lessons"].(map[string]int64)
	require.True(t, ok)
	assert.EqualValues(t, 7, progress["current"])
	assert.EqualValues(t, 50, progress["required"])
}

func TestAchievementStatsCountDistinct(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewAchievementService(db, ledger)
	userID := uuid.NewString()

	// Same quiz passed twice counts once.
	quizID := uuid.NewString()
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.QuizPass{
			ID:     uuid.NewString(),
			UserID: userID,
			QuizID: quizID,
		}).Error)
	}
	completeLessons(t, db, userID, 3)
	_, err := ledger.Credit(userID, dec(42), models.TxQuizPassed, "quiz", models.TransactionRefs{})
	require.NoError(t, err)

	stats, err := svc.Stats(userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.QuizzesPassed)
	assert.EqualValues(t, 3, stats.LessonsCompleted)
	assert.True(t, stats.TokensEarned.Equal(dec(42)))
	assert.EqualValues(t, 0, stats.StreakDays)
}
