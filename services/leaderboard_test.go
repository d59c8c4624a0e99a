package services

import (
	"sort"
	"testing"
	"time"

	"fore-rewards-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedBoard(t *testing.T, db *gorm.DB, b models.Leaderboard) models.Leaderboard {
	t.Helper()

	b.ID = uuid.NewString()
	b.IsActive = true
	if b.MaxPositions == 0 {
		b.MaxPositions = 100
	}
	require.NoError(t, db.Create(&b).Error)
	return b
}

func TestPeriodStart(t *testing.T) {
	// A Wednesday.
	now := time.Date(2026, time.August, 26, 15, 30, 0, 0, time.UTC)

	daily := models.PeriodDaily.Start(now)
	require.NotNil(t, daily)
	assert.Equal(t, time.Date(2026, time.August, 26, 0, 0, 0, 0, time.UTC), *daily)

	weekly := models.PeriodWeekly.Start(now)
	require.NotNil(t, weekly)
	assert.Equal(t, time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC), *weekly)
	assert.Equal(t, time.Monday, weekly.Weekday())

	monthly := models.PeriodMonthly.Start(now)
	require.NotNil(t, monthly)
	assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), *monthly)

	assert.Nil(t, models.PeriodAllTime.Start(now))

	// A Monday maps to itself.
	monday := time.Date(2026, time.August, 24, 8, 0, 0, 0, time.UTC)
	weekly = models.PeriodWeekly.Start(monday)
	assert.Equal(t, time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC), *weekly)
}

func TestRecomputeDensePositionsAndTiebreak(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewLeaderboardService(db, ledger)

	board := seedBoard(t, db, models.Leaderboard{
		Title:    "Lesson Ranking",
		Category: models.CategoryLessonsCompleted,
		Period:   models.PeriodAllTime,
	})

	userA := newLearner(t, db, "alice")
	userB := newLearner(t, db, "bob")
	userC := newLearner(t, db, "carol")
	userD := newLearner(t, db, "dave")

	completeLessons(t, db, userA, 3)
	completeLessons(t, db, userB, 2)
	completeLessons(t, db, userC, 2)
	// userD has zero lessons and must not appear.

	require.NoError(t, svc.Recompute(&board))

	rankings, err := svc.Rankings(board.ID, 0)
	require.NoError(t, err)
	require.Len(t, rankings, 3)

	assert.Equal(t, userA, rankings[0].UserID)
	assert.Equal(t, 1, rankings[0].Position)
	assert.Equal(t, 2, rankings[1].Position)
	assert.Equal(t, 3, rankings[2].Position)

	// Equal scores break ties by user ID ascending.
	tied := []string{userB, userC}
	sort.Strings(tied)
	assert.Equal(t, tied[0], rankings[1].UserID)
	assert.Equal(t, tied[1], rankings[2].UserID)

	for _, r := range rankings {
		assert.NotEqual(t, userD, r.UserID)
	}

	// Determinism: recomputing over identical activity yields identical rankings.
	require.NoError(t, svc.Recompute(&board))
	again, err := svc.Rankings(board.ID, 0)
	require.NoError(t, err)
	require.Len(t, again, 3)
	for i := range rankings {
		assert.Equal(t, rankings[i].UserID, again[i].UserID)
		assert.Equal(t, rankings[i].Position, again[i].Position)
		assert.True(t, rankings[i].Score.Equal(again[i].Score))
	}

	var reloaded models.Leaderboard
	require.NoError(t, db.Where("id = ?", board.ID).First(&reloaded).Error)
	assert.NotNil(t, reloaded.LastUpdated)
}

func TestRecomputeTruncatesToMaxPositions(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewLeaderboardService(db, ledger)

	board := seedBoard(t, db, models.Leaderboard{
		Title:        "Top Two",
		Category:     models.CategoryLessonsCompleted,
		Period:       models.PeriodAllTime,
		MaxPositions: 2,
	})

	for i := 0; i < 4; i++ {
		userID := newLearner(t, db, uuid.NewString()[:8])
		completeLessons(t, db, userID, i+1)
	}

	require.NoError(t, svc.Recompute(&board))

	rankings, err := svc.Rankings(board.ID, 0)
	require.NoError(t, err)
	assert.Len(t, rankings, 2)
}

func TestRecomputeExcludesNonLearners(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewLeaderboardService(db, ledger)

	board := seedBoard(t, db, models.Leaderboard{
		Title:    "Learners Only",
		Category: models.CategoryLessonsCompleted,
		Period:   models.PeriodAllTime,
	})

	learner := newLearner(t, db, "learner")
	completeLessons(t, db, learner, 2)

	teacherID := uuid.NewString()
	require.NoError(t, db.Create(&models.LearnerProfile{
		ID:             uuid.NewString(),
		ExternalUserID: teacherID,
		Username:       "teacher",
		Role:           "teacher",
		IsActive:       true,
	}).Error)
	completeLessons(t, db, teacherID, 10)

	require.NoError(t, svc.Recompute(&board))

	rankings, err := svc.Rankings(board.ID, 0)
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	assert.Equal(t, learner, rankings[0].UserID)
}

func TestRecomputeForeTokensAllTime(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewLeaderboardService(db, ledger)

	board := seedBoard(t, db, models.Leaderboard{
		Title:    "Token Ranking",
		Category: models.CategoryForeTokens,
		Period:   models.PeriodAllTime,
	})

	userA := newLearner(t, db, "alice")
	userB := newLearner(t, db, "bob")

	_, err := ledger.Credit(userA, dec(300), models.TxCourseCompleted, "course", models.TransactionRefs{})
	require.NoError(t, err)
	_, err = ledger.Credit(userB, dec(500), models.TxCourseCompleted, "course", models.TransactionRefs{})
	require.NoError(t, err)
	// Spending does not reduce the earnings score.
	_, err = ledger.Debit(userB, dec(450), models.TxRewardPurchase, "redeem", models.TransactionRefs{})
	require.NoError(t, err)

	require.NoError(t, svc.Recompute(&board))

	rankings, err := svc.Rankings(board.ID, 0)
	require.NoError(t, err)
	require.Len(t, rankings, 2)
	assert.Equal(t, userB, rankings[0].UserID)
	assert.True(t, rankings[0].Score.Equal(dec(500)))
}

func TestRecomputePositionalRewards(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewLeaderboardService(db, ledger)

	board := seedBoard(t, db, models.Leaderboard{
		Title:             "Prize Board",
		Category:          models.CategoryLessonsCompleted,
		Period:            models.PeriodAllTime,
		FirstPlaceReward:  dec(200),
		SecondPlaceReward: dec(150),
		ThirdPlaceReward:  dec(100),
	})

	for i := 0; i < 4; i++ {
		userID := newLearner(t, db, uuid.NewString()[:8])
		completeLessons(t, db, userID, 10-i)
	}

	require.NoError(t, svc.Recompute(&board))

	rankings, err := svc.Rankings(board.ID, 0)
	require.NoError(t, err)
	require.Len(t, rankings, 4)
	assert.True(t, rankings[0].RewardAmount.Equal(dec(200)))
	assert.True(t, rankings[1].RewardAmount.Equal(dec(150)))
	assert.True(t, rankings[2].RewardAmount.Equal(dec(100)))
	assert.True(t, rankings[3].RewardAmount.IsZero())
}

func TestClaimRewardIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewLeaderboardService(db, ledger)

	board := seedBoard(t, db, models.Leaderboard{
		Title:            "Claim Board",
		Category:         models.CategoryLessonsCompleted,
		Period:           models.PeriodAllTime,
		FirstPlaceReward: dec(200),
	})

	winner := newLearner(t, db, "winner")
	completeLessons(t, db, winner, 5)
	require.NoError(t, svc.Recompute(&board))

	rankings, err := svc.Rankings(board.ID, 0)
	require.NoError(t, err)
	require.Len(t, rankings, 1)

	claimed, err := svc.ClaimReward(rankings[0].ID, winner)
	require.NoError(t, err)
	assert.True(t, claimed)

	// Second claim is a no-op.
	claimed, err = svc.ClaimReward(rankings[0].ID, winner)
	require.NoError(t, err)
	assert.False(t, claimed)

	var wallet models.Wallet
	require.NoError(t, db.Where("user_id = ?", winner).First(&wallet).Error)
	assert.True(t, wallet.Balance.Equal(dec(200)))

	var txCount int64
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ?", winner, models.TxAdminBonus).
		Count(&txCount).Error)
	assert.EqualValues(t, 1, txCount)
}

func TestClaimRewardWrongUser(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewLeaderboardService(db, ledger)

	board := seedBoard(t, db, models.Leaderboard{
		Title:            "Someone Else's Board",
		Category:         models.CategoryLessonsCompleted,
		Period:           models.PeriodAllTime,
		FirstPlaceReward: dec(100),
	})

	winner := newLearner(t, db, "winner")
	completeLessons(t, db, winner, 1)
	require.NoError(t, svc.Recompute(&board))

	rankings, err := svc.Rankings(board.ID, 0)
	require.NoError(t, err)
	require.Len(t, rankings, 1)

	_, err = svc.ClaimReward(rankings[0].ID, uuid.NewString())
	assert.ErrorIs(t, err, ErrRankingNotFound)
}

func TestRecomputeAllSkipsStreakBoards(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerService(db)
	svc := NewLeaderboardService(db, ledger)

	seedBoard(t, db, models.Leaderboard{
		Title:    "Streak Board",
		Category: models.CategoryStreakDays,
		Period:   models.PeriodAllTime,
	})
	lessons := seedBoard(t, db, models.Leaderboard{
		Title:    "Lesson Board",
		Category: models.CategoryLessonsCompleted,
		Period:   models.PeriodAllTime,
	})

	learner := newLearner(t, db, "learner")
	completeLessons(t, db, learner, 1)

	updated, err := svc.RecomputeAll()
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	// Streak scores are all zero, so the streak board stays empty.
	var count int64
	require.NoError(t, db.Model(&models.UserRanking{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	rankings, err := svc.Rankings(lessons.ID, 0)
	require.NoError(t, err)
	assert.Len(t, rankings, 1)
}
