package services

import (
	"fmt"
	"testing"

	"fore-rewards-system/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
// TranslateError is on, matching production: the services depend on
// gorm.ErrDuplicatedKey for their race backstops.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Wallet{},
		&models.Transaction{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Leaderboard{},
		&models.UserRanking{},
		&models.Reward{},
		&models.RewardRedemption{},
		&models.LessonCompletion{},
		&models.QuizPass{},
		&models.CourseCompletion{},
		&models.LearnerProfile{},
	))
	return db
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// newLearner inserts an active learner profile and returns its external ID.
func newLearner(t *testing.T, db *gorm.DB, username string) string {
	t.Helper()

	externalID := uuid.NewString()
	require.NoError(t, db.Create(&models.LearnerProfile{
		ID:             uuid.NewString(),
		ExternalUserID: externalID,
		Username:       username,
		Role:           models.RoleLearner,
		IsActive:       true,
	}).Error)
	return externalID
}

// completeLessons inserts n distinct lesson completions for the user.
func completeLessons(t *testing.T, db *gorm.DB, userID string, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		require.NoError(t, db.Create(&models.LessonCompletion{
			ID:       uuid.NewString(),
			UserID:   userID,
			LessonID: uuid.NewString(),
			CourseID: uuid.NewString(),
		}).Error)
	}
}
