package services

import (
	"errors"
	"log"
	"time"

	"fore-rewards-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AchievementService evaluates the fixed criteria catalog and grants each
// achievement to a user at most once. Granting is best-effort relative to the
// activity that triggered it: a failure on one achievement is logged and
// never blocks evaluation of the others.
type AchievementService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewAchievementService(db *gorm.DB, ledger *LedgerService) *AchievementService {
	return &AchievementService{DB: db, Ledger: ledger}
}

// UserStats are the cumulative counters criteria are tested against. They are
// recomputed from raw activity on every evaluation rather than maintained
// incrementally, so a missed event can never cause permanent drift.
type UserStats struct {
	CoursesCompleted int64           `json:"courses_completed"`
	LessonsCompleted int64           `json:"lessons_completed"`
	QuizzesPassed    int64           `json:"quizzes_passed"`
	TokensEarned     decimal.Decimal `json:"tokens_earned"`
	StreakDays       int64           `json:"streak_days"`
}

// Stats computes the user's cumulative activity counters.
func (s *AchievementService) Stats(userID string) (*UserStats, error) {
	stats := &UserStats{TokensEarned: decimal.Zero}

	if err := s.DB.Model(&models.CourseCompletion{}).
		Where("user_id = ?", userID).
		Distinct("course_id").Count(&stats.CoursesCompleted).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.LessonCompletion{}).
		Where("user_id = ?", userID).
		Distinct("lesson_id").Count(&stats.LessonsCompleted).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.QuizPass{}).
		Where("user_id = ?", userID).
		Distinct("quiz_id").Count(&stats.QuizzesPassed).Error; err != nil {
		return nil, err
	}

	var wallet models.Wallet
	err := s.DB.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		stats.TokensEarned = wallet.TotalEarned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// TODO: compute streak days once daily-login activity is recorded; until
	// then streak criteria can never be satisfied.
	stats.StreakDays = 0

	return stats, nil
}

// EvaluateAndGrant checks every active achievement the user does not yet hold
// and grants the satisfied ones, crediting the ledger per grant. Returns the
// new grants.
func (s *AchievementService) EvaluateAndGrant(userID, activityHint string) ([]models.UserAchievement, error) {
	stats, err := s.Stats(userID)
	if err != nil {
		return nil, err
	}

	// Catalog minus existing grants.
	var candidates []models.Achievement
	granted := s.DB.Model(&models.UserAchievement{}).
		Select("achievement_id").Where("user_id = ?", userID)
	if err := s.DB.Where("is_active = ?", true).
		Where("id NOT IN (?)", granted).
		Order("created_at ASC").
		Find(&candidates).Error; err != nil {
		return nil, err
	}

	var grants []models.UserAchievement
	for i := range candidates {
		achievement := &candidates[i]
		if !meetsCriteria(achievement, stats) {
			continue
		}

		grant, err := s.grant(userID, achievement, stats, activityHint)
		if err != nil {
			log.Printf("[ACHIEVEMENTS] grant of %q to %s failed: %v", achievement.Title, userID, err)
			continue
		}
		if grant != nil {
			grants = append(grants, *grant)
		}
	}
	return grants, nil
}

// meetsCriteria ANDs every non-zero threshold the achievement declares.
func meetsCriteria(a *models.Achievement, stats *UserStats) bool {
	if a.RequiredCourses > 0 && stats.CoursesCompleted < a.RequiredCourses {
		return false
	}
	if a.RequiredLessons > 0 && stats.LessonsCompleted < a.RequiredLessons {
		return false
	}
	if a.RequiredQuizzes > 0 && stats.QuizzesPassed < a.RequiredQuizzes {
		return false
	}
	if a.RequiredStreakDays > 0 && stats.StreakDays < a.RequiredStreakDays {
		return false
	}
	if a.RequiredTokensEarned > 0 &&
		stats.TokensEarned.LessThan(decimal.NewFromInt(a.RequiredTokensEarned)) {
		return false
	}
	return true
}

// grant inserts the UserAchievement row, enforces the recipient cap, and
// credits the token reward — all in one atomic unit. Capacity exhaustion and
// duplicate grants (a lost race) are silent no-ops, not errors.
func (s *AchievementService) grant(userID string, achievement *models.Achievement, stats *UserStats, activityHint string) (*models.UserAchievement, error) {
	var grant *models.UserAchievement

	err := s.Ledger.withConflictRetry(func(tx *gorm.DB) error {
		grant = nil

		// The grant counter on the achievement row is the serialization point
		// for the cap: the guarded increment admits at most MaxRecipients
		// grants even under concurrent evaluation.
		counter := tx.Model(&models.Achievement{})
		if achievement.MaxRecipients != nil {
			counter = counter.Where("id = ? AND grant_count < max_recipients", achievement.ID)
		} else {
			counter = counter.Where("id = ?", achievement.ID)
		}
		res := counter.Update("grant_count", gorm.Expr("grant_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errCapacityReached
		}

		ua := models.UserAchievement{
			ID:            uuid.NewString(),
			UserID:        userID,
			AchievementID: achievement.ID,
			TokensAwarded: achievement.TokenReward,
			ProgressSnapshot: map[string]any{
				"activity":          activityHint,
				"timestamp":         time.Now().UTC().Format(time.RFC3339),
				"courses_completed": stats.CoursesCompleted,
				"lessons_completed": stats.LessonsCompleted,
				"quizzes_passed":    stats.QuizzesPassed,
				"tokens_earned":     stats.TokensEarned.String(),
			},
		}
		if err := tx.Create(&ua).Error; err != nil {
			// Uniqueness on (user, achievement) is the correctness backstop:
			// a concurrent evaluation already granted it.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyGranted
			}
			return err
		}

		if achievement.TokenReward.IsPositive() {
			_, err := s.Ledger.CreditInTx(tx, userID, achievement.TokenReward,
				models.TxAchievementEarned,
				"Achievement earned: "+achievement.Title,
				models.TransactionRefs{AchievementID: &achievement.ID})
			if err != nil {
				return err
			}
		}

		grant = &ua
		return nil
	})

	if errors.Is(err, errCapacityReached) || errors.Is(err, errAlreadyGranted) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return grant, nil
}

// AchievementWithProgress annotates a catalog entry with how far the user is
// from each declared threshold.
type AchievementWithProgress struct {
	models.Achievement
	Earned   bool           `json:"earned"`
	EarnedAt *time.Time     `json:"earned_at,omitempty"`
	Progress map[string]any `json:"progress"`
}

// Catalog lists active achievements for a user. Secret achievements are
// hidden until earned; eligibility itself never depends on secrecy.
func (s *AchievementService) Catalog(userID string, category models.AchievementCategory, tier models.AchievementTier) ([]AchievementWithProgress, error) {
	query := s.DB.Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if tier != "" {
		query = query.Where("tier = ?", tier)
	}

	var achievements []models.Achievement
	if err := query.Order("category, tier, token_reward").Find(&achievements).Error; err != nil {
		return nil, err
	}

	var mine []models.UserAchievement
	if err := s.DB.Where("user_id = ?", userID).Find(&mine).Error; err != nil {
		return nil, err
	}
	earnedAt := make(map[string]time.Time, len(mine))
	for _, ua := range mine {
		earnedAt[ua.AchievementID] = ua.EarnedAt
	}

	stats, err := s.Stats(userID)
	if err != nil {
		return nil, err
	}

	out := make([]AchievementWithProgress, 0, len(achievements))
	for _, a := range achievements {
		at, earned := earnedAt[a.ID]
		if a.IsSecret && !earned {
			continue
		}

		entry := AchievementWithProgress{Achievement: a, Earned: earned, Progress: map[string]any{}}
		if earned {
			entry.EarnedAt = &at
		}
		if a.RequiredCourses > 0 {
			entry.Progress["courses"] = progressPair(stats.CoursesCompleted, a.RequiredCourses)
		}
		if a.RequiredLessons > 0 {
			entry.Progress["lessons"] = progressPair(stats.LessonsCompleted, a.RequiredLessons)
		}
		if a.RequiredQuizzes > 0 {
			entry.Progress["quizzes"] = progressPair(stats.QuizzesPassed, a.RequiredQuizzes)
		}
		if a.RequiredStreakDays > 0 {
			entry.Progress["streak_days"] = progressPair(stats.StreakDays, a.RequiredStreakDays)
		}
		if a.RequiredTokensEarned > 0 {
			entry.Progress["tokens_earned"] = map[string]any{
				"current":  stats.TokensEarned.String(),
				"required": a.RequiredTokensEarned,
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func progressPair(current, required int64) map[string]int64 {
	if current > required {
		current = required
	}
	return map[string]int64{"current": current, "required": required}
}

// MyAchievements returns the user's grants, newest first.
func (s *AchievementService) MyAchievements(userID string) ([]models.UserAchievement, error) {
	var grants []models.UserAchievement
	err := s.DB.Where("user_id = ?", userID).
		Preload("Achievement").
		Order("earned_at DESC").
		Find(&grants).Error
	return grants, err
}
