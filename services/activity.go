package services

import (
	"log"

	"fore-rewards-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ActivityService is the orchestration point between learning activity and
// rewards. Each hook records the activity row, credits the ledger when the
// content carries a token reward, then re-evaluates achievements. The credit
// is load-bearing and its failure surfaces to the caller; achievement
// evaluation is best-effort and only logged.
type ActivityService struct {
	DB           *gorm.DB
	Ledger       *LedgerService
	Achievements *AchievementService
}

func NewActivityService(db *gorm.DB, ledger *LedgerService, achievements *AchievementService) *ActivityService {
	return &ActivityService{DB: db, Ledger: ledger, Achievements: achievements}
}

// ActivityResult reports what a hook did for the triggering user.
type ActivityResult struct {
	TokensAwarded   decimal.Decimal          `json:"tokens_awarded"`
	NewBalance      decimal.Decimal          `json:"new_balance"`
	NewAchievements []models.UserAchievement `json:"new_achievements"`
}

// OnLessonCompleted records a lesson completion reported by the progress
// subsystem. The token reward and title come with the event; content metadata
// is owned elsewhere.
func (s *ActivityService) OnLessonCompleted(userID, lessonID, courseID, title string, reward decimal.Decimal) (*ActivityResult, error) {
	if err := s.DB.Create(&models.LessonCompletion{
		ID:       uuid.NewString(),
		UserID:   userID,
		LessonID: lessonID,
		CourseID: courseID,
	}).Error; err != nil {
		return nil, err
	}

	return s.settle(userID, reward, models.TxLessonCompleted,
		"Lesson completed: "+title,
		models.TransactionRefs{LessonID: &lessonID, CourseID: &courseID},
		"lesson_completed")
}

// OnQuizPassed records a passed quiz.
func (s *ActivityService) OnQuizPassed(userID, quizID, lessonID, courseID, title string, reward decimal.Decimal) (*ActivityResult, error) {
	if err := s.DB.Create(&models.QuizPass{
		ID:       uuid.NewString(),
		UserID:   userID,
		QuizID:   quizID,
		LessonID: lessonID,
		CourseID: courseID,
	}).Error; err != nil {
		return nil, err
	}

	refs := models.TransactionRefs{QuizID: &quizID, CourseID: &courseID}
	if lessonID != "" {
		refs.LessonID = &lessonID
	}
	return s.settle(userID, reward, models.TxQuizPassed,
		"Quiz passed: "+title, refs, "quiz_passed")
}

// OnCourseCompleted records a course completion.
func (s *ActivityService) OnCourseCompleted(userID, courseID, title string, reward decimal.Decimal) (*ActivityResult, error) {
	if err := s.DB.Create(&models.CourseCompletion{
		ID:       uuid.NewString(),
		UserID:   userID,
		CourseID: courseID,
	}).Error; err != nil {
		return nil, err
	}

	return s.settle(userID, reward, models.TxCourseCompleted,
		"Course completed: "+title,
		models.TransactionRefs{CourseID: &courseID},
		"course_completed")
}

// OnDailyLogin credits the daily login bonus. The caller (the session
// subsystem) is responsible for firing this at most once per day per user.
func (s *ActivityService) OnDailyLogin(userID string, reward decimal.Decimal) (*ActivityResult, error) {
	return s.settle(userID, reward, models.TxDailyLogin,
		"Daily login bonus",
		models.TransactionRefs{},
		"daily_login")
}

func (s *ActivityService) settle(userID string, reward decimal.Decimal, txType models.TransactionType, description string, refs models.TransactionRefs, hint string) (*ActivityResult, error) {
	result := &ActivityResult{
		TokensAwarded: decimal.Zero,
		NewBalance:    decimal.Zero,
	}

	if reward.IsPositive() {
		balance, err := s.Ledger.Credit(userID, reward, txType, description, refs)
		if err != nil {
			return nil, err
		}
		result.TokensAwarded = reward
		result.NewBalance = balance
	} else {
		balance, err := s.Ledger.AvailableBalance(userID)
		if err != nil {
			return nil, err
		}
		result.NewBalance = balance
	}

	grants, err := s.Achievements.EvaluateAndGrant(userID, hint)
	if err != nil {
		// The triggering activity already settled; a broken evaluation must
		// not undo it.
		log.Printf("[ACTIVITY] achievement evaluation for %s after %s failed: %v", userID, hint, err)
	}
	result.NewAchievements = grants

	return result, nil
}
