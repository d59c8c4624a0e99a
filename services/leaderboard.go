package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"fore-rewards-system/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LeaderboardService rebuilds ranking snapshots from raw activity and hands
// out positional rewards. Recompute is a bulk scan followed by an atomic
// replace; no lock is held across the scan, so a recompute observes a
// consistent-enough snapshot without stalling writers.
type LeaderboardService struct {
	DB     *gorm.DB
	Ledger *LedgerService
}

func NewLeaderboardService(db *gorm.DB, ledger *LedgerService) *LeaderboardService {
	return &LeaderboardService{DB: db, Ledger: ledger}
}

type userScore struct {
	UserID string
	Score  decimal.Decimal
}

// Recompute fully replaces the leaderboard's ranking set. Users scoring zero
// are dropped; the rest get dense positions 1..N (ties broken by user ID so
// reruns over identical activity produce identical rankings), truncated to
// MaxPositions, with positional rewards for the top three.
func (s *LeaderboardService) Recompute(board *models.Leaderboard) error {
	since := board.Period.Start(time.Now())

	eligible, err := s.eligibleUsers()
	if err != nil {
		return err
	}
	if len(eligible) == 0 {
		return s.replaceRankings(board, nil)
	}

	scores, err := s.collectScores(board.Category, since, eligible)
	if err != nil {
		return err
	}

	filtered := scores[:0]
	for _, us := range scores {
		if us.Score.IsPositive() {
			filtered = append(filtered, us)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if !filtered[i].Score.Equal(filtered[j].Score) {
			return filtered[i].Score.GreaterThan(filtered[j].Score)
		}
		return filtered[i].UserID < filtered[j].UserID
	})
	if board.MaxPositions > 0 && len(filtered) > board.MaxPositions {
		filtered = filtered[:board.MaxPositions]
	}

	return s.replaceRankings(board, filtered)
}

// replaceRankings swaps the snapshot in one transaction so readers never see
// a half-rebuilt leaderboard.
func (s *LeaderboardService) replaceRankings(board *models.Leaderboard, ranked []userScore) error {
	now := time.Now()
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("leaderboard_id = ?", board.ID).
			Delete(&models.UserRanking{}).Error; err != nil {
			return err
		}
		for i, us := range ranked {
			position := i + 1
			ranking := models.UserRanking{
				ID:            uuid.NewString(),
				LeaderboardID: board.ID,
				UserID:        us.UserID,
				Position:      position,
				Score:         us.Score,
				RewardAmount:  board.RewardForPosition(position),
			}
			if err := tx.Create(&ranking).Error; err != nil {
				return err
			}
		}
		return tx.Model(&models.Leaderboard{}).
			Where("id = ?", board.ID).
			Update("last_updated", now).Error
	})
}

// eligibleUsers returns the external IDs of active learners; only they can
// appear on a leaderboard.
func (s *LeaderboardService) eligibleUsers() ([]string, error) {
	var ids []string
	err := s.DB.Model(&models.LearnerProfile{}).
		Where("role = ? AND is_active = ?", models.RoleLearner, true).
		Pluck("external_user_id", &ids).Error
	return ids, err
}

// collectScores computes one scalar per user with a single aggregating query
// per category. The switch is exhaustive over LeaderboardCategory.
func (s *LeaderboardService) collectScores(category models.LeaderboardCategory, since *time.Time, eligible []string) ([]userScore, error) {
	windowed := func(q *gorm.DB, column string) *gorm.DB {
		if since != nil {
			q = q.Where(column+" >= ?", *since)
		}
		return q
	}

	var rows []userScore
	switch category {
	case models.CategoryForeTokens:
		if since == nil {
			// All-time token earnings live on the wallet itself.
			err := s.DB.Model(&models.Wallet{}).
				Select("user_id, total_earned AS score").
				Where("user_id IN ?", eligible).
				Scan(&rows).Error
			return rows, err
		}
		err := s.DB.Model(&models.Transaction{}).
			Select("user_id, SUM(amount) AS score").
			Where("user_id IN ? AND amount > 0 AND created_at >= ?", eligible, *since).
			Group("user_id").
			Scan(&rows).Error
		return rows, err

	case models.CategoryCoursesCompleted:
		q := s.DB.Model(&models.CourseCompletion{}).
			Select("user_id, COUNT(DISTINCT course_id) AS score").
			Where("user_id IN ?", eligible)
		err := windowed(q, "completed_at").Group("user_id").Scan(&rows).Error
		return rows, err

	case models.CategoryLessonsCompleted:
		q := s.DB.Model(&models.LessonCompletion{}).
			Select("user_id, COUNT(DISTINCT lesson_id) AS score").
			Where("user_id IN ?", eligible)
		err := windowed(q, "completed_at").Group("user_id").Scan(&rows).Error
		return rows, err

	case models.CategoryQuizzesPassed:
		q := s.DB.Model(&models.QuizPass{}).
			Select("user_id, COUNT(DISTINCT quiz_id) AS score").
			Where("user_id IN ?", eligible)
		err := windowed(q, "passed_at").Group("user_id").Scan(&rows).Error
		return rows, err

	case models.CategoryAchievementsEarned:
		q := s.DB.Model(&models.UserAchievement{}).
			Select("user_id, COUNT(*) AS score").
			Where("user_id IN ?", eligible)
		err := windowed(q, "earned_at").Group("user_id").Scan(&rows).Error
		return rows, err

	case models.CategoryStreakDays:
		// Streaks are a declared but not yet computed input; every score is
		// zero, so the ranking set stays empty.
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown leaderboard category %q", category)
	}
}

// RecomputeAll rebuilds every active leaderboard; one board failing does not
// stop the rest.
func (s *LeaderboardService) RecomputeAll() (int, error) {
	var boards []models.Leaderboard
	if err := s.DB.Where("is_active = ?", true).Find(&boards).Error; err != nil {
		return 0, err
	}

	updated := 0
	for i := range boards {
		if err := s.Recompute(&boards[i]); err != nil {
			log.Printf("[LEADERBOARD] recompute of %q failed: %v", boards[i].Title, err)
			continue
		}
		updated++
	}
	return updated, nil
}

// ClaimReward credits the ranking's positional reward exactly once. The
// second and later calls return false without touching the ledger.
func (s *LeaderboardService) ClaimReward(rankingID, userID string) (bool, error) {
	claimed := false
	err := s.Ledger.withConflictRetry(func(tx *gorm.DB) error {
		claimed = false

		var ranking models.UserRanking
		err := tx.Where("id = ? AND user_id = ?", rankingID, userID).
			Preload("Leaderboard").
			First(&ranking).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRankingNotFound
		}
		if err != nil {
			return err
		}
		if ranking.RewardClaimed || !ranking.RewardAmount.IsPositive() {
			return nil
		}

		// Guarded flip makes the claim idempotent even under concurrent calls.
		res := tx.Model(&models.UserRanking{}).
			Where("id = ? AND reward_claimed = ?", ranking.ID, false).
			Update("reward_claimed", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		title := ""
		if ranking.Leaderboard != nil {
			title = ranking.Leaderboard.Title
		}
		_, err = s.Ledger.CreditInTx(tx, userID, ranking.RewardAmount,
			models.TxAdminBonus,
			fmt.Sprintf("Reward for position %d in %s", ranking.Position, title),
			models.TransactionRefs{})
		if err != nil {
			return err
		}
		claimed = true
		return nil
	})
	return claimed, err
}

// Rankings returns the board's snapshot ordered by position.
func (s *LeaderboardService) Rankings(boardID string, limit int) ([]models.UserRanking, error) {
	query := s.DB.Where("leaderboard_id = ?", boardID).Order("position ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var rankings []models.UserRanking
	err := query.Find(&rankings).Error
	return rankings, err
}

// MyRankings returns the user's positions across all active leaderboards.
func (s *LeaderboardService) MyRankings(userID string) ([]models.UserRanking, error) {
	var rankings []models.UserRanking
	err := s.DB.
		Joins("JOIN leaderboards ON leaderboards.id = user_rankings.leaderboard_id AND leaderboards.is_active = ?", true).
		Where("user_rankings.user_id = ?", userID).
		Preload("Leaderboard").
		Order("user_rankings.position ASC").
		Find(&rankings).Error
	return rankings, err
}

// Boards lists leaderboards, optionally filtered.
func (s *LeaderboardService) Boards(category models.LeaderboardCategory, period models.LeaderboardPeriod) ([]models.Leaderboard, error) {
	query := s.DB.Where("is_active = ?", true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if period != "" {
		query = query.Where("period = ?", period)
	}
	var boards []models.Leaderboard
	err := query.Order("category, period").Find(&boards).Error
	return boards, err
}
