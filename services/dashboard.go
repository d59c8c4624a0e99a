package services

import (
	"errors"

	"fore-rewards-system/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardService assembles the single-call gamification overview the
// frontend renders on the student home screen.
type DashboardService struct {
	DB           *gorm.DB
	Ledger       *LedgerService
	Achievements *AchievementService
	Leaderboards *LeaderboardService
}

func NewDashboardService(db *gorm.DB, ledger *LedgerService, achievements *AchievementService, leaderboards *LeaderboardService) *DashboardService {
	return &DashboardService{DB: db, Ledger: ledger, Achievements: achievements, Leaderboards: leaderboards}
}

type WalletSummary struct {
	Balance          decimal.Decimal `json:"balance"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	TotalEarned      decimal.Decimal `json:"total_earned"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
}

type AchievementSummary struct {
	TotalEarned int64                    `json:"total_earned"`
	ByTier      map[string]int64         `json:"by_tier"`
	Recent      []models.UserAchievement `json:"recent"`
}

type RankingSummary struct {
	Current      []models.UserRanking `json:"current"`
	BestPosition *int                 `json:"best_position,omitempty"`
}

type Dashboard struct {
	Wallet       WalletSummary             `json:"wallet"`
	Stats        UserStats                 `json:"stats"`
	Achievements AchievementSummary        `json:"achievements"`
	Rankings     RankingSummary            `json:"rankings"`
	Redemptions  int64                     `json:"redemption_count"`
	NextGoals    []AchievementWithProgress `json:"next_goals"`
}

// Build computes the full dashboard for one user.
func (s *DashboardService) Build(userID string) (*Dashboard, error) {
	d := &Dashboard{}

	var wallet models.Wallet
	err := s.DB.Where("user_id = ?", userID).First(&wallet).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	d.Wallet = WalletSummary{
		Balance:          wallet.Balance,
		AvailableBalance: wallet.AvailableBalance(),
		TotalEarned:      wallet.TotalEarned,
		TotalSpent:       wallet.TotalSpent,
	}

	stats, err := s.Achievements.Stats(userID)
	if err != nil {
		return nil, err
	}
	d.Stats = *stats

	if err := s.achievementSummary(userID, &d.Achievements); err != nil {
		return nil, err
	}

	rankings, err := s.Leaderboards.MyRankings(userID)
	if err != nil {
		return nil, err
	}
	d.Rankings.Current = rankings
	for _, r := range rankings {
		if d.Rankings.BestPosition == nil || r.Position < *d.Rankings.BestPosition {
			position := r.Position
			d.Rankings.BestPosition = &position
		}
	}

	if err := s.DB.Model(&models.RewardRedemption{}).
		Where("user_id = ?", userID).
		Count(&d.Redemptions).Error; err != nil {
		return nil, err
	}

	goals, err := s.nextGoals(userID)
	if err != nil {
		return nil, err
	}
	d.NextGoals = goals

	return d, nil
}

func (s *DashboardService) achievementSummary(userID string, out *AchievementSummary) error {
	type tierCount struct {
		Tier  string
		Count int64
	}
	var counts []tierCount
	err := s.DB.Model(&models.UserAchievement{}).
		Select("achievements.tier AS tier, COUNT(*) AS count").
		Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
		Where("user_achievements.user_id = ?", userID).
		Group("achievements.tier").
		Scan(&counts).Error
	if err != nil {
		return err
	}

	out.ByTier = make(map[string]int64, len(counts))
	for _, tc := range counts {
		out.ByTier[tc.Tier] = tc.Count
		out.TotalEarned += tc.Count
	}

	return s.DB.Where("user_id = ?", userID).
		Preload("Achievement").
		Order("earned_at DESC").
		Limit(5).
		Find(&out.Recent).Error
}

// nextGoals picks the closest unearned achievements: the ones with progress
// annotations, not yet earned, capped at three.
func (s *DashboardService) nextGoals(userID string) ([]AchievementWithProgress, error) {
	catalog, err := s.Achievements.Catalog(userID, "", "")
	if err != nil {
		return nil, err
	}

	goals := make([]AchievementWithProgress, 0, 3)
	for _, entry := range catalog {
		if entry.Earned || len(entry.Progress) == 0 {
			continue
		}
		goals = append(goals, entry)
		if len(goals) == 3 {
			break
		}
	}
	return goals, nil
}
