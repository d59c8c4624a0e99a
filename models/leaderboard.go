package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaderboardCategory selects what a leaderboard scores. Each category has
// exactly one scoring function in the leaderboard service; the switch over
// categories is exhaustive.
type LeaderboardCategory string

const (
	CategoryForeTokens         LeaderboardCategory = "fore_tokens"
	CategoryCoursesCompleted   LeaderboardCategory = "courses_completed"
	CategoryLessonsCompleted   LeaderboardCategory = "lessons_completed"
	CategoryQuizzesPassed      LeaderboardCategory = "quizzes_passed"
	CategoryAchievementsEarned LeaderboardCategory = "achievements_earned"
	CategoryStreakDays         LeaderboardCategory = "streak_days"
)

type LeaderboardPeriod string

const (
	PeriodDaily   LeaderboardPeriod = "daily"
	PeriodWeekly  LeaderboardPeriod = "weekly"
	PeriodMonthly LeaderboardPeriod = "monthly"
	PeriodAllTime LeaderboardPeriod = "all_time"
)

// Start returns the scoring-window start for the period, or nil for all-time.
// Weekly windows open on the most recent Monday at 00:00.
func (p LeaderboardPeriod) Start(now time.Time) *time.Time {
	switch p {
	case PeriodDaily:
		t := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return &t
	case PeriodWeekly:
		daysSinceMonday := (int(now.Weekday()) + 6) % 7
		t := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
			AddDate(0, 0, -daysSinceMonday)
		return &t
	case PeriodMonthly:
		t := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return &t
	default:
		return nil
	}
}

// Leaderboard is an admin-defined ranking over a scoring window, with
// configured token rewards for the top three positions.
type Leaderboard struct {
	ID          string              `gorm:"primaryKey;type:uuid;not null" json:"id"`
	Title       string              `gorm:"size:100;uniqueIndex;not null" json:"title"`
	Description string              `gorm:"type:text" json:"description"`
	Category    LeaderboardCategory `gorm:"type:varchar(20);index:idx_board_cat_period;not null" json:"category"`
	Period      LeaderboardPeriod   `gorm:"type:varchar(20);index:idx_board_cat_period;not null" json:"period"`

	IsActive     bool `gorm:"not null;default:true;index" json:"is_active"`
	MaxPositions int  `gorm:"not null;default:100" json:"max_positions"`

	FirstPlaceReward  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:100" json:"first_place_reward"`
	SecondPlaceReward decimal.Decimal `gorm:"type:numeric(12,2);not null;default:75" json:"second_place_reward"`
	ThirdPlaceReward  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:50" json:"third_place_reward"`

	LastUpdated *time.Time `json:"last_updated,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// RewardForPosition returns the configured token reward for a position,
// zero for anything below third place.
func (l *Leaderboard) RewardForPosition(position int) decimal.Decimal {
	switch position {
	case 1:
		return l.FirstPlaceReward
	case 2:
		return l.SecondPlaceReward
	case 3:
		return l.ThirdPlaceReward
	default:
		return decimal.Zero
	}
}

// UserRanking is one row of a leaderboard's current snapshot. Positions are
// dense 1..N with no gaps; every recompute fully replaces the previous set.
type UserRanking struct {
	ID            string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	LeaderboardID string `gorm:"type:uuid;uniqueIndex:idx_ranking_board_user;index:idx_ranking_board_pos;not null" json:"leaderboard_id"`
	UserID        string `gorm:"type:uuid;uniqueIndex:idx_ranking_board_user;index;not null" json:"user_id"`

	Leaderboard *Leaderboard `gorm:"foreignKey:LeaderboardID" json:"leaderboard,omitempty"`

	Position int             `gorm:"not null;index:idx_ranking_board_pos" json:"position"`
	Score    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"score"`

	RewardAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"reward_amount"`
	RewardClaimed bool            `gorm:"not null;default:false" json:"reward_claimed"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// InitialLeaderboards is the seed set installed on first boot.
var InitialLeaderboards = []Leaderboard{
	{
		Title:             "Weekly FORE Ranking",
		Description:       "Students who earned the most FORE tokens this week",
		Category:          CategoryForeTokens,
		Period:            PeriodWeekly,
		FirstPlaceReward:  decimal.NewFromInt(200),
		SecondPlaceReward: decimal.NewFromInt(150),
		ThirdPlaceReward:  decimal.NewFromInt(100),
	},
	{
		Title:             "Monthly FORE Ranking",
		Description:       "Students who earned the most FORE tokens this month",
		Category:          CategoryForeTokens,
		Period:            PeriodMonthly,
		FirstPlaceReward:  decimal.NewFromInt(500),
		SecondPlaceReward: decimal.NewFromInt(300),
		ThirdPlaceReward:  decimal.NewFromInt(200),
	},
	{
		Title:             "Lesson Ranking",
		Description:       "Students who completed the most lessons",
		Category:          CategoryLessonsCompleted,
		Period:            PeriodAllTime,
		FirstPlaceReward:  decimal.NewFromInt(300),
		SecondPlaceReward: decimal.NewFromInt(200),
		ThirdPlaceReward:  decimal.NewFromInt(100),
	},
	{
		Title:             "Quiz Masters",
		Description:       "Students who passed the most quizzes",
		Category:          CategoryQuizzesPassed,
		Period:            PeriodAllTime,
		FirstPlaceReward:  decimal.NewFromInt(250),
		SecondPlaceReward: decimal.NewFromInt(175),
		ThirdPlaceReward:  decimal.NewFromInt(100),
	},
	{
		Title:             "Weekly Achievement Hunt",
		Description:       "Students who earned the most achievements this week",
		Category:          CategoryAchievementsEarned,
		Period:            PeriodWeekly,
		FirstPlaceReward:  decimal.NewFromInt(300),
		SecondPlaceReward: decimal.NewFromInt(200),
		ThirdPlaceReward:  decimal.NewFromInt(100),
	},
	{
		Title:             "Active Streaks",
		Description:       "Students with the longest study streaks",
		Category:          CategoryStreakDays,
		Period:            PeriodAllTime,
		FirstPlaceReward:  decimal.NewFromInt(400),
		SecondPlaceReward: decimal.NewFromInt(250),
		ThirdPlaceReward:  decimal.NewFromInt(150),
	},
}
