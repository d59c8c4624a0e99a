package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AchievementCategory string

const (
	AchievementCategoryLearning    AchievementCategory = "learning"
	AchievementCategoryProgress    AchievementCategory = "progress"
	AchievementCategorySocial      AchievementCategory = "social"
	AchievementCategoryConsistency AchievementCategory = "consistency"
	AchievementCategoryMastery     AchievementCategory = "mastery"
	AchievementCategorySpecial     AchievementCategory = "special"
)

// AchievementTier orders achievements by difficulty, bronze through diamond.
type AchievementTier string

const (
	TierBronze   AchievementTier = "bronze"
	TierSilver   AchievementTier = "silver"
	TierGold     AchievementTier = "gold"
	TierPlatinum AchievementTier = "platinum"
	TierDiamond  AchievementTier = "diamond"
)

// Achievement is an admin-authored catalog entry. A threshold of zero means
// "not required"; an achievement is satisfied only when every non-zero
// threshold it declares is met.
type Achievement struct {
	ID          string              `gorm:"primaryKey;type:uuid;not null" json:"id"`
	Title       string              `gorm:"size:100;uniqueIndex;not null" json:"title"`
	Description string              `gorm:"type:text" json:"description"`
	Category    AchievementCategory `gorm:"type:varchar(20);index:idx_achievement_cat_active;not null" json:"category"`
	Tier        AchievementTier     `gorm:"type:varchar(20);not null;default:'bronze'" json:"tier"`

	IconURL    string `gorm:"type:text" json:"icon_url"`
	BadgeColor string `gorm:"size:7;default:'#FFD700'" json:"badge_color"`

	TokenReward decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"token_reward"`

	// Criteria thresholds; zero means the criterion does not apply.
	RequiredCourses      int64 `gorm:"not null;default:0" json:"required_courses"`
	RequiredLessons      int64 `gorm:"not null;default:0" json:"required_lessons"`
	RequiredQuizzes      int64 `gorm:"not null;default:0" json:"required_quizzes"`
	RequiredStreakDays   int64 `gorm:"not null;default:0" json:"required_streak_days"`
	RequiredTokensEarned int64 `gorm:"not null;default:0" json:"required_tokens_earned"`

	IsActive bool `gorm:"not null;default:true;index:idx_achievement_cat_active" json:"is_active"`
	IsSecret bool `gorm:"not null;default:false" json:"is_secret"`

	// MaxRecipients caps total grants; nil means unlimited. GrantCount is the
	// serialization point for the capacity check at grant time.
	MaxRecipients *int64 `json:"max_recipients,omitempty"`
	GrantCount    int64  `gorm:"not null;default:0" json:"grant_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement records that a user earned an achievement. At most one row
// may ever exist per (user, achievement); the unique index is the correctness
// backstop under concurrent evaluation.
type UserAchievement struct {
	ID            string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID        string `gorm:"type:uuid;uniqueIndex:idx_user_achievement;not null" json:"user_id"`
	AchievementID string `gorm:"type:uuid;uniqueIndex:idx_user_achievement;index;not null" json:"achievement_id"`

	Achievement *Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`

	// Reward snapshot at grant time; later catalog edits do not affect it.
	TokensAwarded decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"tokens_awarded"`

	// User stats at the moment of the grant, kept for audit.
	ProgressSnapshot map[string]any `gorm:"serializer:json" json:"progress_snapshot"`

	EarnedAt time.Time `gorm:"autoCreateTime;index" json:"earned_at"`
}

// InitialAchievements is the seed catalog installed on first boot.
var InitialAchievements = []Achievement{
	{
		Title:           "First Step",
		Description:     "Complete your first lesson",
		Category:        AchievementCategoryLearning,
		Tier:            TierBronze,
		RequiredLessons: 1,
		TokenReward:     decimal.NewFromInt(10),
		BadgeColor:      "#CD7F32",
	},
	{
		Title:           "Active Student",
		Description:     "Complete 10 lessons",
		Category:        AchievementCategoryProgress,
		Tier:            TierSilver,
		RequiredLessons: 10,
		TokenReward:     decimal.NewFromInt(50),
		BadgeColor:      "#C0C0C0",
	},
	{
		Title:           "Lesson Expert",
		Description:     "Complete 50 lessons",
		Category:        AchievementCategoryMastery,
		Tier:            TierGold,
		RequiredLessons: 50,
		TokenReward:     decimal.NewFromInt(200),
		BadgeColor:      "#FFD700",
	},
	{
		Title:           "First Assessment",
		Description:     "Pass your first quiz",
		Category:        AchievementCategoryLearning,
		Tier:            TierBronze,
		RequiredQuizzes: 1,
		TokenReward:     decimal.NewFromInt(15),
		BadgeColor:      "#CD7F32",
	},
	{
		Title:           "Quiz Master",
		Description:     "Pass 25 different quizzes",
		Category:        AchievementCategoryMastery,
		Tier:            TierGold,
		RequiredQuizzes: 25,
		TokenReward:     decimal.NewFromInt(150),
		BadgeColor:      "#FFD700",
	},
	{
		Title:           "Graduate",
		Description:     "Complete your first full course",
		Category:        AchievementCategoryLearning,
		Tier:            TierSilver,
		RequiredCourses: 1,
		TokenReward:     decimal.NewFromInt(100),
		BadgeColor:      "#C0C0C0",
	},
	{
		Title:           "Dedicated Student",
		Description:     "Complete 3 courses",
		Category:        AchievementCategoryProgress,
		Tier:            TierPlatinum,
		RequiredCourses: 3,
		TokenReward:     decimal.NewFromInt(300),
		BadgeColor:      "#E5E4E2",
	},
	{
		Title:              "Consistency",
		Description:        "Keep a 7-day study streak",
		Category:           AchievementCategoryConsistency,
		Tier:               TierSilver,
		RequiredStreakDays: 7,
		TokenReward:        decimal.NewFromInt(75),
		BadgeColor:         "#C0C0C0",
	},
	{
		Title:              "Total Discipline",
		Description:        "Keep a 30-day study streak",
		Category:           AchievementCategoryConsistency,
		Tier:               TierPlatinum,
		RequiredStreakDays: 30,
		TokenReward:        decimal.NewFromInt(500),
		BadgeColor:         "#E5E4E2",
	},
	{
		Title:                "FORE Collector",
		Description:          "Earn 1000 FORE tokens in total",
		Category:             AchievementCategoryMastery,
		Tier:                 TierGold,
		RequiredTokensEarned: 1000,
		TokenReward:          decimal.NewFromInt(100),
		BadgeColor:           "#FFD700",
	},
	{
		Title:                "FORE Millionaire",
		Description:          "Earn 10,000 FORE tokens in total",
		Category:             AchievementCategorySpecial,
		Tier:                 TierDiamond,
		RequiredTokensEarned: 10000,
		TokenReward:          decimal.NewFromInt(5000),
		BadgeColor:           "#FF6B35",
	},
	{
		Title:           "Pioneer",
		Description:     "One of the first 100 students to finish a course",
		Category:        AchievementCategorySpecial,
		Tier:            TierDiamond,
		RequiredCourses: 1,
		TokenReward:     decimal.NewFromInt(2000),
		MaxRecipients:   int64Ptr(100),
		BadgeColor:      "#FF6B35",
		IsSecret:        true,
	},
}

func int64Ptr(v int64) *int64 { return &v }
