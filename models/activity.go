package models

import (
	"time"
)

// Activity rows are the local, queryable log of what the course/progress
// subsystem reports. The core owns only this log, not the content model;
// achievement stats and leaderboard scores are computed from it.

type LessonCompletion struct {
	ID       string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID   string `gorm:"type:uuid;index:idx_lesson_user_time;not null" json:"user_id"`
	LessonID string `gorm:"type:uuid;index;not null" json:"lesson_id"`
	CourseID string `gorm:"type:uuid;index;not null" json:"course_id"`

	CompletedAt time.Time `gorm:"autoCreateTime;index:idx_lesson_user_time" json:"completed_at"`
}

type QuizPass struct {
	ID       string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID   string `gorm:"type:uuid;index:idx_quiz_user_time;not null" json:"user_id"`
	QuizID   string `gorm:"type:uuid;index;not null" json:"quiz_id"`
	LessonID string `gorm:"type:uuid" json:"lesson_id"`
	CourseID string `gorm:"type:uuid;index" json:"course_id"`

	PassedAt time.Time `gorm:"autoCreateTime;index:idx_quiz_user_time" json:"passed_at"`
}

type CourseCompletion struct {
	ID       string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	UserID   string `gorm:"type:uuid;index:idx_course_user_time;not null" json:"user_id"`
	CourseID string `gorm:"type:uuid;index;not null" json:"course_id"`

	CompletedAt time.Time `gorm:"autoCreateTime;index:idx_course_user_time" json:"completed_at"`
}

// LearnerProfile is a local snapshot of user data owned by the profile
// service, populated by the sync worker. Leaderboard eligibility (learner
// role, active account) is read from here.
type LearnerProfile struct {
	ID             string `gorm:"primaryKey;type:uuid;not null" json:"id"`
	ExternalUserID string `gorm:"type:uuid;uniqueIndex;not null" json:"external_user_id"`
	Username       string `gorm:"index;not null" json:"username"`
	Email          string `json:"email,omitempty"`

	Role     string `gorm:"type:varchar(20);index;not null;default:'learner'" json:"role"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

const RoleLearner = "learner"
