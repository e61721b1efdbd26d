package domain

import (
	"context"
	"errors"
	"time"
)

// StreakState is the per-user daily engagement counter stored on the user row.
type StreakState struct {
	UserID         string
	Streak         int
	LongestStreak  int
	LastReviewDate *time.Time
}

// StreakResult reports the outcome of one streak update.
type StreakResult struct {
	CurrentStreak   int
	LongestStreak   int
	StreakContinued bool
	IsNewRecord     bool
	Changed         bool
}

// UserRepository reads and writes the streak columns and the subscription tier.
type UserRepository interface {
	GetStreak(ctx context.Context, userID string) (*StreakState, error)
	UpdateStreak(ctx context.Context, state *StreakState) error
	GetTier(ctx context.Context, userID string) (UserTier, error)
}

// BadgeCategory groups badges by the counter they are evaluated against.
type BadgeCategory string

const (
	BadgeCategoryStreak       BadgeCategory = "streak"
	BadgeCategoryReviews      BadgeCategory = "reviews"
	BadgeCategoryMastery      BadgeCategory = "mastery"
	BadgeCategoryQuizType     BadgeCategory = "quiz_type"
	BadgeCategoryTotalQuizzes BadgeCategory = "total_quizzes"
	BadgeCategoryPerfectScore BadgeCategory = "perfect_score"
)

// Badge is a static catalog entry.
type Badge struct {
	ID            string
	Name          string
	Description   string
	Category      BadgeCategory
	Tier          string
	RequiredValue int
	// QuizType scopes quiz_type and perfect_score badges; empty otherwise.
	QuizType QuizType
}

// UserBadge records that a user unlocked a badge.
type UserBadge struct {
	ID         string
	UserID     string
	BadgeID    string
	Progress   int
	UnlockedAt time.Time
}

// BadgeRepository reads the catalog and stores unlocks.
type BadgeRepository interface {
	ListBadges(ctx context.Context, category BadgeCategory, quizType QuizType) ([]Badge, error)
	GetUserBadge(ctx context.Context, userID, badgeID string) (*UserBadge, error)
	// CreateUserBadge returns ErrAlreadyUnlocked when the (user, badge) pair exists.
	CreateUserBadge(ctx context.Context, ub *UserBadge) error
}

// ErrAlreadyUnlocked is the no-op signal of the unlock primitive.
var ErrAlreadyUnlocked = errors.New("badge already unlocked")

// ResourceType names a metered resource.
type ResourceType string

const (
	ResourceQuizAttempts     ResourceType = "quiz_attempts"
	ResourceFlashcardReviews ResourceType = "flashcard_reviews"
	ResourceDeckCreation     ResourceType = "deck_creation"
	ResourceCourseAccess     ResourceType = "course_access"
)

// ResetFrequency is the period length of a quota.
type ResetFrequency string

const (
	ResetDaily   ResetFrequency = "daily"
	ResetMonthly ResetFrequency = "monthly"
)

// UserTier sizes quotas.
type UserTier string

const (
	TierFree      UserTier = "free"
	TierBasic     UserTier = "basic"
	TierPro       UserTier = "pro"
	TierUnlimited UserTier = "unlimited"
)

// UnlimitedCount marks a quota without an upper bound.
const UnlimitedCount = -1

// UsageLimit is the per-user, per-resource quota row.
type UsageLimit struct {
	ID             string
	UserID         string
	ResourceType   ResourceType
	UsedCount      int
	LimitCount     int
	PeriodStart    time.Time
	PeriodEnd      time.Time
	ResetFrequency ResetFrequency
	UpdatedAt      time.Time
}

// UsageReport is the read-side answer of CanUse.
type UsageReport struct {
	Allowed        bool           `json:"allowed"`
	Used           int            `json:"used"`
	Limit          int            `json:"limit"`
	Remaining      int            `json:"remaining"`
	PeriodEnd      time.Time      `json:"periodEnd"`
	ResetFrequency ResetFrequency `json:"resetFrequency"`
}

// UsageLimitRepository persists quota rows.
type UsageLimitRepository interface {
	GetUsageLimit(ctx context.Context, userID string, resource ResourceType) (*UsageLimit, error)
	// CreateUsageLimit is insert-if-absent; an existing row is returned unchanged.
	CreateUsageLimit(ctx context.Context, limit *UsageLimit) (*UsageLimit, error)
	// ResetUsageLimit is conditional on the row still ending at prevEnd.
	ResetUsageLimit(ctx context.Context, id string, prevEnd time.Time, used int, periodStart, periodEnd time.Time) (bool, error)
	IncrementUsage(ctx context.Context, id string, count int) error
}
