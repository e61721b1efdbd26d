package models

import (
	"database/sql"
	"time"
)

// UserStreak holds the streak columns of USERS.
type UserStreak struct {
	ID             string       `db:"ID"`
	Streak         int          `db:"STREAK"`
	LongestStreak  int          `db:"LONGEST_STREAK"`
	LastReviewDate sql.NullTime `db:"LAST_REVIEW_DATE"`
}

// Badge is a row of the static BADGES catalog.
type Badge struct {
	ID            string         `db:"ID"`
	Name          string         `db:"NAME"`
	Description   sql.NullString `db:"DESCRIPTION"`
	Category      string         `db:"CATEGORY"`
	Tier          string         `db:"TIER"`
	RequiredValue int            `db:"REQUIRED_VALUE"`
	QuizType      sql.NullString `db:"QUIZ_TYPE"`
}

// UserBadge is a row of USER_BADGES, unique on (USER_ID, BADGE_ID).
type UserBadge struct {
	ID         string    `db:"ID"`
	UserID     string    `db:"USER_ID"`
	BadgeID    string    `db:"BADGE_ID"`
	Progress   int       `db:"PROGRESS"`
	UnlockedAt time.Time `db:"UNLOCKED_AT"`
}

// UsageLimit is a row of USAGE_LIMITS, unique on (USER_ID, RESOURCE_TYPE).
type UsageLimit struct {
	ID             string    `db:"ID"`
	UserID         string    `db:"USER_ID"`
	ResourceType   string    `db:"RESOURCE_TYPE"`
	UsedCount      int       `db:"USED_COUNT"`
	LimitCount     int       `db:"LIMIT_COUNT"`
	PeriodStart    time.Time `db:"PERIOD_START"`
	PeriodEnd      time.Time `db:"PERIOD_END"`
	ResetFrequency string    `db:"RESET_FREQUENCY"`
	UpdatedAt      time.Time `db:"UPDATED_AT"`
}
