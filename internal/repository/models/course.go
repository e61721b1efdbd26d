package models

import (
	"database/sql"
	"time"
)

// CourseChapter is the quiz-carrying projection of COURSE_CHAPTERS.
type CourseChapter struct {
	ID       int64          `db:"ID"`
	CourseID int64          `db:"COURSE_ID"`
	UnitID   sql.NullInt64  `db:"UNIT_ID"`
	QuizSlug sql.NullString `db:"QUIZ_SLUG"`
}

// LearningEvent is a row of LEARNING_EVENTS.
type LearningEvent struct {
	ID        string         `db:"ID"`
	UserID    string         `db:"USER_ID"`
	CourseID  sql.NullInt64  `db:"COURSE_ID"`
	EventType string         `db:"EVENT_TYPE"`
	EntityID  sql.NullString `db:"ENTITY_ID"`
	Progress  sql.NullInt64  `db:"PROGRESS"`
	Metadata  sql.NullString `db:"METADATA"`
	CreatedAt time.Time      `db:"CREATED_AT"`
}
