package models

import (
	"database/sql"
	"time"
)

// UserQuiz is a row of USER_QUIZZES.
type UserQuiz struct {
	ID              int64          `db:"ID"`
	UserID          sql.NullString `db:"USER_ID"`
	Slug            string         `db:"SLUG"`
	Title           sql.NullString `db:"TITLE"`
	QuizType        string         `db:"QUIZ_TYPE"`
	BestScore       sql.NullInt64  `db:"BEST_SCORE"`
	LastAttemptedAt sql.NullTime   `db:"LAST_ATTEMPTED_AT"`
	CreatedAt       time.Time      `db:"CREATED_AT"`
	UpdatedAt       time.Time      `db:"UPDATED_AT"`
}

// UserQuizQuestion is a row of USER_QUIZ_QUESTIONS.
type UserQuizQuestion struct {
	ID            int64          `db:"ID"`
	UserQuizID    int64          `db:"USER_QUIZ_ID"`
	Question      string         `db:"QUESTION"`
	Answer        sql.NullString `db:"ANSWER"`
	CorrectAnchor sql.NullString `db:"CORRECT_ANCHOR"`
	Position      int            `db:"POSITION"`
}

// UserQuizAttempt is a row of USER_QUIZ_ATTEMPTS, unique on (USER_ID, USER_QUIZ_ID).
type UserQuizAttempt struct {
	ID         string    `db:"ID"`
	UserID     string    `db:"USER_ID"`
	UserQuizID int64     `db:"USER_QUIZ_ID"`
	Score      int       `db:"SCORE"`
	Accuracy   int       `db:"ACCURACY"`
	TimeSpent  int       `db:"TIME_SPENT"`
	CreatedAt  time.Time `db:"CREATED_AT"`
	UpdatedAt  time.Time `db:"UPDATED_AT"`
}

// UserQuizAttemptQuestion is a row of USER_QUIZ_ATTEMPT_QUESTIONS; IS_CORRECT is NUMBER(1).
type UserQuizAttemptQuestion struct {
	ID         string         `db:"ID"`
	AttemptID  string         `db:"ATTEMPT_ID"`
	QuestionID int64          `db:"QUESTION_ID"`
	UserAnswer sql.NullString `db:"USER_ANSWER"`
	IsCorrect  int            `db:"IS_CORRECT"`
	TimeSpent  int            `db:"TIME_SPENT"`
	CreatedAt  time.Time      `db:"CREATED_AT"`
}
