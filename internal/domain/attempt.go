package domain

import (
	"context"
	"time"
)

// MaxUserAnswerLength caps the stored answer text per question.
const MaxUserAnswerLength = 1000

// QuizAttempt is the single scored record of a user completing a quiz.
type QuizAttempt struct {
	ID        string
	UserID    string
	QuizID    int64
	Score     int
	Accuracy  int
	TimeSpent int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AttemptQuestion stores one answered question of an attempt.
type AttemptQuestion struct {
	ID         string
	AttemptID  string
	QuestionID int64
	UserAnswer string
	IsCorrect  bool
	TimeSpent  int
	CreatedAt  time.Time
}

// AttemptResult is returned once the attempt transaction has committed.
type AttemptResult struct {
	UpdatedQuiz     *Quiz
	Attempt         *QuizAttempt
	PercentageScore int
	TotalQuestions  int
	AnswersRecorded int
}

// QuizRepository reads quizzes and maintains best-score bookkeeping.
type QuizRepository interface {
	GetQuizBySlug(ctx context.Context, slug string) (*Quiz, error)
	GetQuizIDBySlug(ctx context.Context, slug string) (int64, error)
	UpdateBestScore(ctx context.Context, quizID int64, score int, attemptedAt time.Time) error
}

// AttemptRepository persists attempts and their per-question rows.
type AttemptRepository interface {
	UpsertAttempt(ctx context.Context, attempt *QuizAttempt) (*QuizAttempt, error)
	CreateAttemptQuestions(ctx context.Context, rows []AttemptQuestion) (int64, error)
	CountAttemptsByType(ctx context.Context, userID string, quizType QuizType) (int, error)
	CountAttempts(ctx context.Context, userID string) (int, error)
}

// TransactionManager runs fn inside a database transaction carried by ctx.
type TransactionManager interface {
	WithTransaction(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error
}

// TxOptions bounds how long to wait for a connection and how long the transaction may run.
type TxOptions struct {
	MaxWait time.Duration
	Timeout time.Duration
}
