package domain

import (
	"context"
	"time"
)

// CourseQuizLink associates a quiz with the chapter of a course it belongs to.
type CourseQuizLink struct {
	CourseID  int64
	ChapterID int64
	UnitID    int64
	QuizSlug  string
}

// CourseProgress is the per-user progress summary of one course.
type CourseProgress struct {
	UserID             string
	CourseID           int64
	CurrentChapterID   int64
	CompletedChapters  int
	TotalChapters      int
	ProgressPercentage int
	IsCompleted        bool
	LastAccessedAt     time.Time
}

// LearningEventType names recorded learning events.
type LearningEventType string

const LearningEventQuizCompleted LearningEventType = "QUIZ_COMPLETED"

// LearningEvent is an append-only activity record.
type LearningEvent struct {
	ID        string
	UserID    string
	CourseID  int64
	Type      LearningEventType
	EntityID  string
	Progress  int
	Metadata  string
	CreatedAt time.Time
}

// CourseRepository is the course read/write model used for progress bookkeeping.
type CourseRepository interface {
	// FindQuizLinkExact matches the quiz slug or numeric quiz id exactly.
	FindQuizLinkExact(ctx context.Context, slug string, quizID int64) (*CourseQuizLink, error)
	// FindQuizLinkFuzzy matches a stored slug containing slug, case-insensitively.
	FindQuizLinkFuzzy(ctx context.Context, slug string) (*CourseQuizLink, error)
	MarkChapterCompleted(ctx context.Context, userID string, link CourseQuizLink, at time.Time) error
	CountChapters(ctx context.Context, courseID int64) (int, error)
	CountCompletedChapters(ctx context.Context, userID string, courseID int64) (int, error)
	CreateLearningEvent(ctx context.Context, event *LearningEvent) error
	UpsertCourseProgress(ctx context.Context, progress *CourseProgress) error
}

// PerformanceRecord is one adaptive-learning observation.
type PerformanceRecord struct {
	Topic      string
	IsCorrect  bool
	Difficulty Difficulty
	TimeSpent  int
	HintsUsed  int
}
