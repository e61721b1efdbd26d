package domain

import (
	"strconv"
	"time"
)

// QuizType discriminates the answer shapes and correctness rules of a quiz.
type QuizType string

const (
	QuizTypeMCQ       QuizType = "mcq"
	QuizTypeCode      QuizType = "code"
	QuizTypeOpenEnded QuizType = "openended"
	QuizTypeBlanks    QuizType = "blanks"
	QuizTypeFlashcard QuizType = "flashcard"
)

// ParseQuizType returns false for anything outside the five supported types.
func ParseQuizType(s string) (QuizType, bool) {
	switch QuizType(s) {
	case QuizTypeMCQ, QuizTypeCode, QuizTypeOpenEnded, QuizTypeBlanks, QuizTypeFlashcard:
		return QuizType(s), true
	default:
		return "", false
	}
}

// Question is a stored quiz question with its correct answer.
type Question struct {
	ID            int64
	QuizID        int64
	Question      string
	Answer        string
	CorrectAnchor string
}

// Key is the canonical string identifier used to match submitted answers.
func (q Question) Key() string {
	return strconv.FormatInt(q.ID, 10)
}

// CorrectAnswer prefers the explicit answer and falls back to the anchor text.
func (q Question) CorrectAnswer() string {
	if q.Answer != "" {
		return q.Answer
	}
	return q.CorrectAnchor
}

// Quiz is the read model owned by the course-content subsystem.
type Quiz struct {
	ID              int64
	Slug            string
	Title           string
	QuizType        QuizType
	BestScore       *int
	LastAttemptedAt *time.Time
	Questions       []Question
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
