package service

import (
	"context"
	"time"
	"unicode/utf8"

	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/logger"
	"quiz-pipeline/internal/scoring"

	"go.uber.org/zap"
)

// AttemptInput is everything the recorder needs after validation and scoring.
type AttemptInput struct {
	UserID          string
	Submission      *domain.QuizSubmission
	Quiz            *domain.Quiz
	PercentageScore int
	AccuracyScore   int
	TotalQuestions  int
}

// AttemptRecorder persists one attempt per (user, quiz) together with its answers.
type AttemptRecorder interface {
	Record(ctx context.Context, input AttemptInput) (*domain.AttemptResult, error)
}

type attemptRecorder struct {
	quizRepo    domain.QuizRepository
	attemptRepo domain.AttemptRepository
	txManager   domain.TransactionManager
	txOptions   domain.TxOptions
}

func NewAttemptRecorder(
	quizRepo domain.QuizRepository,
	attemptRepo domain.AttemptRepository,
	txManager domain.TransactionManager,
	txOptions domain.TxOptions,
) AttemptRecorder {
	return &attemptRecorder{
		quizRepo:    quizRepo,
		attemptRepo: attemptRepo,
		txManager:   txManager,
		txOptions:   txOptions,
	}
}

// Record raises the quiz best score outside the transaction, then upserts the
// attempt and inserts its answer rows atomically. The result is only returned
// after commit.
func (r *attemptRecorder) Record(ctx context.Context, input AttemptInput) (*domain.AttemptResult, error) {
	sub := input.Submission
	completedAt := sub.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now()
	}

	if err := r.quizRepo.UpdateBestScore(ctx, input.Quiz.ID, input.PercentageScore, completedAt); err != nil {
		return nil, err
	}
	updatedQuiz := withBestScore(input.Quiz, input.PercentageScore, completedAt)

	var (
		attempt  *domain.QuizAttempt
		recorded int64
	)
	err := r.txManager.WithTransaction(ctx, r.txOptions, func(txCtx context.Context) error {
		quizID, err := r.quizRepo.GetQuizIDBySlug(txCtx, input.Quiz.Slug)
		if err != nil {
			return err
		}

		attempt, err = r.attemptRepo.UpsertAttempt(txCtx, &domain.QuizAttempt{
			UserID:    input.UserID,
			QuizID:    quizID,
			Score:     input.PercentageScore,
			Accuracy:  input.AccuracyScore,
			TimeSpent: int(sub.TotalTime),
		})
		if err != nil {
			return err
		}

		rows := buildAttemptQuestions(attempt.ID, input.Quiz, sub.Answers)
		recorded, err = r.attemptRepo.CreateAttemptQuestions(txCtx, rows)
		return err
	})
	if err != nil {
		return nil, err
	}

	return &domain.AttemptResult{
		UpdatedQuiz:     updatedQuiz,
		Attempt:         attempt,
		PercentageScore: input.PercentageScore,
		TotalQuestions:  input.TotalQuestions,
		AnswersRecorded: int(recorded),
	}, nil
}

func withBestScore(quiz *domain.Quiz, score int, at time.Time) *domain.Quiz {
	updated := *quiz
	best := score
	if quiz.BestScore != nil && *quiz.BestScore > best {
		best = *quiz.BestScore
	}
	updated.BestScore = &best
	updated.LastAttemptedAt = &at
	return &updated
}

// buildAttemptQuestions pairs stored questions with submitted answers by
// canonical id. Questions without an answer are skipped.
func buildAttemptQuestions(attemptID string, quiz *domain.Quiz, answers []domain.QuizAnswer) []domain.AttemptQuestion {
	byID := make(map[string]domain.QuizAnswer, len(answers))
	for _, a := range answers {
		if a.QuestionID == "" {
			continue
		}
		if _, dup := byID[a.QuestionID]; !dup {
			byID[a.QuestionID] = a
		}
	}

	rows := make([]domain.AttemptQuestion, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		answer, ok := byID[q.Key()]
		if !ok {
			logger.Get().Warn("No submitted answer for question, skipping",
				zap.String("quiz_id", quiz.Slug),
				zap.Int64("question_id", q.ID))
			continue
		}
		rows = append(rows, domain.AttemptQuestion{
			AttemptID:  attemptID,
			QuestionID: q.ID,
			UserAnswer: truncateRunes(answer.UserAnswerText(), domain.MaxUserAnswerLength),
			IsCorrect:  scoring.ResolveCorrectness(answer, q),
			TimeSpent:  answer.TimeSpent,
		})
	}
	return rows
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

