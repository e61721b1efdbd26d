package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quiz-pipeline/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var recorderTx = domain.TxOptions{MaxWait: 10 * time.Second, Timeout: 20 * time.Second}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func sampleQuiz() *domain.Quiz {
	best := 40
	return &domain.Quiz{
		ID:        7,
		Slug:      "go-basics",
		QuizType:  domain.QuizTypeMCQ,
		BestScore: &best,
		Questions: []domain.Question{
			{ID: 1, QuizID: 7, Answer: "A"},
			{ID: 2, QuizID: 7, Answer: "B"},
			{ID: 3, QuizID: 7, Answer: "C"},
		},
	}
}

func sampleSubmission(at time.Time) *domain.QuizSubmission {
	return &domain.QuizSubmission{
		QuizSlug:  "go-basics",
		Type:      domain.QuizTypeMCQ,
		Score:     2,
		TotalTime: 42.7,
		Answers: []domain.QuizAnswer{
			{Kind: domain.QuizTypeMCQ, QuestionID: "1", TimeSpent: 10, Choice: &domain.ChoiceAnswer{Answer: strPtr("A")}},
			{Kind: domain.QuizTypeMCQ, QuestionID: "2", TimeSpent: 12, Choice: &domain.ChoiceAnswer{UserAnswer: strPtr("C"), IsCorrect: boolPtr(true)}},
			{Kind: domain.QuizTypeMCQ, QuestionID: "99", TimeSpent: 5, Choice: &domain.ChoiceAnswer{Answer: strPtr("Z")}},
		},
		CompletedAt: at,
	}
}

func TestAttemptRecorder_Record(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	quizRepo := new(MockQuizRepository)
	attemptRepo := new(MockAttemptRepository)
	tx := &fakeTxManager{}

	quizRepo.On("UpdateBestScore", ctx, int64(7), 67, at).Return(nil)
	quizRepo.On("GetQuizIDBySlug", mock.Anything, "go-basics").Return(int64(7), nil)
	attemptRepo.On("UpsertAttempt", mock.Anything, mock.MatchedBy(func(a *domain.QuizAttempt) bool {
		return a.UserID == "user-1" && a.QuizID == 7 && a.Score == 67 && a.Accuracy == 33 && a.TimeSpent == 42
	})).Return(&domain.QuizAttempt{ID: "att-1", UserID: "user-1", QuizID: 7, Score: 67, Accuracy: 33, TimeSpent: 42}, nil)

	var rows []domain.AttemptQuestion
	attemptRepo.On("CreateAttemptQuestions", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { rows = args.Get(1).([]domain.AttemptQuestion) }).
		Return(int64(2), nil)

	rec := NewAttemptRecorder(quizRepo, attemptRepo, tx, recorderTx)
	res, err := rec.Record(ctx, AttemptInput{
		UserID:          "user-1",
		Submission:      sampleSubmission(at),
		Quiz:            sampleQuiz(),
		PercentageScore: 67,
		AccuracyScore:   33,
		TotalQuestions:  3,
	})

	require.NoError(t, err)
	assert.Equal(t, "att-1", res.Attempt.ID)
	assert.Equal(t, 67, *res.UpdatedQuiz.BestScore)
	assert.Equal(t, at, *res.UpdatedQuiz.LastAttemptedAt)
	assert.Equal(t, 2, res.AnswersRecorded)
	assert.Equal(t, 3, res.TotalQuestions)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, recorderTx, tx.opts)

	require.Len(t, rows, 2)
	assert.Equal(t, domain.AttemptQuestion{AttemptID: "att-1", QuestionID: 1, UserAnswer: "A", IsCorrect: true, TimeSpent: 10}, rows[0])
	assert.Equal(t, domain.AttemptQuestion{AttemptID: "att-1", QuestionID: 2, UserAnswer: "C", IsCorrect: true, TimeSpent: 12}, rows[1])
}

func TestAttemptRecorder_KeepsHigherBestScore(t *testing.T) {
	quiz := sampleQuiz()
	updated := withBestScore(quiz, 20, time.Unix(0, 0))
	assert.Equal(t, 40, *updated.BestScore)
	assert.Equal(t, 40, *quiz.BestScore, "input quiz is not mutated")
}

func TestAttemptRecorder_FailureInsideTransaction(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	quizRepo := new(MockQuizRepository)
	attemptRepo := new(MockAttemptRepository)
	conflict := &domain.TransientDBError{Op: "upsert attempt", Cause: errors.New("ORA-08177")}

	quizRepo.On("UpdateBestScore", ctx, int64(7), 50, at).Return(nil)
	quizRepo.On("GetQuizIDBySlug", mock.Anything, "go-basics").Return(int64(7), nil)
	attemptRepo.On("UpsertAttempt", mock.Anything, mock.Anything).Return(nil, conflict)

	rec := NewAttemptRecorder(quizRepo, attemptRepo, &fakeTxManager{}, recorderTx)
	res, err := rec.Record(ctx, AttemptInput{UserID: "user-1", Submission: sampleSubmission(at), Quiz: sampleQuiz(), PercentageScore: 50})

	assert.Nil(t, res)
	assert.True(t, IsTransient(err))
	attemptRepo.AssertNotCalled(t, "CreateAttemptQuestions", mock.Anything, mock.Anything)
}

func TestAttemptRecorder_UnknownQuizInsideTransaction(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	quizRepo := new(MockQuizRepository)

	quizRepo.On("UpdateBestScore", ctx, int64(7), 50, at).Return(nil)
	quizRepo.On("GetQuizIDBySlug", mock.Anything, "go-basics").Return(int64(0), domain.NewQuizNotFoundError("go-basics"))

	rec := NewAttemptRecorder(quizRepo, new(MockAttemptRepository), &fakeTxManager{}, recorderTx)
	_, err := rec.Record(ctx, AttemptInput{UserID: "user-1", Submission: sampleSubmission(at), Quiz: sampleQuiz(), PercentageScore: 50})

	var de *domain.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, domain.CodeQuizNotFound, de.Code)
}

func TestBuildAttemptQuestions_TruncatesAndDerives(t *testing.T) {
	quiz := &domain.Quiz{
		Slug: "essay",
		Questions: []domain.Question{
			{ID: 1, CorrectAnchor: "goroutine"},
			{ID: 2, Answer: "defer"},
		},
	}
	long := strings.Repeat("가", domain.MaxUserAnswerLength+50)
	answers := []domain.QuizAnswer{
		{Kind: domain.QuizTypeOpenEnded, QuestionID: "1", Text: &domain.TextAnswer{Answer: "A Goroutine is cheap"}},
		{Kind: domain.QuizTypeOpenEnded, QuestionID: "2", Text: &domain.TextAnswer{Answer: long}},
		{Kind: domain.QuizTypeOpenEnded, QuestionID: "2", Text: &domain.TextAnswer{Answer: "duplicate"}},
	}

	rows := buildAttemptQuestions("att-9", quiz, answers)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].IsCorrect)
	assert.False(t, rows[1].IsCorrect)
	assert.Equal(t, domain.MaxUserAnswerLength, len([]rune(rows[1].UserAnswer)))
}
