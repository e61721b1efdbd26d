package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/repository/models"
)

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.
type QuizDatabaseAdapter struct {
	db DBTX
}

func NewQuizDatabaseAdapter(db DBTX) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

func toDomainQuiz(m *models.UserQuiz, questions []models.UserQuizQuestion) *domain.Quiz {
	quiz := &domain.Quiz{
		ID:        m.ID,
		Slug:      m.Slug,
		Title:     m.Title.String,
		QuizType:  domain.QuizType(m.QuizType),
		Questions: make([]domain.Question, 0, len(questions)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.BestScore.Valid {
		best := int(m.BestScore.Int64)
		quiz.BestScore = &best
	}
	if m.LastAttemptedAt.Valid {
		at := m.LastAttemptedAt.Time
		quiz.LastAttemptedAt = &at
	}
	for _, q := range questions {
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:            q.ID,
			QuizID:        q.UserQuizID,
			Question:      q.Question,
			Answer:        q.Answer.String,
			CorrectAnchor: q.CorrectAnchor.String,
		})
	}
	return quiz
}

// GetQuizBySlug returns nil, nil when no quiz has the slug.
func (a *QuizDatabaseAdapter) GetQuizBySlug(ctx context.Context, slug string) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, a.db)

	var quiz models.UserQuiz
	query := `SELECT ID, USER_ID, SLUG, TITLE, QUIZ_TYPE, BEST_SCORE, LAST_ATTEMPTED_AT, CREATED_AT, UPDATED_AT
	FROM user_quizzes
	WHERE SLUG = :1`
	if err := exec.GetContext(ctx, &quiz, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by slug %s: %w", slug, err)
	}

	var questions []models.UserQuizQuestion
	questionsQuery := `SELECT ID, USER_QUIZ_ID, QUESTION, ANSWER, CORRECT_ANCHOR, POSITION
	FROM user_quiz_questions
	WHERE USER_QUIZ_ID = :1
	ORDER BY POSITION, ID`
	if err := exec.SelectContext(ctx, &questions, questionsQuery, quiz.ID); err != nil {
		return nil, fmt.Errorf("failed to get questions for quiz %s: %w", slug, err)
	}

	return toDomainQuiz(&quiz, questions), nil
}

// GetQuizIDBySlug returns a not-found DomainError when the slug is unknown.
func (a *QuizDatabaseAdapter) GetQuizIDBySlug(ctx context.Context, slug string) (int64, error) {
	var id int64
	err := GetExecutor(ctx, a.db).GetContext(ctx, &id, `SELECT ID FROM user_quizzes WHERE SLUG = :1`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.NewQuizNotFoundError(slug)
		}
		return 0, wrapDBError("resolve quiz id", err)
	}
	return id, nil
}

// UpdateBestScore only ever raises BEST_SCORE, so re-running it is harmless.
func (a *QuizDatabaseAdapter) UpdateBestScore(ctx context.Context, quizID int64, score int, attemptedAt time.Time) error {
	query := `UPDATE user_quizzes
	SET BEST_SCORE = GREATEST(NVL(BEST_SCORE, 0), :1),
		LAST_ATTEMPTED_AT = :2,
		UPDATED_AT = :3
	WHERE ID = :4`
	_, err := GetExecutor(ctx, a.db).ExecContext(ctx, query, score, attemptedAt, time.Now(), quizID)
	return wrapDBError("update best score", err)
}
