package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/repository/models"
	"quiz-pipeline/internal/util"
)

// attemptQuestionBatchSize keeps each MERGE well under Oracle's bind limit.
const attemptQuestionBatchSize = 100

type sqlxAttemptRepository struct {
	db DBTX
}

func NewSQLXAttemptRepository(db DBTX) domain.AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

func toDomainAttempt(m *models.UserQuizAttempt) *domain.QuizAttempt {
	return &domain.QuizAttempt{
		ID:        m.ID,
		UserID:    m.UserID,
		QuizID:    m.UserQuizID,
		Score:     m.Score,
		Accuracy:  m.Accuracy,
		TimeSpent: m.TimeSpent,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// UpsertAttempt keys on (USER_ID, USER_QUIZ_ID): a retake overwrites score,
// accuracy and time, a first completion inserts with a fresh ULID.
func (r *sqlxAttemptRepository) UpsertAttempt(ctx context.Context, attempt *domain.QuizAttempt) (*domain.QuizAttempt, error) {
	exec := GetExecutor(ctx, r.db)
	now := time.Now()
	id := attempt.ID
	if id == "" {
		id = util.NewULID()
	}

	query := `MERGE INTO user_quiz_attempts t
	USING (SELECT :1 AS USER_ID, :2 AS USER_QUIZ_ID FROM dual) s
	ON (t.USER_ID = s.USER_ID AND t.USER_QUIZ_ID = s.USER_QUIZ_ID)
	WHEN MATCHED THEN UPDATE SET
		t.SCORE = :3, t.ACCURACY = :4, t.TIME_SPENT = :5, t.UPDATED_AT = :6
	WHEN NOT MATCHED THEN INSERT (ID, USER_ID, USER_QUIZ_ID, SCORE, ACCURACY, TIME_SPENT, CREATED_AT, UPDATED_AT)
		VALUES (:7, s.USER_ID, s.USER_QUIZ_ID, :8, :9, :10, :11, :12)`

	_, err := exec.ExecContext(ctx, query,
		attempt.UserID, attempt.QuizID,
		attempt.Score, attempt.Accuracy, attempt.TimeSpent, now,
		id, attempt.Score, attempt.Accuracy, attempt.TimeSpent, now, now,
	)
	if err != nil {
		return nil, wrapDBError("upsert attempt", err)
	}

	var stored models.UserQuizAttempt
	selectQuery := `SELECT ID, USER_ID, USER_QUIZ_ID, SCORE, ACCURACY, TIME_SPENT, CREATED_AT, UPDATED_AT
	FROM user_quiz_attempts
	WHERE USER_ID = :1 AND USER_QUIZ_ID = :2`
	if err := exec.GetContext(ctx, &stored, selectQuery, attempt.UserID, attempt.QuizID); err != nil {
		return nil, wrapDBError("read back attempt", err)
	}
	return toDomainAttempt(&stored), nil
}

// CreateAttemptQuestions inserts rows whose (ATTEMPT_ID, QUESTION_ID) is not
// stored yet and returns how many were inserted. Existing pairs are skipped.
func (r *sqlxAttemptRepository) CreateAttemptQuestions(ctx context.Context, rows []domain.AttemptQuestion) (int64, error) {
	rows = dedupeAttemptQuestions(rows)
	if len(rows) == 0 {
		return 0, nil
	}
	exec := GetExecutor(ctx, r.db)

	var inserted int64
	for start := 0; start < len(rows); start += attemptQuestionBatchSize {
		end := start + attemptQuestionBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		query, args := buildAttemptQuestionMerge(rows[start:end])
		res, err := exec.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, wrapDBError("insert attempt questions", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		}
	}
	return inserted, nil
}

func dedupeAttemptQuestions(rows []domain.AttemptQuestion) []domain.AttemptQuestion {
	seen := make(map[string]struct{}, len(rows))
	out := make([]domain.AttemptQuestion, 0, len(rows))
	for _, row := range rows {
		key := fmt.Sprintf("%s/%d", row.AttemptID, row.QuestionID)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, row)
	}
	return out
}

func buildAttemptQuestionMerge(rows []domain.AttemptQuestion) (string, []interface{}) {
	const cols = 7
	selects := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*cols)
	now := time.Now()

	for i, row := range rows {
		n := i*cols + 1
		selects = append(selects, fmt.Sprintf(
			"SELECT :%d AS ID, :%d AS ATTEMPT_ID, :%d AS QUESTION_ID, :%d AS USER_ANSWER, :%d AS IS_CORRECT, :%d AS TIME_SPENT, :%d AS CREATED_AT FROM dual",
			n, n+1, n+2, n+3, n+4, n+5, n+6))

		id := row.ID
		if id == "" {
			id = util.NewULID()
		}
		createdAt := row.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		args = append(args,
			id, row.AttemptID, row.QuestionID,
			util.StringToNullString(row.UserAnswer),
			boolToNumber(row.IsCorrect), row.TimeSpent, createdAt,
		)
	}

	query := `MERGE INTO user_quiz_attempt_questions t
	USING (` + strings.Join(selects, " UNION ALL ") + `) s
	ON (t.ATTEMPT_ID = s.ATTEMPT_ID AND t.QUESTION_ID = s.QUESTION_ID)
	WHEN NOT MATCHED THEN INSERT (ID, ATTEMPT_ID, QUESTION_ID, USER_ANSWER, IS_CORRECT, TIME_SPENT, CREATED_AT)
		VALUES (s.ID, s.ATTEMPT_ID, s.QUESTION_ID, s.USER_ANSWER, s.IS_CORRECT, s.TIME_SPENT, s.CREATED_AT)`
	return query, args
}

func (r *sqlxAttemptRepository) CountAttemptsByType(ctx context.Context, userID string, quizType domain.QuizType) (int, error) {
	var count int
	query := `SELECT COUNT(*)
	FROM user_quiz_attempts a
	JOIN user_quizzes q ON q.ID = a.USER_QUIZ_ID
	WHERE a.USER_ID = :1 AND q.QUIZ_TYPE = :2`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &count, query, userID, string(quizType)); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count %s attempts: %w", quizType, err)
	}
	return count, nil
}

func (r *sqlxAttemptRepository) CountAttempts(ctx context.Context, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM user_quiz_attempts WHERE USER_ID = :1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &count, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count attempts: %w", err)
	}
	return count, nil
}
