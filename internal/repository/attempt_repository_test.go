package repository

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"quiz-pipeline/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sijms/go-ora/v2/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var attemptColumns = []string{"ID", "USER_ID", "USER_QUIZ_ID", "SCORE", "ACCURACY", "TIME_SPENT", "CREATED_AT", "UPDATED_AT"}

func TestAttemptRepository_UpsertAttempt(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXAttemptRepository(db)
	now := time.Now().Truncate(time.Second)

	mock.ExpectExec(regexp.QuoteMeta("MERGE INTO user_quiz_attempts t")).
		WithArgs("u1", int64(7), 100, 100, 18, sqlmock.AnyArg(),
			sqlmock.AnyArg(), 100, 100, 18, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE USER_ID = :1 AND USER_QUIZ_ID = :2")).
		WithArgs("u1", int64(7)).
		WillReturnRows(sqlmock.NewRows(attemptColumns).
			AddRow("01HX", "u1", int64(7), 100, 100, 18, now, now))

	got, err := repo.UpsertAttempt(context.Background(), &domain.QuizAttempt{
		UserID: "u1", QuizID: 7, Score: 100, Accuracy: 100, TimeSpent: 18,
	})
	require.NoError(t, err)
	assert.Equal(t, "01HX", got.ID)
	assert.Equal(t, 100, got.Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepository_UpsertAttempt_DeadlockIsTransient(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXAttemptRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("MERGE INTO user_quiz_attempts t")).
		WillReturnError(&network.OracleError{ErrCode: 60, ErrMsg: "ORA-00060: deadlock detected"})

	_, err := repo.UpsertAttempt(context.Background(), &domain.QuizAttempt{UserID: "u1", QuizID: 7})
	assert.True(t, domain.IsTransientDBError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepository_CreateAttemptQuestions(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXAttemptRepository(db)

	rows := []domain.AttemptQuestion{
		{AttemptID: "a1", QuestionID: 1, UserAnswer: "A", IsCorrect: true, TimeSpent: 10},
		{AttemptID: "a1", QuestionID: 2, UserAnswer: "", IsCorrect: false, TimeSpent: 8},
		{AttemptID: "a1", QuestionID: 1, UserAnswer: "dup", TimeSpent: 1},
	}

	mock.ExpectExec(regexp.QuoteMeta("WHEN NOT MATCHED THEN INSERT (ID, ATTEMPT_ID, QUESTION_ID")).
		WithArgs(
			sqlmock.AnyArg(), "a1", int64(1), sqlmock.AnyArg(), 1, 10, sqlmock.AnyArg(),
			sqlmock.AnyArg(), "a1", int64(2), sqlmock.AnyArg(), 0, 8, sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.CreateAttemptQuestions(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepository_CreateAttemptQuestions_Empty(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXAttemptRepository(db)

	n, err := repo.CreateAttemptQuestions(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildAttemptQuestionMerge(t *testing.T) {
	query, args := buildAttemptQuestionMerge([]domain.AttemptQuestion{
		{ID: "x", AttemptID: "a1", QuestionID: 1},
		{ID: "y", AttemptID: "a1", QuestionID: 2},
	})

	assert.Equal(t, 1, strings.Count(query, "UNION ALL"))
	assert.Contains(t, query, ":14 AS CREATED_AT")
	require.Len(t, args, 14)
	assert.Equal(t, "y", args[7])
}

func TestAttemptRepository_Counts(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXAttemptRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("q.QUIZ_TYPE = :2")).
		WithArgs("u1", "code").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(4))
	n, err := repo.CountAttemptsByType(context.Background(), "u1", domain.QuizTypeCode)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM user_quiz_attempts WHERE USER_ID = :1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"COUNT"}).AddRow(9))
	n, err = repo.CountAttempts(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 9, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}
