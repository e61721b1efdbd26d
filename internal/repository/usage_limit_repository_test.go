package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"quiz-pipeline/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var usageColumns = []string{"ID", "USER_ID", "RESOURCE_TYPE", "USED_COUNT", "LIMIT_COUNT", "PERIOD_START", "PERIOD_END", "RESET_FREQUENCY", "UPDATED_AT"}

func TestUsageLimitRepository_GetUsageLimit(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXUsageLimitRepository(db)
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM usage_limits")).
		WithArgs("u1", "quiz_attempts").
		WillReturnRows(sqlmock.NewRows(usageColumns).
			AddRow("l1", "u1", "quiz_attempts", 2, 5, start, start.Add(24*time.Hour), "daily", start))
	limit, err := repo.GetUsageLimit(context.Background(), "u1", domain.ResourceQuizAttempts)
	require.NoError(t, err)
	require.NotNil(t, limit)
	assert.Equal(t, 2, limit.UsedCount)
	assert.Equal(t, domain.ResetDaily, limit.ResetFrequency)

	mock.ExpectQuery(regexp.QuoteMeta("FROM usage_limits")).
		WithArgs("u2", "quiz_attempts").
		WillReturnError(sql.ErrNoRows)
	limit, err = repo.GetUsageLimit(context.Background(), "u2", domain.ResourceQuizAttempts)
	require.NoError(t, err)
	assert.Nil(t, limit)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageLimitRepository_CreateUsageLimit(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXUsageLimitRepository(db)
	start := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("MERGE INTO usage_limits t")).
		WithArgs("u1", "quiz_attempts", sqlmock.AnyArg(), 0, 5, start, end, "daily", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM usage_limits")).
		WithArgs("u1", "quiz_attempts").
		WillReturnRows(sqlmock.NewRows(usageColumns).
			AddRow("l1", "u1", "quiz_attempts", 0, 5, start, end, "daily", start))

	created, err := repo.CreateUsageLimit(context.Background(), &domain.UsageLimit{
		UserID: "u1", ResourceType: domain.ResourceQuizAttempts, LimitCount: 5,
		PeriodStart: start, PeriodEnd: end, ResetFrequency: domain.ResetDaily,
	})
	require.NoError(t, err)
	assert.Equal(t, "l1", created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageLimitRepository_ResetAndIncrement(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXUsageLimitRepository(db)
	start := time.Now()
	end := start.Add(24 * time.Hour)

	prevEnd := start.Add(-time.Hour)

	mock.ExpectExec(regexp.QuoteMeta("SET USED_COUNT = :1, PERIOD_START = :2, PERIOD_END = :3")).
		WithArgs(1, start, end, sqlmock.AnyArg(), "l1", prevEnd).
		WillReturnResult(sqlmock.NewResult(0, 1))
	reset, err := repo.ResetUsageLimit(context.Background(), "l1", prevEnd, 1, start, end)
	require.NoError(t, err)
	assert.True(t, reset)

	mock.ExpectExec(regexp.QuoteMeta("WHERE ID = :5 AND PERIOD_END = :6")).
		WithArgs(1, start, end, sqlmock.AnyArg(), "l1", prevEnd).
		WillReturnResult(sqlmock.NewResult(0, 0))
	reset, err = repo.ResetUsageLimit(context.Background(), "l1", prevEnd, 1, start, end)
	require.NoError(t, err)
	assert.False(t, reset, "a period already rolled over by another writer is left alone")

	mock.ExpectExec(regexp.QuoteMeta("SET USED_COUNT = USED_COUNT + :1")).
		WithArgs(1, sqlmock.AnyArg(), "l1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.IncrementUsage(context.Background(), "l1", 1))

	assert.NoError(t, mock.ExpectationsWereMet())
}
