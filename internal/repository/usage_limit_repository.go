package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/repository/models"
	"quiz-pipeline/internal/util"
)

type sqlxUsageLimitRepository struct {
	db DBTX
}

func NewSQLXUsageLimitRepository(db DBTX) domain.UsageLimitRepository {
	return &sqlxUsageLimitRepository{db: db}
}

func toDomainUsageLimit(m *models.UsageLimit) *domain.UsageLimit {
	return &domain.UsageLimit{
		ID:             m.ID,
		UserID:         m.UserID,
		ResourceType:   domain.ResourceType(m.ResourceType),
		UsedCount:      m.UsedCount,
		LimitCount:     m.LimitCount,
		PeriodStart:    m.PeriodStart,
		PeriodEnd:      m.PeriodEnd,
		ResetFrequency: domain.ResetFrequency(m.ResetFrequency),
		UpdatedAt:      m.UpdatedAt,
	}
}

const selectUsageLimit = `SELECT ID, USER_ID, RESOURCE_TYPE, USED_COUNT, LIMIT_COUNT, PERIOD_START, PERIOD_END, RESET_FREQUENCY, UPDATED_AT
	FROM usage_limits
	WHERE USER_ID = :1 AND RESOURCE_TYPE = :2`

// GetUsageLimit returns nil, nil when no quota row exists yet.
func (r *sqlxUsageLimitRepository) GetUsageLimit(ctx context.Context, userID string, resource domain.ResourceType) (*domain.UsageLimit, error) {
	var row models.UsageLimit
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, selectUsageLimit, userID, string(resource)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get usage limit: %w", err)
	}
	return toDomainUsageLimit(&row), nil
}

// CreateUsageLimit inserts only when (USER_ID, RESOURCE_TYPE) is absent and
// returns whichever row is stored afterwards.
func (r *sqlxUsageLimitRepository) CreateUsageLimit(ctx context.Context, limit *domain.UsageLimit) (*domain.UsageLimit, error) {
	exec := GetExecutor(ctx, r.db)
	if limit.ID == "" {
		limit.ID = util.NewULID()
	}

	query := `MERGE INTO usage_limits t
	USING (SELECT :1 AS USER_ID, :2 AS RESOURCE_TYPE FROM dual) s
	ON (t.USER_ID = s.USER_ID AND t.RESOURCE_TYPE = s.RESOURCE_TYPE)
	WHEN NOT MATCHED THEN INSERT (ID, USER_ID, RESOURCE_TYPE, USED_COUNT, LIMIT_COUNT, PERIOD_START, PERIOD_END, RESET_FREQUENCY, UPDATED_AT)
		VALUES (:3, s.USER_ID, s.RESOURCE_TYPE, :4, :5, :6, :7, :8, :9)`
	_, err := exec.ExecContext(ctx, query,
		limit.UserID, string(limit.ResourceType),
		limit.ID, limit.UsedCount, limit.LimitCount, limit.PeriodStart, limit.PeriodEnd,
		string(limit.ResetFrequency), time.Now(),
	)
	if err != nil && !isUniqueViolation(err) {
		return nil, wrapDBError("create usage limit", err)
	}

	var row models.UsageLimit
	if err := exec.GetContext(ctx, &row, selectUsageLimit, limit.UserID, string(limit.ResourceType)); err != nil {
		return nil, fmt.Errorf("failed to read back usage limit: %w", err)
	}
	return toDomainUsageLimit(&row), nil
}

// ResetUsageLimit starts a new period only if the row still ends at prevEnd.
// It reports false when another writer already rolled the period over.
func (r *sqlxUsageLimitRepository) ResetUsageLimit(ctx context.Context, id string, prevEnd time.Time, used int, periodStart, periodEnd time.Time) (bool, error) {
	query := `UPDATE usage_limits
	SET USED_COUNT = :1, PERIOD_START = :2, PERIOD_END = :3, UPDATED_AT = :4
	WHERE ID = :5 AND PERIOD_END = :6`
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, used, periodStart, periodEnd, time.Now(), id, prevEnd)
	if err != nil {
		return false, wrapDBError("reset usage limit", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read reset result: %w", err)
	}
	return n > 0, nil
}

// IncrementUsage is additive and does not check the limit.
func (r *sqlxUsageLimitRepository) IncrementUsage(ctx context.Context, id string, count int) error {
	query := `UPDATE usage_limits
	SET USED_COUNT = USED_COUNT + :1, UPDATED_AT = :2
	WHERE ID = :3`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, count, time.Now(), id)
	return wrapDBError("increment usage", err)
}
