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

// sqlxUserRepository reads and writes the streak and tier columns of USERS.
type sqlxUserRepository struct {
	db DBTX
}

func NewSQLXUserRepository(db DBTX) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

// GetStreak returns a zero state for a user without a row.
func (r *sqlxUserRepository) GetStreak(ctx context.Context, userID string) (*domain.StreakState, error) {
	var row models.UserStreak
	query := `SELECT ID, STREAK, LONGEST_STREAK, LAST_REVIEW_DATE FROM users WHERE ID = :1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.StreakState{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to get streak for user %s: %w", userID, err)
	}

	state := &domain.StreakState{
		UserID:        row.ID,
		Streak:        row.Streak,
		LongestStreak: row.LongestStreak,
	}
	if row.LastReviewDate.Valid {
		last := row.LastReviewDate.Time
		state.LastReviewDate = &last
	}
	return state, nil
}

// UpdateStreak creates the user row when the auth subsystem has not yet.
func (r *sqlxUserRepository) UpdateStreak(ctx context.Context, state *domain.StreakState) error {
	var last sql.NullTime
	if state.LastReviewDate != nil {
		last = util.TimeToNullTime(*state.LastReviewDate)
	}
	now := time.Now()

	query := `MERGE INTO users t
	USING (SELECT :1 AS ID FROM dual) s
	ON (t.ID = s.ID)
	WHEN MATCHED THEN UPDATE SET
		t.STREAK = :2, t.LONGEST_STREAK = :3, t.LAST_REVIEW_DATE = :4, t.UPDATED_AT = :5
	WHEN NOT MATCHED THEN INSERT (ID, STREAK, LONGEST_STREAK, LAST_REVIEW_DATE, CREATED_AT, UPDATED_AT)
		VALUES (s.ID, :6, :7, :8, :9, :10)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		state.UserID,
		state.Streak, state.LongestStreak, last, now,
		state.Streak, state.LongestStreak, last, now, now,
	)
	return wrapDBError("update streak", err)
}

// GetTier falls back to the free tier for unknown users.
func (r *sqlxUserRepository) GetTier(ctx context.Context, userID string) (domain.UserTier, error) {
	var tier sql.NullString
	err := GetExecutor(ctx, r.db).GetContext(ctx, &tier, `SELECT TIER FROM users WHERE ID = :1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.TierFree, nil
		}
		return "", fmt.Errorf("failed to get tier for user %s: %w", userID, err)
	}
	if !tier.Valid || tier.String == "" {
		return domain.TierFree, nil
	}
	return domain.UserTier(tier.String), nil
}
