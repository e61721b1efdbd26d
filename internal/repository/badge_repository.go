package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/repository/models"
	"quiz-pipeline/internal/util"
)

type sqlxBadgeRepository struct {
	db DBTX
}

func NewSQLXBadgeRepository(db DBTX) domain.BadgeRepository {
	return &sqlxBadgeRepository{db: db}
}

// ListBadges orders by REQUIRED_VALUE. An empty quizType does not filter.
func (r *sqlxBadgeRepository) ListBadges(ctx context.Context, category domain.BadgeCategory, quizType domain.QuizType) ([]domain.Badge, error) {
	query := `SELECT ID, NAME, DESCRIPTION, CATEGORY, TIER, REQUIRED_VALUE, QUIZ_TYPE
	FROM badges
	WHERE CATEGORY = :1`
	args := []interface{}{string(category)}
	if quizType != "" {
		query += ` AND QUIZ_TYPE = :2`
		args = append(args, string(quizType))
	}
	query += ` ORDER BY REQUIRED_VALUE, ID`

	var rows []models.Badge
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list %s badges: %w", category, err)
	}

	badges := make([]domain.Badge, 0, len(rows))
	for _, row := range rows {
		badges = append(badges, domain.Badge{
			ID:            row.ID,
			Name:          row.Name,
			Description:   row.Description.String,
			Category:      domain.BadgeCategory(row.Category),
			Tier:          row.Tier,
			RequiredValue: row.RequiredValue,
			QuizType:      domain.QuizType(row.QuizType.String),
		})
	}
	return badges, nil
}

// GetUserBadge returns nil, nil when the badge is not unlocked.
func (r *sqlxBadgeRepository) GetUserBadge(ctx context.Context, userID, badgeID string) (*domain.UserBadge, error) {
	var row models.UserBadge
	query := `SELECT ID, USER_ID, BADGE_ID, PROGRESS, UNLOCKED_AT
	FROM user_badges
	WHERE USER_ID = :1 AND BADGE_ID = :2`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, query, userID, badgeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user badge: %w", err)
	}
	return &domain.UserBadge{
		ID:         row.ID,
		UserID:     row.UserID,
		BadgeID:    row.BadgeID,
		Progress:   row.Progress,
		UnlockedAt: row.UnlockedAt,
	}, nil
}

// CreateUserBadge maps the (USER_ID, BADGE_ID) unique violation to domain.ErrAlreadyUnlocked.
func (r *sqlxBadgeRepository) CreateUserBadge(ctx context.Context, ub *domain.UserBadge) error {
	if ub.ID == "" {
		ub.ID = util.NewULID()
	}
	query := `INSERT INTO user_badges (ID, USER_ID, BADGE_ID, PROGRESS, UNLOCKED_AT)
	VALUES (:1, :2, :3, :4, :5)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, ub.ID, ub.UserID, ub.BadgeID, ub.Progress, ub.UnlockedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyUnlocked
		}
		return fmt.Errorf("failed to create user badge: %w", err)
	}
	return nil
}
