package service

import (
	"context"
	"errors"
	"testing"

	"quiz-pipeline/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var streakBadges = []domain.Badge{
	{ID: "streak_3", Category: domain.BadgeCategoryStreak, RequiredValue: 3},
	{ID: "streak_7", Category: domain.BadgeCategoryStreak, RequiredValue: 7},
	{ID: "streak_30", Category: domain.BadgeCategoryStreak, RequiredValue: 30},
}

func TestBadgeService_Unlock(t *testing.T) {
	ctx := context.Background()
	badge := streakBadges[0]

	t.Run("inserts when absent", func(t *testing.T) {
		repo := new(MockBadgeRepository)
		repo.On("GetUserBadge", ctx, "user-1", "streak_3").Return(nil, nil)
		repo.On("CreateUserBadge", ctx, mock.MatchedBy(func(ub *domain.UserBadge) bool {
			return ub.UserID == "user-1" && ub.BadgeID == "streak_3" && ub.Progress == 4 && !ub.UnlockedAt.IsZero()
		})).Return(nil)

		ok, err := NewBadgeService(repo, nil).Unlock(ctx, "user-1", badge, 4)
		require.NoError(t, err)
		assert.True(t, ok)
		repo.AssertExpectations(t)
	})

	t.Run("existing badge is a no-op", func(t *testing.T) {
		repo := new(MockBadgeRepository)
		repo.On("GetUserBadge", ctx, "user-1", "streak_3").Return(&domain.UserBadge{ID: "ub-1"}, nil)

		ok, err := NewBadgeService(repo, nil).Unlock(ctx, "user-1", badge, 4)
		require.NoError(t, err)
		assert.False(t, ok)
		repo.AssertNotCalled(t, "CreateUserBadge", mock.Anything, mock.Anything)
	})

	t.Run("lost insert race is a no-op", func(t *testing.T) {
		repo := new(MockBadgeRepository)
		repo.On("GetUserBadge", ctx, "user-1", "streak_3").Return(nil, nil)
		repo.On("CreateUserBadge", ctx, mock.Anything).Return(domain.ErrAlreadyUnlocked)

		ok, err := NewBadgeService(repo, nil).Unlock(ctx, "user-1", badge, 4)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBadgeService_EvaluateStreak(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBadgeRepository)
	repo.On("ListBadges", ctx, domain.BadgeCategoryStreak, domain.QuizType("")).Return(streakBadges, nil)
	repo.On("GetUserBadge", ctx, "user-1", "streak_3").Return(&domain.UserBadge{ID: "ub-1"}, nil)
	repo.On("GetUserBadge", ctx, "user-1", "streak_7").Return(nil, nil)
	repo.On("CreateUserBadge", ctx, mock.Anything).Return(nil).Once()

	unlocked := NewBadgeService(repo, nil).EvaluateStreak(ctx, "user-1", 8)

	require.Len(t, unlocked, 1)
	assert.Equal(t, "streak_7", unlocked[0].ID)
	repo.AssertNotCalled(t, "GetUserBadge", ctx, "user-1", "streak_30")
	repo.AssertExpectations(t)
}

func TestBadgeService_EvaluateSwallowsErrors(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBadgeRepository)
	repo.On("ListBadges", ctx, domain.BadgeCategoryReviews, domain.QuizType("")).Return(nil, errors.New("db down"))
	repo.On("ListBadges", ctx, domain.BadgeCategoryMastery, domain.QuizType("")).Return([]domain.Badge{{ID: "mastery_10", RequiredValue: 10}}, nil)
	repo.On("GetUserBadge", ctx, "user-1", "mastery_10").Return(nil, errors.New("timeout"))

	svc := NewBadgeService(repo, nil)
	assert.Empty(t, svc.EvaluateReviews(ctx, "user-1", 100))
	assert.Empty(t, svc.EvaluateMastery(ctx, "user-1", 12))
}

func TestBadgeService_EvaluateQuizCompletion(t *testing.T) {
	ctx := context.Background()
	badges := new(MockBadgeRepository)
	attempts := new(MockAttemptRepository)

	attempts.On("CountAttemptsByType", ctx, "user-1", domain.QuizTypeMCQ).Return(10, nil)
	attempts.On("CountAttempts", ctx, "user-1").Return(1, nil)
	badges.On("ListBadges", ctx, domain.BadgeCategoryQuizType, domain.QuizTypeMCQ).
		Return([]domain.Badge{{ID: "quiz_mcq_10", RequiredValue: 10, QuizType: domain.QuizTypeMCQ}}, nil)
	badges.On("ListBadges", ctx, domain.BadgeCategoryTotalQuizzes, domain.QuizType("")).
		Return([]domain.Badge{{ID: "total_quizzes_1", RequiredValue: 1}, {ID: "total_quizzes_25", RequiredValue: 25}}, nil)
	badges.On("GetUserBadge", ctx, "user-1", mock.Anything).Return(nil, nil)
	badges.On("CreateUserBadge", ctx, mock.Anything).Return(nil)

	unlocked := NewBadgeService(badges, attempts).EvaluateQuizCompletion(ctx, "user-1", domain.QuizTypeMCQ)

	ids := make([]string, 0, len(unlocked))
	for _, b := range unlocked {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"quiz_mcq_10", "total_quizzes_1"}, ids)
	badges.AssertNumberOfCalls(t, "CreateUserBadge", 2)
}

func TestBadgeService_EvaluatePerfectScore(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBadgeRepository)
	svc := NewBadgeService(repo, nil)

	assert.Empty(t, svc.EvaluatePerfectScore(ctx, "user-1", domain.QuizTypeCode, 99))
	repo.AssertNotCalled(t, "ListBadges", mock.Anything, mock.Anything, mock.Anything)

	repo.On("ListBadges", ctx, domain.BadgeCategoryPerfectScore, domain.QuizTypeCode).
		Return([]domain.Badge{{ID: "perfect_code", RequiredValue: 100, QuizType: domain.QuizTypeCode}}, nil)
	repo.On("GetUserBadge", ctx, "user-1", "perfect_code").Return(nil, nil)
	repo.On("CreateUserBadge", ctx, mock.Anything).Return(nil)

	unlocked := svc.EvaluatePerfectScore(ctx, "user-1", domain.QuizTypeCode, 100)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "perfect_code", unlocked[0].ID)
}
