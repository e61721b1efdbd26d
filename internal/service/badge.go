package service

import (
	"context"
	"errors"
	"time"

	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/logger"

	"go.uber.org/zap"
)

// PerfectScore is the percentage that unlocks the perfect-score badge of a quiz type.
const PerfectScore = 100

// BadgeService unlocks threshold badges. Evaluate* never fail the caller:
// errors are logged and the affected check yields nothing.
type BadgeService interface {
	// Unlock returns false without error when the badge was already unlocked.
	Unlock(ctx context.Context, userID string, badge domain.Badge, progress int) (bool, error)
	EvaluateStreak(ctx context.Context, userID string, streak int) []domain.Badge
	EvaluateReviews(ctx context.Context, userID string, totalReviews int) []domain.Badge
	EvaluateMastery(ctx context.Context, userID string, masteredCount int) []domain.Badge
	EvaluateQuizCompletion(ctx context.Context, userID string, quizType domain.QuizType) []domain.Badge
	EvaluatePerfectScore(ctx context.Context, userID string, quizType domain.QuizType, percentage int) []domain.Badge
}

type badgeService struct {
	badgeRepo   domain.BadgeRepository
	attemptRepo domain.AttemptRepository
	now         func() time.Time
}

func NewBadgeService(badgeRepo domain.BadgeRepository, attemptRepo domain.AttemptRepository) BadgeService {
	return &badgeService{badgeRepo: badgeRepo, attemptRepo: attemptRepo, now: time.Now}
}

func (s *badgeService) Unlock(ctx context.Context, userID string, badge domain.Badge, progress int) (bool, error) {
	existing, err := s.badgeRepo.GetUserBadge(ctx, userID, badge.ID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	err = s.badgeRepo.CreateUserBadge(ctx, &domain.UserBadge{
		UserID:     userID,
		BadgeID:    badge.ID,
		Progress:   progress,
		UnlockedAt: s.now(),
	})
	if errors.Is(err, domain.ErrAlreadyUnlocked) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	logger.Get().Info("Badge unlocked",
		zap.String("user_id", userID),
		zap.String("badge_id", badge.ID),
		zap.Int("progress", progress))
	return true, nil
}

func (s *badgeService) EvaluateStreak(ctx context.Context, userID string, streak int) []domain.Badge {
	return s.evaluateThresholds(ctx, userID, domain.BadgeCategoryStreak, "", streak)
}

func (s *badgeService) EvaluateReviews(ctx context.Context, userID string, totalReviews int) []domain.Badge {
	return s.evaluateThresholds(ctx, userID, domain.BadgeCategoryReviews, "", totalReviews)
}

// EvaluateMastery takes the number of items reviewed at least three times.
func (s *badgeService) EvaluateMastery(ctx context.Context, userID string, masteredCount int) []domain.Badge {
	return s.evaluateThresholds(ctx, userID, domain.BadgeCategoryMastery, "", masteredCount)
}

// EvaluateQuizCompletion checks the per-type attempt count and the global total.
func (s *badgeService) EvaluateQuizCompletion(ctx context.Context, userID string, quizType domain.QuizType) []domain.Badge {
	var unlocked []domain.Badge

	byType, err := s.attemptRepo.CountAttemptsByType(ctx, userID, quizType)
	if err != nil {
		logBadgeError("count attempts by type", userID, domain.BadgeCategoryQuizType, err)
	} else {
		unlocked = append(unlocked, s.evaluateThresholds(ctx, userID, domain.BadgeCategoryQuizType, quizType, byType)...)
	}

	total, err := s.attemptRepo.CountAttempts(ctx, userID)
	if err != nil {
		logBadgeError("count attempts", userID, domain.BadgeCategoryTotalQuizzes, err)
	} else {
		unlocked = append(unlocked, s.evaluateThresholds(ctx, userID, domain.BadgeCategoryTotalQuizzes, "", total)...)
	}

	return unlocked
}

func (s *badgeService) EvaluatePerfectScore(ctx context.Context, userID string, quizType domain.QuizType, percentage int) []domain.Badge {
	if percentage < PerfectScore {
		return nil
	}
	return s.evaluateThresholds(ctx, userID, domain.BadgeCategoryPerfectScore, quizType, percentage)
}

func (s *badgeService) evaluateThresholds(ctx context.Context, userID string, category domain.BadgeCategory, quizType domain.QuizType, value int) []domain.Badge {
	badges, err := s.badgeRepo.ListBadges(ctx, category, quizType)
	if err != nil {
		logBadgeError("list badges", userID, category, err)
		return nil
	}

	var unlocked []domain.Badge
	for _, badge := range badges {
		if value < badge.RequiredValue {
			continue
		}
		ok, err := s.Unlock(ctx, userID, badge, value)
		if err != nil {
			logBadgeError("unlock "+badge.ID, userID, category, err)
			continue
		}
		if ok {
			unlocked = append(unlocked, badge)
		}
	}
	return unlocked
}

func logBadgeError(op, userID string, category domain.BadgeCategory, err error) {
	logger.Get().Error("Badge evaluation failed",
		zap.String("op", op),
		zap.String("user_id", userID),
		zap.String("category", string(category)),
		zap.Error(err))
}
