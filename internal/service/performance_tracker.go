package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"quiz-pipeline/internal/cache"
	"quiz-pipeline/internal/domain"
)

const (
	recommendMinAttempts = 5
	promoteAccuracy      = 0.8
	demoteAccuracy       = 0.5
)

// PerformanceTracker accumulates per-topic adaptive-learning counters in the shared cache.
type PerformanceTracker interface {
	TrackPerformance(ctx context.Context, userID string, record domain.PerformanceRecord) error
}

type performanceTracker struct {
	store domain.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewPerformanceTracker(store domain.Cache, ttl time.Duration) PerformanceTracker {
	return &performanceTracker{store: store, ttl: ttl, now: time.Now}
}

func (t *performanceTracker) TrackPerformance(ctx context.Context, userID string, record domain.PerformanceRecord) error {
	key := cache.PerformanceKey(userID, record.Topic)

	attempts, err := t.store.HIncrBy(ctx, key, "attempts", 1)
	if err != nil {
		return fmt.Errorf("failed to track attempts: %w", err)
	}
	var correctIncr int64
	if record.IsCorrect {
		correctIncr = 1
	}
	correct, err := t.store.HIncrBy(ctx, key, "correct", correctIncr)
	if err != nil {
		return fmt.Errorf("failed to track correct answers: %w", err)
	}
	if _, err := t.store.HIncrBy(ctx, key, "total_time", int64(record.TimeSpent)); err != nil {
		return fmt.Errorf("failed to track time spent: %w", err)
	}
	if _, err := t.store.HIncrBy(ctx, key, "hints", int64(record.HintsUsed)); err != nil {
		return fmt.Errorf("failed to track hints: %w", err)
	}
	if record.Difficulty != "" {
		field := "difficulty_" + string(record.Difficulty) + "_attempts"
		if _, err := t.store.HIncrBy(ctx, key, field, 1); err != nil {
			return fmt.Errorf("failed to track difficulty: %w", err)
		}
		if err := t.store.HSet(ctx, key, "last_difficulty", string(record.Difficulty)); err != nil {
			return err
		}
	}
	if err := t.store.HSet(ctx, key, "last_seen", strconv.FormatInt(t.now().Unix(), 10)); err != nil {
		return err
	}

	if next, ok := recommendDifficulty(record.Difficulty, attempts, correct); ok {
		if err := t.store.HSet(ctx, key, "recommended_difficulty", string(next)); err != nil {
			return err
		}
	}

	if t.ttl > 0 {
		return t.store.Expire(ctx, key, t.ttl)
	}
	return nil
}

// recommendDifficulty moves one step up or down once enough attempts are seen.
func recommendDifficulty(current domain.Difficulty, attempts, correct int64) (domain.Difficulty, bool) {
	if current == "" || attempts < recommendMinAttempts {
		return "", false
	}
	accuracy := float64(correct) / float64(attempts)
	switch {
	case accuracy >= promoteAccuracy:
		switch current {
		case domain.DifficultyEasy:
			return domain.DifficultyMedium, true
		case domain.DifficultyMedium, domain.DifficultyHard:
			return domain.DifficultyHard, true
		}
	case accuracy < demoteAccuracy:
		switch current {
		case domain.DifficultyHard:
			return domain.DifficultyMedium, true
		case domain.DifficultyMedium, domain.DifficultyEasy:
			return domain.DifficultyEasy, true
		}
	}
	return current, true
}
