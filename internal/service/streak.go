package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"quiz-pipeline/internal/domain"
)

// StreakService maintains the daily engagement streak shared by every quiz type and flashcards.
type StreakService interface {
	UpdateStreak(ctx context.Context, userID string, completedAt time.Time) (*domain.StreakResult, error)
	GetStreak(ctx context.Context, userID string) (*domain.StreakState, error)
}

type streakService struct {
	userRepo domain.UserRepository
	loc      *time.Location
}

func NewStreakService(userRepo domain.UserRepository, loc *time.Location) StreakService {
	if loc == nil {
		loc = time.Local
	}
	return &streakService{userRepo: userRepo, loc: loc}
}

// NextStreak applies one completion to state. Days are calendar days in loc.
// A completion on the same day as the last review changes nothing.
func NextStreak(state domain.StreakState, completedAt time.Time, loc *time.Location) (domain.StreakState, domain.StreakResult) {
	next := state
	continued := false

	if state.LastReviewDate != nil {
		gap := calendarDaysBetween(*state.LastReviewDate, completedAt, loc)
		switch {
		case gap <= 0:
			return state, domain.StreakResult{
				CurrentStreak: state.Streak,
				LongestStreak: state.LongestStreak,
			}
		case gap == 1:
			next.Streak = state.Streak + 1
			continued = true
		default:
			next.Streak = 1
		}
	} else {
		next.Streak = 1
	}

	result := domain.StreakResult{
		CurrentStreak:   next.Streak,
		StreakContinued: continued,
		Changed:         true,
	}
	if next.Streak > state.LongestStreak {
		next.LongestStreak = next.Streak
		result.IsNewRecord = true
	}
	result.LongestStreak = next.LongestStreak

	at := completedAt
	next.LastReviewDate = &at
	return next, result
}

func calendarDaysBetween(from, to time.Time, loc *time.Location) int {
	y1, m1, d1 := from.In(loc).Date()
	y2, m2, d2 := to.In(loc).Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, loc)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, loc)
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// UpdateStreak writes only when the streak changed.
func (s *streakService) UpdateStreak(ctx context.Context, userID string, completedAt time.Time) (*domain.StreakResult, error) {
	state, err := s.userRepo.GetStreak(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load streak: %w", err)
	}
	state.UserID = userID

	next, result := NextStreak(*state, completedAt, s.loc)
	if !result.Changed {
		return &result, nil
	}
	if err := s.userRepo.UpdateStreak(ctx, &next); err != nil {
		return nil, fmt.Errorf("failed to save streak: %w", err)
	}
	return &result, nil
}

func (s *streakService) GetStreak(ctx context.Context, userID string) (*domain.StreakState, error) {
	state, err := s.userRepo.GetStreak(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get streak", err)
	}
	return state, nil
}
