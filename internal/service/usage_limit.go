package service

import (
	"context"
	"fmt"
	"time"

	"quiz-pipeline/internal/domain"
)

// MonthlyPeriod is the fixed length of a monthly quota window.
const MonthlyPeriod = 30 * 24 * time.Hour

type resourcePolicy struct {
	frequency domain.ResetFrequency
	limits    map[domain.UserTier]int
}

var resourcePolicies = map[domain.ResourceType]resourcePolicy{
	domain.ResourceQuizAttempts: {
		frequency: domain.ResetDaily,
		limits:    map[domain.UserTier]int{domain.TierFree: 10, domain.TierBasic: 50, domain.TierPro: 200, domain.TierUnlimited: domain.UnlimitedCount},
	},
	domain.ResourceFlashcardReviews: {
		frequency: domain.ResetDaily,
		limits:    map[domain.UserTier]int{domain.TierFree: 50, domain.TierBasic: 200, domain.TierPro: 1000, domain.TierUnlimited: domain.UnlimitedCount},
	},
	domain.ResourceDeckCreation: {
		frequency: domain.ResetMonthly,
		limits:    map[domain.UserTier]int{domain.TierFree: 3, domain.TierBasic: 10, domain.TierPro: 50, domain.TierUnlimited: domain.UnlimitedCount},
	},
	domain.ResourceCourseAccess: {
		frequency: domain.ResetMonthly,
		limits:    map[domain.UserTier]int{domain.TierFree: 2, domain.TierBasic: 10, domain.TierPro: 50, domain.TierUnlimited: domain.UnlimitedCount},
	},
}

// ParseResourceType returns false for unknown resources.
func ParseResourceType(s string) (domain.ResourceType, bool) {
	rt := domain.ResourceType(s)
	_, ok := resourcePolicies[rt]
	return rt, ok
}

// LimitFor sizes a quota by tier; unknown tiers get the free limit.
func LimitFor(resource domain.ResourceType, tier domain.UserTier) int {
	policy := resourcePolicies[resource]
	if limit, ok := policy.limits[tier]; ok {
		return limit
	}
	return policy.limits[domain.TierFree]
}

// UsageLimitService tracks per-resource, per-period quotas.
type UsageLimitService interface {
	CanUse(ctx context.Context, userID string, resource domain.ResourceType, tier domain.UserTier) (*domain.UsageReport, error)
	// Increment is additive and does not enforce the limit.
	Increment(ctx context.Context, userID string, resource domain.ResourceType, count int) error
}

type usageLimitService struct {
	repo     domain.UsageLimitRepository
	userRepo domain.UserRepository
	loc      *time.Location
	now      func() time.Time
}

func NewUsageLimitService(repo domain.UsageLimitRepository, userRepo domain.UserRepository, loc *time.Location) UsageLimitService {
	if loc == nil {
		loc = time.Local
	}
	return &usageLimitService{repo: repo, userRepo: userRepo, loc: loc, now: time.Now}
}

// currentPeriod returns the window containing now. Daily windows start at
// local midnight; monthly windows advance in 30-day steps from prevStart.
func currentPeriod(freq domain.ResetFrequency, prevStart, now time.Time, loc *time.Location) (time.Time, time.Time) {
	if freq == domain.ResetMonthly {
		start := prevStart
		if start.IsZero() || start.After(now) {
			start = now
		}
		for !now.Before(start.Add(MonthlyPeriod)) {
			start = start.Add(MonthlyPeriod)
		}
		return start, start.Add(MonthlyPeriod)
	}
	y, m, d := now.In(loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

func (s *usageLimitService) getOrCreate(ctx context.Context, userID string, resource domain.ResourceType, tier domain.UserTier) (*domain.UsageLimit, error) {
	limit, err := s.repo.GetUsageLimit(ctx, userID, resource)
	if err != nil {
		return nil, err
	}
	if limit != nil {
		return limit, nil
	}

	if tier == "" {
		if tier, err = s.userRepo.GetTier(ctx, userID); err != nil {
			return nil, err
		}
	}
	freq := resourcePolicies[resource].frequency
	start, end := currentPeriod(freq, time.Time{}, s.now(), s.loc)
	return s.repo.CreateUsageLimit(ctx, &domain.UsageLimit{
		UserID:         userID,
		ResourceType:   resource,
		UsedCount:      0,
		LimitCount:     LimitFor(resource, tier),
		PeriodStart:    start,
		PeriodEnd:      end,
		ResetFrequency: freq,
	})
}

// CanUse lazily creates the quota row. An expired period is reported as fully
// available without being written.
func (s *usageLimitService) CanUse(ctx context.Context, userID string, resource domain.ResourceType, tier domain.UserTier) (*domain.UsageReport, error) {
	if _, ok := resourcePolicies[resource]; !ok {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("unknown resource type: %s", resource))
	}

	limit, err := s.getOrCreate(ctx, userID, resource, tier)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load usage limit", err)
	}

	now := s.now()
	used := limit.UsedCount
	periodEnd := limit.PeriodEnd
	if now.After(limit.PeriodEnd) {
		used = 0
		_, periodEnd = currentPeriod(limit.ResetFrequency, limit.PeriodStart, now, s.loc)
	}

	report := &domain.UsageReport{
		Used:           used,
		Limit:          limit.LimitCount,
		PeriodEnd:      periodEnd,
		ResetFrequency: limit.ResetFrequency,
	}
	if limit.LimitCount == domain.UnlimitedCount {
		report.Allowed = true
		report.Remaining = domain.UnlimitedCount
		return report, nil
	}
	report.Allowed = used < limit.LimitCount
	report.Remaining = limit.LimitCount - used
	if report.Remaining < 0 {
		report.Remaining = 0
	}
	return report, nil
}

// Increment rolls an expired period over before counting. When a concurrent
// writer wins the rollover the count is added to the new period instead.
func (s *usageLimitService) Increment(ctx context.Context, userID string, resource domain.ResourceType, count int) error {
	if count <= 0 {
		count = 1
	}
	limit, err := s.getOrCreate(ctx, userID, resource, "")
	if err != nil {
		return fmt.Errorf("failed to load usage limit: %w", err)
	}

	now := s.now()
	if now.After(limit.PeriodEnd) {
		start, end := currentPeriod(limit.ResetFrequency, limit.PeriodStart, now, s.loc)
		reset, err := s.repo.ResetUsageLimit(ctx, limit.ID, limit.PeriodEnd, count, start, end)
		if err != nil {
			return err
		}
		if reset {
			return nil
		}
	}
	return s.repo.IncrementUsage(ctx, limit.ID, count)
}
