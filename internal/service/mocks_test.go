package service

import (
	"context"
	"sync"
	"time"

	"quiz-pipeline/internal/dispatch"
	"quiz-pipeline/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuizRepository ---
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) GetQuizBySlug(ctx context.Context, slug string) (*domain.Quiz, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizRepository) GetQuizIDBySlug(ctx context.Context, slug string) (int64, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuizRepository) UpdateBestScore(ctx context.Context, quizID int64, score int, attemptedAt time.Time) error {
	args := m.Called(ctx, quizID, score, attemptedAt)
	return args.Error(0)
}

// --- MockAttemptRepository ---
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) UpsertAttempt(ctx context.Context, attempt *domain.QuizAttempt) (*domain.QuizAttempt, error) {
	args := m.Called(ctx, attempt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepository) CreateAttemptQuestions(ctx context.Context, rows []domain.AttemptQuestion) (int64, error) {
	args := m.Called(ctx, rows)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAttemptRepository) CountAttemptsByType(ctx context.Context, userID string, quizType domain.QuizType) (int, error) {
	args := m.Called(ctx, userID, quizType)
	return args.Int(0), args.Error(1)
}

func (m *MockAttemptRepository) CountAttempts(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetStreak(ctx context.Context, userID string) (*domain.StreakState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StreakState), args.Error(1)
}

func (m *MockUserRepository) UpdateStreak(ctx context.Context, state *domain.StreakState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockUserRepository) GetTier(ctx context.Context, userID string) (domain.UserTier, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.UserTier), args.Error(1)
}

// --- MockBadgeRepository ---
type MockBadgeRepository struct {
	mock.Mock
}

func (m *MockBadgeRepository) ListBadges(ctx context.Context, category domain.BadgeCategory, quizType domain.QuizType) ([]domain.Badge, error) {
	args := m.Called(ctx, category, quizType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Badge), args.Error(1)
}

func (m *MockBadgeRepository) GetUserBadge(ctx context.Context, userID, badgeID string) (*domain.UserBadge, error) {
	args := m.Called(ctx, userID, badgeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserBadge), args.Error(1)
}

func (m *MockBadgeRepository) CreateUserBadge(ctx context.Context, ub *domain.UserBadge) error {
	args := m.Called(ctx, ub)
	return args.Error(0)
}

// --- MockUsageLimitRepository ---
type MockUsageLimitRepository struct {
	mock.Mock
}

func (m *MockUsageLimitRepository) GetUsageLimit(ctx context.Context, userID string, resource domain.ResourceType) (*domain.UsageLimit, error) {
	args := m.Called(ctx, userID, resource)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageLimit), args.Error(1)
}

func (m *MockUsageLimitRepository) CreateUsageLimit(ctx context.Context, limit *domain.UsageLimit) (*domain.UsageLimit, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UsageLimit), args.Error(1)
}

func (m *MockUsageLimitRepository) ResetUsageLimit(ctx context.Context, id string, prevEnd time.Time, used int, periodStart, periodEnd time.Time) (bool, error) {
	args := m.Called(ctx, id, prevEnd, used, periodStart, periodEnd)
	return args.Bool(0), args.Error(1)
}

func (m *MockUsageLimitRepository) IncrementUsage(ctx context.Context, id string, count int) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}

// --- MockCourseRepository ---
type MockCourseRepository struct {
	mock.Mock
}

func (m *MockCourseRepository) FindQuizLinkExact(ctx context.Context, slug string, quizID int64) (*domain.CourseQuizLink, error) {
	args := m.Called(ctx, slug, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CourseQuizLink), args.Error(1)
}

func (m *MockCourseRepository) FindQuizLinkFuzzy(ctx context.Context, slug string) (*domain.CourseQuizLink, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CourseQuizLink), args.Error(1)
}

func (m *MockCourseRepository) MarkChapterCompleted(ctx context.Context, userID string, link domain.CourseQuizLink, at time.Time) error {
	args := m.Called(ctx, userID, link, at)
	return args.Error(0)
}

func (m *MockCourseRepository) CountChapters(ctx context.Context, courseID int64) (int, error) {
	args := m.Called(ctx, courseID)
	return args.Int(0), args.Error(1)
}

func (m *MockCourseRepository) CountCompletedChapters(ctx context.Context, userID string, courseID int64) (int, error) {
	args := m.Called(ctx, userID, courseID)
	return args.Int(0), args.Error(1)
}

func (m *MockCourseRepository) CreateLearningEvent(ctx context.Context, event *domain.LearningEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockCourseRepository) UpsertCourseProgress(ctx context.Context, progress *domain.CourseProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

// --- fakeTxManager runs fn directly and records how often it was asked to. ---
type fakeTxManager struct {
	mu    sync.Mutex
	calls int
	opts  domain.TxOptions
}

func (f *fakeTxManager) WithTransaction(ctx context.Context, opts domain.TxOptions, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.calls++
	f.opts = opts
	f.mu.Unlock()
	return fn(ctx)
}

// --- recordingDispatcher runs nothing; tests invoke the captured tasks. ---
type recordingDispatcher struct {
	mu    sync.Mutex
	tasks []dispatch.Task
}

func (d *recordingDispatcher) Dispatch(task dispatch.Task) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = append(d.tasks, task)
	return true
}

func (d *recordingDispatcher) names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.tasks))
	for _, t := range d.tasks {
		names = append(names, t.Name)
	}
	return names
}

func (d *recordingDispatcher) task(name string) (dispatch.Task, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range d.tasks {
		if t.Name == name {
			return t, true
		}
	}
	return dispatch.Task{}, false
}
