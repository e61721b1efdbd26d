package service

import (
	"context"
	"errors"

	"quiz-pipeline/internal/cache"
	"quiz-pipeline/internal/config"
	"quiz-pipeline/internal/dispatch"
	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/dto"
	"quiz-pipeline/internal/logger"
	"quiz-pipeline/internal/scoring"

	"go.uber.org/zap"
)

// TaskDispatcher accepts fire-and-forget side-effect tasks.
type TaskDispatcher interface {
	Dispatch(task dispatch.Task) bool
}

// SubmissionService orchestrates one quiz completion: load, score, record, then fan out side effects.
type SubmissionService interface {
	SubmitQuiz(ctx context.Context, userID string, sub *domain.QuizSubmission) (*dto.SubmitQuizResult, error)
}

type submissionService struct {
	quizRepo    domain.QuizRepository
	recorder    AttemptRecorder
	streaks     StreakService
	badges      BadgeService
	usage       UsageLimitService
	progress    CourseProgressService
	performance PerformanceTracker
	dispatcher  TaskDispatcher
	quizCache   *cache.TTLCache[*domain.Quiz]
	cfg         *config.Config
}

// SubmissionDeps groups the collaborators of NewSubmissionService.
type SubmissionDeps struct {
	QuizRepo    domain.QuizRepository
	Recorder    AttemptRecorder
	Streaks     StreakService
	Badges      BadgeService
	Usage       UsageLimitService
	Progress    CourseProgressService
	Performance PerformanceTracker
	Dispatcher  TaskDispatcher
	QuizCache   *cache.TTLCache[*domain.Quiz]
}

func NewSubmissionService(deps SubmissionDeps, cfg *config.Config) SubmissionService {
	return &submissionService{
		quizRepo:    deps.QuizRepo,
		recorder:    deps.Recorder,
		streaks:     deps.Streaks,
		badges:      deps.Badges,
		usage:       deps.Usage,
		progress:    deps.Progress,
		performance: deps.Performance,
		dispatcher:  deps.Dispatcher,
		quizCache:   deps.QuizCache,
		cfg:         cfg,
	}
}

func (s *submissionService) loadQuiz(ctx context.Context, slug string) (*domain.Quiz, error) {
	key := cache.QuizKey(slug)
	if s.quizCache != nil {
		if quiz, ok := s.quizCache.Get(key); ok {
			return quiz, nil
		}
	}

	quiz, err := s.quizRepo.GetQuizBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(slug)
	}
	if s.quizCache != nil {
		s.quizCache.Set(key, quiz, s.cfg.Cache.QuizTTL)
	}
	return quiz, nil
}

func (s *submissionService) SubmitQuiz(ctx context.Context, userID string, sub *domain.QuizSubmission) (*dto.SubmitQuizResult, error) {
	log := logger.Get().With(zap.String("user_id", userID), zap.String("quiz_id", sub.QuizSlug))

	quiz, err := s.loadQuiz(ctx, sub.QuizSlug)
	if err != nil {
		return nil, mapSubmitError(err)
	}
	if quiz.QuizType != "" && quiz.QuizType != sub.Type {
		log.Warn("Submitted type differs from stored quiz type",
			zap.String("submitted_type", string(sub.Type)),
			zap.String("stored_type", string(quiz.QuizType)))
	}

	if sub.Synthesized {
		for i := range sub.Answers {
			if i < len(quiz.Questions) {
				sub.Answers[i].QuestionID = quiz.Questions[i].Key()
			}
		}
	}

	totalQuestions := len(quiz.Questions)
	if totalQuestions == 0 {
		totalQuestions = sub.TotalQuestions
	}
	if totalQuestions == 0 {
		totalQuestions = len(sub.Answers)
	}
	if len(sub.Answers) != totalQuestions {
		log.Warn("Answer count does not match question count",
			zap.Int("answers", len(sub.Answers)),
			zap.Int("questions", totalQuestions))
	}

	pct := scoring.CalculatePercentageScore(sub.Score, totalQuestions, sub.Type)
	accuracy := scoring.CalculateAccuracy(sub.Answers, totalQuestions)

	policy := RetryPolicy{MaxAttempts: s.cfg.Pipeline.MaxAttempts, Backoff: s.cfg.Pipeline.RetryBackoff}
	result, err := WithRetry(ctx, policy, func(ctx context.Context) (*domain.AttemptResult, error) {
		return s.recorder.Record(ctx, AttemptInput{
			UserID:          userID,
			Submission:      sub,
			Quiz:            quiz,
			PercentageScore: pct,
			AccuracyScore:   accuracy,
			TotalQuestions:  totalQuestions,
		})
	})
	if err != nil {
		log.Error("Failed to record quiz attempt", zap.Error(err))
		return nil, mapSubmitError(err)
	}

	if s.quizCache != nil && result.UpdatedQuiz != nil {
		s.quizCache.Set(cache.QuizKey(sub.QuizSlug), result.UpdatedQuiz, s.cfg.Cache.QuizTTL)
	}

	s.dispatchSideEffects(userID, sub, result)

	return toSubmitResult(result, sub), nil
}

func (s *submissionService) dispatchSideEffects(userID string, sub *domain.QuizSubmission, result *domain.AttemptResult) {
	fields := []zap.Field{zap.String("user_id", userID), zap.String("quiz_id", sub.QuizSlug)}
	quiz := result.UpdatedQuiz
	pct := result.PercentageScore

	s.dispatch(dispatch.Task{
		Name:    "course_progress",
		Fields:  fields,
		Timeout: s.cfg.Pipeline.ProgressTimeout,
		Run: func(ctx context.Context) error {
			return s.progress.OnQuizCompleted(ctx, userID, QuizCompletion{
				Quiz:        quiz,
				Score:       pct,
				CompletedAt: sub.CompletedAt,
			})
		},
	})

	s.dispatch(dispatch.Task{
		Name:   "streak",
		Fields: fields,
		Run: func(ctx context.Context) error {
			res, err := s.streaks.UpdateStreak(ctx, userID, sub.CompletedAt)
			if err != nil {
				return err
			}
			if res.Changed {
				s.badges.EvaluateStreak(ctx, userID, res.CurrentStreak)
			}
			return nil
		},
	})

	if sub.Type != domain.QuizTypeFlashcard {
		s.dispatchQuizAccounting(userID, sub.Type, pct, fields)
	}

	if sub.Difficulty == "" {
		return
	}
	hints := 0
	for _, a := range sub.Answers {
		hints += a.HintsUsed
	}
	record := domain.PerformanceRecord{
		Topic:      string(sub.Type) + "_" + sub.QuizSlug,
		IsCorrect:  pct >= scoring.PassThreshold,
		Difficulty: sub.Difficulty,
		TimeSpent:  int(sub.TotalTime),
		HintsUsed:  hints,
	}
	s.dispatch(dispatch.Task{
		Name:   "adaptive",
		Fields: fields,
		Run: func(ctx context.Context) error {
			return s.performance.TrackPerformance(ctx, userID, record)
		},
	})
}

// dispatchQuizAccounting covers the generic completion badges and the attempt quota.
// Flashcards are accounted by their own review path.
func (s *submissionService) dispatchQuizAccounting(userID string, quizType domain.QuizType, pct int, fields []zap.Field) {
	s.dispatch(dispatch.Task{
		Name:   "badges",
		Fields: fields,
		Run: func(ctx context.Context) error {
			s.badges.EvaluateQuizCompletion(ctx, userID, quizType)
			s.badges.EvaluatePerfectScore(ctx, userID, quizType, pct)
			return nil
		},
	})

	s.dispatch(dispatch.Task{
		Name:   "usage",
		Fields: fields,
		Run: func(ctx context.Context) error {
			return s.usage.Increment(ctx, userID, domain.ResourceQuizAttempts, 1)
		},
	})
}

func (s *submissionService) dispatch(task dispatch.Task) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(task)
}

// mapSubmitError keeps domain errors and hides everything else behind a processing error.
func mapSubmitError(err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return de
	}
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return domain.NewProcessingError("Failed to process quiz submission", err)
}

func toSubmitResult(result *domain.AttemptResult, sub *domain.QuizSubmission) *dto.SubmitQuizResult {
	quiz := result.UpdatedQuiz
	attempt := result.Attempt
	return &dto.SubmitQuizResult{
		UpdatedUserQuiz: dto.QuizPayload{
			ID:              quiz.ID,
			Slug:            quiz.Slug,
			QuizType:        string(quiz.QuizType),
			BestScore:       quiz.BestScore,
			LastAttemptedAt: quiz.LastAttemptedAt,
		},
		QuizAttempt: dto.AttemptPayload{
			ID:        attempt.ID,
			UserID:    attempt.UserID,
			QuizID:    attempt.QuizID,
			Score:     attempt.Score,
			Accuracy:  attempt.Accuracy,
			TimeSpent: attempt.TimeSpent,
			CreatedAt: attempt.CreatedAt,
			UpdatedAt: attempt.UpdatedAt,
		},
		PercentageScore: result.PercentageScore,
		TotalQuestions:  result.TotalQuestions,
		Score:           sub.Score,
		TotalTime:       sub.TotalTime,
	}
}
