package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"quiz-pipeline/internal/cache"
	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/logger"
	"quiz-pipeline/internal/util"

	"go.uber.org/zap"
)

// QuizCompletion is what course progress needs to know about one finished quiz.
type QuizCompletion struct {
	Quiz        *domain.Quiz
	Score       int
	CompletedAt time.Time
}

// CourseProgressService links completed quizzes to course chapters.
type CourseProgressService interface {
	// OnQuizCompleted is a no-op when the quiz belongs to no course.
	OnQuizCompleted(ctx context.Context, userID string, completion QuizCompletion) error
}

type courseProgressService struct {
	courseRepo domain.CourseRepository
	txManager  domain.TransactionManager
	txOptions  domain.TxOptions
	links      *cache.TTLCache[*domain.CourseQuizLink]
	linkTTL    time.Duration
}

func NewCourseProgressService(
	courseRepo domain.CourseRepository,
	txManager domain.TransactionManager,
	txOptions domain.TxOptions,
	links *cache.TTLCache[*domain.CourseQuizLink],
	linkTTL time.Duration,
) CourseProgressService {
	return &courseProgressService{
		courseRepo: courseRepo,
		txManager:  txManager,
		txOptions:  txOptions,
		links:      links,
		linkTTL:    linkTTL,
	}
}

func (s *courseProgressService) findLink(ctx context.Context, quiz *domain.Quiz) (*domain.CourseQuizLink, error) {
	key := cache.CourseLinkKey(quiz.Slug)
	if s.links != nil {
		if link, ok := s.links.Get(key); ok {
			return link, nil
		}
	}

	link, err := s.courseRepo.FindQuizLinkExact(ctx, quiz.Slug, quiz.ID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		if link, err = s.courseRepo.FindQuizLinkFuzzy(ctx, quiz.Slug); err != nil {
			return nil, err
		}
	}
	if link != nil && s.links != nil {
		s.links.Set(key, link, s.linkTTL)
	}
	return link, nil
}

func (s *courseProgressService) OnQuizCompleted(ctx context.Context, userID string, completion QuizCompletion) error {
	link, err := s.findLink(ctx, completion.Quiz)
	if err != nil {
		return err
	}
	if link == nil {
		logger.Get().Debug("Quiz is not part of a course",
			zap.String("user_id", userID),
			zap.String("quiz_id", completion.Quiz.Slug))
		return nil
	}

	at := completion.CompletedAt
	if at.IsZero() {
		at = time.Now()
	}

	return s.txManager.WithTransaction(ctx, s.txOptions, func(txCtx context.Context) error {
		if err := s.courseRepo.MarkChapterCompleted(txCtx, userID, *link, at); err != nil {
			return err
		}
		total, err := s.courseRepo.CountChapters(txCtx, link.CourseID)
		if err != nil {
			return err
		}
		completed, err := s.courseRepo.CountCompletedChapters(txCtx, userID, link.CourseID)
		if err != nil {
			return err
		}

		pct := 0
		if total > 0 {
			pct = completed * 100 / total
		}

		metadata, err := json.Marshal(map[string]interface{}{
			"quizSlug":  completion.Quiz.Slug,
			"quizType":  completion.Quiz.QuizType,
			"chapterId": link.ChapterID,
			"score":     completion.Score,
		})
		if err != nil {
			return err
		}
		if err := s.courseRepo.CreateLearningEvent(txCtx, &domain.LearningEvent{
			ID:        util.NewULID(),
			UserID:    userID,
			CourseID:  link.CourseID,
			Type:      domain.LearningEventQuizCompleted,
			EntityID:  strconv.FormatInt(completion.Quiz.ID, 10),
			Progress:  pct,
			Metadata:  string(metadata),
			CreatedAt: at,
		}); err != nil {
			return err
		}

		return s.courseRepo.UpsertCourseProgress(txCtx, &domain.CourseProgress{
			UserID:             userID,
			CourseID:           link.CourseID,
			CurrentChapterID:   link.ChapterID,
			CompletedChapters:  completed,
			TotalChapters:      total,
			ProgressPercentage: pct,
			IsCompleted:        pct >= 100,
			LastAccessedAt:     at,
		})
	})
}
