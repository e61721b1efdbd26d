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

type sqlxCourseRepository struct {
	db DBTX
}

func NewSQLXCourseRepository(db DBTX) domain.CourseRepository {
	return &sqlxCourseRepository{db: db}
}

func toDomainQuizLink(m *models.CourseChapter) *domain.CourseQuizLink {
	return &domain.CourseQuizLink{
		CourseID:  m.CourseID,
		ChapterID: m.ID,
		UnitID:    m.UnitID.Int64,
		QuizSlug:  m.QuizSlug.String,
	}
}

func (r *sqlxCourseRepository) findLink(ctx context.Context, query string, args ...interface{}) (*domain.CourseQuizLink, error) {
	var row models.CourseChapter
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainQuizLink(&row), nil
}

func (r *sqlxCourseRepository) FindQuizLinkExact(ctx context.Context, slug string, quizID int64) (*domain.CourseQuizLink, error) {
	query := `SELECT ID, COURSE_ID, UNIT_ID, QUIZ_SLUG
	FROM course_chapters
	WHERE QUIZ_SLUG = :1 OR QUIZ_ID = :2
	ORDER BY POSITION
	FETCH FIRST 1 ROWS ONLY`
	link, err := r.findLink(ctx, query, slug, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to find course link for %s: %w", slug, err)
	}
	return link, nil
}

func (r *sqlxCourseRepository) FindQuizLinkFuzzy(ctx context.Context, slug string) (*domain.CourseQuizLink, error) {
	query := `SELECT ID, COURSE_ID, UNIT_ID, QUIZ_SLUG
	FROM course_chapters
	WHERE LOWER(QUIZ_SLUG) LIKE '%' || LOWER(:1) || '%'
	ORDER BY POSITION
	FETCH FIRST 1 ROWS ONLY`
	link, err := r.findLink(ctx, query, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to fuzzy-match course link for %s: %w", slug, err)
	}
	return link, nil
}

func (r *sqlxCourseRepository) MarkChapterCompleted(ctx context.Context, userID string, link domain.CourseQuizLink, at time.Time) error {
	query := `MERGE INTO chapter_progress t
	USING (SELECT :1 AS USER_ID, :2 AS CHAPTER_ID FROM dual) s
	ON (t.USER_ID = s.USER_ID AND t.CHAPTER_ID = s.CHAPTER_ID)
	WHEN MATCHED THEN UPDATE SET t.IS_COMPLETED = 1, t.COMPLETED_AT = NVL(t.COMPLETED_AT, :3)
	WHEN NOT MATCHED THEN INSERT (USER_ID, CHAPTER_ID, COURSE_ID, IS_COMPLETED, COMPLETED_AT)
		VALUES (s.USER_ID, s.CHAPTER_ID, :4, 1, :5)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, userID, link.ChapterID, at, link.CourseID, at)
	return wrapDBError("mark chapter completed", err)
}

func (r *sqlxCourseRepository) CountChapters(ctx context.Context, courseID int64) (int, error) {
	var count int
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &count,
		`SELECT COUNT(*) FROM course_chapters WHERE COURSE_ID = :1`, courseID); err != nil {
		return 0, fmt.Errorf("failed to count chapters: %w", err)
	}
	return count, nil
}

func (r *sqlxCourseRepository) CountCompletedChapters(ctx context.Context, userID string, courseID int64) (int, error) {
	var count int
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &count,
		`SELECT COUNT(*) FROM chapter_progress WHERE USER_ID = :1 AND COURSE_ID = :2 AND IS_COMPLETED = 1`,
		userID, courseID); err != nil {
		return 0, fmt.Errorf("failed to count completed chapters: %w", err)
	}
	return count, nil
}

func (r *sqlxCourseRepository) CreateLearningEvent(ctx context.Context, event *domain.LearningEvent) error {
	if event.ID == "" {
		event.ID = util.NewULID()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	row := models.LearningEvent{
		ID:        event.ID,
		UserID:    event.UserID,
		CourseID:  sql.NullInt64{Int64: event.CourseID, Valid: event.CourseID != 0},
		EventType: string(event.Type),
		EntityID:  util.StringToNullString(event.EntityID),
		Progress:  sql.NullInt64{Int64: int64(event.Progress), Valid: true},
		Metadata:  util.StringToNullString(event.Metadata),
		CreatedAt: event.CreatedAt,
	}
	query := `INSERT INTO learning_events (ID, USER_ID, COURSE_ID, EVENT_TYPE, ENTITY_ID, PROGRESS, METADATA, CREATED_AT)
	VALUES (:1, :2, :3, :4, :5, :6, :7, :8)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		row.ID, row.UserID, row.CourseID, row.EventType, row.EntityID, row.Progress, row.Metadata, row.CreatedAt)
	return wrapDBError("create learning event", err)
}

func (r *sqlxCourseRepository) UpsertCourseProgress(ctx context.Context, p *domain.CourseProgress) error {
	query := `MERGE INTO course_progress t
	USING (SELECT :1 AS USER_ID, :2 AS COURSE_ID FROM dual) s
	ON (t.USER_ID = s.USER_ID AND t.COURSE_ID = s.COURSE_ID)
	WHEN MATCHED THEN UPDATE SET
		t.CURRENT_CHAPTER_ID = :3, t.COMPLETED_CHAPTERS = :4, t.TOTAL_CHAPTERS = :5,
		t.PROGRESS_PERCENTAGE = :6, t.IS_COMPLETED = :7, t.LAST_ACCESSED_AT = :8
	WHEN NOT MATCHED THEN INSERT (USER_ID, COURSE_ID, CURRENT_CHAPTER_ID, COMPLETED_CHAPTERS, TOTAL_CHAPTERS, PROGRESS_PERCENTAGE, IS_COMPLETED, LAST_ACCESSED_AT)
		VALUES (s.USER_ID, s.COURSE_ID, :9, :10, :11, :12, :13, :14)`
	completed := boolToNumber(p.IsCompleted)
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		p.UserID, p.CourseID,
		p.CurrentChapterID, p.CompletedChapters, p.TotalChapters, p.ProgressPercentage, completed, p.LastAccessedAt,
		p.CurrentChapterID, p.CompletedChapters, p.TotalChapters, p.ProgressPercentage, completed, p.LastAccessedAt,
	)
	return wrapDBError("upsert course progress", err)
}
