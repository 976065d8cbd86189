package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/progress"
)

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{db: db}
}

type progressRow struct {
	ID               string      `db:"id"`
	UserID           string      `db:"user_id"`
	LessonID         string      `db:"lesson_id"`
	IsCompleted      bool        `db:"is_completed"`
	HighestQuizScore int         `db:"highest_quiz_score"`
	QuizAttempts     int         `db:"quiz_attempts"`
	ProjectLink      null.String `db:"project_link"`
	CompletedAt      null.Time   `db:"completed_at"`
	CreatedAt        time.Time   `db:"created_at"`
	UpdatedAt        time.Time   `db:"updated_at"`
}

func (r progressRow) toDomain() progress.Record {
	return progress.Record{
		ID:               r.ID,
		UserID:           r.UserID,
		LessonID:         r.LessonID,
		Completed:        r.IsCompleted,
		HighestQuizScore: r.HighestQuizScore,
		QuizAttempts:     r.QuizAttempts,
		ProjectLink:      r.ProjectLink,
		CompletedAt:      r.CompletedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (repo *progressRepository) CourseProgress(ctx context.Context, userID, courseID string) ([]progress.Record, error) {
	const q = `
		SELECT pr.* FROM progress_record pr
		INNER JOIN lesson l ON l.id = pr.lesson_id
		WHERE pr.user_id = $1 AND l.course_id = $2`
	var rows []progressRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID, courseID); err != nil {
		return nil, errors.Wrap(err, "querying course progress")
	}
	recs := make([]progress.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.toDomain())
	}
	return recs, nil
}

func (repo *progressRepository) LessonProgress(ctx context.Context, userID, lessonID string) (progress.Record, error) {
	const q = `SELECT * FROM progress_record WHERE user_id = $1 AND lesson_id = $2`
	var row progressRow
	if err := repo.db.GetContext(ctx, &row, q, userID, lessonID); err != nil {
		return progress.Record{}, trapNoRowsErr(err, progress.ErrNotFound, "getting lesson progress")
	}
	return row.toDomain(), nil
}

// RecordQuizResult folds a quiz attempt into the (user, lesson) record in a
// single statement so concurrent attempts cannot lose updates: the best score
// only ever goes up, completion sticks once set, and every call counts one
// attempt.
func (repo *progressRepository) RecordQuizResult(ctx context.Context, userID, lessonID string, score int, passed bool) (progress.Record, error) {
	var completedAt null.Time
	if passed {
		completedAt = null.TimeFrom(time.Now().UTC())
	}

	const q = `
		INSERT INTO progress_record (id, user_id, lesson_id, is_completed, highest_quiz_score, quiz_attempts, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6, now(), now())
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET
			highest_quiz_score = GREATEST(progress_record.highest_quiz_score, EXCLUDED.highest_quiz_score),
			is_completed       = progress_record.is_completed OR EXCLUDED.is_completed,
			quiz_attempts      = progress_record.quiz_attempts + 1,
			completed_at       = COALESCE(progress_record.completed_at, EXCLUDED.completed_at),
			updated_at         = now()
		RETURNING *`

	var row progressRow
	err := repo.db.GetContext(ctx, &row, q, uuid.New().String(), userID, lessonID, passed, score, completedAt)
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "recording quiz result")
	}
	return row.toDomain(), nil
}

// RecordProjectSubmission completes the lesson and stores the latest link;
// it never touches the quiz counters.
func (repo *progressRepository) RecordProjectSubmission(ctx context.Context, userID, lessonID, link string) (progress.Record, error) {
	const q = `
		INSERT INTO progress_record (id, user_id, lesson_id, is_completed, highest_quiz_score, quiz_attempts, project_link, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, 0, 0, $4, now(), now(), now())
		ON CONFLICT (user_id, lesson_id) DO UPDATE SET
			is_completed = TRUE,
			project_link = EXCLUDED.project_link,
			completed_at = COALESCE(progress_record.completed_at, EXCLUDED.completed_at),
			updated_at   = now()
		RETURNING *`

	var row progressRow
	if err := repo.db.GetContext(ctx, &row, q, uuid.New().String(), userID, lessonID, link); err != nil {
		return progress.Record{}, errors.Wrap(err, "recording project submission")
	}
	return row.toDomain(), nil
}
