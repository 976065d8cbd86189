package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

var ErrNotFound = errors.New("progress record not found")

// Record is the durable per-(learner, lesson) completion state.
//
// Completed is set the first time a quiz attempt passes (or a project link is
// submitted) and is never cleared by a later failing retake.
// HighestQuizScore never decreases. QuizAttempts counts every recorded
// attempt and is deliberately not idempotent.
type Record struct {
	ID               string      `json:"-"`
	UserID           string      `json:"-"`
	LessonID         string      `json:"lesson_id"`
	Completed        bool        `json:"is_completed"`
	HighestQuizScore int         `json:"highest_quiz_score"`
	QuizAttempts     int         `json:"quiz_attempts"`
	ProjectLink      null.String `json:"project_link,omitempty"`
	CompletedAt      null.Time   `json:"completed_at,omitempty"`
	CreatedAt        time.Time   `json:"-"`
	UpdatedAt        time.Time   `json:"-"`
}

// Repository is the progress ledger contract.
//
// RecordQuizResult and RecordProjectSubmission must be atomic at the row
// level: concurrent submissions may not clobber a higher score or clear a
// completion. Write failures propagate to the caller; a silently dropped
// write would leave the learner permanently locked out of the next lesson.
type Repository interface {
	// CourseProgress returns the viewer's records for all lessons of a
	// course. Lessons without a record yet are simply absent; callers
	// synthesize zero records.
	CourseProgress(ctx context.Context, userID, courseID string) ([]Record, error)

	// LessonProgress returns the record for one lesson, or ErrNotFound.
	LessonProgress(ctx context.Context, userID, lessonID string) (Record, error)

	// RecordQuizResult upserts the record for a quiz attempt:
	// attempts+1, highest score kept monotone, completion set on pass and
	// never cleared.
	RecordQuizResult(ctx context.Context, userID, lessonID string, score int, passed bool) (Record, error)

	// RecordProjectSubmission marks the lesson completed unconditionally;
	// a submission is itself completion.
	RecordProjectSubmission(ctx context.Context, userID, lessonID, link string) (Record, error)
}

// MapByLesson indexes records by lesson ID.
func MapByLesson(records []Record) map[string]Record {
	m := make(map[string]Record, len(records))
	for _, rec := range records {
		m[rec.LessonID] = rec
	}
	return m
}
