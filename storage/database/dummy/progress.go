package dummydb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/progress"
)

type progressRepository struct {
	db      *progressTable
	lessons *lessonTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress, lessons: db.lesson}
}

func (repo *progressRepository) CourseProgress(_ context.Context, userID, courseID string) ([]progress.Record, error) {
	courseLessons := make(map[string]struct{})
	repo.lessons.RLock()
	for _, lsn := range repo.lessons.table {
		if lsn.CourseID == courseID {
			courseLessons[lsn.ID] = struct{}{}
		}
	}
	repo.lessons.RUnlock()

	repo.db.RLock()
	defer repo.db.RUnlock()

	var recs []progress.Record
	for _, rec := range repo.db.table {
		if rec.UserID != userID {
			continue
		}
		if _, ok := courseLessons[rec.LessonID]; ok {
			recs = append(recs, *rec)
		}
	}
	return recs, nil
}

func (repo *progressRepository) LessonProgress(_ context.Context, userID, lessonID string) (progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[progressKey(userID, lessonID)]; ok {
		return *rec, nil
	}
	return progress.Record{}, progress.ErrNotFound
}

func (repo *progressRepository) RecordQuizResult(_ context.Context, userID, lessonID string, score int, passed bool) (progress.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	now := time.Now().UTC()
	rec := repo.getOrCreate(userID, lessonID, now)

	// best score only goes up, completion sticks once set
	if score > rec.HighestQuizScore {
		rec.HighestQuizScore = score
	}
	if passed && !rec.Completed {
		rec.Completed = true
		rec.CompletedAt = null.TimeFrom(now)
	}
	rec.QuizAttempts++
	rec.UpdatedAt = now
	return *rec, nil
}

func (repo *progressRepository) RecordProjectSubmission(_ context.Context, userID, lessonID, link string) (progress.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	now := time.Now().UTC()
	rec := repo.getOrCreate(userID, lessonID, now)

	if !rec.Completed {
		rec.Completed = true
		rec.CompletedAt = null.TimeFrom(now)
	}
	rec.ProjectLink = null.StringFrom(link)
	rec.UpdatedAt = now
	return *rec, nil
}

func (repo *progressRepository) getOrCreate(userID, lessonID string, now time.Time) *progress.Record {
	key := progressKey(userID, lessonID)
	rec, ok := repo.db.table[key]
	if !ok {
		rec = &progress.Record{
			ID:        uuid.New().String(),
			UserID:    userID,
			LessonID:  lessonID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		repo.db.table[key] = rec
	}
	return rec
}
