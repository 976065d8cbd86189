package dummydb

import (
	"context"
	"testing"

	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/progress"
)

func TestProgressRepository_RecordQuizResult(t *testing.T) {
	db, _ := Open()
	repo := NewProgressRepository(db)
	ctx := context.Background()

	// first failed attempt creates the record
	rec, err := repo.RecordQuizResult(ctx, "u1", "l1", 40, false)
	if err != nil {
		t.Fatalf("RecordQuizResult() error = %v", err)
	}
	if rec.Completed || rec.HighestQuizScore != 40 || rec.QuizAttempts != 1 {
		t.Errorf("RecordQuizResult() = %+v, want score 40, 1 attempt, incomplete", rec)
	}
	if rec.CompletedAt.Valid {
		t.Errorf("CompletedAt set on a failed attempt")
	}

	// passing attempt completes and raises the best score
	rec, err = repo.RecordQuizResult(ctx, "u1", "l1", 80, true)
	if err != nil {
		t.Fatalf("RecordQuizResult() error = %v", err)
	}
	if !rec.Completed || rec.HighestQuizScore != 80 || rec.QuizAttempts != 2 {
		t.Errorf("RecordQuizResult() = %+v, want score 80, 2 attempts, completed", rec)
	}
	completedAt := rec.CompletedAt
	if !completedAt.Valid {
		t.Fatalf("CompletedAt not set on a passing attempt")
	}

	// a later worse attempt never lowers the score or clears completion
	rec, err = repo.RecordQuizResult(ctx, "u1", "l1", 20, false)
	if err != nil {
		t.Fatalf("RecordQuizResult() error = %v", err)
	}
	if !rec.Completed || rec.HighestQuizScore != 80 || rec.QuizAttempts != 3 {
		t.Errorf("RecordQuizResult() = %+v, want score 80, 3 attempts, still completed", rec)
	}
	if rec.CompletedAt != completedAt {
		t.Errorf("CompletedAt changed: %v, want %v", rec.CompletedAt, completedAt)
	}
}

func TestProgressRepository_RecordQuizResult_orderIndependentBest(t *testing.T) {
	ctx := context.Background()

	run := func(scores []int) progress.Record {
		db, _ := Open()
		repo := NewProgressRepository(db)
		var rec progress.Record
		for _, s := range scores {
			rec, _ = repo.RecordQuizResult(ctx, "u1", "l1", s, s >= 70)
		}
		return rec
	}

	asc := run([]int{30, 60, 90})
	desc := run([]int{90, 60, 30})

	if asc.HighestQuizScore != 90 || desc.HighestQuizScore != 90 {
		t.Errorf("best score depends on attempt order: asc=%d desc=%d", asc.HighestQuizScore, desc.HighestQuizScore)
	}
	if !asc.Completed || !desc.Completed {
		t.Errorf("completion depends on attempt order: asc=%v desc=%v", asc.Completed, desc.Completed)
	}
	if asc.QuizAttempts != 3 || desc.QuizAttempts != 3 {
		t.Errorf("attempts miscounted: asc=%d desc=%d, want 3", asc.QuizAttempts, desc.QuizAttempts)
	}
}

func TestProgressRepository_RecordProjectSubmission(t *testing.T) {
	db, _ := Open()
	repo := NewProgressRepository(db)
	ctx := context.Background()

	rec, err := repo.RecordProjectSubmission(ctx, "u1", "l1", "https://git.test/u1/project")
	if err != nil {
		t.Fatalf("RecordProjectSubmission() error = %v", err)
	}
	if !rec.Completed || rec.ProjectLink.String != "https://git.test/u1/project" {
		t.Errorf("RecordProjectSubmission() = %+v, want completed with link", rec)
	}
	if rec.QuizAttempts != 0 {
		t.Errorf("RecordProjectSubmission() touched quiz attempts: %d", rec.QuizAttempts)
	}

	// resubmission replaces the link; completion timestamp sticks
	completedAt := rec.CompletedAt
	rec, err = repo.RecordProjectSubmission(ctx, "u1", "l1", "https://git.test/u1/project-v2")
	if err != nil {
		t.Fatalf("RecordProjectSubmission() error = %v", err)
	}
	if rec.ProjectLink.String != "https://git.test/u1/project-v2" {
		t.Errorf("ProjectLink = %v, want replaced link", rec.ProjectLink)
	}
	if rec.CompletedAt != completedAt {
		t.Errorf("CompletedAt changed on resubmission")
	}
}

func TestProgressRepository_LessonProgress(t *testing.T) {
	db, _ := Open()
	repo := NewProgressRepository(db)
	ctx := context.Background()

	if _, err := repo.LessonProgress(ctx, "u1", "l1"); err != progress.ErrNotFound {
		t.Errorf("LessonProgress() error = %v, want %v", err, progress.ErrNotFound)
	}

	_, _ = repo.RecordQuizResult(ctx, "u1", "l1", 75, true)
	rec, err := repo.LessonProgress(ctx, "u1", "l1")
	if err != nil {
		t.Fatalf("LessonProgress() error = %v", err)
	}
	if rec.LessonID != "l1" || !rec.Completed {
		t.Errorf("LessonProgress() = %+v", rec)
	}
}

func TestProgressRepository_CourseProgress(t *testing.T) {
	db, _ := Open()
	repo := NewProgressRepository(db)
	ctx := context.Background()

	l1 := db.AddLesson(course.Lesson{CourseID: "c1", Phase: 1, OrderIndex: 1})
	l2 := db.AddLesson(course.Lesson{CourseID: "c1", Phase: 1, OrderIndex: 2})
	other := db.AddLesson(course.Lesson{CourseID: "c2", Phase: 1, OrderIndex: 1})

	_, _ = repo.RecordQuizResult(ctx, "u1", l1.ID, 80, true)
	_, _ = repo.RecordQuizResult(ctx, "u1", l2.ID, 50, false)
	_, _ = repo.RecordQuizResult(ctx, "u1", other.ID, 90, true)
	_, _ = repo.RecordQuizResult(ctx, "u2", l1.ID, 90, true)

	recs, err := repo.CourseProgress(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("CourseProgress() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("CourseProgress() returned %d records, want 2", len(recs))
	}
	for _, rec := range recs {
		if rec.UserID != "u1" {
			t.Errorf("CourseProgress() leaked another user's record: %+v", rec)
		}
		if rec.LessonID == other.ID {
			t.Errorf("CourseProgress() leaked another course's record: %+v", rec)
		}
	}
}
