package quiz_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/quiz"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

func setup(t *testing.T) (*dummydb.DB, *quiz.Service, course.Course, course.Lesson, course.Lesson) {
	t.Helper()
	conf := core.NewConfig()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() error = %v", err)
	}

	svc := quiz.NewService(
		dummydb.NewQuestionRepository(db),
		dummydb.NewSubmissionRepository(db),
		dummydb.NewProgressRepository(db),
		dummydb.NewCourseRepository(db),
		emailsvc.NewConsoleServiceMock(),
		conf,
	)

	crs := db.AddCourse(course.Course{Title: "Go from Zero", InstructorID: "i1"})
	lesson := db.AddLesson(course.Lesson{CourseID: crs.ID, Title: "Types", Phase: 1, OrderIndex: 1})
	project := db.AddLesson(course.Lesson{CourseID: crs.ID, Title: "Ship it", Phase: 1, OrderIndex: 2, HasProject: true})

	for i, correct := range []int{0, 1, 2} {
		db.AddQuestion(quiz.Question{
			LessonID:      lesson.ID,
			Position:      i,
			Text:          "?",
			Options:       []string{"A", "B", "C", "D"},
			CorrectOption: correct,
		})
	}
	return db, svc, crs, lesson, project
}

func student(id string) user.User {
	return user.User{ID: id, Name: "S", Username: "s_" + id, Email: id + "@test.cd", IsActive: true, Role: user.RoleStudent}
}

func TestService_LessonQuestions(t *testing.T) {
	_, svc, _, lesson, project := setup(t)
	ctx := context.Background()

	questions, err := svc.LessonQuestions(ctx, lesson.ID)
	if err != nil {
		t.Fatalf("LessonQuestions() error = %v", err)
	}
	if len(questions) != 3 {
		t.Fatalf("LessonQuestions() returned %d questions, want 3", len(questions))
	}
	for i, q := range questions {
		if q.Position != i {
			t.Errorf("questions[%d].Position = %d, out of order", i, q.Position)
		}
	}

	if _, err = svc.LessonQuestions(ctx, project.ID); errors.Cause(err) != quiz.ErrNoQuestions {
		t.Errorf("LessonQuestions() error = %v, want %v", err, quiz.ErrNoQuestions)
	}
}

func TestService_SubmitQuiz(t *testing.T) {
	_, svc, _, lesson, project := setup(t)
	ctx := context.Background()
	usr := student("u1")

	t.Run("failing attempt", func(t *testing.T) {
		review, err := svc.SubmitQuiz(ctx, usr, lesson.ID, []int{0, 0, 0})
		if err != nil {
			t.Fatalf("SubmitQuiz() error = %v", err)
		}
		if review.Submission.Score != 33 || review.Submission.Passed {
			t.Errorf("Submission = %+v, want score 33, failed", review.Submission)
		}
		if review.Progress.Completed {
			t.Errorf("failed attempt completed the lesson")
		}
		if review.Progress.HighestQuizScore != 33 || review.Progress.QuizAttempts != 1 {
			t.Errorf("Progress = %+v, want best 33, 1 attempt", review.Progress)
		}
	})

	t.Run("passing attempt", func(t *testing.T) {
		review, err := svc.SubmitQuiz(ctx, usr, lesson.ID, []int{0, 1, 2})
		if err != nil {
			t.Fatalf("SubmitQuiz() error = %v", err)
		}
		if review.Submission.Score != 100 || !review.Submission.Passed {
			t.Errorf("Submission = %+v, want score 100, passed", review.Submission)
		}
		if !review.Progress.Completed || review.Progress.HighestQuizScore != 100 || review.Progress.QuizAttempts != 2 {
			t.Errorf("Progress = %+v, want completed, best 100, 2 attempts", review.Progress)
		}
		// answer key only revealed post-scoring
		for i, rq := range review.Questions {
			if !rq.Correct {
				t.Errorf("Questions[%d].Correct = false", i)
			}
			if rq.CorrectOption != i {
				t.Errorf("Questions[%d].CorrectOption = %d, want %d", i, rq.CorrectOption, i)
			}
		}
	})

	t.Run("short answers are an unanswered tail", func(t *testing.T) {
		review, err := svc.SubmitQuiz(ctx, usr, lesson.ID, []int{0})
		if err != nil {
			t.Fatalf("SubmitQuiz() error = %v", err)
		}
		if review.Submission.Score != 33 {
			t.Errorf("Submission.Score = %d, want 33", review.Submission.Score)
		}
		if len(review.Submission.Answers) != 1 {
			t.Errorf("Answers stored non-verbatim: %v", review.Submission.Answers)
		}
		// the worse attempt never lowers the recorded best
		if review.Progress.HighestQuizScore != 100 || !review.Progress.Completed {
			t.Errorf("Progress = %+v, regressed", review.Progress)
		}
	})

	t.Run("too many answers", func(t *testing.T) {
		if _, err := svc.SubmitQuiz(ctx, usr, lesson.ID, []int{0, 1, 2, 3}); errors.Cause(err) != quiz.ErrQuestionCountMismatch {
			t.Errorf("SubmitQuiz() error = %v, want %v", err, quiz.ErrQuestionCountMismatch)
		}
	})

	t.Run("lesson without questions", func(t *testing.T) {
		if _, err := svc.SubmitQuiz(ctx, usr, project.ID, []int{0}); errors.Cause(err) != quiz.ErrNoQuestions {
			t.Errorf("SubmitQuiz() error = %v, want %v", err, quiz.ErrNoQuestions)
		}
	})
}

func TestService_SubmitProject(t *testing.T) {
	_, svc, _, lesson, project := setup(t)
	ctx := context.Background()
	usr := student("u1")

	rec, err := svc.SubmitProject(ctx, usr, project, "https://git.test/u1/capstone")
	if err != nil {
		t.Fatalf("SubmitProject() error = %v", err)
	}
	if !rec.Completed || rec.ProjectLink.String != "https://git.test/u1/capstone" {
		t.Errorf("SubmitProject() = %+v, want completed with link", rec)
	}

	if _, err = svc.SubmitProject(ctx, usr, lesson, "https://git.test/u1/other"); errors.Cause(err) != quiz.ErrNotProjectGated {
		t.Errorf("SubmitProject() on quiz lesson error = %v, want %v", err, quiz.ErrNotProjectGated)
	}
}

func TestService_ReviewSubmission(t *testing.T) {
	_, svc, _, lesson, _ := setup(t)
	ctx := context.Background()
	owner := student("u1")

	review, err := svc.SubmitQuiz(ctx, owner, lesson.ID, []int{0, 1, 0})
	if err != nil {
		t.Fatalf("SubmitQuiz() error = %v", err)
	}
	subID := review.Submission.ID

	t.Run("owner", func(t *testing.T) {
		got, err := svc.ReviewSubmission(ctx, owner, subID)
		if err != nil {
			t.Fatalf("ReviewSubmission() error = %v", err)
		}
		if got.Submission.ID != subID || got.Submission.Score != 67 {
			t.Errorf("ReviewSubmission() = %+v", got.Submission)
		}
	})

	t.Run("another student is denied as not-found", func(t *testing.T) {
		other := student("u2")
		if _, err := svc.ReviewSubmission(ctx, other, subID); errors.Cause(err) != quiz.ErrSubmissionNotFound {
			t.Errorf("ReviewSubmission() error = %v, want %v", err, quiz.ErrSubmissionNotFound)
		}
	})

	t.Run("instructor may review", func(t *testing.T) {
		instructor := user.User{ID: "i1", Role: user.RoleInstructor, IsActive: true}
		if _, err := svc.ReviewSubmission(ctx, instructor, subID); err != nil {
			t.Errorf("ReviewSubmission() error = %v", err)
		}
	})

	t.Run("unknown submission", func(t *testing.T) {
		if _, err := svc.ReviewSubmission(ctx, owner, "nope"); errors.Cause(err) != quiz.ErrSubmissionNotFound {
			t.Errorf("ReviewSubmission() error = %v, want %v", err, quiz.ErrSubmissionNotFound)
		}
	})
}
