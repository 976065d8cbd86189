package quiz

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/progress"
	"github.com/trezcool/darasa/core/user"
)

// ReviewedQuestion is the post-scoring view of a question: once an attempt
// has been scored the correct option and explanation may be shown.
type ReviewedQuestion struct {
	Question      StudentQuestion `json:"question"`
	SelectedIndex null.Int        `json:"selected_index,omitempty"`
	CorrectOption int             `json:"correct_option"`
	Correct       bool            `json:"correct"`
	Explanation   null.String     `json:"explanation,omitempty"`
}

// Review is what the learner gets back after a scored attempt.
type Review struct {
	Submission Submission         `json:"submission"`
	Questions  []ReviewedQuestion `json:"questions"`
	Progress   progress.Record    `json:"progress"`
}

type Service struct {
	questions QuestionRepository
	subs      SubmissionRepository
	ledger    progress.Repository
	courses   course.Repository
	mailSvc   core.EmailService
	conf      *core.Config
}

func NewService(
	questions QuestionRepository,
	subs SubmissionRepository,
	ledger progress.Repository,
	courses course.Repository,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		questions: questions,
		subs:      subs,
		ledger:    ledger,
		courses:   courses,
		mailSvc:   mailSvc,
		conf:      conf,
	}
}

// LessonQuestions returns the student-safe question set for a lesson.
// The caller must have passed the lesson access check.
func (svc *Service) LessonQuestions(ctx context.Context, lessonID string) ([]StudentQuestion, error) {
	qs, err := svc.questions.ListQuestions(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, ErrNoQuestions
	}
	views := make([]StudentQuestion, 0, len(qs))
	for _, q := range qs {
		views = append(views, q.StudentView())
	}
	return views, nil
}

// SubmitQuiz scores an attempt, persists it verbatim, and updates the
// progress ledger. Ledger or store write failures propagate unchanged: a
// dropped write here would leave the next lesson incorrectly locked.
func (svc *Service) SubmitQuiz(ctx context.Context, usr user.User, lessonID string, answers []int) (Review, error) {
	qs, err := svc.questions.ListQuestions(ctx, lessonID)
	if err != nil {
		return Review{}, err
	}
	if len(qs) == 0 {
		return Review{}, ErrNoQuestions
	}
	if len(answers) > len(qs) {
		return Review{}, ErrQuestionCountMismatch
	}

	res := Evaluate(qs, answers, svc.conf.PassThreshold)

	sub, err := svc.subs.CreateSubmission(ctx, Submission{
		UserID:    usr.ID,
		LessonID:  lessonID,
		Answers:   answers,
		Score:     res.Score,
		Passed:    res.Passed,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Review{}, errors.Wrap(err, "persisting submission")
	}

	rec, err := svc.ledger.RecordQuizResult(ctx, usr.ID, lessonID, res.Score, res.Passed)
	if err != nil {
		return Review{}, errors.Wrap(err, "recording quiz result")
	}

	if res.Passed {
		svc.notifyIfCourseCompleted(ctx, usr, lessonID)
	}
	return Review{
		Submission: sub,
		Questions:  reviewQuestions(qs, answers, res),
		Progress:   rec,
	}, nil
}

// SubmitProject records a project link for a project-gated lesson; the
// submission is itself completion.
func (svc *Service) SubmitProject(ctx context.Context, usr user.User, lsn course.Lesson, link string) (progress.Record, error) {
	if !lsn.HasProject {
		return progress.Record{}, ErrNotProjectGated
	}
	rec, err := svc.ledger.RecordProjectSubmission(ctx, usr.ID, lsn.ID, link)
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "recording project submission")
	}
	svc.notifyIfCourseCompleted(ctx, usr, lsn.ID)
	return rec, nil
}

// ReviewSubmission returns a past attempt with the answer key, for the
// learner who made it.
func (svc *Service) ReviewSubmission(ctx context.Context, usr user.User, submissionID string) (Review, error) {
	sub, err := svc.subs.GetSubmission(ctx, submissionID)
	if err != nil {
		return Review{}, err
	}
	if sub.UserID != usr.ID && !usr.IsPrivileged() {
		return Review{}, ErrSubmissionNotFound
	}

	qs, err := svc.questions.ListQuestions(ctx, sub.LessonID)
	if err != nil {
		return Review{}, err
	}
	res := Evaluate(qs, sub.Answers, svc.conf.PassThreshold)

	rec, err := svc.ledger.LessonProgress(ctx, sub.UserID, sub.LessonID)
	if err != nil && errors.Cause(err) != progress.ErrNotFound {
		return Review{}, err
	}
	return Review{
		Submission: sub,
		Questions:  reviewQuestions(qs, sub.Answers, res),
		Progress:   rec,
	}, nil
}

func reviewQuestions(qs []Question, answers []int, res Result) []ReviewedQuestion {
	reviewed := make([]ReviewedQuestion, 0, len(qs))
	for i, q := range qs {
		rq := ReviewedQuestion{
			Question:      q.StudentView(),
			CorrectOption: q.CorrectOption,
			Correct:       i < len(res.Correct) && res.Correct[i],
			Explanation:   q.Explanation,
		}
		if i < len(answers) {
			rq.SelectedIndex = null.IntFrom(answers[i])
		}
		reviewed = append(reviewed, rq)
	}
	return reviewed
}

// notifyIfCourseCompleted emails the learner when this completion was the
// course's last outstanding lesson. Failures here are a notification
// concern, not a progress concern, so they are swallowed.
func (svc *Service) notifyIfCourseCompleted(ctx context.Context, usr user.User, lessonID string) {
	lsn, err := svc.courses.GetLesson(ctx, lessonID)
	if err != nil {
		return
	}
	crs, err := svc.courses.GetCourse(ctx, lsn.CourseID)
	if err != nil {
		return
	}
	lessons, err := svc.courses.ListLessons(ctx, crs.ID)
	if err != nil {
		return
	}
	records, err := svc.ledger.CourseProgress(ctx, usr.ID, crs.ID)
	if err != nil {
		return
	}
	if course.CompletionPercent(lessons, progress.MapByLesson(records)) < 100 {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Course completed: " + crs.Title,
		BodyStr: fmt.Sprintf("Congratulations %s!\n\nYou have completed every lesson of %q.", usr.Name, crs.Title),
	})
}
