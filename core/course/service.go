package course

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/progress"
	"github.com/trezcool/darasa/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrLessonNotFound  = errors.New("lesson not found")
	ErrNotEnrolled     = errors.New("not enrolled in this course")
	ErrLessonLocked    = errors.New("lesson is locked")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
)

type Repository interface {
	GetCourse(ctx context.Context, id string) (Course, error)
	QueryAllCourses(ctx context.Context) ([]Course, error)
	// ListLessons returns a course's lessons; order is not trusted, the
	// progression policy re-sorts deterministically.
	ListLessons(ctx context.Context, courseID string) ([]Lesson, error)
	GetLesson(ctx context.Context, id string) (Lesson, error)
	IsEnrolled(ctx context.Context, userID, courseID string) (bool, error)
	CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
}

// Overview is the learner-facing dashboard view of one course.
type Overview struct {
	Course            Course        `json:"course"`
	Lessons           []LessonState `json:"lessons"`
	CompletionPercent int           `json:"completion_percent"`
}

type Service struct {
	repo    Repository
	ledger  progress.Repository
	roles   user.RoleResolver
	mailSvc core.EmailService
	conf    *core.Config
}

func NewService(
	repo Repository,
	ledger progress.Repository,
	roles user.RoleResolver,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		repo:    repo,
		ledger:  ledger,
		roles:   roles,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *Service) QueryAll(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryAllCourses(ctx)
}

func (svc *Service) Get(ctx context.Context, id string) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

// Enroll creates the (learner, course) membership fact and emails a
// confirmation.
func (svc *Service) Enroll(ctx context.Context, usr user.User, courseID string) (Enrollment, error) {
	crs, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return Enrollment{}, err
	}

	enrolled, err := svc.repo.IsEnrolled(ctx, usr.ID, crs.ID)
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "checking enrollment")
	}
	if enrolled {
		return Enrollment{}, ErrAlreadyEnrolled
	}

	enr, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		UserID:    usr.ID,
		CourseID:  crs.ID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Enrollment{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Enrollment confirmed: " + crs.Title,
		BodyStr: fmt.Sprintf("Hi %s,\n\nYou are now enrolled in %q. Your first lesson is unlocked.", usr.Name, crs.Title),
	})
	return enr, nil
}

// checkAccess resolves the viewer's role and applies the enrollment gate.
// A privileged role bypasses enrollment; everyone else must be enrolled.
// Resolver or store failures propagate: access is denied, never guessed.
func (svc *Service) checkAccess(ctx context.Context, identity user.Identity, courseID string) (user.Role, error) {
	role, err := svc.roles.ResolveRole(ctx, identity)
	if err != nil {
		return "", errors.Wrap(err, "resolving role")
	}
	if role.Privileged() {
		return role, nil
	}

	enrolled, err := svc.repo.IsEnrolled(ctx, identity.ID, courseID)
	if err != nil {
		return "", errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		return "", ErrNotEnrolled
	}
	return role, nil
}

// GetOverview returns the ordered lesson states and percent-complete for a
// course, after the enrollment gate.
func (svc *Service) GetOverview(ctx context.Context, identity user.Identity, courseID string) (Overview, error) {
	crs, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		return Overview{}, err
	}

	role, err := svc.checkAccess(ctx, identity, crs.ID)
	if err != nil {
		return Overview{}, err
	}

	lessons, err := svc.repo.ListLessons(ctx, crs.ID)
	if err != nil {
		return Overview{}, errors.Wrap(err, "listing lessons")
	}
	records, err := svc.ledger.CourseProgress(ctx, identity.ID, crs.ID)
	if err != nil {
		return Overview{}, errors.Wrap(err, "fetching progress")
	}

	recMap := progress.MapByLesson(records)
	return Overview{
		Course:            crs,
		Lessons:           ComputeLessonStates(lessons, recMap, role),
		CompletionPercent: CompletionPercent(lessons, recMap),
	}, nil
}

// CheckLessonAccess applies the enrollment gate and the progression policy
// to a single lesson; it returns the lesson when the viewer may access it and
// ErrLessonLocked when a predecessor is still incomplete.
func (svc *Service) CheckLessonAccess(ctx context.Context, identity user.Identity, lessonID string) (Lesson, error) {
	lsn, err := svc.repo.GetLesson(ctx, lessonID)
	if err != nil {
		return Lesson{}, err
	}

	role, err := svc.checkAccess(ctx, identity, lsn.CourseID)
	if err != nil {
		return Lesson{}, err
	}

	lessons, err := svc.repo.ListLessons(ctx, lsn.CourseID)
	if err != nil {
		return Lesson{}, errors.Wrap(err, "listing lessons")
	}
	records, err := svc.ledger.CourseProgress(ctx, identity.ID, lsn.CourseID)
	if err != nil {
		return Lesson{}, errors.Wrap(err, "fetching progress")
	}

	for _, state := range ComputeLessonStates(lessons, progress.MapByLesson(records), role) {
		if state.Lesson.ID == lsn.ID {
			if state.Locked {
				return Lesson{}, ErrLessonLocked
			}
			return state.Lesson, nil
		}
	}
	return Lesson{}, ErrLessonNotFound
}
