package course_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

type fixture struct {
	db      *dummydb.DB
	usrRepo user.Repository
	svc     *course.Service
	crs     course.Course
	lessons []course.Lesson
}

func setup(t *testing.T) *fixture {
	t.Helper()
	conf := core.NewConfig()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() error = %v", err)
	}

	usrRepo := dummydb.NewUserRepository(db)
	crsRepo := dummydb.NewCourseRepository(db)
	ledger := dummydb.NewProgressRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock()

	svc := course.NewService(crsRepo, ledger, user.StoreRoleResolver{Repo: usrRepo}, mailSvc, conf)

	crs := db.AddCourse(course.Course{Title: "Go from Zero", InstructorID: "i1"})
	lessons := []course.Lesson{
		db.AddLesson(course.Lesson{CourseID: crs.ID, Title: "Hello", Phase: 1, OrderIndex: 1}),
		db.AddLesson(course.Lesson{CourseID: crs.ID, Title: "Types", Phase: 1, OrderIndex: 2}),
		db.AddLesson(course.Lesson{CourseID: crs.ID, Title: "Ship it", Phase: 2, OrderIndex: 1, HasProject: true}),
	}
	return &fixture{db: db, usrRepo: usrRepo, svc: svc, crs: crs, lessons: lessons}
}

func (f *fixture) createUser(t *testing.T, uname string, role user.Role) user.User {
	t.Helper()
	usr, err := f.usrRepo.CreateUser(context.Background(), user.User{
		Name:     uname,
		Username: uname,
		Email:    uname + "@test.cd",
		IsActive: true,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	return usr
}

func identity(usr user.User) user.Identity {
	return user.Identity{ID: usr.ID, RoleClaim: string(usr.Role)}
}

func TestService_Enroll(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	student := f.createUser(t, "student", user.RoleStudent)

	enr, err := f.svc.Enroll(ctx, student, f.crs.ID)
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if enr.UserID != student.ID || enr.CourseID != f.crs.ID {
		t.Errorf("Enroll() = %+v", enr)
	}

	if _, err = f.svc.Enroll(ctx, student, f.crs.ID); errors.Cause(err) != course.ErrAlreadyEnrolled {
		t.Errorf("Enroll() twice error = %v, want %v", err, course.ErrAlreadyEnrolled)
	}

	if _, err = f.svc.Enroll(ctx, student, "nope"); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("Enroll() unknown course error = %v, want %v", err, course.ErrNotFound)
	}
}

func TestService_GetOverview(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	student := f.createUser(t, "student", user.RoleStudent)
	outsider := f.createUser(t, "outsider", user.RoleStudent)
	instructor := f.createUser(t, "instructor", user.RoleInstructor)

	if _, err := f.svc.Enroll(ctx, student, f.crs.ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	t.Run("enrolled student", func(t *testing.T) {
		ov, err := f.svc.GetOverview(ctx, identity(student), f.crs.ID)
		if err != nil {
			t.Fatalf("GetOverview() error = %v", err)
		}
		if len(ov.Lessons) != 3 {
			t.Fatalf("GetOverview() returned %d lessons, want 3", len(ov.Lessons))
		}
		if ov.CompletionPercent != 0 {
			t.Errorf("CompletionPercent = %d, want 0", ov.CompletionPercent)
		}
		if ov.Lessons[0].Locked || !ov.Lessons[1].Locked || !ov.Lessons[2].Locked {
			t.Errorf("lock states = %v %v %v, want only first unlocked",
				ov.Lessons[0].Locked, ov.Lessons[1].Locked, ov.Lessons[2].Locked)
		}
	})

	t.Run("non-enrolled student is gated", func(t *testing.T) {
		if _, err := f.svc.GetOverview(ctx, identity(outsider), f.crs.ID); errors.Cause(err) != course.ErrNotEnrolled {
			t.Errorf("GetOverview() error = %v, want %v", err, course.ErrNotEnrolled)
		}
	})

	t.Run("instructor bypasses enrollment", func(t *testing.T) {
		ov, err := f.svc.GetOverview(ctx, identity(instructor), f.crs.ID)
		if err != nil {
			t.Fatalf("GetOverview() error = %v", err)
		}
		for i, state := range ov.Lessons {
			if state.Locked {
				t.Errorf("Lessons[%d].Locked = true for instructor", i)
			}
		}
	})

	t.Run("unknown viewer fails closed", func(t *testing.T) {
		ident := user.Identity{ID: "ghost", RoleClaim: "admin"}
		if _, err := f.svc.GetOverview(ctx, ident, f.crs.ID); errors.Cause(err) != user.ErrNotFound {
			t.Errorf("GetOverview() error = %v, want %v", err, user.ErrNotFound)
		}
	})
}

func TestService_CheckLessonAccess(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ledger := dummydb.NewProgressRepository(f.db)
	student := f.createUser(t, "student", user.RoleStudent)
	instructor := f.createUser(t, "instructor", user.RoleInstructor)

	if _, err := f.svc.Enroll(ctx, student, f.crs.ID); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	t.Run("first lesson is open", func(t *testing.T) {
		lsn, err := f.svc.CheckLessonAccess(ctx, identity(student), f.lessons[0].ID)
		if err != nil {
			t.Fatalf("CheckLessonAccess() error = %v", err)
		}
		if lsn.ID != f.lessons[0].ID {
			t.Errorf("CheckLessonAccess() = %+v", lsn)
		}
	})

	t.Run("second lesson locked until first completed", func(t *testing.T) {
		if _, err := f.svc.CheckLessonAccess(ctx, identity(student), f.lessons[1].ID); errors.Cause(err) != course.ErrLessonLocked {
			t.Errorf("CheckLessonAccess() error = %v, want %v", err, course.ErrLessonLocked)
		}

		if _, err := ledger.RecordQuizResult(ctx, student.ID, f.lessons[0].ID, 85, true); err != nil {
			t.Fatalf("RecordQuizResult() error = %v", err)
		}
		if _, err := f.svc.CheckLessonAccess(ctx, identity(student), f.lessons[1].ID); err != nil {
			t.Errorf("CheckLessonAccess() after completion error = %v", err)
		}
	})

	t.Run("instructor bypasses locking", func(t *testing.T) {
		if _, err := f.svc.CheckLessonAccess(ctx, identity(instructor), f.lessons[2].ID); err != nil {
			t.Errorf("CheckLessonAccess() error = %v", err)
		}
	})

	t.Run("unknown lesson", func(t *testing.T) {
		if _, err := f.svc.CheckLessonAccess(ctx, identity(student), "nope"); errors.Cause(err) != course.ErrLessonNotFound {
			t.Errorf("CheckLessonAccess() error = %v, want %v", err, course.ErrLessonNotFound)
		}
	})

	t.Run("stale privileged claim does not unlock", func(t *testing.T) {
		// token still claims instructor; the store says student
		ident := user.Identity{ID: student.ID, RoleClaim: string(user.RoleInstructor)}
		if _, err := f.svc.CheckLessonAccess(ctx, ident, f.lessons[2].ID); errors.Cause(err) != course.ErrLessonLocked {
			t.Errorf("CheckLessonAccess() error = %v, want %v", err, course.ErrLessonLocked)
		}
	})
}
