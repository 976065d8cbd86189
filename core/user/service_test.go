package user_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	dummydb "github.com/trezcool/darasa/storage/database/dummy"
)

func setupSvc(t *testing.T) *user.Service {
	t.Helper()
	conf := core.NewConfig()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() error = %v", err)
	}
	return user.NewService(dummydb.NewUserRepository(db), emailsvc.NewConsoleServiceMock(), conf)
}

func TestService_Create(t *testing.T) {
	svc := setupSvc(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name:     "Awe Some",
		Username: "awesome",
		Email:    "awe@test.cd",
		Password: "v3ryS3cr3t!",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if usr.ID == "" || !usr.IsActive {
		t.Errorf("Create() = %+v, want active user with ID", usr)
	}
	if usr.Role != user.RoleStudent {
		t.Errorf("Create() role = %v, want default %v", usr.Role, user.RoleStudent)
	}
	if err = usr.CheckPassword("v3ryS3cr3t!"); err != nil {
		t.Errorf("CheckPassword() error = %v", err)
	}

	instructor, err := svc.Create(ctx, user.NewUser{
		Name:     "Prof",
		Username: "professor",
		Email:    "prof@test.cd",
		Password: "v3ryS3cr3t!",
		Role:     user.RoleInstructor,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if instructor.Role != user.RoleInstructor {
		t.Errorf("Create() role = %v, want %v", instructor.Role, user.RoleInstructor)
	}
}

func TestService_Update(t *testing.T) {
	svc := setupSvc(t)
	ctx := context.Background()

	usr, err := svc.Create(ctx, user.NewUser{
		Name:     "Awe Some",
		Username: "awesome",
		Email:    "awe@test.cd",
		Password: "v3ryS3cr3t!",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.Update(ctx, usr.ID, user.UpdateUser{Role: user.RoleAdmin})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.Role != user.RoleAdmin {
		t.Errorf("Update() role = %v, want %v", got.Role, user.RoleAdmin)
	}
	// untouched fields survive a partial update
	if got.Username != "awesome" || got.Email != "awe@test.cd" {
		t.Errorf("Update() = %+v, clobbered unset fields", got)
	}

	if _, err = svc.Update(ctx, "nope", user.UpdateUser{Name: "X"}); errors.Cause(err) != user.ErrNotFound {
		t.Errorf("Update() error = %v, want %v", err, user.ErrNotFound)
	}
}

func TestService_GetByUsernameOrEmail(t *testing.T) {
	svc := setupSvc(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, user.NewUser{
		Name:     "Awe Some",
		Username: "awesome",
		Email:    "awe@test.cd",
		Password: "v3ryS3cr3t!",
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	for _, uname := range []string{"awesome", "awe@test.cd", "AweSome", " awe@test.cd "} {
		if _, err := svc.GetByUsernameOrEmail(ctx, uname); err != nil {
			t.Errorf("GetByUsernameOrEmail(%q) error = %v", uname, err)
		}
	}
	if _, err := svc.GetByUsernameOrEmail(ctx, "ghost"); errors.Cause(err) != user.ErrNotFound {
		t.Errorf("GetByUsernameOrEmail() error = %v, want %v", err, user.ErrNotFound)
	}
}
