package user

import (
	"context"
	"testing"

	"github.com/pkg/errors"
)

type stubRepo struct {
	Repository
	usr User
	err error
}

func (r stubRepo) GetUserByID(_ context.Context, _ string) (User, error) {
	return r.usr, r.err
}

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name  string
		claim string
		want  Role
	}{
		{name: "student", claim: "student", want: RoleStudent},
		{name: "instructor", claim: "instructor", want: RoleInstructor},
		{name: "admin", claim: "admin", want: RoleAdmin},
		{name: "absent claim defaults to student", claim: "", want: RoleStudent},
		{name: "unknown claim defaults to student", claim: "superuser", want: RoleStudent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveRole(tt.claim); got != tt.want {
				t.Errorf("ResolveRole(%q) = %v, want %v", tt.claim, got, tt.want)
			}
		})
	}
}

func TestClaimRoleResolver(t *testing.T) {
	var resolver ClaimRoleResolver

	role, err := resolver.ResolveRole(context.Background(), Identity{ID: "u1", RoleClaim: "instructor"})
	if err != nil {
		t.Fatalf("ResolveRole() error = %v", err)
	}
	if role != RoleInstructor {
		t.Errorf("ResolveRole() = %v, want %v", role, RoleInstructor)
	}
}

func TestStoreRoleResolver(t *testing.T) {
	ctx := context.Background()

	t.Run("canonical role wins over a stale claim", func(t *testing.T) {
		resolver := StoreRoleResolver{Repo: stubRepo{usr: User{ID: "u1", Role: RoleStudent}}}

		// claim says instructor; the store was demoted since token issuance
		role, err := resolver.ResolveRole(ctx, Identity{ID: "u1", RoleClaim: "instructor"})
		if err != nil {
			t.Fatalf("ResolveRole() error = %v", err)
		}
		if role != RoleStudent {
			t.Errorf("ResolveRole() = %v, want canonical %v", role, RoleStudent)
		}
	})

	t.Run("store errors propagate", func(t *testing.T) {
		wantErr := errors.New("store down")
		resolver := StoreRoleResolver{Repo: stubRepo{err: wantErr}}

		if _, err := resolver.ResolveRole(ctx, Identity{ID: "u1"}); errors.Cause(err) != wantErr {
			t.Errorf("ResolveRole() error = %v, want %v", err, wantErr)
		}
	})
}

func TestRolePrivileged(t *testing.T) {
	if RoleStudent.Privileged() {
		t.Errorf("student must not be privileged")
	}
	if !RoleInstructor.Privileged() || !RoleAdmin.Privileged() {
		t.Errorf("instructor and admin must be privileged")
	}
}
