package user

import "context"

// Identity is the authenticated principal handed to the core by the
// transport layer: an account ID plus the denormalized role claim carried
// in the session token.
type Identity struct {
	ID        string
	RoleClaim string
}

// RoleResolver resolves the effective Role for an identity at decision time.
//
// The canonical role lives on the user row; the claim on the session token is
// a denormalized copy that can drift until the token is refreshed. Callers
// that gate anything on the role should use the store-backed resolver; the
// claim-backed one is a read optimization behind the same contract.
type RoleResolver interface {
	ResolveRole(ctx context.Context, identity Identity) (Role, error)
}

// ClaimRoleResolver trusts the denormalized role claim. It never fails.
type ClaimRoleResolver struct{}

func (ClaimRoleResolver) ResolveRole(_ context.Context, identity Identity) (Role, error) {
	return ResolveRole(identity.RoleClaim), nil
}

// StoreRoleResolver reads the canonical role from the user store.
// Store failures propagate so that callers fail closed.
type StoreRoleResolver struct {
	Repo Repository
}

func (r StoreRoleResolver) ResolveRole(ctx context.Context, identity Identity) (Role, error) {
	usr, err := r.Repo.GetUserByID(ctx, identity.ID)
	if err != nil {
		return "", err
	}
	return ResolveRole(string(usr.Role)), nil
}

var (
	_ RoleResolver = (*ClaimRoleResolver)(nil)
	_ RoleResolver = (*StoreRoleResolver)(nil)
)
