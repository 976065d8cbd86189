package main

import (
	"context"
	"time"

	"github.com/trezcool/darasa/core/user"
)

// syncRoles resets users carrying an unrecognized role value to student.
// Role checks fail closed on unknown values, so a bad row quietly demotes
// its user; this makes the demotion explicit in the store.
func (cli *commandLine) syncRoles() error {
	ctx := context.Background()
	users, err := cli.usrRepo.QueryAllUsers(ctx)
	if err != nil {
		return err
	}

	var fixed int
	for _, usr := range users {
		if usr.Role.Valid() {
			continue
		}
		usr.Role = user.RoleStudent
		usr.UpdatedAt = time.Now().UTC()
		if _, err = cli.usrRepo.UpdateUser(ctx, usr, nil); err != nil {
			return err
		}
		fixed++
	}
	logger.Printf("syncroles: %d user(s) reset to %q\n", fixed, user.RoleStudent)
	return nil
}
