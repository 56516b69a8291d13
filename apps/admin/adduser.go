package main

import (
	"context"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/user"
)

// addUser updates or creates a user.User with the given role.
func (cli *commandLine) addUser(email, firstName, lastName, role, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	role = core.CleanString(role, true /* lower */)

	usr, err := cli.usrRepo.GetUserByEmailAndRole(ctx, email, role)
	if err != nil {
		if pkgerrors.Cause(err) != core.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		usr = user.User{
			Email:     email,
			Role:      role,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	usr.FirstName = core.CleanString(firstName)
	usr.LastName = core.CleanString(lastName)
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	isActive := true
	if usr.ID == 0 {
		usr.IsActive = &isActive
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr, &isActive)
	return err
}
