package main

import (
	"context"
	"time"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/user"
)

func (cli *commandLine) resetPassword(email, role, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	var usr user.User
	var err error
	if role != "" {
		usr, err = cli.usrRepo.GetUserByEmailAndRole(ctx, email, core.CleanString(role, true /* lower */))
	} else {
		usr, err = cli.usrRepo.GetUserByEmail(ctx, email)
	}
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr, nil)
	return err
}
