package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/agenda/core"
	"github.com/trezcool/agenda/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(name, email string, role user.Role, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		_, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:            name,
			Email:           email,
			Role:            role,
			Password:        pwd,
			PasswordConfirm: pwd,
		})
		return err
	}

	_, err = cli.usrSvc.Update(ctx, usr, user.UpdateUser{
		Name:            name,
		Email:           email,
		Role:            role,
		Password:        pwd,
		PasswordConfirm: pwd,
	})
	return err
}
