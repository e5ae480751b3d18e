package main

import (
	"context"

	"github.com/ogunkayacan/lisans/core"
	"github.com/ogunkayacan/lisans/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, fullName, pwd string, isAdmin bool) error {
	var usr user.User
	var err error
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if usr, err = cli.usrRepo.GetUserByUsername(ctx, uname); err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username: uname,
			Email:    email,
			Role:     user.RoleTeacher,
		}
	}
	if email != "" {
		usr.Email = email
	}
	if fullName != "" {
		usr.FullName = core.CleanString(fullName)
	}
	if isAdmin {
		usr.Role = user.RoleAdmin
	}
	usr.SetActive(true)
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.usrRepo.UpdateOrCreateUser(ctx, usr); err != nil {
		return err
	}
	return nil
}
