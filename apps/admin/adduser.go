package main

import (
	"context"
	"time"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, fullName, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	fullName = core.CleanString(fullName)
	if fullName == "" {
		fullName = uname
	}

	usr, err := cli.users.GetUser(ctx, user.GetFilter{Username: uname})
	if err == user.ErrNotFound {
		usr, err = cli.users.GetUser(ctx, user.GetFilter{Email: email})
	}
	exists := err == nil
	if err != nil && err != user.ErrNotFound {
		return err
	}

	now := time.Now().UTC()
	if !exists {
		usr = user.User{CreatedAt: now}
	}
	usr.Username = uname
	usr.Email = email
	usr.FullName = fullName
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		if err = cli.users.CheckUniqueness(ctx, uname, email, usr.ID); err != nil {
			return err
		}
		_, err = cli.users.UpdateUser(ctx, usr)
		return err
	}
	_, err = cli.users.CreateUser(ctx, usr)
	return err
}
