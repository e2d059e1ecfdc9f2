package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Prajjwal2051/Viewly-sub002/core"
	"github.com/Prajjwal2051/Viewly-sub002/core/user"
)

const adminOpTimeout = 30 * time.Second

var errSamePassword = errors.New("the new password must differ from the current one")

// resetPassword overrides the password policy on purpose: operators may need to hand out a
// temporary password. Every session of the user is signed out.
func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx, cancel := context.WithTimeout(context.Background(), adminOpTimeout)
	defer cancel()

	usr, err := cli.users.GetUser(ctx, user.GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
	if err != nil {
		return err
	}
	if usr.CheckPassword(pwd) == nil {
		return errSamePassword
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	usr.UpdatedAt = time.Now().UTC()
	if _, err = cli.users.UpdateUser(ctx, usr); err != nil {
		return err
	}

	signedIn := usr.RefreshTokenHash != ""
	if err = cli.users.SetRefreshTokenHash(ctx, usr.ID, ""); err != nil {
		return err
	}
	if signedIn {
		fmt.Printf("password of @%s reset, active session revoked\n", usr.Username)
	} else {
		fmt.Printf("password of @%s reset\n", usr.Username)
	}
	return nil
}
