// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/edura/internal/api"
	"github.com/taibuivan/edura/internal/platform/sec"
)

func runRegister(ctx context.Context, cli *cli, args []string) error {
	set := flags("register")
	email := set.String("email", "", "account email")
	name := set.String("name", "", "full name")
	password := set.String("password", "", "password (prompted when empty)")
	if err := set.Parse(args); err != nil {
		return err
	}

	secret, err := cli.secret(*password, "Password: ")
	if err != nil {
		return err
	}

	userID, err := cli.app.API.Auth.Register(ctx, api.RegisterInput{Email: *email, Password: secret, FullName: *name})
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Account #%d created. Run \"edura login -email %s\" to sign in.\n", userID, *email)
	return nil
}

func runLogin(ctx context.Context, cli *cli, args []string) error {
	set := flags("login")
	email := set.String("email", "", "account email")
	password := set.String("password", "", "password (prompted when empty)")
	if err := set.Parse(args); err != nil {
		return err
	}

	secret, err := cli.secret(*password, "Password: ")
	if err != nil {
		return err
	}

	user, err := cli.app.API.Auth.Login(ctx, api.LoginInput{Email: *email, Password: secret})
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Signed in as %s (%s).\n", user.FullName, user.Role)
	return nil
}

func runGoogleLogin(ctx context.Context, cli *cli, args []string) error {
	set := flags("login-google")
	idToken := set.String("id-token", "", "identity token from the Google sign-in flow")
	if err := set.Parse(args); err != nil {
		return err
	}

	user, err := cli.app.API.Auth.GoogleLogin(ctx, *idToken)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Signed in as %s (%s).\n", user.FullName, user.Role)
	return nil
}

func runLogout(ctx context.Context, cli *cli, _ []string) error {
	if err := cli.app.API.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(cli.out, "Signed out.")
	return nil
}

func runWhoAmI(ctx context.Context, cli *cli, _ []string) error {
	state := cli.app.Auth.Snapshot()
	if !state.IsAuthenticated {
		fmt.Fprintln(cli.out, "Not signed in.")
		return nil
	}

	table := cli.table()
	fmt.Fprintf(table, "User\t#%d %s\n", state.User.ID, state.User.FullName)
	fmt.Fprintf(table, "Email\t%s\n", state.User.Email)
	fmt.Fprintf(table, "Role\t%s\n", state.User.Role)

	// The token is opaque to the client; its claims are shown when readable.
	token, err := cli.app.Sessions.AccessToken(ctx)
	if err != nil {
		return err
	}
	if claims, err := sec.Inspect(token); err == nil {
		remaining := claims.ExpiresIn(time.Now())
		if remaining > 0 {
			fmt.Fprintf(table, "Access token\texpires in %s\n", remaining.Round(time.Second))
		} else {
			fmt.Fprintln(table, "Access token\texpired (renewed on next request)")
		}
	}

	return table.Flush()
}

func runForgotPassword(ctx context.Context, cli *cli, args []string) error {
	set := flags("forgot-password")
	email := set.String("email", "", "account email")
	if err := set.Parse(args); err != nil {
		return err
	}

	if err := cli.app.API.Auth.ForgotPassword(ctx, *email); err != nil {
		return err
	}

	fmt.Fprintln(cli.out, "If the address is registered, a reset link is on its way.")
	return nil
}

func runResetPassword(ctx context.Context, cli *cli, args []string) error {
	set := flags("reset-password")
	token := set.String("token", "", "token from the reset link")
	password := set.String("password", "", "new password (prompted when empty)")
	if err := set.Parse(args); err != nil {
		return err
	}

	secret, err := cli.secret(*password, "New password: ")
	if err != nil {
		return err
	}

	if err := cli.app.API.Auth.ResetPassword(ctx, *token, secret); err != nil {
		return err
	}

	fmt.Fprintln(cli.out, "Password changed. Sign in with the new password.")
	return nil
}
