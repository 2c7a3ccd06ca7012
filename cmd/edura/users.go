// Copyright (c) 2026 Edura. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taibuivan/edura/internal/api"
	"github.com/taibuivan/edura/internal/app"
	"github.com/taibuivan/edura/internal/platform/apperr"
	"github.com/taibuivan/edura/internal/session"
	"github.com/taibuivan/edura/pkg/pagination"
)

// currentUser returns the signed-in user or an unauthorized error.
func currentUser(cli *cli) (*session.User, error) {
	state := cli.app.Auth.Snapshot()
	if !state.IsAuthenticated || state.User == nil {
		return nil, apperr.Unauthorized("Please log in first")
	}
	return state.User, nil
}

func runUsers(ctx context.Context, cli *cli, args []string) error {
	set := flags("users")
	page := set.Int("page", pagination.DefaultPage, "page number")
	limit := set.Int("limit", pagination.DefaultLimit, "users per page")
	if err := set.Parse(args); err != nil {
		return err
	}

	users, err := cli.app.API.Users.List(ctx, pagination.Params{Page: *page, Limit: *limit})
	if err != nil {
		return err
	}

	table := cli.table()
	fmt.Fprintln(table, "ID\tEMAIL\tNAME\tROLE")
	for _, user := range users {
		fmt.Fprintf(table, "%d\t%s\t%s\t%s\n", user.ID, user.Email, user.FullName, user.Role)
	}
	return table.Flush()
}

func runProfile(ctx context.Context, cli *cli, args []string) error {
	user, err := currentUser(cli)
	if err != nil {
		return err
	}

	set := flags("profile")
	fullName := set.String("name", user.FullName, "full name")
	email := set.String("email", user.Email, "email")
	if err := set.Parse(args); err != nil {
		return err
	}

	updated, err := cli.app.API.Users.Update(ctx, user.ID, api.UserUpdate{FullName: *fullName, Email: *email})
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Profile saved: %s <%s>\n", updated.FullName, updated.Email)
	return nil
}

func runAvatar(ctx context.Context, cli *cli, args []string) error {
	user, err := currentUser(cli)
	if err != nil {
		return err
	}

	set := flags("avatar")
	path := set.String("file", "", "image file")
	if err := set.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("-file is required")
	}

	file, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer file.Close()

	updated, err := cli.app.API.Users.UploadAvatar(ctx, user.ID, filepath.Base(*path), file)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "Avatar uploaded: %s\n", cli.app.API.AssetURL(updated.Avatar))
	return nil
}

// runWatch prints every auth transition until interrupted.
func runWatch(ctx context.Context, cli *cli, _ []string) error {
	show := func() {
		state := cli.app.Auth.Snapshot()
		if state.IsAuthenticated && state.User != nil {
			fmt.Fprintf(cli.out, "signed in as %s (%s)\n", state.User.Email, state.User.Role)
			return
		}
		fmt.Fprintln(cli.out, "signed out")
	}

	show()
	unsubscribe := cli.app.Auth.Subscribe(show)
	defer unsubscribe()

	err := cli.app.Follow(ctx)
	if errors.Is(err, app.ErrNoWatcher) {
		return errors.New("watch needs EDURA_SESSION_STORE=redis")
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
