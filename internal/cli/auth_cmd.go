// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login, logout, register, and profile commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/morganforge/parlance/internal/model"
)

// HandleLogin signs in and persists the token pair.
func HandleLogin(args Args) {
	p := NewArgParser(args.Raw)

	app, err := newApp()
	if err != nil {
		fail(err)
	}
	defer app.Close()

	email := p.Flag("email")
	if email == "" {
		if email, err = prompt("Email: "); err != nil {
			fail(err)
		}
	}
	password, err := promptSecret("Password: ")
	if err != nil {
		fail(err)
	}

	user, err := app.Session.Login(context.Background(), model.LoginRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		fail(err)
	}

	if args.JSON {
		printJSON(user)
		return
	}
	fmt.Printf("Logged in as %s\n", user.Email)
}

// HandleLogout revokes the refresh token and clears local state.
func HandleLogout(args Args) {
	app, err := newApp()
	if err != nil {
		fail(err)
	}
	defer app.Close()

	if !app.Session.LoggedIn() {
		fmt.Println("Not logged in.")
		return
	}

	if err := app.Session.Logout(context.Background()); err != nil {
		// Local state is already cleared; the server call is best-effort.
		fmt.Fprintf(os.Stderr, "Warning: server-side logout failed: %v\n", err)
	}
	fmt.Println("Logged out.")
}

// HandleRegister creates an account and signs in.
func HandleRegister(args Args) {
	p := NewArgParser(args.Raw)

	app, err := newApp()
	if err != nil {
		fail(err)
	}
	defer app.Close()

	req := model.RegisterRequest{
		Username:  p.Flag("username"),
		Email:     p.Flag("email"),
		FirstName: p.Flag("first-name"),
		LastName:  p.Flag("last-name"),
	}
	if req.Email == "" {
		if req.Email, err = prompt("Email: "); err != nil {
			fail(err)
		}
	}
	if req.Username == "" {
		if req.Username, err = prompt("Username: "); err != nil {
			fail(err)
		}
	}
	if req.Password, err = promptSecret("Password: "); err != nil {
		fail(err)
	}
	confirm, err := promptSecret("Confirm password: ")
	if err != nil {
		fail(err)
	}
	if confirm != req.Password {
		fail(fmt.Errorf("passwords do not match"))
	}
	req.Password2 = confirm

	user, err := app.Session.Register(context.Background(), req)
	if err != nil {
		fail(err)
	}

	if args.JSON {
		printJSON(user)
		return
	}
	fmt.Printf("Account created. Logged in as %s\n", user.Email)
}

// HandleProfile shows or updates the signed-in user's profile.
func HandleProfile(args Args) {
	p := NewArgParser(args.Raw)

	app, err := newApp()
	if err != nil {
		fail(err)
	}
	defer app.Close()
	if err := app.requireLogin(); err != nil {
		fail(err)
	}

	ctx := context.Background()
	switch p.Subcommand() {
	case "", "show":
		user, err := app.Services().Auth.Profile(ctx)
		if err != nil {
			fail(err)
		}
		if args.JSON {
			printJSON(user)
			return
		}
		fmt.Printf("Username: %s\n", user.Username)
		fmt.Printf("Email:    %s\n", user.Email)
		if user.FirstName != "" || user.LastName != "" {
			fmt.Printf("Name:     %s %s\n", user.FirstName, user.LastName)
		}
		if !user.CreatedAt.IsZero() {
			fmt.Printf("Joined:   %s\n", user.CreatedAt.Format("2006-01-02"))
		}

	case "update":
		fields := map[string]any{}
		if v := p.Flag("first-name"); v != "" {
			fields["first_name"] = v
		}
		if v := p.Flag("last-name"); v != "" {
			fields["last_name"] = v
		}
		if len(fields) == 0 {
			fail(fmt.Errorf("nothing to update; pass --first-name or --last-name"))
		}
		user, err := app.Services().Auth.UpdateProfile(ctx, fields)
		if err != nil {
			fail(err)
		}
		if args.JSON {
			printJSON(user)
			return
		}
		fmt.Println("Profile updated.")

	case "password":
		current, err := promptSecret("Current password: ")
		if err != nil {
			fail(err)
		}
		next, err := promptSecret("New password: ")
		if err != nil {
			fail(err)
		}
		confirm, err := promptSecret("Confirm new password: ")
		if err != nil {
			fail(err)
		}
		if confirm != next {
			fail(fmt.Errorf("passwords do not match"))
		}
		err = app.Services().Auth.ChangePassword(ctx, model.PasswordChangeRequest{
			OldPassword: current,
			NewPassword: next,
		})
		if err != nil {
			fail(err)
		}
		fmt.Println("Password changed.")

	default:
		fail(fmt.Errorf("unknown profile subcommand: %s", p.Subcommand()))
	}
}
