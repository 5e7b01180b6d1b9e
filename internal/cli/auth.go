// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/session"
)

// ErrNotSignedIn is returned by commands that need a stored session.
var ErrNotSignedIn = fmt.Errorf("not signed in: %w", api.ErrUnauthorized)

// =============================================================================
// LOGIN
// =============================================================================

// Prompter reads lines from the user.
type Prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
	Close() error
}

// newPrompter is replaced in tests.
var newPrompter = func() Prompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

// HandleLogin signs in and stores the session.
func HandleLogin(args Args) error {
	if err := RequiresTTY("sign in"); err != nil {
		return err
	}
	rt, err := Bootstrap(args)
	if err != nil {
		return err
	}
	defer rt.Close()
	return login(rt, args.User, newPrompter())
}

func login(rt *Runtime, who string, p Prompter) error {
	defer p.Close()

	var err error
	if who == "" {
		who, err = p.Prompt("Username or email: ")
		if err != nil {
			return promptErr(err)
		}
	}
	who = strings.TrimSpace(who)
	password, err := p.PasswordPrompt("Password: ")
	if err != nil {
		return promptErr(err)
	}
	if who == "" || password == "" {
		return &UsageError{Message: "username or email and password are required"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), rt.Config.APITimeout())
	defer cancel()

	res, err := rt.API.Login(ctx, who, password)
	if err != nil {
		if errors.Is(err, api.ErrLoginRejected) {
			return err
		}
		return &CommandError{Command: "login", Action: "sign in", Err: err}
	}
	if err := rt.Store.Set(session.Token(res.LoggedUser)); err != nil {
		return &CommandError{Command: "login", Action: "store session", Err: err}
	}
	rt.Log.Info(ctx, "signed in from the command line")

	profile, err := rt.API.EditProfile(ctx, res.LoggedUser)
	switch {
	case err != nil:
		fmt.Println(WarningStyle.Render("Signed in, but the profile could not be loaded: " + api.Message(err, err.Error())))
	case profile.Username == "":
		fmt.Println(SuccessStyle.Render("Signed in.") + " " + DimStyle.Render("Open the TUI to complete your profile."))
	default:
		fmt.Println(SuccessStyle.Render("Signed in as @" + profile.Username))
	}
	return nil
}

func promptErr(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) {
		return &UsageError{Message: "aborted"}
	}
	return err
}

// =============================================================================
// LOGOUT / WHOAMI
// =============================================================================

// HandleLogout ends the stored session. The backend is told on a best
// effort basis; the local session is cleared regardless.
func HandleLogout(args Args) error {
	rt, err := Bootstrap(args)
	if err != nil {
		return err
	}
	defer rt.Close()
	return logout(rt)
}

func logout(rt *Runtime) error {
	if !session.LoggedIn(rt.Store) {
		fmt.Println(DimStyle.Render("Not signed in."))
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), rt.Config.APITimeout())
	defer cancel()
	if err := rt.API.Logout(ctx); err != nil {
		rt.Log.Warn(ctx, "backend logout failed", "error", err)
	}
	if err := rt.Store.Clear(); err != nil {
		return &CommandError{Command: "logout", Action: "clear session", Err: err}
	}
	fmt.Println(SuccessStyle.Render("Signed out."))
	return nil
}

// HandleWhoami prints the stored identity.
func HandleWhoami(args Args) error {
	rt, err := Bootstrap(args)
	if err != nil {
		return err
	}
	defer rt.Close()
	return whoami(rt)
}

func whoami(rt *Runtime) error {
	tok, ok := rt.Store.Get()
	if !ok {
		return ErrNotSignedIn
	}
	fmt.Println(field("session", tok.String()))
	fmt.Println(field("backend", rt.Config.API.BaseURL))
	fmt.Println(field("idle timeout", rt.Config.IdleTimeout().String()))
	return nil
}
