// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/router"
	"github.com/jeranaias/instalite-tui/internal/session"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
)

// =============================================================================
// LOGIN
// =============================================================================

// Login signs a user in. A successful login stores the token and then looks
// up the profile: users without a username go on to create one.
type Login struct {
	base
	form    form
	expired time.Duration
	stage   string
}

const (
	callLogin       = "login"
	callLoginLookup = "login-profile"
)

// NewLogin creates the login screen.
func NewLogin(d *Deps) *Login {
	return &Login{
		base: newBase(d),
		form: newForm(
			newInput("Username or email", "alice or alice@example.com", 254),
			newPassword("Password"),
		),
	}
}

// SetExpired shows the idle logout notice.
func (l *Login) SetExpired(idleFor time.Duration) {
	l.expired = idleFor
	if l.expired <= 0 {
		l.expired = time.Nanosecond
	}
}

func (l *Login) Init() tea.Cmd { return l.form.focusField(0) }

func (l *Login) Title() string { return "Sign in" }

func (l *Login) Capturing() bool { return true }

func (l *Login) Hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "enter", Help: "sign in"},
		{Key: "tab", Help: "next field"},
		{Key: "ctrl+r", Help: "create account"},
	}
}

func (l *Login) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+r":
			return l, Navigate(router.PathRegister)
		case "enter":
			if !l.form.onLast() {
				return l, l.form.focusField(l.form.focus + 1)
			}
			return l, l.submit()
		}

	case result[*api.LoginResult]:
		if !l.mine(msg.screen) {
			return l, nil
		}
		return l, l.loggedIn(msg.value, msg.err)

	case result[*api.Profile]:
		if !l.mine(msg.screen) || msg.kind != callLoginLookup {
			return l, nil
		}
		l.loading = false
		if msg.err != nil {
			// The token is already stored; the guard lets the user in.
			return l, tea.Batch(
				ErrorToast(msg.err, "Failed to fetch user data."),
				Navigate(router.PathHome),
			)
		}
		if msg.value.Username == "" {
			return l, tea.Batch(
				Toast(components.ToastKindStatus, "New account detected. Please complete your profile."),
				Navigate(router.PathCreateProfile),
			)
		}
		return l, tea.Batch(
			Toast(components.ToastKindSuccess, "Welcome back!"),
			Navigate(router.PathHome),
		)
	}

	return l, l.form.Update(msg)
}

func (l *Login) submit() tea.Cmd {
	if l.loading {
		return nil
	}
	who := strings.TrimSpace(l.form.fields[0].value())
	password := l.form.fields[1].value()
	if who == "" || password == "" {
		return Toast(components.ToastKindWarning, "Enter your username or email and password.")
	}
	l.loading = true
	l.stage = "Signing in"
	client := l.deps.API
	return call(&l.base, callLogin, func(ctx context.Context) (*api.LoginResult, error) {
		return client.Login(ctx, who, password)
	})
}

// loggedIn stores the token on the UI loop, then fetches the profile.
func (l *Login) loggedIn(res *api.LoginResult, err error) tea.Cmd {
	if err != nil {
		l.loading = false
		if errors.Is(err, api.ErrLoginRejected) {
			return Toast(components.ToastKindError, "Invalid username or password.")
		}
		return ErrorToast(err, "Login failed. Please try again.")
	}
	if err := l.deps.Store.Set(session.Token(res.LoggedUser)); err != nil {
		l.loading = false
		l.deps.logger().Error(context.Background(), "store session token", "error", err)
		return Toast(components.ToastKindError, "Could not save your session.")
	}
	l.form.fields[1].setValue("")
	l.stage = "Loading profile"

	user := res.LoggedUser
	client := l.deps.API
	return tea.Sequence(
		func() tea.Msg { return LoggedInMsg{User: user} },
		call(&l.base, callLoginLookup, func(ctx context.Context) (*api.Profile, error) {
			return client.EditProfile(ctx, user)
		}),
	)
}

func (l *Login) SetSize(width, height int) {
	l.base.SetSize(width, height)
	l.form.setWidth(min(l.contentWidth(), 60))
}

func (l *Login) View() string {
	th := l.deps.Theme
	w := min(l.contentWidth(), 60)

	var parts []string
	if l.expired > 0 {
		parts = append(parts, components.RenderExpiredNotice(th, l.expired), "")
	}
	parts = append(parts,
		th.Title.Render("Sign in to instalite"),
		l.form.View(th, w),
		"",
		button(th, "Sign in", l.loading),
	)
	if l.loading {
		parts = append(parts, th.Muted.Render(l.stage+"..."))
	}
	parts = append(parts, "", th.Muted.Render("No account? Press ctrl+r to register."))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
