// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/router"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
)

// =============================================================================
// VALIDATION
// =============================================================================

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const passwordSpecials = "@$!%*?&"

// Validation messages shown under the register fields.
const (
	MsgInvalidEmail    = "Invalid email format."
	MsgInvalidPassword = "Password must include uppercase, lowercase, number, special character, and be at least 8 characters."
)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidPassword reports whether s has at least 8 characters drawn from
// letters, digits and @$!%*?&, with at least one lowercase letter, one
// uppercase letter, one digit and one of the specials.
func ValidPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}
	return lower && upper && digit && special
}

// =============================================================================
// REGISTER
// =============================================================================

// Register creates an account.
type Register struct {
	base
	form form
}

const callRegister = "register"

// NewRegister creates the registration screen.
func NewRegister(d *Deps) *Register {
	return &Register{
		base: newBase(d),
		form: newForm(
			newInput("Email", "alice@example.com", 254),
			newPassword("Password"),
		),
	}
}

func (r *Register) Init() tea.Cmd { return r.form.focusField(0) }

func (r *Register) Title() string { return "Create account" }

func (r *Register) Capturing() bool { return true }

func (r *Register) Hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "enter", Help: "register"},
		{Key: "tab", Help: "next field"},
		{Key: "esc", Help: "back to sign in"},
	}
}

func (r *Register) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return r, Navigate(router.PathLogin)
		case "enter":
			if !r.form.onLast() {
				return r, r.form.focusField(r.form.focus + 1)
			}
			return r, r.submit()
		}
		cmd := r.form.Update(msg)
		r.validate(false)
		return r, cmd

	case result[string]:
		if !r.mine(msg.screen) || msg.kind != callRegister {
			return r, nil
		}
		r.loading = false
		if msg.err != nil {
			return r, ErrorToast(msg.err, "Registration failed. Please try again later.")
		}
		text := msg.value
		if text == "" {
			text = "A verification email has been sent to your email address."
		}
		r.form.fields[0].setValue("")
		r.form.fields[1].setValue("")
		return r, tea.Batch(
			Toast(components.ToastKindSuccess, text),
			Navigate(router.PathLogin),
		)
	}
	return r, r.form.Update(msg)
}

// validate sets field errors. Empty fields are only flagged on submit.
func (r *Register) validate(submit bool) bool {
	email := strings.TrimSpace(r.form.fields[0].value())
	password := r.form.fields[1].value()

	r.form.fields[0].errMsg = ""
	r.form.fields[1].errMsg = ""
	if (email != "" || submit) && !ValidEmail(email) {
		r.form.fields[0].errMsg = MsgInvalidEmail
	}
	if (password != "" || submit) && !ValidPassword(password) {
		r.form.fields[1].errMsg = MsgInvalidPassword
	}
	return r.form.fields[0].errMsg == "" && r.form.fields[1].errMsg == ""
}

func (r *Register) submit() tea.Cmd {
	if r.loading || !r.validate(true) {
		return nil
	}
	r.loading = true
	req := api.RegisterRequest{
		Email:    strings.TrimSpace(r.form.fields[0].value()),
		Password: r.form.fields[1].value(),
	}
	client := r.deps.API
	return call(&r.base, callRegister, func(ctx context.Context) (string, error) {
		return client.Register(ctx, req)
	})
}

func (r *Register) SetSize(width, height int) {
	r.base.SetSize(width, height)
	r.form.setWidth(min(r.contentWidth(), 60))
}

func (r *Register) View() string {
	th := r.deps.Theme
	w := min(r.contentWidth(), 60)
	return lipgloss.JoinVertical(lipgloss.Left,
		th.Title.Render("Create your account"),
		r.form.View(th, w),
		"",
		button(th, "Register", r.loading),
		"",
		th.Muted.Render("Already registered? Press esc to sign in."),
	)
}
