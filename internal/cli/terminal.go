// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TERMINAL
// =============================================================================

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// IsTTY reports whether stdin is a terminal. The TUI and the login prompt
// need one.
func IsTTY() bool { return isTerminal(os.Stdin) }

// IsStdoutTTY reports whether stdout is a terminal.
func IsStdoutTTY() bool { return isTerminal(os.Stdout) }

// ColorsEnabled reports whether command output gets ANSI colors.
// NO_COLOR and TERM=dumb turn them off; FORCE_COLOR keeps them on in pipes.
func ColorsEnabled() bool {
	switch {
	case os.Getenv("NO_COLOR") != "", os.Getenv("TERM") == "dumb":
		return false
	case os.Getenv("FORCE_COLOR") != "":
		return true
	}
	return IsStdoutTTY()
}

// ColorProfile is the lipgloss profile for command output.
func ColorProfile() termenv.Profile {
	if ColorsEnabled() {
		return termenv.ColorProfile()
	}
	return termenv.Ascii
}

// DarkBackground guesses the terminal background for highlighted output.
func DarkBackground() bool {
	return !ColorsEnabled() || termenv.HasDarkBackground()
}

// RequiresTTY fails unless stdin is interactive.
func RequiresTTY(operation string) error {
	if IsTTY() {
		return nil
	}
	return &TTYRequiredError{Operation: operation}
}

// TTYRequiredError reports a command that can only run interactively.
type TTYRequiredError struct {
	Operation string
}

func (e *TTYRequiredError) Error() string {
	if e.Operation == "" {
		return "instalite needs an interactive terminal"
	}
	return "instalite needs an interactive terminal to " + e.Operation + " (stdin is not a tty)"
}
