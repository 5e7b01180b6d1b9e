// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/instalite-tui/internal/api"
)

// Exit codes.
const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitNetworkError = 5
)

// CommandError is a failed command with context.
type CommandError struct {
	Command string
	Action  string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Command, e.Action, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// UsageError is a command line the parser could not act on.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

// ConfigError wraps a failure to load or save configuration.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return "configuration: " + e.Err.Error() }

func (e *ConfigError) Unwrap() error { return e.Err }

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var usage *UsageError
	var cfg *ConfigError
	var tty *TTYRequiredError
	switch {
	case errors.As(err, &usage), errors.As(err, &tty):
		return ExitUsageError
	case errors.As(err, &cfg):
		return ExitConfigError
	case errors.Is(err, api.ErrLoginRejected), errors.Is(err, api.ErrUnauthorized):
		return ExitAuthError
	case errors.Is(err, api.ErrUnavailable):
		return ExitNetworkError
	}
	return ExitGeneralError
}

// Fail prints err to stderr and exits with its code.
func Fail(err error) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:")+" "+err.Error())
	os.Exit(ExitCode(err))
}
