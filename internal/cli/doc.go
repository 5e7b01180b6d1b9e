// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the non-interactive
// commands of instalite.
//
// # Commands
//
//	instalite                  Start the TUI (default)
//	instalite login            Sign in from the shell
//	instalite logout           End the stored session
//	instalite whoami           Print the signed-in user
//	instalite config ...       Show, read or change settings
//	instalite version          Print version information
//
// Every command shares the same session storage as the TUI, so a login
// from the shell is picked up by a running TUI and the other way round.
package cli
