// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model. It owns navigation through the
// route guard, the idle monitor for the current login, and the chrome
// (header, status bar, toasts and the expiry overlay) around the active
// screen.
package app
