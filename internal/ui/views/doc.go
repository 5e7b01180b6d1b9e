// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package views holds one Bubble Tea model per screen of the client.
//
// Screens never navigate or touch the idle monitor themselves. They return
// commands producing NavigateMsg, LoggedInMsg, LogoutMsg or ToastMsg, and
// the app shell acts on those. Backend calls run inside commands and report
// back with messages tagged by the screen instance, so a reply that arrives
// after the user moved on is dropped.
package views
