// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the instalite packages.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writes (temp file, fsync, rename)
//
// Display Strings:
//   - TruncateWidth: cut a string to a terminal column budget
//   - StringWidth: terminal column width of a string
//   - PadRight: pad a string to a column width
//
// # Usage
//
//	// Persist the session document without ever leaving a partial file
//	err := util.AtomicWriteFile(path, data, 0600)
//
//	// Fit a caption into a card
//	line := util.TruncateWidth(post.Caption, width-4)
package util
