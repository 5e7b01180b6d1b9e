// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides reusable UI pieces for the instalite TUI.

# Chrome

Header (header.go) - Brand, navigation tabs and the signed-in user.
StatusBar (statusbar.go) - Status text, key hints and the idle countdown.
ExpiryOverlay (expiry.go) - Warning shown shortly before an idle logout.

# Content

PostCard (postcard.go) - One post in a feed or profile grid.
Markdown (markdown.go) - Glamour rendering for captions and bios.
Highlight (highlight.go) - Chroma highlighting for config output.

# Feedback

ToastManager (toast.go) - Auto-dismissing notifications in the corner.
*/
package components
