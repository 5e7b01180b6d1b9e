// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the instalite TUI.

All colors use Lip Gloss AdaptiveColor. NewTheme picks the light or dark
variant from the configured mode, asking the terminal through termenv when
the mode is "auto".

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(msg.Width, msg.Height)
	title := theme.Title.Render("Home")

Status text always carries an ASCII marker ([OK], [X], [!], [i]) next to its
color.
*/
package styles
