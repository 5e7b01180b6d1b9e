// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/ui/styles"
)

// =============================================================================
// IDLE EXPIRY OVERLAY
// =============================================================================

// ExpiryOverlay is the box shown when an idle logout is close. It only
// renders; the idle monitor owns the timing and any input dismisses it.
type ExpiryOverlay struct {
	visible   bool
	remaining time.Duration
	width     int
	height    int
}

// SetSize sets the area the overlay is centered in.
func (o *ExpiryOverlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// Show displays the overlay with remaining time left.
func (o *ExpiryOverlay) Show(remaining time.Duration) {
	o.visible = true
	o.remaining = remaining
}

// UpdateTime refreshes the countdown.
func (o *ExpiryOverlay) UpdateTime(remaining time.Duration) {
	o.remaining = remaining
}

// Hide hides the overlay.
func (o *ExpiryOverlay) Hide() {
	o.visible = false
}

// IsVisible reports whether the overlay is shown.
func (o *ExpiryOverlay) IsVisible() bool {
	return o.visible
}

// View renders the overlay centered in its area, or "" when hidden.
func (o *ExpiryOverlay) View() string {
	if !o.visible {
		return ""
	}
	width := o.width
	if width == 0 {
		width = 60
	}
	height := o.height
	if height == 0 {
		height = 12
	}
	boxWidth := clampWidth(width-8, 30, 56)

	title := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true).
		Render(styles.StatusIndicators.Warning + " Still there?")
	timeStr := lipgloss.NewStyle().Foreground(styles.Amber).Bold(true).
		Render(formatTimeRemaining(o.remaining))
	body := lipgloss.NewStyle().Foreground(styles.TextPrimary).Width(boxWidth - 6).Align(lipgloss.Center).
		Render("You will be signed out for inactivity in " + timeStr)
	hint := lipgloss.NewStyle().Foreground(styles.TextSecondary).Italic(true).
		Render("Press any key to stay signed in")

	content := lipgloss.JoinVertical(lipgloss.Center, title, "", body, "", hint)
	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(styles.Amber).
		Padding(1, 2).
		Width(boxWidth).
		Align(lipgloss.Center).
		Render(content)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// RenderExpiredNotice renders the banner shown on the login screen after an
// idle logout.
func RenderExpiredNotice(theme *styles.Theme, idleFor time.Duration) string {
	return theme.Banner.Render(styles.StatusIndicators.Error +
		" Your session expired after " + idleFor.Round(time.Second).String() + " of inactivity. Please sign in again.")
}
