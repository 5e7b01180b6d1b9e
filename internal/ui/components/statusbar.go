// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status is the current activity of the screen.
type Status int

const (
	StatusReady Status = iota
	StatusLoading
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusLoading:
		return "Loading..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a shape that reads without color.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusLoading:
		return "[ ]"
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// KeyHint is a key binding shown in the status bar.
type KeyHint struct {
	Key  string
	Help string
}

// StatusBar is the bottom bar.
type StatusBar struct {
	Status  Status
	Message string
	Hints   []KeyHint
	Width   int

	// IdleRemaining is the time left before an idle logout. Zero hides the
	// countdown.
	IdleRemaining time.Duration
	// IdleWarn turns the countdown amber at or below this value.
	IdleWarn time.Duration

	theme *styles.Theme
}

// NewStatusBar creates a StatusBar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the status bar.
func (s *StatusBar) View() string {
	width := s.Width
	if width < 20 {
		width = 20
	}

	statusStyle := s.theme.StatusValue
	switch s.Status {
	case StatusError:
		statusStyle = s.theme.ErrorStyle
	case StatusLoading:
		statusStyle = s.theme.InfoStyle
	}
	text := s.Status.String()
	if s.Message != "" {
		text = s.Message
	}
	left := statusStyle.Render(s.Status.Icon() + " " + text)

	var right string
	if s.IdleRemaining > 0 {
		style := s.theme.Muted
		if s.IdleWarn > 0 && s.IdleRemaining <= s.IdleWarn {
			style = s.theme.WarningStyle
		}
		right = style.Render("idle " + formatTimeRemaining(s.IdleRemaining))
	}

	inner := width - 2
	hints := s.renderHints(inner - lipgloss.Width(left) - lipgloss.Width(right) - 2)

	middle := ""
	if hints != "" {
		middle = "  " + hints
	}
	gap := inner - lipgloss.Width(left) - lipgloss.Width(middle) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return s.theme.StatusBar.Width(width).Render(left + middle + strings.Repeat(" ", gap) + right)
}

// renderHints fits as many hints as budget allows.
func (s *StatusBar) renderHints(budget int) string {
	var parts []string
	used := 0
	for _, h := range s.Hints {
		part := s.theme.StatusKey.Render(h.Key) + " " + s.theme.Help.Render(h.Help)
		w := lipgloss.Width(part)
		if len(parts) > 0 {
			w += 2
		}
		if used+w > budget {
			break
		}
		parts = append(parts, part)
		used += w
	}
	return strings.Join(parts, "  ")
}
