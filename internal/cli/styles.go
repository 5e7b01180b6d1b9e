// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/ui/styles"
)

func init() {
	lipgloss.SetColorProfile(ColorProfile())
}

// Shared styles for command output.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(styles.Magenta)
	LabelStyle   = lipgloss.NewStyle().Foreground(styles.TextMuted).Width(18)
	ValueStyle   = lipgloss.NewStyle().Foreground(styles.TextPrimary)
	SuccessStyle = lipgloss.NewStyle().Foreground(styles.Emerald).Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
	WarningStyle = lipgloss.NewStyle().Foreground(styles.Amber)
	DimStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted)
)

// field renders "label value".
func field(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}
