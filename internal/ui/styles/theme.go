// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme modes accepted by NewTheme.
const (
	ModeAuto  = "auto"
	ModeDark  = "dark"
	ModeLight = "light"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// CHROME
	// ==========================================================================

	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderUser  lipgloss.Style
	NavItem     lipgloss.Style
	NavActive   lipgloss.Style
	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusValue lipgloss.Style
	Help        lipgloss.Style

	// ==========================================================================
	// CONTENT
	// ==========================================================================

	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Body        lipgloss.Style
	Muted       lipgloss.Style
	Card        lipgloss.Style
	CardFocused lipgloss.Style
	Username    lipgloss.Style
	Caption     lipgloss.Style
	Liked       lipgloss.Style

	// ==========================================================================
	// FORMS
	// ==========================================================================

	Label        lipgloss.Style
	Field        lipgloss.Style
	FieldFocused lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
	FieldError   lipgloss.Style

	// ==========================================================================
	// FEEDBACK
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
	LinkStyle    lipgloss.Style
	Toast        lipgloss.Style
	Banner       lipgloss.Style
}

// NewTheme creates a theme. mode is auto, dark or light; auto asks the
// terminal for its background.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case ModeDark:
		isDark = true
	case ModeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

// GlamourStyle returns the glamour standard style that matches the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}

func (t *Theme) initStyles() {
	t.App = lipgloss.NewStyle().Padding(0, 1)

	// Chrome
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderBrand = lipgloss.NewStyle().
		Bold(true).
		Foreground(Magenta)
	t.HeaderUser = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.NavItem = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Padding(0, 1)
	t.NavActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Magenta).
		Bold(true).
		Padding(0, 1)
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusKey = lipgloss.NewStyle().
		Foreground(Magenta).
		Bold(true)
	t.StatusValue = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Content
	t.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Magenta).
		MarginBottom(1)
	t.Subtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)
	t.Body = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.CardFocused = t.Card.
		BorderForeground(Magenta)
	t.Username = lipgloss.NewStyle().
		Bold(true).
		Foreground(Violet)
	t.Caption = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.Liked = lipgloss.NewStyle().
		Foreground(Orange).
		Bold(true)

	// Forms
	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)
	t.Field = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.FieldFocused = t.Field.
		BorderForeground(Magenta)
	t.Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceBright).
		Padding(0, 2)
	t.ButtonActive = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Magenta).
		Bold(true).
		Padding(0, 2)
	t.FieldError = lipgloss.NewStyle().
		Foreground(Rose)

	// Feedback
	t.SuccessStyle = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.ErrorStyle = lipgloss.NewStyle().Foreground(Rose).Bold(true)
	t.WarningStyle = lipgloss.NewStyle().Foreground(Amber).Bold(true)
	t.InfoStyle = lipgloss.NewStyle().Foreground(Sky).Bold(true)
	t.LinkStyle = lipgloss.NewStyle().Foreground(Violet).Underline(true)
	t.Toast = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)
	t.Banner = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 1)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// ContentWidth is the width available to a screen body.
func (t *Theme) ContentWidth() int {
	w := t.Width - 2
	switch t.GetLayoutMode() {
	case LayoutWide:
		if w > 96 {
			w = 96
		}
	case LayoutNarrow:
		if w < 20 {
			w = 20
		}
	}
	return w
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)
