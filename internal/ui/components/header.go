// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/router"
	"github.com/jeranaias/instalite-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// NavItem is one navigation tab.
type NavItem struct {
	Key    string
	Label  string
	Path   string
	Screen router.Screen
}

// NavItems are the tabs shown to a signed-in user.
var NavItems = []NavItem{
	{Key: "F1", Label: "Home", Path: router.PathHome, Screen: router.ScreenHome},
	{Key: "F2", Label: "Search", Path: router.PathSearch, Screen: router.ScreenSearch},
	{Key: "F3", Label: "New post", Path: router.PathCreatePost, Screen: router.ScreenCreatePost},
	{Key: "F4", Label: "Profile", Path: router.PathProfile, Screen: router.ScreenProfile},
}

// NavItemForKey returns the tab bound to key.
func NavItemForKey(key string) (NavItem, bool) {
	for _, it := range NavItems {
		if strings.EqualFold(it.Key, key) {
			return it, true
		}
	}
	return NavItem{}, false
}

// Header is the title bar.
type Header struct {
	Title  string
	User   string
	Active router.Screen
	Width  int
	theme  *styles.Theme
}

// NewHeader creates a Header.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Title: "instalite", Width: 80, theme: theme}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header. Tabs are only shown with a user.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}

	brand := h.theme.HeaderBrand.Render(h.Title)

	var tabs []string
	if h.User != "" {
		compact := h.theme.GetLayoutMode() == styles.LayoutNarrow
		for _, it := range NavItems {
			label := it.Key + " " + it.Label
			if compact {
				label = it.Key
			}
			style := h.theme.NavItem
			if it.Screen == h.Active {
				style = h.theme.NavActive
			}
			tabs = append(tabs, style.Render(label))
		}
	}

	left := brand
	if len(tabs) > 0 {
		left = lipgloss.JoinHorizontal(lipgloss.Center, brand, "  ", strings.Join(tabs, ""))
	}

	right := ""
	if h.User != "" {
		right = h.theme.HeaderUser.Render("@" + h.User)
	}

	inner := width - 2
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = inner - lipgloss.Width(left)
		if gap < 0 {
			left = brand
			gap = inner - lipgloss.Width(left)
		}
		if gap < 0 {
			gap = 0
		}
	}

	return h.theme.Header.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}
