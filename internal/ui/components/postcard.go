// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/ui/styles"
	"github.com/jeranaias/instalite-tui/internal/util"
)

// =============================================================================
// POST CARD
// =============================================================================

// PostCard renders one post in a list. Images cannot be drawn in a
// terminal, so the card shows the image URL instead.
type PostCard struct {
	Post     api.Post
	ImageURL string
	Focused  bool
	// Compact drops the caption body to a single line.
	Compact bool
}

// View renders the card at width.
func (c PostCard) View(theme *styles.Theme, md *Markdown, width int) string {
	inner := width - 4
	if inner < 16 {
		inner = 16
	}

	var lines []string

	head := theme.Username.Render("@" + c.Post.Author.Username)
	if c.Post.CreatedAt != nil {
		head += theme.Muted.Render("  " + humanizeAge(time.Since(*c.Post.CreatedAt)))
	}
	if c.Post.TotalLikes > 0 || c.Post.TotalComments > 0 {
		head += theme.Muted.Render("  " + strconv.Itoa(c.Post.TotalLikes) + " likes  " +
			strconv.Itoa(c.Post.TotalComments) + " comments")
	}
	lines = append(lines, head)

	if c.ImageURL != "" {
		lines = append(lines, theme.LinkStyle.Render(util.TruncateWidth(c.ImageURL, inner)))
	}

	if c.Compact {
		lines = append(lines, theme.Caption.Render(util.TruncateWidth(util.FirstLine(c.Post.Caption), inner)))
	} else if caption := md.Render(c.Post.Caption, inner); caption != "" {
		lines = append(lines, caption)
	}

	style := theme.Card
	if c.Focused {
		style = theme.CardFocused
	}
	return style.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// RenderPostList renders cards with the focused index highlighted.
func RenderPostList(theme *styles.Theme, md *Markdown, posts []api.Post, focused, width int, imageURL func(string) string) string {
	if len(posts) == 0 {
		return theme.Muted.Render("No posts yet.")
	}
	cards := make([]string, 0, len(posts))
	for i, p := range posts {
		card := PostCard{Post: p, Focused: i == focused, Compact: true}
		if imageURL != nil {
			card.ImageURL = imageURL(p.Content)
		}
		cards = append(cards, card.View(theme, md, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

// humanizeAge renders d as "just now", "5m", "3h" or "2d".
func humanizeAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return strconv.Itoa(int(d/time.Minute)) + "m"
	case d < 24*time.Hour:
		return strconv.Itoa(int(d/time.Hour)) + "h"
	default:
		return strconv.Itoa(int(d/(24*time.Hour))) + "d"
	}
}
