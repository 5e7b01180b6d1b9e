// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
	"github.com/jeranaias/instalite-tui/internal/ui/styles"
)

// cardHeight is the rendered height of a compact post card.
const cardHeight = 5

// postList is a scrollable list of compact post cards.
type postList struct {
	posts    []api.Post
	selected int
	offset   int
}

func (p *postList) set(posts []api.Post) {
	p.posts = posts
	if p.selected >= len(posts) {
		p.selected = max(0, len(posts)-1)
	}
	p.offset = min(p.offset, p.selected)
}

func (p *postList) current() (api.Post, bool) {
	if len(p.posts) == 0 {
		return api.Post{}, false
	}
	return p.posts[p.selected], true
}

// update handles movement keys and reports whether msg was consumed.
func (p *postList) update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			p.move(-1)
		case "down", "j":
			p.move(1)
		case "home", "g":
			p.selected = 0
		case "end", "G":
			p.selected = max(0, len(p.posts)-1)
		default:
			return false
		}
		return true
	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp:
			p.move(-1)
		case tea.MouseWheelDown:
			p.move(1)
		default:
			return false
		}
		return true
	}
	return false
}

func (p *postList) move(delta int) {
	if len(p.posts) == 0 {
		return
	}
	p.selected = min(max(p.selected+delta, 0), len(p.posts)-1)
}

// view renders the cards that fit in height, keeping the selection visible.
func (p *postList) view(theme *styles.Theme, md *components.Markdown, width, height int, imageURL func(string) string) string {
	if len(p.posts) == 0 {
		return theme.Muted.Render("No posts yet.")
	}
	visible := max(1, height/cardHeight)
	if p.selected < p.offset {
		p.offset = p.selected
	}
	if p.selected >= p.offset+visible {
		p.offset = p.selected - visible + 1
	}
	end := min(len(p.posts), p.offset+visible)

	out := components.RenderPostList(theme, md, p.posts[p.offset:end], p.selected-p.offset, width, imageURL)
	if len(p.posts) > visible {
		out = lipgloss.JoinVertical(lipgloss.Left, out,
			theme.Muted.Render(itoa(p.selected+1)+"/"+itoa(len(p.posts))))
	}
	return out
}
