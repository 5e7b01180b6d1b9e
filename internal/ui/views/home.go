// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/router"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
)

// =============================================================================
// HOME
// =============================================================================

// Home is the feed.
type Home struct {
	base
	spinner spinner.Model
	list    postList
	message string
	loaded  bool
}

const callFeed = "feed"

// NewHome creates the feed screen.
func NewHome(d *Deps) *Home {
	return &Home{base: newBase(d), spinner: newSpinner()}
}

func newSpinner() spinner.Model {
	return spinner.New(spinner.WithSpinner(spinner.Dot))
}

func itoa(n int) string { return strconv.Itoa(n) }

func (h *Home) Init() tea.Cmd {
	return h.load()
}

func (h *Home) load() tea.Cmd {
	h.loading = true
	user := h.deps.User()
	client := h.deps.API
	return tea.Batch(h.spinner.Tick, call(&h.base, callFeed, func(ctx context.Context) (*api.Feed, error) {
		return client.Home(ctx, user)
	}))
}

func (h *Home) Title() string { return "Home" }

func (h *Home) Capturing() bool { return false }

func (h *Home) Hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "enter", Help: "open"},
		{Key: "up/down", Help: "select"},
		{Key: "r", Help: "refresh"},
		{Key: "u", Help: "author"},
	}
}

func (h *Home) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !h.loading {
			return h, nil
		}
		var cmd tea.Cmd
		h.spinner, cmd = h.spinner.Update(msg)
		return h, cmd

	case result[*api.Feed]:
		if !h.mine(msg.screen) {
			return h, nil
		}
		h.loading = false
		h.loaded = true
		if msg.err != nil {
			return h, ErrorToast(msg.err, "Failed to load the feed.")
		}
		h.message = msg.value.Message
		h.list.set(msg.value.Posts)
		return h, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			if h.loading {
				return h, nil
			}
			return h, h.load()
		case "enter":
			if p, ok := h.list.current(); ok {
				return h, Navigate(router.PostPath(p.ID.String()))
			}
			return h, nil
		case "u":
			if p, ok := h.list.current(); ok && p.Author.Username != "" {
				return h, Navigate(authorPath(h.deps.User(), p.Author.Username))
			}
			return h, nil
		}
	}
	h.list.update(msg)
	return h, nil
}

// authorPath sends the signed-in user to their own profile.
func authorPath(self, author string) string {
	if author == self {
		return router.PathProfile
	}
	return router.UserPath(author)
}

func (h *Home) View() string {
	th := h.deps.Theme
	w := h.contentWidth()

	head := th.Title.Render("Home")
	if h.message != "" {
		head = lipgloss.JoinVertical(lipgloss.Left, head, th.Subtitle.Render(h.message))
	}
	if h.loading && !h.loaded {
		return lipgloss.JoinVertical(lipgloss.Left, head, h.spinner.View()+" Loading feed...")
	}
	body := h.list.view(th, h.deps.Markdown, w, h.height-lipgloss.Height(head)-1, h.deps.API.PostImageURL)
	return lipgloss.JoinVertical(lipgloss.Left, head, body)
}
