// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/router"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
)

// =============================================================================
// CREATE POST
// =============================================================================

// CreatePost uploads a photo with a caption. Both are required.
type CreatePost struct {
	base
	form form
}

const callCreatePost = "create-post"

// NewCreatePost creates the upload screen.
func NewCreatePost(d *Deps) *CreatePost {
	return &CreatePost{
		base: newBase(d),
		form: newForm(
			newInput("Image file", "~/Pictures/sunset.jpg", 4096),
			newArea("Caption", "Write a caption... (markdown works)", 2200),
		),
	}
}

func (c *CreatePost) Init() tea.Cmd { return c.form.focusField(0) }

func (c *CreatePost) Title() string { return "New post" }

func (c *CreatePost) Capturing() bool { return true }

func (c *CreatePost) Hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "ctrl+s", Help: "share"},
		{Key: "tab", Help: "next field"},
		{Key: "esc", Help: "cancel"},
	}
}

func (c *CreatePost) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return c, Navigate(router.PathHome)
		case "ctrl+s":
			return c, c.submit()
		case "enter":
			if c.form.focus == 0 {
				return c, c.form.focusField(1)
			}
		}

	case result[string]:
		if !c.mine(msg.screen) || msg.kind != callCreatePost {
			return c, nil
		}
		c.loading = false
		if msg.err != nil {
			return c, ErrorToast(msg.err, "Failed to create post. Please try again.")
		}
		text := msg.value
		if text == "" {
			text = "Post created."
		}
		return c, tea.Batch(Toast(components.ToastKindSuccess, text), Navigate(router.PathHome))
	}
	return c, c.form.Update(msg)
}

// expandPath resolves a leading ~ to the home directory.
func expandPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func (c *CreatePost) submit() tea.Cmd {
	if c.loading {
		return nil
	}
	path := expandPath(c.form.fields[0].value())
	caption := strings.TrimSpace(c.form.fields[1].value())

	c.form.fields[0].errMsg = ""
	c.form.fields[1].errMsg = ""
	if path == "" {
		c.form.fields[0].errMsg = "Choose an image to share."
	} else if info, err := os.Stat(path); err != nil || info.IsDir() {
		c.form.fields[0].errMsg = "No image file at that path."
	}
	if caption == "" {
		c.form.fields[1].errMsg = "A caption is required."
	}
	if c.form.fields[0].errMsg != "" || c.form.fields[1].errMsg != "" {
		return nil
	}

	c.loading = true
	post := api.NewPost{Caption: caption, ImagePath: path, LoggedUser: c.deps.User()}
	client := c.deps.API
	return call(&c.base, callCreatePost, func(ctx context.Context) (string, error) {
		return client.CreatePost(ctx, post)
	})
}

func (c *CreatePost) SetSize(width, height int) {
	c.base.SetSize(width, height)
	c.form.setWidth(c.contentWidth())
}

func (c *CreatePost) View() string {
	th := c.deps.Theme
	return lipgloss.JoinVertical(lipgloss.Left,
		th.Title.Render("Create a new post"),
		c.form.View(th, c.contentWidth()),
		"",
		button(th, "Share", c.loading),
	)
}
