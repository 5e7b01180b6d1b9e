// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/router"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
)

// =============================================================================
// POST DETAIL
// =============================================================================

// PostDetail shows one post with its likes and comments. Every mutation is
// followed by a refetch.
type PostDetail struct {
	base
	postID  api.ID
	spinner spinner.Model
	detail  *api.PostDetail
	comment textinput.Model
	writing bool
	// selected indexes detail.Comments; -1 selects nothing.
	selected int
	confirm  bool
}

const (
	callPostLoad      = "post"
	callToggleLike    = "like"
	callAddComment    = "comment"
	callDeleteComment = "delete-comment"
	callDeletePost    = "delete-post"
)

// NewPostDetail creates the detail screen for id.
func NewPostDetail(d *Deps, id api.ID) *PostDetail {
	in := textinput.New()
	in.Placeholder = "Add a comment..."
	in.CharLimit = 500
	in.Prompt = "> "
	return &PostDetail{base: newBase(d), postID: id, spinner: newSpinner(), comment: in, selected: -1}
}

func (p *PostDetail) Init() tea.Cmd {
	return p.load()
}

// busy marks the screen loading and keeps the spinner moving.
func (p *PostDetail) busy(cmd tea.Cmd) tea.Cmd {
	p.loading = true
	return tea.Batch(p.spinner.Tick, cmd)
}

func (p *PostDetail) load() tea.Cmd {
	id := p.postID
	client := p.deps.API
	return p.busy(call(&p.base, callPostLoad, func(ctx context.Context) (*api.PostDetail, error) {
		return client.Post(ctx, id)
	}))
}

func (p *PostDetail) Title() string { return "Post" }

func (p *PostDetail) Capturing() bool { return p.writing }

func (p *PostDetail) Hints() []components.KeyHint {
	if p.writing {
		return []components.KeyHint{{Key: "enter", Help: "send"}, {Key: "esc", Help: "cancel"}}
	}
	if p.confirm {
		return []components.KeyHint{{Key: "y", Help: "delete post"}, {Key: "n", Help: "keep"}}
	}
	hints := []components.KeyHint{
		{Key: "l", Help: "like"},
		{Key: "c", Help: "comment"},
		{Key: "up/down", Help: "select comment"},
	}
	if p.canDeleteComment() {
		hints = append(hints, components.KeyHint{Key: "d", Help: "delete comment"})
	}
	if p.ownsPost() {
		hints = append(hints, components.KeyHint{Key: "D", Help: "delete post"})
	}
	return append(hints, components.KeyHint{Key: "esc", Help: "back"})
}

func (p *PostDetail) ownsPost() bool {
	return p.detail != nil && p.detail.Post.Author.Username != "" &&
		p.detail.Post.Author.Username == p.deps.User()
}

// canDeleteComment allows the comment's author and the post's author.
func (p *PostDetail) canDeleteComment() bool {
	if p.detail == nil || p.selected < 0 || p.selected >= len(p.detail.Comments) {
		return false
	}
	user := p.deps.User()
	return p.detail.Comments[p.selected].User.Username == user || p.ownsPost()
}

func (p *PostDetail) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.loading {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case result[*api.PostDetail]:
		if !p.mine(msg.screen) {
			return p, nil
		}
		p.loading = false
		if msg.err != nil {
			return p, ErrorToast(msg.err, "An error occurred while fetching post details.")
		}
		p.detail = msg.value
		if p.selected >= len(p.detail.Comments) {
			p.selected = len(p.detail.Comments) - 1
		}
		return p, nil

	case result[bool]:
		if !p.mine(msg.screen) || msg.kind != callToggleLike {
			return p, nil
		}
		p.loading = false
		if msg.err != nil {
			return p, ErrorToast(msg.err, "Could not update your like.")
		}
		return p, p.load()

	case result[*api.Comment]:
		if !p.mine(msg.screen) {
			return p, nil
		}
		p.loading = false
		if msg.err != nil {
			return p, ErrorToast(msg.err, "Failed to create comment.")
		}
		p.comment.SetValue("")
		return p, tea.Batch(Toast(components.ToastKindSuccess, "Comment added."), p.load())

	case result[struct{}]:
		if !p.mine(msg.screen) {
			return p, nil
		}
		p.loading = false
		switch msg.kind {
		case callDeleteComment:
			if msg.err != nil {
				return p, ErrorToast(msg.err, "Failed to delete comment.")
			}
			return p, tea.Batch(Toast(components.ToastKindSuccess, "Comment deleted."), p.load())
		case callDeletePost:
			if msg.err != nil {
				return p, ErrorToast(msg.err, "An error occurred while deleting the post.")
			}
			return p, tea.Batch(Toast(components.ToastKindSuccess, "Post deleted."), Navigate(router.PathHome))
		}
		return p, nil

	case tea.KeyMsg:
		if p.writing {
			return p, p.updateWriting(msg)
		}
		if p.confirm {
			p.confirm = false
			if msg.String() == "y" {
				return p, p.deletePost()
			}
			return p, nil
		}
		return p, p.updateKeys(msg)

	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp:
			p.moveSelection(-1)
		case tea.MouseWheelDown:
			p.moveSelection(1)
		}
	}
	return p, nil
}

func (p *PostDetail) updateWriting(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.writing = false
		p.comment.Blur()
		return nil
	case "enter":
		text := strings.TrimSpace(p.comment.Value())
		if text == "" || p.loading {
			return nil
		}
		p.writing = false
		p.comment.Blur()
		id, user, client := p.postID, p.deps.User(), p.deps.API
		return p.busy(call(&p.base, callAddComment, func(ctx context.Context) (*api.Comment, error) {
			return client.AddComment(ctx, id, text, user)
		}))
	}
	var cmd tea.Cmd
	p.comment, cmd = p.comment.Update(msg)
	return cmd
}

func (p *PostDetail) updateKeys(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "backspace":
		return Navigate(router.PathHome)
	case "r":
		return p.load()
	case "c":
		p.writing = true
		return p.comment.Focus()
	case "l":
		if p.loading || p.detail == nil {
			return nil
		}
		id, user, client := p.postID, p.deps.User(), p.deps.API
		return p.busy(call(&p.base, callToggleLike, func(ctx context.Context) (bool, error) {
			return client.ToggleLike(ctx, id, user)
		}))
	case "up", "k":
		p.moveSelection(-1)
	case "down", "j":
		p.moveSelection(1)
	case "d":
		if !p.canDeleteComment() || p.loading {
			return nil
		}
		cid, client := p.detail.Comments[p.selected].ID, p.deps.API
		return p.busy(call(&p.base, callDeleteComment, func(ctx context.Context) (struct{}, error) {
			return struct{}{}, client.DeleteComment(ctx, cid)
		}))
	case "D":
		if p.ownsPost() {
			p.confirm = true
		}
	case "u":
		if p.detail != nil && p.detail.Post.Author.Username != "" {
			return Navigate(authorPath(p.deps.User(), p.detail.Post.Author.Username))
		}
	}
	return nil
}

func (p *PostDetail) deletePost() tea.Cmd {
	if p.loading {
		return nil
	}
	id, client := p.postID, p.deps.API
	return p.busy(call(&p.base, callDeletePost, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, client.DeletePost(ctx, id)
	}))
}

func (p *PostDetail) moveSelection(delta int) {
	if p.detail == nil || len(p.detail.Comments) == 0 {
		return
	}
	p.selected = min(max(p.selected+delta, 0), len(p.detail.Comments)-1)
}

func (p *PostDetail) SetSize(width, height int) {
	p.base.SetSize(width, height)
	p.comment.Width = p.contentWidth() - 6
}

func (p *PostDetail) View() string {
	th := p.deps.Theme
	w := p.contentWidth()

	if p.detail == nil {
		if p.loading {
			return p.spinner.View() + " Loading post..."
		}
		return th.Muted.Render("Post not available. Press r to retry or esc to go back.")
	}

	post := p.detail.Post
	card := components.PostCard{Post: post, ImageURL: p.deps.API.PostImageURL(post.Content)}

	likes := th.Muted.Render("[ ] " + itoa(p.detail.TotalLikes) + " likes")
	if p.detail.IsLiked {
		likes = th.Liked.Render("[*] " + itoa(p.detail.TotalLikes) + " likes")
	}

	parts := []string{card.View(th, p.deps.Markdown, w), likes, ""}
	if p.confirm {
		parts = append(parts, th.WarningStyle.Render("Delete this post? y/n"), "")
	}

	parts = append(parts, th.Label.Render("Comments ("+itoa(len(p.detail.Comments))+")"))
	if len(p.detail.Comments) == 0 {
		parts = append(parts, th.Muted.Render("No comments yet."))
	}
	for i, c := range p.detail.Comments {
		marker := "  "
		if i == p.selected {
			marker = th.StatusKey.Render("> ")
		}
		parts = append(parts, marker+th.Username.Render(c.User.Username)+" "+th.Body.Render(c.Text))
	}

	if p.writing || p.comment.Value() != "" {
		box := th.Field
		if p.writing {
			box = th.FieldFocused
		}
		parts = append(parts, "", box.Width(w-2).Render(p.comment.View()))
	}
	if p.loading {
		parts = append(parts, p.spinner.View()+" Working...")
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
