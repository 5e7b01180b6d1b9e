// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/router"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
	"github.com/jeranaias/instalite-tui/internal/ui/styles"
)

// =============================================================================
// PROFILE PAGES
// =============================================================================

// profilePage is the shared body of the own and public profile screens.
type profilePage struct {
	base
	spinner spinner.Model
	profile *api.ProfileWithPosts
	list    postList
}

const callProfile = "profile"

func newProfilePage(d *Deps) profilePage {
	return profilePage{base: newBase(d), spinner: newSpinner()}
}

func (p *profilePage) fetch(fn func(ctx context.Context) (*api.ProfileWithPosts, error)) tea.Cmd {
	p.loading = true
	return tea.Batch(p.spinner.Tick, call(&p.base, callProfile, fn))
}

// update handles what both profile screens share. It reports whether msg
// was consumed.
func (p *profilePage) update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.loading {
			return nil, true
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd, true

	case result[*api.ProfileWithPosts]:
		if !p.mine(msg.screen) {
			return nil, true
		}
		p.loading = false
		if msg.err != nil {
			return ErrorToast(msg.err, "Failed to load the profile."), true
		}
		p.profile = msg.value
		p.list.set(msg.value.Posts)
		return nil, true

	case tea.KeyMsg:
		if msg.String() == "enter" {
			if post, ok := p.list.current(); ok {
				return Navigate(router.PostPath(post.ID.String())), true
			}
			return nil, true
		}
	}
	return nil, p.list.update(msg)
}

func (p *profilePage) view(th *styles.Theme) string {
	if p.profile == nil {
		if p.loading {
			return p.spinner.View() + " Loading profile..."
		}
		return th.Muted.Render("Profile not available.")
	}
	u := p.profile.User
	w := p.contentWidth()

	head := []string{th.Title.Render("@" + u.Username)}
	if u.Fullname != "" {
		head = append(head, th.Body.Bold(true).Render(u.Fullname))
	}
	if u.Career != "" {
		head = append(head, th.Subtitle.Render(u.Career))
	}
	if bio := p.deps.Markdown.Render(u.Bio, w); bio != "" {
		head = append(head, bio)
	}
	if u.Photo != "" {
		head = append(head, th.LinkStyle.Render(p.deps.API.UserPhotoURL(u.Photo)))
	}
	head = append(head, th.Muted.Render(itoa(len(p.profile.Posts))+" posts"))
	header := lipgloss.JoinVertical(lipgloss.Left, head...)

	body := p.list.view(th, p.deps.Markdown, w, p.height-lipgloss.Height(header)-2, p.deps.API.PostImageURL)
	return lipgloss.JoinVertical(lipgloss.Left, header, "", body)
}

// =============================================================================
// OWN PROFILE
// =============================================================================

// Profile is the signed-in user's page. It is where logout lives.
type Profile struct {
	profilePage
}

// NewProfile creates the own profile screen.
func NewProfile(d *Deps) *Profile {
	return &Profile{profilePage: newProfilePage(d)}
}

func (p *Profile) Init() tea.Cmd {
	user, client := p.deps.User(), p.deps.API
	return p.fetch(func(ctx context.Context) (*api.ProfileWithPosts, error) {
		return client.OwnProfile(ctx, user)
	})
}

func (p *Profile) Title() string { return "Profile" }

func (p *Profile) Capturing() bool { return false }

func (p *Profile) Hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "enter", Help: "open post"},
		{Key: "e", Help: "edit profile"},
		{Key: "L", Help: "log out"},
	}
}

func (p *Profile) Update(msg tea.Msg) (Screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "e":
			return p, Navigate(router.PathEditProfile)
		case "L":
			return p, Logout()
		case "r":
			return p, p.Init()
		}
	}
	cmd, _ := p.update(msg)
	return p, cmd
}

func (p *Profile) View() string {
	return p.view(p.deps.Theme)
}

// =============================================================================
// PUBLIC PROFILE
// =============================================================================

// PublicProfile shows another user's page.
type PublicProfile struct {
	profilePage
	username string
}

// NewPublicProfile creates the public profile screen for username.
func NewPublicProfile(d *Deps, username string) *PublicProfile {
	return &PublicProfile{profilePage: newProfilePage(d), username: username}
}

func (p *PublicProfile) Init() tea.Cmd {
	username, client := p.username, p.deps.API
	return p.fetch(func(ctx context.Context) (*api.ProfileWithPosts, error) {
		return client.PublicProfile(ctx, username)
	})
}

func (p *PublicProfile) Title() string { return "@" + p.username }

func (p *PublicProfile) Capturing() bool { return false }

func (p *PublicProfile) Hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "enter", Help: "open post"},
		{Key: "esc", Help: "back to search"},
	}
}

func (p *PublicProfile) Update(msg tea.Msg) (Screen, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "backspace":
			return p, Navigate(router.PathSearch)
		case "r":
			return p, p.Init()
		}
	}
	cmd, _ := p.update(msg)
	return p, cmd
}

func (p *PublicProfile) View() string {
	return p.view(p.deps.Theme)
}
