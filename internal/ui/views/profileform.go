// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"regexp"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/router"
	"github.com/jeranaias/instalite-tui/internal/session"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
)

// =============================================================================
// USERNAME RULES
// =============================================================================

var (
	usernameChars   = regexp.MustCompile(`^[a-z0-9._]*$`)
	usernameDotted  = regexp.MustCompile(`^[a-z0-9_]+(\.[a-z0-9_]+)*$`)
	checkUsernameAt = 3
)

// NormalizeUsername lowercases s. A Caser keeps state, so each call gets
// its own.
func NormalizeUsername(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// ValidUsernameChars reports whether s uses only a-z, 0-9, dot and
// underscore.
func ValidUsernameChars(s string) bool {
	return usernameChars.MatchString(s)
}

// ValidNewUsername additionally rejects leading, trailing and doubled dots.
func ValidNewUsername(s string) bool {
	return usernameDotted.MatchString(s)
}

// Availability is the result of a username check.
type Availability int

const (
	AvailabilityUnknown Availability = iota
	AvailabilityAvailable
	AvailabilityTaken
	AvailabilityInvalid
)

// =============================================================================
// PROFILE FORM
// =============================================================================

// IdentityChangedMsg reports that the stored token was replaced because the
// username changed.
type IdentityChangedMsg struct {
	User string
}

// ProfileForm edits the signed-in user's profile. In create mode it is the
// first stop after registering.
type ProfileForm struct {
	base
	create   bool
	form     form
	email    string
	original string
	photo    string
	avail    Availability
	checkSeq int
	fetched  bool
}

const (
	callProfileFetch  = "profile-edit"
	callProfileUpdate = "profile-update"
)

const (
	fieldUsername = iota
	fieldFullname
	fieldCareer
	fieldBio
	fieldPhoto
)

// usernameCheckMsg fires after typing pauses.
type usernameCheckMsg struct {
	screen uint64
	seq    int
}

// availabilityMsg carries a check result for value.
type availabilityMsg struct {
	screen uint64
	value  string
	free   bool
	err    error
}

// NewProfileForm creates the edit (create=false) or create profile screen.
func NewProfileForm(d *Deps, create bool) *ProfileForm {
	return &ProfileForm{
		base:   newBase(d),
		create: create,
		form: newForm(
			newInput("Username", "lowercase letters, numbers, . and _", 30),
			newInput("Full name", "", 100),
			newInput("Career", "", 100),
			newArea("Bio", "Tell people about yourself (markdown works)", 500),
			newInput("Photo file (optional)", "~/Pictures/me.jpg", 4096),
		),
	}
}

func (f *ProfileForm) Init() tea.Cmd {
	f.loading = true
	user, client := f.deps.User(), f.deps.API
	return tea.Batch(
		f.form.focusField(fieldUsername),
		call(&f.base, callProfileFetch, func(ctx context.Context) (*api.Profile, error) {
			return client.EditProfile(ctx, user)
		}),
	)
}

func (f *ProfileForm) Title() string {
	if f.create {
		return "Create profile"
	}
	return "Edit profile"
}

func (f *ProfileForm) Capturing() bool { return true }

func (f *ProfileForm) Hints() []components.KeyHint {
	hints := []components.KeyHint{
		{Key: "ctrl+s", Help: "save"},
		{Key: "tab", Help: "next field"},
	}
	if !f.create {
		hints = append(hints, components.KeyHint{Key: "esc", Help: "cancel"})
	}
	return hints
}

func (f *ProfileForm) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case result[*api.Profile]:
		if !f.mine(msg.screen) || msg.kind != callProfileFetch {
			return f, nil
		}
		f.loading = false
		if msg.err != nil {
			return f, ErrorToast(msg.err, "Failed to fetch user data.")
		}
		f.fill(msg.value)
		return f, nil

	case result[*api.UpdateResult]:
		if !f.mine(msg.screen) {
			return f, nil
		}
		f.loading = false
		if msg.err != nil {
			return f, ErrorToast(msg.err, "Failed to update profile. Please try again.")
		}
		return f, f.saved(msg.value)

	case usernameCheckMsg:
		if !f.mine(msg.screen) || msg.seq != f.checkSeq {
			return f, nil
		}
		return f, f.checkAvailability()

	case availabilityMsg:
		if !f.mine(msg.screen) || msg.value != f.username() {
			return f, nil
		}
		switch {
		case msg.err != nil:
			f.avail = AvailabilityUnknown
		case msg.free:
			f.avail = AvailabilityAvailable
		default:
			f.avail = AvailabilityTaken
		}
		f.annotateUsername()
		return f, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if !f.create {
				return f, Navigate(router.PathProfile)
			}
			return f, nil
		case "ctrl+s":
			return f, f.submit()
		case "enter":
			if f.form.focused().area == nil {
				if f.form.onLast() {
					return f, f.submit()
				}
				return f, f.form.focusField(f.form.focus + 1)
			}
		}
		if f.form.focus == fieldUsername {
			return f, f.updateUsername(msg)
		}
	}
	return f, f.form.Update(msg)
}

func (f *ProfileForm) username() string {
	return f.form.fields[fieldUsername].value()
}

func (f *ProfileForm) fill(p *api.Profile) {
	f.fetched = true
	f.email = p.Email
	f.original = p.Username
	f.photo = p.Photo
	f.form.fields[fieldUsername].setValue(p.Username)
	f.form.fields[fieldFullname].setValue(p.Fullname)
	f.form.fields[fieldCareer].setValue(p.Career)
	f.form.fields[fieldBio].setValue(p.Bio)
	f.form.fields[fieldPhoto].note = ""
	if p.Photo != "" {
		f.form.fields[fieldPhoto].note = "current: " + f.deps.API.UserPhotoURL(p.Photo)
	}
}

// updateUsername feeds a key to the username field, lowercases the result
// and schedules an availability check. Keys that would add a disallowed
// character are refused.
func (f *ProfileForm) updateUsername(msg tea.KeyMsg) tea.Cmd {
	fl := f.form.fields[fieldUsername]
	before := fl.value()
	cmd := f.form.Update(msg)

	value := NormalizeUsername(fl.value())
	if !ValidUsernameChars(value) {
		fl.setValue(before)
		fl.errMsg = "Username can only contain lowercase letters, numbers, dots, and underscores."
		return cmd
	}
	fl.errMsg = ""
	if value != fl.value() {
		fl.setValue(value)
	}
	if value == before {
		return cmd
	}

	f.avail = AvailabilityUnknown
	if f.create && value != "" && !ValidNewUsername(value) {
		f.avail = AvailabilityInvalid
	}
	f.annotateUsername()
	if f.avail == AvailabilityInvalid || len(value) < checkUsernameAt || value == f.original {
		return cmd
	}

	f.checkSeq++
	seq, id := f.checkSeq, f.id
	return tea.Batch(cmd, tea.Tick(f.debounce(), func(time.Time) tea.Msg {
		return usernameCheckMsg{screen: id, seq: seq}
	}))
}

func (f *ProfileForm) debounce() time.Duration {
	if f.deps.SearchDebounce > 0 {
		return f.deps.SearchDebounce
	}
	return DefaultSearchDebounce
}

func (f *ProfileForm) checkAvailability() tea.Cmd {
	value, id := f.username(), f.id
	client, d := f.deps.API, f.deps
	return func() tea.Msg {
		ctx, cancel := d.context()
		defer cancel()
		free, err := client.CheckUsername(ctx, value)
		return availabilityMsg{screen: id, value: value, free: free, err: err}
	}
}

func (f *ProfileForm) annotateUsername() {
	fl := f.form.fields[fieldUsername]
	switch f.avail {
	case AvailabilityAvailable:
		fl.note = "Username is available."
	case AvailabilityTaken:
		fl.note = "Username is taken."
	case AvailabilityInvalid:
		fl.note = "Dots must sit between letters, numbers or underscores."
	default:
		fl.note = ""
	}
}

func (f *ProfileForm) submit() tea.Cmd {
	if f.loading {
		return nil
	}
	username := f.username()
	fl := f.form.fields[fieldUsername]
	switch {
	case username == "":
		fl.errMsg = "Username is required."
		return nil
	case f.create && !ValidNewUsername(username):
		fl.errMsg = "That username is not valid."
		return nil
	case f.avail == AvailabilityTaken && username != f.original:
		fl.errMsg = "Username is taken."
		return nil
	}
	fl.errMsg = ""

	upd := api.ProfileUpdate{
		Username:  username,
		Fullname:  strings.TrimSpace(f.form.fields[fieldFullname].value()),
		Career:    strings.TrimSpace(f.form.fields[fieldCareer].value()),
		Bio:       strings.TrimSpace(f.form.fields[fieldBio].value()),
		PhotoPath: expandPath(f.form.fields[fieldPhoto].value()),
	}
	f.loading = true
	user, client := f.deps.User(), f.deps.API
	return call(&f.base, callProfileUpdate, func(ctx context.Context) (*api.UpdateResult, error) {
		return client.UpdateProfile(ctx, user, upd)
	})
}

// saved rotates the token when the backend returns a new identity.
func (f *ProfileForm) saved(res *api.UpdateResult) tea.Cmd {
	cmds := []tea.Cmd{Toast(components.ToastKindSuccess, "Your profile has been updated successfully.")}
	if res.LoggedUser != "" && res.LoggedUser != f.deps.User() {
		if err := f.deps.Store.Set(session.Token(res.LoggedUser)); err != nil {
			f.deps.logger().Error(context.Background(), "rotate session token", "error", err)
			return ErrorToast(err, "Profile saved, but the new session could not be stored.")
		}
		user := res.LoggedUser
		cmds = append(cmds, func() tea.Msg { return IdentityChangedMsg{User: user} })
	}
	cmds = append(cmds, Navigate(router.PathProfile))
	return tea.Sequence(cmds...)
}

func (f *ProfileForm) SetSize(width, height int) {
	f.base.SetSize(width, height)
	f.form.setWidth(f.contentWidth())
}

func (f *ProfileForm) View() string {
	th := f.deps.Theme
	title := "Edit profile"
	if f.create {
		title = "Complete your profile"
	}
	parts := []string{th.Title.Render(title)}
	if f.email != "" {
		parts = append(parts, th.Muted.Render(f.email))
	}
	if f.loading && !f.fetched {
		parts = append(parts, th.Muted.Render("Loading..."))
	}
	parts = append(parts, f.form.View(th, f.contentWidth()), "", button(th, "Save", f.loading && f.fetched))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
