// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/logging"
	"github.com/jeranaias/instalite-tui/internal/router"
	"github.com/jeranaias/instalite-tui/internal/session"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
	"github.com/jeranaias/instalite-tui/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Deps is what every screen needs from the app.
type Deps struct {
	API      *api.Client
	Store    session.Store
	KV       session.KV
	Theme    *styles.Theme
	Markdown *components.Markdown
	Log      logging.Logger
	// Timeout bounds each backend call.
	Timeout time.Duration
	// SearchDebounce delays search requests after the last keystroke.
	SearchDebounce time.Duration
}

// User returns the stored session identity, or "".
func (d *Deps) User() string {
	tok, ok := d.Store.Get()
	if !ok {
		return ""
	}
	return tok.String()
}

func (d *Deps) context() (context.Context, context.CancelFunc) {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = api.DefaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (d *Deps) logger() logging.Logger {
	if d.Log == nil {
		return logging.Nop()
	}
	return d.Log
}

// =============================================================================
// SCREEN
// =============================================================================

// Screen is one view of the client.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
	// Title names the screen in the status bar.
	Title() string
	Hints() []components.KeyHint
	// Capturing reports whether a text field has focus, so the app must not
	// treat printable keys as shortcuts.
	Capturing() bool
	// Loading reports whether a backend call is in flight.
	Loading() bool
}

// Options carries per-navigation state into New.
type Options struct {
	// Expired marks a login screen reached through an idle logout.
	Expired bool
	// IdleTimeout is shown in the expiry notice.
	IdleTimeout time.Duration
}

// New builds the screen for a resolved location.
func New(loc router.Location, d *Deps, opts Options) Screen {
	switch loc.Screen() {
	case router.ScreenRegister:
		return NewRegister(d)
	case router.ScreenHome:
		return NewHome(d)
	case router.ScreenPost:
		return NewPostDetail(d, api.ID(loc.Param("id")))
	case router.ScreenCreatePost:
		return NewCreatePost(d)
	case router.ScreenProfile:
		return NewProfile(d)
	case router.ScreenEditProfile:
		return NewProfileForm(d, false)
	case router.ScreenCreateProfile:
		return NewProfileForm(d, true)
	case router.ScreenUser:
		return NewPublicProfile(d, loc.Param("username"))
	case router.ScreenSearch:
		return NewSearch(d)
	default:
		l := NewLogin(d)
		if opts.Expired {
			l.SetExpired(opts.IdleTimeout)
		}
		return l
	}
}

// =============================================================================
// MESSAGES
// =============================================================================

// NavigateMsg asks the app to go to Path through the route guard.
type NavigateMsg struct {
	Path string
}

// LoggedInMsg reports that a token was just stored for User.
type LoggedInMsg struct {
	User string
}

// LogoutMsg asks the app to end the session.
type LogoutMsg struct{}

// ToastMsg asks the app to show a notification.
type ToastMsg struct {
	Kind components.ToastKind
	Text string
}

// Navigate returns a command that navigates to path.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// Logout returns a command that ends the session.
func Logout() tea.Cmd {
	return func() tea.Msg { return LogoutMsg{} }
}

// Toast returns a command that shows text.
func Toast(kind components.ToastKind, text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Kind: kind, Text: text} }
}

// ErrorToast returns a command that shows the user-facing text of err.
func ErrorToast(err error, fallback string) tea.Cmd {
	return Toast(components.ToastKindError, api.Message(err, fallback))
}

// =============================================================================
// HELPERS
// =============================================================================

var screenSeq atomic.Uint64

// base carries what every screen shares.
type base struct {
	id      uint64
	deps    *Deps
	width   int
	height  int
	loading bool
}

func newBase(d *Deps) base {
	return base{id: screenSeq.Add(1), deps: d, width: 80, height: 24}
}

func (b *base) SetSize(width, height int) {
	b.width = width
	b.height = height
}

func (b *base) Loading() bool { return b.loading }

// contentWidth is the usable body width.
func (b *base) contentWidth() int {
	w := b.width - 2
	if w > 96 {
		w = 96
	}
	if w < 20 {
		w = 20
	}
	return w
}

// result tags a backend reply with the screen that asked for it.
type result[T any] struct {
	screen uint64
	kind   string
	value  T
	err    error
}

// call runs fn in a command and delivers a result tagged with kind.
func call[T any](b *base, kind string, fn func(ctx context.Context) (T, error)) tea.Cmd {
	id, d := b.id, b.deps
	return func() tea.Msg {
		ctx, cancel := d.context()
		defer cancel()
		v, err := fn(ctx)
		if err != nil {
			d.logger().Warn(ctx, "backend call failed", "call", kind, "error", err)
		}
		return result[T]{screen: id, kind: kind, value: v, err: err}
	}
}

// mine reports whether r belongs to this screen instance.
func (b *base) mine(screen uint64) bool {
	return screen == b.id
}
