// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/idle"
	"github.com/jeranaias/instalite-tui/internal/logging"
	"github.com/jeranaias/instalite-tui/internal/router"
	"github.com/jeranaias/instalite-tui/internal/session"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
	"github.com/jeranaias/instalite-tui/internal/ui/views"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the root model.
type Options struct {
	Deps  *views.Deps
	Guard *router.Guard

	// IdleTimeout is the inactivity period of a login.
	IdleTimeout time.Duration
	// WarnBefore shows the overlay this long before expiry. Zero disables.
	WarnBefore time.Duration
	// Scheduler drives idle timers. Nil uses the real clock.
	Scheduler idle.Scheduler

	// StartPath is the first navigation. Defaults to "/".
	StartPath string
	// ExpiryNotice shows the idle logout banner on the login screen.
	ExpiryNotice bool
}

// =============================================================================
// MESSAGES
// =============================================================================

// storeChangedMsg reports a change to the session storage made outside
// this process.
type storeChangedMsg struct{}

// idleNavigateMsg carries the monitor's navigation request to the UI loop.
type idleNavigateMsg struct {
	path    string
	monitor *idle.Monitor
}

// idleTickMsg refreshes the idle countdown.
type idleTickMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root model.
type Model struct {
	deps  *views.Deps
	guard *router.Guard
	log   logging.Logger
	opts  Options

	screen   views.Screen
	location router.Location

	// send posts a message from outside the UI loop (idle timers).
	sendMu sync.Mutex
	send   func(tea.Msg)

	monitor *idle.Monitor

	header  *components.Header
	status  *components.StatusBar
	toasts  *components.ToastManager
	overlay components.ExpiryOverlay
	ticking bool

	watchCancel context.CancelFunc
	changes     <-chan struct{}

	width  int
	height int
}

// New creates the root model. Call SetSender before the program runs so
// idle expiry can reach the UI loop.
func New(opts Options) *Model {
	if opts.StartPath == "" {
		opts.StartPath = router.PathRoot
	}
	log := opts.Deps.Log
	if log == nil {
		log = logging.Nop()
	}
	m := &Model{
		deps:   opts.Deps,
		guard:  opts.Guard,
		log:    log.With("component", "app"),
		opts:   opts,
		header: components.NewHeader(opts.Deps.Theme),
		status: components.NewStatusBar(opts.Deps.Theme),
		toasts: components.NewToastManager(),
		width:  80,
		height: 24,
	}
	m.status.IdleWarn = opts.WarnBefore
	return m
}

// SetSender sets the function used to post idle events, normally
// (*tea.Program).Send.
func (m *Model) SetSender(send func(tea.Msg)) {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()
	m.send = send
}

func (m *Model) post(msg tea.Msg) {
	m.sendMu.Lock()
	send := m.send
	m.sendMu.Unlock()
	if send != nil {
		send(msg)
	}
}

// Screen returns the active screen.
func (m *Model) Screen() views.Screen { return m.screen }

// Location returns where the guard last landed.
func (m *Model) Location() router.Location { return m.location }

// Monitor returns the idle monitor of the current login, or nil.
func (m *Model) Monitor() *idle.Monitor { return m.monitor }

// Init starts the first navigation, the idle monitor for a restored
// session and the storage watcher.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.navigate(m.opts.StartPath, views.Options{}), m.idleTick()}
	if session.LoggedIn(m.deps.Store) {
		m.startMonitor()
	}
	cmds = append(cmds, m.watchStore())
	return tea.Batch(cmds...)
}

// Close stops the idle monitor and the storage watcher.
func (m *Model) Close() {
	m.stopMonitor()
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Every qualifying input resets the idle deadline, whatever it does next.
	if ev, ok := idle.EventFromMsg(msg); ok && m.monitor != nil {
		m.monitor.Touch(ev)
		if m.overlay.IsVisible() {
			m.overlay.Hide()
			// The key or click only dismisses the warning.
			return m, nil
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case views.NavigateMsg:
		return m, m.navigate(msg.Path, views.Options{})

	case views.LoggedInMsg:
		m.header.User = msg.User
		m.startMonitor()
		m.log.Info(context.Background(), "signed in")
		return m, nil

	case views.IdentityChangedMsg:
		m.header.User = msg.User
		return m, nil

	case views.LogoutMsg:
		return m, m.logout()

	case views.ToastMsg:
		return m, m.addToast(msg.Kind, msg.Text)

	case components.ToastTickMsg:
		if len(m.toasts.Tick(msg.Time)) == 0 {
			m.ticking = false
			return m, nil
		}
		return m, components.ToastTickCmd()

	case idleNavigateMsg:
		if msg.monitor != m.monitor {
			return m, nil
		}
		return m, m.navigate(msg.path, views.Options{Expired: m.opts.ExpiryNotice, IdleTimeout: m.opts.IdleTimeout})

	case idle.ExpiredMsg:
		if m.monitor == nil || m.monitor.State() != idle.Expired {
			return m, nil
		}
		m.overlay.Hide()
		m.monitor = nil
		m.header.User = ""
		return m, nil

	case idle.WarningMsg:
		if m.monitor != nil && m.monitor.State() == idle.Active {
			m.overlay.SetSize(m.width, m.height)
			m.overlay.Show(msg.Remaining)
		}
		return m, nil

	case idleTickMsg:
		if m.monitor != nil {
			m.overlay.UpdateTime(m.monitor.Remaining())
		}
		return m, m.idleTick()

	case storeChangedMsg:
		return m, tea.Batch(m.syncWithStore(), m.waitForChange())
	}

	return m, m.forward(msg)
}

func (m *Model) forward(msg tea.Msg) tea.Cmd {
	if m.screen == nil {
		return nil
	}
	var cmd tea.Cmd
	m.screen, cmd = m.screen.Update(msg)
	return cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.Close()
		return m, tea.Quit
	case "q":
		if m.screen != nil && !m.screen.Capturing() {
			m.Close()
			return m, tea.Quit
		}
	}
	if item, ok := components.NavItemForKey(msg.String()); ok && session.LoggedIn(m.deps.Store) {
		return m, m.navigate(item.Path, views.Options{})
	}
	return m, m.forward(msg)
}

// navigate resolves path through the guard and shows the resulting screen.
// The store is read on every call.
func (m *Model) navigate(path string, opts views.Options) tea.Cmd {
	dec := m.guard.Resolve(path)
	if dec.Denied {
		m.log.Info(context.Background(), "protected route denied", "path", dec.Requested)
	}
	m.location = dec.Location
	m.header.Active = dec.Location.Screen()
	m.header.User = m.deps.User()

	m.screen = views.New(dec.Location, m.deps, opts)
	m.screen.SetSize(m.width, m.bodyHeight())
	return m.screen.Init()
}

func (m *Model) logout() tea.Cmd {
	client, log := m.deps.API, m.log
	timeout := m.deps.Timeout
	if timeout <= 0 {
		timeout = api.DefaultTimeout
	}
	notify := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := client.Logout(ctx); err != nil {
			log.Warn(ctx, "backend logout failed", "error", err)
		}
		return nil
	}

	m.stopMonitor()
	if err := m.deps.Store.Clear(); err != nil {
		m.log.Error(context.Background(), "clear session", "error", err)
		return m.addToast(components.ToastKindError, "Could not clear your session.")
	}
	m.log.Info(context.Background(), "signed out")
	return tea.Batch(
		notify,
		m.addToast(components.ToastKindStatus, "Signed out."),
		m.navigate(router.PathLogin, views.Options{}),
	)
}

func (m *Model) addToast(kind components.ToastKind, text string) tea.Cmd {
	switch kind {
	case components.ToastKindError:
		m.toasts.AddError(text)
	case components.ToastKindWarning:
		m.toasts.AddWarning(text)
	case components.ToastKindSuccess:
		m.toasts.AddSuccess(text)
	default:
		m.toasts.AddStatus(text)
	}
	if m.ticking {
		return nil
	}
	m.ticking = true
	return components.ToastTickCmd()
}

// =============================================================================
// IDLE MONITOR
// =============================================================================

// startMonitor replaces any running monitor with a fresh one. Monitors are
// single use, so every login gets its own.
func (m *Model) startMonitor() {
	m.stopMonitor()

	var mon *idle.Monitor
	mon, err := idle.New(idle.Config{
		Timeout:    m.opts.IdleTimeout,
		WarnBefore: m.opts.WarnBefore,
		Store:      m.deps.Store,
		Navigator: idle.NavigatorFunc(func(path string) {
			m.post(idleNavigateMsg{path: path, monitor: mon})
		}),
		LoginPath: router.PathLogin,
		Scheduler: m.opts.Scheduler,
		OnExpire: func() {
			m.post(idle.ExpiredMsg{At: time.Now()})
		},
		OnWarn: func(remaining time.Duration) {
			m.post(idle.WarningMsg{Remaining: remaining})
		},
		Logger: m.log,
	})
	if err != nil {
		m.log.Error(context.Background(), "create idle monitor", "error", err)
		return
	}
	if err := mon.Start(); err != nil {
		m.log.Error(context.Background(), "start idle monitor", "error", err)
		return
	}
	m.monitor = mon
}

func (m *Model) stopMonitor() {
	if m.monitor != nil {
		m.monitor.Stop()
		m.monitor = nil
	}
	m.overlay.Hide()
}

func (m *Model) idleTick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return idleTickMsg{} })
}

// =============================================================================
// STORE WATCHING
// =============================================================================

// watchStore starts watching the storage when the backend supports it.
func (m *Model) watchStore() tea.Cmd {
	w, ok := m.deps.KV.(session.Watcher)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := w.Watch(ctx)
	if err != nil {
		cancel()
		m.log.Warn(ctx, "watch session storage", "error", err)
		return nil
	}
	m.watchCancel = cancel
	m.changes = ch
	return m.waitForChange()
}

func (m *Model) waitForChange() tea.Cmd {
	ch := m.changes
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

// syncWithStore reacts to another process signing in or out.
func (m *Model) syncWithStore() tea.Cmd {
	if m.monitor != nil && m.monitor.State() == idle.Expired {
		// The expiry messages are already on their way.
		return nil
	}
	loggedIn := session.LoggedIn(m.deps.Store)
	switch {
	case loggedIn && m.monitor == nil:
		m.startMonitor()
	case !loggedIn && m.monitor != nil:
		m.stopMonitor()
	}
	m.header.User = m.deps.User()

	if m.location.Route != nil && !m.guard.Allowed(m.location.Route) {
		return m.navigate(m.location.Path, views.Options{})
	}
	return nil
}

// =============================================================================
// VIEW
// =============================================================================

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.deps.Theme.SetSize(width, height)
	m.header.SetWidth(width)
	m.status.SetWidth(width)
	m.overlay.SetSize(width, height)
	if m.screen != nil {
		m.screen.SetSize(width, m.bodyHeight())
	}
}

func (m *Model) bodyHeight() int {
	return max(m.height-lipgloss.Height(m.header.View())-1, 3)
}

// View renders the current state.
func (m *Model) View() string {
	if m.overlay.IsVisible() {
		return m.overlay.View()
	}
	if m.screen == nil {
		return ""
	}

	m.status.Message = m.screen.Title()
	m.status.Hints = append(m.screen.Hints(), components.KeyHint{Key: "ctrl+c", Help: "quit"})
	m.status.Status = components.StatusReady
	if m.screen.Loading() {
		m.status.Status = components.StatusLoading
	}
	m.status.IdleRemaining = 0
	if m.monitor != nil {
		m.status.IdleRemaining = m.monitor.Remaining()
	}

	header := m.header.View()
	status := m.status.View()
	toasts := components.RenderToastStack(m.toasts.Toasts(), m.width, time.Now())

	bodyH := m.bodyHeight()
	if toasts != "" {
		bodyH = max(bodyH-lipgloss.Height(toasts), 1)
	}
	body := lipgloss.NewStyle().Padding(0, 1).Height(bodyH).MaxHeight(bodyH).Render(m.screen.View())

	parts := []string{header, body}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	parts = append(parts, status)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
