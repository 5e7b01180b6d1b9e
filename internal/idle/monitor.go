// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jeranaias/instalite-tui/internal/logging"
	"github.com/jeranaias/instalite-tui/internal/session"
)

// =============================================================================
// STATE
// =============================================================================

// State is the lifecycle state of a Monitor.
type State int

const (
	// Stopped is the state before Start and after Stop.
	Stopped State = iota
	// Active means a deadline is pending.
	Active
	// Expired means the deadline passed and the session was ended.
	Expired
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Active:
		return "active"
	case Expired:
		return "expired"
	}
	return "unknown"
}

// DefaultLoginPath is where an expired session is sent.
const DefaultLoginPath = "/login"

var (
	// ErrAlreadyStarted is returned by Start on a Monitor that was started
	// before. Monitors are single use.
	ErrAlreadyStarted = errors.New("idle: monitor already started")

	// ErrNoTimeout is returned by New for a non-positive timeout.
	ErrNoTimeout = errors.New("idle: timeout must be positive")
)

// Navigator moves the client to a route.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// =============================================================================
// CONFIG
// =============================================================================

// Config configures a Monitor.
type Config struct {
	// Timeout is the inactivity period before expiry. Required.
	Timeout time.Duration

	// WarnBefore calls OnWarn this long before the deadline. Zero disables.
	WarnBefore time.Duration

	// Store is cleared on expiry. Required.
	Store session.Store

	// Navigator receives LoginPath on expiry. Required.
	Navigator Navigator

	// LoginPath defaults to DefaultLoginPath.
	LoginPath string

	// Scheduler defaults to RealScheduler.
	Scheduler Scheduler

	// OnExpire runs after the store is cleared and navigation requested.
	OnExpire func()

	// OnWarn runs when the warning point is reached.
	OnWarn func(remaining time.Duration)

	Logger logging.Logger
}

// =============================================================================
// MONITOR
// =============================================================================

// Monitor enforces the idle timeout for one login.
//
// Touch, Stop and the timer callbacks may run on different goroutines; all
// state is guarded by mu. Each scheduled callback carries the generation it
// was scheduled for and does nothing if the generation has moved on, so a
// callback that lost the race with Stop or Touch never expires the session.
type Monitor struct {
	mu sync.Mutex

	cfg   Config
	sched Scheduler
	log   logging.Logger

	state    State
	started  bool
	deadline time.Time
	gen      uint64
	expiry   Timer
	warning  Timer
}

// New validates cfg and returns a Monitor in the Stopped state.
func New(cfg Config) (*Monitor, error) {
	if cfg.Timeout <= 0 {
		return nil, ErrNoTimeout
	}
	if cfg.Store == nil {
		return nil, errors.New("idle: nil store")
	}
	if cfg.Navigator == nil {
		return nil, errors.New("idle: nil navigator")
	}
	if cfg.WarnBefore < 0 || cfg.WarnBefore >= cfg.Timeout {
		return nil, fmt.Errorf("idle: warn before %s must be in [0, %s)", cfg.WarnBefore, cfg.Timeout)
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = DefaultLoginPath
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = RealScheduler{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	return &Monitor{
		cfg:   cfg,
		sched: cfg.Scheduler,
		log:   cfg.Logger.With("component", "idle"),
	}, nil
}

// Start moves the Monitor to Active with deadline now+Timeout.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	m.started = true
	m.state = Active
	m.rescheduleLocked()

	m.log.Info(context.Background(), "idle monitor started", "timeout", m.cfg.Timeout)
	return nil
}

// Touch records a qualifying event. In the Active state it cancels the
// pending expiry and schedules a new one at now+Timeout. Events are not
// debounced. It reports whether the event reset the deadline.
func (m *Monitor) Touch(ev Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Active {
		return false
	}
	m.rescheduleLocked()
	return true
}

// Stop cancels any pending callback and moves an Active Monitor to Stopped.
// An Expired Monitor stays Expired. Stop is safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cancelLocked()
	m.gen++
	if m.state == Active {
		m.state = Stopped
		m.log.Debug(context.Background(), "idle monitor stopped")
	}
}

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Deadline returns the pending deadline, or the zero time when not Active.
func (m *Monitor) Deadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Active {
		return time.Time{}
	}
	return m.deadline
}

// Remaining returns the time left before expiry (0 when not Active).
func (m *Monitor) Remaining() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Active {
		return 0
	}
	if left := m.deadline.Sub(m.sched.Now()); left > 0 {
		return left
	}
	return 0
}

// Timeout returns the configured inactivity period.
func (m *Monitor) Timeout() time.Duration {
	return m.cfg.Timeout
}

// =============================================================================
// SCHEDULING
// =============================================================================

// rescheduleLocked replaces the pending callbacks with fresh ones.
func (m *Monitor) rescheduleLocked() {
	m.cancelLocked()
	m.gen++
	gen := m.gen

	m.deadline = m.sched.Now().Add(m.cfg.Timeout)
	m.expiry = m.sched.AfterFunc(m.cfg.Timeout, func() { m.fireExpiry(gen) })

	if m.cfg.WarnBefore > 0 && m.cfg.OnWarn != nil {
		m.warning = m.sched.AfterFunc(m.cfg.Timeout-m.cfg.WarnBefore, func() { m.fireWarning(gen) })
	}
}

func (m *Monitor) cancelLocked() {
	if m.expiry != nil {
		m.expiry.Stop()
		m.expiry = nil
	}
	if m.warning != nil {
		m.warning.Stop()
		m.warning = nil
	}
}

func (m *Monitor) fireExpiry(gen uint64) {
	m.mu.Lock()
	if m.state != Active || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.state = Expired
	m.expiry = nil
	if m.warning != nil {
		m.warning.Stop()
		m.warning = nil
	}
	idleFor := m.cfg.Timeout
	m.mu.Unlock()

	// Callbacks run outside the lock so they may call back into m.
	ctx := context.Background()
	if err := m.cfg.Store.Clear(); err != nil {
		m.log.Error(ctx, "clear session on idle expiry failed", "error", err)
	}
	m.cfg.Navigator.Navigate(m.cfg.LoginPath)
	m.log.Info(ctx, "session expired after inactivity", "idle", idleFor)

	if m.cfg.OnExpire != nil {
		m.cfg.OnExpire()
	}
}

func (m *Monitor) fireWarning(gen uint64) {
	m.mu.Lock()
	if m.state != Active || gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.warning = nil
	remaining := m.deadline.Sub(m.sched.Now())
	onWarn := m.cfg.OnWarn
	m.mu.Unlock()

	if remaining < 0 {
		remaining = 0
	}
	m.log.Debug(context.Background(), "idle warning", "remaining", remaining)
	onWarn(remaining)
}
