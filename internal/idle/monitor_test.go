// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/instalite-tui/internal/idle"
	"github.com/jeranaias/instalite-tui/internal/idle/idletest"
	"github.com/jeranaias/instalite-tui/internal/session"
)

const timeout = 15 * time.Minute

type fixture struct {
	sched   *idletest.FakeScheduler
	nav     *idletest.Navigator
	store   *session.KVStore
	mon     *idle.Monitor
	expired *atomic.Int32
}

func newFixture(t *testing.T, mutate ...func(*idle.Config)) *fixture {
	t.Helper()

	f := &fixture{
		sched:   idletest.NewFakeScheduler(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)),
		nav:     &idletest.Navigator{},
		store:   session.NewStore(session.NewMemoryKV(), nil),
		expired: &atomic.Int32{},
	}
	cfg := idle.Config{
		Timeout:   timeout,
		Store:     f.store,
		Navigator: f.nav,
		Scheduler: f.sched,
		OnExpire:  func() { f.expired.Add(1) },
	}
	for _, m := range mutate {
		m(&cfg)
	}

	mon, err := idle.New(cfg)
	require.NoError(t, err)
	f.mon = mon
	return f
}

func (f *fixture) token(t *testing.T) (session.Token, bool) {
	t.Helper()
	return f.store.Get()
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestNew_Validation(t *testing.T) {
	store := session.NewStore(session.NewMemoryKV(), nil)
	nav := &idletest.Navigator{}

	_, err := idle.New(idle.Config{Timeout: 0, Store: store, Navigator: nav})
	assert.ErrorIs(t, err, idle.ErrNoTimeout)

	_, err = idle.New(idle.Config{Timeout: time.Minute, Navigator: nav})
	assert.Error(t, err)

	_, err = idle.New(idle.Config{Timeout: time.Minute, Store: store})
	assert.Error(t, err)

	_, err = idle.New(idle.Config{Timeout: time.Minute, WarnBefore: time.Minute, Store: store, Navigator: nav})
	assert.Error(t, err)
}

func TestStart_ActiveWithDeadline(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, idle.Stopped, f.mon.State())

	require.NoError(t, f.mon.Start())
	assert.Equal(t, idle.Active, f.mon.State())
	assert.Equal(t, f.sched.Now().Add(timeout), f.mon.Deadline())
	assert.Equal(t, timeout, f.mon.Remaining())

	assert.ErrorIs(t, f.mon.Start(), idle.ErrAlreadyStarted)
}

func TestTouch_BeforeStartIsIgnored(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.mon.Touch(idle.KeyDown))
	assert.Zero(t, f.sched.Created())
}

// =============================================================================
// PROPERTIES
// =============================================================================

// Events spaced less than the timeout apart keep the session alive.
func TestEventsWithinTimeoutKeepSessionActive(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set("alice"))
	require.NoError(t, f.mon.Start())

	gaps := []time.Duration{time.Second, timeout - time.Nanosecond, 7 * time.Minute, timeout - time.Second, 0, timeout / 2}
	events := []idle.Event{idle.PointerMove, idle.KeyDown, idle.Click, idle.Wheel}

	for i, gap := range gaps {
		f.sched.Advance(gap)
		require.True(t, f.mon.Touch(events[i%len(events)]), "event %d", i)
	}
	f.sched.Advance(timeout - time.Second)

	assert.Equal(t, idle.Active, f.mon.State())
	tok, ok := f.token(t)
	assert.True(t, ok)
	assert.Equal(t, session.Token("alice"), tok)
	assert.Empty(t, f.nav.Paths())
	assert.Zero(t, f.expired.Load())
}

// A quiet period of at least the timeout expires the session exactly once.
func TestQuietPeriodExpiresExactlyOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set("alice"))
	require.NoError(t, f.mon.Start())

	f.sched.Advance(timeout)

	assert.Equal(t, idle.Expired, f.mon.State())
	_, ok := f.token(t)
	assert.False(t, ok, "store must be cleared")
	assert.Equal(t, []string{"/login"}, f.nav.Paths())
	assert.EqualValues(t, 1, f.expired.Load())

	// Nothing else fires, and events after expiry change nothing.
	f.sched.Advance(10 * timeout)
	assert.False(t, f.mon.Touch(idle.Click))
	f.sched.Advance(10 * timeout)

	assert.Equal(t, []string{"/login"}, f.nav.Paths())
	assert.EqualValues(t, 1, f.expired.Load())
	assert.Zero(t, f.sched.Pending())
	assert.Zero(t, f.mon.Remaining())
	assert.True(t, f.mon.Deadline().IsZero())
}

// Each reset cancels exactly one pending expiry and schedules exactly one.
func TestResetCancelsOneAndSchedulesOne(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mon.Start())
	require.Equal(t, 1, f.sched.Created())
	require.Equal(t, 1, f.sched.Pending())

	for i := 1; i <= 100; i++ {
		f.sched.Advance(time.Second)
		f.mon.Touch(idle.PointerMove)

		assert.Equal(t, 1+i, f.sched.Created())
		assert.Equal(t, i, f.sched.Stopped())
		assert.Equal(t, 1, f.sched.Pending(), "exactly one pending expiry")
	}

	f.mon.Stop()
	assert.Zero(t, f.sched.Pending(), "no timers after teardown")
	assert.Equal(t, idle.Stopped, f.mon.State())

	f.sched.Advance(10 * timeout)
	assert.Zero(t, f.sched.Fired())
	assert.Empty(t, f.nav.Paths())

	// Stop twice is fine.
	f.mon.Stop()
}

func TestScenarioAlice(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Set("alice"))
	require.NoError(t, f.mon.Start())

	f.sched.Advance(timeout - time.Second)
	f.mon.Touch(idle.Click)
	f.sched.Advance(timeout - time.Second)

	assert.Equal(t, idle.Active, f.mon.State())
	tok, ok := f.token(t)
	require.True(t, ok)
	assert.Equal(t, session.Token("alice"), tok)

	f.sched.Advance(timeout)

	_, ok = f.token(t)
	assert.False(t, ok)
	assert.Equal(t, "/login", f.nav.Last())
	assert.Equal(t, idle.Expired, f.mon.State())
}

// =============================================================================
// STALE CALLBACKS
// =============================================================================

// staleScheduler hands out timers whose Stop never prevents the call, the
// way a time.AfterFunc that already started running behaves.
type staleScheduler struct {
	*idletest.FakeScheduler
	mu    sync.Mutex
	funcs []func()
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (s *staleScheduler) AfterFunc(d time.Duration, f func()) idle.Timer {
	s.mu.Lock()
	s.funcs = append(s.funcs, f)
	s.mu.Unlock()
	return leakyTimer{}
}

func TestStaleCallbackAfterResetIsIgnored(t *testing.T) {
	sched := &staleScheduler{FakeScheduler: idletest.NewFakeScheduler(time.Now())}
	nav := &idletest.Navigator{}
	store := session.NewStore(session.NewMemoryKV(), nil)
	require.NoError(t, store.Set("alice"))

	mon, err := idle.New(idle.Config{Timeout: timeout, Store: store, Navigator: nav, Scheduler: sched})
	require.NoError(t, err)
	require.NoError(t, mon.Start())
	mon.Touch(idle.KeyDown)

	// The first callback lost the race with Touch.
	sched.funcs[0]()
	assert.Equal(t, idle.Active, mon.State())
	_, ok := store.Get()
	assert.True(t, ok)

	// The current one still works, once.
	sched.funcs[1]()
	sched.funcs[1]()
	assert.Equal(t, idle.Expired, mon.State())
	assert.Equal(t, []string{"/login"}, nav.Paths())
}

func TestStaleCallbackAfterStopIsIgnored(t *testing.T) {
	sched := &staleScheduler{FakeScheduler: idletest.NewFakeScheduler(time.Now())}
	nav := &idletest.Navigator{}
	store := session.NewStore(session.NewMemoryKV(), nil)
	require.NoError(t, store.Set("bob"))

	mon, err := idle.New(idle.Config{Timeout: timeout, Store: store, Navigator: nav, Scheduler: sched})
	require.NoError(t, err)
	require.NoError(t, mon.Start())
	mon.Stop()

	sched.funcs[0]()
	tok, ok := store.Get()
	require.True(t, ok, "a torn-down monitor must not clear a fresh login")
	assert.Equal(t, session.Token("bob"), tok)
	assert.Empty(t, nav.Paths())
}

// =============================================================================
// WARNING
// =============================================================================

func TestWarningBeforeExpiry(t *testing.T) {
	var warnings []time.Duration
	f := newFixture(t, func(c *idle.Config) {
		c.WarnBefore = time.Minute
		c.OnWarn = func(d time.Duration) { warnings = append(warnings, d) }
	})
	require.NoError(t, f.mon.Start())

	f.sched.Advance(timeout - time.Minute - time.Second)
	assert.Empty(t, warnings)

	f.sched.Advance(time.Second)
	require.Len(t, warnings, 1)
	assert.Equal(t, time.Minute, warnings[0])

	// Activity after the warning restarts the whole cycle.
	f.mon.Touch(idle.KeyDown)
	f.sched.Advance(timeout - time.Minute)
	assert.Len(t, warnings, 2)
	assert.Equal(t, idle.Active, f.mon.State())

	f.sched.Advance(time.Minute)
	assert.Equal(t, idle.Expired, f.mon.State())
	assert.Zero(t, f.sched.Pending())
}

// =============================================================================
// REAL SCHEDULER
// =============================================================================

func TestRealScheduler_Expires(t *testing.T) {
	store := session.NewStore(session.NewMemoryKV(), nil)
	require.NoError(t, store.Set("alice"))
	nav := &idletest.Navigator{}
	done := make(chan struct{})

	mon, err := idle.New(idle.Config{
		Timeout:   20 * time.Millisecond,
		Store:     store,
		Navigator: nav,
		OnExpire:  func() { close(done) },
	})
	require.NoError(t, err)
	require.NoError(t, mon.Start())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("monitor never expired")
	}
	_, ok := store.Get()
	assert.False(t, ok)
	assert.Equal(t, "/login", nav.Last())
}

func TestRealScheduler_ConcurrentTouch(t *testing.T) {
	store := session.NewStore(session.NewMemoryKV(), nil)
	nav := &idletest.Navigator{}
	mon, err := idle.New(idle.Config{Timeout: time.Hour, Store: store, Navigator: nav})
	require.NoError(t, err)
	require.NoError(t, mon.Start())
	defer mon.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				mon.Touch(idle.PointerMove)
				_ = mon.Remaining()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, idle.Active, mon.State())
}

// =============================================================================
// EVENT CLASSIFICATION
// =============================================================================

func TestEventFromMsg(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
		want idle.Event
		ok   bool
	}{
		{"key", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}, idle.KeyDown, true},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, idle.KeyDown, true},
		{"motion", tea.MouseMsg{Type: tea.MouseMotion}, idle.PointerMove, true},
		{"left click", tea.MouseMsg{Type: tea.MouseLeft}, idle.Click, true},
		{"release", tea.MouseMsg{Type: tea.MouseRelease}, idle.Click, true},
		{"wheel", tea.MouseMsg{Type: tea.MouseWheelDown}, idle.Wheel, true},
		{"resize", tea.WindowSizeMsg{Width: 80, Height: 24}, 0, false},
		{"expired", idle.ExpiredMsg{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := idle.EventFromMsg(tt.msg)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestEventAndStateStrings(t *testing.T) {
	assert.Equal(t, "click", idle.Click.String())
	assert.Equal(t, "expired", idle.Expired.String())
	assert.Equal(t, "active", idle.Active.String())
}
