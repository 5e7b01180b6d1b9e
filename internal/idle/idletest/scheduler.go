// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package idletest provides a manually driven idle.Scheduler for tests.
package idletest

import (
	"sort"
	"sync"
	"time"

	"github.com/jeranaias/instalite-tui/internal/idle"
)

// FakeScheduler is an idle.Scheduler whose clock only moves on Advance.
// Due callbacks run synchronously inside Advance, in deadline order.
type FakeScheduler struct {
	mu      sync.Mutex
	now     time.Time
	seq     int
	timers  []*fakeTimer
	created int
	stopped int
	fired   int
}

var _ idle.Scheduler = (*FakeScheduler)(nil)

// NewFakeScheduler returns a scheduler whose clock starts at start.
func NewFakeScheduler(start time.Time) *FakeScheduler {
	return &FakeScheduler{now: start}
}

type fakeTimer struct {
	s    *FakeScheduler
	seq  int
	at   time.Time
	fn   func()
	done bool
}

// Stop cancels the timer if it has not fired.
func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	t.s.stopped++
	t.s.removeLocked(t)
	return true
}

// Now returns the fake clock.
func (s *FakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// AfterFunc schedules f at Now()+d.
func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) idle.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.created++
	t := &fakeTimer{s: s, seq: s.seq, at: s.now.Add(d), fn: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock forward by d, running every callback that falls
// due on the way. Callbacks may schedule or stop timers.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDueLocked(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.at
		next.done = true
		s.fired++
		s.removeLocked(next)
		s.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of scheduled, unfired, unstopped timers.
func (s *FakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Created returns how many timers were ever scheduled.
func (s *FakeScheduler) Created() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created
}

// Stopped returns how many timers were cancelled before firing.
func (s *FakeScheduler) Stopped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Fired returns how many callbacks ran.
func (s *FakeScheduler) Fired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fired
}

func (s *FakeScheduler) nextDueLocked(target time.Time) *fakeTimer {
	if len(s.timers) == 0 {
		return nil
	}
	sort.SliceStable(s.timers, func(i, j int) bool {
		if s.timers[i].at.Equal(s.timers[j].at) {
			return s.timers[i].seq < s.timers[j].seq
		}
		return s.timers[i].at.Before(s.timers[j].at)
	})
	if first := s.timers[0]; !first.at.After(target) {
		return first
	}
	return nil
}

func (s *FakeScheduler) removeLocked(t *fakeTimer) {
	for i, cur := range s.timers {
		if cur == t {
			s.timers = append(s.timers[:i], s.timers[i+1:]...)
			return
		}
	}
}
