// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import "time"

// Timer is a pending delayed call.
type Timer interface {
	// Stop cancels the call. It reports whether the call was prevented,
	// false if it already ran or was already stopped.
	Stop() bool
}

// Scheduler creates delayed calls and tells the time.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the wall clock with time.AfterFunc.
// Callbacks run on their own goroutine.
type RealScheduler struct{}

func (RealScheduler) Now() time.Time { return time.Now() }

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
