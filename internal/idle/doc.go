// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package idle ends the session after a period without user interaction.
//
// A Monitor is Active with a deadline of now+timeout from Start. Every
// qualifying Event (pointer motion, key press, click, wheel) cancels the
// pending expiry and schedules a new one. When the deadline passes with no
// event the Monitor becomes Expired: it clears the session store and
// navigates to the login route. Expired is terminal; a new login gets a new
// Monitor.
//
// Timers come from a Scheduler so tests can drive the clock by hand (see
// package idletest).
//
// # Usage
//
//	mon, err := idle.New(idle.Config{
//	    Timeout:   15 * time.Minute,
//	    Store:     store,
//	    Navigator: idle.NavigatorFunc(func(path string) { p.Send(app.NavigateMsg{Path: path}) }),
//	})
//	if err != nil {
//	    return err
//	}
//	mon.Start()
//	defer mon.Stop()
//
//	// from Update:
//	if ev, ok := idle.EventFromMsg(msg); ok {
//	    mon.Touch(ev)
//	}
package idle
