// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package idle

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Event is a qualifying user interaction.
type Event int

const (
	PointerMove Event = iota
	KeyDown
	Click
	Wheel
)

func (e Event) String() string {
	switch e {
	case PointerMove:
		return "pointer-move"
	case KeyDown:
		return "key-down"
	case Click:
		return "click"
	case Wheel:
		return "wheel"
	}
	return "unknown"
}

// EventFromMsg classifies a Bubble Tea message. Messages that are not user
// input (ticks, window size, API results) report ok == false.
func EventFromMsg(msg tea.Msg) (ev Event, ok bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return KeyDown, true
	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseMotion:
			return PointerMove, true
		case tea.MouseWheelUp, tea.MouseWheelDown:
			return Wheel, true
		case tea.MouseLeft, tea.MouseRight, tea.MouseMiddle, tea.MouseRelease:
			return Click, true
		}
	}
	return 0, false
}

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// ExpiredMsg is posted to the program when a Monitor expires.
type ExpiredMsg struct {
	At time.Time
}

// WarningMsg is posted when the deadline is WarnBefore away.
type WarningMsg struct {
	Remaining time.Duration
}
