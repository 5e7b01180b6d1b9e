// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	ToastKindStatus ToastKind = iota
	ToastKindError
	ToastKindWarning
	ToastKindSuccess
)

// Auto-dismiss durations. Errors stay longer so they can be read.
const (
	DefaultToastDuration = 4 * time.Second
	WarningToastDuration = 6 * time.Second
	ErrorToastDuration   = 8 * time.Second
)

// Toast is a non-blocking notification.
type Toast struct {
	ID        int
	Message   string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

func newToast(kind ToastKind, message string, d time.Duration) Toast {
	return Toast{Message: message, Kind: kind, CreatedAt: time.Now(), Duration: d}
}

// NewErrorToast creates an error toast.
func NewErrorToast(message string) Toast {
	return newToast(ToastKindError, message, ErrorToastDuration)
}

// NewWarningToast creates a warning toast.
func NewWarningToast(message string) Toast {
	return newToast(ToastKindWarning, message, WarningToastDuration)
}

// NewStatusToast creates an informational toast.
func NewStatusToast(message string) Toast {
	return newToast(ToastKindStatus, message, DefaultToastDuration)
}

// NewSuccessToast creates a success toast.
func NewSuccessToast(message string) Toast {
	return newToast(ToastKindSuccess, message, DefaultToastDuration)
}

// IsExpiredAt reports whether the toast should be gone at now.
func (t Toast) IsExpiredAt(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

// RemainingAt returns the time left before auto-dismiss.
func (t Toast) RemainingAt(now time.Time) time.Duration {
	if left := t.Duration - now.Sub(t.CreatedAt); left > 0 {
		return left
	}
	return 0
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager holds the visible toasts, newest first.
type ToastManager struct {
	mu        sync.Mutex
	toasts    []Toast
	nextID    int
	maxToasts int
}

// NewToastManager creates a manager showing at most three toasts.
func NewToastManager() *ToastManager {
	return &ToastManager{nextID: 1, maxToasts: 3}
}

// Add shows a toast and returns its ID.
func (m *ToastManager) Add(t Toast) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	t.ID = m.nextID
	m.nextID++
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m.toasts = append([]Toast{t}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
	return t.ID
}

// AddError adds an error toast.
func (m *ToastManager) AddError(message string) int { return m.Add(NewErrorToast(message)) }

// AddWarning adds a warning toast.
func (m *ToastManager) AddWarning(message string) int { return m.Add(NewWarningToast(message)) }

// AddStatus adds an informational toast.
func (m *ToastManager) AddStatus(message string) int { return m.Add(NewStatusToast(message)) }

// AddSuccess adds a success toast.
func (m *ToastManager) AddSuccess(message string) int { return m.Add(NewSuccessToast(message)) }

// Remove dismisses a toast by ID.
func (m *ToastManager) Remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Tick drops toasts expired at now and returns the rest.
func (m *ToastManager) Tick(now time.Time) []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	active := m.toasts[:0]
	for _, t := range m.toasts {
		if !t.IsExpiredAt(now) {
			active = append(active, t)
		}
	}
	m.toasts = active
	return append([]Toast(nil), m.toasts...)
}

// Toasts returns a copy of the visible toasts.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Toast(nil), m.toasts...)
}

// Len returns the number of visible toasts.
func (m *ToastManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.toasts)
}

// Clear removes all toasts.
func (m *ToastManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// ToastTickMsg is sent periodically while toasts are visible.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd ticks toasts every 250ms.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders a single toast.
func RenderToast(t Toast, width int, now time.Time) string {
	maxWidth := 50
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	maxWidth = clampWidth(maxWidth, 24, 50)

	var color lipgloss.AdaptiveColor
	var icon string
	switch t.Kind {
	case ToastKindError:
		color, icon = styles.Rose, styles.StatusIndicators.Error
	case ToastKindWarning:
		color, icon = styles.Amber, styles.StatusIndicators.Warning
	case ToastKindSuccess:
		color, icon = styles.Emerald, styles.StatusIndicators.Success
	default:
		color, icon = styles.Sky, styles.StatusIndicators.Info
	}

	iconStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	msgStyle := lipgloss.NewStyle().Foreground(styles.TextPrimary).Width(maxWidth - 4 - lipgloss.Width(icon) - 1)
	hint := lipgloss.NewStyle().Foreground(styles.TextMuted).Italic(true).
		Render("esc dismiss  " + strconv.Itoa(int(t.RemainingAt(now).Seconds())+1) + "s")

	content := lipgloss.JoinHorizontal(lipgloss.Top, iconStyle.Render(icon+" "), msgStyle.Render(t.Message)) + "\n" + hint

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		MaxWidth(maxWidth).
		Render(content)
}

// RenderToastStack renders toasts stacked and right aligned to width.
func RenderToastStack(toasts []Toast, width int, now time.Time) string {
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		rendered = append(rendered, RenderToast(t, width, now))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	if width <= 0 {
		return stack
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
}
