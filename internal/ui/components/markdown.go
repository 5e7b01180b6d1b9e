// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

// Markdown renders captions and bios. Renderers are built lazily per width
// and reused. With rendering disabled, or when glamour fails, text is word
// wrapped as plain text.
type Markdown struct {
	mu        sync.Mutex
	enabled   bool
	style     string
	renderers map[int]*glamour.TermRenderer
}

// NewMarkdown creates a renderer. style is a glamour standard style name
// such as "dark" or "light".
func NewMarkdown(style string, enabled bool) *Markdown {
	return &Markdown{enabled: enabled, style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

// Render renders text wrapped to width.
func (m *Markdown) Render(text string, width int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}
	if m == nil || !m.enabled {
		return plainWrap(text, width)
	}

	r, err := m.renderer(width)
	if err != nil {
		return plainWrap(text, width)
	}
	out, err := r.Render(text)
	if err != nil {
		return plainWrap(text, width)
	}
	return strings.Trim(out, "\n")
}

func (m *Markdown) renderer(width int) (*glamour.TermRenderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.renderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	m.renderers[width] = r
	return r, nil
}

func plainWrap(text string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(text)
}
