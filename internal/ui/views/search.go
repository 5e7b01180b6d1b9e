// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/api"
	"github.com/jeranaias/instalite-tui/internal/router"
	"github.com/jeranaias/instalite-tui/internal/session"
	"github.com/jeranaias/instalite-tui/internal/ui/components"
)

// DefaultSearchDebounce is the pause after the last keystroke before a
// search or username check is sent.
const DefaultSearchDebounce = 300 * time.Millisecond

const callSearch = "search"

// searchTickMsg fires once typing pauses. Only the tick matching the
// latest seq sends a request.
type searchTickMsg struct {
	screen uint64
	seq    int
}

// Search finds profiles by username. The query survives restarts.
type Search struct {
	base
	input    textinput.Model
	spinner  spinner.Model
	results  []api.ProfileSummary
	selected int
	seq      int
	searched string
}

// NewSearch creates the search screen.
func NewSearch(d *Deps) *Search {
	in := textinput.New()
	in.Placeholder = "Search..."
	in.Prompt = "/ "
	in.CharLimit = 64
	return &Search{base: newBase(d), input: in, spinner: newSpinner()}
}

// Query returns the current query text.
func (s *Search) Query() string { return s.input.Value() }

// Results returns the profiles from the last completed search.
func (s *Search) Results() []api.ProfileSummary { return s.results }

func (s *Search) Init() tea.Cmd {
	cmds := []tea.Cmd{s.input.Focus()}
	if q := s.restore(); q != "" {
		s.input.SetValue(q)
		s.input.CursorEnd()
		cmds = append(cmds, s.schedule())
	}
	return tea.Batch(cmds...)
}

func (s *Search) restore() string {
	if s.deps.KV == nil {
		return ""
	}
	q, ok, err := s.deps.KV.Get(session.KeySearchQuery)
	if err != nil {
		s.deps.logger().Warn(context.Background(), "restore search query", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return q
}

func (s *Search) persist(q string) {
	if s.deps.KV == nil {
		return
	}
	if err := s.deps.KV.Set(session.KeySearchQuery, q); err != nil {
		s.deps.logger().Warn(context.Background(), "persist search query", "error", err)
	}
}

func (s *Search) Title() string { return "Search" }

func (s *Search) Capturing() bool { return true }

func (s *Search) Hints() []components.KeyHint {
	return []components.KeyHint{
		{Key: "enter", Help: "open"},
		{Key: "up/down", Help: "select"},
		{Key: "esc", Help: "home"},
	}
}

func (s *Search) debounce() time.Duration {
	if s.deps.SearchDebounce > 0 {
		return s.deps.SearchDebounce
	}
	return DefaultSearchDebounce
}

// schedule arms a debounce tick for the current query.
func (s *Search) schedule() tea.Cmd {
	s.seq++
	seq, id := s.seq, s.id
	return tea.Tick(s.debounce(), func(time.Time) tea.Msg {
		return searchTickMsg{screen: id, seq: seq}
	})
}

func (s *Search) search() tea.Cmd {
	q := strings.TrimSpace(s.input.Value())
	if q == "" {
		s.results = nil
		s.searched = ""
		s.loading = false
		return nil
	}
	s.loading = true
	s.searched = q
	user, client := s.deps.User(), s.deps.API
	return tea.Batch(s.spinner.Tick, call(&s.base, callSearch, func(ctx context.Context) ([]api.ProfileSummary, error) {
		return client.Search(ctx, q, user)
	}))
}

func (s *Search) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case searchTickMsg:
		if !s.mine(msg.screen) || msg.seq != s.seq {
			return s, nil
		}
		return s, s.search()

	case result[[]api.ProfileSummary]:
		if !s.mine(msg.screen) || s.searched != strings.TrimSpace(s.input.Value()) {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			s.results = nil
			return s, ErrorToast(msg.err, "Search failed.")
		}
		s.results = msg.value
		s.selected = 0
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, Navigate(router.PathHome)
		case "up":
			s.selected = max(s.selected-1, 0)
			return s, nil
		case "down":
			s.selected = min(s.selected+1, max(len(s.results)-1, 0))
			return s, nil
		case "enter":
			if s.selected < len(s.results) {
				return s, Navigate(authorPath(s.deps.User(), s.results[s.selected].Username))
			}
			return s, nil
		}
		before := s.input.Value()
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		if q := s.input.Value(); q != before {
			s.persist(q)
			if strings.TrimSpace(q) == "" {
				s.seq++
				s.results = nil
				s.searched = ""
				s.loading = false
				return s, cmd
			}
			return s, tea.Batch(cmd, s.schedule())
		}
		return s, cmd
	}
	return s, nil
}

func (s *Search) SetSize(width, height int) {
	s.base.SetSize(width, height)
	s.input.Width = s.contentWidth() - 4
}

func (s *Search) View() string {
	th := s.deps.Theme
	w := s.contentWidth()
	rows := []string{th.Title.Render("Search"), th.FieldFocused.Width(w - 2).Render(s.input.View())}

	q := strings.TrimSpace(s.input.Value())
	switch {
	case s.loading:
		rows = append(rows, s.spinner.View()+" Loading...")
	case q != "" && len(s.results) == 0 && s.searched == q:
		rows = append(rows, th.Muted.Render("No profiles found."))
	}

	for i, p := range s.results {
		line := th.Username.Render(p.Username)
		if p.FullName != "" {
			line += "  " + th.Muted.Render(p.FullName)
		}
		card := th.Card
		if i == s.selected {
			card = th.CardFocused
		}
		rows = append(rows, card.Width(w-2).Render(line))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
