// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/instalite-tui/internal/ui/styles"
)

// field is one labelled input of a form. Exactly one of input and area is
// used.
type field struct {
	label  string
	input  textinput.Model
	area   *textarea.Model
	errMsg string
	note   string
}

func (f *field) value() string {
	if f.area != nil {
		return f.area.Value()
	}
	return f.input.Value()
}

func (f *field) setValue(v string) {
	if f.area != nil {
		f.area.SetValue(v)
		return
	}
	f.input.SetValue(v)
}

// form is a vertical list of fields with one focused at a time.
type form struct {
	fields []*field
	focus  int
}

func newInput(label, placeholder string, limit int) *field {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Prompt = ""
	return &field{label: label, input: in}
}

func newPassword(label string) *field {
	f := newInput(label, "", 128)
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '*'
	return f
}

func newArea(label, placeholder string, limit int) *field {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.CharLimit = limit
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	return &field{label: label, area: &ta}
}

func newForm(fields ...*field) form {
	f := form{fields: fields}
	f.focusField(0)
	return f
}

// focusField moves focus to i and returns the blink command.
func (f *form) focusField(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	i = (i + len(f.fields)) % len(f.fields)
	for j, fl := range f.fields {
		if fl.area != nil {
			fl.area.Blur()
		} else {
			fl.input.Blur()
		}
		if j == i {
			f.focus = i
		}
	}
	cur := f.fields[f.focus]
	if cur.area != nil {
		return cur.area.Focus()
	}
	return cur.input.Focus()
}

func (f *form) focused() *field {
	return f.fields[f.focus]
}

func (f *form) onLast() bool {
	return f.focus == len(f.fields)-1
}

// Update moves focus on tab/shift+tab/up/down and feeds other keys to the
// focused field. Up and down stay inside a textarea.
func (f *form) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		inArea := f.focused().area != nil
		switch key.String() {
		case "tab":
			return f.focusField(f.focus + 1)
		case "shift+tab":
			return f.focusField(f.focus - 1)
		case "down":
			if !inArea {
				return f.focusField(f.focus + 1)
			}
		case "up":
			if !inArea {
				return f.focusField(f.focus - 1)
			}
		}
	}

	cur := f.focused()
	var cmd tea.Cmd
	if cur.area != nil {
		var ta textarea.Model
		ta, cmd = cur.area.Update(msg)
		*cur.area = ta
	} else {
		cur.input, cmd = cur.input.Update(msg)
	}
	return cmd
}

func (f *form) setWidth(w int) {
	for _, fl := range f.fields {
		if fl.area != nil {
			fl.area.SetWidth(w - 4)
		} else {
			fl.input.Width = w - 5
		}
	}
}

// View renders labels, inputs and per-field errors.
func (f *form) View(theme *styles.Theme, width int) string {
	var rows []string
	for i, fl := range f.fields {
		rows = append(rows, theme.Label.Render(fl.label))
		box := theme.Field
		if i == f.focus {
			box = theme.FieldFocused
		}
		var inner string
		if fl.area != nil {
			inner = fl.area.View()
		} else {
			inner = fl.input.View()
		}
		rows = append(rows, box.Width(width-2).Render(inner))
		switch {
		case fl.errMsg != "":
			rows = append(rows, theme.FieldError.Render(fl.errMsg))
		case fl.note != "":
			rows = append(rows, theme.Muted.Render(fl.note))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// button renders a submit button, dimmed while busy.
func button(theme *styles.Theme, label string, busy bool) string {
	if busy {
		return theme.Button.Render(strings.TrimSpace(label) + "...")
	}
	return theme.ButtonActive.Render(label)
}
