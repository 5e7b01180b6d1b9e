// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/instalite-tui/internal/ui/styles"
)

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// Chroma styles picked to sit on the Theme's dark and light backgrounds.
const (
	darkCodeStyle  = "monokai"
	lightCodeStyle = "github"
)

// Highlight colours code as language (config files are "toml" or "json").
// Anything chroma cannot lex or format comes back unchanged.
func Highlight(code, language string, dark bool) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		return code
	}

	name := lightCodeStyle
	if dark {
		name = darkCodeStyle
	}
	style := chromaStyles.Get(name)

	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := codeFormatter().Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

// codeFormatter matches the terminal's colour depth.
func codeFormatter() chroma.Formatter {
	switch termenv.ColorProfile() {
	case termenv.TrueColor:
		return formatters.TTY16m
	case termenv.ANSI:
		return formatters.TTY16
	}
	return formatters.TTY256
}

// CodeBlock is a config file or snippet printed by the CLI.
type CodeBlock struct {
	Language string
	Code     string
	// Color off renders plain text, for pipes and NO_COLOR.
	Color bool
	// Dark selects the style for a dark terminal background.
	Dark bool
}

// Render returns the block, with a line-number gutter when coloured.
func (c CodeBlock) Render() string {
	code := strings.TrimRight(c.Code, "\n")
	if c.Color {
		code = Highlight(code, c.Language, c.Dark)
	}
	lines := strings.Split(strings.TrimRight(code, "\n"), "\n")

	gutter := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Width(len(strconv.Itoa(len(lines)))).
		Align(lipgloss.Right).
		MarginRight(1)

	var b strings.Builder
	for i, line := range lines {
		if c.Color {
			b.WriteString(gutter.Render(strconv.Itoa(i + 1)))
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
