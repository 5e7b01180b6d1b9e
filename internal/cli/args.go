// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser splits command arguments into flags and positionals.
//
//	--flag value     long flag with a value
//	--flag=value     long flag with equals sign
//	--flag           boolean flag
//
// The first positional argument is the subcommand.
type ArgParser struct {
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw.
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}
	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			p.positional = append(p.positional, arg)
			continue
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		switch {
		case hasValue && (value == "true" || value == "false"):
			p.boolFlags[name] = value == "true"
		case hasValue:
			p.flags[name] = value
		case i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-"):
			p.flags[name] = raw[i+1]
			i++
		default:
			p.boolFlags[name] = true
		}
	}
	return p
}

// Subcommand returns the first positional argument or "".
func (p *ArgParser) Subcommand() string {
	return p.Positional(0)
}

// Flag returns a string flag or "".
func (p *ArgParser) Flag(name string) string {
	return p.flags[name]
}

// FlagOr returns a string flag, or def when it is unset.
func (p *ArgParser) FlagOr(name, def string) string {
	if v, ok := p.flags[name]; ok {
		return v
	}
	return def
}

// BoolFlag reports whether a boolean flag was given.
func (p *ArgParser) BoolFlag(name string) bool {
	return p.boolFlags[name]
}

// Positional returns positional argument i or "".
func (p *ArgParser) Positional(i int) string {
	if i < 0 || i >= len(p.positional) {
		return ""
	}
	return p.positional[i]
}

// PositionalFrom returns the positional arguments from i on.
func (p *ArgParser) PositionalFrom(i int) []string {
	if i >= len(p.positional) {
		return nil
	}
	return p.positional[i:]
}
