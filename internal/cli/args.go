// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strconv"
	"strings"
)

// =============================================================================
// ARG PARSER
// =============================================================================

// ArgParser parses a command's remaining arguments into a subcommand,
// named options, and positionals. It accepts long flags with either
// "--flag value" or "--flag=value", and bare flags as booleans.
type ArgParser struct {
	subcommand string
	flags      map[string]string
	boolFlags  map[string]bool
	positional []string
}

// NewArgParser parses raw arguments. The first positional argument becomes
// the subcommand.
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{
		flags:     make(map[string]string),
		boolFlags: make(map[string]bool),
	}

	i := 0
	for i < len(raw) {
		arg := raw[i]
		if !strings.HasPrefix(arg, "-") {
			p.positional = append(p.positional, arg)
			i++
			continue
		}

		name := strings.TrimLeft(arg, "-")
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			value := name[eq+1:]
			name = name[:eq]
			if value == "true" || value == "false" {
				p.boolFlags[name] = value == "true"
			} else {
				p.flags[name] = value
			}
			i++
			continue
		}

		if i+1 < len(raw) && !strings.HasPrefix(raw[i+1], "-") {
			p.flags[name] = raw[i+1]
			i += 2
		} else {
			p.boolFlags[name] = true
			i++
		}
	}

	if len(p.positional) > 0 {
		p.subcommand = p.positional[0]
	}
	return p
}

// Subcommand returns the first positional argument, or "".
func (p *ArgParser) Subcommand() string {
	return p.subcommand
}

// Flag returns the value of a named option, or "".
func (p *ArgParser) Flag(name string) string {
	return p.flags[name]
}

// IntFlag returns a named option parsed as an integer, or fallback when the
// option is absent or malformed.
func (p *ArgParser) IntFlag(name string, fallback int) int {
	v, ok := p.flags[name]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// BoolFlag reports whether a boolean flag was set.
func (p *ArgParser) BoolFlag(name string) bool {
	if v, ok := p.boolFlags[name]; ok {
		return v
	}
	// A flag given a value still counts as set.
	_, ok := p.flags[name]
	return ok
}

// Positional returns the positional argument at index, skipping the
// subcommand when skipSub is true. Returns "" when out of range.
func (p *ArgParser) Positional(index int, skipSub bool) string {
	args := p.positional
	if skipSub && len(args) > 0 {
		args = args[1:]
	}
	if index < 0 || index >= len(args) {
		return ""
	}
	return args[index]
}
