// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - command parsing and usage for parlance.
package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdChat Command = iota
	CmdSend
	CmdLogin
	CmdLogout
	CmdRegister
	CmdProfile
	CmdConversations
	CmdModels
	CmdPreferences
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	JSON    bool // output machine-readable JSON instead of text
	Verbose bool

	// Raw args remaining after the command name
	Raw []string
}

const usageText = `parlance - command-line client for the parlance chat platform

Usage:
  parlance                        Interactive chat (default)
  parlance chat [--conversation N] [--model N]
  parlance send "message" [--conversation N] [--model N] [--no-stream]
  parlance login [--email addr]   Sign in and store tokens
  parlance logout                 Revoke tokens and clear local state
  parlance register               Create an account
  parlance profile [show|update|password]
  parlance conversations [list|show|create|rename|search|archive|unarchive|delete]
  parlance models [list|test]
  parlance preferences [show|set]
  parlance version                Show version information

Conversation Commands:
  parlance conversations list               List conversations
  parlance conversations show <id>          Show a conversation with messages
  parlance conversations create --title T --model N
  parlance conversations rename <id> --title T
  parlance conversations search <query>     Search titles and content
  parlance conversations archive <id>
  parlance conversations unarchive <id>
  parlance conversations delete <id> --confirm

Model Commands:
  parlance models list                      List available model configurations
  parlance models test <id> [--prompt P]    Run a test prompt against a model

Preference Commands:
  parlance preferences show
  parlance preferences set [--model N] [--temperature F] [--max-tokens N]

Global Flags:
  --json      Output JSON (for scripting)
  --verbose   Log requests and responses

Environment:
  PARLANCE_BASE_URL           Platform URL (overrides config)
  PARLANCE_CREDENTIALS_PATH   Token database location

Configuration file: ~/.parlance/config.toml

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("parlance version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return parseArgs(os.Args[1:])
}

func parseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	// No command defaults to interactive chat.
	if len(remaining) == 0 {
		return CmdChat, parsed
	}

	cmd := strings.ToLower(remaining[0])
	parsed.Raw = remaining[1:]

	switch cmd {
	case "chat":
		return CmdChat, parsed
	case "send", "ask":
		return CmdSend, parsed
	case "login":
		return CmdLogin, parsed
	case "logout":
		return CmdLogout, parsed
	case "register", "signup":
		return CmdRegister, parsed
	case "profile", "whoami":
		return CmdProfile, parsed
	case "conversations", "conversation", "conv":
		return CmdConversations, parsed
	case "models", "model":
		return CmdModels, parsed
	case "preferences", "prefs":
		return CmdPreferences, parsed
	case "version", "--version", "-v":
		return CmdVersion, parsed
	case "help", "--help", "-h":
		return CmdHelp, parsed
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		return CmdHelp, parsed
	}
}

// parseGlobalFlags strips global flags from anywhere in the argument list.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var args Args
	var remaining []string

	for _, arg := range argv {
		switch arg {
		case "--json":
			args.JSON = true
		case "--verbose":
			args.Verbose = true
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}
