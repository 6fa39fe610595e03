// parlance - command-line client for the parlance chat platform.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"io"
	"log"

	"github.com/morganforge/parlance/internal/cli"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	// Request/response logging is noise outside of --verbose.
	if !args.Verbose {
		log.SetOutput(io.Discard)
	}

	switch cmd {
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdSend:
		cli.HandleSend(args)
	case cli.CmdLogin:
		cli.HandleLogin(args)
	case cli.CmdLogout:
		cli.HandleLogout(args)
	case cli.CmdRegister:
		cli.HandleRegister(args)
	case cli.CmdProfile:
		cli.HandleProfile(args)
	case cli.CmdConversations:
		cli.HandleConversations(args)
	case cli.CmdModels:
		cli.HandleModels(args)
	case cli.CmdPreferences:
		cli.HandlePreferences(args)
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}
