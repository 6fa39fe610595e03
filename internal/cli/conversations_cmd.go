// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// conversations_cmd.go - conversation management commands.
package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/morganforge/parlance/internal/model"
	"github.com/morganforge/parlance/internal/util"
)

// HandleConversations dispatches the conversation subcommands.
func HandleConversations(args Args) {
	p := NewArgParser(args.Raw)

	app, err := newApp()
	if err != nil {
		fail(err)
	}
	defer app.Close()
	if err := app.requireLogin(); err != nil {
		fail(err)
	}

	ctx := context.Background()
	switch p.Subcommand() {
	case "", "list":
		listConversations(ctx, app, args)
	case "show":
		showConversation(ctx, app, args, p)
	case "create":
		createConversation(ctx, app, args, p)
	case "rename":
		renameConversation(ctx, app, p)
	case "search":
		searchConversations(ctx, app, args, p)
	case "archive":
		setArchived(ctx, app, p, true)
	case "unarchive":
		setArchived(ctx, app, p, false)
	case "delete":
		deleteConversation(ctx, app, p)
	default:
		fail(fmt.Errorf("unknown conversations subcommand: %s", p.Subcommand()))
	}
}

// conversationID parses the required <id> positional after the subcommand.
func conversationID(p *ArgParser) (int, error) {
	raw := p.Positional(0, true)
	if raw == "" {
		return 0, fmt.Errorf("missing conversation id")
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid conversation id: %s", raw)
	}
	return id, nil
}

func listConversations(ctx context.Context, app *App, args Args) {
	convs, err := app.Services().Conversations.List(ctx)
	if err != nil {
		fail(err)
	}
	if args.JSON {
		printJSON(convs)
		return
	}
	if len(convs) == 0 {
		fmt.Println("No conversations.")
		return
	}
	printSummaries(convs)
}

func printSummaries(convs []model.ConversationSummary) {
	fmt.Printf("%-6s %-40s %-8s %s\n", "ID", "TITLE", "MSGS", "UPDATED")
	for _, c := range convs {
		title := util.TruncateRunes(c.Title, 40)
		marker := ""
		if c.IsArchived {
			marker = " (archived)"
		}
		fmt.Printf("%-6d %-40s %-8d %s%s\n",
			c.ID, title, c.MessageCount, c.UpdatedAt.Format("2006-01-02 15:04"), marker)
	}
}

func showConversation(ctx context.Context, app *App, args Args, p *ArgParser) {
	id, err := conversationID(p)
	if err != nil {
		fail(err)
	}
	conv, err := app.Services().Conversations.Get(ctx, id)
	if err != nil {
		fail(err)
	}
	if args.JSON {
		printJSON(conv)
		return
	}

	fmt.Printf("%s (conversation %d, %d messages)\n\n", conv.Title, conv.ID, len(conv.Messages))
	for _, msg := range conv.Messages {
		fmt.Printf("[%s] %s\n", strings.ToUpper(msg.Role), msg.Content)
	}
}

func createConversation(ctx context.Context, app *App, args Args, p *ArgParser) {
	title := p.Flag("title")
	if title == "" {
		fail(fmt.Errorf("missing --title"))
	}
	modelID := p.IntFlag("model", 0)
	if modelID <= 0 {
		fail(fmt.Errorf("missing --model"))
	}

	conv, err := app.Services().Conversations.Create(ctx, title, modelID)
	if err != nil {
		fail(err)
	}
	if args.JSON {
		printJSON(conv)
		return
	}
	fmt.Printf("Created conversation %d: %s\n", conv.ID, conv.Title)
}

func renameConversation(ctx context.Context, app *App, p *ArgParser) {
	id, err := conversationID(p)
	if err != nil {
		fail(err)
	}
	title := p.Flag("title")
	if title == "" {
		fail(fmt.Errorf("missing --title"))
	}

	_, err = app.Services().Conversations.Update(ctx, id, model.ConversationUpdate{Title: &title})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Renamed conversation %d.\n", id)
}

func searchConversations(ctx context.Context, app *App, args Args, p *ArgParser) {
	query := strings.TrimSpace(strings.Join(p.positional[1:], " "))
	if query == "" {
		fail(fmt.Errorf("missing search query"))
	}

	results, err := app.Services().Conversations.Search(ctx, query)
	if err != nil {
		fail(err)
	}
	if args.JSON {
		printJSON(results)
		return
	}
	if len(results) == 0 {
		fmt.Println("No matches.")
		return
	}
	printSummaries(results)
}

func setArchived(ctx context.Context, app *App, p *ArgParser, archived bool) {
	id, err := conversationID(p)
	if err != nil {
		fail(err)
	}

	if archived {
		err = app.Services().Conversations.Archive(ctx, id)
	} else {
		err = app.Services().Conversations.Unarchive(ctx, id)
	}
	if err != nil {
		fail(err)
	}

	if archived {
		fmt.Printf("Archived conversation %d.\n", id)
	} else {
		fmt.Printf("Unarchived conversation %d.\n", id)
	}
}

func deleteConversation(ctx context.Context, app *App, p *ArgParser) {
	id, err := conversationID(p)
	if err != nil {
		fail(err)
	}
	if !p.BoolFlag("confirm") {
		fail(fmt.Errorf("deletion is permanent; re-run with --confirm"))
	}

	if err := app.Services().Conversations.Delete(ctx, id); err != nil {
		fail(err)
	}
	fmt.Printf("Deleted conversation %d.\n", id)
}
