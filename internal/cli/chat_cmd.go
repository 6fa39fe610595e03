// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat_cmd.go - one-shot send and interactive chat commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/morganforge/parlance/internal/model"
	"github.com/morganforge/parlance/internal/service"
)

// HandleSend sends a single message and prints the reply. Streams by
// default; --no-stream waits for the complete response.
func HandleSend(args Args) {
	p := NewArgParser(args.Raw)

	message := strings.TrimSpace(strings.Join(p.positional, " "))
	if message == "" {
		fail(fmt.Errorf("no message given; usage: parlance send \"message\""))
	}

	app, err := newApp()
	if err != nil {
		fail(err)
	}
	defer app.Close()
	if err := app.requireLogin(); err != nil {
		fail(err)
	}

	req := model.ChatRequest{Message: message}
	if id := p.IntFlag("conversation", 0); id > 0 {
		req.ConversationID = &id
	}
	if id := p.IntFlag("model", 0); id > 0 {
		req.ModelID = &id
	}

	ctx := context.Background()
	if p.BoolFlag("no-stream") || args.JSON {
		resp, err := app.Services().Chat.Send(ctx, req)
		if err != nil {
			fail(err)
		}
		if args.JSON {
			printJSON(resp)
			return
		}
		fmt.Println(resp.Response)
		return
	}

	result, err := app.Services().Chat.Stream(ctx, req, func(chunk service.StreamChunk) {
		fmt.Print(chunk.Content)
	})
	if err != nil {
		fmt.Println()
		fail(err)
	}
	fmt.Println()
	if args.Verbose {
		fmt.Fprintf(os.Stderr, "[conversation %d, %s, %d chunks in %s]\n",
			result.ConversationID, result.ModelUsed, result.Chunks,
			result.Duration.Round(10*time.Millisecond))
	}
}

// HandleChat runs an interactive chat loop. Each reply streams to the
// terminal; the conversation ID carries across turns.
func HandleChat(args Args) {
	p := NewArgParser(args.Raw)

	app, err := newApp()
	if err != nil {
		fail(err)
	}
	defer app.Close()
	if err := app.requireLogin(); err != nil {
		fail(err)
	}

	conversationID := p.IntFlag("conversation", 0)
	modelID := p.IntFlag("model", 0)

	fmt.Println("parlance chat - type a message, /new for a fresh conversation, /quit to exit")
	if conversationID > 0 {
		fmt.Printf("Continuing conversation %d\n", conversationID)
	}

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		app.Session.RecordActivity()
		if !app.Session.CheckIdle() {
			return
		}

		switch line {
		case "/quit", "/exit", "/q":
			return
		case "/new":
			conversationID = 0
			fmt.Println("Started a new conversation.")
			continue
		}

		req := model.ChatRequest{Message: line}
		if conversationID > 0 {
			req.ConversationID = &conversationID
		}
		if modelID > 0 {
			req.ModelID = &modelID
		}

		result, err := app.Services().Chat.Stream(ctx, req, func(chunk service.StreamChunk) {
			fmt.Print(chunk.Content)
		})
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if result.ConversationID != 0 {
			conversationID = result.ConversationID
		}
	}
}
