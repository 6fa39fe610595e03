// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models_cmd.go - model listing and test commands.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/morganforge/parlance/internal/model"
)

// HandleModels dispatches the model subcommands.
func HandleModels(args Args) {
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
		listModels(ctx, app, args)
	case "test":
		testModel(ctx, app, args, p)
	default:
		fail(fmt.Errorf("unknown models subcommand: %s", p.Subcommand()))
	}
}

func listModels(ctx context.Context, app *App, args Args) {
	models, err := app.Services().Models.List(ctx)
	if err != nil {
		fail(err)
	}
	if args.JSON {
		printJSON(models)
		return
	}
	if len(models) == 0 {
		fmt.Println("No models configured.")
		return
	}

	fmt.Printf("%-6s %-24s %-12s %-8s %s\n", "ID", "NAME", "TYPE", "ACTIVE", "MODEL")
	for _, m := range models {
		active := "no"
		if m.IsActive {
			active = "yes"
		}
		fmt.Printf("%-6d %-24s %-12s %-8s %s\n", m.ID, m.Name, m.ModelType, active, m.ModelID)
	}
}

func testModel(ctx context.Context, app *App, args Args, p *ArgParser) {
	raw := p.Positional(0, true)
	if raw == "" {
		fail(fmt.Errorf("missing model id; usage: parlance models test <id>"))
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		fail(fmt.Errorf("invalid model id: %s", raw))
	}

	req := model.ModelTestRequest{
		ModelID:     id,
		TestPrompt:  p.Flag("prompt"),
		Temperature: 0.7,
		MaxTokens:   256,
	}
	if req.TestPrompt == "" {
		req.TestPrompt = "Reply with a short greeting."
	}

	resp, err := app.Services().Models.Test(ctx, req)
	if err != nil {
		fail(err)
	}
	if args.JSON {
		printJSON(resp)
		return
	}
	fmt.Printf("Model:  %s\n", resp.Model)
	fmt.Printf("Prompt: %s\n", resp.TestPrompt)
	fmt.Printf("Reply:  %s\n", resp.Response)
}
