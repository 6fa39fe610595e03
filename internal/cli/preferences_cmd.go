// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// preferences_cmd.go - per-user default settings commands.
package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/morganforge/parlance/internal/model"
)

// HandlePreferences dispatches the preference subcommands.
func HandlePreferences(args Args) {
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
	case "", "show":
		showPreferences(ctx, app, args)
	case "set":
		setPreferences(ctx, app, args, p)
	default:
		fail(fmt.Errorf("unknown preferences subcommand: %s", p.Subcommand()))
	}
}

func showPreferences(ctx context.Context, app *App, args Args) {
	prefs, err := app.Services().Preferences.Get(ctx)
	if err != nil {
		fail(err)
	}
	if args.JSON {
		printJSON(prefs)
		return
	}
	printPreferences(prefs)
}

func printPreferences(prefs model.Preferences) {
	if prefs.DefaultModelID != nil {
		fmt.Printf("Default model:       %d\n", *prefs.DefaultModelID)
	} else {
		fmt.Println("Default model:       (server default)")
	}
	fmt.Printf("Default temperature: %.2f\n", prefs.DefaultTemperature)
	fmt.Printf("Default max tokens:  %d\n", prefs.DefaultMaxTokens)
}

func setPreferences(ctx context.Context, app *App, args Args, p *ArgParser) {
	var update model.PreferencesUpdate

	if v := p.Flag("model"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			fail(fmt.Errorf("invalid --model: %s", v))
		}
		update.DefaultModelID = &id
	}
	if v := p.Flag("temperature"); v != "" {
		temp, err := strconv.ParseFloat(v, 64)
		if err != nil || temp < 0 || temp > 2 {
			fail(fmt.Errorf("invalid --temperature: %s", v))
		}
		update.DefaultTemperature = &temp
	}
	if v := p.Flag("max-tokens"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			fail(fmt.Errorf("invalid --max-tokens: %s", v))
		}
		update.DefaultMaxTokens = &n
	}

	if update.DefaultModelID == nil && update.DefaultTemperature == nil && update.DefaultMaxTokens == nil {
		fail(fmt.Errorf("nothing to set; pass --model, --temperature, or --max-tokens"))
	}

	prefs, err := app.Services().Preferences.Update(ctx, update)
	if err != nil {
		fail(err)
	}
	if args.JSON {
		printJSON(prefs)
		return
	}
	fmt.Println("Preferences updated.")
	printPreferences(prefs)
}
