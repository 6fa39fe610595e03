// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/morganforge/parlance/internal/api"
	"github.com/morganforge/parlance/internal/config"
	"github.com/morganforge/parlance/internal/credentials"
	"github.com/morganforge/parlance/internal/service"
	"github.com/morganforge/parlance/internal/session"
)

// =============================================================================
// APPLICATION WIRING
// =============================================================================

// App bundles the configured session stack for command handlers.
type App struct {
	Config  *config.Config
	Session *session.Session
}

// newApp loads configuration, opens the credential store, and wires the
// session. Callers must Close it.
func newApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	credPath, err := cfg.ResolveCredentialsPath()
	if err != nil {
		return nil, err
	}
	if err := config.EnsureDir(); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	store, err := credentials.OpenBoltStore(credPath)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	opts := []api.Option{api.WithTimeout(cfg.Timeout())}
	if cfg.Server.RateLimitRPS > 0 {
		opts = append(opts, api.WithRateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))
	}

	sess := session.New(session.Config{
		BaseURL:       cfg.Server.BaseURL,
		IdleTimeout:   cfg.IdleTimeout(),
		WarningBefore: cfg.IdleWarning(),
		CacheTTL:      cfg.CacheTTL(),
		OnExpired: func() {
			fmt.Fprintln(os.Stderr, "Session expired. Run 'parlance login' to sign in again.")
		},
		OnWarning: func(remaining time.Duration) {
			fmt.Fprintf(os.Stderr, "Session expires in %s.\n", formatDuration(remaining))
		},
		ClientOptions: opts,
	}, store)

	return &App{Config: cfg, Session: sess}, nil
}

// Close releases the credential store.
func (a *App) Close() {
	if err := a.Session.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: closing credential store: %v\n", err)
	}
}

// Services is a shorthand for the session's domain services.
func (a *App) Services() *service.Services {
	return a.Session.Services()
}

// requireLogin fails early with a friendly message instead of surfacing a
// 401 from the first request.
func (a *App) requireLogin() error {
	if !a.Session.LoggedIn() {
		return fmt.Errorf("not logged in; run 'parlance login' first")
	}
	return nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail prints an error and exits. API errors already carry a readable
// message; anything else is printed as-is.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// formatDuration formats a time.Duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

// prompt reads a single line from stdin after printing a label.
func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads a line without echoing when stdin is a terminal.
// Falls back to a plain read when input is piped.
func promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(label)
	}

	fmt.Print(label)
	secret, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(secret)), nil
}
