// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/morganforge/parlance/internal/api"
	"github.com/morganforge/parlance/internal/cache"
	"github.com/morganforge/parlance/internal/credentials"
	"github.com/morganforge/parlance/internal/model"
	"github.com/morganforge/parlance/internal/service"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds construction parameters for a Session.
type Config struct {
	// BaseURL is the platform root, e.g. "https://chat.example.com".
	BaseURL string

	// IdleTimeout logs the user out locally after this much inactivity.
	// Zero disables idle tracking.
	IdleTimeout time.Duration

	// WarningBefore is how long before the idle timeout OnWarning fires.
	WarningBefore time.Duration

	// CacheTTL bounds how long cached reads stay fresh. Zero means cached
	// values never expire on their own and are dropped only by invalidation.
	CacheTTL time.Duration

	// OnExpired is called once when the session ends without an explicit
	// logout: a terminal token-refresh failure or an idle timeout.
	OnExpired func()

	// OnWarning is called once per idle period when the timeout approaches.
	OnWarning func(remaining time.Duration)

	// ClientOptions are passed through to the API client.
	ClientOptions []api.Option
}

// DefaultConfig returns a Config with conservative idle tracking.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:       baseURL,
		IdleTimeout:   15 * time.Minute,
		WarningBefore: 2 * time.Minute,
	}
}

// =============================================================================
// SESSION
// =============================================================================

// Session owns the wired client stack for one authenticated user. All
// methods are safe for concurrent use.
type Session struct {
	store    credentials.Store
	client   *api.Client
	cache    *cache.Cache
	services *service.Services

	mu           sync.Mutex
	user         *model.User
	lastActivity time.Time
	idleTimeout  time.Duration
	warnBefore   time.Duration
	warningShown bool
	idleExpired  bool

	onExpired func()
	onWarning func(remaining time.Duration)
}

// New wires a Session over the given credential store. Tokens already in the
// store are picked up, so a previously logged-in user resumes without a new
// login.
func New(cfg Config, store credentials.Store) *Session {
	s := &Session{
		store:        store,
		lastActivity: time.Now(),
		idleTimeout:  cfg.IdleTimeout,
		warnBefore:   cfg.WarningBefore,
		onExpired:    cfg.OnExpired,
		onWarning:    cfg.OnWarning,
	}

	opts := append([]api.Option{api.WithSessionExpiredHook(s.handleExpired)},
		cfg.ClientOptions...)
	s.client = api.NewClient(cfg.BaseURL, store, opts...)
	s.cache = cache.New(cfg.CacheTTL)
	s.services = service.New(s.client, s.cache)
	return s
}

// Services returns the domain services bound to this session. Fetching them
// counts as user activity for idle tracking, since every operation flows
// through here.
func (s *Session) Services() *service.Services {
	s.RecordActivity()
	return s.services
}

// Client returns the underlying API client.
func (s *Session) Client() *api.Client { return s.client }

// Cache returns the session's query cache.
func (s *Session) Cache() *cache.Cache { return s.cache }

// LoggedIn reports whether the store holds a usable token pair. It does not
// verify the tokens with the server; a stale refresh token surfaces as a
// session-expired event on the first authenticated request.
func (s *Session) LoggedIn() bool {
	pair, ok := s.store.Get()
	return ok && !pair.IsZero()
}

// User returns the profile captured at login, or nil before login.
func (s *Session) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

// Login authenticates, persists the returned token pair, and resets the
// cache so nothing from a previous account is served.
func (s *Session) Login(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	resp, err := s.services.Auth.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.establish(resp)
}

// Register creates an account and establishes the session, mirroring Login.
func (s *Session) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	resp, err := s.services.Auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.establish(resp)
}

func (s *Session) establish(resp *model.AuthResponse) (*model.User, error) {
	if err := s.store.Set(resp.TokenPair()); err != nil {
		return nil, fmt.Errorf("persisting tokens: %w", err)
	}
	s.cache.Clear()

	s.mu.Lock()
	u := resp.User
	s.user = &u
	s.lastActivity = time.Now()
	s.warningShown = false
	s.idleExpired = false
	s.mu.Unlock()

	return &u, nil
}

// Logout revokes the refresh token server-side when possible, then tears
// down local state. Teardown is unconditional: a dead network must not keep
// credentials on disk.
func (s *Session) Logout(ctx context.Context) error {
	var revokeErr error
	if pair, ok := s.store.Get(); ok && pair.Refresh != "" {
		if err := s.services.Auth.Logout(ctx, pair.Refresh); err != nil {
			log.Printf("session: server-side logout failed: %v", err)
			revokeErr = err
		}
	}

	s.teardown()
	return revokeErr
}

// teardown clears credentials, cached data, and the captured user.
func (s *Session) teardown() {
	if err := s.store.Clear(); err != nil {
		log.Printf("session: clearing credentials: %v", err)
	}
	s.cache.Clear()

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// handleExpired runs after the API client's terminal refresh failure. The
// client has already cleared the store; finish the local teardown and
// notify the owner.
func (s *Session) handleExpired() {
	s.cache.Clear()

	s.mu.Lock()
	s.user = nil
	onExpired := s.onExpired
	s.mu.Unlock()

	if onExpired != nil {
		onExpired()
	}
}

// =============================================================================
// IDLE TRACKING
// =============================================================================

// RecordActivity marks the session as active now and re-arms the timeout
// warning. Call it on every user interaction.
func (s *Session) RecordActivity() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
	s.warningShown = false
	s.idleExpired = false
}

// IdleTime returns how long the session has been inactive.
func (s *Session) IdleTime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.lastActivity)
}

// Remaining returns the time left before the idle timeout, or zero when
// idle tracking is disabled or the timeout has passed.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idleTimeout <= 0 {
		return 0
	}
	remaining := s.idleTimeout - time.Since(s.lastActivity)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CheckIdle evaluates the idle state, firing the warning and expiry
// callbacks as thresholds pass. It returns false once the session has
// expired, at which point local state has been torn down. Callers poll it
// on a ticker; expiry fires the callback exactly once per idle period.
func (s *Session) CheckIdle() bool {
	s.mu.Lock()
	if s.idleTimeout <= 0 {
		s.mu.Unlock()
		return true
	}
	if s.idleExpired {
		s.mu.Unlock()
		return false
	}

	idle := time.Since(s.lastActivity)
	expired := idle >= s.idleTimeout
	if expired {
		s.idleExpired = true
	}

	var warnRemaining time.Duration
	shouldWarn := false
	if !expired && !s.warningShown && idle >= s.idleTimeout-s.warnBefore {
		shouldWarn = true
		s.warningShown = true
		warnRemaining = s.idleTimeout - idle
	}
	onWarning := s.onWarning
	onExpired := s.onExpired
	s.mu.Unlock()

	if shouldWarn && onWarning != nil {
		onWarning(warnRemaining)
	}

	if expired {
		s.teardown()
		if onExpired != nil {
			onExpired()
		}
		return false
	}
	return true
}

// Close releases the credential store. The session is unusable afterwards.
func (s *Session) Close() error {
	return s.store.Close()
}
