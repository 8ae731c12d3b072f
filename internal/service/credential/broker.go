// Package credential brokers the bearer token used by the mail dispatcher.
// Callers never see how the token is obtained; they ask the broker and get
// either a usable credential or a typed error.
package credential

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"github.com/jhcsc/attend-api/internal/model"
)

// Status describes how far the broker has progressed. A failed fetch never
// regresses the status; the broker stays where it was.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusInitialized   Status = "initialized"
	StatusAuthenticated Status = "authenticated"
)

const tokenCacheKey = "access_token"

// TokenSource produces a fresh credential on demand.
type TokenSource interface {
	Token(ctx context.Context) (*model.Token, error)
}

// StaticSource serves a single pre-issued token, typically loaded from
// configuration. An empty access token means the source is unconfigured.
type StaticSource struct {
	token model.Token
}

func NewStaticSource(accessToken string, expiresAt time.Time) *StaticSource {
	return &StaticSource{token: model.Token{AccessToken: accessToken, ExpiresAt: expiresAt}}
}

func (s *StaticSource) Token(_ context.Context) (*model.Token, error) {
	if s.token.AccessToken == "" {
		return nil, fmt.Errorf("static token source: %w", model.ErrNotAuthenticated)
	}
	t := s.token
	return &t, nil
}

// Broker caches tokens from a TokenSource and tracks authentication status.
// Safe for concurrent use.
type Broker struct {
	source TokenSource
	cache  *gocache.Cache
	logger zerolog.Logger

	mu     sync.Mutex
	status Status
}

func NewBroker(source TokenSource, logger zerolog.Logger) *Broker {
	status := StatusUninitialized
	if source != nil {
		status = StatusInitialized
	}
	return &Broker{
		source: source,
		cache:  gocache.New(gocache.NoExpiration, 10*time.Minute),
		logger: logger,
		status: status,
	}
}

// Status returns the broker's current progression.
func (b *Broker) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// IsReady reports whether the broker holds a usable credential path: it has a
// source and has authenticated at least once. It never triggers a fetch.
func (b *Broker) IsReady() bool {
	return b.Status() == StatusAuthenticated
}

// Authenticate forces a token fetch and reports success. A failure is logged
// and leaves the previous status and any cached token untouched.
func (b *Broker) Authenticate(ctx context.Context) bool {
	if b.Status() == StatusUninitialized {
		return false
	}
	if _, err := b.fetch(ctx); err != nil {
		b.logger.Warn().Err(err).Msg("credential authentication failed")
		return false
	}
	return true
}

// EnsureToken returns a cached, unexpired token or fetches a new one. The
// returned error wraps model.ErrNotAuthenticated when no source is configured.
func (b *Broker) EnsureToken(ctx context.Context) (string, error) {
	if cached, ok := b.cache.Get(tokenCacheKey); ok {
		if tok, ok := cached.(*model.Token); ok && !tok.Expired(time.Now()) {
			return tok.AccessToken, nil
		}
	}
	if b.Status() == StatusUninitialized {
		return "", fmt.Errorf("credential broker: %w", model.ErrNotAuthenticated)
	}
	tok, err := b.fetch(ctx)
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// Invalidate drops the cached token. The dispatcher calls this when the
// mailer rejects a credential so the next batch starts from a fresh fetch.
func (b *Broker) Invalidate() {
	b.cache.Delete(tokenCacheKey)
}

func (b *Broker) fetch(ctx context.Context) (*model.Token, error) {
	tok, err := b.source.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch token: %w", err)
	}
	if tok.Expired(time.Now()) {
		return nil, fmt.Errorf("fetched token already expired: %w", model.ErrAuthExpired)
	}

	ttl := gocache.NoExpiration
	if !tok.ExpiresAt.IsZero() {
		ttl = time.Until(tok.ExpiresAt)
	}
	b.cache.Set(tokenCacheKey, tok, ttl)

	b.mu.Lock()
	b.status = StatusAuthenticated
	b.mu.Unlock()
	return tok, nil
}
