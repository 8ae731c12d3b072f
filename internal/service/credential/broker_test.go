package credential

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhcsc/attend-api/internal/model"
)

type fakeSource struct {
	token *model.Token
	err   error
	calls int
}

func (f *fakeSource) Token(_ context.Context) (*model.Token, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	t := *f.token
	return &t, nil
}

func TestBrokerLifecycle(t *testing.T) {
	src := &fakeSource{token: &model.Token{AccessToken: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}}
	broker := NewBroker(src, zerolog.Nop())

	assert.Equal(t, StatusInitialized, broker.Status())
	assert.False(t, broker.IsReady())

	require.True(t, broker.Authenticate(context.Background()))
	assert.Equal(t, StatusAuthenticated, broker.Status())
	assert.True(t, broker.IsReady())
}

func TestBrokerUninitialized(t *testing.T) {
	broker := NewBroker(nil, zerolog.Nop())

	assert.Equal(t, StatusUninitialized, broker.Status())
	assert.False(t, broker.Authenticate(context.Background()))

	_, err := broker.EnsureToken(context.Background())
	assert.ErrorIs(t, err, model.ErrNotAuthenticated)
}

func TestEnsureTokenCaches(t *testing.T) {
	src := &fakeSource{token: &model.Token{AccessToken: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}}
	broker := NewBroker(src, zerolog.Nop())

	tok, err := broker.EnsureToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	tok, err = broker.EnsureToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
	assert.Equal(t, 1, src.calls, "cached token should not trigger a second fetch")
}

func TestEnsureTokenRefetchesAfterInvalidate(t *testing.T) {
	src := &fakeSource{token: &model.Token{AccessToken: "tok-1", ExpiresAt: time.Now().Add(time.Hour)}}
	broker := NewBroker(src, zerolog.Nop())

	_, err := broker.EnsureToken(context.Background())
	require.NoError(t, err)

	broker.Invalidate()
	src.token.AccessToken = "tok-2"

	tok, err := broker.EnsureToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", tok)
	assert.Equal(t, 2, src.calls)
}

func TestFetchFailureKeepsStatus(t *testing.T) {
	src := &fakeSource{err: errors.New("upstream down")}
	broker := NewBroker(src, zerolog.Nop())

	assert.False(t, broker.Authenticate(context.Background()))
	assert.Equal(t, StatusInitialized, broker.Status(), "failed fetch must not change status")

	_, err := broker.EnsureToken(context.Background())
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	src := &fakeSource{token: &model.Token{AccessToken: "stale", ExpiresAt: time.Now().Add(-time.Minute)}}
	broker := NewBroker(src, zerolog.Nop())

	_, err := broker.EnsureToken(context.Background())
	assert.ErrorIs(t, err, model.ErrAuthExpired)
	assert.False(t, broker.IsReady())
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource("abc", time.Time{})
	tok, err := src.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.False(t, tok.Expired(time.Now()), "zero expiry means non-expiring")

	empty := NewStaticSource("", time.Time{})
	_, err = empty.Token(context.Background())
	assert.ErrorIs(t, err, model.ErrNotAuthenticated)
}
