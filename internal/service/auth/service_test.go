package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/repository/memory"
	"github.com/jhcsc/attend-api/pkg/security"
)

func newTestService() *Service {
	return NewService(
		memory.NewOperatorRepository(),
		security.NewBcryptHasher(4),
		Config{Secret: "test-secret", TokenTTL: time.Hour},
		zerolog.Nop(),
	)
}

func register(t *testing.T, svc *Service) *model.Operator {
	t.Helper()
	operator, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name:     "Op One",
		Email:    "op@school.edu",
		Password: "correct horse",
	})
	require.NoError(t, err)
	return operator
}

func TestRegister(t *testing.T) {
	svc := newTestService()
	operator := register(t, svc)

	assert.Equal(t, "op@school.edu", operator.Email)
	assert.NotEmpty(t, operator.PasswordHash)
	assert.NotEqual(t, "correct horse", operator.PasswordHash)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Name: "Dup", Email: "op@school.edu", Password: "some password",
	})
	assert.Error(t, err, "duplicate email is rejected")
}

func TestLoginAndValidate(t *testing.T) {
	svc := newTestService()
	operator := register(t, svc)

	resp, err := svc.Login(context.Background(), &model.LoginRequest{
		Email: "op@school.edu", Password: "correct horse",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, operator.ID, claims.OperatorID)
	assert.Equal(t, "op@school.edu", claims.Email)
}

func TestLoginBadCredentials(t *testing.T) {
	svc := newTestService()
	register(t, svc)

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email: "op@school.edu", Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), &model.LoginRequest{
		Email: "nobody@school.edu", Password: "correct horse",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	issuer := newTestService()
	register(t, issuer)
	resp, err := issuer.Login(context.Background(), &model.LoginRequest{
		Email: "op@school.edu", Password: "correct horse",
	})
	require.NoError(t, err)

	verifier := NewService(memory.NewOperatorRepository(), security.NewBcryptHasher(4),
		Config{Secret: "other-secret", TokenTTL: time.Hour}, zerolog.Nop())
	_, err = verifier.ValidateToken(resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
