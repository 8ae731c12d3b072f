// Package auth manages operator accounts and the JWT bearer tokens that gate
// the administrative surface.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhcsc/attend-api/internal/model"
	"github.com/jhcsc/attend-api/internal/repository"
	"github.com/jhcsc/attend-api/pkg/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type Config struct {
	Secret   string
	TokenTTL time.Duration
}

type Service struct {
	operators repository.OperatorRepository
	hasher    security.PasswordHasher
	cfg       Config
	logger    zerolog.Logger
}

func NewService(operators repository.OperatorRepository, hasher security.PasswordHasher, cfg Config, logger zerolog.Logger) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &Service{
		operators: operators,
		hasher:    hasher,
		cfg:       cfg,
		logger:    logger,
	}
}

// Register creates an operator account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.Operator, error) {
	if existing, _ := s.operators.GetByEmail(ctx, req.Email); existing != nil {
		return nil, fmt.Errorf("register: email already in use")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	operator := &model.Operator{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.operators.Create(ctx, operator); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	s.logger.Info().Str("email", operator.Email).Msg("operator registered")
	return operator, nil
}

// Login verifies credentials and issues a signed token. The same error comes
// back for an unknown email and a wrong password.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	operator, err := s.operators.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(operator.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.cfg.TokenTTL)
	claims := jwt.MapClaims{
		"sub":   operator.ID.String(),
		"email": operator.Email,
		"exp":   expiresAt.Unix(),
		"iat":   time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}

	return &model.TokenResponse{AccessToken: signed, ExpiresAt: expiresAt}, nil
}

// ValidateToken parses and verifies a bearer token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*model.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	operatorID, err := uuid.Parse(sub)
	if err != nil {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	return &model.TokenClaims{OperatorID: operatorID, Email: email}, nil
}
