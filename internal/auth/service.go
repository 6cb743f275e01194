package auth

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/voyageos/voyageos/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenIssuer
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, tokens: tokens, logger: logger}
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Login authenticates and issues a bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return TokenResponse{}, err
	}
	token, err := s.tokens.Issue(*user)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// Bootstrap upserts the configured accounts. Configured accounts are always active.
func (s *Service) Bootstrap(ctx context.Context, users []User) error {
	for _, u := range users {
		u.IsActive = true
		if err := s.repo.UpsertUser(ctx, u); err != nil {
			return fmt.Errorf("bootstrap user %s: %w", u.Username, err)
		}
		s.logger.Info("bootstrap user ready", slog.String("username", u.Username), slog.String("role", u.Role))
	}
	return nil
}
