package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/taskz/internal/auth"
	"github.com/yukikurage/taskz/internal/models"
	"github.com/yukikurage/taskz/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	codec  *auth.TokenCodec
	logger *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher, codec *auth.TokenCodec, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		codec:  codec,
		logger: logger,
	}
}

// LoginInput represents input for login
type LoginInput struct {
	Username string
	Password string
}

// Login authenticates a user by email and password and issues an access token.
// An unknown email and a wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, auth.Token, error) {
	user, err := s.users.FindByEmail(ctx, models.NormalizeEmail(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("Login failed: unknown email")
			return nil, auth.Token{}, ErrInvalidCredentials
		}
		s.logger.Error("Login lookup failed", zap.Error(err))
		return nil, auth.Token{}, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(user.PasswordHash, input.Password) {
		s.logger.Warn("Login failed: wrong password", zap.String("user_id", user.ID))
		return nil, auth.Token{}, ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.ID, user.TenantID)
	if err != nil {
		return nil, auth.Token{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}
