package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/finly-app/expense-service/internal/application/port"
	"github.com/finly-app/expense-service/internal/domain/entity"
)

// ErrInvalidCredentials is returned when login fails. It deliberately does
// not distinguish unknown email from wrong password.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService authenticates users and issues access tokens.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, *entity.User, error)
}

type authServiceImpl struct {
	userRepo port.UserRepository
	tokens   port.TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo port.UserRepository, tokens port.TokenIssuer, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Login verifies the credentials and returns a signed access token.
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (string, *entity.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("Failed login attempt", zap.String("email", email))
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID))
	return token, user, nil
}
