package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"go.uber.org/zap"

	"github.com/rl1809/artisan-market/internal/auth"
	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/port"
)

const minPasswordLength = 6

type RegisterInput struct {
	Username string
	Password string
	Role     domain.Role
	FullName string
	Email    string
	Phone    string
}

type AccountService struct {
	users  port.UserRepository
	tokens *auth.TokenIssuer
	logger *zap.Logger
}

func NewAccountService(users port.UserRepository, tokens *auth.TokenIssuer, logger *zap.Logger) *AccountService {
	return &AccountService{users: users, tokens: tokens, logger: logger}
}

// Register creates the user and returns it with a fresh access token.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (domain.User, string, error) {
	if err := validateRegistration(in); err != nil {
		return domain.User{}, "", err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, domain.User{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		FullName:     in.FullName,
		Email:        in.Email,
		Phone:        in.Phone,
	})
	if errors.Is(err, port.ErrConflict) {
		return domain.User{}, "", ErrUsernameTaken
	}
	if err != nil {
		return domain.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user registered", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, token, nil
}

func (s *AccountService) Login(ctx context.Context, username, password string) (domain.User, string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, port.ErrNotFound) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, "", fmt.Errorf("get user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", fmt.Errorf("check password: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	return user, token, nil
}

func (s *AccountService) Me(ctx context.Context, userID int64) (domain.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, port.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AccountService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func validateRegistration(in RegisterInput) error {
	switch {
	case in.Username == "":
		return fmt.Errorf("%w: username is required", ErrInvalidInput)
	case !in.Role.Valid():
		return fmt.Errorf("%w: role must be artisan, buyer, or admin", ErrInvalidInput)
	case len(in.Password) < minPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	case in.FullName == "":
		return fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return nil
}
