package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"taskManager/internal/logger"
	"taskManager/internal/models/user"
	rep "taskManager/internal/repository"

	"go.uber.org/zap"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 6
)

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthResult struct {
	Token string
	User  *user.User
}

type AuthService struct {
	users     UserRepository
	passwords PasswordHasher
	tokens    TokenIssuer
}

func NewAuthService(users UserRepository, passwords PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, NewValidationError("username",
			fmt.Sprintf("must be between %d and %d characters", minUsernameLength, maxUsernameLength))
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, NewValidationError("email", "must be a valid email address")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, NewValidationError("password",
			fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	u := &user.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, rep.ErrAlreadyExists) {
			return nil, NewBusinessError(CodeConflict, "username or email is already taken",
				ToDetail("username", username))
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	logger.Info("Service: user registered", zap.Int64("user_id", u.ID), zap.String("username", username))
	return s.issue(u)
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: login for unknown user", zap.String("username", username))
			return nil, NewUnauthenticated("invalid username or password")
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if err := s.passwords.Compare(u.PasswordHash, password); err != nil {
		logger.Info("Service: login with wrong password", zap.String("username", username))
		return nil, NewUnauthenticated("invalid username or password")
	}

	return s.issue(u)
}

func (s *AuthService) issue(u *user.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(u.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{Token: token, User: u}, nil
}
