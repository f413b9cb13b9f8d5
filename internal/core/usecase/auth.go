package usecase

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
	"github.com/virlabs/viraat-assistant/internal/core/ports"
)

const minPasswordChars = 8

type AuthUseCase struct {
	users  ports.UserStore
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
}

func NewAuthUseCase(users ports.UserStore, hasher ports.PasswordHasher, tokens ports.TokenIssuer) *AuthUseCase {
	return &AuthUseCase{users: users, hasher: hasher, tokens: tokens}
}

func (uc *AuthUseCase) Register(ctx context.Context, username, email, password, fullName string) (*domain.User, string, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	email = strings.TrimSpace(strings.ToLower(email))

	if len(username) < 3 {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "register", fmt.Errorf("username must be at least 3 characters"))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "register", fmt.Errorf("invalid email address"))
	}
	if len(password) < minPasswordChars {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "register", fmt.Errorf("password must be at least %d characters", minPasswordChars))
	}

	if _, err := uc.users.GetByUsername(ctx, username); err == nil {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "register", fmt.Errorf("username already taken"))
	} else if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("check username: %w", err)
	}
	if _, err := uc.users.GetByEmail(ctx, email); err == nil {
		return nil, "", domain.WrapError(domain.ErrInvalidInput, "register", fmt.Errorf("email already registered"))
	} else if !domain.IsKind(err, domain.ErrNotFound) {
		return nil, "", fmt.Errorf("check email: %w", err)
	}

	hashed, err := uc.hasher.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
		FullName:     strings.TrimSpace(fullName),
		Role:         "user",
		CreatedAt:    time.Now().UTC(),
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(strings.ToLower(username))

	user, err := uc.users.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, "", domain.WrapError(domain.ErrUnauthorized, "login", fmt.Errorf("invalid credentials"))
		}
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	if !uc.hasher.Verify(user.PasswordHash, password) {
		return nil, "", domain.WrapError(domain.ErrUnauthorized, "login", fmt.Errorf("invalid credentials"))
	}

	token, err := uc.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}
