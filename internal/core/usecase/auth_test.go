package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/virlabs/viraat-assistant/internal/core/domain"
)

type userStoreFake struct {
	users []*domain.User
}

func (f *userStoreFake) Create(_ context.Context, user *domain.User) error {
	f.users = append(f.users, user)
	return nil
}

func (f *userStoreFake) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get user", context.Canceled)
}

func (f *userStoreFake) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get user", context.Canceled)
}

type hasherFake struct{}

func (hasherFake) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (hasherFake) Verify(hashed, password string) bool  { return hashed == "hashed:"+password }

type tokenIssuerFake struct{}

func (tokenIssuerFake) Issue(user *domain.User) (string, error) { return "token-" + user.ID, nil }
func (tokenIssuerFake) Parse(token string) (string, error) {
	return strings.TrimPrefix(token, "token-"), nil
}

func newAuthFixture() (*AuthUseCase, *userStoreFake) {
	store := &userStoreFake{}
	return NewAuthUseCase(store, hasherFake{}, tokenIssuerFake{}), store
}

func TestRegisterAndLogin(t *testing.T) {
	uc, store := newAuthFixture()

	user, token, err := uc.Register(context.Background(), "Analyst", "analyst@example.com", "long-enough-pw", "A. Analyst")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Username != "analyst" {
		t.Fatalf("expected lowercased username, got %q", user.Username)
	}
	if token == "" {
		t.Fatalf("expected token")
	}
	if len(store.users) != 1 {
		t.Fatalf("expected 1 stored user, got %d", len(store.users))
	}

	_, token, err = uc.Login(context.Background(), "analyst", "long-enough-pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Fatalf("expected token on login")
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	uc, _ := newAuthFixture()

	_, _, err := uc.Register(context.Background(), "analyst", "analyst@example.com", "short", "")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	uc, _ := newAuthFixture()

	if _, _, err := uc.Register(context.Background(), "analyst", "a@example.com", "long-enough-pw", ""); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	_, _, err := uc.Register(context.Background(), "analyst", "b@example.com", "long-enough-pw", "")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestLoginBadPasswordUnauthorized(t *testing.T) {
	uc, _ := newAuthFixture()

	if _, _, err := uc.Register(context.Background(), "analyst", "a@example.com", "long-enough-pw", ""); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, _, err := uc.Login(context.Background(), "analyst", "wrong-password")
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestLoginUnknownUserUnauthorized(t *testing.T) {
	uc, _ := newAuthFixture()

	_, _, err := uc.Login(context.Background(), "ghost", "whatever-pw")
	if !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
