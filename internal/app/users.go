package app

import (
	"fmt"
	"strings"
	"time"

	"phytoguard/internal/util"
	"phytoguard/pkg/auth"
	"phytoguard/pkg/domain"
)

// Signup registers a new account and returns it with a session token.
func (a *App) Signup(email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, "", fmt.Errorf("valid email required")
	}
	_, exists, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, "", ErrEmailTaken
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, "", err
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.CreateUser(user); err != nil {
		return domain.User{}, "", fmt.Errorf("create user: %w", err)
	}
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials and returns the account with a session token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("lookup user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// Authenticate resolves a session token to its account.
func (a *App) Authenticate(token string) (domain.User, error) {
	userID, err := a.tokens.Verify(token)
	if err != nil {
		return domain.User{}, err
	}
	user, ok, err := a.store.GetUserByID(userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

// ListDiseases returns the built-in disease library.
func (a *App) ListDiseases() ([]domain.Disease, error) {
	items, err := a.store.ListDiseases()
	if err != nil {
		return nil, fmt.Errorf("list diseases: %w", err)
	}
	return items, nil
}

// GetDisease returns one library entry.
func (a *App) GetDisease(id string) (domain.Disease, error) {
	d, ok, err := a.store.GetDisease(strings.TrimSpace(id))
	if err != nil {
		return domain.Disease{}, fmt.Errorf("get disease: %w", err)
	}
	if !ok {
		return domain.Disease{}, ErrDiseaseNotFound
	}
	return d, nil
}
