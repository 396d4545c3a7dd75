// Package service holds the business rules of the sync backend.
//
// Each service sits between the HTTP handlers and the entity store:
//
//	Handler (HTTP) → Service (validation, ownership, orchestration) → repository.Store
//
// Services know nothing about HTTP. They return apperror values that the
// handler layer maps to status codes, and they run every request's writes
// in one store transaction (repository.Store.WithTx).
//
// SCOPES:
// Methods that read lists take an owner id. repository.AllOwners (0) is
// passed only by the handler layer for anonymous callers, and only when
// public reads are enabled in the config.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/sakif/mediaplay-sync/internal/apperror"
	"github.com/sakif/mediaplay-sync/internal/auth"
	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/repository"
)

const (
	MaxEmailLength = 254
	MaxNameLength  = 100
)

// AuthService runs signup, signin and account lifecycle.
type AuthService struct {
	store     repository.Store
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	store repository.Store,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// TokenResult is what signup and signin hand back to the client.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Signup registers a new account and signs it in.
//
// STEPS:
//  1. Validate the payload.
//  2. Hash the password (argon2id, fresh salt).
//  3. Insert the user. A duplicate email is apperror.ErrConflict, whether
//     it was already there or a concurrent signup won the race.
//  4. Best effort: create default settings and statistics. A failure is
//     logged and swallowed; the account exists without them and they are
//     created on first read instead.
//  5. Issue a token carrying user_id and email.
func (s *AuthService) Signup(ctx context.Context, in model.SignupInput) (*TokenResult, error) {
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	name, err := validateName("name", in.Name, MaxNameLength)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{Email: email, Name: name, PasswordHash: hash}
	err = s.store.WithTx(ctx, func(r repository.Repos) error {
		return r.CreateUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.bootstrapDefaults(ctx, user.ID)

	s.logger.Info("user signed up", slog.Int64("user_id", user.ID))
	return s.issue(user)
}

// bootstrapDefaults creates the default settings and statistics rows. Each
// runs on its own so one failing does not prevent the other.
func (s *AuthService) bootstrapDefaults(ctx context.Context, userID int64) {
	if _, err := s.store.EnsureSetting(ctx, userID); err != nil {
		s.logger.Warn("creating default settings",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
	if _, err := s.store.EnsureStatistics(ctx, userID); err != nil {
		s.logger.Warn("creating default statistics",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// Signin checks email and password. An unknown email and a wrong password
// produce the same apperror.ErrUnauthorized.
func (s *AuthService) Signin(ctx context.Context, in model.SigninInput) (*TokenResult, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, errBadCredentials()
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		// Burn the same hashing work as a real check.
		s.passwords.Verify(in.Password, dummyCredential)
		return nil, errBadCredentials()
	case err != nil:
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if !s.passwords.Verify(in.Password, user.PasswordHash) {
		s.logger.Info("sign-in rejected", slog.Int64("user_id", user.ID))
		return nil, errBadCredentials()
	}
	return s.issue(user)
}

// DeleteAccount removes the user and everything they own.
func (s *AuthService) DeleteAccount(ctx context.Context, userID int64) error {
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		return r.DeleteUser(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service/auth: deleting user %d: %w", userID, err)
	}
	s.logger.Info("account deleted", slog.Int64("user_id", userID))
	return nil
}

func (s *AuthService) issue(user *model.User) (*TokenResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %d: %w", user.ID, err)
	}
	return &TokenResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
	}, nil
}

// dummyCredential is a well-formed credential no password matches.
const dummyCredential = "00000000000000000000000000000000:0000000000000000000000000000000000000000000000000000000000000000"

func errBadCredentials() error {
	return apperror.Unauthorized("incorrect email or password")
}

// validateEmail trims the address and checks it is a bare RFC 5322
// address. The stored value keeps the caller's case.
func validateEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", apperror.ValidationFailed("email", "email is required")
	}
	if len(email) > MaxEmailLength {
		return "", apperror.ValidationFailed("email", fmt.Sprintf("email must be at most %d characters", MaxEmailLength))
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", apperror.ValidationFailed("email", "email is not a valid address")
	}
	return email, nil
}

func validatePassword(pw string) error {
	switch {
	case pw == "":
		return apperror.ValidationFailed("password", "password is required")
	case len(pw) > auth.MaxPasswordLength:
		return apperror.ValidationFailed("password", fmt.Sprintf("password must be at most %d characters", auth.MaxPasswordLength))
	}
	return nil
}
