package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mediaplay-sync/internal/apperror"
	"github.com/sakif/mediaplay-sync/internal/auth"
	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/repository/sqlstore"
)

func newTestAuthService(t *testing.T) (*AuthService, *sqlstore.Store, *auth.TokenService) {
	t.Helper()
	store := newTestStore(t)
	tokens := newTestTokens(t)
	svc := NewAuthService(store, auth.NewPasswordServiceForTest(), tokens, discardLogger())
	return svc, store, tokens
}

// brokenDefaults fails the best-effort bootstrap steps of signup.
type brokenDefaults struct {
	*sqlstore.Store
}

func (brokenDefaults) EnsureSetting(context.Context, int64) (*model.Setting, error) {
	return nil, errors.New("settings table on fire")
}

func (brokenDefaults) EnsureStatistics(context.Context, int64) (*model.Statistics, error) {
	return nil, errors.New("statistics table on fire")
}

// =========================================================================
// SIGNUP TESTS
// =========================================================================

func TestSignup_IssuesTokenForNewUser(t *testing.T) {
	svc, store, tokens := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, model.SignupInput{Email: "a@x.com", Name: "Ana", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.EqualValues(t, 30*60, res.ExpiresIn)

	claims, err := tokens.Verify(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)

	user, err := store.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.NotEqual(t, "p1", user.PasswordHash)
}

func TestSignup_CreatesDefaults(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, model.SignupInput{Email: "d@x.com", Name: "Test", Password: "pw"})
	require.NoError(t, err)
	user, err := store.GetUserByEmail(ctx, "d@x.com")
	require.NoError(t, err)

	st, err := store.GetSetting(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeLight, st.ThemeMode)

	stats, err := store.GetStatistics(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalPlayCount)
}

func TestSignup_DefaultsFailureIsSwallowed(t *testing.T) {
	store := newTestStore(t)
	svc := NewAuthService(brokenDefaults{store}, auth.NewPasswordServiceForTest(), newTestTokens(t), discardLogger())
	ctx := context.Background()

	res, err := svc.Signup(ctx, model.SignupInput{Email: "b@x.com", Name: "Test", Password: "pw"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)

	user, err := store.GetUserByEmail(ctx, "b@x.com")
	require.NoError(t, err, "account exists without defaults")

	_, err = store.GetSetting(ctx, user.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestSignup_DuplicateEmailConflicts(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, model.SignupInput{Email: "a@x.com", Name: "Test", Password: "p1"})
	require.NoError(t, err)

	for _, pw := range []string{"p1", "something else"} {
		_, err = svc.Signup(ctx, model.SignupInput{Email: "a@x.com", Name: "Test", Password: pw})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	}
}

func TestSignup_Validation(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	tests := []struct {
		name  string
		in    model.SignupInput
		field string
	}{
		{"missing email", model.SignupInput{Password: "pw"}, "email"},
		{"not an email", model.SignupInput{Email: "nope", Name: "Test", Password: "pw"}, "email"},
		{"display name form", model.SignupInput{Email: "Ana <a@x.com>", Name: "Test", Password: "pw"}, "email"},
		{"missing password", model.SignupInput{Email: "a@x.com", Name: "Test"}, "password"},
		{"missing name", model.SignupInput{Email: "a@x.com", Password: "pw"}, "name"},
		{"blank name", model.SignupInput{Email: "a@x.com", Name: "   ", Password: "pw"}, "name"},
		{"long name", model.SignupInput{Email: "a@x.com", Name: strings.Repeat("n", MaxNameLength+1), Password: "pw"}, "name"},
		{"huge password", model.SignupInput{Email: "a@x.com", Name: "Test", Password: string(make([]byte, auth.MaxPasswordLength+1))}, "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tt.in)
			require.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

// =========================================================================
// SIGNIN TESTS
// =========================================================================

func TestSignin_RoundTrip(t *testing.T) {
	svc, _, tokens := newTestAuthService(t)
	ctx := context.Background()

	t1, err := svc.Signup(ctx, model.SignupInput{Email: "a@x.com", Name: "Test", Password: "p1"})
	require.NoError(t, err)

	_, err = svc.Signin(ctx, model.SigninInput{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	t2, err := svc.Signin(ctx, model.SigninInput{Email: "a@x.com", Password: "p1"})
	require.NoError(t, err)

	c1, err := tokens.Verify(t1.AccessToken)
	require.NoError(t, err)
	c2, err := tokens.Verify(t2.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, c1.UserID, c2.UserID)
}

func TestSignin_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, model.SignupInput{Email: "a@x.com", Name: "Test", Password: "p1"})
	require.NoError(t, err)

	_, wrongPw := svc.Signin(ctx, model.SigninInput{Email: "a@x.com", Password: "nope"})
	_, unknown := svc.Signin(ctx, model.SigninInput{Email: "ghost@x.com", Password: "nope"})

	require.ErrorIs(t, wrongPw, apperror.ErrUnauthorized)
	require.ErrorIs(t, unknown, apperror.ErrUnauthorized)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

func TestSignin_EmailIsCaseSensitive(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Signup(ctx, model.SignupInput{Email: "a@x.com", Name: "Test", Password: "p1"})
	require.NoError(t, err)

	_, err = svc.Signin(ctx, model.SigninInput{Email: "A@x.com", Password: "p1"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

// =========================================================================
// ACCOUNT TESTS
// =========================================================================

func TestDeleteAccount(t *testing.T) {
	svc, store, tokens := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Signup(ctx, model.SignupInput{Email: "bye@x.com", Name: "Test", Password: "pw"})
	require.NoError(t, err)
	claims, err := tokens.Verify(res.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, claims.UserID))

	_, err = store.GetUserByID(ctx, claims.UserID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	_, err = store.GetSetting(ctx, claims.UserID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.ErrorIs(t, svc.DeleteAccount(ctx, claims.UserID), apperror.ErrNotFound)
}
