package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sakif/mediaplay-sync/internal/auth"
	"github.com/sakif/mediaplay-sync/internal/config"
	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/repository/sqlstore"
)

// =========================================================================
// SHARED TEST FIXTURES
// =========================================================================
//
// Services are tested against the real store on in-memory SQLite: the
// interesting behavior (natural-key upserts, cascades, scoping) lives in SQL,
// so a hand-written mock would only test itself.

const testSecret = "test-secret-0123456789abcdef"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.Open(context.Background(), config.DatabaseConfig{URL: "sqlite://:memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService(testSecret, 0, "mediaplay-test")
	require.NoError(t, err)
	return ts
}

// addUser inserts a user directly, skipping the signup flow.
func addUser(t *testing.T, s *sqlstore.Store, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email, Name: "Test User", PasswordHash: "00:00"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func audio(uri string) model.MediaKey {
	return model.MediaKey{MediaURI: uri, MediaType: model.MediaAudio}
}

func ptr[T any](v T) *T { return &v }
