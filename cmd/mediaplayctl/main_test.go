package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mediaplay-sync/internal/auth"
	"github.com/sakif/mediaplay-sync/internal/client"
	"github.com/sakif/mediaplay-sync/internal/config"
	"github.com/sakif/mediaplay-sync/internal/repository/sqlstore"
	"github.com/sakif/mediaplay-sync/internal/server"
)

type harness struct {
	t          *testing.T
	url        string
	configPath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := config.Default()
	cfg.Database.URL = "sqlite://:memory:"
	cfg.Auth.SecretKey = "cli-test-secret-0123456789ab"

	store, err := sqlstore.Open(context.Background(), cfg.Database)
	require.NoError(t, err)
	srv, err := server.NewWithStore(cfg, store, slog.New(slog.NewTextHandler(io.Discard, nil)),
		server.WithPasswordService(auth.NewPasswordServiceForTest()))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	return &harness{
		t:          t,
		url:        ts.URL,
		configPath: filepath.Join(t.TempDir(), "client.toml"),
	}
}

// run executes one mediaplayctl invocation and returns its stdout.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	var out bytes.Buffer
	runner := NewRunner(RunnerOpts{Logger: log.New(io.Discard), Output: &out})

	argv := append([]string{"mediaplayctl", "--config", h.configPath, "--url", h.url}, args...)
	err := newApp(runner).Run(context.Background(), argv)
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "mediaplayctl %v", args)
	return out
}

func TestSignupSavesToken(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("signup", "--email", "ana@example.com", "--name", "Ana", "--password", "p1")
	assert.Contains(t, out, "Signed in as ana@example.com")

	cfg, err := client.LoadConfig(h.configPath)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Token)

	out = h.mustRun("whoami")
	assert.Contains(t, out, "Ana <ana@example.com>")
}

func TestSignupDefaultsName(t *testing.T) {
	h := newHarness(t)

	h.mustRun("signup", "--email", "bo@example.com", "--password", "p1")
	out := h.mustRun("whoami")
	assert.Contains(t, out, "bo <bo@example.com>")
}

func TestCommandsNeedSignin(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestHealthCommand(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("health")
	assert.Contains(t, out, "ok")
}

func TestPlaylistWorkflow(t *testing.T) {
	h := newHarness(t)
	h.mustRun("signup", "--email", "ana@example.com", "--password", "p1")

	out := h.mustRun("playlists", "create", "--name", "Road Trip", "--use")
	assert.Contains(t, out, `Created playlist "Road Trip"`)

	cfg, err := client.LoadConfig(h.configPath)
	require.NoError(t, err)
	require.NotZero(t, cfg.PlaylistID)

	h.mustRun("playlists", "add", "--uri", "file:///music/b.mp3", "--title", "B", "--position", "1")
	h.mustRun("playlists", "add", "--uri", "file:///music/a.mp3", "--title", "A")

	out = h.mustRun("playlists", "list")
	assert.Contains(t, out, "Road Trip")
	assert.Contains(t, out, "2 items")

	out = h.mustRun("--json", "playlists", "list")
	assert.Contains(t, out, `"name": "Road Trip"`)
}

func TestFavoritesAndHistoryCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("signup", "--email", "ana@example.com", "--password", "p1")

	h.mustRun("favorites", "add", "--uri", "file:///music/a.mp3", "--title", "A")
	out := h.mustRun("favorites", "list")
	assert.Contains(t, out, "file:///music/a.mp3")

	h.mustRun("favorites", "remove", "--uri", "file:///music/a.mp3")
	out = h.mustRun("favorites", "list")
	assert.NotContains(t, out, "file:///music/a.mp3")

	_, err := h.run("favorites", "add", "--uri", "file:///music/a.mp3", "--type", "podcast")
	assert.Error(t, err)

	h.mustRun("history", "record", "--uri", "file:///music/a.mp3", "--position-ms", "5000")
	out = h.mustRun("history", "record", "--uri", "file:///music/a.mp3")
	assert.Contains(t, out, "Recorded play 2")
}

func TestImportCommand(t *testing.T) {
	h := newHarness(t)
	h.mustRun("signup", "--email", "ana@example.com", "--password", "p1")
	h.mustRun("playlists", "create", "--name", "Imported", "--use")

	tracks := filepath.Join(t.TempDir(), "tracks.toml")
	require.NoError(t, os.WriteFile(tracks, []byte(`
[[track]]
uri = "file:///music/a.mp3"
title = "A"

[[track]]
uri = "file:///music/b.mp3"
title = "B"
`), 0o600))

	out := h.mustRun("import", "--file", tracks, "--rate", "0")
	assert.Contains(t, out, "Added 2/2 tracks")
}

func TestImportWithoutPlaylist(t *testing.T) {
	h := newHarness(t)
	h.mustRun("signup", "--email", "ana@example.com", "--password", "p1")

	_, err := h.run("import", "--file", "tracks.toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no playlist")
}
