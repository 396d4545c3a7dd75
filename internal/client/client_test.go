package client_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mediaplay-sync/internal/auth"
	"github.com/sakif/mediaplay-sync/internal/client"
	"github.com/sakif/mediaplay-sync/internal/config"
	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/repository/sqlstore"
	"github.com/sakif/mediaplay-sync/internal/server"
)

// startServer runs the real API on an in-memory store.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.Database.URL = "sqlite://:memory:"
	cfg.Auth.SecretKey = "client-test-secret-0123456789"

	store, err := sqlstore.Open(context.Background(), cfg.Database)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := server.NewWithStore(cfg, store, logger,
		server.WithPasswordService(auth.NewPasswordServiceForTest()))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts
}

func signedIn(t *testing.T, ts *httptest.Server, email string) *client.Client {
	t.Helper()
	c, err := client.New(ts.URL, client.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	_, err = c.Signup(context.Background(), model.SignupInput{Email: email, Name: "Test", Password: "p1"})
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"localhost:8000", "ftp://example.com", "://"} {
		_, err := client.New(raw)
		assert.Error(t, err, raw)
	}
}

func TestSignupSigninMe(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()

	c, err := client.New(ts.URL, client.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	res, err := c.Signup(ctx, model.SignupInput{Email: "ana@example.com", Name: "Ana", Password: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", res.TokenType)
	assert.Equal(t, res.AccessToken, c.Token())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", me.Email)

	other, err := client.New(ts.URL, client.WithHTTPClient(ts.Client()))
	require.NoError(t, err)
	_, err = other.Signin(ctx, model.SigninInput{Email: "ana@example.com", Password: "p1"})
	require.NoError(t, err)

	me, err = other.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana", me.Name)
}

func TestAPIError(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()

	c, err := client.New(ts.URL, client.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	_, err = c.Me(ctx)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, client.StatusOf(err))

	_, err = c.Signin(ctx, model.SigninInput{Email: "nobody@example.com", Password: "x"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "unauthorized", apiErr.Code)
	assert.Empty(t, c.Token())
}

func TestSavedToken(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()
	first := signedIn(t, ts, "ana@example.com")

	c, err := client.New(ts.URL, client.WithHTTPClient(ts.Client()), client.WithToken(first.Token()))
	require.NoError(t, err)

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", me.Email)
}

func TestHealth(t *testing.T) {
	ts := startServer(t)

	c, err := client.New(ts.URL+"/", client.WithHTTPClient(ts.Client()))
	require.NoError(t, err)

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
}

func TestFavoritesAndHistory(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()
	c := signedIn(t, ts, "ana@example.com")

	key := model.MediaKey{MediaURI: "file:///music/a.mp3", MediaType: model.MediaAudio}
	_, err := c.AddFavorite(ctx, model.FavoriteInput{MediaKey: key, MediaInfo: model.MediaInfo{Title: "A"}})
	require.NoError(t, err)

	favs, err := c.Favorites(ctx)
	require.NoError(t, err)
	require.Len(t, favs, 1)
	assert.Equal(t, key, favs[0].MediaKey)

	require.NoError(t, c.RemoveFavorite(ctx, key))
	assert.Equal(t, http.StatusNotFound, client.StatusOf(c.RemoveFavorite(ctx, key)))

	for i := 0; i < 2; i++ {
		_, err = c.RecordPlay(ctx, model.HistoryInput{MediaKey: key, MediaInfo: model.MediaInfo{Title: "A"}})
		require.NoError(t, err)
	}
	hist, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, int64(2), hist[0].PlayCount)
}

func TestPlaylists(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()
	c := signedIn(t, ts, "ana@example.com")

	p, err := c.CreatePlaylist(ctx, model.PlaylistInput{Name: "Road Trip"})
	require.NoError(t, err)

	item, err := c.AddPlaylistItem(ctx, p.ID, model.PlaylistItemInput{
		MediaKey:  model.MediaKey{MediaURI: "file:///music/a.mp3", MediaType: model.MediaAudio},
		MediaInfo: model.MediaInfo{Title: "A"},
	})
	require.NoError(t, err)

	got, err := c.Playlist(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Road Trip", got.Name)
	require.Len(t, got.Items, 1)

	renamed, err := c.UpdatePlaylist(ctx, p.ID, model.PlaylistInput{Name: "Road Trip 2"})
	require.NoError(t, err)
	assert.Equal(t, "Road Trip 2", renamed.Name)

	require.NoError(t, c.RemovePlaylistItem(ctx, p.ID, item.ID))
	items, err := c.PlaylistItems(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, c.DeletePlaylist(ctx, p.ID))
	list, err := c.Playlists(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestTags(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()
	c := signedIn(t, ts, "ana@example.com")

	tag, err := c.CreateTag(ctx, model.TagInput{Name: "chill"})
	require.NoError(t, err)

	key := model.MediaKey{MediaURI: "file:///music/a.mp3", MediaType: model.MediaAudio}
	link, err := c.LinkMedia(ctx, model.MediaTagInput{TagID: tag.ID, MediaKey: key})
	require.NoError(t, err)

	links, err := c.MediaTags(ctx, model.MediaTagFilter{MediaURI: key.MediaURI})
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, link.ID, links[0].ID)

	require.NoError(t, c.UnlinkMedia(ctx, link.ID))
	require.NoError(t, c.DeleteTag(ctx, tag.ID))

	tags, err := c.Tags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestSettingsAndStatistics(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()
	c := signedIn(t, ts, "ana@example.com")

	s, err := c.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ThemeLight, s.ThemeMode)

	s, err = c.UpdateSettings(ctx, model.SettingInput{ThemeMode: model.ThemeDark, PlaybackSpeed: 1.5})
	require.NoError(t, err)
	assert.Equal(t, 1.5, s.PlaybackSpeed)

	st, err := c.UpdateStatistics(ctx, model.StatisticsInput{TotalPlayCount: 12})
	require.NoError(t, err)
	assert.Equal(t, int64(12), st.TotalPlayCount)

	st, err = c.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(12), st.TotalPlayCount)
}

func TestDeleteAccount(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()
	c := signedIn(t, ts, "ana@example.com")
	token := c.Token()

	require.NoError(t, c.DeleteAccount(ctx))
	assert.Empty(t, c.Token())

	c.SetToken(token)
	_, err := c.Me(ctx)
	assert.Equal(t, http.StatusUnauthorized, client.StatusOf(err))
}

func TestRateLimit_HonorsContext(t *testing.T) {
	ts := startServer(t)

	// one request per minute: the burst allows the first call only
	c, err := client.New(ts.URL, client.WithHTTPClient(ts.Client()), client.WithRateLimit(1.0/60, 1))
	require.NoError(t, err)

	_, err = c.Health(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Health(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

// =========================================================================
// CONFIG AND IMPORT
// =========================================================================

func TestConfig_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := client.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, client.DefaultBaseURL, cfg.BaseURL)
	assert.Empty(t, cfg.Token)
}

func TestConfig_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mediaplay", "client.toml")
	want := client.Config{BaseURL: "http://sync.local:8000", Token: "abc", PlaylistID: 3}

	require.NoError(t, client.SaveConfig(path, want))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := client.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	require.NoError(t, os.WriteFile(path, []byte("base_url = \n"), 0o600))

	_, err := client.LoadConfig(path)
	assert.Error(t, err)
}

const trackList = `
[[track]]
uri = "file:///music/a.mp3"
title = "A"
mime_type = "audio/mpeg"
duration_ms = 215000

[[track]]
uri = "file:///music/b.mp4"
type = "video"
title = "B"
position = 7

[[track]]
uri = "file:///music/c.mp3"
type = "podcast"
title = "C"
`

func TestLoadTracks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracks.toml")
	require.NoError(t, os.WriteFile(path, []byte(trackList), 0o600))

	tracks, err := client.LoadTracks(path)
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, "audio", tracks[0].Type)

	in, err := tracks[0].Item(0)
	require.NoError(t, err)
	require.NotNil(t, in.DurationMS)
	assert.Equal(t, int64(215000), *in.DurationMS)
	assert.Equal(t, 0, in.Position)

	in, err = tracks[1].Item(1)
	require.NoError(t, err)
	assert.Equal(t, model.MediaVideo, in.MediaType)
	assert.Equal(t, 7, in.Position)

	_, err = tracks[2].Item(2)
	assert.Error(t, err)
}

func TestLoadTracks_UnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracks.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[track]]\nurl = \"x\"\n"), 0o600))

	_, err := client.LoadTracks(path)
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()
	c := signedIn(t, ts, "ana@example.com")

	p, err := c.CreatePlaylist(ctx, model.PlaylistInput{Name: "Imported"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "tracks.toml")
	require.NoError(t, os.WriteFile(path, []byte(trackList), 0o600))
	tracks, err := client.LoadTracks(path)
	require.NoError(t, err)

	var calls int
	res, err := c.Import(ctx, p.ID, tracks, func(done, total int) {
		calls++
		assert.Equal(t, 3, total)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Added)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "file:///music/c.mp3", res.Failed[0].URI)
	assert.Equal(t, 3, calls)

	items, err := c.PlaylistItems(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].Title)
	assert.Equal(t, "B", items[1].Title)
}

func TestImport_StopsOnMissingPlaylist(t *testing.T) {
	ts := startServer(t)
	c := signedIn(t, ts, "ana@example.com")

	tracks := []client.Track{{URI: "file:///a.mp3", Type: "audio", Title: "A"}, {URI: "file:///b.mp3", Type: "audio", Title: "B"}}
	res, err := c.Import(context.Background(), 999, tracks, nil)
	assert.Equal(t, http.StatusNotFound, client.StatusOf(err))
	assert.Zero(t, res.Added)
	assert.Empty(t, res.Failed)
}
