// Package client is a typed HTTP client for the mediaplay sync API.
//
// The bearer token is attached by an oauth2 transport built from a static
// token source, so every call made after SetToken is authenticated.
// Requests are throttled by an optional rate limiter that bulk operations
// such as Import rely on.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/sakif/mediaplay-sync/internal/model"
)

const defaultTimeout = 30 * time.Second

// Client talks to one server. It is safe for concurrent use once
// configured; SetToken must not race with requests.
type Client struct {
	baseURL *url.URL
	base    *http.Client
	http    *http.Client
	limiter *rate.Limiter
	token   string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used under the auth transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.base = hc }
}

// WithToken starts the client with a saved access token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithRateLimit allows at most perSecond requests per second with the given
// burst. A non-positive perSecond disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New returns a client for the server at baseURL, e.g. "http://localhost:8000".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("client: parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("client: base url %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		base:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.SetToken(c.token)
	return c, nil
}

// SetToken replaces the access token. An empty token makes the client
// anonymous.
func (c *Client) SetToken(token string) {
	c.token = token
	if token == "" {
		c.http = c.base
		return
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
	c.http = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	c.http.Timeout = c.base.Timeout
}

// Token returns the current access token.
func (c *Client) Token() string {
	return c.token
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("client: server answered %d", e.StatusCode)
	}
	return fmt.Sprintf("client: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// do sends one request. in is JSON encoded when non-nil; out is decoded
// from a 2xx body when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("client: waiting for rate limiter: %w", err)
		}
	}

	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encoding request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("client: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, apiErr)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decoding %s %s: %w", method, path, err)
	}
	return nil
}

// =========================================================================
// AUTH
// =========================================================================

// TokenResult is the body of signup and signin.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Signup registers an account and switches the client to its token.
func (c *Client) Signup(ctx context.Context, in model.SignupInput) (*TokenResult, error) {
	var res TokenResult
	if err := c.do(ctx, http.MethodPost, "/auth/signup", nil, in, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.AccessToken)
	return &res, nil
}

// Signin exchanges credentials for a token and switches the client to it.
func (c *Client) Signin(ctx context.Context, in model.SigninInput) (*TokenResult, error) {
	var res TokenResult
	if err := c.do(ctx, http.MethodPost, "/auth/signin", nil, in, &res); err != nil {
		return nil, err
	}
	c.SetToken(res.AccessToken)
	return &res, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteAccount removes the signed-in account and everything it owns.
func (c *Client) DeleteAccount(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/auth/me", nil, nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

// Health is the body of GET /health.
type Health struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// =========================================================================
// FAVORITES AND HISTORY
// =========================================================================

func (c *Client) Favorites(ctx context.Context) ([]model.Favorite, error) {
	var out []model.Favorite
	err := c.do(ctx, http.MethodGet, "/favorites", nil, nil, &out)
	return out, err
}

func (c *Client) AddFavorite(ctx context.Context, in model.FavoriteInput) (*model.Favorite, error) {
	var f model.Favorite
	if err := c.do(ctx, http.MethodPost, "/favorites", nil, in, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func (c *Client) RemoveFavorite(ctx context.Context, key model.MediaKey) error {
	q := url.Values{"media_uri": {key.MediaURI}, "media_type": {string(key.MediaType)}}
	return c.do(ctx, http.MethodDelete, "/favorites", q, nil, nil)
}

func (c *Client) History(ctx context.Context) ([]model.HistoryItem, error) {
	var out []model.HistoryItem
	err := c.do(ctx, http.MethodGet, "/history", nil, nil, &out)
	return out, err
}

func (c *Client) RecordPlay(ctx context.Context, in model.HistoryInput) (*model.HistoryItem, error) {
	var h model.HistoryItem
	if err := c.do(ctx, http.MethodPost, "/history", nil, in, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// =========================================================================
// PLAYLISTS
// =========================================================================

func (c *Client) Playlists(ctx context.Context) ([]model.Playlist, error) {
	var out []model.Playlist
	err := c.do(ctx, http.MethodGet, "/playlists", nil, nil, &out)
	return out, err
}

// Playlist returns one playlist with its items.
func (c *Client) Playlist(ctx context.Context, id int64) (*model.Playlist, error) {
	var p model.Playlist
	if err := c.do(ctx, http.MethodGet, playlistPath(id), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) CreatePlaylist(ctx context.Context, in model.PlaylistInput) (*model.Playlist, error) {
	var p model.Playlist
	if err := c.do(ctx, http.MethodPost, "/playlists", nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdatePlaylist(ctx context.Context, id int64, in model.PlaylistInput) (*model.Playlist, error) {
	var p model.Playlist
	if err := c.do(ctx, http.MethodPut, playlistPath(id), nil, in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) DeletePlaylist(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, playlistPath(id), nil, nil, nil)
}

func (c *Client) PlaylistItems(ctx context.Context, playlistID int64) ([]model.PlaylistItem, error) {
	var out []model.PlaylistItem
	err := c.do(ctx, http.MethodGet, playlistPath(playlistID)+"/items", nil, nil, &out)
	return out, err
}

// AddPlaylistItem inserts or updates the item with the same media key.
func (c *Client) AddPlaylistItem(ctx context.Context, playlistID int64, in model.PlaylistItemInput) (*model.PlaylistItem, error) {
	var item model.PlaylistItem
	if err := c.do(ctx, http.MethodPost, playlistPath(playlistID)+"/items", nil, in, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) RemovePlaylistItem(ctx context.Context, playlistID, itemID int64) error {
	path := playlistPath(playlistID) + "/items/" + strconv.FormatInt(itemID, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func playlistPath(id int64) string {
	return "/playlists/" + strconv.FormatInt(id, 10)
}

// =========================================================================
// TAGS
// =========================================================================

func (c *Client) Tags(ctx context.Context) ([]model.Tag, error) {
	var out []model.Tag
	err := c.do(ctx, http.MethodGet, "/tags", nil, nil, &out)
	return out, err
}

func (c *Client) CreateTag(ctx context.Context, in model.TagInput) (*model.Tag, error) {
	var t model.Tag
	if err := c.do(ctx, http.MethodPost, "/tags", nil, in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/tags/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

func (c *Client) LinkMedia(ctx context.Context, in model.MediaTagInput) (*model.MediaTag, error) {
	var mt model.MediaTag
	if err := c.do(ctx, http.MethodPost, "/tags/media", nil, in, &mt); err != nil {
		return nil, err
	}
	return &mt, nil
}

func (c *Client) MediaTags(ctx context.Context, filter model.MediaTagFilter) ([]model.MediaTag, error) {
	q := url.Values{}
	if filter.TagID != 0 {
		q.Set("tag_id", strconv.FormatInt(filter.TagID, 10))
	}
	if filter.MediaURI != "" {
		q.Set("media_uri", filter.MediaURI)
	}
	if filter.MediaType != "" {
		q.Set("media_type", string(filter.MediaType))
	}

	var out []model.MediaTag
	err := c.do(ctx, http.MethodGet, "/tags/media", q, nil, &out)
	return out, err
}

func (c *Client) UnlinkMedia(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/tags/media/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// =========================================================================
// SETTINGS AND STATISTICS
// =========================================================================

func (c *Client) Settings(ctx context.Context) (*model.Setting, error) {
	var s model.Setting
	if err := c.do(ctx, http.MethodGet, "/settings", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateSettings(ctx context.Context, in model.SettingInput) (*model.Setting, error) {
	var s model.Setting
	if err := c.do(ctx, http.MethodPost, "/settings", nil, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) Statistics(ctx context.Context) (*model.Statistics, error) {
	var s model.Statistics
	if err := c.do(ctx, http.MethodGet, "/statistics", nil, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) UpdateStatistics(ctx context.Context, in model.StatisticsInput) (*model.Statistics, error) {
	var s model.Statistics
	if err := c.do(ctx, http.MethodPost, "/statistics", nil, in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
