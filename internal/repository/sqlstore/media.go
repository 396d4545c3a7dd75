package sqlstore

import (
	"context"
	"fmt"

	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/repository"
)

// =========================================================================
// FAVORITES
// =========================================================================

const favoriteColumns = `id, user_id, media_uri, media_type, title, mime_type, duration_ms, created_at, updated_at`

var favoriteUpsert = upsert{
	table:   "favorites",
	key:     []string{"user_id", "media_uri", "media_type"},
	columns: []string{"user_id", "media_uri", "media_type", "title", "mime_type", "duration_ms", "created_at", "updated_at"},
	set:     overwrite("title", "mime_type", "duration_ms", "updated_at"),
}

func scanFavorite(s scanner) (model.Favorite, error) {
	var f model.Favorite
	err := s.Scan(&f.ID, &f.UserID, &f.MediaURI, &f.MediaType, &f.Title, &f.MimeType, &f.DurationMS, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (x *queries) loadFavorite(ctx context.Context, where string, args ...any) (*model.Favorite, error) {
	f, err := scanFavorite(x.queryRow(ctx, `SELECT `+favoriteColumns+` FROM favorites WHERE `+where, args...))
	if err != nil {
		return nil, notFoundOr(err, "favorite", keyString(args), "loading favorite")
	}
	return &f, nil
}

func (x *queries) UpsertFavorite(ctx context.Context, userID int64, in model.FavoriteInput) (*model.Favorite, error) {
	now := x.timestamp()
	return run(ctx, x, favoriteUpsert,
		[]any{userID, in.MediaURI, string(in.MediaType), in.Title, in.MimeType, in.DurationMS, now, now},
		[]any{userID, in.MediaURI, string(in.MediaType)},
		x.loadFavorite,
	)
}

// ListFavorites returns the user's favorites newest first, or every
// favorite for repository.AllOwners.
func (x *queries) ListFavorites(ctx context.Context, userID int64) ([]model.Favorite, error) {
	q := `SELECT ` + favoriteColumns + ` FROM favorites`
	var args []any
	if userID != repository.AllOwners {
		q += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := x.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing favorites: %w", err)
	}
	favs, err := collect(rows, scanFavorite)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: scanning favorites: %w", err)
	}
	return favs, nil
}

func (x *queries) DeleteFavorite(ctx context.Context, userID int64, key model.MediaKey) error {
	res, err := x.exec(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND media_uri = ? AND media_type = ?`,
		userID, key.MediaURI, string(key.MediaType))
	if err != nil {
		return fmt.Errorf("sqlstore: deleting favorite: %w", err)
	}
	return expectOneRow(res, "favorite", key.MediaURI)
}

// =========================================================================
// HISTORY
// =========================================================================

const historyColumns = `id, user_id, media_uri, media_type, title, mime_type, duration_ms, last_position_ms, play_count, last_played, created_at, updated_at`

// historyUpsert bumps the counter on every hit. play_count is inserted as 1
// and is never taken from the caller.
var historyUpsert = upsert{
	table: "history",
	key:   []string{"user_id", "media_uri", "media_type"},
	columns: []string{"user_id", "media_uri", "media_type", "title", "mime_type", "duration_ms",
		"last_position_ms", "play_count", "last_played", "created_at", "updated_at"},
	set: append(
		overwrite("title", "mime_type", "duration_ms", "last_position_ms", "last_played", "updated_at"),
		"play_count = history.play_count + 1",
	),
}

func scanHistory(s scanner) (model.HistoryItem, error) {
	var h model.HistoryItem
	err := s.Scan(&h.ID, &h.UserID, &h.MediaURI, &h.MediaType, &h.Title, &h.MimeType, &h.DurationMS,
		&h.LastPositionMS, &h.PlayCount, &h.LastPlayed, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

func (x *queries) loadHistory(ctx context.Context, where string, args ...any) (*model.HistoryItem, error) {
	h, err := scanHistory(x.queryRow(ctx, `SELECT `+historyColumns+` FROM history WHERE `+where, args...))
	if err != nil {
		return nil, notFoundOr(err, "history item", keyString(args), "loading history item")
	}
	return &h, nil
}

func (x *queries) UpsertHistory(ctx context.Context, userID int64, in model.HistoryInput) (*model.HistoryItem, error) {
	now := x.timestamp()
	return run(ctx, x, historyUpsert,
		[]any{userID, in.MediaURI, string(in.MediaType), in.Title, in.MimeType, in.DurationMS,
			in.LastPositionMS, 1, now, now, now},
		[]any{userID, in.MediaURI, string(in.MediaType)},
		x.loadHistory,
	)
}

// ListHistory returns entries most recently played first.
func (x *queries) ListHistory(ctx context.Context, userID int64) ([]model.HistoryItem, error) {
	q := `SELECT ` + historyColumns + ` FROM history`
	var args []any
	if userID != repository.AllOwners {
		q += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY last_played DESC, id DESC`

	rows, err := x.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing history: %w", err)
	}
	items, err := collect(rows, scanHistory)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: scanning history: %w", err)
	}
	return items, nil
}
