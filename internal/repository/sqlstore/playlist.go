package sqlstore

import (
	"context"
	"fmt"

	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/repository"
)

const playlistColumns = `id, user_id, name, description, created_at, updated_at`

func scanPlaylist(s scanner) (model.Playlist, error) {
	var p model.Playlist
	err := s.Scan(&p.ID, &p.UserID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (x *queries) CreatePlaylist(ctx context.Context, userID int64, in model.PlaylistInput) (*model.Playlist, error) {
	now := x.timestamp()
	p := &model.Playlist{
		UserID:      userID,
		Name:        in.Name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := x.queryRow(ctx,
		`INSERT INTO playlists (user_id, name, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		userID, in.Name, in.Description, now, now,
	).Scan(&p.ID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: inserting playlist: %w", err)
	}
	return p, nil
}

// GetPlaylist returns the playlist if userID owns it. With
// repository.AllOwners the owner is not checked.
func (x *queries) GetPlaylist(ctx context.Context, userID, playlistID int64) (*model.Playlist, error) {
	q := `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ?`
	args := []any{playlistID}
	if userID != repository.AllOwners {
		q += ` AND user_id = ?`
		args = append(args, userID)
	}

	p, err := scanPlaylist(x.queryRow(ctx, q, args...))
	if err != nil {
		return nil, notFoundOr(err, "playlist", playlistID, "getting playlist")
	}
	return &p, nil
}

func (x *queries) ListPlaylists(ctx context.Context, userID int64) ([]model.Playlist, error) {
	q := `SELECT ` + playlistColumns + ` FROM playlists`
	var args []any
	if userID != repository.AllOwners {
		q += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY id`

	rows, err := x.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing playlists: %w", err)
	}
	playlists, err := collect(rows, scanPlaylist)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: scanning playlists: %w", err)
	}
	return playlists, nil
}

func (x *queries) UpdatePlaylist(ctx context.Context, userID, playlistID int64, in model.PlaylistInput) (*model.Playlist, error) {
	res, err := x.exec(ctx,
		`UPDATE playlists SET name = ?, description = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		in.Name, in.Description, x.timestamp(), playlistID, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: updating playlist %d: %w", playlistID, err)
	}
	if err := expectOneRow(res, "playlist", playlistID); err != nil {
		return nil, err
	}
	return x.GetPlaylist(ctx, userID, playlistID)
}

// DeletePlaylist removes the playlist and, by cascade, its items.
func (x *queries) DeletePlaylist(ctx context.Context, userID, playlistID int64) error {
	res, err := x.exec(ctx, `DELETE FROM playlists WHERE id = ? AND user_id = ?`, playlistID, userID)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting playlist %d: %w", playlistID, err)
	}
	return expectOneRow(res, "playlist", playlistID)
}

// =========================================================================
// PLAYLIST ITEMS
// =========================================================================

const playlistItemColumns = `id, playlist_id, media_uri, media_type, title, mime_type, duration_ms, position, created_at, updated_at`

var playlistItemUpsert = upsert{
	table:   "playlist_items",
	key:     []string{"playlist_id", "media_uri", "media_type"},
	columns: []string{"playlist_id", "media_uri", "media_type", "title", "mime_type", "duration_ms", "position", "created_at", "updated_at"},
	set:     overwrite("title", "mime_type", "duration_ms", "position", "updated_at"),
}

func scanPlaylistItem(s scanner) (model.PlaylistItem, error) {
	var it model.PlaylistItem
	err := s.Scan(&it.ID, &it.PlaylistID, &it.MediaURI, &it.MediaType, &it.Title, &it.MimeType, &it.DurationMS,
		&it.Position, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func (x *queries) loadPlaylistItem(ctx context.Context, where string, args ...any) (*model.PlaylistItem, error) {
	it, err := scanPlaylistItem(x.queryRow(ctx, `SELECT `+playlistItemColumns+` FROM playlist_items WHERE `+where, args...))
	if err != nil {
		return nil, notFoundOr(err, "playlist item", keyString(args), "loading playlist item")
	}
	return &it, nil
}

// UpsertPlaylistItem does not check ownership of the playlist; callers do.
func (x *queries) UpsertPlaylistItem(ctx context.Context, playlistID int64, in model.PlaylistItemInput) (*model.PlaylistItem, error) {
	now := x.timestamp()
	return run(ctx, x, playlistItemUpsert,
		[]any{playlistID, in.MediaURI, string(in.MediaType), in.Title, in.MimeType, in.DurationMS, in.Position, now, now},
		[]any{playlistID, in.MediaURI, string(in.MediaType)},
		x.loadPlaylistItem,
	)
}

func (x *queries) ListPlaylistItems(ctx context.Context, playlistID int64) ([]model.PlaylistItem, error) {
	rows, err := x.query(ctx,
		`SELECT `+playlistItemColumns+` FROM playlist_items
		 WHERE playlist_id = ? ORDER BY position, id`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing items of playlist %d: %w", playlistID, err)
	}
	items, err := collect(rows, scanPlaylistItem)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: scanning playlist items: %w", err)
	}
	return items, nil
}

func (x *queries) ListOwnerPlaylistItems(ctx context.Context, userID int64) ([]model.PlaylistItem, error) {
	q := `SELECT pi.id, pi.playlist_id, pi.media_uri, pi.media_type, pi.title, pi.mime_type,
	             pi.duration_ms, pi.position, pi.created_at, pi.updated_at
	      FROM playlist_items pi JOIN playlists p ON p.id = pi.playlist_id`
	var args []any
	if userID != repository.AllOwners {
		q += ` WHERE p.user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY pi.playlist_id, pi.position, pi.id`

	rows, err := x.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing playlist items: %w", err)
	}
	items, err := collect(rows, scanPlaylistItem)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: scanning playlist items: %w", err)
	}
	return items, nil
}

func (x *queries) DeletePlaylistItem(ctx context.Context, playlistID, itemID int64) error {
	res, err := x.exec(ctx, `DELETE FROM playlist_items WHERE id = ? AND playlist_id = ?`, itemID, playlistID)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting playlist item %d: %w", itemID, err)
	}
	return expectOneRow(res, "playlist item", itemID)
}
