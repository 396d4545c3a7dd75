// Package repository declares the persistence contracts used by the
// service layer. internal/repository/sqlstore implements them on
// database/sql for SQLite and PostgreSQL.
//
// SCOPES:
// Every query that touches user data takes the owning scope explicitly.
// A zero scope (ownerID == 0) means "every owner" and is only ever passed
// for anonymous reads when public reads are enabled.
//
// NATURAL KEYS:
// Upsert methods decide create-vs-update from the natural key, never from a
// surrogate id:
//
//	Favorite, HistoryItem → (user_id, media_uri, media_type)
//	PlaylistItem          → (playlist_id, media_uri, media_type)
//	MediaTag              → (tag_id, media_uri, media_type)
//	Setting, Statistics   → (user_id)
package repository

import (
	"context"

	"github.com/sakif/mediaplay-sync/internal/model"
)

// AllOwners is the scope for unscoped reads.
const AllOwners int64 = 0

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// DeleteUser removes the user and, by cascade, everything they own.
	DeleteUser(ctx context.Context, id int64) error
}

type FavoriteRepository interface {
	UpsertFavorite(ctx context.Context, userID int64, in model.FavoriteInput) (*model.Favorite, error)
	ListFavorites(ctx context.Context, userID int64) ([]model.Favorite, error)
	DeleteFavorite(ctx context.Context, userID int64, key model.MediaKey) error
}

type HistoryRepository interface {
	// UpsertHistory records one play: inserts with play_count 1, or
	// increments play_count and refreshes last_played on an existing row.
	UpsertHistory(ctx context.Context, userID int64, in model.HistoryInput) (*model.HistoryItem, error)
	ListHistory(ctx context.Context, userID int64) ([]model.HistoryItem, error)
}

type PlaylistRepository interface {
	CreatePlaylist(ctx context.Context, userID int64, in model.PlaylistInput) (*model.Playlist, error)
	GetPlaylist(ctx context.Context, userID, playlistID int64) (*model.Playlist, error)
	ListPlaylists(ctx context.Context, userID int64) ([]model.Playlist, error)
	UpdatePlaylist(ctx context.Context, userID, playlistID int64, in model.PlaylistInput) (*model.Playlist, error)
	DeletePlaylist(ctx context.Context, userID, playlistID int64) error

	UpsertPlaylistItem(ctx context.Context, playlistID int64, in model.PlaylistItemInput) (*model.PlaylistItem, error)
	ListPlaylistItems(ctx context.Context, playlistID int64) ([]model.PlaylistItem, error)
	// ListOwnerPlaylistItems returns the items of every playlist owned by
	// userID (or of all playlists for AllOwners), ordered by playlist then
	// position.
	ListOwnerPlaylistItems(ctx context.Context, userID int64) ([]model.PlaylistItem, error)
	DeletePlaylistItem(ctx context.Context, playlistID, itemID int64) error
}

type TagRepository interface {
	CreateTag(ctx context.Context, userID int64, in model.TagInput) (*model.Tag, error)
	GetTag(ctx context.Context, userID, tagID int64) (*model.Tag, error)
	ListTags(ctx context.Context, userID int64) ([]model.Tag, error)
	DeleteTag(ctx context.Context, userID, tagID int64) error

	// LinkMediaTag is idempotent: an existing link is returned unchanged.
	LinkMediaTag(ctx context.Context, in model.MediaTagInput) (*model.MediaTag, error)
	ListMediaTags(ctx context.Context, userID int64, filter model.MediaTagFilter) ([]model.MediaTag, error)
	// DeleteMediaTag removes a link whose tag belongs to userID.
	DeleteMediaTag(ctx context.Context, userID, mediaTagID int64) error
}

type SettingRepository interface {
	GetSetting(ctx context.Context, userID int64) (*model.Setting, error)
	ListSettings(ctx context.Context) ([]model.Setting, error)
	UpsertSetting(ctx context.Context, userID int64, in model.SettingInput) (*model.Setting, error)
	// EnsureSetting returns the user's settings, creating defaults when
	// absent. Safe under concurrent first reads.
	EnsureSetting(ctx context.Context, userID int64) (*model.Setting, error)
}

type StatisticsRepository interface {
	GetStatistics(ctx context.Context, userID int64) (*model.Statistics, error)
	ListStatistics(ctx context.Context) ([]model.Statistics, error)
	UpsertStatistics(ctx context.Context, userID int64, in model.StatisticsInput) (*model.Statistics, error)
	EnsureStatistics(ctx context.Context, userID int64) (*model.Statistics, error)
}

// Repos is every repository bound to one database session.
type Repos interface {
	UserRepository
	FavoriteRepository
	HistoryRepository
	PlaylistRepository
	TagRepository
	SettingRepository
	StatisticsRepository
}

// Store is the entity store. Its own Repos methods each run in their own
// implicit transaction; WithTx groups several calls into one.
type Store interface {
	Repos

	// WithTx runs fn inside a transaction. The transaction commits when fn
	// returns nil and rolls back when fn returns an error or panics.
	WithTx(ctx context.Context, fn func(r Repos) error) error

	// Ping checks the store round trip.
	Ping(ctx context.Context) error

	Close() error
}
