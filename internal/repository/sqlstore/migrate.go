package sqlstore

import (
	"context"
	"fmt"
	"strings"
)

// schema is written once with column-type tokens that are replaced per
// dialect:
//
//	$PK     surrogate integer key
//	$TS     timestamp
//	$FLOAT  double precision
//	$BOOL   boolean (INTEGER 0/1 on SQLite)
//
// Every child row references its owner with ON DELETE CASCADE, so deleting
// a user removes favorites, history, playlists (and their items), tags (and
// their media links), settings and statistics in one statement.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            $PK,
		email         TEXT NOT NULL UNIQUE,
		name          TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    $TS NOT NULL,
		updated_at    $TS NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS favorites (
		id          $PK,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		media_uri   TEXT NOT NULL,
		media_type  TEXT NOT NULL CHECK (media_type IN ('audio', 'video')),
		title       TEXT NOT NULL,
		mime_type   TEXT,
		duration_ms BIGINT,
		created_at  $TS NOT NULL,
		updated_at  $TS NOT NULL,
		UNIQUE (user_id, media_uri, media_type)
	)`,

	`CREATE TABLE IF NOT EXISTS history (
		id               $PK,
		user_id          BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		media_uri        TEXT NOT NULL,
		media_type       TEXT NOT NULL CHECK (media_type IN ('audio', 'video')),
		title            TEXT NOT NULL,
		mime_type        TEXT,
		duration_ms      BIGINT,
		last_position_ms BIGINT NOT NULL DEFAULT 0,
		play_count       BIGINT NOT NULL DEFAULT 1,
		last_played      $TS NOT NULL,
		created_at       $TS NOT NULL,
		updated_at       $TS NOT NULL,
		UNIQUE (user_id, media_uri, media_type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_history_user_last_played ON history (user_id, last_played)`,

	`CREATE TABLE IF NOT EXISTS playlists (
		id          $PK,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name        TEXT NOT NULL,
		description TEXT,
		created_at  $TS NOT NULL,
		updated_at  $TS NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_playlists_user_id ON playlists (user_id)`,

	`CREATE TABLE IF NOT EXISTS playlist_items (
		id          $PK,
		playlist_id BIGINT NOT NULL REFERENCES playlists(id) ON DELETE CASCADE,
		media_uri   TEXT NOT NULL,
		media_type  TEXT NOT NULL CHECK (media_type IN ('audio', 'video')),
		title       TEXT NOT NULL,
		mime_type   TEXT,
		duration_ms BIGINT,
		position    INTEGER NOT NULL CHECK (position >= 0),
		created_at  $TS NOT NULL,
		updated_at  $TS NOT NULL,
		UNIQUE (playlist_id, media_uri, media_type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_playlist_items_position ON playlist_items (playlist_id, position)`,

	`CREATE TABLE IF NOT EXISTS tags (
		id         $PK,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		color      TEXT,
		created_at $TS NOT NULL,
		updated_at $TS NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tags_user_id ON tags (user_id)`,

	`CREATE TABLE IF NOT EXISTS media_tags (
		id         $PK,
		tag_id     BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		media_uri  TEXT NOT NULL,
		media_type TEXT NOT NULL CHECK (media_type IN ('audio', 'video')),
		created_at $TS NOT NULL,
		updated_at $TS NOT NULL,
		UNIQUE (tag_id, media_uri, media_type)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_media_tags_media ON media_tags (media_uri, media_type)`,

	`CREATE TABLE IF NOT EXISTS settings (
		id             $PK,
		user_id        BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		theme_mode     TEXT NOT NULL DEFAULT 'light',
		playback_speed $FLOAT NOT NULL DEFAULT 1.0,
		auto_resume    $BOOL NOT NULL,
		created_at     $TS NOT NULL,
		updated_at     $TS NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS statistics (
		id                   $PK,
		user_id              BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		total_play_count     BIGINT NOT NULL DEFAULT 0,
		total_listen_time_ms BIGINT NOT NULL DEFAULT 0,
		favorite_count       BIGINT NOT NULL DEFAULT 0,
		playlist_count       BIGINT NOT NULL DEFAULT 0,
		created_at           $TS NOT NULL,
		updated_at           $TS NOT NULL
	)`,
}

// DATETIME matters on SQLite: modernc converts columns declared DATETIME
// back into time.Time when scanning.
var (
	sqliteTypes = strings.NewReplacer(
		"$PK", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"$TS", "DATETIME",
		"$FLOAT", "REAL",
		"$BOOL", "INTEGER",
	)
	postgresTypes = strings.NewReplacer(
		"$PK", "BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY",
		"$TS", "TIMESTAMPTZ",
		"$FLOAT", "DOUBLE PRECISION",
		"$BOOL", "BOOLEAN",
	)
)

func (d dialect) ddl(stmt string) string {
	if d == dialectPostgres {
		return postgresTypes.Replace(stmt)
	}
	return sqliteTypes.Replace(stmt)
}

// migrate creates every table and index that does not exist yet. It is
// idempotent and runs on every start.
func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, s.d.ddl(stmt)); err != nil {
			name := strings.Fields(stmt)
			return fmt.Errorf("applying %q: %w", strings.Join(name[:min(len(name), 6)], " "), err)
		}
	}
	return nil
}
