package model

import "time"

// Playlist is an ordered, user-owned collection of media.
type Playlist struct {
	ID          int64          `json:"id"          db:"id"`
	UserID      int64          `json:"user_id"     db:"user_id"`
	Name        string         `json:"name"        db:"name"`
	Description *string        `json:"description" db:"description"`
	CreatedAt   time.Time      `json:"created_at"  db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"  db:"updated_at"`
	Items       []PlaylistItem `json:"items,omitempty"`
}

// PlaylistInput is the body of POST /playlists and PUT /playlists/{id}.
type PlaylistInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// PlaylistItem is one entry of a playlist.
// Natural key: (PlaylistID, MediaURI, MediaType). Position is whatever the
// client sent; duplicates are allowed and nothing is renumbered.
type PlaylistItem struct {
	ID         int64 `json:"id"          db:"id"`
	PlaylistID int64 `json:"playlist_id" db:"playlist_id"`
	MediaKey
	MediaInfo
	Position  int       `json:"position"   db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PlaylistItemInput is the body of POST /playlists/{id}/items.
type PlaylistItemInput struct {
	MediaKey
	MediaInfo
	Position int `json:"position"`
}
