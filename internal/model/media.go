package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// MediaType is the kind half of every media natural key.
type MediaType string

const (
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

// Valid reports whether t is one of the two known kinds.
func (t MediaType) Valid() bool {
	return t == MediaAudio || t == MediaVideo
}

// ParseMediaType converts a query-string value.
func ParseMediaType(s string) (MediaType, error) {
	t := MediaType(s)
	if !t.Valid() {
		return "", fmt.Errorf("media type must be %q or %q, got %q", MediaAudio, MediaVideo, s)
	}
	return t, nil
}

// UnmarshalJSON rejects anything but "audio" and "video" at decode time so a
// bad kind never reaches the store.
func (t *MediaType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("media type must be a string: %w", err)
	}
	parsed, err := ParseMediaType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MediaKey is the (uri, kind) pair that identifies a piece of media on the
// client device.
type MediaKey struct {
	MediaURI  string    `json:"media_uri"  db:"media_uri"`
	MediaType MediaType `json:"media_type" db:"media_type"`
}

// MediaInfo carries the descriptive, mutable fields shared by favorites,
// history entries and playlist items.
type MediaInfo struct {
	Title      string  `json:"title"       db:"title"`
	MimeType   *string `json:"mime_type"   db:"mime_type"`
	DurationMS *int64  `json:"duration_ms" db:"duration_ms"`
}

// Favorite is a media item the user starred.
// Natural key: (UserID, MediaURI, MediaType).
type Favorite struct {
	ID     int64 `json:"id"      db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`
	MediaKey
	MediaInfo
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FavoriteInput is the body of POST /favorites.
type FavoriteInput struct {
	MediaKey
	MediaInfo
}

// HistoryItem records plays of one media item.
// Natural key: (UserID, MediaURI, MediaType). PlayCount starts at 1 and
// grows by one on every upsert that hits an existing row.
type HistoryItem struct {
	ID     int64 `json:"id"      db:"id"`
	UserID int64 `json:"user_id" db:"user_id"`
	MediaKey
	MediaInfo
	LastPositionMS int64     `json:"last_position_ms" db:"last_position_ms"`
	PlayCount      int64     `json:"play_count"       db:"play_count"`
	LastPlayed     time.Time `json:"last_played"      db:"last_played"`
	CreatedAt      time.Time `json:"created_at"       db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"       db:"updated_at"`
}

// HistoryInput is the body of POST /history. There is no play_count field:
// the server owns the counter.
type HistoryInput struct {
	MediaKey
	MediaInfo
	LastPositionMS int64 `json:"last_position_ms"`
}
