package model

import "time"

type Tag struct {
	ID        int64     `json:"id"         db:"id"`
	UserID    int64     `json:"user_id"    db:"user_id"`
	Name      string    `json:"name"       db:"name"`
	Color     *string   `json:"color"      db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type TagInput struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

// MediaTag links a tag to a media item.
// Natural key: (TagID, MediaURI, MediaType).
type MediaTag struct {
	ID    int64 `json:"id"     db:"id"`
	TagID int64 `json:"tag_id" db:"tag_id"`
	MediaKey
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type MediaTagInput struct {
	TagID int64 `json:"tag_id"`
	MediaKey
}

// MediaTagFilter narrows GET /tags/media. Zero values are ignored.
type MediaTagFilter struct {
	TagID     int64
	MediaURI  string
	MediaType MediaType
}
