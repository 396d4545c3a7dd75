package model

import "time"

// Theme modes accepted by Setting.ThemeMode.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
	ThemeAuto  = "auto"
)

// Setting holds per-user player preferences, one row per user.
type Setting struct {
	ID            int64     `json:"id"             db:"id"`
	UserID        int64     `json:"user_id"        db:"user_id"`
	ThemeMode     string    `json:"theme_mode"     db:"theme_mode"`
	PlaybackSpeed float64   `json:"playback_speed" db:"playback_speed"`
	AutoResume    bool      `json:"auto_resume"    db:"auto_resume"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"     db:"updated_at"`
}

type SettingInput struct {
	ThemeMode     string  `json:"theme_mode"`
	PlaybackSpeed float64 `json:"playback_speed"`
	AutoResume    bool    `json:"auto_resume"`
}

// DefaultSettingInput is what a new account starts with.
func DefaultSettingInput() SettingInput {
	return SettingInput{ThemeMode: ThemeLight, PlaybackSpeed: 1.0, AutoResume: false}
}

// Statistics are client-computed counters. The server stores whatever
// absolute values the client last sent; concurrent updates are last write
// wins.
type Statistics struct {
	ID                int64     `json:"id"                   db:"id"`
	UserID            int64     `json:"user_id"              db:"user_id"`
	TotalPlayCount    int64     `json:"total_play_count"     db:"total_play_count"`
	TotalListenTimeMS int64     `json:"total_listen_time_ms" db:"total_listen_time_ms"`
	FavoriteCount     int64     `json:"favorite_count"       db:"favorite_count"`
	PlaylistCount     int64     `json:"playlist_count"       db:"playlist_count"`
	CreatedAt         time.Time `json:"created_at"           db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"           db:"updated_at"`
}

type StatisticsInput struct {
	TotalPlayCount    int64 `json:"total_play_count"`
	TotalListenTimeMS int64 `json:"total_listen_time_ms"`
	FavoriteCount     int64 `json:"favorite_count"`
	PlaylistCount     int64 `json:"playlist_count"`
}
