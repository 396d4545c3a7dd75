package sqlstore

import (
	"context"
	"fmt"

	"github.com/sakif/mediaplay-sync/internal/model"
)

// =========================================================================
// SETTINGS
// =========================================================================

const settingColumns = `id, user_id, theme_mode, playback_speed, auto_resume, created_at, updated_at`

var settingUpsert = upsert{
	table:   "settings",
	key:     []string{"user_id"},
	columns: []string{"user_id", "theme_mode", "playback_speed", "auto_resume", "created_at", "updated_at"},
	set:     overwrite("theme_mode", "playback_speed", "auto_resume", "updated_at"),
}

// settingEnsure inserts defaults only when the user has no row yet.
var settingEnsure = upsert{
	table:   settingUpsert.table,
	key:     settingUpsert.key,
	columns: settingUpsert.columns,
}

func scanSetting(s scanner) (model.Setting, error) {
	var st model.Setting
	err := s.Scan(&st.ID, &st.UserID, &st.ThemeMode, &st.PlaybackSpeed, &st.AutoResume, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}

func (x *queries) loadSetting(ctx context.Context, where string, args ...any) (*model.Setting, error) {
	st, err := scanSetting(x.queryRow(ctx, `SELECT `+settingColumns+` FROM settings WHERE `+where, args...))
	if err != nil {
		return nil, notFoundOr(err, "settings", keyString(args), "loading settings")
	}
	return &st, nil
}

func (x *queries) GetSetting(ctx context.Context, userID int64) (*model.Setting, error) {
	return x.loadSetting(ctx, `user_id = ?`, userID)
}

func (x *queries) ListSettings(ctx context.Context) ([]model.Setting, error) {
	rows, err := x.query(ctx, `SELECT `+settingColumns+` FROM settings ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing settings: %w", err)
	}
	out, err := collect(rows, scanSetting)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: scanning settings: %w", err)
	}
	return out, nil
}

func (x *queries) UpsertSetting(ctx context.Context, userID int64, in model.SettingInput) (*model.Setting, error) {
	now := x.timestamp()
	return run(ctx, x, settingUpsert,
		[]any{userID, in.ThemeMode, in.PlaybackSpeed, in.AutoResume, now, now},
		[]any{userID},
		x.loadSetting,
	)
}

func (x *queries) EnsureSetting(ctx context.Context, userID int64) (*model.Setting, error) {
	def := model.DefaultSettingInput()
	now := x.timestamp()
	return run(ctx, x, settingEnsure,
		[]any{userID, def.ThemeMode, def.PlaybackSpeed, def.AutoResume, now, now},
		[]any{userID},
		x.loadSetting,
	)
}

// =========================================================================
// STATISTICS
// =========================================================================

const statisticsColumns = `id, user_id, total_play_count, total_listen_time_ms, favorite_count, playlist_count, created_at, updated_at`

// statisticsUpsert overwrites every counter with the client's values; the
// last write wins.
var statisticsUpsert = upsert{
	table: "statistics",
	key:   []string{"user_id"},
	columns: []string{"user_id", "total_play_count", "total_listen_time_ms", "favorite_count", "playlist_count",
		"created_at", "updated_at"},
	set: overwrite("total_play_count", "total_listen_time_ms", "favorite_count", "playlist_count", "updated_at"),
}

var statisticsEnsure = upsert{
	table:   statisticsUpsert.table,
	key:     statisticsUpsert.key,
	columns: statisticsUpsert.columns,
}

func scanStatistics(s scanner) (model.Statistics, error) {
	var st model.Statistics
	err := s.Scan(&st.ID, &st.UserID, &st.TotalPlayCount, &st.TotalListenTimeMS, &st.FavoriteCount, &st.PlaylistCount,
		&st.CreatedAt, &st.UpdatedAt)
	return st, err
}

func (x *queries) loadStatistics(ctx context.Context, where string, args ...any) (*model.Statistics, error) {
	st, err := scanStatistics(x.queryRow(ctx, `SELECT `+statisticsColumns+` FROM statistics WHERE `+where, args...))
	if err != nil {
		return nil, notFoundOr(err, "statistics", keyString(args), "loading statistics")
	}
	return &st, nil
}

func (x *queries) GetStatistics(ctx context.Context, userID int64) (*model.Statistics, error) {
	return x.loadStatistics(ctx, `user_id = ?`, userID)
}

func (x *queries) ListStatistics(ctx context.Context) ([]model.Statistics, error) {
	rows, err := x.query(ctx, `SELECT `+statisticsColumns+` FROM statistics ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing statistics: %w", err)
	}
	out, err := collect(rows, scanStatistics)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: scanning statistics: %w", err)
	}
	return out, nil
}

func (x *queries) UpsertStatistics(ctx context.Context, userID int64, in model.StatisticsInput) (*model.Statistics, error) {
	now := x.timestamp()
	return run(ctx, x, statisticsUpsert,
		[]any{userID, in.TotalPlayCount, in.TotalListenTimeMS, in.FavoriteCount, in.PlaylistCount, now, now},
		[]any{userID},
		x.loadStatistics,
	)
}

func (x *queries) EnsureStatistics(ctx context.Context, userID int64) (*model.Statistics, error) {
	now := x.timestamp()
	return run(ctx, x, statisticsEnsure,
		[]any{userID, 0, 0, 0, 0, now, now},
		[]any{userID},
		x.loadStatistics,
	)
}
