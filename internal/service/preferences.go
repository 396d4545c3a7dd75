package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/mediaplay-sync/internal/apperror"
	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/repository"
)

const MaxPlaybackSpeed = 4.0

// PreferencesService serves the one-per-user settings and statistics rows.
// Reads create the row with defaults when it does not exist yet.
type PreferencesService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewPreferencesService creates a PreferencesService.
func NewPreferencesService(store repository.Store, logger *slog.Logger) *PreferencesService {
	return &PreferencesService{store: store, logger: logger}
}

// =========================================================================
// SETTINGS
// =========================================================================

func (s *PreferencesService) Settings(ctx context.Context, userID int64) (*model.Setting, error) {
	var st *model.Setting
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		st, err = r.EnsureSetting(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/preferences: loading settings: %w", err)
	}
	return st, nil
}

// AllSettings lists every user's settings. Only anonymous public reads
// use it.
func (s *PreferencesService) AllSettings(ctx context.Context) ([]model.Setting, error) {
	var out []model.Setting
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		out, err = r.ListSettings(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/preferences: listing settings: %w", err)
	}
	return out, nil
}

func (s *PreferencesService) UpdateSettings(ctx context.Context, userID int64, in model.SettingInput) (*model.Setting, error) {
	switch in.ThemeMode {
	case model.ThemeLight, model.ThemeDark, model.ThemeAuto:
	default:
		return nil, apperror.ValidationFailed("theme_mode", `theme_mode must be "light", "dark" or "auto"`)
	}
	if in.PlaybackSpeed <= 0 || in.PlaybackSpeed > MaxPlaybackSpeed {
		return nil, apperror.ValidationFailed("playback_speed",
			fmt.Sprintf("playback_speed must be greater than 0 and at most %g", MaxPlaybackSpeed))
	}

	var st *model.Setting
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		st, err = r.UpsertSetting(ctx, userID, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/preferences: saving settings: %w", err)
	}
	return st, nil
}

// =========================================================================
// STATISTICS
// =========================================================================

func (s *PreferencesService) Statistics(ctx context.Context, userID int64) (*model.Statistics, error) {
	var st *model.Statistics
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		st, err = r.EnsureStatistics(ctx, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/preferences: loading statistics: %w", err)
	}
	return st, nil
}

func (s *PreferencesService) AllStatistics(ctx context.Context) ([]model.Statistics, error) {
	var out []model.Statistics
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		out, err = r.ListStatistics(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/preferences: listing statistics: %w", err)
	}
	return out, nil
}

// UpdateStatistics stores the client's absolute counters. Two devices
// writing concurrently do not merge: the later write replaces the earlier.
func (s *PreferencesService) UpdateStatistics(ctx context.Context, userID int64, in model.StatisticsInput) (*model.Statistics, error) {
	counters := []struct {
		field string
		value int64
	}{
		{"total_play_count", in.TotalPlayCount},
		{"total_listen_time_ms", in.TotalListenTimeMS},
		{"favorite_count", in.FavoriteCount},
		{"playlist_count", in.PlaylistCount},
	}
	for _, c := range counters {
		if c.value < 0 {
			return nil, apperror.ValidationFailed(c.field, c.field+" must not be negative")
		}
	}

	var st *model.Statistics
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		st, err = r.UpsertStatistics(ctx, userID, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/preferences: saving statistics: %w", err)
	}
	return st, nil
}
