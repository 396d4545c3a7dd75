package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/mediaplay-sync/internal/apperror"
	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/repository"
)

// MediaService owns favorites and playback history.
type MediaService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewMediaService creates a MediaService.
func NewMediaService(store repository.Store, logger *slog.Logger) *MediaService {
	return &MediaService{store: store, logger: logger}
}

// =========================================================================
// FAVORITES
// =========================================================================

func (s *MediaService) ListFavorites(ctx context.Context, owner int64) ([]model.Favorite, error) {
	var favs []model.Favorite
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		favs, err = r.ListFavorites(ctx, owner)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/media: listing favorites: %w", err)
	}
	return favs, nil
}

// AddFavorite creates the favorite or refreshes the title, MIME type and
// duration of the one already stored under the same media key.
func (s *MediaService) AddFavorite(ctx context.Context, userID int64, in model.FavoriteInput) (*model.Favorite, error) {
	if err := validateMedia(&in.MediaKey, &in.MediaInfo); err != nil {
		return nil, err
	}

	var fav *model.Favorite
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		fav, err = r.UpsertFavorite(ctx, userID, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/media: saving favorite: %w", err)
	}
	return fav, nil
}

func (s *MediaService) RemoveFavorite(ctx context.Context, userID int64, key model.MediaKey) error {
	if err := validateMediaKey(&key); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		return r.DeleteFavorite(ctx, userID, key)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return err
		}
		return fmt.Errorf("service/media: removing favorite: %w", err)
	}
	return nil
}

// =========================================================================
// HISTORY
// =========================================================================

func (s *MediaService) ListHistory(ctx context.Context, owner int64) ([]model.HistoryItem, error) {
	var items []model.HistoryItem
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		items, err = r.ListHistory(ctx, owner)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/media: listing history: %w", err)
	}
	return items, nil
}

// RecordPlay registers one play of a media item. Calling it twice counts
// two plays: it is an event, not a state assignment.
func (s *MediaService) RecordPlay(ctx context.Context, userID int64, in model.HistoryInput) (*model.HistoryItem, error) {
	if err := validateMedia(&in.MediaKey, &in.MediaInfo); err != nil {
		return nil, err
	}
	if in.LastPositionMS < 0 {
		return nil, apperror.ValidationFailed("last_position_ms", "last_position_ms must not be negative")
	}

	var item *model.HistoryItem
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		item, err = r.UpsertHistory(ctx, userID, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/media: recording play: %w", err)
	}

	s.logger.Debug("play recorded",
		slog.Int64("user_id", userID),
		slog.String("media_uri", item.MediaURI),
		slog.Int64("play_count", item.PlayCount),
	)
	return item, nil
}
