package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/mediaplay-sync/internal/apperror"
	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/repository"
)

const MaxPlaylistDescription = 2000

// PlaylistService manages playlists and their items. Every item operation
// first resolves the playlist in the caller's scope, so items of someone
// else's playlist are reported as a missing playlist.
type PlaylistService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewPlaylistService creates a PlaylistService.
func NewPlaylistService(store repository.Store, logger *slog.Logger) *PlaylistService {
	return &PlaylistService{store: store, logger: logger}
}

// List returns the owner's playlists with their items embedded.
func (s *PlaylistService) List(ctx context.Context, owner int64) ([]model.Playlist, error) {
	var playlists []model.Playlist
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		var err error
		if playlists, err = r.ListPlaylists(ctx, owner); err != nil {
			return err
		}
		items, err := r.ListOwnerPlaylistItems(ctx, owner)
		if err != nil {
			return err
		}
		attachItems(playlists, items)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("service/playlist: listing playlists: %w", err)
	}
	return playlists, nil
}

// attachItems distributes items (ordered by playlist, then position) over
// their playlists. Every playlist ends up with a non-nil slice.
func attachItems(playlists []model.Playlist, items []model.PlaylistItem) {
	byID := make(map[int64]int, len(playlists))
	for i := range playlists {
		playlists[i].Items = []model.PlaylistItem{}
		byID[playlists[i].ID] = i
	}
	for _, it := range items {
		if i, ok := byID[it.PlaylistID]; ok {
			playlists[i].Items = append(playlists[i].Items, it)
		}
	}
}

// Get returns one playlist with its items.
func (s *PlaylistService) Get(ctx context.Context, owner, playlistID int64) (*model.Playlist, error) {
	var p *model.Playlist
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		var err error
		if p, err = r.GetPlaylist(ctx, owner, playlistID); err != nil {
			return err
		}
		p.Items, err = r.ListPlaylistItems(ctx, playlistID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/playlist: getting playlist %d: %w", playlistID, err)
	}
	return p, nil
}

func (s *PlaylistService) Create(ctx context.Context, userID int64, in model.PlaylistInput) (*model.Playlist, error) {
	if err := validatePlaylist(&in); err != nil {
		return nil, err
	}

	var p *model.Playlist
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		p, err = r.CreatePlaylist(ctx, userID, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/playlist: creating playlist: %w", err)
	}

	s.logger.Info("playlist created", slog.Int64("user_id", userID), slog.Int64("playlist_id", p.ID))
	return p, nil
}

// Update replaces name and description.
func (s *PlaylistService) Update(ctx context.Context, userID, playlistID int64, in model.PlaylistInput) (*model.Playlist, error) {
	if err := validatePlaylist(&in); err != nil {
		return nil, err
	}

	var p *model.Playlist
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		p, err = r.UpdatePlaylist(ctx, userID, playlistID, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/playlist: updating playlist %d: %w", playlistID, err)
	}
	return p, nil
}

func (s *PlaylistService) Delete(ctx context.Context, userID, playlistID int64) error {
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		return r.DeletePlaylist(ctx, userID, playlistID)
	})
	if err != nil {
		return fmt.Errorf("service/playlist: deleting playlist %d: %w", playlistID, err)
	}
	s.logger.Info("playlist deleted", slog.Int64("user_id", userID), slog.Int64("playlist_id", playlistID))
	return nil
}

// =========================================================================
// ITEMS
// =========================================================================

func (s *PlaylistService) ListItems(ctx context.Context, owner, playlistID int64) ([]model.PlaylistItem, error) {
	var items []model.PlaylistItem
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		if _, err := r.GetPlaylist(ctx, owner, playlistID); err != nil {
			return err
		}
		var err error
		items, err = r.ListPlaylistItems(ctx, playlistID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/playlist: listing items of %d: %w", playlistID, err)
	}
	return items, nil
}

// AddItem adds media to the playlist, or updates the entry already holding
// the same media key. Positions are stored as given: nothing is
// renumbered and duplicates are allowed.
func (s *PlaylistService) AddItem(ctx context.Context, userID, playlistID int64, in model.PlaylistItemInput) (*model.PlaylistItem, error) {
	if err := validateMedia(&in.MediaKey, &in.MediaInfo); err != nil {
		return nil, err
	}
	if in.Position < 0 {
		return nil, apperror.ValidationFailed("position", "position must not be negative")
	}

	var item *model.PlaylistItem
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		if _, err := r.GetPlaylist(ctx, userID, playlistID); err != nil {
			return err
		}
		var err error
		item, err = r.UpsertPlaylistItem(ctx, playlistID, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/playlist: saving item in %d: %w", playlistID, err)
	}
	return item, nil
}

func (s *PlaylistService) RemoveItem(ctx context.Context, userID, playlistID, itemID int64) error {
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		if _, err := r.GetPlaylist(ctx, userID, playlistID); err != nil {
			return err
		}
		return r.DeletePlaylistItem(ctx, playlistID, itemID)
	})
	if err != nil {
		return fmt.Errorf("service/playlist: removing item %d from %d: %w", itemID, playlistID, err)
	}
	return nil
}

func validatePlaylist(in *model.PlaylistInput) error {
	name, err := validateName("name", in.Name, MaxPlaylistName)
	if err != nil {
		return err
	}
	in.Name = name

	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		if len(d) > MaxPlaylistDescription {
			return apperror.ValidationFailed("description",
				fmt.Sprintf("description must be at most %d characters", MaxPlaylistDescription))
		}
		in.Description = &d
	}
	return nil
}
