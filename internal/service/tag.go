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

// TagService manages tags and the links between tags and media.
//
// OWNERSHIP:
// A media link belongs to whoever owns its tag. Linking through a tag
// the caller does not own, or unlinking such a link, reports not-found.
type TagService struct {
	store  repository.Store
	logger *slog.Logger
}

// NewTagService creates a TagService.
func NewTagService(store repository.Store, logger *slog.Logger) *TagService {
	return &TagService{store: store, logger: logger}
}

func (s *TagService) List(ctx context.Context, owner int64) ([]model.Tag, error) {
	var tags []model.Tag
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		tags, err = r.ListTags(ctx, owner)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/tag: listing tags: %w", err)
	}
	return tags, nil
}

func (s *TagService) Create(ctx context.Context, userID int64, in model.TagInput) (*model.Tag, error) {
	name, err := validateName("name", in.Name, MaxTagName)
	if err != nil {
		return nil, err
	}
	in.Name = name
	if in.Color != nil {
		c := strings.TrimSpace(*in.Color)
		if len(c) > MaxTagColor {
			return nil, apperror.ValidationFailed("color", fmt.Sprintf("color must be at most %d characters", MaxTagColor))
		}
		in.Color = &c
	}

	var tag *model.Tag
	err = s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		tag, err = r.CreateTag(ctx, userID, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/tag: creating tag: %w", err)
	}
	return tag, nil
}

// Delete removes the tag together with its media links.
func (s *TagService) Delete(ctx context.Context, userID, tagID int64) error {
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		return r.DeleteTag(ctx, userID, tagID)
	})
	if err != nil {
		return fmt.Errorf("service/tag: deleting tag %d: %w", tagID, err)
	}
	return nil
}

// Link attaches a tag to media. Linking an already linked pair returns the
// existing link.
func (s *TagService) Link(ctx context.Context, userID int64, in model.MediaTagInput) (*model.MediaTag, error) {
	if err := validateID("tag_id", in.TagID); err != nil {
		return nil, err
	}
	if err := validateMediaKey(&in.MediaKey); err != nil {
		return nil, err
	}

	var link *model.MediaTag
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		if _, err := r.GetTag(ctx, userID, in.TagID); err != nil {
			return err
		}
		var err error
		link, err = r.LinkMediaTag(ctx, in)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/tag: linking tag %d: %w", in.TagID, err)
	}
	return link, nil
}

func (s *TagService) ListMediaTags(ctx context.Context, owner int64, filter model.MediaTagFilter) ([]model.MediaTag, error) {
	if filter.MediaType != "" && !filter.MediaType.Valid() {
		return nil, apperror.ValidationFailed("media_type", `media_type must be "audio" or "video"`)
	}

	var links []model.MediaTag
	err := s.store.WithTx(ctx, func(r repository.Repos) (err error) {
		links, err = r.ListMediaTags(ctx, owner, filter)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("service/tag: listing media tags: %w", err)
	}
	return links, nil
}

func (s *TagService) Unlink(ctx context.Context, userID, mediaTagID int64) error {
	err := s.store.WithTx(ctx, func(r repository.Repos) error {
		return r.DeleteMediaTag(ctx, userID, mediaTagID)
	})
	if err != nil {
		return fmt.Errorf("service/tag: unlinking %d: %w", mediaTagID, err)
	}
	return nil
}
