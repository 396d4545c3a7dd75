package service

import (
	"fmt"
	"strings"

	"github.com/sakif/mediaplay-sync/internal/apperror"
	"github.com/sakif/mediaplay-sync/internal/model"
)

// Validation limits shared by the media-carrying payloads.
const (
	MaxMediaURILength = 2048
	MaxTitleLength    = 500
	MaxMimeTypeLength = 255
	MaxPlaylistName   = 200
	MaxTagName        = 50
	MaxTagColor       = 32
)

// validateMediaKey checks a natural key without rewriting it: the URI is
// stored exactly as sent, so surrounding whitespace is rejected.
func validateMediaKey(k *model.MediaKey) error {
	if strings.TrimSpace(k.MediaURI) == "" {
		return apperror.ValidationFailed("media_uri", "media_uri is required")
	}
	if strings.TrimSpace(k.MediaURI) != k.MediaURI {
		return apperror.ValidationFailed("media_uri", "media_uri must not start or end with whitespace")
	}
	if len(k.MediaURI) > MaxMediaURILength {
		return apperror.ValidationFailed("media_uri", fmt.Sprintf("media_uri must be at most %d characters", MaxMediaURILength))
	}
	if !k.MediaType.Valid() {
		return apperror.ValidationFailed("media_type", `media_type must be "audio" or "video"`)
	}
	return nil
}

func validateMediaInfo(info *model.MediaInfo) error {
	info.Title = strings.TrimSpace(info.Title)
	if info.Title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if len(info.Title) > MaxTitleLength {
		return apperror.ValidationFailed("title", fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	if info.MimeType != nil && len(*info.MimeType) > MaxMimeTypeLength {
		return apperror.ValidationFailed("mime_type", fmt.Sprintf("mime_type must be at most %d characters", MaxMimeTypeLength))
	}
	if info.DurationMS != nil && *info.DurationMS < 0 {
		return apperror.ValidationFailed("duration_ms", "duration_ms must not be negative")
	}
	return nil
}

// validateMedia checks a natural key plus its descriptive fields.
func validateMedia(k *model.MediaKey, info *model.MediaInfo) error {
	if err := validateMediaKey(k); err != nil {
		return err
	}
	return validateMediaInfo(info)
}

func validateName(field, value string, max int) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", apperror.ValidationFailed(field, field+" is required")
	}
	if len(value) > max {
		return "", apperror.ValidationFailed(field, fmt.Sprintf("%s must be at most %d characters", field, max))
	}
	return value, nil
}

func validateID(field string, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed(field, field+" must be a positive integer")
	}
	return nil
}
