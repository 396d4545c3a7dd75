package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/repository"
)

const tagColumns = `id, user_id, name, color, created_at, updated_at`

func scanTag(s scanner) (model.Tag, error) {
	var t model.Tag
	err := s.Scan(&t.ID, &t.UserID, &t.Name, &t.Color, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (x *queries) CreateTag(ctx context.Context, userID int64, in model.TagInput) (*model.Tag, error) {
	now := x.timestamp()
	t := &model.Tag{UserID: userID, Name: in.Name, Color: in.Color, CreatedAt: now, UpdatedAt: now}

	err := x.queryRow(ctx,
		`INSERT INTO tags (user_id, name, color, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		userID, in.Name, in.Color, now, now,
	).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: inserting tag: %w", err)
	}
	return t, nil
}

func (x *queries) GetTag(ctx context.Context, userID, tagID int64) (*model.Tag, error) {
	q := `SELECT ` + tagColumns + ` FROM tags WHERE id = ?`
	args := []any{tagID}
	if userID != repository.AllOwners {
		q += ` AND user_id = ?`
		args = append(args, userID)
	}

	t, err := scanTag(x.queryRow(ctx, q, args...))
	if err != nil {
		return nil, notFoundOr(err, "tag", tagID, "getting tag")
	}
	return &t, nil
}

func (x *queries) ListTags(ctx context.Context, userID int64) ([]model.Tag, error) {
	q := `SELECT ` + tagColumns + ` FROM tags`
	var args []any
	if userID != repository.AllOwners {
		q += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY name, id`

	rows, err := x.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing tags: %w", err)
	}
	tags, err := collect(rows, scanTag)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: scanning tags: %w", err)
	}
	return tags, nil
}

// DeleteTag removes the tag and, by cascade, its media links.
func (x *queries) DeleteTag(ctx context.Context, userID, tagID int64) error {
	res, err := x.exec(ctx, `DELETE FROM tags WHERE id = ? AND user_id = ?`, tagID, userID)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting tag %d: %w", tagID, err)
	}
	return expectOneRow(res, "tag", tagID)
}

// =========================================================================
// MEDIA TAGS
// =========================================================================

const mediaTagColumns = `mt.id, mt.tag_id, mt.media_uri, mt.media_type, mt.created_at, mt.updated_at`

// mediaTagUpsert has no update branch: linking twice keeps the first row.
var mediaTagUpsert = upsert{
	table:   "media_tags",
	key:     []string{"tag_id", "media_uri", "media_type"},
	columns: []string{"tag_id", "media_uri", "media_type", "created_at", "updated_at"},
}

func scanMediaTag(s scanner) (model.MediaTag, error) {
	var mt model.MediaTag
	err := s.Scan(&mt.ID, &mt.TagID, &mt.MediaURI, &mt.MediaType, &mt.CreatedAt, &mt.UpdatedAt)
	return mt, err
}

func (x *queries) loadMediaTag(ctx context.Context, where string, args ...any) (*model.MediaTag, error) {
	mt, err := scanMediaTag(x.queryRow(ctx, `SELECT `+mediaTagColumns+` FROM media_tags mt WHERE `+where, args...))
	if err != nil {
		return nil, notFoundOr(err, "media tag", keyString(args), "loading media tag")
	}
	return &mt, nil
}

// LinkMediaTag does not check who owns in.TagID; callers do.
func (x *queries) LinkMediaTag(ctx context.Context, in model.MediaTagInput) (*model.MediaTag, error) {
	now := x.timestamp()
	return run(ctx, x, mediaTagUpsert,
		[]any{in.TagID, in.MediaURI, string(in.MediaType), now, now},
		[]any{in.TagID, in.MediaURI, string(in.MediaType)},
		x.loadMediaTag,
	)
}

// ListMediaTags returns links whose tag belongs to userID (every link for
// repository.AllOwners), narrowed by the non-zero fields of filter.
func (x *queries) ListMediaTags(ctx context.Context, userID int64, filter model.MediaTagFilter) ([]model.MediaTag, error) {
	var (
		where []string
		args  []any
	)
	if userID != repository.AllOwners {
		where = append(where, "t.user_id = ?")
		args = append(args, userID)
	}
	if filter.TagID != 0 {
		where = append(where, "mt.tag_id = ?")
		args = append(args, filter.TagID)
	}
	if filter.MediaURI != "" {
		where = append(where, "mt.media_uri = ?")
		args = append(args, filter.MediaURI)
	}
	if filter.MediaType != "" {
		where = append(where, "mt.media_type = ?")
		args = append(args, string(filter.MediaType))
	}

	q := `SELECT ` + mediaTagColumns + ` FROM media_tags mt JOIN tags t ON t.id = mt.tag_id`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY mt.id`

	rows, err := x.query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing media tags: %w", err)
	}
	links, err := collect(rows, scanMediaTag)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: scanning media tags: %w", err)
	}
	return links, nil
}

// DeleteMediaTag only matches links whose tag userID owns, so a link under
// someone else's tag looks exactly like a missing one.
func (x *queries) DeleteMediaTag(ctx context.Context, userID, mediaTagID int64) error {
	res, err := x.exec(ctx,
		`DELETE FROM media_tags
		 WHERE id = ? AND tag_id IN (SELECT id FROM tags WHERE user_id = ?)`,
		mediaTagID, userID)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting media tag %d: %w", mediaTagID, err)
	}
	return expectOneRow(res, "media tag", mediaTagID)
}
