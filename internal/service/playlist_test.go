package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/mediaplay-sync/internal/apperror"
	"github.com/sakif/mediaplay-sync/internal/model"
	"github.com/sakif/mediaplay-sync/internal/repository"
)

func TestPlaylist_RoadTripScenario(t *testing.T) {
	store := newTestStore(t)
	svc := NewPlaylistService(store, discardLogger())
	ctx := context.Background()
	u := addUser(t, store, "road@x.com")

	p, err := svc.Create(ctx, u.ID, model.PlaylistInput{Name: "Road Trip"})
	require.NoError(t, err)

	in := model.PlaylistItemInput{MediaKey: audio("u1"), MediaInfo: model.MediaInfo{Title: "Song"}, Position: 0}
	first, err := svc.AddItem(ctx, u.ID, p.ID, in)
	require.NoError(t, err)

	in.Title = "Song v2"
	second, err := svc.AddItem(ctx, u.ID, p.ID, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := svc.Get(ctx, u.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Song v2", got.Items[0].Title)
}

func TestPlaylist_ItemsOfOthersAreNotFound(t *testing.T) {
	store := newTestStore(t)
	svc := NewPlaylistService(store, discardLogger())
	ctx := context.Background()
	owner := addUser(t, store, "owner@x.com")
	intruder := addUser(t, store, "intruder@x.com")

	p, err := svc.Create(ctx, owner.ID, model.PlaylistInput{Name: "private"})
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, owner.ID, p.ID, model.PlaylistItemInput{MediaKey: audio("u"), MediaInfo: model.MediaInfo{Title: "t"}})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, intruder.ID, p.ID, model.PlaylistItemInput{MediaKey: audio("v"), MediaInfo: model.MediaInfo{Title: "t"}})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.ListItems(ctx, intruder.ID, p.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	assert.ErrorIs(t, svc.RemoveItem(ctx, intruder.ID, p.ID, item.ID), apperror.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, intruder.ID, p.ID), apperror.ErrNotFound)

	_, err = svc.Update(ctx, intruder.ID, p.ID, model.PlaylistInput{Name: "stolen"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestPlaylist_ListEmbedsOrderedItems(t *testing.T) {
	store := newTestStore(t)
	svc := NewPlaylistService(store, discardLogger())
	ctx := context.Background()
	u := addUser(t, store, "embed@x.com")

	a, err := svc.Create(ctx, u.ID, model.PlaylistInput{Name: "A"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, u.ID, model.PlaylistInput{Name: "empty", Description: ptr("  nothing here ")})
	require.NoError(t, err)

	for uri, pos := range map[string]int{"c": 2, "a": 0, "b": 1} {
		_, err := svc.AddItem(ctx, u.ID, a.ID, model.PlaylistItemInput{MediaKey: audio(uri), MediaInfo: model.MediaInfo{Title: uri}, Position: pos})
		require.NoError(t, err)
	}

	lists, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lists, 2)

	var uris []string
	for _, it := range lists[0].Items {
		uris = append(uris, it.MediaURI)
	}
	assert.Equal(t, []string{"a", "b", "c"}, uris)

	assert.NotNil(t, lists[1].Items)
	assert.Empty(t, lists[1].Items)
	require.NotNil(t, lists[1].Description)
	assert.Equal(t, "nothing here", *lists[1].Description)

	public, err := svc.List(ctx, repository.AllOwners)
	require.NoError(t, err)
	assert.Len(t, public, 2)
}

func TestPlaylist_DuplicatePositionsAllowed(t *testing.T) {
	store := newTestStore(t)
	svc := NewPlaylistService(store, discardLogger())
	ctx := context.Background()
	u := addUser(t, store, "dups@x.com")
	p, err := svc.Create(ctx, u.ID, model.PlaylistInput{Name: "p"})
	require.NoError(t, err)

	for _, uri := range []string{"x", "y"} {
		_, err := svc.AddItem(ctx, u.ID, p.ID, model.PlaylistItemInput{MediaKey: audio(uri), MediaInfo: model.MediaInfo{Title: uri}, Position: 3})
		require.NoError(t, err)
	}

	items, err := svc.ListItems(ctx, u.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Position)
	assert.Equal(t, 3, items[1].Position)
}

func TestPlaylist_Validation(t *testing.T) {
	store := newTestStore(t)
	svc := NewPlaylistService(store, discardLogger())
	ctx := context.Background()
	u := addUser(t, store, "pv@x.com")

	_, err := svc.Create(ctx, u.ID, model.PlaylistInput{Name: "   "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	p, err := svc.Create(ctx, u.ID, model.PlaylistInput{Name: "ok"})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, u.ID, p.ID, model.PlaylistItemInput{MediaKey: audio("u"), MediaInfo: model.MediaInfo{Title: "t"}, Position: -1})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
