package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaType_UnmarshalJSON(t *testing.T) {
	var in FavoriteInput
	err := json.Unmarshal([]byte(`{"media_uri":"content://1","media_type":"video","title":"Clip"}`), &in)
	require.NoError(t, err)
	assert.Equal(t, MediaVideo, in.MediaType)
	assert.Equal(t, "content://1", in.MediaURI)
	assert.Equal(t, "Clip", in.Title)
	assert.Nil(t, in.MimeType)

	err = json.Unmarshal([]byte(`{"media_uri":"content://1","media_type":"podcast"}`), &in)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"media_type":3}`), &in)
	assert.Error(t, err)
}

func TestParseMediaType(t *testing.T) {
	for _, s := range []string{"audio", "video"} {
		got, err := ParseMediaType(s)
		require.NoError(t, err)
		assert.Equal(t, MediaType(s), got)
	}
	_, err := ParseMediaType("AUDIO")
	assert.Error(t, err)
}

func TestUser_PasswordHashNotSerialized(t *testing.T) {
	b, err := json.Marshal(User{ID: 1, Email: "a@x.com", PasswordHash: "salt:digest"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "salt:digest")
	assert.NotContains(t, string(b), "password")
}

func TestHistoryItem_FlattensEmbeddedFields(t *testing.T) {
	dur := int64(180000)
	b, err := json.Marshal(HistoryItem{
		MediaKey:  MediaKey{MediaURI: "u1", MediaType: MediaAudio},
		MediaInfo: MediaInfo{Title: "Song", DurationMS: &dur},
		PlayCount: 3,
	})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, "u1", m["media_uri"])
	assert.Equal(t, "audio", m["media_type"])
	assert.EqualValues(t, 180000, m["duration_ms"])
	assert.EqualValues(t, 3, m["play_count"])
	assert.Nil(t, m["mime_type"])
}
