package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/BurntSushi/toml"

	"github.com/sakif/mediaplay-sync/internal/model"
)

// Track is one entry of an import file:
//
//	[[track]]
//	uri = "file:///music/a.mp3"
//	type = "audio"
//	title = "A"
//	mime_type = "audio/mpeg"
//	duration_ms = 215000
type Track struct {
	URI        string `toml:"uri"`
	Type       string `toml:"type"`
	Title      string `toml:"title"`
	MimeType   string `toml:"mime_type"`
	DurationMS int64  `toml:"duration_ms"`
	Position   *int   `toml:"position"`
}

type trackFile struct {
	Tracks []Track `toml:"track"`
}

// LoadTracks reads a TOML track list. A track without a type is audio.
func LoadTracks(path string) ([]Track, error) {
	var tf trackFile
	md, err := toml.DecodeFile(path, &tf)
	if err != nil {
		return nil, fmt.Errorf("client: reading track list %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("client: track list %s: unknown key %q", path, undecoded[0].String())
	}
	for i := range tf.Tracks {
		if tf.Tracks[i].Type == "" {
			tf.Tracks[i].Type = string(model.MediaAudio)
		}
	}
	return tf.Tracks, nil
}

// Item converts the track to a playlist item. Tracks without an explicit
// position are placed at index.
func (t Track) Item(index int) (model.PlaylistItemInput, error) {
	kind, err := model.ParseMediaType(t.Type)
	if err != nil {
		return model.PlaylistItemInput{}, err
	}

	in := model.PlaylistItemInput{
		MediaKey:  model.MediaKey{MediaURI: t.URI, MediaType: kind},
		MediaInfo: model.MediaInfo{Title: t.Title},
		Position:  index,
	}
	if t.MimeType != "" {
		mime := t.MimeType
		in.MimeType = &mime
	}
	if t.DurationMS > 0 {
		d := t.DurationMS
		in.DurationMS = &d
	}
	if t.Position != nil {
		in.Position = *t.Position
	}
	return in, nil
}

// ImportResult counts what Import did.
type ImportResult struct {
	Added  int
	Failed []ImportFailure
}

type ImportFailure struct {
	Index int
	URI   string
	Err   error
}

// Import adds tracks to the playlist one request at a time, in order.
// A rejected track is recorded and the import goes on. Cancellation stops
// it, as do 401 and 404 answers since every later track would get the
// same one. Configure WithRateLimit to keep a large import from flooding
// the server.
func (c *Client) Import(ctx context.Context, playlistID int64, tracks []Track, progress func(done, total int)) (ImportResult, error) {
	var res ImportResult

	for i, t := range tracks {
		in, err := t.Item(i)
		if err == nil {
			_, err = c.AddPlaylistItem(ctx, playlistID, in)
		}

		switch {
		case err == nil:
			res.Added++
		case ctx.Err() != nil:
			return res, ctx.Err()
		case StatusOf(err) == http.StatusUnauthorized || StatusOf(err) == http.StatusNotFound:
			return res, err
		default:
			res.Failed = append(res.Failed, ImportFailure{Index: i, URI: t.URI, Err: err})
		}

		if progress != nil {
			progress(i+1, len(tracks))
		}
	}
	return res, nil
}
