package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/sakif/mediaplay-sync/internal/client"
	"github.com/sakif/mediaplay-sync/internal/model"
)

// =========================================================================
// ACCOUNT
// =========================================================================

func (r *Runner) Signup(ctx context.Context, cmd *cli.Command) error {
	api, err := r.client()
	if err != nil {
		return err
	}

	in := model.SignupInput{Email: cmd.String("email"), Name: cmd.String("name"), Password: cmd.String("password")}
	if in.Name == "" {
		in.Name, _, _ = strings.Cut(in.Email, "@")
	}
	res, err := api.Signup(ctx, in)
	if err != nil {
		return err
	}
	return r.rememberToken(in.Email, res)
}

func (r *Runner) Signin(ctx context.Context, cmd *cli.Command) error {
	api, err := r.client()
	if err != nil {
		return err
	}

	in := model.SigninInput{Email: cmd.String("email"), Password: cmd.String("password")}
	res, err := api.Signin(ctx, in)
	if err != nil {
		return err
	}
	return r.rememberToken(in.Email, res)
}

func (r *Runner) rememberToken(email string, res *client.TokenResult) error {
	r.config.Token = res.AccessToken
	if err := r.save(); err != nil {
		return err
	}
	r.logger.Info("token saved", "path", r.configPath)
	r.writePlain("Signed in as %s (token valid for %s)\n", email, time.Duration(res.ExpiresIn)*time.Second)
	return nil
}

func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireToken(); err != nil {
		return err
	}
	api, err := r.client()
	if err != nil {
		return err
	}

	me, err := api.Me(ctx)
	if err != nil {
		if client.StatusOf(err) == http.StatusUnauthorized {
			return fmt.Errorf("saved token was rejected, sign in again: %w", err)
		}
		return err
	}
	return r.print(me, func() {
		r.writePlain("%s <%s> (id %d)\n", me.Name, me.Email, me.ID)
	})
}

func (r *Runner) Health(ctx context.Context, cmd *cli.Command) error {
	api, err := r.client()
	if err != nil {
		return err
	}

	start := time.Now()
	h, err := api.Health(ctx)
	if err != nil {
		return err
	}
	return r.print(h, func() {
		r.writePlain("%s %s: %s (%s)\n", h.Name, h.Version, h.Status, time.Since(start).Round(time.Millisecond))
	})
}

// =========================================================================
// PLAYLISTS
// =========================================================================

func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	api, err := r.client()
	if err != nil {
		return err
	}

	if id := cmd.Int64("playlist"); id > 0 {
		p, err := api.Playlist(ctx, id)
		if err != nil {
			return err
		}
		return r.print(p, func() {
			r.writePlain("%s (id %d, %d items)\n", p.Name, p.ID, len(p.Items))
			for _, it := range p.Items {
				r.writePlain("  [%d] #%d %s  %s\n", it.Position, it.ID, it.Title, it.MediaURI)
			}
		})
	}

	list, err := api.Playlists(ctx)
	if err != nil {
		return err
	}
	return r.print(list, func() {
		if len(list) == 0 {
			r.writePlain("No playlists.\n")
			return
		}
		for _, p := range list {
			marker := " "
			if p.ID == r.config.PlaylistID {
				marker = "*"
			}
			r.writePlain("%s %4d  %-30s %d items\n", marker, p.ID, p.Name, len(p.Items))
		}
	})
}

func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireToken(); err != nil {
		return err
	}
	api, err := r.client()
	if err != nil {
		return err
	}

	in := model.PlaylistInput{Name: cmd.String("name")}
	if d := cmd.String("description"); d != "" {
		in.Description = &d
	}
	p, err := api.CreatePlaylist(ctx, in)
	if err != nil {
		return err
	}

	if cmd.Bool("use") {
		r.config.PlaylistID = p.ID
		if err := r.save(); err != nil {
			return err
		}
	}
	return r.print(p, func() {
		r.writePlain("Created playlist %q (id %d)\n", p.Name, p.ID)
	})
}

func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireToken(); err != nil {
		return err
	}
	playlistID, err := r.playlistID(cmd)
	if err != nil {
		return err
	}
	key, info, err := mediaFromFlags(cmd)
	if err != nil {
		return err
	}
	api, err := r.client()
	if err != nil {
		return err
	}

	item, err := api.AddPlaylistItem(ctx, playlistID, model.PlaylistItemInput{
		MediaKey:  key,
		MediaInfo: info,
		Position:  cmd.Int("position"),
	})
	if err != nil {
		return err
	}
	return r.print(item, func() {
		r.writePlain("Saved item %d in playlist %d at position %d\n", item.ID, playlistID, item.Position)
	})
}

func (r *Runner) PlaylistsRemoveItem(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireToken(); err != nil {
		return err
	}
	playlistID, err := r.playlistID(cmd)
	if err != nil {
		return err
	}
	api, err := r.client()
	if err != nil {
		return err
	}

	itemID := cmd.Int64("item")
	if err := api.RemovePlaylistItem(ctx, playlistID, itemID); err != nil {
		return err
	}
	r.writePlain("Removed item %d from playlist %d\n", itemID, playlistID)
	return nil
}

// =========================================================================
// FAVORITES AND HISTORY
// =========================================================================

func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	api, err := r.client()
	if err != nil {
		return err
	}

	favs, err := api.Favorites(ctx)
	if err != nil {
		return err
	}
	return r.print(favs, func() {
		for _, f := range favs {
			r.writePlain("%4d  %-6s %-30s %s\n", f.ID, f.MediaType, f.Title, f.MediaURI)
		}
	})
}

func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireToken(); err != nil {
		return err
	}
	key, info, err := mediaFromFlags(cmd)
	if err != nil {
		return err
	}
	api, err := r.client()
	if err != nil {
		return err
	}

	f, err := api.AddFavorite(ctx, model.FavoriteInput{MediaKey: key, MediaInfo: info})
	if err != nil {
		return err
	}
	return r.print(f, func() {
		r.writePlain("Saved favorite %d: %s\n", f.ID, f.Title)
	})
}

func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireToken(); err != nil {
		return err
	}
	kind, err := model.ParseMediaType(cmd.String("type"))
	if err != nil {
		return err
	}
	api, err := r.client()
	if err != nil {
		return err
	}

	key := model.MediaKey{MediaURI: cmd.String("uri"), MediaType: kind}
	if err := api.RemoveFavorite(ctx, key); err != nil {
		return err
	}
	r.writePlain("Removed favorite %s\n", key.MediaURI)
	return nil
}

func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	api, err := r.client()
	if err != nil {
		return err
	}

	items, err := api.History(ctx)
	if err != nil {
		return err
	}
	return r.print(items, func() {
		for _, h := range items {
			r.writePlain("%s  x%-3d %-30s %s\n", h.LastPlayed.Local().Format(time.DateTime), h.PlayCount, h.Title, h.MediaURI)
		}
	})
}

func (r *Runner) HistoryRecord(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireToken(); err != nil {
		return err
	}
	key, info, err := mediaFromFlags(cmd)
	if err != nil {
		return err
	}
	api, err := r.client()
	if err != nil {
		return err
	}

	h, err := api.RecordPlay(ctx, model.HistoryInput{
		MediaKey:       key,
		MediaInfo:      info,
		LastPositionMS: cmd.Int64("position-ms"),
	})
	if err != nil {
		return err
	}
	return r.print(h, func() {
		r.writePlain("Recorded play %d of %s\n", h.PlayCount, h.Title)
	})
}

// =========================================================================
// IMPORT
// =========================================================================

// Import reads a track list and
// adds each track to the playlist, rate limited.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireToken(); err != nil {
		return err
	}
	playlistID, err := r.playlistID(cmd)
	if err != nil {
		return err
	}
	tracks, err := client.LoadTracks(cmd.String("file"))
	if err != nil {
		return err
	}
	api, err := r.client(client.WithRateLimit(cmd.Float("rate"), 1))
	if err != nil {
		return err
	}

	r.logger.Info("importing", "tracks", len(tracks), "playlist", playlistID)
	res, err := api.Import(ctx, playlistID, tracks, func(done, total int) {
		r.logger.Debug("import progress", "done", done, "total", total)
	})
	if err != nil {
		return fmt.Errorf("import stopped after %d tracks: %w", res.Added+len(res.Failed), err)
	}

	if r.asJSON {
		failed := make([]map[string]any, 0, len(res.Failed))
		for _, f := range res.Failed {
			failed = append(failed, map[string]any{"index": f.Index, "uri": f.URI, "error": f.Err.Error()})
		}
		return r.writeJSON(map[string]any{"added": res.Added, "failed": failed})
	}

	r.writePlain("Added %d/%d tracks to playlist %d\n", res.Added, len(tracks), playlistID)
	for _, f := range res.Failed {
		r.writePlain("  failed #%d %s: %v\n", f.Index, f.URI, f.Err)
	}
	return nil
}

// mediaFromFlags reads --uri, --type, --title, --mime and --duration.
// The title defaults to the URI.
func mediaFromFlags(cmd *cli.Command) (model.MediaKey, model.MediaInfo, error) {
	kind, err := model.ParseMediaType(cmd.String("type"))
	if err != nil {
		return model.MediaKey{}, model.MediaInfo{}, err
	}

	key := model.MediaKey{MediaURI: cmd.String("uri"), MediaType: kind}
	info := model.MediaInfo{Title: cmd.String("title")}
	if info.Title == "" {
		info.Title = key.MediaURI
	}
	if m := cmd.String("mime"); m != "" {
		info.MimeType = &m
	}
	if d := cmd.Int64("duration"); d > 0 {
		info.DurationMS = &d
	}
	return key, info, nil
}
