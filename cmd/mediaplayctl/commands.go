package main

import "github.com/urfave/cli/v3"

func mediaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "uri", Usage: "Media URI", Required: true},
		&cli.StringFlag{Name: "type", Usage: "audio or video", Value: "audio"},
		&cli.StringFlag{Name: "title", Usage: "Display title"},
		&cli.StringFlag{Name: "mime", Usage: "MIME type, e.g. audio/mpeg"},
		&cli.Int64Flag{Name: "duration", Usage: "Duration in milliseconds"},
	}
}

func playlistFlag() cli.Flag {
	return &cli.Int64Flag{Name: "playlist", Aliases: []string{"p"}, Usage: "Playlist id (defaults to the saved one)"}
}

func signupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "signup",
		Usage: "Create an account and remember its token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "name", Usage: "Display name (defaults to the part of the email before @)"},
			&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("MEDIAPLAY_PASSWORD")},
		},
		Action: r.Signup,
	}
}

func signinCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "signin",
		Usage: "Sign in and remember the token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "password", Required: true, Sources: cli.EnvVars("MEDIAPLAY_PASSWORD")},
		},
		Action: r.Signin,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the signed-in account",
		Action: r.Whoami,
	}
}

func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check that the server answers",
		Action: r.Health,
	}
}

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List playlists, or the items of one with --playlist",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "playlist", Aliases: []string{"p"}, Usage: "Show this playlist's items"},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:  "create",
				Usage: "Create a playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.BoolFlag{Name: "use", Usage: "Save it as the default playlist"},
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:   "add",
				Usage:  "Add or update an item",
				Flags:  append(mediaFlags(), playlistFlag(), &cli.IntFlag{Name: "position", Usage: "Position in the playlist"}),
				Action: r.PlaylistsAdd,
			},
			{
				Name:  "remove-item",
				Usage: "Remove an item by id",
				Flags: []cli.Flag{
					playlistFlag(),
					&cli.Int64Flag{Name: "item", Required: true, Usage: "Item id"},
				},
				Action: r.PlaylistsRemoveItem,
			},
		},
	}
}

func favoritesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "favorites",
		Aliases: []string{"fav"},
		Usage:   "Favorite operations",
		Commands: []*cli.Command{
			{Name: "list", Usage: "List favorites", Action: r.FavoritesList},
			{Name: "add", Usage: "Add or update a favorite", Flags: mediaFlags(), Action: r.FavoritesAdd},
			{
				Name:  "remove",
				Usage: "Remove a favorite",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "uri", Required: true},
					&cli.StringFlag{Name: "type", Value: "audio"},
				},
				Action: r.FavoritesRemove,
			},
		},
	}
}

func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Play history operations",
		Commands: []*cli.Command{
			{Name: "list", Usage: "List play history, most recent first", Action: r.HistoryList},
			{
				Name:   "record",
				Usage:  "Record a play",
				Flags:  append(mediaFlags(), &cli.Int64Flag{Name: "position-ms", Usage: "Resume position in milliseconds"}),
				Action: r.HistoryRecord,
			},
		},
	}
}

func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Add every track of a TOML track list to a playlist",
		Flags: []cli.Flag{
			playlistFlag(),
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "Track list ([[track]] tables)"},
			&cli.FloatFlag{Name: "rate", Value: 5, Usage: "Requests per second (0 = unlimited)"},
		},
		Action: r.Import,
	}
}
