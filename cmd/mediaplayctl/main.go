// Command mediaplayctl is a command-line client for the mediaplay sync API.
//
//	mediaplayctl signin --email ana@example.com --password ...
//	mediaplayctl playlists create --name "Road Trip" --use
//	mediaplayctl import --file tracks.toml
//	mediaplayctl playlists list
//
// The token, server URL and default playlist are remembered in
// ~/.config/mediaplay/client.toml.
package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	runner := NewRunner(RunnerOpts{})
	if err := newApp(runner).Run(context.Background(), os.Args); err != nil {
		runner.logger.Fatal("mediaplayctl failed", "err", err)
	}
}

func newApp(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:    "mediaplayctl",
		Usage:   "Manage a mediaplay sync library from the terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the client config file",
				Sources: cli.EnvVars("MEDIAPLAY_CLIENT_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "url",
				Usage:   "Server base URL (overrides the config file)",
				Sources: cli.EnvVars("MEDIAPLAY_URL"),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print raw JSON",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log requests",
			},
		},
		Before:   runner.Before,
		Commands: runner.register(),
	}
}
