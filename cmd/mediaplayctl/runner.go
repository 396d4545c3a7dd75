package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/sakif/mediaplay-sync/internal/client"
)

// Runner holds what every command needs and implements the command
// actions.
type Runner struct {
	configPath string
	config     client.Config
	logger     *log.Logger
	output     io.Writer
	asJSON     bool
}

type RunnerOpts struct {
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a Runner. Zero options fall back to stderr logging
// and stdout output.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
		opts.Logger.SetLevel(log.WarnLevel)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{logger: opts.Logger, output: opts.Output}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range []func(*Runner) *cli.Command{
		signupCommand, signinCommand, whoamiCommand, healthCommand,
		playlistsCommand, favoritesCommand, historyCommand, importCommand,
	} {
		commands = append(commands, fn(r))
	}
	return commands
}

// Before loads the client config and applies the global flags.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		r.logger.SetLevel(log.DebugLevel)
	}
	r.asJSON = cmd.Bool("json")

	r.configPath = cmd.String("config")
	if r.configPath == "" {
		path, err := client.DefaultConfigPath()
		if err != nil {
			return ctx, err
		}
		r.configPath = path
	}

	cfg, err := client.LoadConfig(r.configPath)
	if err != nil {
		return ctx, err
	}
	if u := cmd.String("url"); u != "" {
		cfg.BaseURL = u
	}
	r.config = cfg
	r.logger.Debug("loaded config", "path", r.configPath, "url", cfg.BaseURL)
	return ctx, nil
}

// client builds an API client from the loaded config.
func (r *Runner) client(opts ...client.Option) (*client.Client, error) {
	opts = append([]client.Option{client.WithToken(r.config.Token)}, opts...)
	return client.New(r.config.BaseURL, opts...)
}

// requireToken fails early for commands that need a signed-in user.
func (r *Runner) requireToken() error {
	if r.config.Token == "" {
		return fmt.Errorf("not signed in: run `mediaplayctl signin` first")
	}
	return nil
}

func (r *Runner) save() error {
	if err := client.SaveConfig(r.configPath, r.config); err != nil {
		return err
	}
	r.logger.Debug("saved config", "path", r.configPath)
	return nil
}

// playlistID returns the --playlist flag, falling back to the saved default.
func (r *Runner) playlistID(cmd *cli.Command) (int64, error) {
	if id := cmd.Int64("playlist"); id > 0 {
		return id, nil
	}
	if r.config.PlaylistID > 0 {
		return r.config.PlaylistID, nil
	}
	return 0, fmt.Errorf("no playlist: pass --playlist or run `mediaplayctl playlists create --use`")
}

func (r *Runner) writeJSON(data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := fmt.Fprintf(r.output, "%s\n", out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) {
	fmt.Fprintf(r.output, format, args...)
}

// print writes data as JSON under --json, otherwise calls plain.
func (r *Runner) print(data any, plain func()) error {
	if r.asJSON {
		return r.writeJSON(data)
	}
	plain()
	return nil
}
