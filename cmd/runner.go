package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/spotfetch/spotfetch/internal/bot"
	"github.com/spotfetch/spotfetch/internal/repositories"
	"github.com/spotfetch/spotfetch/internal/services"
	"github.com/spotfetch/spotfetch/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config   *shared.Config
	logger   *log.Logger
	output   io.Writer
	resolver services.Resolver
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config   *shared.Config
	Logger   *log.Logger
	Output   io.Writer
	Resolver services.Resolver
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Resolver == nil {
		opts.Resolver = services.NewYouTubeResolver()
	}

	return &Runner{
		config:   opts.Config,
		logger:   opts.Logger,
		output:   opts.Output,
		resolver: opts.Resolver,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, resolveCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// loadConfig returns the config at the command's --config path when the file
// exists, falling back to the config the runner was built with.
func (r *Runner) loadConfig(cmd *cli.Command) *shared.Config {
	path := cmd.String("config")
	if path == "" {
		return r.config
	}
	if _, err := os.Stat(path); err != nil {
		return r.config
	}
	config, err := shared.LoadConfig(path)
	if err != nil {
		r.logger.Warn("failed to load config, using defaults", "path", path, "err", err)
		return r.config
	}
	return config
}

// Serve starts the bot: validates secrets, builds collaborators, and blocks
// on long polling until SIGINT/SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if err := config.Validate(); err != nil {
		return fmt.Errorf("refusing to start: %w", err)
	}

	catalog, err := services.NewSpotifyCatalog(ctx, config.Credentials.Spotify.ClientID, config.Credentials.Spotify.ClientSecret)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	store, closeStore, err := r.openResolutionStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	dispatcher := bot.NewDispatcher(bot.Opts{
		Catalog:  catalog,
		Resolver: services.NewCachingResolver(r.resolver, store),
		Sessions: bot.NewSessionStore(),
		Logger:   r.logger,
		WorkDir:  config.Downloads.WorkDir,
	})

	b, err := bot.New(config.Credentials.Telegram.Token, dispatcher)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r.logger.Info("bot started")
	b.Start(ctx)
	r.logger.Info("bot stopped")
	return nil
}

// openResolutionStore opens the sqlite-backed store when a cache path is
// configured, otherwise a bounded in-memory store.
func (r *Runner) openResolutionStore(config *shared.Config) (services.ResolutionStore, func(), error) {
	maxEntries := config.Cache.MaxEntries
	if maxEntries <= 0 {
		maxEntries = repositories.DefaultMaxEntries
	}

	if config.Cache.Path == "" {
		r.logger.Info("no cache database configured, using in-memory resolution cache")
		return services.NewMemoryStore(maxEntries), func() {}, nil
	}

	db, err := shared.NewDatabase(config.Cache.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	shared.ConfigureDatabase(db, 4, 2)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}

	return repositories.NewResolutionRepository(db, maxEntries), func() { db.Close() }, nil
}

// SetupConfig writes the embedded example config to the output path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("output")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}
	return r.writePlainln("Wrote %s, fill in the credentials before serving.", path)
}

// SetupDatabase creates the cache database and applies migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd)
	if config.Cache.Path == "" {
		return fmt.Errorf("%w: cache path is empty", shared.ErrInvalidConfig)
	}

	db, err := shared.NewDatabase(config.Cache.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	return r.writePlainln("Cache database ready at %s", config.Cache.Path)
}

// Resolve searches for a single "title artist" pair and prints the URL.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	title := cmd.StringArg("title")
	artist := cmd.StringArg("artist")
	if title == "" {
		return fmt.Errorf("%w: title", shared.ErrMissingArgument)
	}

	query := title
	if artist != "" {
		query = fmt.Sprintf("%s %s", title, artist)
	}

	url, err := r.resolver.Search(ctx, query)
	if err != nil {
		return err
	}

	return r.writePlainln("%s", url)
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
