package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roman-kulish/wifi-survey/internal/scan"
	"github.com/roman-kulish/wifi-survey/internal/storage"
)

// ErrUsage is returned when the command line could not be parsed.
var ErrUsage = errors.New("invalid usage")

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, a *App, args []string) error
}

var commands = []command{
	{"sample", "take one sample at -x, -y and store it", runSample},
	{"import", "load samples from a CSV file", runImport},
	{"export", "write a session as CSV", runExport},
	{"sessions", "list survey sessions", runSessions},
	{"emitters", "list emitters seen in a session", runEmitters},
	{"field", "evaluate the signal field of one emitter", runField},
}

// App runs commands against one survey database.
type App struct {
	config *Config
	logger *slog.Logger
	store  *storage.SqliteStore
	out    io.Writer

	// newSource creates the scanner, replaced in tests
	newSource func(config *scan.Config, logger *slog.Logger) (scan.Source, error)
}

// Run executes the command named by args[0].
func Run(ctx context.Context, config *Config, args []string, logger *slog.Logger) (err error) {
	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer closeWithError(store, &err)

	a := &App{
		config:    config,
		logger:    logger,
		store:     store,
		out:       os.Stdout,
		newSource: newCommandSource,
	}
	return a.Run(ctx, args)
}

func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		Usage(flag.CommandLine.Output())
		return fmt.Errorf("%w: no command given", ErrUsage)
	}

	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(ctx, a, args[1:])
		}
	}

	Usage(flag.CommandLine.Output())
	return fmt.Errorf("%w: unknown command '%s'", ErrUsage, args[0])
}

// Usage prints the list of commands.
func Usage(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Usage: %s -c config.yaml <command> [flags]\n\nCommands:\n", filepath.Base(os.Args[0]))
	for _, cmd := range commands {
		_, _ = fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.usage)
	}
}

func newCommandSource(config *scan.Config, logger *slog.Logger) (scan.Source, error) {
	handler, err := scan.New(config)
	if err != nil {
		return nil, fmt.Errorf("creating scanner: %w", err)
	}

	return scan.NewCommandSource(handler,
		scan.WithLogger(logger),
		scan.WithTimeout(time.Duration(config.Timeout)),
		scan.WithParseErrorsThreshold(config.ParseErrorsThreshold),
	), nil
}

func createStorage(config *StorageConfig) (*storage.SqliteStore, error) {
	dbPath := config.DataDirectory
	if !filepath.IsAbs(dbPath) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current working directory: %w", err)
		}
		dbPath = filepath.Join(wd, dbPath)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("checking storage directory: %w", err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	return storage.NewSqliteStore(filepath.Join(dbPath, config.Database)), nil
}

// resolveSession returns id if set, otherwise the most recent session.
func (a *App) resolveSession(ctx context.Context, id int64) (*storage.Session, error) {
	if id > 0 {
		return a.store.Session(ctx, id)
	}

	sessions, err := a.store.Sessions(ctx)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, fmt.Errorf("no sessions yet: %w", storage.ErrSessionNotFound)
	}
	return sessions[len(sessions)-1], nil
}

// sessionOrCreate returns id if set, otherwise starts a new session.
func (a *App) sessionOrCreate(ctx context.Context, id int64) (int64, error) {
	if id > 0 {
		if _, err := a.store.Session(ctx, id); err != nil {
			return 0, err
		}
		return id, nil
	}

	id, err := a.store.CreateSession(ctx, a.config.Survey.Name, a.config.Survey.FloorPlan)
	if err != nil {
		return 0, fmt.Errorf("creating session: %w", err)
	}

	a.logger.Info("session created", slog.Int64("session", id), slog.String("name", a.config.Survey.Name))
	return id, nil
}

// newFlagSet creates the flag set of a command; parse errors print usage.
func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(flag.CommandLine.Output())
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		fs.Usage()
		return fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}
	return nil
}

func usageError(fs *flag.FlagSet, msg string) error {
	fs.Usage()
	return fmt.Errorf("%w: %s", ErrUsage, msg)
}
