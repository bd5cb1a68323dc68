package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dfaua/papooga-reach/internal/config"
	"github.com/dfaua/papooga-reach/internal/engagement"
	"github.com/dfaua/papooga-reach/internal/model"
	"github.com/dfaua/papooga-reach/internal/personalize"
	"github.com/dfaua/papooga-reach/internal/pipeline"
	"github.com/dfaua/papooga-reach/internal/store"
)

// runtime bundles everything a store-backed command needs. Built once per
// invocation, closed by the command.
type runtime struct {
	Config *config.Config
	Store  *store.Store
}

// openRuntime loads config, configures logging, and opens the database.
// The --db flag wins over the config file's database path.
func openRuntime(opts *RootOptions) (*runtime, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	configureLogging(opts, cfg)

	dbPath := cfg.Database.Path
	if opts.Database != "" {
		dbPath = opts.Database
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	slog.Debug("database ready", "path", dbPath)

	return &runtime{Config: cfg, Store: st}, nil
}

func (rt *runtime) Close() {
	if err := rt.Store.Close(); err != nil {
		slog.Error("error closing database", "error", err)
	}
}

// Machine builds a state machine whose logical clock resumes past every
// seq already persisted, so new stamps never collide with history.
func (rt *runtime) Machine(ctx context.Context) (*engagement.StateMachine, error) {
	maxSeq, err := rt.Store.MaxSeq(ctx)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read clock position", err)
	}
	return engagement.NewStateMachine(model.UUIDv7Generator{}, engagement.NewClockAt(maxSeq)), nil
}

// Orchestrator builds the drafting pipeline. The personalization client is
// attached only when the config names an endpoint; without one, drafts
// carry raw template content.
func (rt *runtime) Orchestrator(ctx context.Context) (*pipeline.Orchestrator, error) {
	machine, err := rt.Machine(ctx)
	if err != nil {
		return nil, err
	}

	var p personalize.Personalizer
	if endpoint := rt.Config.Personalize.Endpoint; endpoint != "" {
		client := personalize.NewClient(endpoint)
		client.HTTPClient = &http.Client{
			Timeout: time.Duration(rt.Config.Personalize.TimeoutMs) * time.Millisecond,
		}
		p = client
	}

	return pipeline.New(machine, p, rt.Config.Personalize.Model), nil
}

// Catalog reads all profiles and templates. Commands pass these to the
// orchestrator rather than letting it reach into the store.
func (rt *runtime) Catalog(ctx context.Context) ([]model.Profile, []model.Template, error) {
	profiles, err := rt.Store.ListProfiles(ctx)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to list profiles", err)
	}
	templates, err := rt.Store.ListTemplates(ctx)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to list templates", err)
	}
	return profiles, templates, nil
}

// configureLogging sets the default slog handler. --verbose forces debug
// regardless of the configured level.
func configureLogging(opts *RootOptions, cfg *config.Config) {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// newFormatter builds the output formatter for a command. Verbose logs go
// to stderr so they never corrupt JSON output.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
