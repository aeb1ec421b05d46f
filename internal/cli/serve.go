package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tandem/internal/config"
	"github.com/roach88/tandem/internal/dispatch"
	"github.com/roach88/tandem/internal/engine"
	"github.com/roach88/tandem/internal/store"
	"github.com/roach88/tandem/internal/transport/console"
)

// ServeOptions holds flags for the serve command. Unset flags fall back to
// the TANDEM_* environment.
type ServeOptions struct {
	*RootOptions
	Database string
	Policy   string
	Workers  int
	Interval time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Handle responses read from stdin",
		Long: `Read participant responses from stdin, one per line, and print the
prompts they produce to stdout. Each line is handled concurrently; the
database serializes the updates.

Input lines:
  <id> say <text>
  <id> image <url>
  <id> react <emoji> [message-id]

Environment:
  TANDEM_DB_PATH, TANDEM_POLICY_PATH, TANDEM_LOG_LEVEL,
  TANDEM_RENDER_INTERVAL, TANDEM_WORKERS

Example:
  printf '1 say hi\n1 say ok\n' | tandem serve --db /tmp/tandem.db --interval 0`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default $TANDEM_DB_PATH or tandem.db)")
	cmd.Flags().StringVar(&opts.Policy, "policy", "", "path to a CUE policy file (default $TANDEM_POLICY_PATH)")
	cmd.Flags().IntVar(&opts.Workers, "workers", dispatch.DefaultWorkers, "responses handled at once")
	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "minimum time between rendered prompts")

	return cmd
}

// loadConfig reads the environment and applies explicitly set flags.
func (o *ServeOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DBPath = o.Database
	}
	if flags.Changed("policy") {
		cfg.PolicyPath = o.Policy
	}
	if flags.Changed("workers") {
		cfg.Workers = o.Workers
	}
	if flags.Changed("interval") {
		cfg.RenderInterval = o.Interval
	}
	return cfg, cfg.Validate()
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	setupLogging(cmd.ErrOrStderr(), cfg.Level(), opts.Verbose)

	pol, err := cfg.Policy()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load policy", err)
	}

	slog.Info("opening database", "path", cfg.DBPath)
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer := console.NewRenderer(cmd.OutOrStdout(), cfg.RenderInterval)
	d := dispatch.New(engine.New(st, pol), renderer, dispatch.WithWorkers(cfg.Workers))

	slog.Info("serving", "db", cfg.DBPath, "workers", cfg.Workers, "interval", cfg.RenderInterval,
		"require_profile_image", pol.RequireProfileImage, "exclusion", pol.Exclusion)

	return serve(ctx, d, cmd.InOrStdin(), cmd.ErrOrStderr())
}

// serve feeds in to d until in is exhausted or ctx is cancelled, then waits
// for the dispatcher to finish.
func serve(ctx context.Context, d *dispatch.Dispatcher, in io.Reader, errOut io.Writer) error {
	runErr := make(chan error, 1)
	go func() { runErr <- d.Run(ctx) }()

	// The reader may stay blocked on in after a signal; it is abandoned
	// when the process exits.
	readErr := make(chan error, 1)
	go func() { readErr <- console.Read(ctx, in, d, errOut) }()

	select {
	case err := <-readErr:
		d.Close()
		if rerr := <-runErr; rerr != nil && !isCancellation(rerr) {
			return WrapExitError(ExitFailure, "dispatcher error", rerr)
		}
		if err != nil && !isCancellation(err) {
			return WrapExitError(ExitFailure, "read input", err)
		}
	case <-ctx.Done():
		d.Close()
		if rerr := <-runErr; rerr != nil && !isCancellation(rerr) {
			return WrapExitError(ExitFailure, "dispatcher error", rerr)
		}
	}

	slog.Info("stopped")
	return nil
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
