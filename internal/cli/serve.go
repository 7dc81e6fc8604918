package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/navegante/internal/config"
	"github.com/roach88/navegante/internal/dispatch"
	"github.com/roach88/navegante/internal/metrics"
	"github.com/roach88/navegante/internal/remote"
	"github.com/roach88/navegante/internal/transport"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Stdio    bool
	HTTPAddr string

	// IDGenerator allows overriding the request id generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator transport.IDGenerator
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve operations to the UI",
		Long: `Serve the operation catalog to the UI process.

With --stdio, requests are read as JSON lines from stdin and responses
are written as JSON lines to stdout, one per request. Otherwise an HTTP
API listens on the configured loopback address:

  POST /v1/ops/{op}   body = operation arguments
  GET  /v1/ops        operation names
  GET  /healthz
  GET  /metrics       when metrics are enabled

Examples:
  navegante serve --stdio
  navegante serve --http 127.0.0.1:9000 --config navegante.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Stdio, "stdio", false, "serve JSON lines on stdin/stdout")
	cmd.Flags().StringVar(&opts.HTTPAddr, "http", "", "HTTP listen address (overrides http.addr)")
	cmd.MarkFlagsMutuallyExclusive("stdio", "http")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if opts.HTTPAddr != "" {
		cfg.HTTP.Addr = opts.HTTPAddr
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)

	dispatchOpts := []dispatch.Option{dispatch.WithLogger(logger)}

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
		dispatchOpts = append(dispatchOpts, dispatch.WithObserver(recorder))
	}

	if cfg.Remote.Enabled {
		catalog, err := newRemoteCatalog(cfg.Remote)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to configure remote catalog", err)
		}
		logger.Info("remote catalog enabled", "url", cfg.Remote.ProjectURL)
		dispatchOpts = append(dispatchOpts, dispatch.WithCatalogSource(catalog))
	}

	ids := opts.IDGenerator
	if ids == nil {
		ids = transport.UUIDv7Generator{}
	}
	handler := transport.NewHandler(dispatch.New(st, dispatchOpts...), ids)

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if opts.Stdio {
		logger.Info("stdio transport started")
		err := transport.NewStdioServer(handler, logger).Serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil && !errors.Is(err, context.Canceled) {
			return WrapExitError(ExitFailure, "stdio transport error", err)
		}
		logger.Info("stdio transport stopped")
		return nil
	}

	httpOpts := transport.HTTPOptions{
		Health: func(ctx context.Context) error { return st.DB().PingContext(ctx) },
		Logger: logger,
	}
	if recorder != nil {
		httpOpts.Metrics = recorder
	}
	if err := transport.ListenAndServe(ctx, cfg.HTTP.Addr, transport.NewRouter(handler, httpOpts), logger); err != nil {
		return WrapExitError(ExitFailure, "http transport error", err)
	}
	logger.Info("http transport stopped gracefully")
	return nil
}

// newRemoteCatalog builds the hosted catalog source from configuration.
func newRemoteCatalog(rc config.RemoteConfig) (*remote.Catalog, error) {
	key, err := rc.APIKey()
	if err != nil {
		return nil, err
	}
	client, err := remote.New(remote.Config{
		ProjectURL:        rc.ProjectURL,
		APIKey:            key,
		RequestsPerSecond: rc.RequestsPerSecond,
		Timeout:           rc.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return remote.NewCatalog(client, rc.SectionsTable, rc.ProductsTable), nil
}

var _ dispatch.Observer = (*metrics.Recorder)(nil)

