package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hanpama/shapeql/internal/client"
	"github.com/hanpama/shapeql/internal/config"
	"github.com/hanpama/shapeql/internal/eventbus"
	"github.com/hanpama/shapeql/internal/logging"
	"github.com/hanpama/shapeql/internal/metrics"
	"github.com/hanpama/shapeql/internal/otel"
)

// rootOptions holds global flags and the state set up for a command run.
type rootOptions struct {
	configPath   string
	logLevel     string
	otelEndpoint string
	otelService  string
	textfile     string

	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	cleanup  []func() error
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "shapeql",
		Short:         "Typed GraphQL queries from shape files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML config file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.otelEndpoint, "otel.endpoint", "", "OTLP/gRPC collector endpoint")
	flags.StringVar(&opts.otelService, "otel.service", "", "OpenTelemetry service name")
	flags.StringVar(&opts.textfile, "metrics.textfile", "", "write Prometheus metrics to this file on exit")

	cmd.AddCommand(newCompileCommand(opts))
	cmd.AddCommand(newExecCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("otel.endpoint") {
		cfg.Otel.Endpoint = o.otelEndpoint
	}
	if flags.Changed("otel.service") {
		cfg.Otel.Service = o.otelService
	}
	if flags.Changed("metrics.textfile") {
		cfg.Metrics.Textfile = o.textfile
	}
	o.cfg = cfg

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return err
	}
	o.logger = logger

	eventbus.Use(eventbus.New())
	o.onExit(func() error { eventbus.Use(nil); return nil })

	offLog := logging.Subscribe(logger)
	o.onExit(func() error { offLog(); return nil })

	shutdown, err := otel.Setup(cfg.Otel.Endpoint, cfg.Otel.Service)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	o.onExit(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return shutdown(ctx)
	})

	if cfg.Metrics.Textfile != "" {
		o.registry = prometheus.NewRegistry()
		col, err := metrics.New(o.registry, outcome)
		if err != nil {
			return err
		}
		offMetrics := col.Subscribe()
		o.onExit(func() error {
			offMetrics()
			return metrics.WriteTextfile(cfg.Metrics.Textfile, o.registry)
		})
	}
	return nil
}

func (o *rootOptions) onExit(fn func() error) { o.cleanup = append(o.cleanup, fn) }

// teardown runs cleanups in reverse order. It runs after the command
// whether or not it failed.
func (o *rootOptions) teardown() error {
	var errs []error
	for i := len(o.cleanup) - 1; i >= 0; i-- {
		errs = append(errs, o.cleanup[i]())
	}
	o.cleanup = nil
	if o.logger != nil {
		_ = o.logger.Sync()
	}
	return errors.Join(errs...)
}

// outcome maps client error kinds to metric labels.
func outcome(err error) string {
	var (
		te *client.TransportError
		pe *client.ProtocolError
		ve *client.ValidationError
	)
	switch {
	case errors.As(err, &te):
		return metrics.OutcomeTransport
	case errors.As(err, &pe):
		return metrics.OutcomeProtocol
	case errors.As(err, &ve):
		return metrics.OutcomeValidation
	default:
		return metrics.OutcomeOther
	}
}
