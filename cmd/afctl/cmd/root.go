// Package cmd implements the afctl command tree.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tphakala/go-attackforge"
	"github.com/tphakala/go-attackforge/internal/config"
	"github.com/tphakala/go-attackforge/internal/logging"
)

var version = "dev"

// SetVersion sets the CLI version from build flags.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// app holds the global flags shared by every subcommand.
type app struct {
	configFile string
	output     string
	metrics    bool
}

// action is the body of a subcommand. Its result is printed in the
// selected output format.
type action func(ctx context.Context, client *attackforge.Client, reqOpts ...attackforge.RequestOption) (any, error)

// NewRootCommand builds the afctl command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "afctl",
		Short: "AttackForge Self-Service API command line client",
		Long: `afctl resolves scanner findings against AttackForge records and
exposes the helper calls used by import tooling.

Connection settings come from flags, AF_* environment variables or a
config file given with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.String("base-url", "", "Self-Service API base URL (env: AF_BASE_URL)")
	pf.String("api-key", "", "Self-Service API key (env: AF_API_KEY)")
	pf.String("timeout", "", "Request timeout, e.g. 45s or 45 for seconds (env: AF_TIMEOUT, default 30s)")
	pf.String("log-level", "", "Log level: debug, info, warn, error (env: LOG_LEVEL)")
	pf.Bool("tracing", false, "Enable OpenTelemetry HTTP tracing (env: AF_TRACING)")
	pf.StringVar(&a.configFile, "config", "", "Config file (yaml, json or toml)")
	pf.StringVarP(&a.output, "output", "o", outputJSON, "Output format: json, yaml")
	pf.BoolVar(&a.metrics, "metrics", false, "Print client metrics to stderr on exit")

	rootCmd.AddCommand(
		newVersionCmd(),
		newVerifyAccessCmd(a),
		newAssetCmd(a),
		newWriteupCmd(a),
		newVulnCmd(a),
		newProjectCmd(a),
		newEmailCmd(a),
	)

	return rootCmd
}

// run loads the configuration, builds a client and executes fn with a fresh
// request ID.
func (a *app) run(cmd *cobra.Command, fn action) error {
	if err := validateOutput(a.output); err != nil {
		return err
	}

	cfg, err := config.Load(a.configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, shutdown, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		logger = logging.FallbackLogger()
		shutdown = func() error { return nil }
		logger.Warn("falling back to default logger", slog.Any("error", err))
	}
	defer func() { _ = shutdown() }()

	reg := prometheus.NewRegistry()
	opts := []attackforge.ClientOption{
		attackforge.WithBaseURL(cfg.BaseURL),
		attackforge.WithAPIKey(cfg.APIKey),
		attackforge.WithTimeout(cfg.Timeout),
		attackforge.WithLogger(logger),
		attackforge.WithMetrics(reg),
	}
	if cfg.UserAgent != "" {
		opts = append(opts, attackforge.WithUserAgent(cfg.UserAgent))
	}
	if cfg.Tracing {
		opts = append(opts, attackforge.WithTracing())
	}

	client, err := attackforge.NewClient(opts...)
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	logger.Debug("running command",
		slog.String("command", cmd.CommandPath()),
		slog.String("request_id", requestID))

	result, err := fn(cmd.Context(), client, attackforge.WithRequestID(requestID))

	if a.metrics {
		if dumpErr := writeMetrics(cmd.ErrOrStderr(), reg); dumpErr != nil {
			logger.Warn("cannot write metrics", slog.Any("error", dumpErr))
		}
	}

	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), a.output, result)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "afctl version %s\n", version)
			fmt.Fprintf(out, "  Go:       %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:  %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newVerifyAccessCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-access",
		Short: "Check that the API key is accepted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context, client *attackforge.Client, reqOpts ...attackforge.RequestOption) (any, error) {
				ok := client.VerifyAccess(ctx, reqOpts...)
				if !ok {
					return nil, errAccessDenied
				}
				return map[string]bool{"access": ok}, nil
			})
		},
	}
}
