// Package main is the entry point for the elucidate binary.
// It reports a single connection event or a batch of tracked identifiers to an
// elucidation server, which is handy for smoke-testing a deployment.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/polisai/elucidation-go/pkg/client"
	"github.com/polisai/elucidation-go/pkg/config"
	"github.com/polisai/elucidation-go/pkg/domain"
	"github.com/polisai/elucidation-go/pkg/logging"
	"github.com/polisai/elucidation-go/pkg/result"
	"github.com/polisai/elucidation-go/pkg/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd creates the root command for elucidate
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "elucidate",
		Short: "Report connection events to an elucidation server",
		Long: `Report connection events and tracked identifiers to an elucidation server.

The server address comes from --base-uri or from the elucidation section of the
configuration file. Without either the client is disabled and every command
reports SKIPPED.

Example:
  elucidate --base-uri http://localhost:8080 track orders HTTP /orders /orders/{id}`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().String("base-uri", "", "Elucidation server base URI (enables the client)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newEventCmd(), newTrackCmd())

	return rootCmd
}

func newEventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Record one connection event",
		Args:  cobra.NoArgs,
		RunE:  runEvent,
	}

	cmd.Flags().String("service", "", "Name of the service that observed the connection")
	cmd.Flags().String("direction", "outbound", "Connection direction (inbound, outbound)")
	cmd.Flags().String("type", "HTTP", "Communication type, e.g. HTTP or JMS")
	cmd.Flags().String("identifier", "", "Connection identifier, e.g. an endpoint path or queue name")
	cmd.Flags().Int64("id", 0, "Optional event id")
	cmd.Flags().String("observed-at", "", "Observation time in RFC3339 (defaults to now)")
	_ = cmd.MarkFlagRequired("service")
	_ = cmd.MarkFlagRequired("identifier")

	return cmd
}

func newTrackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "track SERVICE TYPE [IDENTIFIER...]",
		Short: "Register tracked identifiers for a service",
		Args:  cobra.MinimumNArgs(2),
		RunE:  runTrack,
	}
}

// app bundles everything a subcommand needs.
type app struct {
	client *client.Client[domain.ConnectionEvent]
	logger *slog.Logger
	close  func()
}

// buildConfig loads the configuration file and applies CLI overrides.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	baseURI, err := cmd.Flags().GetString("base-uri")
	if err != nil {
		return nil, fmt.Errorf("failed to get base-uri flag: %w", err)
	}
	if baseURI != "" {
		cfg.Elucidation = config.ElucidationConfig{
			Enabled: true,
			BaseURI: baseURI,
			Timeout: cfg.Elucidation.Timeout,
		}
	}

	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get log-level flag: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	shutdown, err := telemetry.SetupProvider(ctx, telemetry.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}

	c, closeResolver, err := client.FromConfig(cfg.Elucidation, client.PassThrough(),
		client.WithLogger(logger),
		client.WithObserver(telemetry.NewOTelObserver()),
	)
	if err != nil {
		_ = shutdown(ctx)
		return nil, err
	}

	return &app{
		client: c,
		logger: logger,
		close: func() {
			if err := closeResolver(); err != nil {
				logger.Warn("Failed to close base URI resolver", "error", err)
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to flush telemetry", "error", err)
			}
		},
	}, nil
}

// buildEvent assembles a connection event from the event command's flags.
func buildEvent(cmd *cobra.Command) (domain.ConnectionEvent, error) {
	var event domain.ConnectionEvent

	service, _ := cmd.Flags().GetString("service")
	identifier, _ := cmd.Flags().GetString("identifier")
	commType, _ := cmd.Flags().GetString("type")
	rawDirection, _ := cmd.Flags().GetString("direction")
	id, _ := cmd.Flags().GetInt64("id")
	rawObservedAt, _ := cmd.Flags().GetString("observed-at")

	direction, err := domain.ParseDirection(rawDirection)
	if err != nil {
		return event, err
	}

	observedAt := time.Now()
	if strings.TrimSpace(rawObservedAt) != "" {
		observedAt, err = time.Parse(time.RFC3339, rawObservedAt)
		if err != nil {
			return event, fmt.Errorf("invalid observed-at %q: %w", rawObservedAt, err)
		}
	}

	event = domain.NewConnectionEvent(service, direction, commType, identifier)
	event.ID = id
	event.ObservedAt = observedAt
	return event, nil
}

// runEvent is the entry point for the event command
func runEvent(cmd *cobra.Command, _ []string) error {
	event, err := buildEvent(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	a.logger.Debug("Recording connection event",
		"service", event.ServiceName,
		"direction", event.Direction,
		"type", event.CommunicationType,
		"identifier", event.ConnectionIdentifier,
	)

	return report(cmd, a.client.RecordNewEvent(cmd.Context(), event))
}

// runTrack is the entry point for the track command
func runTrack(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	service, commType, identifiers := args[0], args[1], args[2:]
	a.logger.Debug("Tracking identifiers", "service", service, "type", commType, "count", len(identifiers))

	return report(cmd, a.client.TrackIdentifiers(cmd.Context(), service, commType, identifiers))
}

// report prints the outcome and turns a failure into the command's error.
func report(cmd *cobra.Command, res result.Result) error {
	fmt.Fprintln(cmd.OutOrStdout(), res.String())

	if err := res.Err(); err != nil {
		return errors.New("elucidation request failed")
	}
	return nil
}
