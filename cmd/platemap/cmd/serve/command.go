// Package serve provides the HTTP server command for the platemap CLI.
package serve

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/platemap/cmd/application"
	"github.com/agentstation/platemap/internal/server"
)

// NewCommand creates the serve command.
func NewCommand(app application.Application) *cobra.Command {
	def := server.DefaultConfig()

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"server"},
		GroupID: "core",
		Short:   "Start the coverage query API server",
		Long: `Start the REST API server for coverage queries.

Endpoints (under --prefix, default /api/v1):
  GET  /health, /ready   liveness and catalog readiness
  GET  /agencies         selectable agency identifiers
  POST /query            JSON query with an optional inline table
  POST /query/upload     multipart query with an optional table file
  GET  /metrics          Prometheus metrics (not prefixed)

The catalog is loaded before the server starts listening; a missing or
malformed catalog stops startup. SIGINT or SIGTERM drains in-flight
requests before exiting.`,
		Example: `  platemap serve --catalog agencies.csv
  platemap serve --port 3000 --cors-origins https://maps.example.com
  HTTP_PORT=9000 platemap serve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := parseConfig(cmd)
			if err != nil {
				return err
			}
			return run(cmd, app, cfg)
		},
	}

	cmd.Flags().Int("port", def.Port, "Server port")
	cmd.Flags().String("host", def.Host, "Bind address")
	cmd.Flags().String("prefix", def.PathPrefix, "API path prefix")

	cmd.Flags().Bool("cors", false, "Enable CORS for all origins")
	cmd.Flags().StringSlice("cors-origins", []string{}, "Allowed CORS origins (comma-separated, implies --cors)")

	cmd.Flags().Int64("max-upload", def.MaxUploadBytes, "Maximum request body size in bytes")

	cmd.Flags().Duration("read-timeout", def.ReadTimeout, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", def.WriteTimeout, "HTTP write timeout")
	cmd.Flags().Duration("idle-timeout", def.IdleTimeout, "HTTP idle timeout")
	cmd.Flags().Duration("shutdown-timeout", def.ShutdownTimeout, "Graceful shutdown timeout")

	cmd.Flags().Bool("metrics", def.MetricsEnabled, "Enable the /metrics endpoint")

	return cmd
}

func run(cmd *cobra.Command, app application.Application, cfg server.Config) error {
	logger := app.Logger()

	srv, err := server.New(app, cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	logger.Info().
		Str("addr", srv.Addr()).
		Str("prefix", cfg.PathPrefix).
		Bool("cors", cfg.CORSEnabled).
		Bool("metrics", cfg.MetricsEnabled).
		Msg("Starting API server")

	return srv.ListenAndServe(cmd.Context())
}

// parseConfig reads command flags into a server configuration. HTTP_HOST and
// HTTP_PORT override the flags when set.
func parseConfig(cmd *cobra.Command) (server.Config, error) {
	flags := cmd.Flags()
	cfg := server.Config{
		Host:            mustGet(flags.GetString("host")),
		Port:            mustGet(flags.GetInt("port")),
		PathPrefix:      mustGet(flags.GetString("prefix")),
		CORSEnabled:     mustGet(flags.GetBool("cors")),
		CORSOrigins:     mustGet(flags.GetStringSlice("cors-origins")),
		MaxUploadBytes:  mustGet(flags.GetInt64("max-upload")),
		ReadTimeout:     mustGet(flags.GetDuration("read-timeout")),
		WriteTimeout:    mustGet(flags.GetDuration("write-timeout")),
		IdleTimeout:     mustGet(flags.GetDuration("idle-timeout")),
		ShutdownTimeout: mustGet(flags.GetDuration("shutdown-timeout")),
		MetricsEnabled:  mustGet(flags.GetBool("metrics")),
	}
	if len(cfg.CORSOrigins) > 0 {
		cfg.CORSEnabled = true
	}

	if envHost := os.Getenv("HTTP_HOST"); envHost != "" {
		cfg.Host = envHost
	}
	if envPort := os.Getenv("HTTP_PORT"); envPort != "" {
		port, err := parsePort(envPort)
		if err != nil {
			return cfg, fmt.Errorf("HTTP_PORT: %w", err)
		}
		cfg.Port = port
	}

	for name, d := range map[string]time.Duration{
		"read-timeout":     cfg.ReadTimeout,
		"write-timeout":    cfg.WriteTimeout,
		"idle-timeout":     cfg.IdleTimeout,
		"shutdown-timeout": cfg.ShutdownTimeout,
	} {
		if d < 0 {
			return cfg, fmt.Errorf("--%s must not be negative", name)
		}
	}
	return cfg, nil
}

// parsePort safely parses a port string to integer.
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, fmt.Errorf("invalid port number: %s", portStr)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port out of range: %d", port)
	}
	return port, nil
}

// mustGet unwraps a flag lookup. Flags are defined in this package, so an
// error is a programming error.
func mustGet[T any](v T, err error) T {
	if err != nil {
		panic("programming error: " + err.Error())
	}
	return v
}
