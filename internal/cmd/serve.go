package cmd

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/h9zdev/wiretapper/internal/config"
	"github.com/h9zdev/wiretapper/internal/core/cache"
	"github.com/h9zdev/wiretapper/internal/core/engine"
	"github.com/h9zdev/wiretapper/internal/core/provider"
	"github.com/h9zdev/wiretapper/internal/core/ratelimit"
	errwrap "github.com/h9zdev/wiretapper/internal/errors"
	"github.com/h9zdev/wiretapper/internal/observability"
	"github.com/h9zdev/wiretapper/internal/server"
	"github.com/h9zdev/wiretapper/internal/server/handlers"
)

var (
	serverPort int
	serverHost string
)

const shutdownTimeout = 10 * time.Second

// configHealthChecker re-validates settings on probe. Missing provider
// credentials are deliberately not a failure: the service stays useful on
// fallback data.
type configHealthChecker struct {
	settings *config.Settings
}

func (c configHealthChecker) CheckHealth(ctx context.Context) error {
	return c.settings.Validate()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit

The server will cleanly shut down the HTTP server and flush logs on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.Load()
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Configuration invalid", err)
		}

		if cmd.Flags().Changed("host") {
			settings.Host = serverHost
		}
		if cmd.Flags().Changed("port") {
			settings.Port = serverPort
		}

		observability.InitServerLogger("wiretapper", settings.LogLevel)
		logger := observability.ServerLogger

		logger.Info("Initializing server",
			zap.String("version", versionInfo.Version),
			zap.String("host", settings.Host),
			zap.Int("port", settings.Port),
			zap.Bool("wigle", settings.WigleConfigured()),
			zap.Bool("opencellid", settings.OpenCellIDConfigured()),
			zap.Bool("shodan", settings.ShodanConfigured()))

		if missing := settings.MissingCredentials(); len(missing) > 0 {
			logger.Warn("Some providers unconfigured; their endpoints serve fallback data",
				zap.Strings("missing", missing))
		}

		srv := buildServer(settings)
		srv.Health().RegisterChecker("config", configHealthChecker{settings: settings})

		// Graceful shutdown handlers run LIFO: server first, log flush last.
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Flushing logger...")
			if err := logger.Sync(); err != nil {
				logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			logger.Info("HTTP server stopped gracefully")
			return nil
		})

		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
		}

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				logger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

// buildAggregator wires the provider clients into the aggregation engine.
// Token-gated providers stay nil when unconfigured and are skipped at request
// time; the keyless OpenCellID ajax layer is always wired so the map
// click-through works on a bare deployment.
func buildAggregator(settings *config.Settings, store *cache.Store) *engine.Aggregator {
	httpClient := provider.NewHTTPClient()

	agg := &engine.Aggregator{
		Cache:     store,
		NearbyTTL: settings.NearbyTTL(),
		SearchTTL: settings.SearchTTL(),
		TowersTTL: settings.TowersTTL(),
		Logger:    observability.ServerLogger,
		Rand:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	cells := &provider.OpenCellID{
		Token:  settings.OpenCellIDAPIKey,
		Client: httpClient,
	}
	agg.Ajax = cells
	if settings.OpenCellIDConfigured() {
		agg.Cells = cells
	}

	if settings.WigleConfigured() {
		agg.Wigle = &provider.Wigle{
			APIName:  settings.WigleAPIName,
			APIToken: settings.WigleAPIToken,
			Client:   httpClient,
		}
	}
	if settings.ShodanConfigured() {
		agg.Hosts = &provider.Shodan{
			APIKey: settings.ShodanAPIKey,
			Client: httpClient,
		}
	}
	if settings.RDAPEnrich {
		agg.Enricher = provider.NewRDAPEnricher()
	}
	return agg
}

// buildServer assembles the cache, limiter, aggregator and handlers into an
// HTTP server.
func buildServer(settings *config.Settings) *server.Server {
	store := cache.New(nil)
	limiter := ratelimit.New(nil)
	agg := buildAggregator(settings, store)

	api := &handlers.API{
		Settings: settings,
		Engine:   agg,
		Limiter:  limiter,
		Cache:    store,
	}

	return server.New(settings, api)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "0.0.0.0", "server host")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port")
}
