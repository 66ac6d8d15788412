package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nutriswap/backend/config"
	httpDelivery "github.com/nutriswap/backend/internal/delivery/http"
	"github.com/nutriswap/backend/internal/metrics"
)

const (
	shutdownTimeout   = 15 * time.Second
	writeTimeoutSlack = 5 * time.Second
)

// writeTimeout covers the longest request chain: a product page with
// suggestions makes three sequential catalog calls plus one translation.
func writeTimeout(cfg *config.Config) time.Duration {
	return 3*cfg.Catalog.Timeout + cfg.Translation.Timeout + writeTimeoutSlack
}

func newServeCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			log.Info("Starting NutriSwap backend",
				zap.String("version", Version),
				zap.String("environment", cfg.Server.Environment),
				zap.String("port", cfg.Server.Port),
				zap.String("cache", cfg.Cache.Type),
				zap.String("catalog", cfg.Catalog.BaseURL),
				zap.Bool("enrich", cfg.Suggestion.Enrich),
				zap.Bool("scope_by_term", cfg.Suggestion.ScopeByTerm))

			a, err := newApp(cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			metrics.RegisterHTTPMetrics()
			handler := httpDelivery.NewHandler(httpDelivery.Services{
				Products:    a.products,
				Suggestions: a.suggestions,
				Categories:  a.categories,
				Search:      a.search,
				Sessions:    a.sessions,
			}, Version, log)
			router := httpDelivery.SetupRouter(cfg, handler, log)

			addr := fmt.Sprintf(":%s", cfg.Server.Port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
				WriteTimeout:      writeTimeout(cfg),
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Info("Starting HTTP server", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}
			log.Info("Received shutdown signal")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("Error during shutdown", zap.Error(err))
				return err
			}

			log.Info("Server stopped gracefully")
			return nil
		},
	}
}
