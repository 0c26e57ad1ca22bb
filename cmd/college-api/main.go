// main is the entry point of the College API.
//
// STARTUP SEQUENCE (serve):
//  1. Load .env, then the YAML configuration
//  2. Initialise the logger
//  3. Connect to the database and make sure the schema exists
//  4. Build the session store and the router
//  5. Start the HTTP server in a separate goroutine
//  6. Block until SIGINT / SIGTERM, then shut down gracefully
//
// RUNNING THE SERVER:
//
//	go run ./cmd/college-api --config=config/local.yaml
//	CONFIG_PATH=config/local.yaml go run ./cmd/college-api
//	go run ./cmd/college-api migrate --config=config/local.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/aanand-mishra/college-api/internal/auth"
	"github.com/aanand-mishra/college-api/internal/config"
	"github.com/aanand-mishra/college-api/internal/http/router"
	"github.com/aanand-mishra/college-api/internal/logger"
	"github.com/aanand-mishra/college-api/internal/storage/sqlstore"
	"github.com/aanand-mishra/college-api/internal/utils/response"
)

const version = "1.0.0"

func main() {
	var cfgPath string

	root := &cobra.Command{
		Use:           "college-api",
		Short:         "REST API for students and courses",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfgPath)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to the YAML config file (default $CONFIG_PATH)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfgPath)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(cmd.Context(), cfgPath)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "college-api:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, zerolog.Logger, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, zerolog.Nop(), err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New(cfg.Env), nil
}

func openStore(ctx context.Context, cfg *config.Config) (*sqlstore.Store, error) {
	driver := sqlstore.DriverFor(cfg.Storage.Driver, cfg.Storage.DSN)
	return sqlstore.New(ctx, driver, cfg.Storage.DSN)
}

func migrate(ctx context.Context, path string) error {
	cfg, log, err := loadConfig(path)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	log.Info().Str("driver", sqlstore.DriverFor(cfg.Storage.Driver, cfg.Storage.DSN)).Msg("schema is up to date")
	return nil
}

func serve(ctx context.Context, path string) error {
	cfg, log, err := loadConfig(path)
	if err != nil {
		return err
	}
	log.Info().Str("env", cfg.Env).Str("version", version).Msg("starting college-api")

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialise storage: %w", err)
	}
	defer store.Close()
	log.Info().Str("driver", sqlstore.DriverFor(cfg.Storage.Driver, cfg.Storage.DSN)).Msg("storage initialised")

	sessions, closeSessions, err := newSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	var gh *auth.GitHub
	if cfg.Auth.Enabled {
		gh = auth.NewGitHub(cfg.Auth.GitHub.ClientID, cfg.Auth.GitHub.ClientSecret, cfg.Auth.GitHub.CallbackURL, sessions)
	}

	handler := router.New(router.Options{
		Store:              store,
		Logger:             log,
		Renderer:           response.Renderer{Dev: cfg.IsDevelopment()},
		AuthEnabled:        cfg.Auth.Enabled,
		GuardReads:         cfg.Auth.GuardReads,
		Sessions:           sessions,
		GitHub:             gh,
		RequestTimeout:     cfg.RequestTimeout,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.Addr).Bool("auth", cfg.Auth.Enabled).Msg("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server encountered an error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server gracefully: %w", err)
	}

	log.Info().Msg("server stopped gracefully")
	return nil
}

// newSessions keeps sessions in Redis when a URL is configured and in memory
// otherwise.
func newSessions(ctx context.Context, cfg *config.Config) (*auth.Sessions, func(), error) {
	sc := cfg.Auth.Session
	sessions := &auth.Sessions{
		CookieName: sc.CookieName,
		TTL:        sc.TTL,
		Secure:     sc.Secure,
	}

	if sc.RedisURL == "" {
		sessions.Store = auth.NewMemoryStore()
		return sessions, func() {}, nil
	}

	rs, err := auth.NewRedisStore(ctx, sc.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	sessions.Store = rs
	return sessions, func() { rs.Close() }, nil
}
