package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/cors"

	"github.com/cyp0633/repeatcal/internal/config"
	"github.com/cyp0633/repeatcal/internal/notify"
	"github.com/cyp0633/repeatcal/recurrence"
	"github.com/cyp0633/repeatcal/server"
	"github.com/cyp0633/repeatcal/server/auth"
	"github.com/cyp0633/repeatcal/storage"
	"github.com/cyp0633/repeatcal/storage/memory"
	"github.com/cyp0633/repeatcal/storage/sqlite"
)

type flagConfig struct {
	configPath string
	envPath    string
	listen     string
}

func parseFlags(args []string) (flagConfig, error) {
	var f flagConfig
	fs := flag.NewFlagSet("repeatcal", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "repeatcal.yaml", "path to the YAML config file")
	fs.StringVar(&f.envPath, "env", ".env", "optional .env file with REPEATCAL_* overrides")
	fs.StringVar(&f.listen, "listen", "", "listen address, overrides the config file")
	return f, fs.Parse(args)
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "repeatcal:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	flags, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(stdout, &slog.HandlerOptions{Level: level}))

	logger.Info("effective config",
		"listen", cfg.Listen,
		"horizon", cfg.Horizon,
		"max_occurrences", cfg.MaxOccurrences,
		"storage", cfg.Storage.Driver,
		"redis", cfg.Redis.Addr != "")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := setup(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := &http.Server{Addr: cfg.Listen, Handler: handler}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exiting")
	return nil
}

// loadConfig layers the config file, the .env file and the environment, then
// command line flags.
func loadConfig(flags flagConfig) (*config.Config, error) {
	if err := config.LoadDotEnv(flags.envPath); err != nil {
		return nil, err
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if flags.listen != "" {
		cfg.Listen = flags.listen
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup wires the store, publisher and HTTP handler. cleanup releases them.
func setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (http.Handler, func(), error) {
	var closers []io.Closer
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Error("cleanup failed", "error", err)
			}
		}
	}

	store, closer, err := openStore(cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	publisher := notify.Discard
	if cfg.Redis.Addr != "" {
		p, err := notify.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Channel, logger)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, p)
		publisher = p
	}

	engineConfig, err := cfg.Engine()
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	srv, err := server.New(server.Config{
		Storage:   store,
		Engine:    recurrence.NewEngineWithConfig(engineConfig),
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	var handler http.Handler = srv
	if cfg.BasicAuth != nil {
		authenticator := auth.Static{Credentials: auth.Credentials{
			Username: cfg.BasicAuth.Username,
			Password: cfg.BasicAuth.Password,
		}}
		handler = auth.Middleware(authenticator, "repeatcal", logger, "/health")(handler)
	}

	handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: cfg.BasicAuth != nil,
	}).Handler(handler)

	return handler, cleanup, nil
}

func openStore(cfg config.StorageConfig) (storage.Storage, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.DriverMemory:
		return memory.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
