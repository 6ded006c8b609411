package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipebook/database"
	"recipebook/internal/config"
	"recipebook/internal/logging"
	"recipebook/internal/microservices/http-api/middleware"
	"recipebook/internal/microservices/http-api/router"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "api-server",
		Usage: "Recipe catalog HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "dotenv file read before the environment; missing files are ignored",
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Apply the schema and serve HTTP until interrupted (default)",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "Create missing tables and exit",
				Action: runMigrate,
			},
			{
				Name:  "token",
				Usage: "Print a signed access token for JWT_SECRET",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Value: "admin", Usage: "token subject"},
					&cli.StringSliceFlag{Name: "scope", Value: []string{middleware.ScopeWriteRecipe}, Usage: "granted scope, repeatable"},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
				},
				Action: runToken,
			},
		},
	}
}

// setup loads and validates config and installs the default logger.
func setup(cmd *cli.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfigFrom(cmd.String("env-file"))
	if err != nil {
		return nil, nil, fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func runMigrate(_ context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	logger.Info("schema is up to date", "driver", cfg.DatabaseDriver)
	return nil
}

func runToken(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfigFrom(cmd.String("env-file"))
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if len(cfg.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}

	token, err := middleware.SignToken(cfg.JWTSecret, cmd.String("subject"), cmd.StringSlice("scope"), cmd.Duration("ttl"))
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, token)
	return err
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	rdb, err := database.NewRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	deps := router.Deps{Config: cfg, DB: db, Logger: logger}
	if rdb != nil {
		defer rdb.Close()
		deps.Redis = rdb
	}

	handler, err := router.New(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			"addr", srv.Addr,
			"env", cfg.GoEnv,
			"rate_limit", cfg.RateLimitEnabled(),
			"auth", cfg.AuthEnabled,
			"redis", rdb != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}
