// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/placehub/placehub/internal/account"
	accountpg "github.com/placehub/placehub/internal/account/postgres"
	"github.com/placehub/placehub/internal/config"
	"github.com/placehub/placehub/internal/geocode"
	"github.com/placehub/placehub/internal/httpapi"
	"github.com/placehub/placehub/internal/logging"
	"github.com/placehub/placehub/internal/observability"
	"github.com/placehub/placehub/internal/place"
	placepg "github.com/placehub/placehub/internal/place/postgres"
	"github.com/placehub/placehub/internal/store"
	"github.com/placehub/placehub/internal/upload"
)

const shutdownTimeout = 15 * time.Second

// serveConfig holds flags for the serve command.
type serveConfig struct {
	autoMigrate bool
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the PlaceHub API server",
		Long: `Start the API server, serving the places and users routes plus the
metrics and health endpoints. Shuts down gracefully on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&cfg.autoMigrate, "auto-migrate", false, "apply pending migrations before serving")

	return cmd
}

func runServe(cmd *cobra.Command, serveCfg *serveConfig) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.SetDefault("placehub", version, cfg.Log.Format)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if serveCfg.autoMigrate {
		if err := migrateUp(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	pool, err := store.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	userRepo := accountpg.NewUserRepository(pool)
	placeRepo := placepg.NewPlaceRepository(pool)
	transactor := store.NewTransactor(pool)

	tokens, err := account.NewJWT(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	accounts, err := account.NewService(userRepo, account.NewArgon2idHasher(), tokens)
	if err != nil {
		return err
	}

	uploads, err := upload.NewDiskStore(cfg.Uploads.Dir)
	if err != nil {
		return err
	}

	geocoder, err := geocode.NewClient(cfg.Geocoder.BaseURL, cfg.Geocoder.UserAgent)
	if err != nil {
		return err
	}

	places, err := place.NewService(place.ServiceConfig{
		Places:   placeRepo,
		Owners:   userRepo,
		Tx:       transactor,
		Geocoder: geocoder,
		Files:    uploads,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	obsServer := observability.NewServer(cfg.Observability.Addr, func() bool {
		return pool.Ping(ctx) == nil
	})
	obsErrCh, err := obsServer.Start()
	if err != nil {
		return err
	}

	apiServer, err := httpapi.NewServer(httpapi.ServerConfig{
		Addr:           cfg.Server.Addr,
		UploadDir:      cfg.Uploads.Dir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Accounts:       accounts,
		Places:         places,
		Tokens:         tokens,
		Uploads:        uploads,
		Limiter:        account.NewLoginLimiter(),
		Metrics:        obsServer.Metrics(),
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	apiErrCh, err := apiServer.Start()
	if err != nil {
		stopServers(nil, obsServer, logger)
		return err
	}

	logger.Info("placehub started", "addr", apiServer.Addr(), "observability_addr", obsServer.Addr())

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-apiErrCh:
		if err != nil {
			stopServers(nil, obsServer, logger)
			return oops.With("operation", "serve api").Wrap(err)
		}
	case err := <-obsErrCh:
		if err != nil {
			stopServers(apiServer, nil, logger)
			return oops.With("operation", "serve observability").Wrap(err)
		}
	}

	return stopServers(apiServer, obsServer, logger)
}

// stopServers shuts down whichever servers are non-nil, returning the first
// shutdown error.
func stopServers(api *httpapi.Server, obs *observability.Server, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var firstErr error
	if api != nil {
		if err := api.Stop(ctx); err != nil {
			logger.Error("api server shutdown failed", "error", err)
			firstErr = err
		}
	}
	if obs != nil {
		if err := obs.Stop(ctx); err != nil {
			logger.Error("observability server shutdown failed", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
