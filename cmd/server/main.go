// Command server runs the citizen report API.
//
// @title                       Citizen Report API
// @version                     1.0
// @description                 Municipal issue reporting with per-municipality access control.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/civicwatch/report-system/docs"
	"github.com/civicwatch/report-system/internal/api"
	"github.com/civicwatch/report-system/internal/api/handler"
	"github.com/civicwatch/report-system/internal/core/service"
	"github.com/civicwatch/report-system/internal/infrastructure/config"
	mongodb "github.com/civicwatch/report-system/internal/infrastructure/db/mongo"
	redisdb "github.com/civicwatch/report-system/internal/infrastructure/db/redis"
	"github.com/civicwatch/report-system/internal/infrastructure/queue"
	"github.com/civicwatch/report-system/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Env: cfg.Env, Service: "report-system"})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(dctx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	munisRepo := mongodb.NewMunicipalityRepository(db)
	munis := redisdb.NewMunicipalityCache(munisRepo, rdb, cfg.Cache.MunicipalityTTL, log)
	activityRepo := mongodb.NewActivityRepository(db)

	// --- Activity recorder ---
	dispatcher := queue.NewDispatcher(cfg.Activity.Workers, activityRepo, log)
	dispatcher.Start(ctx)
	defer dispatcher.Close()

	// --- Services ---
	authService := service.NewAuthService(users, munis, munisRepo, service.AuthOptions{
		JWTSecret:          cfg.JWTSecret,
		TokenTTL:           cfg.TokenTTL,
		OfficialInviteCode: cfg.OfficialInviteCode,
	}, log)
	reportService := service.NewReportService(service.ReportDeps{
		Reports:        mongodb.NewReportRepository(db),
		Upvotes:        mongodb.NewUpvoteRepository(db),
		Users:          users,
		Municipalities: munis,
		Geocoder:       munisRepo,
		Activity:       activityRepo,
		Publisher:      dispatcher,
	}, log)

	trustedProxies, err := cfg.TrustedProxyNets()
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Log:               log,
		ExposeErrorDetail: !cfg.IsProduction(),
		Authenticator:     authService,
		Auth:              authService,
		Reports:           reportService,
		Users:             service.NewUserService(users, munisRepo, log),
		Municipalities:    service.NewMunicipalityService(munis),
		AuthLimiter:       redisdb.NewRateLimiter(rdb, cfg.RateLimit.Window),
		AuthRateLimit:     cfg.RateLimit.Auth,
		GlobalRateLimit:   cfg.RateLimit.Global,
		RateLimitWindow:   cfg.RateLimit.Window,
		TrustedProxies:    trustedProxies,
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return redisdb.Ping(ctx, rdb) },
		},
	})

	// --- Serve ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
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

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
