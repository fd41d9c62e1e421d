// Command marketd serves the service-market HTTP API.
//
// @title                       Service Market API
// @version                     1.0
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

	_ "github.com/haofuwu/service-market/docs"
	"github.com/haofuwu/service-market/internal/api"
	"github.com/haofuwu/service-market/internal/app"
	"github.com/haofuwu/service-market/internal/pkg/config"
	"github.com/haofuwu/service-market/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Development(),
		Output: os.Stdout,
		App:    "marketd",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.KV.Backend).Msg("open kv store")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("close kv store")
		}
	}()

	svc, err := app.NewServices(ctx, store.KV, app.Options{
		JWTSecret:            cfg.JWTSecret,
		TokenTTL:             cfg.TokenTTL,
		BcryptCost:           cfg.BcryptCost,
		Seed:                 cfg.Seed,
		RoutesFile:           cfg.RoutesFile,
		UsernameCheckURL:     cfg.UsernameAPI.URL,
		UsernameCheckTimeout: cfg.UsernameAPI.Timeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build services")
	}

	e := api.NewRouter(api.Deps{
		Log:       log,
		Auth:      svc.Auth,
		Market:    svc.Market,
		Stats:     svc.Stats,
		Checker:   svc.Checker,
		Guard:     svc.Guard,
		Readiness: store.Pingers,
		Debug:     cfg.Development(),
	})

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("backend", store.Backend).
			Str("username_check", svc.Checker.Mode()).
			Msg("marketd listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
}
