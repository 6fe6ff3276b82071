package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/agoodis/product-management-system/internal/config"
	"github.com/agoodis/product-management-system/internal/infra"
	"github.com/agoodis/product-management-system/internal/repository"
	"github.com/agoodis/product-management-system/internal/router"
	"github.com/agoodis/product-management-system/internal/service"
	"github.com/agoodis/product-management-system/internal/worker"
)

func main() {
	// Structured logger: pretty console in dev, JSON in production
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Env == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL, cfg.RedisPoolSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Background workers handle catalog-wide recalculation sweeps so the
	// HTTP path never blocks on them.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One repository handle for the whole process: the worker pool and the
	// HTTP path must contend on the same per-barcode guard.
	productRepo := repository.NewProductRepository(db)
	calcSvc := service.NewCalculationService(productRepo)
	dispatcher := worker.NewDispatcher(rdb)

	workerHandlers := worker.WorkerHandlers{
		Recalc: worker.NewRecalcWorker(calcSvc),
	}
	worker.StartWorkerPool(ctx, rdb, workerHandlers, cfg.WorkerPoolSize)
	worker.StartRecalcCron(ctx, dispatcher, time.Duration(cfg.RecalcIntervalMinute)*time.Minute)

	r := router.New(cfg, db, rdb, productRepo, dispatcher)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("product management backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}
