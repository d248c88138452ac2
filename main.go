package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"stock-exchange-game/config"
	"stock-exchange-game/controllers"
	"stock-exchange-game/db"
	"stock-exchange-game/jobs"
	"stock-exchange-game/logger"
	"stock-exchange-game/models"
	"stock-exchange-game/routes"
	"stock-exchange-game/trading"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	logger.SetGlobalLogger(log)
	log.Info().Str("store", cfg.StoreDriver).Msg("Starting stock exchange game")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}

	if cfg.SeedFile != "" {
		n, err := db.LoadSeed(ctx, store, cfg.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("file", cfg.SeedFile).Msg("Failed to load price seed")
		}
		log.Info().Int("points", n).Str("file", cfg.SeedFile).Msg("Price seed loaded")
	}

	hub := models.NewHub(log)
	go hub.Run(ctx)

	desk := trading.NewDesk(store, cfg.Policy(), log)
	game := controllers.NewGameManager(store, desk, hub, cfg.YearIntervalUnit, log)
	if err := game.Resume(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to resume game clock")
	}

	sched := jobs.New(log)
	if err := sched.AddJob(cfg.AlertSchedule, jobs.NewAlertJob(store, desk, cfg.Policy(), hub, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register alert job")
	}
	sched.Start()

	if !cfg.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}
	ctl := controllers.New(store, desk, hub, game, cfg.StartingBalance, log)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           routes.Setup(ctl, hub, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	sched.Stop()
	game.Close()
	if err := store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to close store")
	}

	log.Info().Msg("Server stopped")
}
