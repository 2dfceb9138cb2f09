package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/flashdeck/internal/api"
	"github.com/vytor/flashdeck/internal/config"
	"github.com/vytor/flashdeck/internal/db"
	"github.com/vytor/flashdeck/internal/jobs"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("FlashDeck Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("timezone=%s", cfg.Timezone)
	log.Debug("new_items_per_session=%d", cfg.NewItemsPerSession)
	log.Debug("quiz_question_count=%d", cfg.QuizQuestionCount)
	log.Debug("import_worker_count=%d", cfg.ImportWorkerCount)
	log.Debug("import_queue_size=%d", cfg.ImportQueueSize)
	log.Debug("enable_reversed=%t", cfg.EnableReversed)
	log.Debug("daily_goal=%d", cfg.DailyGoal)
	log.Debug("speed_round_seconds=%d", cfg.SpeedRoundSeconds)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	deckRepo := sqlite.NewDeckRepository(database.DB)
	itemRepo := sqlite.NewItemRepository(database.DB)
	reviewRepo := sqlite.NewReviewLogRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)

	clock := services.SystemClock(cfg.Location())
	rng := services.NewLockedRand(time.Now().UnixNano())

	itemService := services.NewItemService(itemRepo, deckRepo, reviewRepo, clock)

	importPool := worker.NewPool("import", cfg.ImportWorkerCount, cfg.ImportQueueSize)
	jobQueue := jobs.NewWorkerQueue(importPool, itemService)

	srv := &api.Server{
		DB:           database,
		DeckService:  services.NewDeckService(deckRepo, itemRepo, jobQueue, clock),
		ItemService:  itemService,
		StudyService: services.NewStudyService(itemRepo, deckRepo, reviewRepo, statsRepo, clock, rng, services.StudySettings{
			NewItemCap:     cfg.NewItemsPerSession,
			Reversed:       cfg.EnableReversed,
			SpeedRoundTime: time.Duration(cfg.SpeedRoundSeconds) * time.Second,
		}),
		QuizService:  services.NewQuizService(itemRepo, deckRepo, clock, rng, cfg.QuizQuestionCount),
		StatsService: services.NewStatsService(itemRepo, reviewRepo, statsRepo, clock, cfg.DailyGoal),
	}

	ctx, cancel := context.WithCancel(context.Background())
	importPool.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Queued imports finish before the database closes.
	log.Debug("stopping import pool")
	importPool.Stop()
	cancel()

	log.Info("===========================================")
	log.Info("FlashDeck Server Stopped")
	log.Info("===========================================")
}
