package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movielens-etl/internal/cache"
	"movielens-etl/internal/config"
	"movielens-etl/internal/db"
	"movielens-etl/internal/handler"
	"movielens-etl/internal/logging"
	"movielens-etl/internal/repository"
	"movielens-etl/internal/service"

	"go.uber.org/zap"
)

// @title MovieLens 100K ETL API
// @version 1.0
// @description Estadísticas de ratings por edad, género y ocupación (Mongo, Redis)
// @host localhost:8080
// @BasePath /
func main() {
	cfg := config.Load()
	if path := os.Getenv("ETL_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			log.Fatal(err)
		}
	}

	logger, err := logging.New(cfg.LogLevel, false)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// Mongo y Redis
	if err := db.InitMongo(cfg, logger); err != nil {
		logger.Fatal("mongo no disponible", zap.Error(err))
	}
	defer db.Close(context.Background())

	if err := cache.InitRedis(cfg, logger); err != nil {
		logger.Warn("redis no disponible, sigo sin cache", zap.Error(err))
	}
	defer cache.Close()

	// repos
	database := db.DB()
	statsRepo := repository.NewStatsRepository(database)
	runRepo := repository.NewRunRepository(database)

	// services
	reportSvc := service.NewReportService(statsRepo, cfg.CacheTTLSeconds, logger)
	etlSvc := service.NewETLService(service.ETLStores{
		Users:   repository.NewUserRepository(database),
		Movies:  repository.NewMovieRepository(database),
		Ratings: repository.NewRatingRepository(database),
		Joined:  repository.NewJoinedRepository(database),
		Stats:   statsRepo,
		Runs:    runRepo,
	}, reportSvc, cfg.DataDir, cfg.OutputDir, logger)

	// handlers
	statsH := handler.NewStatsHandler(reportSvc, statsRepo)
	runH := handler.NewRunHandler(etlSvc, runRepo)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler.NewRouter(statsH, runH),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP escuchando", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("servidor HTTP", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("servidor detenido")
}
