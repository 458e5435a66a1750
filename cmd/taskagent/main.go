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

	"taskagent/internal/config"
	"taskagent/internal/httpapi"
	"taskagent/internal/repository"
	"taskagent/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("config")
	}

	log := zerolog.New(os.Stderr).Level(cfg.LogLevel).With().Timestamp().Logger()

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	completionRepo := repository.NewCompletionRepository(db)
	hiddenRepo := repository.NewHiddenDateRepository(db)
	reportRepo := repository.NewReportRepository(db)

	taskSvc := service.NewTaskService(taskRepo, hiddenRepo)
	overlaySvc := service.NewCompletionService(completionRepo, hiddenRepo)
	timerSvc := service.NewTimerService(taskRepo, completionRepo)
	clientSvc := service.NewClientService(clientRepo)
	projectSvc := service.NewProjectService(projectRepo)
	reportSvc := service.NewReportService(reportRepo)

	watchdog := service.NewTimerWatchdog(taskRepo, completionRepo, timerSvc, log)
	if err := watchdog.Start(); err != nil {
		log.Fatal().Err(err).Msg("watchdog")
	}
	defer watchdog.Stop()

	server := httpapi.NewServer(log, taskSvc, overlaySvc, timerSvc, watchdog, clientSvc, projectSvc, reportSvc)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("taskagent started")
	if err := server.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("shutdown complete")
}
