package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nurpe/depot-checkins/internal/config"
	"github.com/nurpe/depot-checkins/internal/db"
	"github.com/nurpe/depot-checkins/internal/excel"
	httphandler "github.com/nurpe/depot-checkins/internal/http"
	"github.com/nurpe/depot-checkins/internal/jobs"
	"github.com/nurpe/depot-checkins/internal/logger"
	"github.com/nurpe/depot-checkins/internal/notify"
	"github.com/nurpe/depot-checkins/internal/pdf"
	"github.com/nurpe/depot-checkins/internal/repository"
	"github.com/nurpe/depot-checkins/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	driverRepo := repository.NewDriverRepository(database, log)
	checkinRepo := repository.NewCheckinRepository(database)
	reportRepo := repository.NewReportRepository(database)
	settingsRepo := repository.NewSettingsRepository(database)

	ctx := context.Background()
	if err := driverRepo.EnsureSeeded(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize roster")
	}

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.Slack.BotToken != "" {
		notifier = notify.NewSlackNotifier(cfg.Slack.BotToken, cfg.Slack.Channel, log)
		log.Info().Str("channel", cfg.Slack.Channel).Msg("slack alerts enabled")
	}

	checkinService := service.NewCheckinService(driverRepo, checkinRepo, settingsRepo, notifier, log)
	reportService := service.NewReportService(reportRepo, checkinRepo)
	driverService := service.NewDriverService(driverRepo)
	settingsService := service.NewSettingsService(settingsRepo)
	exportService := service.NewExportService(checkinService, reportService, excel.NewGenerator(), pdf.NewGenerator())

	monitor := jobs.NewDelayMonitor(checkinService, settingsRepo, notifier, log)
	stopMonitor := make(chan struct{})
	go monitor.Start(ctx, cfg.Alerts.SweepInterval, stopMonitor)

	handler := httphandler.NewHandler(checkinService, reportService, driverService, settingsService, exportService, log)
	router := httphandler.NewRouter(handler, cfg.Environment)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutdown signal received")
		close(stopMonitor)
		os.Exit(0)
	}()

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting checkin service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		close(stopMonitor)
		os.Exit(1)
	}
}
