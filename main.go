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

	"github.com/mdolezal/sreality-alert/pkg/api"
	"github.com/mdolezal/sreality-alert/pkg/config"
	"github.com/mdolezal/sreality-alert/pkg/crawler"
	"github.com/mdolezal/sreality-alert/pkg/sreality"
	"github.com/mdolezal/sreality-alert/pkg/storage"
	"github.com/mdolezal/sreality-alert/pkg/telegram"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()

	store, err := storage.NewStorage(cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not open storage")
	}
	defer store.CloseDB()

	client := sreality.NewClient(cfg.BaseURL, cfg.FetchTimeout)
	c := crawler.New(client, store, logger)

	var notifier crawler.Notifier
	if cfg.TelegramEnabled() {
		tg, err := telegram.NewNotifier(cfg.TelegramToken, cfg.TelegramChatID, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not initialize telegram bot")
		}
		notifier = tg
		logger.Info().Int64("chat_id", cfg.TelegramChatID).Msg("telegram notifications enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := crawler.NewScheduler(c, notifier, cfg.CrawlInterval, logger)
	go scheduler.Run(ctx)

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewServer(store, c, cfg.CORSOrigin, logger).Router(),
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown failed")
	}
}
