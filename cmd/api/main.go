package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/credit"
	"server/internal/gemini"
	"server/internal/generation"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/payment"
)

func main() {
	// Muat .env (opsional)
	_ = godotenv.Load()

	// Konfigurasi & logger
	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Credit store + ledger (one durable counter, lives across restarts)
	store, err := credit.NewSQLiteStore(cfg.CreditsDBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open credit store")
	}
	defer store.Close()

	ledger, err := credit.NewLedger(ctx, store, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load credit ledger")
	}

	// Gemini client
	model, err := gemini.New(ctx, gemini.Options{
		APIKey: cfg.GeminiAPIKey,
		Model:  cfg.GeminiModel,
		Logger: &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create gemini client")
	}

	// Domain wiring
	coordinator := payment.NewCoordinator(ledger, logger)
	orchestrator := generation.NewOrchestrator(ledger, model, logger)

	// App container + router
	app := handlers.NewApp(ledger, coordinator, orchestrator, logger)
	router := httpapi.NewRouter(app, cfg, logger)

	// HTTP server wrapper dari infra
	server := infra.NewHTTPServer(cfg, router)

	// Start async
	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
