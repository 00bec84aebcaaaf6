package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"moschee-backend/internal/assistant"
	"moschee-backend/internal/config"
	"moschee-backend/internal/database"
	"moschee-backend/internal/handlers"
	"moschee-backend/internal/middleware"
	"moschee-backend/internal/models"
	"moschee-backend/internal/router"
	"moschee-backend/internal/services"
	"moschee-backend/internal/telemetry"
	"moschee-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Erfurter Moschee Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Logging & Telemetry ────
	logger, closeLog, err := telemetry.InitLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatalf("✗ Logger initialization failed: %v", err)
	}
	defer closeLog()

	shutdownTelemetry, err := telemetry.InitTelemetry(context.Background(), cfg.MetricsFile)
	if err != nil {
		fatal(logger, "✗ Telemetry initialization failed", err)
	}
	defer shutdownTelemetry()

	metrics, err := telemetry.NewAssistantMetrics(nil)
	if err != nil {
		fatal(logger, "✗ Assistant metrics registration failed", err)
	}
	logger.Info("✓ Logging and telemetry initialized", "env", cfg.Env, "metrics_file", cfg.MetricsFile)

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		fatal(logger, "✗ Redis connection failed", err)
	}
	defer redisClients.Close()
	logger.Info("✓ Redis connected")

	// ──── Step 4: Initialize Gemini Client ────
	geminiService, err := services.NewGeminiService(
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
		cfg.GeminiConcurrentReqs,
		logger,
	)
	if err != nil {
		fatal(logger, "✗ Gemini client initialization failed", err)
	}
	defer geminiService.Close()
	logger.Info("✓ Gemini client initialized", "model", cfg.GeminiModel, "enabled", cfg.AssistantEnabled())

	// ──── Step 5: Initialize Services ────
	prayerService := services.NewPrayerService(
		cfg.PrayerAPIURL,
		cfg.PrayerLatitude,
		cfg.PrayerLongitude,
		cfg.PrayerMethod,
		redisClients.Cache,
		logger,
	)
	newsCatalog := services.NewNewsCatalog(nil)
	donationService := services.NewDonationService()
	publisher := services.NewUpdatePublisher(redisClients.Cache, logger)

	registry := assistant.NewRegistry(geminiService, cfg.AssistantSessionTTL,
		assistant.WithLogger(logger),
		assistant.WithOnSettled(func(sessionID uuid.UUID, reply assistant.Reply) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metrics.Replied(ctx, string(reply.Outcome))
			publisher.PublishUpdate(ctx, sessionID, models.WSMessage{
				Type:    models.WSTypeReply,
				Payload: models.ReplyEvent{SessionID: sessionID, Reply: reply},
			})
		}),
	)

	// ──── Step 6: Start Background Loops ────
	prayerRefresher := services.NewPrayerRefresher(prayerService, cfg.PrayerRefreshInterval, logger)
	prayerRefresher.Start()
	logger.Info("✓ Prayer-time refresher started", "interval", cfg.PrayerRefreshInterval.String())

	registry.StartSweeper(cfg.AssistantSessionTTL/4, func(removed int) {
		logger.Info("idle assistant sessions removed", "removed", removed, "remaining", registry.Len())
	})
	logger.Info("✓ Assistant session sweeper started", "ttl", cfg.AssistantSessionTTL.String())

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, func(id uuid.UUID) bool {
		_, ok := registry.Get(id)
		return ok
	}, logger)
	logger.Info("✓ WebSocket hub started")

	// ──── Initialize Handlers ────
	healthHandler := handlers.NewHealthHandler(redisClients)
	contentHandler := handlers.NewContentHandler(prayerService, newsCatalog, donationService)
	assistantHandler := handlers.NewAssistantHandler(registry, metrics, logger)
	messageLimiter := middleware.NewRateLimiter(cfg.AssistantRateLimit, time.Minute)

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		healthHandler,
		contentHandler,
		assistantHandler,
		messageLimiter,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Message submissions wait for Gemini
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")
		prayerRefresher.Stop()
		registry.Stop()
		messageLimiter.Stop()
		wsHub.Shutdown()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	logger.Info(fmt.Sprintf("✓ Erfurter Moschee Backend ready on http://localhost:%s", cfg.Port),
		"api", fmt.Sprintf("http://localhost:%s/api/v1", cfg.Port),
		"ws", fmt.Sprintf("ws://localhost:%s/api/v1/assistant/sessions/{id}/ws", cfg.Port),
	)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		fatal(logger, "Server error", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}
