// Package main is the entry point for the medical assistant bot.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sinoai/medassist-bot/internal/bot"
	"github.com/sinoai/medassist-bot/internal/config"
	"github.com/sinoai/medassist-bot/internal/events"
	"github.com/sinoai/medassist-bot/internal/gemini"
	"github.com/sinoai/medassist-bot/internal/handler"
	"github.com/sinoai/medassist-bot/internal/llm"
	"github.com/sinoai/medassist-bot/internal/middleware"
	"github.com/sinoai/medassist-bot/internal/service"
	"github.com/sinoai/medassist-bot/internal/store"
	"github.com/sinoai/medassist-bot/internal/telegram"
	"github.com/sinoai/medassist-bot/pkg/logger"
	"github.com/sinoai/medassist-bot/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting bot")

	if cfg.TelegramToken == "" {
		log.Error("TELEGRAM_TOKEN is required")
		os.Exit(1)
	}

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "medassist-bot", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the persistent store
	db, err := store.Open(cfg.DatabaseFile, log)
	if err != nil {
		log.Error("failed to open store", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()

	// Verify the bot token
	tg := telegram.New(cfg.TelegramAPIURL, cfg.TelegramToken)
	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("failed to verify bot token", zap.Error(err))
		os.Exit(1)
	}
	log.Info("authenticated", zap.String("bot", me.Username))

	// Select the inference provider
	llmClient, err := newLLMClient(cfg, log)
	if err != nil {
		log.Error("failed to create inference client", zap.Error(err))
		os.Exit(1)
	}
	log.Info("inference provider selected", zap.String("provider", llmClient.Name()))

	// Gemini backs translation, transcription and suggestions
	gem := gemini.New(gemini.Config{
		APIKey:            cfg.GeminiAPIKey,
		Model:             cfg.GeminiModel,
		TranslateTimeout:  cfg.TranslateTimeout,
		TranscribeTimeout: cfg.TranscribeTimeout,
		SuggestTimeout:    cfg.SuggestionsTimeout,
	}, log)

	// Connect to NATS when event publishing is enabled
	var publisher *events.Publisher
	if cfg.NATSURL != "" {
		publisher, err = events.Connect(cfg.NATSURL, log)
		if err != nil {
			log.Warn("failed to connect to NATS, events disabled", zap.Error(err))
		} else {
			defer publisher.Close()
		}
	}

	// Initialize services
	chatSvc := service.NewChatService(db, llmClient, gem, gem, publisher, log)
	router := bot.NewRouter(tg, db, chatSvc, gem, cfg.Location, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(db)
	webhookHandler := handler.NewWebhookHandler(router, log)

	// Create the ops router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)

	// Health endpoints
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Webhook intake
	if cfg.Mode == config.ModeWebhook {
		r.Route("/telegram", func(r chi.Router) {
			r.Use(middleware.WebhookAuth(cfg.WebhookSecret))
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
			r.Post("/webhook", webhookHandler.Receive)
		})
	}

	// Start update intake for the configured mode
	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()

	switch cfg.Mode {
	case config.ModeWebhook:
		if cfg.WebhookURL == "" {
			log.Error("WEBHOOK_URL is required in webhook mode")
			os.Exit(1)
		}
		if err := tg.SetWebhook(ctx, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			log.Error("failed to register webhook", zap.Error(err))
			os.Exit(1)
		}
		log.Info("webhook registered", zap.String("url", cfg.WebhookURL))

	case config.ModePolling:
		if err := tg.DeleteWebhook(ctx); err != nil {
			log.Warn("failed to delete webhook", zap.Error(err))
		}
		poller := bot.NewPoller(tg, router, cfg.PollTimeout, log)
		go func() {
			if err := poller.Run(pollCtx); err != nil && pollCtx.Err() == nil {
				log.Error("poller stopped", zap.Error(err))
			}
		}()
		log.Info("polling for updates", zap.Int("timeout", cfg.PollTimeout))

	default:
		log.Error("unknown bot mode", zap.String("mode", cfg.Mode))
		os.Exit(1)
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.OpsPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("ops server listening", zap.String("port", cfg.OpsPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	stopPolling()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("stopped")
}

// newLLMClient builds the configured inference provider.
func newLLMClient(cfg *config.Config, log *logger.Logger) (llm.Client, error) {
	switch llm.Provider(cfg.DefaultProvider) {
	case llm.ProviderOpenAI:
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, "")
	case llm.ProviderAnthropic:
		return llm.NewAnthropicClient(cfg.AnthropicAPIKey, "")
	case llm.ProviderVertex:
		return llm.NewVertexClient(llm.VertexConfig{
			ProjectID:   cfg.ProjectID,
			Location:    cfg.Location,
			EndpointID:  cfg.EndpointID,
			EndpointDNS: cfg.DedicatedEndpointDNS,
			AccessToken: cfg.VertexAccessToken,
			TokenFile:   cfg.VertexTokenFile,
			Timeout:     cfg.InferenceTimeout,
		}, log), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.DefaultProvider)
	}
}
