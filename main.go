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

	"github.com/pathakanu/memobot/internal/bot"
	"github.com/pathakanu/memobot/internal/config"
	"github.com/pathakanu/memobot/internal/database"
	"github.com/pathakanu/memobot/internal/gemini"
	"github.com/pathakanu/memobot/internal/intent"
	"github.com/pathakanu/memobot/internal/metrics"
	myopenai "github.com/pathakanu/memobot/internal/openai"
	"github.com/pathakanu/memobot/internal/twilio"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.New(os.Stdout, "[memobot] ", log.LstdFlags|log.Lshortfile)
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatalf("database init failed: %v", err)
	}
	store := database.NewStore(db)

	providers := []intent.Provider{myopenai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.LLMMaxTokens)}
	geminiClient, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMMaxTokens)
	if err != nil {
		logger.Printf("gemini fallback disabled: %v", err)
	} else {
		providers = append(providers, geminiClient)
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.MustNew(prometheus.DefaultRegisterer)
	}

	extractor := intent.NewExtractor(logger, m, providers...)
	logger.Printf("twilio WhatsApp number: %s", cfg.TwilioWhatsAppNumber)
	twilioClient := twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber, logger)

	var opts []bot.Option
	if cfg.TwilioValidateSignature {
		if cfg.PublicWebhookURL == "" {
			logger.Fatalf("TWILIO_VALIDATE_SIGNATURE requires PUBLIC_WEBHOOK_URL")
		}
		opts = append(opts, bot.WithSignatureValidator(twilioClient))
	}

	reminderBot := bot.New(cfg, store, extractor, twilioClient, m, logger, opts...)
	if err := reminderBot.StartScheduler(); err != nil {
		logger.Fatalf("scheduler start: %v", err)
	}

	mux := http.NewServeMux()
	reminderBot.RegisterRoutes(mux)
	if cfg.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Printf("server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Println("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("server shutdown error: %v", err)
		}
		reminderBot.StopScheduler()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
