package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/medilens/patient-portal/internal/admin"
	"github.com/medilens/patient-portal/internal/ai"
	"github.com/medilens/patient-portal/internal/api/router"
	"github.com/medilens/patient-portal/internal/booking"
	appconfig "github.com/medilens/patient-portal/internal/config"
	"github.com/medilens/patient-portal/internal/http/handlers"
	"github.com/medilens/patient-portal/internal/lab"
	"github.com/medilens/patient-portal/internal/observability/metrics"
	"github.com/medilens/patient-portal/internal/session"
	"github.com/medilens/patient-portal/internal/triage"
	"github.com/medilens/patient-portal/internal/users"
	"github.com/medilens/patient-portal/internal/webhook"
	"github.com/medilens/patient-portal/pkg/logging"
)

func main() {
	// Load .env in development; env vars win either way.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting patient-portal API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	webhookMetrics := metrics.NewWebhookMetrics(prometheus.DefaultRegisterer)
	client := webhook.New(webhook.Config{
		Timeout:    cfg.WebhookTimeout,
		MaxRetries: cfg.WebhookMaxRetries,
		Backoff:    cfg.WebhookBackoff,
		Logger:     logger.Logger,
		Metrics:    webhookMetrics,
	})

	sessions := session.NewManager()

	// The AI extraction layer is optional; without it the portal still
	// handles typed symptom descriptions and pre-extracted lab text.
	var gemini *ai.Client
	if cfg.GeminiAPIKey != "" {
		var err error
		gemini, err = ai.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModelID, cfg.GeminiTTSID)
		if err != nil {
			logger.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
	} else {
		logger.Warn("GEMINI_API_KEY not set, voice/image intake and document extraction disabled")
	}

	triageSvc := triage.NewService(client, sessions, cfg.TriageWebhookURL, logger)
	labSvc := lab.NewService(client, sessions, cfg.LabWebhookURL, logger)
	bookingSvc := booking.NewService(client, sessions, cfg.BookingWebhookURL, logger)
	adminSvc := admin.NewService(client, admin.NewStore(), admin.Config{
		RefreshURL:          cfg.AdminRefreshWebhookURL,
		ComplaintsURL:       cfg.ComplaintsWebhookURL,
		ManageComplaintsURL: cfg.ManageComplaintsWebhookURL,
	}, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		LabHandler:         handlers.NewLabHandler(labSvc, nil, logger),
		BookingHandler:     handlers.NewBookingHandler(bookingSvc, logger),
		ComplaintsHandler:  handlers.NewComplaintsHandler(adminSvc, logger),
		AdminDashboard:     handlers.NewAdminDashboardHandler(adminSvc, logger),
		AdminAuthSecret:    cfg.AuthJWTSecret,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if gemini != nil {
		routerCfg.SymptomHandler = handlers.NewSymptomHandler(triage.NewFlow(gemini, triageSvc), triageSvc, logger)
		routerCfg.LabHandler = handlers.NewLabHandler(labSvc, gemini, logger)
		routerCfg.SpeechHandler = handlers.NewSpeechHandler(gemini, logger)
	} else {
		routerCfg.SymptomHandler = handlers.NewSymptomHandler(triage.NewFlow(textOnlyExtractor{}, triageSvc), triageSvc, logger)
	}

	// The user directory needs Redis; skip auth routes when it is not
	// configured.
	if cfg.RedisAddr != "" {
		redisOpts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(redisOpts)

		userStore, err := users.NewStore(context.Background(), redisClient, cfg.AuthJWTSecret, cfg.AuthTokenTTL)
		if err != nil {
			logger.Error("failed to initialize user directory", "error", err)
			os.Exit(1)
		}
		routerCfg.AuthHandler = handlers.NewAuthHandler(userStore, sessions, logger)
	} else {
		logger.Warn("REDIS_ADDR not set, auth routes disabled")
	}

	r := router.New(routerCfg)

	// The write timeout must outlast the slowest webhook call.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WebhookTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// textOnlyExtractor stands in when no AI key is configured: typed text
// passes through and the canned follow-ups are asked.
type textOnlyExtractor struct{}

func (textOnlyExtractor) ExtractImageFindings(ctx context.Context, base64Image, mimeType string) (string, error) {
	return "", errors.New("image intake requires the AI extraction layer")
}

func (textOnlyExtractor) TranscribeAudio(ctx context.Context, base64Audio string) (string, error) {
	return "", errors.New("voice intake requires the AI extraction layer")
}

func (textOnlyExtractor) FollowUpQuestions(ctx context.Context, symptoms string) ([]string, error) {
	return []string{
		"How long have you been experiencing these symptoms?",
		"On a scale of 1 to 10, how severe is your discomfort?",
		"Have you taken any medication for this?",
	}, nil
}
