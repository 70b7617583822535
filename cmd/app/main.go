// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"telegram-ai-relay/internal/application"
	"telegram-ai-relay/internal/config"
	"telegram-ai-relay/internal/domain/model"
	"telegram-ai-relay/internal/domain/ports/adapter"
	"telegram-ai-relay/internal/domain/ports/repository"
	aiAdapters "telegram-ai-relay/internal/infra/adapters/ai"
	tele "telegram-ai-relay/internal/infra/adapters/telegram"
	"telegram-ai-relay/internal/infra/db/memory"
	httpapi "telegram-ai-relay/internal/infra/http"
	"telegram-ai-relay/internal/infra/i18n"
	"telegram-ai-relay/internal/infra/logging"
	"telegram-ai-relay/internal/infra/metrics"
	red "telegram-ai-relay/internal/infra/redis"
	"telegram-ai-relay/internal/infra/sched"
	"telegram-ai-relay/internal/infra/security"
	"telegram-ai-relay/internal/infra/worker"
	"telegram-ai-relay/internal/usecase"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted messages)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("[DEV MODE] Enabled")
	}
	if cfg.Runtime.ConfigFile == "" {
		logger.Info().Str("path", *cfgPath).Msg("no config file, using environment and defaults")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Localisation ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Bot.Language)
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}

	// ---- Catalog & model selector ----
	catalog := model.DefaultCatalog()
	if len(cfg.AI.Models) > 0 {
		entries := make([]model.CatalogEntry, 0, len(cfg.AI.Models))
		for _, m := range cfg.AI.Models {
			entries = append(entries, model.CatalogEntry{ID: m.ID, Vendor: m.Vendor, Description: m.Description, Featured: m.Featured})
		}
		catalog = model.NewCatalog(entries)
	}
	selector, err := usecase.NewModelSelector(catalog, cfg.AI.DefaultModel)
	if err != nil {
		logger.Fatal().Err(err).Msg("model selector")
	}

	// ---- Session store ----
	checks := map[string]httpapi.HealthCheck{}
	var sessions repository.ChatSessionRepository
	switch cfg.Session.Backend {
	case config.BackendRedis:
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		var cipher red.PayloadCipher
		if cfg.Redis.EncryptionKey != "" {
			enc, err := security.NewEncryptionService(cfg.Redis.EncryptionKey)
			if err != nil {
				logger.Fatal().Err(err).Msg("redis encryption")
			}
			cipher = enc
		}
		sessions = red.NewChatSessionRepo(redisClient, cfg.Session.HistoryLimit, cfg.Redis.TTL, cipher)
		checks["redis"] = redisClient.Ping
		logger.Info().Dur("ttl", cfg.Redis.TTL).Bool("encrypted", cipher != nil).Msg("session backend: redis")
	default:
		memRepo := memory.NewChatSessionRepo(cfg.Session.HistoryLimit)
		sessions = memRepo
		if cfg.Session.IdleTTL > 0 {
			sweeper := sched.NewSessionSweeper(cfg.Session.SweepInterval, cfg.Session.IdleTTL, memRepo, logger)
			go func() { _ = sweeper.Run(ctx) }()
		}
		logger.Info().Msg("session backend: memory")
	}

	// ---- AI adapter ----
	var ai adapter.CompletionClient
	switch cfg.AI.Provider {
	case config.ProviderGemini:
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.RequestTimeout)
	default:
		ai, err = aiAdapters.NewOpenRouterAdapter(aiAdapters.OpenRouterConfig{
			APIKey:  cfg.AI.APIKey,
			BaseURL: cfg.AI.BaseURL,
			Referer: cfg.AI.Referer,
			Title:   cfg.AI.Title,
			Timeout: cfg.AI.RequestTimeout,
		})
	}
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.AI.Provider).Msg("ai adapter")
	}
	ai = aiAdapters.NewLimitedAI(ai, cfg.AI.ConcurrentLimit)
	logger.Info().Str("provider", ai.Provider()).Str("model", selector.Current()).Msg("AI adapter ready")

	// ---- Telegram ----
	botAPI, err := tele.NewBotAPI(&cfg.Bot)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	sender := tele.NewSender(botAPI, cfg.Bot.ParseMode, logger)

	// ---- Use cases & facade ----
	formatter := usecase.NewResponseFormatter(tr.T("answer_header"), usecase.MaxChunkRunes)
	chatUC := usecase.NewChatUseCase(sessions, selector, ai, formatter, sender, tr, logger, cfg.Runtime.Dev)
	facade := application.NewBotFacade(chatUC, catalog, tr, cfg.Session.HistoryLimit)

	pool := worker.NewPool(cfg.Bot.Workers, cfg.Bot.Workers*cfg.Bot.QueueSize, logger)
	pool.Start(ctx)

	botAdapter, err := tele.NewRealTelegramBotAdapter(botAPI, &cfg.Bot, facade, sender, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	go runPolling(ctx, stop, botAdapter.StartPolling, logger)

	// ---- Ops server ----
	var ops *httpapi.Server
	if cfg.Admin.Port > 0 {
		ops = httpapi.NewServer(cfg.Admin.Port, checks, logger)
		go func() {
			if err := ops.Start(); err != nil {
				logger.Error().Err(err).Msg("ops server error")
			}
		}()
	}

	// ---- Graceful shutdown ----
	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if ops != nil {
		if err := ops.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("ops server shutdown")
		}
	}
	pool.Stop()
	logger.Info().Msg("bye")
}

// runPolling blocks in poll and cancels the process context once polling ends,
// whatever the reason.
func runPolling(ctx context.Context, stop context.CancelFunc, poll func(context.Context) error, logger *zerolog.Logger) {
	defer stop()
	err := poll(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("telegram polling stopped")
		return
	}
	logger.Warn().Msg("telegram update channel closed")
}
