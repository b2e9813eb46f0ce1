package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meowpremium-bot/internal/bot"
	rediscache "meowpremium-bot/internal/cache/redis"
	"meowpremium-bot/internal/common/config"
	"meowpremium-bot/internal/common/logger"
	"meowpremium-bot/internal/platform/db"
	redisplatform "meowpremium-bot/internal/platform/redis"
	"meowpremium-bot/internal/platform/telegram"
	"meowpremium-bot/internal/repository/postgres"
	"meowpremium-bot/internal/service/broadcast"
	cfgsvc "meowpremium-bot/internal/service/config"
	"meowpremium-bot/internal/service/ledger"
	"meowpremium-bot/internal/service/receipts"
)

const profileCacheTTL = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("meowpremium-bot", cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.Store.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer database.Close()

	if err := postgres.Migrate(database); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Info().Msg("Database connection established")

	var profileCache ledger.ProfileCache
	if cfg.CacheEnabled() {
		redisClient, err := redisplatform.Open(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
		profileCache = rediscache.NewUserCache(redisClient, profileCacheTTL)
		logger.Info().Msg("Profile cache enabled")
	}

	userRepo := postgres.NewUserRepository(database)
	orderRepo := postgres.NewOrderRepository(database)
	settingsRepo := postgres.NewSettingsRepository(database)

	settingsCache := cfgsvc.NewCache(settingsRepo, cfg.ConfigTTL())
	adminResolver := cfgsvc.NewAdminResolver(settingsCache, cfg.Admin.FallbackID)
	ledgerSvc := ledger.NewService(userRepo, profileCache)

	tgClient := telegram.NewClient(cfg.Telegram.BotToken)
	receiptsSvc := receipts.NewService(ledgerSvc, orderRepo, settingsCache, adminResolver, tgClient)
	broadcastSvc := broadcast.NewService(tgClient, 20)

	app := bot.New(settingsCache, adminResolver, ledgerSvc, orderRepo, receiptsSvc, broadcastSvc, tgClient)

	// Warm the settings cache so the first user does not pay for it.
	settingsCache.Get(ctx, true)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	webhookMode := cfg.Server.PublicURL != ""
	if webhookMode {
		// Deliveries are acknowledged immediately and processed by a single
		// worker in arrival order, like the long-poll path. Handling inline
		// would tie flows to the request context and let two concurrent
		// deliveries for one user race on the same session.
		queue := bot.NewUpdateQueue(app, 256)
		go queue.Run(ctx)

		// The token in the path is what authenticates Telegram's pushes.
		router.POST("/webhook/:token", func(c *gin.Context) {
			if c.Param("token") != tgClient.Token() {
				c.Status(http.StatusForbidden)
				return
			}
			var upd telegram.Update
			if err := c.ShouldBindJSON(&upd); err != nil {
				c.Status(http.StatusBadRequest)
				return
			}
			if !queue.Enqueue(upd) {
				// Telegram retries on a non-2xx response.
				c.Status(http.StatusServiceUnavailable)
				return
			}
			c.Status(http.StatusOK)
		})

		url := fmt.Sprintf("%s/webhook/%s", strings.TrimRight(cfg.Server.PublicURL, "/"), tgClient.Token())
		if err := tgClient.SetWebhook(ctx, url); err != nil {
			logger.Fatal().Err(err).Msg("Failed to set webhook")
		}
		logger.Info().Int("port", cfg.Server.Port).Msg("Webhook mode")
	} else {
		if err := tgClient.DeleteWebhook(ctx); err != nil {
			logger.Warn().Err(err).Msg("Webhook cleanup failed")
		}
		logger.Info().Msg("Long-poll mode")
		go pollLoop(ctx, tgClient, app)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP shutdown failed")
	}
}

// pollLoop pulls updates sequentially when no public URL is configured.
func pollLoop(ctx context.Context, client *telegram.Client, app *bot.Bot) {
	var offset int64
	for {
		if ctx.Err() != nil {
			return
		}
		updates, err := client.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn().Err(err).Msg("getUpdates failed, backing off")
			select {
			case <-ctx.Done():
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}
		for _, upd := range updates {
			offset = upd.UpdateID + 1
			app.HandleUpdate(ctx, upd)
		}
	}
}
