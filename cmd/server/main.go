package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"pken.app/survey-gateway/common/id"
	"pken.app/survey-gateway/common/logger"
	"pken.app/survey-gateway/common/otel"
	"pken.app/survey-gateway/core/config"
	"pken.app/survey-gateway/internal/cache"
	"pken.app/survey-gateway/internal/http/handler"
	"pken.app/survey-gateway/internal/http/middleware"
	httprouter "pken.app/survey-gateway/internal/http/router"
	"pken.app/survey-gateway/internal/service"
	"pken.app/survey-gateway/internal/wordpress"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "survey gateway starting",
		"env", cfg.Env,
		"wp_base", cfg.WordPress.BaseURL,
		"liff_enabled", cfg.LIFF.Enabled(),
	)
	if !cfg.LIFF.Enabled() {
		slog.WarnContext(ctx, "LIFF disabled or LIFF_ID unset, client will run with a mock profile")
	}
	if cfg.WordPress.SharedSecret == "" {
		slog.WarnContext(ctx, "WP_SHARED_SECRET unset, signed WordPress calls will be rejected")
	}

	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	var historyCache cache.HistoryCache = cache.Noop{}
	if cfg.Cache.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient := redis.NewClient(redisOpts)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			// The cache is optional; requests fall through to WordPress.
			slog.WarnContext(ctx, "redis not reachable at startup", "error", err)
		} else {
			slog.InfoContext(ctx, "redis connected", "history_ttl", cfg.Cache.HistoryTTL)
		}
		historyCache = cache.NewRedisHistoryCache(redisClient, cfg.Cache.HistoryTTL)
	} else {
		slog.InfoContext(ctx, "history cache disabled (no REDIS_URL configured)")
	}

	services := service.NewServices(service.ServicesConfig{
		WordPress:    wordpress.NewClient(cfg.WordPress),
		HistoryCache: historyCache,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, historyCache)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, historyCache cache.HistoryCache) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → request id sees it → Recovery → Logger logs with both
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.RequestID(cfg.TraceHeaderName))
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		Health: handler.HealthInfo{
			Env:          cfg.Env,
			HasLIFFID:    cfg.LIFF.ID != "",
			LIFFEnabled:  cfg.LIFF.Enabled(),
			HasWPBase:    cfg.WordPress.BaseURL != "",
			CacheEnabled: cfg.Cache.Enabled(),
		},
		HistoryCache: historyCache,
	})

	return router
}

const banner = `
 ___ _   _ ___ _   _ _____   __   ___   _ _____ _____      ___ __   __
/ __| | | | _ \ | | | __\ \ / /  / __| /_\_   _| __\ \    / /_\\ \ / /
\__ \ |_| |   / |_| | _| \ V /  | (_ |/ _ \| | | _| \ \/\/ / _ \\ V /
|___/\___/|_|_\\___/|___| |_|    \___/_/ \_\_| |___| \_/\_/_/ \_\|_|
`
