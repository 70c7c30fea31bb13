package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/user/catalog-imager/internal/adapter/chromedp_crawler"
	"github.com/user/catalog-imager/internal/adapter/httpfetch"
	"github.com/user/catalog-imager/internal/adapter/postgres"
	redis_adapter "github.com/user/catalog-imager/internal/adapter/redis"
	"github.com/user/catalog-imager/internal/delivery/http/handler"
	"github.com/user/catalog-imager/internal/delivery/http/router"
	"github.com/user/catalog-imager/internal/repository"
	"github.com/user/catalog-imager/internal/usecase"
	"github.com/user/catalog-imager/pkg/config"
	"github.com/user/catalog-imager/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(nil)
	if err != nil {
		panic("could not load config: " + err.Error())
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic("could not build logger: " + err.Error())
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx := context.Background()

	// --- Database Connections ---
	dbpool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Unable to connect to database", zap.Error(err))
	}
	defer dbpool.Close()
	log.Info("PostgreSQL connection pool established")

	recordRepo := postgres.NewRecordRepo(dbpool, cfg.EntriesTable)
	checks := map[string]handler.Pinger{"postgres": recordRepo}

	var (
		cache   repository.ResolutionCache
		journal repository.RunJournal
	)
	if cfg.RedisAddr != "" {
		rdb, err := redis_adapter.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal("Unable to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		resolutionCache := redis_adapter.NewResolutionCache(rdb)
		cache = resolutionCache
		journal = redis_adapter.NewRunJournal(rdb)
		checks["redis"] = resolutionCache
		log.Info("Redis connection established")
	}

	// --- Fetchers ---
	clientCfg := httpfetch.DefaultClientConfig()
	clientCfg.Timeout = cfg.RequestTimeout()
	clientCfg.Proxies = cfg.Proxies()
	clientCfg.RespectRobots = cfg.RespectRobots

	httpClient, err := httpfetch.NewClient(clientCfg, log)
	if err != nil {
		log.Fatal("Invalid HTTP client configuration", zap.Error(err))
	}
	var fetcher repository.PageFetcher = httpClient
	if cfg.FetchMode == "browser" {
		browser := chromedp_crawler.NewBrowserFetcher(clientCfg.UserAgent, cfg.PageLoadTimeout(), log)
		defer browser.Close()
		fetcher = browser
	}

	// --- Use Cases ---
	selector := usecase.NewRecordSelector(recordRepo, cfg.MaxEntries, cfg.LinkScanLimit, log)
	resolver := usecase.NewImageResolver(fetcher, cache, cfg.CacheTTL(), log)

	// --- HTTP Server ---
	apiHandler := handler.NewHandler(resolver, selector, journal, checks, log)
	httpRouter := router.New(apiHandler, log)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      httpRouter,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout() + cfg.PageLoadTimeout() + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Starting server", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Could not listen on port", zap.String("port", cfg.ServerPort), zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exiting")
}
