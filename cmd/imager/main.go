package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/user/catalog-imager/internal/adapter/chromedp_crawler"
	"github.com/user/catalog-imager/internal/adapter/filesystem"
	"github.com/user/catalog-imager/internal/adapter/httpfetch"
	"github.com/user/catalog-imager/internal/adapter/postgres"
	redis_adapter "github.com/user/catalog-imager/internal/adapter/redis"
	"github.com/user/catalog-imager/internal/repository"
	"github.com/user/catalog-imager/internal/usecase"
	"github.com/user/catalog-imager/pkg/config"
	"github.com/user/catalog-imager/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run())
}

func run() int {
	// --- Configuration ---
	fs := pflag.NewFlagSet("imager", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		return 1
	}

	// --- Logger ---
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not build logger: %v\n", err)
		return 1
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Error("Invalid configuration", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Record store ---
	dbpool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("Unable to connect to database", zap.Error(err))
		return 1
	}
	defer dbpool.Close()
	log.Info("PostgreSQL connection pool established")

	recordRepo := postgres.NewRecordRepo(dbpool, cfg.EntriesTable)

	// --- Optional resolution cache and run journal ---
	var (
		cache   repository.ResolutionCache
		journal repository.RunJournal
	)
	if cfg.RedisAddr != "" {
		rdb, err := redis_adapter.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("Redis unavailable, continuing without resolution cache", zap.Error(err))
		} else {
			defer rdb.Close()
			cache = redis_adapter.NewResolutionCache(rdb)
			journal = redis_adapter.NewRunJournal(rdb)
			log.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))
		}
	}

	// --- Fetchers ---
	clientCfg := httpfetch.DefaultClientConfig()
	clientCfg.Timeout = cfg.RequestTimeout()
	clientCfg.Proxies = cfg.Proxies()
	clientCfg.RespectRobots = cfg.RespectRobots

	httpClient, err := httpfetch.NewClient(clientCfg, log)
	if err != nil {
		log.Error("Invalid HTTP client configuration", zap.Error(err))
		return 1
	}

	var fetcher repository.PageFetcher = httpClient
	if cfg.FetchMode == "browser" {
		browser := chromedp_crawler.NewBrowserFetcher(clientCfg.UserAgent, cfg.PageLoadTimeout(), log)
		defer browser.Close()
		fetcher = browser
	}

	// --- Metrics ---
	if cfg.MetricsAddr != "" {
		metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			metricsServer.Shutdown(shutdownCtx)
		}()
		log.Info("Serving metrics", zap.String("addr", cfg.MetricsAddr))
	}

	// --- Use Cases ---
	selector := usecase.NewRecordSelector(recordRepo, cfg.MaxEntries, cfg.LinkScanLimit, log)
	resolver := usecase.NewImageResolver(fetcher, cache, cfg.CacheTTL(), log)
	store := filesystem.NewStore(cfg.OutputDir, cfg.MappingFile)
	pipeline := usecase.NewPipeline(selector, resolver, httpClient, store, journal, cfg.RequestDelay(), log)

	log.Info("Starting batch run",
		zap.Int("max_entries", cfg.MaxEntries),
		zap.String("fetch_mode", cfg.FetchMode),
		zap.String("output_dir", cfg.OutputDir),
	)

	if _, err := pipeline.Run(ctx); err != nil {
		log.Error("Batch run failed", zap.Error(err))
		return 1
	}
	return 0
}
