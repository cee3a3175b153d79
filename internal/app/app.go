package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/promptvault/internal/catalog"
	"github.com/MrSnakeDoc/promptvault/internal/config"
	"github.com/MrSnakeDoc/promptvault/internal/events"
	"github.com/MrSnakeDoc/promptvault/internal/httpserver"
	"github.com/MrSnakeDoc/promptvault/internal/httpserver/deps"
	"github.com/MrSnakeDoc/promptvault/internal/logger"
	"github.com/MrSnakeDoc/promptvault/internal/metrics"
	"github.com/MrSnakeDoc/promptvault/internal/redis"
	"github.com/MrSnakeDoc/promptvault/internal/scheduler"
	"github.com/MrSnakeDoc/promptvault/internal/sources/remote"
	redisstore "github.com/MrSnakeDoc/promptvault/internal/store/redis"
	"github.com/MrSnakeDoc/promptvault/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	catalog     *catalog.Synchronizer
	refresher   *scheduler.BackgroundRefresher
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// The state store lives in Redis; fail fast if it is unreachable.
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(context.Background(), redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		DB:             cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient, cfg.StateKey)
	source := remote.NewClient(remote.Options{
		IndexURL:    cfg.IndexURL,
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.FetchTimeout,
		MaxFailures: cfg.BreakerMaxFails,
		OpenPeriod:  cfg.BreakerOpenPeriod,
	}, loggerClient)

	bus := events.New()
	collector := metrics.New()

	syncer := catalog.New(catalog.Options{
		Store:                  store,
		Source:                 source,
		Bus:                    bus,
		Metrics:                collector,
		Logger:                 loggerClient,
		BaseURL:                cfg.BaseURL,
		FetchConcurrency:       cfg.FetchConcurrency,
		RefreshTimeout:         cfg.RefreshTimeout,
		DefaultIntervalMinutes: cfg.RefreshInterval,
	})
	refresher := scheduler.NewBackgroundRefresher(syncer, bus, loggerClient)

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		RequestTimeout: cfg.RequestTimeout,
		Catalog:        syncer,
		Scheduler:      refresher,
		Bus:            bus,
		Metrics:        collector,
		Store:          store,
		Remote:         source,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		catalog:     syncer,
		refresher:   refresher,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting PromptVault %s on %s", version.String(), a.cfg.ListenPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// Load the stored state and refresh it if stale; readyz and /api
	// answer 503 until this returns.
	a.catalog.Initialize(ctx)
	md := a.catalog.CacheMetadata()
	a.logger.Info("catalog initialized",
		logger.Int("prompts", len(a.catalog.Prompts())),
		logger.String("data_version", md.DataVersion))

	a.refresher.Start(ctx)
	a.logger.Info("background refresh scheduler configured",
		logger.Bool("enabled", md.BackgroundRefreshEnabled),
		logger.Int("interval_minutes", md.RefreshIntervalMinutes))

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.refresher.Stop()
		return err
	}

	a.refresher.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	// Manual refreshes run detached from requests; let them commit.
	a.catalog.Wait()

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ PromptVault stopped cleanly")
	return nil
}
