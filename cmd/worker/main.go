// Command worker runs the per-video enrichment pipeline off the
// video:process task queue (spec.md §4.4, §4.5): metadata, captions,
// chapters, one asynq handler per stage transition.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/0ui-labs/youtube-bookmarks/internal/config"
	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
	"github.com/0ui-labs/youtube-bookmarks/internal/enrichment"
	"github.com/0ui-labs/youtube-bookmarks/internal/jobqueue"
	"github.com/0ui-labs/youtube-bookmarks/internal/progressbus"
	"github.com/0ui-labs/youtube-bookmarks/internal/service/quota"
	"github.com/0ui-labs/youtube-bookmarks/internal/service/youtube"
	"github.com/0ui-labs/youtube-bookmarks/internal/worker"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if cfg.YouTube.APIKey == "" {
		logger.Log.Fatal("YouTube API key is required (youtube.apikey / APP_YOUTUBE_APIKEY)")
	}

	ctx := context.Background()

	pool, err := db.NewPool(ctx, &db.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Name,
		SSLMode:         "disable",
		MaxConns:        int32(cfg.Database.MaxConnections),
		MinConns:        int32(cfg.Database.MinConnections),
		MaxConnLifetime: cfg.Database.MaxLifetime,
		MaxConnIdleTime: cfg.Database.MaxIdleTime,
	})
	if err != nil {
		logger.Log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close(pool)

	videos := repository.NewVideoRepository(pool)
	enrichments := repository.NewEnrichmentRepository(pool)
	jobs := repository.NewJobRepository(pool)
	lists := repository.NewListRepository(pool)
	quotaRepo := repository.NewQuotaRepository(pool)
	history := repository.NewProgressEventRepository(pool, cfg.Progress.HistorySize)

	youtubeClient, err := youtube.NewClient(ctx, cfg.YouTube.APIKey)
	if err != nil {
		logger.Log.Fatal("failed to init YouTube client", zap.Error(err))
	}

	quotaManager := quota.NewManager(quotaRepo, cfg.Quota.ThresholdPercent)

	queue, err := jobqueue.NewClient(cfg.Redis.Addr, jobs)
	if err != nil {
		logger.Log.Fatal("failed to init job queue client", zap.Error(err))
	}
	defer func() { _ = queue.Close() }()

	bus, err := progressbus.NewBus(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Exchange, history)
	if err != nil {
		logger.Log.Fatal("failed to init progress bus", zap.Error(err))
	}
	defer func() { _ = bus.Close() }()

	pipeline := enrichment.NewPipeline(&enrichment.Deps{
		YouTube:         youtubeClient,
		Quota:           quotaManager,
		Limiter:         rate.NewLimiter(rate.Limit(cfg.Enrichment.RateLimitQPS), cfg.Enrichment.RateLimitBurst),
		MetadataTimeout: cfg.Enrichment.MetadataTimeout,
		CaptionsTimeout: cfg.Enrichment.CaptionsTimeout,
		ChaptersTimeout: cfg.Enrichment.ChaptersTimeout,
	})

	handler := worker.NewHandler(pipeline, videos, enrichments, jobs, lists, queue, bus, cfg.Worker.MaxRetries)

	srv, err := worker.NewServer(cfg.Redis.Addr, cfg.Worker.Concurrency, handler)
	if err != nil {
		logger.Log.Fatal("failed to init worker server", zap.Error(err))
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Log.Fatal("worker server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))
		srv.Stop()
	}
}
