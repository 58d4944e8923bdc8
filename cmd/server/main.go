// Command server runs the ingestion/catalog HTTP API and the WebSocket
// progress gateway (spec.md §4's external surface).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/internal/config"
	"github.com/0ui-labs/youtube-bookmarks/internal/db"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
	"github.com/0ui-labs/youtube-bookmarks/internal/httpapi"
	"github.com/0ui-labs/youtube-bookmarks/internal/jobqueue"
	"github.com/0ui-labs/youtube-bookmarks/internal/progressbus"
	"github.com/0ui-labs/youtube-bookmarks/internal/wsgateway"
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

	lists := repository.NewListRepository(pool)
	videos := repository.NewVideoRepository(pool)
	tags := repository.NewTagRepository(pool)
	customFields := repository.NewCustomFieldRepository(pool)
	schemas := repository.NewFieldSchemaRepository(pool)
	values := repository.NewVideoFieldValueRepository(pool)
	jobs := repository.NewJobRepository(pool)
	history := repository.NewProgressEventRepository(pool, cfg.Progress.HistorySize)
	backups := repository.NewFieldValueBackupRepository(pool)

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

	subscriber, err := wsgateway.NewSubscriber(cfg.RabbitMQ.URL(), cfg.RabbitMQ.Exchange)
	if err != nil {
		logger.Log.Fatal("failed to init progress subscriber", zap.Error(err))
	}

	verifier := wsgateway.NewStaticVerifier(parseWSTokens(cfg.Auth.WSTokenUsers))
	gw := wsgateway.NewGateway(verifier, subscriber, history)

	h := httpapi.NewHandlers(lists, videos, tags, customFields, schemas, values, jobs, history, queue, backups)
	auth := httpapi.NewAPIKeyAuth(cfg.Auth.APIKeys)
	router := httpapi.NewRouter(h, auth, gw)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Log.Info("server starting", zap.Int("port", cfg.Server.Port))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Log.Fatal("server error", zap.Error(err))
	case sig := <-shutdown:
		logger.Log.Info("shutdown signal received", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("graceful shutdown failed", zap.Error(err))
			_ = srv.Close()
		}
		logger.Log.Info("server stopped gracefully")
	}
}

// parseWSTokens converts the token->user_id string map loaded from config
// into the uuid.UUID map internal/wsgateway.NewStaticVerifier expects. A
// token whose user id fails to parse is dropped with a warning rather than
// aborting startup over one bad entry.
func parseWSTokens(raw map[string]string) map[string]uuid.UUID {
	tokens := make(map[string]uuid.UUID, len(raw))
	for token, rawUserID := range raw {
		userID, err := uuid.Parse(rawUserID)
		if err != nil {
			logger.Log.Warn("skipping ws token with invalid user id", zap.String("token", token), zap.Error(err))
			continue
		}
		tokens[token] = userID
	}
	return tokens
}
