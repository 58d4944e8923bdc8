package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/internal/jobqueue"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

// Server wraps an asynq.Server/ServeMux pair bound to the single
// video:process task type (spec.md §4.4's worker pool, width `W`).
type Server struct {
	asynqServer *asynq.Server
	mux         *asynq.ServeMux
}

// NewServer builds the task processing server. concurrency is the worker
// pool width `W` (spec.md §6, default 8).
func NewServer(redisAddr string, concurrency int, handler *Handler) (*Server, error) {
	redisOpt, err := jobqueue.ParseRedisURL(redisAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	if concurrency <= 0 {
		concurrency = 8
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:    concurrency,
		Queues:         map[string]int{"default": 1},
		RetryDelayFunc: retryDelay,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Log.Warn("video process task failed", zap.String("type", task.Type()), zap.Error(err))
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(jobqueue.TypeVideoProcess, handler.ProcessTask)

	return &Server{asynqServer: srv, mux: mux}, nil
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	logger.Log.Info("starting video enrichment worker")
	return s.asynqServer.Start(s.mux)
}

// Stop gracefully shuts the server down, letting in-flight tasks finish.
func (s *Server) Stop() {
	logger.Log.Info("shutting down video enrichment worker")
	s.asynqServer.Shutdown()
}
