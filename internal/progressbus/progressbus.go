// Package progressbus implements the Progress Transport's dual write
// (spec.md §4.6, §4.7): every progress event is appended to the durable
// history table before it is published for live delivery, so a client
// that reconnects via replay never misses an event the live transport
// already sent.
package progressbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/0ui-labs/youtube-bookmarks/internal/db/models"
	"github.com/0ui-labs/youtube-bookmarks/internal/db/repository"
	"github.com/0ui-labs/youtube-bookmarks/internal/metrics"
	"github.com/0ui-labs/youtube-bookmarks/pkg/logger"
)

const publishConfirmTimeout = 5 * time.Second

// Bus publishes ProgressEvents to a topic exchange, keyed per user/video so
// the WebSocket gateway can bind a queue to exactly the videos a connection
// cares about (spec.md §4.7).
type Bus struct {
	exchange string
	history  repository.ProgressEventRepository

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewBus dials amqpURL and declares the durable topic exchange events
// publish to. It does not declare or bind any queue: that is the
// subscribing WebSocket gateway's responsibility, one queue per connection.
func NewBus(amqpURL, exchange string, history repository.ProgressEventRepository) (*Bus, error) {
	b := &Bus{exchange: exchange, history: history}
	if err := b.connect(amqpURL); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bus) connect(amqpURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(b.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	b.conn = conn
	b.channel = ch

	logger.Log.Info("connected to RabbitMQ progress bus", zap.String("exchange", b.exchange))
	return nil
}

// RoutingKey is the topic exchange key a single video's progress publishes
// on, and the binding pattern the WebSocket gateway should use to receive
// it (spec.md §4.7): "user.<user_id>.video.<video_id>".
func RoutingKey(userID, videoID fmt.Stringer) string {
	return fmt.Sprintf("user.%s.video.%s", userID, videoID)
}

// Publish appends event to the history table, then publishes it for live
// delivery. History append always happens first and always happens: a
// publish failure is logged and swallowed, never surfaced to the caller,
// since the reconnecting client's replay will still pick the event up
// (spec.md §5's dual-write ordering invariant).
func (b *Bus) Publish(ctx context.Context, event *models.ProgressEvent) error {
	if err := b.history.Append(ctx, event); err != nil {
		return fmt.Errorf("append progress history: %w", err)
	}

	if err := b.publish(ctx, event); err != nil {
		metrics.RecordPublish(false)
		logger.Log.Warn("failed to publish progress event",
			zap.String("video_id", event.VideoID.String()), zap.Error(err))
		return nil
	}
	metrics.RecordPublish(true)
	return nil
}

func (b *Bus) publish(ctx context.Context, event *models.ProgressEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.channel == nil {
		return fmt.Errorf("channel is not initialized")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal progress event: %w", err)
	}

	confirms := b.channel.NotifyPublish(make(chan amqp.Confirmation, 1))

	err = b.channel.PublishWithContext(ctx, b.exchange, RoutingKey(event.UserID, event.VideoID), false, false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   event.Timestamp,
			MessageId:   event.ID.String(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish progress event: %w", err)
	}

	select {
	case confirm := <-confirms:
		if !confirm.Ack {
			return fmt.Errorf("progress event was not acknowledged by broker")
		}
	case <-time.After(publishConfirmTimeout):
		return fmt.Errorf("timeout waiting for publish confirmation")
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// Close closes the channel and connection.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var errs []error
	if b.channel != nil {
		if err := b.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if b.conn != nil {
		if err := b.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing progress bus: %v", errs)
	}
	return nil
}
