package wsgateway

import (
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Subscriber binds one exclusive queue per connection to the progress
// exchange, wildcarded to a single user's videos
// ("user.<user_id>.video.*"). This is the fan-out half of the Progress Bus
// (spec.md §4.6, §4.7) deliberately left out of internal/progressbus.Bus,
// which only publishes: each live connection needs its own queue, not a
// shared one.
type Subscriber struct {
	conn     *amqp.Connection
	exchange string
}

func NewSubscriber(amqpURL, exchange string) (*Subscriber, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return &Subscriber{conn: conn, exchange: exchange}, nil
}

// Subscription is a single connection's bound queue and delivery stream.
// Close releases the channel; it does not close the shared connection.
type Subscription struct {
	channel    *amqp.Channel
	Deliveries <-chan amqp.Delivery
}

func (s *Subscriber) Subscribe(userID uuid.UUID) (*Subscription, error) {
	ch, err := s.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	routingKey := fmt.Sprintf("user.%s.video.*", userID)
	if err := ch.QueueBind(q.Name, routingKey, s.exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to consume queue: %w", err)
	}

	return &Subscription{channel: ch, Deliveries: deliveries}, nil
}

func (sub *Subscription) Close() error {
	return sub.channel.Close()
}

func (s *Subscriber) Close() error {
	return s.conn.Close()
}
