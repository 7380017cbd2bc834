// Package rabbitmq carries events between services over a durable topic
// exchange. Routing keys are event types; every consuming service owns one
// durable queue per topic.
package rabbitmq

import (
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	DefaultExchange = "commerce.events"
	ExchangeType    = "topic"
)

// Connection owns the process-wide AMQP connection. Open it at startup and
// Close it on shutdown.
type Connection struct {
	conn     *amqp.Connection
	exchange string
	logger   *slog.Logger
}

// Dial connects and declares the exchange, retrying while the broker
// container starts.
func Dial(url, exchange string, logger *slog.Logger) (*Connection, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = slog.Default()
	}

	var conn *amqp.Connection
	var err error
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		logger.Warn("failed to connect to RabbitMQ", slog.Int("attempt", i+1), slog.Any("error", err))
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not open channel: %w", err)
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(
		exchange,     // name
		ExchangeType, // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("could not declare exchange: %w", err)
	}

	return &Connection{conn: conn, exchange: exchange, logger: logger}, nil
}

// Channel opens a new channel on the connection.
func (c *Connection) Channel() (*amqp.Channel, error) {
	return c.conn.Channel()
}

func (c *Connection) Exchange() string { return c.exchange }

func (c *Connection) Close() error {
	return c.conn.Close()
}
