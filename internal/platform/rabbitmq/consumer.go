package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
)

const (
	defaultPrefetch   = 10
	defaultRetryDelay = time.Second
)

// QueueName returns the durable queue a service consumes eventType from.
func QueueName(service string, eventType events.EventType) string {
	return service + "." + eventType.String()
}

type binding struct {
	eventType events.EventType
	handler   events.Handler
}

// Consumer collects the subscriptions of one service and runs one consumer
// loop per queue.
type Consumer struct {
	conn     *Connection
	service  string
	codec    *eventbus.Codec
	logger   *slog.Logger
	prefetch int

	// retryDelay holds a failed delivery before it is requeued, so a
	// persistently failing handler does not spin on the broker.
	retryDelay time.Duration

	mu       sync.Mutex
	bindings []binding
}

func NewConsumer(conn *Connection, service string, codec *eventbus.Codec, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		conn:     conn,
		service:  service,
		codec:    codec,
		logger:   logger.With("consumer", service),
		prefetch: defaultPrefetch,

		retryDelay: defaultRetryDelay,
	}
}

// Subscribe implements events.Subscriber. Queues are declared by Run.
func (c *Consumer) Subscribe(eventType events.EventType, handler events.Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = append(c.bindings, binding{eventType: eventType, handler: handler})
	return nil
}

// Run declares and binds every subscribed queue, then consumes until ctx is
// cancelled or a channel fails.
func (c *Consumer) Run(ctx context.Context) error {
	c.mu.Lock()
	bindings := append([]binding(nil), c.bindings...)
	c.mu.Unlock()

	type queue struct {
		binding
		ch         *amqp.Channel
		deliveries <-chan amqp.Delivery
	}
	queues := make([]queue, 0, len(bindings))
	for _, b := range bindings {
		deliveries, ch, err := c.declare(b.eventType)
		if err != nil {
			for _, q := range queues {
				q.ch.Close()
			}
			return err
		}
		queues = append(queues, queue{binding: b, ch: ch, deliveries: deliveries})
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, q := range queues {
		g.Go(func() error {
			defer q.ch.Close()
			return c.loop(ctx, q.binding, q.deliveries)
		})
	}
	return g.Wait()
}

func (c *Consumer) declare(eventType events.EventType) (<-chan amqp.Delivery, *amqp.Channel, error) {
	queue := QueueName(c.service, eventType)

	ch, err := c.conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("could not open channel for %s: %w", queue, err)
	}
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("could not set qos for %s: %w", queue, err)
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("could not declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(queue, eventType.String(), c.conn.Exchange(), false, nil); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("could not bind queue %s: %w", queue, err)
	}

	deliveries, err := ch.Consume(
		queue, // queue
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("could not start consuming %s: %w", queue, err)
	}
	return deliveries, ch, nil
}

func (c *Consumer) loop(ctx context.Context, b binding, deliveries <-chan amqp.Delivery) error {
	c.logger.Info("consuming", slog.String("queue", QueueName(c.service, b.eventType)))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", QueueName(c.service, b.eventType))
			}
			c.HandleDelivery(ctx, b.eventType, b.handler, d)
		}
	}
}

// HandleDelivery decodes d, runs handler and settles the delivery: ack on
// success, requeue after the retry delay on handler failure, drop when the
// body cannot be decoded. A cancelled ctx cuts the delay short.
func (c *Consumer) HandleDelivery(ctx context.Context, eventType events.EventType, handler events.Handler, d amqp.Delivery) {
	event, err := c.codec.Decode(eventType, d.Body)
	if err != nil {
		c.logger.Error("dropping undecodable message",
			slog.String("event_type", eventType.String()),
			slog.String("message_id", d.MessageId),
			slog.Any("error", err))
		c.settle(d.Nack(false, false))
		return
	}

	if err := handler.Handle(ctx, event); err != nil {
		c.logger.Warn("event handler failed, requeueing",
			slog.String("event_type", eventType.String()),
			slog.String("event_id", event.EventID()),
			slog.String("aggregate_id", event.AggregateID()),
			slog.Bool("redelivered", d.Redelivered),
			slog.Duration("retry_delay", c.retryDelay),
			slog.Any("error", err))
		c.wait(ctx, c.retryDelay)
		c.settle(d.Nack(false, true))
		return
	}

	c.settle(d.Ack(false))
}

func (c *Consumer) wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (c *Consumer) settle(err error) {
	if err != nil {
		c.logger.Error("could not settle delivery", slog.Any("error", err))
	}
}

var _ events.Subscriber = (*Consumer)(nil)
