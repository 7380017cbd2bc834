package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/kunalsingh7053/VyaparX/internal/platform/eventbus"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
)

// Publisher publishes persistent messages and waits for the broker to
// confirm each one, so the outbox only marks what the broker accepted.
type Publisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
	codec    *eventbus.Codec
}

func NewPublisher(conn *Connection, codec *eventbus.Codec) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("could not open publisher channel: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("could not enable publisher confirms: %w", err)
	}
	return &Publisher{ch: ch, exchange: conn.Exchange(), codec: codec}, nil
}

// Publish implements events.Publisher.
func (p *Publisher) Publish(ctx context.Context, evts ...events.Event) error {
	for _, event := range evts {
		if err := p.publish(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, event events.Event) error {
	body, err := p.codec.Encode(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	confirm, err := p.ch.PublishWithDeferredConfirmWithContext(ctx,
		p.exchange,                 // exchange
		event.EventType().String(), // routing key
		false,                      // mandatory
		false,                      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID(),
			Type:         event.EventType().String(),
			Timestamp:    event.OccurredAt(),
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("could not publish %s: %w", event.EventType(), err)
	}

	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("waiting for confirm of %s: %w", event.EventID(), err)
	}
	if !acked {
		return fmt.Errorf("broker rejected %s %s", event.EventType(), event.EventID())
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

var _ events.Publisher = (*Publisher)(nil)
