package eventbus

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/kunalsingh7053/VyaparX/modules/shared/events"
	"github.com/kunalsingh7053/VyaparX/modules/shared/events/contracts"
)

// ErrUnknownEventType is returned when decoding a type nobody registered.
var ErrUnknownEventType = errors.New("unknown event type")

// Codec encodes events to JSON and decodes them back into their concrete
// contract types, keyed by event type.
type Codec struct {
	mu       sync.RWMutex
	decoders map[events.EventType]func([]byte) (events.Event, error)
}

func NewCodec() *Codec {
	return &Codec{decoders: make(map[events.EventType]func([]byte) (events.Event, error))}
}

// NewContractsCodec returns a codec that knows every public event contract.
func NewContractsCodec() *Codec {
	c := NewCodec()
	RegisterType[contracts.UserCreatedEvent](c, contracts.UserCreatedEventType)
	RegisterType[contracts.ProductCreatedEvent](c, contracts.ProductCreatedEventType)
	RegisterType[contracts.OrderCreatedEvent](c, contracts.OrderCreatedEventType)
	RegisterType[contracts.OrderStatusChangedEvent](c, contracts.OrderStatusChangedEventType)
	RegisterType[contracts.PaymentInitiatedEvent](c, contracts.PaymentInitiatedEventType)
	RegisterType[contracts.PaymentCompletedEvent](c, contracts.PaymentCompletedEventType)
	RegisterType[contracts.PaymentFailedEvent](c, contracts.PaymentFailedEventType)
	return c
}

// RegisterType teaches c to decode eventType into T.
func RegisterType[T events.Event](c *Codec, eventType events.EventType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decoders[eventType] = func(data []byte) (events.Event, error) {
		var evt T
		if err := json.Unmarshal(data, &evt); err != nil {
			return nil, err
		}
		return evt, nil
	}
}

// EventTypes lists the registered types.
func (c *Codec) EventTypes() []events.EventType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	types := make([]events.EventType, 0, len(c.decoders))
	for t := range c.decoders {
		types = append(types, t)
	}
	return types
}

func (c *Codec) Encode(event events.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", event.EventType(), err)
	}
	return data, nil
}

func (c *Codec) Decode(eventType events.EventType, data []byte) (events.Event, error) {
	c.mu.RLock()
	decode, ok := c.decoders[eventType]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, eventType)
	}
	evt, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", eventType, err)
	}
	return evt, nil
}
