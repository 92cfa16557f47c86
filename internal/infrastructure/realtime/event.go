package realtime

import (
	"context"
	"errors"
	"time"

	"github.com/sangkips/brewline-api/internal/domain/entity"
)

// Event types
const (
	EventNewOrder = "order.new"
)

// Message is the envelope pushed to subscribers.
type Message struct {
	Event      string        `json:"event"`
	OccurredAt time.Time     `json:"occurred_at"`
	Data       *entity.Order `json:"data"`
}

func newOrderMessage(order *entity.Order) Message {
	return Message{Event: EventNewOrder, OccurredAt: time.Now().UTC(), Data: order}
}

// Publisher delivers new-order events to one channel.
type Publisher interface {
	PublishNewOrder(ctx context.Context, order *entity.Order) error
}

// FanOut publishes to every publisher and joins their errors. One failing
// channel does not stop the others.
type FanOut []Publisher

func (f FanOut) PublishNewOrder(ctx context.Context, order *entity.Order) error {
	var errs []error
	for _, p := range f {
		if err := p.PublishNewOrder(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
