package events

import (
	"context"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
)

// JSONPublisher is the part of helpers.RabbitPublisher the event publisher needs.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, msgType string, body any) error
}

// Publisher sends user lifecycle events to the user-events queue.
type Publisher struct {
	pub JSONPublisher
}

func NewPublisher(pub JSONPublisher) *Publisher {
	return &Publisher{pub: pub}
}

func (p *Publisher) PublishUserEvent(ctx context.Context, ev entity.UserEvent) error {
	return p.pub.PublishJSON(ctx, string(ev.Type), ev)
}
