// README: RabbitMQ publisher for domain events.
package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

type RabbitPublisher struct {
	ch       *amqp.Channel
	exchange string
	log      *zap.Logger
}

// NewRabbitPublisher declares a topic exchange on the given channel. Routing
// key is the message kind, so consumers can bind to trip.* or shift.*.
func NewRabbitPublisher(ch *amqp.Channel, exchange string, log *zap.Logger) (*RabbitPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, err
	}
	return &RabbitPublisher{ch: ch, exchange: exchange, log: log}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, m Message) {
	body, err := json.Marshal(m)
	if err != nil {
		p.log.Warn("notify: marshal failed", zap.String("kind", string(m.Kind)), zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, p.exchange, string(m.Kind), false, false, amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	})
	if err != nil {
		p.log.Warn("notify: publish failed", zap.String("kind", string(m.Kind)), zap.Error(err))
	}
}
