package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/giftnest/storefront/internal/usecase"
)

const routingKeyConfirmed = "payment.confirmed"

// RabbitProducer implements usecase.Notifier: confirmed payments go onto the
// broker and the mail pipeline drains them. Publishing is best-effort from
// the reconciler's point of view.
type RabbitProducer struct {
	ch       *amqp.Channel
	exchange string
}

// NewRabbitProducer declares the exchange, the confirmation queue and the
// binding once at startup.
func NewRabbitProducer(ch *amqp.Channel, exchange, confirmQueue string) (*RabbitProducer, error) {
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		confirmQueue,
		true,  // durable
		false, // auto-delete
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKeyConfirmed, exchange, false, nil); err != nil {
		return nil, fmt.Errorf("queue bind: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirm mode: %w", err)
	}

	return &RabbitProducer{ch: ch, exchange: exchange}, nil
}

var _ usecase.Notifier = (*RabbitProducer)(nil)

func (p *RabbitProducer) PaymentConfirmed(ctx context.Context, msg usecase.PaymentConfirmedMsg) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Body:         body,
	}

	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKeyConfirmed, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}
