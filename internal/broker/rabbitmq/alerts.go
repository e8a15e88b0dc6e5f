package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DigitariaWebs/Safyr-sub007/internal/webhook"
	amqp "github.com/rabbitmq/amqp091-go"
)

var _ webhook.WebhookPublisher = (*AlertPublisher)(nil)

const alertsQueue = "workzone_alerts"

// channel - часть *amqp.Channel, нужная издателю
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AlertPublisher рассылает уведомления о выходе из зоны через fanout exchange
type AlertPublisher struct {
	ch       channel
	exchange string
}

func NewAlertPublisher(conn *amqp.Connection, exchange string) (*AlertPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	return newAlertPublisher(ch, exchange)
}

func newAlertPublisher(ch channel, exchange string) (*AlertPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := ch.QueueDeclare(alertsQueue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.QueueBind(alertsQueue, "", exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	return &AlertPublisher{ch: ch, exchange: exchange}, nil
}

// Publish отправляет событие в exchange
func (p *AlertPublisher) Publish(ctx context.Context, event webhook.AlertEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.AlertID.String(),
		Timestamp:    event.Timestamp,
		Type:         "workzone.alert",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish alert to RabbitMQ: %w", err)
	}
	return nil
}
