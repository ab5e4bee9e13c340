package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	rabbitExchange = "order_events"
	rabbitQueue    = "notifications_queue"
	rabbitConsumer = "notification-dispatcher"
)

// RabbitMQBus publishes to a durable fanout exchange and consumes from the bound notifications queue.
type RabbitMQBus struct {
	conn      *amqp.Connection
	pubCh     *amqp.Channel
	consumeCh *amqp.Channel
	mu        sync.Mutex
	log       *logrus.Logger
}

func NewRabbitMQBus(url string, logger *logrus.Logger) (*RabbitMQBus, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	pubCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open publish channel: %w", err)
	}

	err = pubCh.ExchangeDeclare(
		rabbitExchange, // name
		"fanout",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	_, err = pubCh.QueueDeclare(
		rabbitQueue, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err = pubCh.QueueBind(rabbitQueue, "", rabbitExchange, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	consumeCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open consume channel: %w", err)
	}
	if err = consumeCh.Qos(10, 0, false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	logger.Info("Connected to RabbitMQ")
	return &RabbitMQBus{conn: conn, pubCh: pubCh, consumeCh: consumeCh, log: logger}, nil
}

func (b *RabbitMQBus) Publish(ctx context.Context, evt Event) error {
	body, err := encode(evt)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pubCh.PublishWithContext(ctx,
		rabbitExchange,   // exchange
		string(evt.Type), // routing key
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    evt.ID,
			Type:         string(evt.Type),
			Timestamp:    evt.OccurredAt,
			Body:         body,
		})
}

func (b *RabbitMQBus) Run(ctx context.Context, handler Handler) error {
	deliveries, err := b.consumeCh.ConsumeWithContext(ctx, rabbitQueue, rabbitConsumer, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", rabbitQueue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("rabbitmq delivery channel closed")
			}
			b.handle(ctx, handler, d)
		}
	}
}

func (b *RabbitMQBus) handle(ctx context.Context, handler Handler, d amqp.Delivery) {
	evt, err := decode(d.Body)
	if err != nil {
		b.log.Errorf("Dropping malformed message %s: %v", d.MessageId, err)
		_ = d.Nack(false, false)
		return
	}

	entry := b.log.WithFields(logrus.Fields{"event_id": evt.ID, "event_type": evt.Type})
	if err := handler(ctx, evt); err != nil {
		entry.Warnf("Event handler failed: %v", err)
		_ = d.Nack(false, false)
		return
	}
	if err := d.Ack(false); err != nil {
		entry.Errorf("Ack failed: %v", err)
	}
}

func (b *RabbitMQBus) Close() error {
	var errs []error
	if b.consumeCh != nil && !b.consumeCh.IsClosed() {
		errs = append(errs, b.consumeCh.Close())
	}
	if b.pubCh != nil && !b.pubCh.IsClosed() {
		errs = append(errs, b.pubCh.Close())
	}
	if b.conn != nil && !b.conn.IsClosed() {
		errs = append(errs, b.conn.Close())
	}
	return errors.Join(errs...)
}
