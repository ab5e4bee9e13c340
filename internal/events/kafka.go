package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type KafkaBus struct {
	writer  *kafka.Writer
	brokers []string
	topic   string
	groupID string
	log     *logrus.Logger

	mu     sync.Mutex
	reader *kafka.Reader
}

func NewKafkaBus(brokers []string, topic, groupID string, logger *logrus.Logger) *KafkaBus {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaBus{writer: w, brokers: brokers, topic: topic, groupID: groupID, log: logger}
}

func (b *KafkaBus) Publish(ctx context.Context, evt Event) error {
	body, err := encode(evt)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(evt.Key()),
		Value: body,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	}
	if err := b.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to kafka: %w", evt.Type, err)
	}
	return nil
}

func (b *KafkaBus) Run(ctx context.Context, handler Handler) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  b.brokers,
		Topic:    b.topic,
		GroupID:  b.groupID,
		MaxBytes: 10e6, // 10MB
	})
	b.mu.Lock()
	b.reader = reader
	b.mu.Unlock()

	for {
		m, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("fetch kafka message: %w", err)
		}

		evt, err := decode(m.Value)
		if err != nil {
			b.log.Errorf("Dropping malformed message at offset %d: %v", m.Offset, err)
		} else if err := handler(ctx, evt); err != nil {
			b.log.WithFields(logrus.Fields{"event_id": evt.ID, "event_type": evt.Type}).Warnf("Event handler failed: %v", err)
		}

		if err := reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			b.log.Errorf("Failed to commit offset %d: %v", m.Offset, err)
		}
	}
}

func (b *KafkaBus) Close() error {
	var errs []error
	errs = append(errs, b.writer.Close())
	b.mu.Lock()
	if b.reader != nil {
		errs = append(errs, b.reader.Close())
	}
	b.mu.Unlock()
	return errors.Join(errs...)
}
