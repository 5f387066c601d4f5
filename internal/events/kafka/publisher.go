// Package kafka publishes voucher lifecycle events to Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cashclear/cashclear-pro/internal/ledger"
	"github.com/segmentio/kafka-go"
)

// DefaultTopic receives voucher events when no topic is configured.
const DefaultTopic = "cashclear.vouchers"

// messageWriter is the subset of kafka.Writer used by Publisher.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes ledger events as JSON keyed by voucher code.
type Publisher struct {
	writer messageWriter
}

// NewPublisher creates a publisher for brokers and topic.
func NewPublisher(brokers []string, topic string) *Publisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Publish implements ledger.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, event ledger.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Code),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
