package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"finledger/internal/events"
	"finledger/internal/log"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes ledger events to one topic, keyed by event id.
type Publisher struct {
	writer messageWriter
	topic  string
}

var _ events.Publisher = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
		topic: topic,
	}
}

func (p *Publisher) Publish(ctx context.Context, ev events.LedgerEvent) error {
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.ID.String()),
		Value: data,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(ev.Kind)},
		},
	})
	if err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}

	slog.DebugContext(ctx, "Published ledger event",
		log.FieldComponent, log.ComponentKafka,
		"id", ev.ID,
		"kind", ev.Kind,
		"topic", p.topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
