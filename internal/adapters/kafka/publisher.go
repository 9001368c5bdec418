package kafkaad

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"stayhaven/internal/domain"
)

// Publisher writes reservation lifecycle events to a single topic,
// keyed by reservation id so a consumer sees one reservation's events
// in order.
type Publisher struct{ w *kafka.Writer }

func New(brokers []string, topic string) *Publisher {
	return &Publisher{
		w: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, e domain.Event) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.ReservationID),
		Value: b,
	})
}

func (p *Publisher) Close() error { return p.w.Close() }
