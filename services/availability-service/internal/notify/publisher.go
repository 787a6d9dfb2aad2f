package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/md-rashed-zaman/slotengine/libs/kafkax"
)

const emptyAvailabilityTopic = "availability.empty.v1"

// Publisher emits availability events to Kafka. It is strictly
// best-effort: callers log and move on when a publish fails.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher returns nil when no brokers are configured, which callers
// treat as notifications disabled.
func NewPublisher(brokers string, logger *slog.Logger) *Publisher {
	list := kafkax.SplitBrokers(brokers)
	if len(list) == 0 {
		return nil
	}
	return &Publisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  list,
			Balancer: &kafka.Hash{},
		}),
		logger: logger,
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

// EmptyAvailability publishes a zero-availability event for the window.
func (p *Publisher) EmptyAvailability(ctx context.Context, eventTypeID int64, slug string, from, to time.Time) error {
	payload, err := json.Marshal(map[string]any{
		"event_type_id": eventTypeID,
		"slug":          slug,
		"window_start":  from.UTC().Format(time.RFC3339),
		"window_end":    to.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	eventID := uuid.NewString()
	msg := kafka.Message{
		Topic: emptyAvailabilityTopic,
		Key:   []byte(slug),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(eventID)},
			{Key: "event_type", Value: []byte(emptyAvailabilityTopic)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)
	return p.writer.WriteMessages(ctx, msg)
}
