package events

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/observability"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/codes"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes reaction events to a Kafka topic keyed by target.
type KafkaPublisher struct {
	w     messageWriter
	topic string
}

// NewKafkaPublisher creates a publisher for topic on the given brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           20 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{w: w, topic: topic}
}

// PublishReaction writes one message. The key keeps a target on one partition.
func (p *KafkaPublisher) PublishReaction(ctx context.Context, event ReactionEvent) error {
	ctx, span := observability.GetTraceLayer().TracePublish(ctx, "kafka", p.topic)
	defer span.End()

	value, err := event.Encode()
	if err != nil {
		return fmt.Errorf("encode reaction event: %w", err)
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
		Time:  event.At,
	})
	record("kafka", err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("kafka write %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
