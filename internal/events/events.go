// Package events publishes prediction events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/unifai/unifai/pkg/config"
	"github.com/unifai/unifai/pkg/scoring"
)

// TypePredictionScored is emitted once per stored prediction.
const TypePredictionScored = "prediction.scored"

// Event is the envelope written to the topic.
type Event struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	OccurredAt   time.Time      `json:"occurredAt"`
	PredictionID string         `json:"predictionId"`
	Module       scoring.Module `json:"module"`
	Result       scoring.Result `json:"result"`
}

// PredictionScored builds the event for a freshly scored prediction.
func PredictionScored(predictionID string, module scoring.Module, result scoring.Result, at time.Time) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         TypePredictionScored,
		OccurredAt:   at.UTC(),
		PredictionID: predictionID,
		Module:       module,
		Result:       result,
	}
}

// Publisher sends events somewhere durable.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by module so that one module's events stay
// ordered within a partition.
type KafkaPublisher struct {
	w     messageWriter
	topic string
}

// NewKafkaPublisher creates a publisher for cfg.Topic on cfg.Brokers. It returns nil
// when no brokers are configured.
func NewKafkaPublisher(cfg config.EventsConfig) *KafkaPublisher {
	if len(cfg.Brokers) == 0 {
		return nil
	}
	return &KafkaPublisher{
		w: &kafkago.Writer{
			Addr:         kafkago.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafkago.Hash{},
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafkago.RequireAll,
		},
		topic: cfg.Topic,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(e.Module),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "event-type", Value: []byte(e.Type)},
			{Key: "event-id", Value: []byte(e.ID)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.w.Close()
}
