package repository

import (
	"context"
	"fmt"

	"github.com/Paulpandian-ai/factor-impact-intelligence/internal/domain/models"
	"github.com/Paulpandian-ai/factor-impact-intelligence/pkg/kafka"
)

// KafkaResultPublisher exports every CompositeResult to a topic keyed by ticker, so all
// results for one ticker land on one partition in order.
type KafkaResultPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaResultPublisher(p *kafka.Producer, topic string) *KafkaResultPublisher {
	return &KafkaResultPublisher{producer: p, topic: topic}
}

func (p *KafkaResultPublisher) Publish(ctx context.Context, r *models.CompositeResult) error {
	if r == nil {
		return nil
	}
	if err := p.producer.PublishBatch(ctx, p.topic, []kafka.Message{{
		Key:     []byte(r.Ticker),
		Value:   r,
		Headers: map[string]string{"signal": string(r.Signal)},
	}}); err != nil {
		return fmt.Errorf("publish result %s: %w", r.Ticker, err)
	}
	return nil
}

func (p *KafkaResultPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher drops results; used when Kafka export is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.CompositeResult) error { return nil }
func (NopPublisher) Close() error                                          { return nil }
