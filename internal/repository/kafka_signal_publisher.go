package repository

import (
	"context"
	"time"

	"FinCast/internal/domain/models"
	"FinCast/internal/domain/repository"
	pkgkafka "FinCast/pkg/kafka"
)

// KafkaSignalPublisher implements SignalPublisher on a Kafka topic.
// Messages are keyed by security so per-security ordering is preserved.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates a Kafka-backed signal publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) PublishSignal(ctx context.Context, securityID string, sig models.ExecutionSignal) error {
	return p.producer.Publish(ctx, p.topic, []byte(securityID), map[string]interface{}{
		"security_id": securityID,
		"signal":      string(sig.Signal),
		"confidence":  sig.Confidence,
		"reason":      sig.Reason,
		"timing":      string(sig.Timing),
		"details":     sig.Details,
		"ts":          time.Now().Unix(),
	})
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
