package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/yishak-cs/crm-insights/internal/models"
)

// messageWriter is the subset of *kafka.Writer the producer uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer sends insight events to Kafka
type Producer struct {
	writer messageWriter
	logger *zap.Logger
}

// NewProducer creates a new Kafka producer for the insights topic
func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
		logger: logger,
	}
}

// PublishInsights sends an insight event keyed by customer id, so events for
// one customer land on the same partition in order.
func (p *Producer) PublishInsights(ctx context.Context, event models.InsightEvent) error {
	msg, err := insightMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write insight event: %w", err)
	}

	p.logger.Debug("sent insight event",
		zap.String("event_id", event.EventID),
		zap.String("customer_id", event.CustomerID))
	return nil
}

// Close closes the Kafka writer
func (p *Producer) Close() error {
	return p.writer.Close()
}

func insightMessage(event models.InsightEvent) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode insight event: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.CustomerID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
		Time: event.OccurredAt,
	}, nil
}
