// Package notify delivers committed stock notifications to Kafka.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"inventory-service/internal/core"
)

// KafkaSink publishes notifications to a Kafka topic. Delivery is best
// effort: failures are logged and never surfaced to the stock operation
// that produced the notification.
type KafkaSink struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaSink(broker, topic string, logger *zap.Logger) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(broker),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
			BatchSize:    100,
		},
		logger: logger,
	}
}

type notificationEvent struct {
	ID        int       `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	ItemCode  string    `json:"item_code"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *KafkaSink) Publish(ctx context.Context, n core.Notification) {
	payload, err := json.Marshal(notificationEvent{
		ID:        n.ID,
		Type:      string(n.Type),
		Message:   n.Message,
		ItemCode:  n.ItemCode,
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		s.logger.Error("failed to encode notification", zap.Error(err), zap.Int("id", n.ID))
		return
	}

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.ItemCode),
		Value: payload,
	})
	if err != nil {
		s.logger.Error("failed to publish notification",
			zap.Error(err),
			zap.Int("id", n.ID),
			zap.String("item_code", n.ItemCode))
		return
	}
	s.logger.Info("notification published",
		zap.Int("id", n.ID),
		zap.String("type", string(n.Type)),
		zap.String("item_code", n.ItemCode))
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

// NopSink discards notifications. Used when no broker is configured and in
// tests.
type NopSink struct{}

func (NopSink) Publish(context.Context, core.Notification) {}
