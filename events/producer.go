package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// OrderPlacedEvent is published after an order commit succeeds. Consumers
// (analytics, fulfillment) must treat it as at-most-once: publishing is
// best-effort and never blocks the order.
type OrderPlacedEvent struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Total     string    `json:"total"`
	ItemCount int       `json:"item_count"`
	Timestamp time.Time `json:"timestamp"`
}

type OrderStatusChangedEvent struct {
	OrderID   string    `json:"order_id"`
	NewStatus string    `json:"new_status"`
	Timestamp time.Time `json:"timestamp"`
}

// Producer publishes order events to Kafka. A nil *Producer is valid and
// drops every publish, so wiring stays unconditional when brokers are unset.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	zap.L().Info("Kafka producer initialized", zap.String("topic", topic), zap.Strings("brokers", brokers))
	return &Producer{writer: w}
}

func (p *Producer) publish(ctx context.Context, key string, payload interface{}) error {
	if p == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: data})
}

func (p *Producer) PublishOrderPlaced(ctx context.Context, evt OrderPlacedEvent) error {
	return p.publish(ctx, evt.OrderID, evt)
}

func (p *Producer) PublishOrderStatusChanged(ctx context.Context, evt OrderStatusChangedEvent) error {
	return p.publish(ctx, evt.OrderID, evt)
}

func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
