package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ha3uno/omiseyasan/internal/domain"
	"github.com/segmentio/kafka-go"
)

const EventTypeOrderCreated = "OrderCreated"

type OrderCreatedEvent struct {
	OrderID     int64              `json:"orderId"`
	Items       []domain.OrderItem `json:"items"`
	TotalAmount int64              `json:"totalAmount"`
	OrderedAt   time.Time          `json:"orderedAt"`
}

type Publisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *domain.Order) error {
	payload, err := json.Marshal(newOrderCreatedEvent(order))
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(order.ID, 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventTypeOrderCreated)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order %d: %w", order.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func newOrderCreatedEvent(order *domain.Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:     order.ID,
		Items:       order.Items,
		TotalAmount: order.TotalAmount,
		OrderedAt:   order.OrderedAt,
	}
}

// NopPublisher drops events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishOrderCreated(context.Context, *domain.Order) error { return nil }
func (NopPublisher) Close() error { return nil }
