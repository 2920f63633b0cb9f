package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/dmehra2102/eventia/pkg/tracing"
)

// ResendRequested asks the worker to mail an order's ticket again.
type ResendRequested struct {
	OrderID string `json:"orderId"`
}

type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Publisher struct {
	writer Writer
	topic  string
}

func NewPublisher(writer Writer, topic string) *Publisher {
	return &Publisher{writer: writer, topic: topic}
}

func (p *Publisher) EnqueueResend(ctx context.Context, orderID string) error {
	payload, err := json.Marshal(ResendRequested{OrderID: orderID})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   p.topic,
		Key:     []byte(orderID),
		Value:   payload,
		Headers: tracing.InjectKafkaHeaders(ctx, nil),
	})
}
