package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	orderdomain "github.com/dmehra2102/eventia/internal/order/domain"
	"github.com/dmehra2102/eventia/pkg/tracing"
)

type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Idempotency interface {
	Key(topic string, partition int, offset int64) string
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type Resender interface {
	ResendTicket(ctx context.Context, orderID string) error
}

type Consumer struct {
	log      *slog.Logger
	reader   Reader
	resender Resender
	idem     Idempotency
	tracer   trace.Tracer
}

func NewReader(brokers []string, topic, group string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

func NewConsumer(log *slog.Logger, reader Reader, resender Resender, idem Idempotency) *Consumer {
	return &Consumer{
		log:      log,
		reader:   reader,
		resender: resender,
		idem:     idem,
		tracer:   otel.Tracer("notification-consumer"),
	}
}

// Run processes resend requests until ctx is cancelled. A message is
// committed once it is handled or found unprocessable. A failed send is
// left uncommitted and stops the consumer, so the group redelivers it
// from the last committed offset on restart.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := c.handle(ctx, msg); err != nil {
			return fmt.Errorf("offset %d left uncommitted: %w", msg.Offset, err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.log.Error("commit failed", "offset", msg.Offset, "err", err)
		}
	}
}

// handle returns an error only when the message must be redelivered.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) error {
	key := c.idem.Key(msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.idem.Seen(ctx, key)
	if err != nil {
		// Processed without dedupe while the store is unreachable.
		c.log.Warn("idempotency check failed, processing anyway", "key", key, "err", err)
	}
	if seen {
		c.log.Info("duplicate message skipped", "key", key)
		return nil
	}

	msgCtx := tracing.ExtractKafkaHeaders(ctx, msg.Headers)
	msgCtx, span := c.tracer.Start(msgCtx, "ConsumeResendRequested")
	defer span.End()

	var req ResendRequested
	if err := json.Unmarshal(msg.Value, &req); err != nil || req.OrderID == "" {
		c.log.Error("malformed resend request", "key", key, "err", err)
		return nil
	}

	err = c.resender.ResendTicket(msgCtx, req.OrderID)
	switch {
	case err == nil:
		c.log.Info("ticket resent", "order_id", req.OrderID)
		return nil
	case errors.Is(err, orderdomain.ErrOrderNotFound):
		c.log.Warn("resend for unknown order dropped", "order_id", req.OrderID)
		return nil
	default:
		span.RecordError(err)
		c.log.Error("ticket resend failed", "order_id", req.OrderID, "err", err)
		if fErr := c.idem.Forget(ctx, key); fErr != nil {
			c.log.Error("idempotency forget failed", "key", key, "err", fErr)
		}
		return err
	}
}
