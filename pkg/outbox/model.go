package outbox

import (
	"sort"
	"time"

	"github.com/segmentio/kafka-go"
)

// Status is the lifecycle of an outbox row. A relay moves pending rows to
// in_progress under a lease and then to sent or failed.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// Header names the relay adds next to an event's own headers.
const (
	HeaderEventType   = "event_type"
	HeaderTraceparent = "traceparent"
)

// Event is one outbox row, written in the same transaction as the
// aggregate it describes.
type Event struct {
	ID            int64
	AggregateType string
	AggregateID   string
	Type          string
	Payload       []byte
	Headers       map[string]string
	Traceparent   string
	CreatedAt     time.Time
}

// Message converts the event to a Kafka message keyed by aggregate id, so
// every event of one order lands on the same partition. Headers are
// emitted in key order; event_type and traceparent override same-named
// entries in Headers.
func (e Event) Message(topic string) kafka.Message {
	h := make(map[string]string, len(e.Headers)+2)
	for k, v := range e.Headers {
		h[k] = v
	}
	h[HeaderEventType] = e.Type
	if e.Traceparent != "" {
		h[HeaderTraceparent] = e.Traceparent
	}

	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(h[k])})
	}
	return kafka.Message{
		Topic:   topic,
		Key:     []byte(e.AggregateID),
		Value:   e.Payload,
		Headers: headers,
	}
}
