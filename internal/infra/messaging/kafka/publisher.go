// Package kafka publishes change events to a Kafka topic.
package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/segmentio/kafka-go"

	"hivecore/internal/config"
	"hivecore/internal/events"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes one message per event, keyed by "<entity>/<id>" so all
// changes to an entity land on the same partition.
type Publisher struct {
	writer  MessageWriter
	timeout time.Duration
}

var _ events.Publisher = (*Publisher)(nil)

// New creates a publisher backed by a kafka-go writer for cfg.
func New(cfg config.KafkaConfig) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return NewWithWriter(w, cfg.WriteTimeout), nil
}

// NewWithWriter wraps an existing writer. A non-positive timeout disables the
// per-publish deadline.
func NewWithWriter(w MessageWriter, timeout time.Duration) *Publisher {
	return &Publisher{writer: w, timeout: timeout}
}

// Key returns the message key used for evt.
func Key(evt events.Event) []byte {
	return []byte(string(evt.Entity) + "/" + strconv.Itoa(evt.EntityID))
}

// Publish encodes evt as JSON and writes it.
func (p *Publisher) Publish(ctx context.Context, evt events.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	msg := kafka.Message{
		Key:   Key(evt),
		Value: payload,
		Time:  evt.OccurredAt,
		Headers: []kafka.Header{
			{Key: "entity", Value: []byte(evt.Entity)},
			{Key: "action", Value: []byte(evt.Action)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %s: %w", evt.ID, err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
