package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"salesperf/internal/domain/evaluations"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes scored evaluation events to Kafka keyed by employee id so
// one employee's history stays ordered within a partition. Writes are batched
// in the background and never hold up the request that scored the evaluation.
type Publisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
}

var errNoBrokers = errors.New("at least one broker is required")

func NewKafkaPublisher(brokers []string, topic string) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, errNoBrokers
	}
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("event topic must not be empty")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		MaxAttempts:  3,
		Async:        true,
		Completion:   logFailedBatch,
	}
	return &Publisher{writer: writer, topic: topic, timeout: time.Second}, nil
}

// logFailedBatch reports deliveries the async writer gave up on. Publish only
// enqueues, so this is where broker outages surface.
func logFailedBatch(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, msg := range messages {
		slog.Warn("scored event not delivered", "err", err, "topic", msg.Topic, "employee_id", string(msg.Key))
	}
}

func (p *Publisher) Publish(ctx context.Context, event evaluations.ScoredEvent) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s to %s: %w", event.Type, p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func encode(event evaluations.ScoredEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(event.EmployeeID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}, nil
}

// Noop logs events at debug level. It is used when no brokers are configured.
type Noop struct{}

func (Noop) Publish(_ context.Context, event evaluations.ScoredEvent) error {
	slog.Debug("scored event", "type", event.Type, "evaluation_id", event.EvaluationID, "employee_id", event.EmployeeID)
	return nil
}

func (Noop) Close() error { return nil }

type PublishCloser interface {
	evaluations.Publisher
	Close() error
}

// New picks the Kafka publisher when brokers are configured.
func New(brokers []string, topic string) (PublishCloser, error) {
	if len(brokers) == 0 {
		slog.Info("event publishing disabled", "reason", "no brokers configured")
		return Noop{}, nil
	}
	return NewKafkaPublisher(brokers, topic)
}
