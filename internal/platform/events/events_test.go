package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"salesperf/internal/domain/evaluations"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublishEncodesEvent(t *testing.T) {
	writer := &fakeWriter{}
	pub := &Publisher{writer: writer, topic: "sales-evaluations", timeout: time.Second}
	occurred := time.Date(2025, time.May, 31, 12, 0, 0, 0, time.UTC)

	err := pub.Publish(context.Background(), evaluations.ScoredEvent{
		Type:         evaluations.EventMonthlyScored,
		EvaluationID: "m-1",
		EmployeeID:   "emp-1",
		Score:        88.5,
		Rubrica:      "Aceptable",
		OccurredAt:   occurred,
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if len(writer.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(writer.messages))
	}
	msg := writer.messages[0]
	if string(msg.Key) != "emp-1" || !msg.Time.Equal(occurred) {
		t.Fatalf("unexpected message metadata %+v", msg)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != evaluations.EventMonthlyScored {
		t.Fatalf("unexpected headers %+v", msg.Headers)
	}

	var decoded evaluations.ScoredEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.EvaluationID != "m-1" || decoded.Score != 88.5 {
		t.Fatalf("unexpected payload %+v", decoded)
	}

	if err := pub.Close(); err != nil || !writer.closed {
		t.Fatal("expected writer to be closed")
	}
}

func TestPublishWrapsWriterError(t *testing.T) {
	boom := errors.New("leader not available")
	pub := &Publisher{writer: &fakeWriter{err: boom}, topic: "t", timeout: time.Second}
	if err := pub.Publish(context.Background(), evaluations.ScoredEvent{Type: evaluations.EventWeeklyScored}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}

func TestNewWithoutBrokersIsNoop(t *testing.T) {
	pub, err := New(nil, "topic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := pub.(Noop); !ok {
		t.Fatalf("expected noop publisher, got %T", pub)
	}
	if err := pub.Publish(context.Background(), evaluations.ScoredEvent{}); err != nil {
		t.Fatalf("noop publish failed: %v", err)
	}
}

func TestNewKafkaPublisherValidates(t *testing.T) {
	if _, err := NewKafkaPublisher(nil, "t"); err == nil {
		t.Fatal("expected missing brokers error")
	}
	if _, err := NewKafkaPublisher([]string{"localhost:9092"}, " "); err == nil {
		t.Fatal("expected missing topic error")
	}
	pub, err := NewKafkaPublisher([]string{"localhost:9092"}, "sales-evaluations")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = pub.Close()
}

func TestKafkaPublisherDoesNotBlockOnBroker(t *testing.T) {
	pub, err := NewKafkaPublisher([]string{"127.0.0.1:1"}, "sales-evaluations")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer pub.Close()

	writer, ok := pub.writer.(*kafka.Writer)
	if !ok || !writer.Async || writer.Completion == nil {
		t.Fatalf("expected an async writer with a completion hook, got %+v", pub.writer)
	}

	started := time.Now()
	if err := pub.Publish(context.Background(), evaluations.ScoredEvent{Type: evaluations.EventWeeklyScored, EmployeeID: "emp-1"}); err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Fatalf("publish blocked for %v with no broker listening", elapsed)
	}
	logFailedBatch([]kafka.Message{{Topic: "sales-evaluations", Key: []byte("emp-1")}}, errors.New("dial refused"))
}
