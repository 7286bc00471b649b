// Package kafka ships audit events to a Kafka topic for downstream
// compliance consumers. It is an audit.Sink: delivery failures are reported
// to the publisher, never to the originating request.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "medtrack/pkg/platform/audit"
	"medtrack/pkg/platform/circuit"
)

// Sink produces one JSON record per audit event, keyed by user ID so a
// user's events stay ordered within a partition. A circuit breaker sheds
// produce attempts while the brokers are down; shed events are lost from the
// topic but remain in the primary audit store.
type Sink struct {
	client  *kgo.Client
	topic   string
	breaker *circuit.Breaker
}

// New connects to the given brokers. The caller owns Close.
func New(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return &Sink{
		client:  client,
		topic:   topic,
		breaker: circuit.New("kafka-audit", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
	}, nil
}

type record struct {
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	Role      string `json:"role,omitempty"`
	Email     string `json:"email,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(record{
		Category:  string(audit.Action(event.Action).Category()),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		UserID:    event.UserID.String(),
		Action:    event.Action,
		Role:      event.Role,
		Email:     event.Email,
		RequestID: event.RequestID,
		Detail:    event.Detail,
	})
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	// While the breaker is open each event doubles as a probe, capped to a
	// short timeout so a dead broker cannot stall the publisher loop.
	if s.breaker.IsOpen() {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}

	res := s.client.ProduceSync(ctx, &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.UserID.String()),
		Value: payload,
	})
	if err := res.FirstErr(); err != nil {
		_, change := s.breaker.RecordFailure()
		if change.Opened {
			return fmt.Errorf("produce audit record (circuit opened): %w", err)
		}
		return fmt.Errorf("produce audit record: %w", err)
	}
	s.breaker.RecordSuccess()
	return nil
}

// Close flushes pending records and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}
