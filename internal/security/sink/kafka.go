package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"proofguard/internal/proof"
)

// DefaultTopic is the Kafka topic security events are published to.
const DefaultTopic = "proofguard.security.events"

// KafkaSink publishes security events to Kafka for SIEM consumption.
// Events are keyed by proof ID so per-proof ordering is preserved.
type KafkaSink struct {
	client *kgo.Client
	topic  string
}

// NewKafkaSink connects to the brokers and ensures the topic exists.
func NewKafkaSink(ctx context.Context, brokers []string, topic string) (*KafkaSink, error) {
	if topic == "" {
		topic = DefaultTopic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &KafkaSink{client: client, topic: topic}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	admin := kadm.NewClient(client)
	resps, err := admin.CreateTopics(ctx, -1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, resp := range resps {
		if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", topic, resp.Err)
		}
	}
	return nil
}

// eventPayload is the JSON structure published to Kafka.
type eventPayload struct {
	EventType string            `json:"event_type"`
	ProofID   string            `json:"proof_id"`
	UserID    string            `json:"user_id"`
	Timestamp string            `json:"timestamp"`
	Details   map[string]string `json:"details,omitempty"`
}

func (s *KafkaSink) Publish(ctx context.Context, event proof.SecurityEvent) error {
	value, err := json.Marshal(eventPayload{
		EventType: event.EventType,
		ProofID:   event.ProofID.String(),
		UserID:    event.UserID.String(),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Details:   event.Details,
	})
	if err != nil {
		return fmt.Errorf("marshal security event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.ProofID.String()),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("publish security event: %w", err)
	}
	return nil
}

// Close flushes outstanding records and releases the client.
func (s *KafkaSink) Close() {
	s.client.Close()
}
