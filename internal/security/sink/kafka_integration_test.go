//go:build integration

package sink_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"proofguard/internal/proof"
	"proofguard/internal/security/sink"
	"proofguard/pkg/domain"
	"proofguard/pkg/testutil/containers"
)

func TestKafkaSinkPublish(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redpanda := containers.NewRedpandaContainer(t)

	kafkaSink, err := sink.NewKafkaSink(ctx, redpanda.Brokers, "proofguard.security.events.test")
	require.NoError(t, err)
	defer kafkaSink.Close()

	event := proof.SecurityEvent{
		EventType: "access_denied",
		ProofID:   domain.ProofID(uuid.New()),
		UserID:    domain.UserID(uuid.New()),
		Timestamp: time.Now().UTC(),
		Details:   map[string]string{"gate": "clearance"},
	}
	require.NoError(t, kafkaSink.Publish(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Brokers...),
		kgo.ConsumeTopics("proofguard.security.events.test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, event.ProofID.String(), string(records[0].Key))

	var payload struct {
		EventType string            `json:"event_type"`
		ProofID   string            `json:"proof_id"`
		UserID    string            `json:"user_id"`
		Details   map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(records[0].Value, &payload))
	require.Equal(t, "access_denied", payload.EventType)
	require.Equal(t, event.ProofID.String(), payload.ProofID)
	require.Equal(t, event.UserID.String(), payload.UserID)
	require.Equal(t, "clearance", payload.Details["gate"])
}
