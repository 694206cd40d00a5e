//go:build integration

package stream_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "regsync/pkg/platform/audit"
	"regsync/pkg/platform/audit/publishers/stream"
	"regsync/pkg/testutil/containers"
)

func TestSink_ProducesKeyedEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	rp := containers.NewRedpandaContainer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sink, err := stream.New([]string{rp.Broker}, "regsync.audit.test")
	require.NoError(t, err)
	defer sink.Close()

	require.NoError(t, sink.EnsureTopic(ctx))
	require.NoError(t, sink.EnsureTopic(ctx))
	require.NoError(t, sink.Ping(ctx))

	event := audit.Event{
		ID:       "e-1",
		UserID:   "42",
		Action:   string(audit.EventRegistrationStatusUpdated),
		Category: audit.CategoryCompliance,
		TicketID: "T-1",
		Status:   "ACTIVE",
	}
	require.NoError(t, sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics("regsync.audit.test"),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.Empty(t, fetches.Errors())

	records := fetches.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "42", string(records[0].Key))

	var got audit.Event
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	assert.Equal(t, event, got)
}

func TestNew_Validation(t *testing.T) {
	_, err := stream.New(nil, "topic")
	assert.Error(t, err)
	_, err = stream.New([]string{"localhost:9092"}, "")
	assert.Error(t, err)
}
