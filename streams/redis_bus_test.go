package streams

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBus(t *testing.T, options RedisBusOptions) (*RedisBus, *miniredis.Miniredis) {
	server := miniredis.RunT(t)
	server.SetTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	bus := NewRedisBus(redis.NewClient(&redis.Options{Addr: server.Addr()}), options)
	t.Cleanup(func() { _ = bus.Close() })
	return bus, server
}

func TestRedisBusPublishConsumeAck(t *testing.T) {
	ctx := context.Background()
	bus, server := newRedisBus(t, RedisBusOptions{MaxLen: 100, MaxDeliveries: 3, ClaimIdle: time.Minute})

	id, err := bus.Publish(ctx, TopicSignals, []byte("first"))
	require.NoError(t, err)
	assert.True(t, server.Exists("stream:signals"))

	messages, err := bus.Consume(ctx, TopicSignals, "trader", "trader-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, id, messages[0].ID)
	assert.Equal(t, TopicSignals, messages[0].Topic)
	assert.Equal(t, []byte("first"), messages[0].Payload)
	assert.EqualValues(t, 1, messages[0].Deliveries)

	require.NoError(t, bus.Ack(ctx, TopicSignals, "trader", id))

	server.SetTime(time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC))
	messages, err = bus.Consume(ctx, TopicSignals, "trader", "trader-1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestRedisBusGroupsReadIndependently(t *testing.T) {
	ctx := context.Background()
	bus, _ := newRedisBus(t, RedisBusOptions{})

	_, err := bus.Publish(ctx, TopicCandles, []byte("candle"))
	require.NoError(t, err)

	for _, group := range []string{"signal-generator", "archiver"} {
		messages, err := bus.Consume(ctx, TopicCandles, group, "worker", 10, 0)
		require.NoError(t, err)
		assert.Len(t, messages, 1, group)
	}
}

func TestRedisBusRedeliversAndDeadLetters(t *testing.T) {
	ctx := context.Background()
	bus, server := newRedisBus(t, RedisBusOptions{MaxDeliveries: 2, ClaimIdle: time.Minute})
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	id, err := bus.Publish(ctx, TopicSignals, []byte("poison"))
	require.NoError(t, err)

	messages, err := bus.Consume(ctx, TopicSignals, "trader", "trader-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	// not idle long enough yet
	server.SetTime(start.Add(30 * time.Second))
	messages, err = bus.Consume(ctx, TopicSignals, "trader", "trader-1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)

	server.SetTime(start.Add(2 * time.Minute))
	messages, err = bus.Consume(ctx, TopicSignals, "trader", "trader-2", 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, id, messages[0].ID)
	assert.EqualValues(t, 2, messages[0].Deliveries)

	server.SetTime(start.Add(4 * time.Minute))
	messages, err = bus.Consume(ctx, TopicSignals, "trader", "trader-2", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)

	dead, err := bus.Consume(ctx, DeadLetter(TopicSignals), "inspector", "inspector-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, []byte("poison"), dead[0].Payload)
}
