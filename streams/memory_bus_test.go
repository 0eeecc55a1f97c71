package streams

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBusPublishConsumeAck(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryBus(RedisBusOptions{})

	first, err := bus.Publish(ctx, TopicSignals, []byte("a"))
	require.NoError(t, err)
	second, err := bus.Publish(ctx, TopicSignals, []byte("b"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	messages, err := bus.Consume(ctx, TopicSignals, "trader", "trader-1", 1, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, first, messages[0].ID)

	messages, err = bus.Consume(ctx, TopicSignals, "trader", "trader-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, second, messages[0].ID)
	assert.Equal(t, 2, bus.Pending(TopicSignals, "trader"))

	require.NoError(t, bus.Ack(ctx, TopicSignals, "trader", first, second))
	assert.Equal(t, 0, bus.Pending(TopicSignals, "trader"))
}

func TestMemoryBusBlockingConsume(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryBus(RedisBusOptions{})

	go func() {
		time.Sleep(20 * time.Millisecond)
		_, _ = bus.Publish(ctx, TopicCandles, []byte("candle"))
	}()
	messages, err := bus.Consume(ctx, TopicCandles, "generator", "generator-1", 10, 2*time.Second)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, []byte("candle"), messages[0].Payload)

	messages, err = bus.Consume(ctx, TopicCandles, "generator", "generator-1", 10, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestMemoryBusConsumeHonoursContext(t *testing.T) {
	bus := NewMemoryBus(RedisBusOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := bus.Consume(ctx, TopicCandles, "generator", "generator-1", 10, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryBusRedeliversAndDeadLetters(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bus := NewMemoryBus(RedisBusOptions{MaxDeliveries: 2, ClaimIdle: time.Minute})
	bus.SetClock(func() time.Time { return now })

	id, err := bus.Publish(ctx, TopicSignals, []byte("poison"))
	require.NoError(t, err)

	messages, err := bus.Consume(ctx, TopicSignals, "trader", "trader-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	now = now.Add(2 * time.Minute)
	messages, err = bus.Consume(ctx, TopicSignals, "trader", "trader-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, id, messages[0].ID)
	assert.EqualValues(t, 2, messages[0].Deliveries)

	now = now.Add(2 * time.Minute)
	messages, err = bus.Consume(ctx, TopicSignals, "trader", "trader-1", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, messages)
	assert.Equal(t, 0, bus.Pending(TopicSignals, "trader"))
	assert.Equal(t, 1, bus.Len(DeadLetter(TopicSignals)))
}

func TestMemoryBusMaxLen(t *testing.T) {
	ctx := context.Background()
	bus := NewMemoryBus(RedisBusOptions{MaxLen: 2})
	for _, payload := range []string{"a", "b", "c"} {
		_, err := bus.Publish(ctx, TopicFeatures, []byte(payload))
		require.NoError(t, err)
	}
	assert.Equal(t, 2, bus.Len(TopicFeatures))

	messages, err := bus.Consume(ctx, TopicFeatures, "reader", "reader-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, []byte("b"), messages[0].Payload)
}
