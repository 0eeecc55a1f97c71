package streams

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

type candlePayload struct {
	Symbol    string    `json:"symbol" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close" validate:"gt=0"`
}

func TestEncodeDecode(t *testing.T) {
	stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	data, err := Encode(TopicCandles, candlePayload{Symbol: "BTCUSDT", Timestamp: stamp, Close: 42000})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"v":1`)
	assert.Contains(t, string(data), `"topic":"candles"`)

	var decoded candlePayload
	require.NoError(t, Decode(data, TopicCandles, &decoded))
	assert.Equal(t, "BTCUSDT", decoded.Symbol)
	assert.True(t, stamp.Equal(decoded.Timestamp))
	assert.Equal(t, 42000.0, decoded.Close)
}

func TestDecodeRejectsInvalidEnvelopes(t *testing.T) {
	valid, err := Encode(TopicCandles, candlePayload{Symbol: "BTCUSDT", Close: 1})
	require.NoError(t, err)
	invalidPayload, err := Encode(TopicCandles, candlePayload{Symbol: "BTCUSDT", Close: -1})
	require.NoError(t, err)

	cases := map[string]struct {
		data  []byte
		topic string
	}{
		"not json":        {data: []byte("{"), topic: TopicCandles},
		"unknown version": {data: []byte(`{"v":2,"topic":"candles","payload":{"symbol":"X","close":1}}`), topic: TopicCandles},
		"missing payload": {data: []byte(`{"v":1,"topic":"candles"}`), topic: TopicCandles},
		"other topic":     {data: valid, topic: TopicSignals},
		"invalid payload": {data: invalidPayload, topic: TopicCandles},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			var decoded candlePayload
			err := Decode(c.data, c.topic, &decoded)
			assert.ErrorIs(t, err, models.ErrInvalidEnvelope)
		})
	}
}

func TestDeadLetter(t *testing.T) {
	assert.Equal(t, "signals.dead", DeadLetter(TopicSignals))
}
