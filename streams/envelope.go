package streams

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

const SchemaVersion = 1

const (
	TopicCandles  = "candles"
	TopicFeatures = "features"
	TopicSignals  = "signals"
)

// DeadLetter is the topic receiving messages that exhausted their deliveries
func DeadLetter(topic string) string {
	return topic + ".dead"
}

// Envelope is the versioned wire format of every bus message
type Envelope struct {
	Version int             `json:"v" validate:"eq=1"`
	Topic   string          `json:"topic" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

var validate = validator.New()

func Encode(topic string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", topic, err)
	}
	return json.Marshal(Envelope{Version: SchemaVersion, Topic: topic, Payload: raw})
}

// Decode checks the envelope version and topic, then decodes and validates the payload
func Decode(data []byte, topic string, payload interface{}) error {
	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidEnvelope, err)
	}
	if err := validate.Struct(envelope); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidEnvelope, err)
	}
	if envelope.Topic != topic {
		return fmt.Errorf("%w: expected topic %s, got %s", models.ErrInvalidEnvelope, topic, envelope.Topic)
	}
	if err := json.Unmarshal(envelope.Payload, payload); err != nil {
		return fmt.Errorf("%w: %s payload: %v", models.ErrInvalidEnvelope, topic, err)
	}
	if err := validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %s payload: %v", models.ErrInvalidEnvelope, topic, err)
	}
	return nil
}
