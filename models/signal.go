package models

import (
	"fmt"
	"math"
	"time"
)

// SignalType define a trading decision
type SignalType string

const (
	SignalTypeBuy  SignalType = "BUY"
	SignalTypeSell SignalType = "SELL"
	SignalTypeHold SignalType = "HOLD"
)

func (s SignalType) Valid() bool {
	switch s {
	case SignalTypeBuy, SignalTypeSell, SignalTypeHold:
		return true
	default:
		return false
	}
}

// Side maps an actionable signal to an order side
func (s SignalType) Side() (SideType, error) {
	switch s {
	case SignalTypeBuy:
		return SideTypeBuy, nil
	case SignalTypeSell:
		return SideTypeSell, nil
	case SignalTypeHold:
		return "", fmt.Errorf("signal %s has no order side", s)
	default:
		return "", fmt.Errorf("unknown signal type %q", s)
	}
}

// Signal is a trading decision emitted by a strategy
type Signal struct {
	ID        string             `json:"id" validate:"required"`
	ModelID   uint               `json:"modelId" validate:"required"`
	Symbol    string             `json:"symbol" validate:"required"`
	Type      SignalType         `json:"signalType" validate:"required,oneof=BUY SELL HOLD"`
	Strength  float64            `json:"signalStrength" validate:"gte=0,lte=1"`
	Price     float64            `json:"price" validate:"gt=0"`
	Timestamp time.Time          `json:"timestamp" validate:"required"`
	Features  map[string]float64 `json:"features,omitempty"`
}

// NewSignal builds a signal, clamping strength into [0,1]
func NewSignal(id string, modelID uint, symbol string, signalType SignalType, strength float64, price float64,
	timestamp time.Time, features map[string]float64) Signal {
	return Signal{
		ID:        id,
		ModelID:   modelID,
		Symbol:    symbol,
		Type:      signalType,
		Strength:  ClampStrength(strength),
		Price:     price,
		Timestamp: timestamp,
		Features:  features,
	}
}

func ClampStrength(strength float64) float64 {
	if math.IsNaN(strength) {
		return 0
	}
	return math.Max(0, math.Min(1, strength))
}
