package models

import (
	"fmt"
	"time"
)

// PositionSide define the direction of a position. Only long positions are modeled.
type PositionSide string

const (
	PositionSideLong PositionSide = "LONG"
)

// Position is the open or closed exposure of a model on a symbol
type Position struct {
	ID          uint         `json:"id"`
	ModelID     uint         `json:"modelId"`
	Symbol      string       `json:"symbol"`
	Side        PositionSide `json:"side"`
	Quantity    float64      `json:"quantity"`
	EntryPrice  float64      `json:"entryPrice"`
	ExitPrice   float64      `json:"exitPrice"`
	Mode        TradingMode  `json:"mode"`
	OpenedAt    time.Time    `json:"openedAt"`
	ClosedAt    *time.Time   `json:"closedAt"`
	RealizedPnL float64      `json:"realizedPnl"`
}

// NewPosition returns a new open long Position from an entry fill
func NewPosition(modelID uint, symbol string, quantity float64, entryPrice float64, mode TradingMode,
	openedAt time.Time) *Position {
	return &Position{
		ModelID:    modelID,
		Symbol:     symbol,
		Side:       PositionSideLong,
		Quantity:   quantity,
		EntryPrice: entryPrice,
		Mode:       mode,
		OpenedAt:   openedAt,
	}
}

// IsOpen returns true if the position has not been closed yet
func (p *Position) IsOpen() bool {
	return p.ClosedAt == nil
}

// IsClosed returns true if the position has been closed
func (p *Position) IsClosed() bool {
	return p.ClosedAt != nil
}

// IsLong returns true for long exposure
func (p *Position) IsLong() bool {
	return p.Side == PositionSideLong
}

// CostBasis returns the price paid to enter this position
func (p *Position) CostBasis() float64 {
	return p.Quantity * p.EntryPrice
}

// Close closes the position exactly once and returns the realized pnl.
func (p *Position) Close(exitPrice float64, quantity float64, closedAt time.Time) (float64, error) {
	if p.IsClosed() {
		return 0, fmt.Errorf("position %d (%d, %s) already closed", p.ID, p.ModelID, p.Symbol)
	}
	p.ExitPrice = exitPrice
	p.RealizedPnL = (exitPrice - p.EntryPrice) * quantity
	p.ClosedAt = &closedAt
	return p.RealizedPnL, nil
}

// ProfitPct returns the realized return of a closed position, -1 while open
func (p *Position) ProfitPct() float64 {
	if p.IsOpen() || p.EntryPrice == 0 {
		return -1.0
	}
	return p.ExitPrice/p.EntryPrice - 1
}
