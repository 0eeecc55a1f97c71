package models

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatusType define order status type
type OrderStatusType string

// OrderType define order type
type OrderType string

// SideType define order side type
type SideType string

// TradingMode define where an accepted order is executed
type TradingMode string

// Global enums
const (
	SideTypeBuy  SideType = "BUY"
	SideTypeSell SideType = "SELL"

	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"

	OrderStatusTypePending   OrderStatusType = "PENDING"
	OrderStatusTypeFilled    OrderStatusType = "FILLED"
	OrderStatusTypeRejected  OrderStatusType = "REJECTED"
	OrderStatusTypeCancelled OrderStatusType = "CANCELLED"

	TradingModePaper  TradingMode = "PAPER"
	TradingModeLive   TradingMode = "LIVE"
	TradingModeShadow TradingMode = "SHADOW"
)

func (s SideType) Valid() bool {
	switch s {
	case SideTypeBuy, SideTypeSell:
		return true
	default:
		return false
	}
}

func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeMarket, OrderTypeLimit:
		return true
	default:
		return false
	}
}

func (s OrderStatusType) Valid() bool {
	switch s {
	case OrderStatusTypePending, OrderStatusTypeFilled, OrderStatusTypeRejected, OrderStatusTypeCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transition is allowed from s.
func (s OrderStatusType) Terminal() bool {
	switch s {
	case OrderStatusTypeFilled, OrderStatusTypeRejected, OrderStatusTypeCancelled:
		return true
	default:
		return false
	}
}

func (m TradingMode) Valid() bool {
	switch m {
	case TradingModePaper, TradingModeLive, TradingModeShadow:
		return true
	default:
		return false
	}
}

// ParseTradingMode accepts the mode names case-insensitively ("paper", "LIVE", ...).
func ParseTradingMode(value string) (TradingMode, error) {
	mode := TradingMode(strings.ToUpper(strings.TrimSpace(value)))
	if !mode.Valid() {
		return "", fmt.Errorf("unknown trading mode %q", value)
	}
	return mode, nil
}

// Order is a requested trade created from an accepted signal
type Order struct {
	ID        string          `json:"id"`
	SignalID  string          `json:"signalId"`
	ModelID   uint            `json:"modelId"`
	Symbol    string          `json:"symbol"`
	Side      SideType        `json:"side"`
	Type      OrderType       `json:"type"`
	Quantity  float64         `json:"quantity"`
	Price     float64         `json:"price"`
	Mode      TradingMode     `json:"mode"`
	Status    OrderStatusType `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

func NewOrder(id string, signalID string, modelID uint, symbol string, side SideType, orderType OrderType,
	quantity float64, price float64, mode TradingMode, createdAt time.Time) (Order, error) {
	order := Order{
		ID:        id,
		SignalID:  signalID,
		ModelID:   modelID,
		Symbol:    symbol,
		Side:      side,
		Type:      orderType,
		Quantity:  quantity,
		Price:     price,
		Mode:      mode,
		Status:    OrderStatusTypePending,
		CreatedAt: createdAt,
	}
	return order, order.Validate()
}

// Validate checks the closed enums and the quantity constraint
func (o Order) Validate() error {
	if !o.Side.Valid() {
		return fmt.Errorf("order %s: unknown side %q", o.ID, o.Side)
	}
	if !o.Type.Valid() {
		return fmt.Errorf("order %s: unknown type %q", o.ID, o.Type)
	}
	if !o.Mode.Valid() {
		return fmt.Errorf("order %s: unknown mode %q", o.ID, o.Mode)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("order %s: unknown status %q", o.ID, o.Status)
	}
	if o.Quantity <= 0 {
		return fmt.Errorf("order %s: quantity must be > 0, got %f", o.ID, o.Quantity)
	}
	return nil
}

// Notional returns quantity * price
func (o Order) Notional() float64 {
	return o.Quantity * o.Price
}

// Transition moves a pending order to a terminal status.
func (o *Order) Transition(next OrderStatusType) error {
	switch o.Status {
	case OrderStatusTypePending:
		switch next {
		case OrderStatusTypeFilled, OrderStatusTypeRejected, OrderStatusTypeCancelled:
			o.Status = next
			return nil
		case OrderStatusTypePending:
			return fmt.Errorf("%w: order %s already %s", ErrInvalidTransition, o.ID, o.Status)
		default:
			return fmt.Errorf("%w: order %s to unknown status %q", ErrInvalidTransition, o.ID, next)
		}
	case OrderStatusTypeFilled, OrderStatusTypeRejected, OrderStatusTypeCancelled:
		return fmt.Errorf("%w: order %s is %s", ErrInvalidTransition, o.ID, o.Status)
	default:
		return fmt.Errorf("%w: order %s has unknown status %q", ErrInvalidTransition, o.ID, o.Status)
	}
}
