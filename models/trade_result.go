package models

// TradeResult is the outcome of executing an order
type TradeResult struct {
	OrderID        string          `json:"orderId"`
	Status         OrderStatusType `json:"status"`
	FilledPrice    float64         `json:"filledPrice"`
	FilledQuantity float64         `json:"filledQuantity"`
	Fee            float64         `json:"fee"`
	FeeCurrency    string          `json:"feeCurrency"`
	SlippagePct    float64         `json:"slippagePct"`
	Shadow         bool            `json:"shadow"`
	Error          string          `json:"error,omitempty"`
}

// Filled returns true if the order was executed
func (r TradeResult) Filled() bool {
	return r.Status == OrderStatusTypeFilled
}

// NewFailedTradeResult wraps an execution error into a rejected result
func NewFailedTradeResult(orderID string, err error) TradeResult {
	result := TradeResult{
		OrderID: orderID,
		Status:  OrderStatusTypeRejected,
	}
	if err != nil {
		result.Error = err.Error()
	}
	return result
}
