package models

import "time"

// Bar is one OHLCV observation of a symbol over a fixed interval
type Bar struct {
	Symbol      string    `json:"symbol" validate:"required"`
	Interval    string    `json:"interval" validate:"required"`
	Timestamp   time.Time `json:"timestamp" validate:"required"`
	Open        float64   `json:"open" validate:"gte=0"`
	High        float64   `json:"high" validate:"gte=0"`
	Low         float64   `json:"low" validate:"gte=0"`
	Close       float64   `json:"close" validate:"gt=0"`
	Volume      float64   `json:"volume" validate:"gte=0"`
	QuoteVolume *float64  `json:"quoteVolume,omitempty"`
	TradesCount *int64    `json:"tradesCount,omitempty"`
}

// Closes extracts the close prices of a bar window
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}
	return closes
}
