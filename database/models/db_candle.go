package database

import (
	"time"

	"gorm.io/gorm"
)

type Candle struct {
	gorm.Model
	Symbol      string    `json:"symbol" gorm:"uniqueIndex:idx_symbol_interval_open_time;size:50"`
	Interval    string    `json:"interval" gorm:"column:bar_interval;uniqueIndex:idx_symbol_interval_open_time;size:10"`
	OpenTime    time.Time `json:"openTime" gorm:"uniqueIndex:idx_symbol_interval_open_time"`
	OpenPrice   float64   `json:"openPrice"`
	MaxPrice    float64   `json:"maxPrice"`
	MinPrice    float64   `json:"minPrice"`
	ClosePrice  float64   `json:"closePrice"`
	Volume      float64   `json:"volume"`
	QuoteVolume *float64  `json:"quoteVolume"`
	TradeCount  *int64    `json:"tradeCount"`
}
