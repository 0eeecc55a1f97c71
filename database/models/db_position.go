package database

import (
	"time"

	"gorm.io/gorm"
)

type Position struct {
	gorm.Model
	ModelID     uint       `json:"modelId" gorm:"index:idx_model_symbol"`
	Symbol      string     `json:"symbol" gorm:"index:idx_model_symbol;size:50"`
	Side        string     `json:"side" gorm:"size:10"`
	Quantity    float64    `json:"quantity"`
	EntryPrice  float64    `json:"entryPrice"`
	ExitPrice   float64    `json:"exitPrice"`
	Mode        string     `json:"mode" gorm:"size:10"`
	OpenedAt    time.Time  `json:"openedAt"`
	ClosedAt    *time.Time `json:"closedAt" gorm:"index"`
	RealizedPnL float64    `json:"realizedPnl" gorm:"column:realized_pnl"`
}

type ProcessedMessage struct {
	gorm.Model
	Consumer  string `gorm:"uniqueIndex:idx_consumer_message;size:100"`
	MessageID string `gorm:"uniqueIndex:idx_consumer_message;size:100"`
}
