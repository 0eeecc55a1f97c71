package database

import (
	"time"

	"gorm.io/gorm"
)

type Order struct {
	gorm.Model
	ClientOrderID   string    `json:"clientOrderId" gorm:"uniqueIndex;size:64"`
	ExchangeOrderID string    `json:"exchangeOrderId" gorm:"size:64"`
	SignalID        string    `json:"signalId" gorm:"index;size:64"`
	ModelID         uint      `json:"modelId" gorm:"index"`
	Symbol          string    `json:"symbol" gorm:"size:50"`
	Side            string    `json:"side" gorm:"size:10"`
	Type            string    `json:"type" gorm:"size:10"`
	Price           float64   `json:"price"`
	Quantity        float64   `json:"quantity"`
	FilledPrice     float64   `json:"filledPrice"`
	FilledQuantity  float64   `json:"filledQuantity"`
	Fee             float64   `json:"fee"`
	FeeCurrency     string    `json:"feeCurrency" gorm:"size:10"`
	SlippagePct     float64   `json:"slippagePct"`
	Status          string    `json:"status" gorm:"size:20"`
	Mode            string    `json:"mode" gorm:"size:10"`
	Error           string    `json:"error"`
	OrderTime       time.Time `json:"orderTime"`
}
