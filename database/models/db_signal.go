package database

import (
	"time"

	"gorm.io/gorm"
)

type Signal struct {
	gorm.Model
	SignalID   string             `json:"signalId" gorm:"uniqueIndex;size:64"`
	ModelID    uint               `json:"modelId" gorm:"index"`
	Symbol     string             `json:"symbol" gorm:"size:50"`
	SignalType string             `json:"signalType" gorm:"size:10"`
	Strength   float64            `json:"strength"`
	Price      float64            `json:"price"`
	Timestamp  time.Time          `json:"timestamp"`
	Features   map[string]float64 `json:"features" gorm:"serializer:json"`
}
