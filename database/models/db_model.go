package database

import (
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gorm.io/gorm"
)

type Model struct {
	gorm.Model
	Name              string                     `json:"name" gorm:"size:100"`
	Version           string                     `json:"version" gorm:"size:20"`
	Symbol            string                     `json:"symbol" gorm:"index;size:50"`
	Interval          string                     `json:"interval" gorm:"column:bar_interval;size:10"`
	Status            string                     `json:"status" gorm:"index;size:20"`
	Strategy          models.StrategyConfig      `json:"strategy" gorm:"serializer:json"`
	TrainingMetrics   *models.PerformanceMetrics `json:"trainingMetrics" gorm:"serializer:json"`
	ValidationMetrics *models.PerformanceMetrics `json:"validationMetrics" gorm:"serializer:json"`
}
