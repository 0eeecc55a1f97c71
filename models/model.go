package models

import (
	"fmt"
	"strings"
	"time"
)

// ModelStatus define the lifecycle stage of a model
type ModelStatus string

const (
	ModelStatusDraft    ModelStatus = "DRAFT"
	ModelStatusTesting  ModelStatus = "TESTING"
	ModelStatusApproved ModelStatus = "APPROVED"
	ModelStatusActive   ModelStatus = "ACTIVE"
	ModelStatusArchived ModelStatus = "ARCHIVED"
)

func (s ModelStatus) Valid() bool {
	switch s {
	case ModelStatusDraft, ModelStatusTesting, ModelStatusApproved, ModelStatusActive, ModelStatusArchived:
		return true
	default:
		return false
	}
}

func ParseModelStatus(value string) (ModelStatus, error) {
	status := ModelStatus(strings.ToUpper(strings.TrimSpace(value)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown model status %q", value)
	}
	return status, nil
}

// Model is a strategy configuration that went through backtesting
type Model struct {
	ID                uint                `json:"id"`
	Name              string              `json:"name"`
	Version           string              `json:"version"`
	Symbol            string              `json:"symbol"`
	Interval          string              `json:"interval"`
	Status            ModelStatus         `json:"status"`
	Strategy          StrategyConfig      `json:"strategy"`
	TrainingMetrics   *PerformanceMetrics `json:"trainingMetrics,omitempty"`
	ValidationMetrics *PerformanceMetrics `json:"validationMetrics,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
}

func (m Model) String() string {
	return fmt.Sprintf("%s_%s (%s)", m.Name, m.Version, m.Status)
}
