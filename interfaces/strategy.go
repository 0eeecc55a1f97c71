package interfaces

import (
	"gitlab.com/aoterocom/AORiskTrader/features"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

type (
	Strategy interface {
		Name() string
		Config() models.StrategyConfig
		// MinBars is the shortest window Evaluate can trade on
		MinBars() int
		// Evaluate decides on the last point of the window
		Evaluate(window []features.Point) models.SignalType
		// Signals evaluates every point of the series
		Signals(series []features.Point) []models.SignalType
	}
)
