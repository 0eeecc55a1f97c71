package strategies

import (
	"gitlab.com/aoterocom/AORiskTrader/features"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

const minBars = 22

// rule decides at index i of the series, with i >= 1
type rule func(series []features.Point, i int) models.SignalType

func evaluate(window []features.Point, minBars int, decide rule) models.SignalType {
	if len(window) < minBars {
		return models.SignalTypeHold
	}
	return decide(window, len(window)-1)
}

func signals(series []features.Point, decide rule) []models.SignalType {
	out := make([]models.SignalType, len(series))
	for i := range series {
		if i == 0 {
			out[i] = models.SignalTypeHold
			continue
		}
		out[i] = decide(series, i)
	}
	return out
}

// crossedAbove is false whenever one of the four values is missing
func crossedAbove(a, b, prevA, prevB *float64) bool {
	if a == nil || b == nil || prevA == nil || prevB == nil {
		return false
	}
	return *a > *b && *prevA <= *prevB
}

func crossedBelow(a, b, prevA, prevB *float64) bool {
	if a == nil || b == nil || prevA == nil || prevB == nil {
		return false
	}
	return *a < *b && *prevA >= *prevB
}
