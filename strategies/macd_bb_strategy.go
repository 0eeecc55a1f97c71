package strategies

import (
	"gitlab.com/aoterocom/AORiskTrader/features"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

// MACDBBStrategy buys on a bullish MACD cross below the lower Bollinger band and
// sells on a bearish cross above the upper band.
type MACDBBStrategy struct {
	config models.StrategyConfig
}

func NewMACDBBStrategy(config models.StrategyConfig) *MACDBBStrategy {
	return &MACDBBStrategy{config: config}
}

func (s *MACDBBStrategy) Name() string {
	return s.config.ID()
}

func (s *MACDBBStrategy) Config() models.StrategyConfig {
	return s.config
}

func (s *MACDBBStrategy) MinBars() int {
	return minBars
}

func (s *MACDBBStrategy) Evaluate(window []features.Point) models.SignalType {
	return evaluate(window, s.MinBars(), s.decide)
}

func (s *MACDBBStrategy) Signals(series []features.Point) []models.SignalType {
	return signals(series, s.decide)
}

func (s *MACDBBStrategy) decide(series []features.Point, i int) models.SignalType {
	current, previous := series[i].Features, series[i-1].Features
	closePrice := series[i].Bar.Close
	if current.BollingerLower == nil || current.BollingerUpper == nil {
		return models.SignalTypeHold
	}

	if crossedAbove(current.MACD, current.MACDSignal, previous.MACD, previous.MACDSignal) &&
		closePrice < *current.BollingerLower {
		return models.SignalTypeBuy
	}
	if crossedBelow(current.MACD, current.MACDSignal, previous.MACD, previous.MACDSignal) &&
		closePrice > *current.BollingerUpper {
		return models.SignalTypeSell
	}
	return models.SignalTypeHold
}
