package strategies

import (
	"gitlab.com/aoterocom/AORiskTrader/features"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

// EMARSIStrategy buys on a fast/slow EMA golden cross while RSI is oversold and
// sells on a death cross while RSI is overbought.
type EMARSIStrategy struct {
	config models.StrategyConfig
	params models.EMARSIParams
}

func NewEMARSIStrategy(config models.StrategyConfig) *EMARSIStrategy {
	return &EMARSIStrategy{config: config, params: *config.EMARSI}
}

func (s *EMARSIStrategy) Name() string {
	return s.config.ID()
}

func (s *EMARSIStrategy) Config() models.StrategyConfig {
	return s.config
}

func (s *EMARSIStrategy) MinBars() int {
	return minBars
}

func (s *EMARSIStrategy) Evaluate(window []features.Point) models.SignalType {
	return evaluate(window, s.MinBars(), s.decide)
}

func (s *EMARSIStrategy) Signals(series []features.Point) []models.SignalType {
	return signals(series, s.decide)
}

func (s *EMARSIStrategy) decide(series []features.Point, i int) models.SignalType {
	current, previous := series[i].Features, series[i-1].Features
	fast, slow := emaFeature(current, s.params.FastPeriod), emaFeature(current, s.params.SlowPeriod)
	prevFast, prevSlow := emaFeature(previous, s.params.FastPeriod), emaFeature(previous, s.params.SlowPeriod)
	rsi := current.RSI14
	if rsi == nil {
		return models.SignalTypeHold
	}

	if crossedAbove(fast, slow, prevFast, prevSlow) && *rsi < s.params.RSIOversold {
		return models.SignalTypeBuy
	}
	if crossedBelow(fast, slow, prevFast, prevSlow) && *rsi > s.params.RSIOverbought {
		return models.SignalTypeSell
	}
	return models.SignalTypeHold
}

func emaFeature(vector models.FeatureVector, period int) *float64 {
	switch period {
	case 9:
		return vector.EMA9
	case 21:
		return vector.EMA21
	case 50:
		return vector.EMA50
	case 200:
		return vector.EMA200
	default:
		return nil
	}
}
