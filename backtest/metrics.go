package backtest

import (
	"math"
	"time"

	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

// MaxProfitFactor is reported when there are winning trades and no losing ones
const MaxProfitFactor = 999.0

const tradingDaysPerYear = 252

// Metrics aggregates closed round trips. Drawdown and total return are computed on
// the close prices regardless of the position.
func Metrics(trades []Trade, closes []float64, interval time.Duration) models.PerformanceMetrics {
	metrics := models.PerformanceMetrics{TotalTrades: len(trades)}

	var wins, losses, returns []float64
	for _, trade := range trades {
		metrics.TotalPnL += trade.PnL
		returns = append(returns, trade.PnLPct)
		if trade.PnL > 0 {
			wins = append(wins, trade.PnL)
		} else if trade.PnL < 0 {
			losses = append(losses, trade.PnL)
		}
	}
	metrics.WinningTrades = len(wins)
	metrics.LosingTrades = metrics.TotalTrades - metrics.WinningTrades
	if metrics.TotalTrades > 0 {
		metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades)
	}
	metrics.AvgWin = helpers.Mean(wins)
	metrics.AvgLoss = helpers.Mean(losses)
	metrics.ProfitFactor = ProfitFactor(helpers.Sum(wins), helpers.Sum(losses))
	metrics.SharpeRatio = Sharpe(returns)

	if len(closes) > 0 && closes[0] != 0 {
		metrics.TotalReturnPct = (closes[len(closes)-1]/closes[0] - 1) * 100
	}
	metrics.MaxDrawdownPct, metrics.MaxDrawdownDurationBars = Drawdown(closes)
	metrics.MaxDrawdownDurationDays = helpers.BarsToDays(metrics.MaxDrawdownDurationBars, interval)
	return metrics
}

// ProfitFactor is |gross wins / gross losses|, capped at MaxProfitFactor without losses
func ProfitFactor(grossWins float64, grossLosses float64) float64 {
	if grossWins <= 0 {
		return 0
	}
	if grossLosses == 0 {
		return MaxProfitFactor
	}
	return math.Min(math.Abs(grossWins/grossLosses), MaxProfitFactor)
}

// Sharpe annualizes mean/stddev of the round trip returns; 0 for less than two
// returns or no variance
func Sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := helpers.Mean(returns)
	std := helpers.PopulationStdDev(returns, mean)
	if std < 1e-12 {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}

// Drawdown returns the largest drop of the closes from their running peak as a
// positive percentage, and the longest run of bars spent below a previous peak.
func Drawdown(closes []float64) (float64, int) {
	if len(closes) < 2 {
		return 0, 0
	}
	peak := closes[0]
	maxDrawdown := 0.0
	run, longest := 0, 0
	for _, price := range closes {
		if price >= peak {
			peak = price
			run = 0
			continue
		}
		run++
		if run > longest {
			longest = run
		}
		if peak > 0 {
			drawdown := (peak - price) / peak * 100
			if drawdown > maxDrawdown {
				maxDrawdown = drawdown
			}
		}
	}
	return maxDrawdown, longest
}

type Thresholds struct {
	MinSharpe       float64
	MinWinRate      float64
	MinProfitFactor float64
	MaxDrawdownPct  float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{MinSharpe: 1.2, MinWinRate: 0.45, MinProfitFactor: 1.5, MaxDrawdownPct: 15}
}

// Accept tells whether a candidate may be promoted
func (t Thresholds) Accept(metrics models.PerformanceMetrics) bool {
	return metrics.TotalTrades > 0 &&
		metrics.SharpeRatio >= t.MinSharpe &&
		metrics.WinRate >= t.MinWinRate &&
		metrics.ProfitFactor >= t.MinProfitFactor &&
		math.Abs(metrics.MaxDrawdownPct) <= t.MaxDrawdownPct
}
