package models

// PerformanceMetrics aggregates the results of a backtest run
type PerformanceMetrics struct {
	TotalTrades             int     `json:"total_trades"`
	WinningTrades           int     `json:"winning_trades"`
	LosingTrades            int     `json:"losing_trades"`
	WinRate                 float64 `json:"win_rate"`
	TotalPnL                float64 `json:"total_pnl_usdt"`
	TotalReturnPct          float64 `json:"total_return_pct"`
	AvgWin                  float64 `json:"avg_win"`
	AvgLoss                 float64 `json:"avg_loss"`
	ProfitFactor            float64 `json:"profit_factor"`
	SharpeRatio             float64 `json:"sharpe_ratio"`
	MaxDrawdownPct          float64 `json:"max_drawdown_pct"`
	MaxDrawdownDurationBars int     `json:"max_drawdown_duration_bars"`
	MaxDrawdownDurationDays float64 `json:"max_drawdown_duration_days"`
}
