package models

// RiskState holds the running risk counters
type RiskState struct {
	DailyPnL          float64 `json:"dailyPnl"`
	ConsecutiveLosses int     `json:"consecutiveLosses"`
}
