package models

import "time"

// FeatureVector holds the indicators derived for a bar. A nil field means the
// indicator warm-up window is not satisfied yet.
type FeatureVector struct {
	Symbol    string    `json:"symbol"`
	Interval  string    `json:"interval"`
	Timestamp time.Time `json:"timestamp"`

	EMA9   *float64 `json:"ema_9"`
	EMA21  *float64 `json:"ema_21"`
	EMA50  *float64 `json:"ema_50"`
	EMA200 *float64 `json:"ema_200"`

	RSI14         *float64 `json:"rsi_14"`
	MACD          *float64 `json:"macd"`
	MACDSignal    *float64 `json:"macd_signal"`
	MACDHistogram *float64 `json:"macd_histogram"`

	ATR14           *float64 `json:"atr_14"`
	BollingerUpper  *float64 `json:"bollinger_upper"`
	BollingerMiddle *float64 `json:"bollinger_middle"`
	BollingerLower  *float64 `json:"bollinger_lower"`

	VolumeSMA *float64 `json:"volume_sma"`
}

// Snapshot flattens the defined features into a map for signal payloads
func (f FeatureVector) Snapshot() map[string]float64 {
	snapshot := make(map[string]float64)
	fields := map[string]*float64{
		"ema_9":            f.EMA9,
		"ema_21":           f.EMA21,
		"ema_50":           f.EMA50,
		"ema_200":          f.EMA200,
		"rsi_14":           f.RSI14,
		"macd":             f.MACD,
		"macd_signal":      f.MACDSignal,
		"macd_histogram":   f.MACDHistogram,
		"atr_14":           f.ATR14,
		"bollinger_upper":  f.BollingerUpper,
		"bollinger_middle": f.BollingerMiddle,
		"bollinger_lower":  f.BollingerLower,
		"volume_sma":       f.VolumeSMA,
	}
	for name, value := range fields {
		if value != nil {
			snapshot[name] = *value
		}
	}
	return snapshot
}
