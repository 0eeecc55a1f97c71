package utils

import (
	"math"
	"time"

	"gitlab.com/aoterocom/AORiskTrader/models"
)

var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// BarsFromCloses builds consecutive 1m bars with open = previous close and a 0.5 wick
func BarsFromCloses(symbol string, closes []float64) []models.Bar {
	bars := make([]models.Bar, len(closes))
	for i, c := range closes {
		open := c
		if i > 0 {
			open = closes[i-1]
		}
		bars[i] = models.Bar{
			Symbol:    symbol,
			Interval:  "1m",
			Timestamp: Epoch.Add(time.Duration(i) * time.Minute),
			Open:      open,
			High:      math.Max(open, c) + 0.5,
			Low:       math.Min(open, c) - 0.5,
			Close:     c,
			Volume:    10 + float64(i%5),
		}
	}
	return bars
}

// WaveCloses is a deterministic oscillating price path around base
func WaveCloses(n int, base float64) []float64 {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = base + 10*math.Sin(float64(i)/6) + 3*math.Sin(float64(i)/2.5) + float64(i)*0.02
	}
	return closes
}
