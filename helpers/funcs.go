package helpers

import (
	"math"
	"strings"
)

// PopulationStdDev divides by n
func PopulationStdDev(numbers []float64, mean float64) float64 {
	if len(numbers) == 0 {
		return 0
	}
	total := 0.0
	for _, number := range numbers {
		total += math.Pow(number-mean, 2)
	}
	return math.Sqrt(total / float64(len(numbers)))
}

func Sum(numbers []float64) (total float64) {
	for _, x := range numbers {
		total += x
	}
	return total
}

func Mean(numbers []float64) float64 {
	if len(numbers) == 0 {
		return 0
	}
	return Sum(numbers) / float64(len(numbers))
}

// Float64Ptr returns a pointer to v, or nil when v is NaN
func Float64Ptr(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

var quoteAssets = []string{"USDT", "USDC", "BUSD", "FDUSD", "EUR", "BTC", "ETH", "BNB"}

// QuoteAsset guesses the quote currency of a symbol such as BTCUSDT or BTC-USDT
func QuoteAsset(symbol string) string {
	symbol = strings.ToUpper(strings.ReplaceAll(symbol, "-", ""))
	for _, asset := range quoteAssets {
		if strings.HasSuffix(symbol, asset) && len(symbol) > len(asset) {
			return asset
		}
	}
	return ""
}
