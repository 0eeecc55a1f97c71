// Package indicators computes technical indicators over float64 series.
// Values not yet defined by the warm-up window are NaN.
package indicators

import (
	"fmt"
	"math"
)

// EMA is the recursive exponential moving average with alpha = 2/(length+1),
// seeded with the first value. Values before index length-1 are NaN.
func EMA(series []float64, length int) []float64 {
	out := nanSlice(len(series))
	if length <= 0 || len(series) == 0 {
		return out
	}
	alpha := 2.0 / float64(length+1)
	ema := series[0]
	for i, price := range series {
		if i > 0 {
			ema = price*alpha + ema*(1-alpha)
		}
		if i >= length-1 {
			out[i] = ema
		}
	}
	return out
}

// SMA is the rolling mean over length values
func SMA(series []float64, length int) []float64 {
	out := nanSlice(len(series))
	if length <= 0 {
		return out
	}
	sum := 0.0
	for i, value := range series {
		sum += value
		if i >= length {
			sum -= series[i-length]
		}
		if i >= length-1 {
			out[i] = sum / float64(length)
		}
	}
	return out
}

// RSI averages the positive and negative deltas of the last length steps.
// A window without losses is 100 when it has gains and 50 when flat.
func RSI(series []float64, length int) []float64 {
	out := nanSlice(len(series))
	if length <= 0 {
		return out
	}
	gains := make([]float64, len(series))
	losses := make([]float64, len(series))
	for i := 1; i < len(series); i++ {
		delta := series[i] - series[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}
	gainSum, lossSum := 0.0, 0.0
	for i := 1; i < len(series); i++ {
		gainSum += gains[i]
		lossSum += losses[i]
		if i > length {
			gainSum -= gains[i-length]
			lossSum -= losses[i-length]
		}
		if i < length {
			continue
		}
		gain := gainSum / float64(length)
		loss := lossSum / float64(length)
		out[i] = rsiValue(gain, loss)
	}
	return out
}

func rsiValue(gain float64, loss float64) float64 {
	const epsilon = 1e-12
	if loss <= epsilon {
		if gain <= epsilon {
			return 50
		}
		return 100
	}
	rsi := 100 - 100/(1+gain/loss)
	return math.Max(0, math.Min(100, rsi))
}

type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// MACD returns line = ema(fast) - ema(slow), its signal ema and the histogram.
// The signal ema runs over the line from index slow-1 on, where the slow ema is
// first defined, instead of over the whole line; its first value is at slow+signal-2.
func MACD(series []float64, fast int, slow int, signal int) MACDResult {
	fastEMA := EMA(series, fast)
	slowEMA := EMA(series, slow)
	line := nanSlice(len(series))
	for i := range series {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	start := slow - 1
	signalLine := nanSlice(len(series))
	if start >= 0 && start < len(series) {
		copy(signalLine[start:], EMA(line[start:], signal))
	}

	histogram := nanSlice(len(series))
	for i := range series {
		histogram[i] = line[i] - signalLine[i]
	}
	return MACDResult{Line: line, Signal: signalLine, Histogram: histogram}
}

// TrueRange uses high-low for the first bar
func TrueRange(high []float64, low []float64, close []float64) ([]float64, error) {
	if len(high) != len(low) || len(low) != len(close) {
		return nil, fmt.Errorf("true range: series length mismatch %d/%d/%d", len(high), len(low), len(close))
	}
	tr := make([]float64, len(close))
	for i := range close {
		tr[i] = high[i] - low[i]
		if i > 0 {
			tr[i] = math.Max(tr[i], math.Max(math.Abs(high[i]-close[i-1]), math.Abs(low[i]-close[i-1])))
		}
	}
	return tr, nil
}

// ATR is the rolling mean of the true range
func ATR(high []float64, low []float64, close []float64, length int) ([]float64, error) {
	tr, err := TrueRange(high, low, close)
	if err != nil {
		return nil, err
	}
	return SMA(tr, length), nil
}

type BollingerResult struct {
	Upper  []float64
	Middle []float64
	Lower  []float64
}

// Bollinger bands around SMA(length) at k sample standard deviations
func Bollinger(series []float64, length int, k float64) BollingerResult {
	middle := SMA(series, length)
	std := RollingStdDev(series, length)
	upper := nanSlice(len(series))
	lower := nanSlice(len(series))
	for i := range series {
		upper[i] = middle[i] + std[i]*k
		lower[i] = middle[i] - std[i]*k
	}
	return BollingerResult{Upper: upper, Middle: middle, Lower: lower}
}

// RollingStdDev is the sample (n-1) standard deviation over length values
func RollingStdDev(series []float64, length int) []float64 {
	out := nanSlice(len(series))
	if length < 2 {
		return out
	}
	for i := length - 1; i < len(series); i++ {
		window := series[i-length+1 : i+1]
		mean := 0.0
		for _, value := range window {
			mean += value
		}
		mean /= float64(length)
		total := 0.0
		for _, value := range window {
			total += (value - mean) * (value - mean)
		}
		out[i] = math.Sqrt(total / float64(length-1))
	}
	return out
}

// CrossedAbove is true when a moved from <= b to > b between i-1 and i
func CrossedAbove(a []float64, b []float64, i int) bool {
	if i < 1 || i >= len(a) || i >= len(b) {
		return false
	}
	if anyNaN(a[i], b[i], a[i-1], b[i-1]) {
		return false
	}
	return a[i] > b[i] && a[i-1] <= b[i-1]
}

// CrossedBelow is true when a moved from >= b to < b between i-1 and i
func CrossedBelow(a []float64, b []float64, i int) bool {
	if i < 1 || i >= len(a) || i >= len(b) {
		return false
	}
	if anyNaN(a[i], b[i], a[i-1], b[i-1]) {
		return false
	}
	return a[i] < b[i] && a[i-1] >= b[i-1]
}

func anyNaN(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
