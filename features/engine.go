package features

import (
	"fmt"
	"math"

	"github.com/sdcoffey/big"
	"github.com/sdcoffey/techan"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/indicators"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

const (
	RSIPeriod       = 14
	MACDFast        = 12
	MACDSlow        = 26
	MACDSignal      = 9
	ATRPeriod       = 14
	BollingerPeriod = 20
	BollingerStdDev = 2.0
	VolumePeriod    = 20
)

// Point pairs a bar with the features computed up to it
type Point struct {
	Bar      models.Bar
	Features models.FeatureVector
}

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// TimeSeries loads bars into a techan series. Bars must be chronological
// without duplicated or overlapping periods.
func TimeSeries(bars []models.Bar) (*techan.TimeSeries, error) {
	series := techan.NewTimeSeries()
	for i, bar := range bars {
		period, err := helpers.IntervalDuration(bar.Interval)
		if err != nil {
			return nil, err
		}
		candle := techan.NewCandle(techan.NewTimePeriod(bar.Timestamp, period))
		candle.OpenPrice = big.NewDecimal(bar.Open)
		candle.ClosePrice = big.NewDecimal(bar.Close)
		candle.MaxPrice = big.NewDecimal(bar.High)
		candle.MinPrice = big.NewDecimal(bar.Low)
		candle.Volume = big.NewDecimal(bar.Volume)
		if bar.TradesCount != nil {
			candle.TradeCount = uint(*bar.TradesCount)
		}
		if !series.AddCandle(candle) {
			return nil, fmt.Errorf("bar %d (%s %s) is out of order or duplicated", i, bar.Symbol,
				bar.Timestamp.UTC().Format("2006-01-02 15:04:05"))
		}
	}
	return series, nil
}

// Compute returns one feature vector per bar. The result depends only on the given window.
func (e *Engine) Compute(bars []models.Bar) ([]models.FeatureVector, error) {
	series, err := TimeSeries(bars)
	if err != nil {
		return nil, err
	}

	n := len(bars)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, bar := range bars {
		closes[i] = bar.Close
		highs[i] = bar.High
		lows[i] = bar.Low
	}

	emas := make(map[int][]float64, len(models.EMAPeriods))
	for _, period := range models.EMAPeriods {
		emas[period] = indicators.EMA(closes, period)
	}
	rsi := indicators.RSI(closes, RSIPeriod)
	macd := indicators.MACD(closes, MACDFast, MACDSlow, MACDSignal)
	atr, err := indicators.ATR(highs, lows, closes, ATRPeriod)
	if err != nil {
		return nil, err
	}
	std := indicators.RollingStdDev(closes, BollingerPeriod)

	closeSMA := techan.NewSimpleMovingAverage(techan.NewClosePriceIndicator(series), BollingerPeriod)
	volumeSMA := techan.NewSimpleMovingAverage(techan.NewVolumeIndicator(series), VolumePeriod)

	vectors := make([]models.FeatureVector, n)
	for i, bar := range bars {
		vector := models.FeatureVector{
			Symbol:        bar.Symbol,
			Interval:      bar.Interval,
			Timestamp:     bar.Timestamp,
			EMA9:          helpers.Float64Ptr(emas[9][i]),
			EMA21:         helpers.Float64Ptr(emas[21][i]),
			EMA50:         helpers.Float64Ptr(emas[50][i]),
			EMA200:        helpers.Float64Ptr(emas[200][i]),
			RSI14:         helpers.Float64Ptr(rsi[i]),
			MACD:          helpers.Float64Ptr(macd.Line[i]),
			MACDSignal:    helpers.Float64Ptr(macd.Signal[i]),
			MACDHistogram: helpers.Float64Ptr(macd.Histogram[i]),
			ATR14:         helpers.Float64Ptr(atr[i]),
		}
		if i >= BollingerPeriod-1 {
			middle := closeSMA.Calculate(i).Float()
			band := std[i] * BollingerStdDev
			vector.BollingerMiddle = helpers.Float64Ptr(middle)
			vector.BollingerUpper = helpers.Float64Ptr(middle + band)
			vector.BollingerLower = helpers.Float64Ptr(middle - band)
		}
		if i >= VolumePeriod-1 {
			vector.VolumeSMA = helpers.Float64Ptr(volumeSMA.Calculate(i).Float())
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// Points computes the features and pairs them with their bars
func (e *Engine) Points(bars []models.Bar) ([]Point, error) {
	vectors, err := e.Compute(bars)
	if err != nil {
		return nil, err
	}
	points := make([]Point, len(bars))
	for i := range bars {
		points[i] = Point{Bar: bars[i], Features: vectors[i]}
	}
	return points, nil
}

// Latest returns the feature vector of the last bar
func (e *Engine) Latest(bars []models.Bar) (models.FeatureVector, error) {
	if len(bars) == 0 {
		return models.FeatureVector{}, fmt.Errorf("%w: no bars", models.ErrInsufficientHistory)
	}
	vectors, err := e.Compute(bars)
	if err != nil {
		return models.FeatureVector{}, err
	}
	return vectors[len(vectors)-1], nil
}

// Value dereferences an optional feature, NaN when undefined
func Value(feature *float64) float64 {
	if feature == nil {
		return math.NaN()
	}
	return *feature
}
