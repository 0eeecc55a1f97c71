package backtest

import (
	"fmt"
	"time"

	"gitlab.com/aoterocom/AORiskTrader/features"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

type Options struct {
	InitialCapital float64
	FeePct         float64
}

func DefaultOptions() Options {
	return Options{InitialCapital: 10000, FeePct: 0.001}
}

// Trade is a closed round trip
type Trade struct {
	EntryTime    time.Time `json:"entry_time" parquet:"entry_time,timestamp"`
	ExitTime     time.Time `json:"exit_time" parquet:"exit_time,timestamp"`
	EntryPrice   float64   `json:"entry_price" parquet:"entry_price"`
	ExitPrice    float64   `json:"exit_price" parquet:"exit_price"`
	Quantity     float64   `json:"quantity" parquet:"quantity"`
	EntryCapital float64   `json:"entry_capital" parquet:"entry_capital"`
	ExitCapital  float64   `json:"exit_capital" parquet:"exit_capital"`
	EntryFee     float64   `json:"entry_fee" parquet:"entry_fee"`
	ExitFee      float64   `json:"exit_fee" parquet:"exit_fee"`
	PnL          float64   `json:"pnl" parquet:"pnl"`
	PnLPct       float64   `json:"pnl_pct" parquet:"pnl_pct"`
}

type Result struct {
	Trades       []Trade
	OpenEntry    bool
	FinalCapital float64
	Metrics      models.PerformanceMetrics
}

type Backtester struct {
	options Options
}

func New(options Options) *Backtester {
	return &Backtester{options: options}
}

// Run simulates a single long position driven by the signals, which must be
// aligned with the points. The first point never trades.
func (b *Backtester) Run(points []features.Point, signals []models.SignalType) (Result, error) {
	if len(points) != len(signals) {
		return Result{}, fmt.Errorf("backtest: %d points but %d signals", len(points), len(signals))
	}

	capital := b.options.InitialCapital
	quantity := 0.0
	var open *Trade
	var trades []Trade

	for i := 1; i < len(points); i++ {
		bar := points[i].Bar
		price := bar.Close

		switch signals[i] {
		case models.SignalTypeBuy:
			if open != nil {
				continue
			}
			fee := capital * b.options.FeePct
			quantity = (capital - fee) / price
			open = &Trade{
				EntryTime:    bar.Timestamp,
				EntryPrice:   price,
				Quantity:     quantity,
				EntryCapital: capital,
				EntryFee:     fee,
			}
		case models.SignalTypeSell:
			if open == nil {
				continue
			}
			value := quantity * price
			fee := value * b.options.FeePct
			capital = value - fee

			open.ExitTime = bar.Timestamp
			open.ExitPrice = price
			open.ExitCapital = capital
			open.ExitFee = fee
			open.PnL = capital - open.EntryCapital
			open.PnLPct = open.PnL / open.EntryCapital * 100
			trades = append(trades, *open)
			open = nil
			quantity = 0
		case models.SignalTypeHold:
		default:
			return Result{}, fmt.Errorf("backtest: unknown signal %q at index %d", signals[i], i)
		}
	}

	interval := time.Duration(0)
	if len(points) > 0 {
		var err error
		interval, err = helpers.IntervalDuration(points[0].Bar.Interval)
		if err != nil {
			return Result{}, err
		}
	}

	return Result{
		Trades:       trades,
		OpenEntry:    open != nil,
		FinalCapital: capital,
		Metrics:      Metrics(trades, models.Closes(barsOf(points)), interval),
	}, nil
}

func barsOf(points []features.Point) []models.Bar {
	bars := make([]models.Bar, len(points))
	for i, point := range points {
		bars[i] = point.Bar
	}
	return bars
}
