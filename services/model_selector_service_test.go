package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/aoterocom/AORiskTrader/backtest"
	"gitlab.com/aoterocom/AORiskTrader/database"
	"gitlab.com/aoterocom/AORiskTrader/features"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gitlab.com/aoterocom/AORiskTrader/models/analytics"
	"gitlab.com/aoterocom/AORiskTrader/tests/utils"
)

// scriptedStrategy buys every 20 bars and sells 10 bars later; MACD_BB never trades
type scriptedStrategy struct {
	stubStrategy
	config models.StrategyConfig
}

func (s scriptedStrategy) Config() models.StrategyConfig {
	return s.config
}

func (s scriptedStrategy) Signals(series []features.Point) []models.SignalType {
	out := make([]models.SignalType, len(series))
	for i := range out {
		out[i] = models.SignalTypeHold
		if s.config.Kind != models.StrategyKindEMARSI {
			continue
		}
		switch i % 20 {
		case 1:
			out[i] = models.SignalTypeBuy
		case 11:
			out[i] = models.SignalTypeSell
		}
	}
	return out
}

func scriptedFactory(config models.StrategyConfig) (interfaces.Strategy, error) {
	return scriptedStrategy{config: config}, nil
}

func hourlyBars(n int) []models.Bar {
	bars := utils.BarsFromCloses(testSymbol, utils.WaveCloses(n, 100))
	for i := range bars {
		bars[i].Interval = "1h"
		bars[i].Timestamp = utils.Epoch.Add(time.Duration(i) * time.Hour)
	}
	return bars
}

func permissiveThresholds() backtest.Thresholds {
	return backtest.Thresholds{MinSharpe: -1e9, MinWinRate: 0, MinProfitFactor: 0, MaxDrawdownPct: 100}
}

func newTestSelector(t *testing.T, options ModelSelectorOptions) (*ModelSelectorService, *database.DBService) {
	return newSelectorOn(t, options, hourlyBars(400))
}

func newSelectorOn(t *testing.T, options ModelSelectorOptions, bars []models.Bar) (*ModelSelectorService,
	*database.DBService) {
	db := newTestDB(t)
	_, err := db.UpsertBars(context.Background(), bars)
	require.NoError(t, err)

	selector := NewModelSelectorService(db, options)
	selector.factory = scriptedFactory
	end := bars[len(bars)-1].Timestamp.Add(time.Hour)
	selector.now = func() time.Time { return end }
	return selector, db
}

func testSelectorOptions() ModelSelectorOptions {
	return ModelSelectorOptions{
		Symbol:         testSymbol,
		Interval:       "1h",
		TrainingDays:   30,
		ValidationDays: 3,
		Backtest:       backtest.DefaultOptions(),
		Thresholds:     permissiveThresholds(),
		Params:         models.DefaultEMARSIParams(),
	}
}

func TestSplit(t *testing.T) {
	bars := hourlyBars(100)
	points := make([]features.Point, len(bars))
	for i, bar := range bars {
		points[i] = features.Point{Bar: bar}
	}

	training, validation := Split(points, 1)
	assert.Len(t, validation, 24)
	assert.Len(t, training, 76)
	assert.True(t, training[len(training)-1].Bar.Timestamp.Before(validation[0].Bar.Timestamp))

	training, validation = Split(points, 0)
	assert.Len(t, training, 100)
	assert.Empty(t, validation)
}

func TestSelectPersistsBestCandidate(t *testing.T) {
	ctx := context.Background()
	options := testSelectorOptions()
	options.Activate = true
	options.ExportPath = filepath.Join(t.TempDir(), "trades.parquet")
	selector, db := newTestSelector(t, options)

	model, err := selector.Select(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(models.StrategyKindEMARSI), model.Name)
	assert.Equal(t, models.ModelStatusActive, model.Status)
	require.NotNil(t, model.TrainingMetrics)
	assert.Greater(t, model.TrainingMetrics.TotalTrades, 0)
	require.NotNil(t, model.ValidationMetrics)

	require.NotNil(t, selector.Analysis)
	require.Len(t, selector.Analysis.Candidates, 2)
	assert.True(t, selector.Analysis.Candidates[0].Passed)
	assert.True(t, selector.Analysis.Candidates[0].IsSelected)
	assert.False(t, selector.Analysis.Candidates[1].Passed)

	active, err := db.GetActiveModel(ctx, testSymbol)
	require.NoError(t, err)
	assert.Equal(t, model.ID, active.ID)
	assert.Equal(t, models.StrategyKindEMARSI, active.Strategy.Kind)

	trades, err := backtest.ReadTrades(options.ExportPath)
	require.NoError(t, err)
	assert.Len(t, trades, model.TrainingMetrics.TotalTrades)
}

func TestSelectWithoutActivationLeavesModelApproved(t *testing.T) {
	ctx := context.Background()
	selector, db := newTestSelector(t, testSelectorOptions())

	model, err := selector.Select(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ModelStatusApproved, model.Status)

	_, err = db.GetActiveModel(ctx, testSymbol)
	assert.ErrorIs(t, err, models.ErrNoActiveModel)
}

func TestSelectWithoutPassingCandidate(t *testing.T) {
	options := testSelectorOptions()
	options.Thresholds = backtest.DefaultThresholds()
	options.Thresholds.MinSharpe = 1e9
	selector, _ := newTestSelector(t, options)

	_, err := selector.Select(context.Background())
	assert.ErrorIs(t, err, ErrNoCandidate)
	require.NotNil(t, selector.Analysis)
	assert.Nil(t, selector.Analysis.Best())
}

func TestSelectRequiresHistory(t *testing.T) {
	selector := NewModelSelectorService(newTestDB(t), testSelectorOptions())

	_, err := selector.Select(context.Background())
	assert.ErrorIs(t, err, models.ErrInsufficientHistory)
}

// cycleScript maps positions within a 30 bar cycle to signals, one script per strategy kind
var cycleScript = map[models.StrategyKind]map[int]models.SignalType{
	// +5%, +5%, -0.1%
	models.StrategyKindEMARSI: {
		0: models.SignalTypeBuy, 5: models.SignalTypeSell,
		6: models.SignalTypeBuy, 10: models.SignalTypeSell,
		11: models.SignalTypeBuy, 15: models.SignalTypeSell,
	},
	// +10%, +0.1%
	models.StrategyKindMACDBB: {
		20: models.SignalTypeBuy, 25: models.SignalTypeSell,
		26: models.SignalTypeBuy, 29: models.SignalTypeSell,
	},
}

var cyclePrices = map[int]float64{5: 105, 10: 105, 15: 99.9, 25: 110, 29: 100.1}

type cycleStrategy struct {
	stubStrategy
	config models.StrategyConfig
}

func (s cycleStrategy) Config() models.StrategyConfig {
	return s.config
}

func (s cycleStrategy) Signals(series []features.Point) []models.SignalType {
	out := make([]models.SignalType, len(series))
	for i := range out {
		out[i] = models.SignalTypeHold
		if signal, ok := cycleScript[s.config.Kind][i%30]; ok {
			out[i] = signal
		}
	}
	return out
}

func cycleBars(n int) []models.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100
		if price, ok := cyclePrices[i%30]; ok {
			closes[i] = price
		}
	}
	bars := utils.BarsFromCloses(testSymbol, closes)
	for i := range bars {
		bars[i].Interval = "1h"
		bars[i].Timestamp = utils.Epoch.Add(time.Duration(i) * time.Hour)
	}
	return bars
}

func newCycleSelector(t *testing.T, thresholds backtest.Thresholds) (*ModelSelectorService, *database.DBService) {
	options := testSelectorOptions()
	options.Activate = true
	options.Backtest.FeePct = 0
	options.Thresholds = thresholds
	selector, db := newSelectorOn(t, options, cycleBars(400))
	selector.factory = func(config models.StrategyConfig) (interfaces.Strategy, error) {
		return cycleStrategy{config: config}, nil
	}
	return selector, db
}

func candidateOf(t *testing.T, selector *ModelSelectorService, kind models.StrategyKind) analytics.CandidateAnalysis {
	require.NotNil(t, selector.Analysis)
	for _, candidate := range selector.Analysis.Candidates {
		if candidate.Strategy.Kind == kind {
			return candidate
		}
	}
	t.Fatalf("no candidate %s", kind)
	return analytics.CandidateAnalysis{}
}

func TestSelectPrefersHigherSharpe(t *testing.T) {
	ctx := context.Background()
	selector, db := newCycleSelector(t, permissiveThresholds())

	model, err := selector.Select(ctx)
	require.NoError(t, err)

	emaRSI := candidateOf(t, selector, models.StrategyKindEMARSI)
	macdBB := candidateOf(t, selector, models.StrategyKindMACDBB)
	assert.True(t, emaRSI.Passed)
	assert.True(t, macdBB.Passed)
	assert.Greater(t, emaRSI.TrainingMetrics.SharpeRatio, macdBB.TrainingMetrics.SharpeRatio)
	assert.True(t, emaRSI.IsSelected)
	assert.False(t, macdBB.IsSelected)

	active, err := db.GetActiveModel(ctx, testSymbol)
	require.NoError(t, err)
	assert.Equal(t, model.ID, active.ID)
	assert.Equal(t, models.StrategyKindEMARSI, active.Strategy.Kind)
}

func TestSelectSkipsHigherSharpeFailingWinRate(t *testing.T) {
	ctx := context.Background()
	thresholds := permissiveThresholds()
	thresholds.MinWinRate = 0.8
	selector, db := newCycleSelector(t, thresholds)

	model, err := selector.Select(ctx)
	require.NoError(t, err)

	emaRSI := candidateOf(t, selector, models.StrategyKindEMARSI)
	macdBB := candidateOf(t, selector, models.StrategyKindMACDBB)
	assert.Greater(t, emaRSI.TrainingMetrics.SharpeRatio, macdBB.TrainingMetrics.SharpeRatio)
	assert.Less(t, emaRSI.TrainingMetrics.WinRate, 0.8)
	assert.False(t, emaRSI.Passed)
	assert.False(t, emaRSI.IsSelected)
	assert.True(t, macdBB.Passed)
	assert.True(t, macdBB.IsSelected)

	active, err := db.GetActiveModel(ctx, testSymbol)
	require.NoError(t, err)
	assert.Equal(t, model.ID, active.ID)
	assert.Equal(t, models.StrategyKindMACDBB, active.Strategy.Kind)
}
