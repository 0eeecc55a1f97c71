package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gitlab.com/aoterocom/AORiskTrader/backtest"
	"gitlab.com/aoterocom/AORiskTrader/config"
	"gitlab.com/aoterocom/AORiskTrader/features"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gitlab.com/aoterocom/AORiskTrader/models/analytics"
	"gitlab.com/aoterocom/AORiskTrader/strategies"
)

var ErrNoCandidate = errors.New("no candidate strategy passed the acceptance thresholds")

const day = 24 * time.Hour

type ModelSelectorOptions struct {
	Symbol         string
	Interval       string
	TrainingDays   int
	ValidationDays int
	Backtest       backtest.Options
	Thresholds     backtest.Thresholds
	Params         models.EMARSIParams
	Activate       bool
	ExportPath     string
}

func NewModelSelectorOptions(cfg config.Config) ModelSelectorOptions {
	return ModelSelectorOptions{
		Symbol:         cfg.App.Symbol,
		Interval:       cfg.App.Interval,
		TrainingDays:   cfg.Backtest.TrainingDays,
		ValidationDays: cfg.Backtest.ValidationDays,
		Backtest: backtest.Options{
			InitialCapital: cfg.Backtest.InitialCapital,
			FeePct:         cfg.Execution.FeePct,
		},
		Thresholds: backtest.Thresholds{
			MinSharpe:       cfg.Backtest.MinSharpe,
			MinWinRate:      cfg.Backtest.MinWinRate,
			MinProfitFactor: cfg.Backtest.MinProfitFactor,
			MaxDrawdownPct:  cfg.Backtest.MaxDrawdownPct,
		},
		Params: models.EMARSIParams{
			FastPeriod:    cfg.Strategy.EMAFast,
			SlowPeriod:    cfg.Strategy.EMASlow,
			RSIOversold:   cfg.Strategy.RSIOversold,
			RSIOverbought: cfg.Strategy.RSIOverbought,
		},
		Activate:   cfg.Backtest.Activate,
		ExportPath: cfg.Backtest.ExportPath,
	}
}

// ModelSelectorService backtests the candidate strategies on the stored history and
// promotes the best passing one to a model
type ModelSelectorService struct {
	store    interfaces.Store
	engine   *features.Engine
	options  ModelSelectorOptions
	factory  func(models.StrategyConfig) (interfaces.Strategy, error)
	now      func() time.Time
	Analysis *analytics.SelectionAnalysis
}

func NewModelSelectorService(store interfaces.Store, options ModelSelectorOptions) *ModelSelectorService {
	return &ModelSelectorService{
		store:   store,
		engine:  features.NewEngine(),
		options: options,
		factory: strategies.StrategyFactory,
		now:     time.Now,
	}
}

// Split separates the points older than the validation period from the last validationDays
func Split(points []features.Point, validationDays int) ([]features.Point, []features.Point) {
	if len(points) == 0 || validationDays <= 0 {
		return points, nil
	}
	start := points[len(points)-1].Bar.Timestamp.Add(-time.Duration(validationDays) * day)
	for i, point := range points {
		if point.Bar.Timestamp.After(start) {
			return points[:i], points[i:]
		}
	}
	return points, nil
}

func (mss *ModelSelectorService) Select(ctx context.Context) (*models.Model, error) {
	since := mss.now().Add(-time.Duration(mss.options.TrainingDays) * day)
	bars, err := mss.store.BarsSince(ctx, mss.options.Symbol, mss.options.Interval, since)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	points, err := mss.engine.Points(bars)
	if err != nil {
		return nil, err
	}
	training, validation := Split(points, mss.options.ValidationDays)
	if len(training) < 2 {
		return nil, fmt.Errorf("%w: %d training bars for %s %s", models.ErrInsufficientHistory, len(training),
			mss.options.Symbol, mss.options.Interval)
	}
	helpers.Logger.Infoln(fmt.Sprintf("Selecting model for %s %s on %d training and %d validation bars",
		mss.options.Symbol, mss.options.Interval, len(training), len(validation)))

	backtester := backtest.New(mss.options.Backtest)
	analysis := &analytics.SelectionAnalysis{Symbol: mss.options.Symbol, Interval: mss.options.Interval}
	results := map[string]backtest.Result{}
	for _, candidate := range strategies.Candidates(mss.options.Params) {
		result, err := mss.evaluate(backtester, candidate, training)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", candidate.ID(), err)
		}
		passed := mss.options.Thresholds.Accept(result.Metrics)
		logMetrics(candidate.ID(), "training", result.Metrics).WithField("passed", passed).
			Infoln("Candidate backtested")
		results[candidate.ID()] = result
		analysis.Candidates = append(analysis.Candidates, analytics.CandidateAnalysis{
			Strategy:        candidate,
			TrainingMetrics: result.Metrics,
			Passed:          passed,
		})
	}
	mss.Analysis = analysis

	best := analysis.Best()
	if best == nil {
		return nil, ErrNoCandidate
	}
	best.IsSelected = true

	if len(validation) > 1 {
		result, err := mss.evaluate(backtester, best.Strategy, validation)
		if err != nil {
			return nil, fmt.Errorf("validating %s: %w", best.Strategy.ID(), err)
		}
		best.ValidationMetrics = &result.Metrics
		logMetrics(best.Strategy.ID(), "validation", result.Metrics).Infoln("Candidate validated")
	}

	trainingMetrics := best.TrainingMetrics
	model := &models.Model{
		Name:              best.Strategy.Name,
		Version:           best.Strategy.Version,
		Symbol:            mss.options.Symbol,
		Interval:          mss.options.Interval,
		Status:            models.ModelStatusApproved,
		Strategy:          best.Strategy,
		TrainingMetrics:   &trainingMetrics,
		ValidationMetrics: best.ValidationMetrics,
	}
	if err := mss.store.CreateModel(ctx, model); err != nil {
		return nil, fmt.Errorf("saving model: %w", err)
	}
	if mss.options.Activate {
		if err := mss.store.ActivateModel(ctx, model.ID); err != nil {
			return nil, fmt.Errorf("activating model %d: %w", model.ID, err)
		}
		model.Status = models.ModelStatusActive
	}
	helpers.Logger.Infoln(fmt.Sprintf("Model %s saved with id %d", model, model.ID))

	if mss.options.ExportPath != "" {
		if err := backtest.ExportTrades(mss.options.ExportPath, results[best.Strategy.ID()].Trades); err != nil {
			return model, fmt.Errorf("exporting trades: %w", err)
		}
	}
	return model, nil
}

func (mss *ModelSelectorService) evaluate(backtester *backtest.Backtester, candidate models.StrategyConfig,
	points []features.Point) (backtest.Result, error) {
	strategy, err := mss.factory(candidate)
	if err != nil {
		return backtest.Result{}, err
	}
	return backtester.Run(points, strategy.Signals(points))
}

func logMetrics(name string, period string, metrics models.PerformanceMetrics) *log.Entry {
	return helpers.Logger.WithFields(log.Fields{
		"strategy":     name,
		"period":       period,
		"trades":       metrics.TotalTrades,
		"winRate":      metrics.WinRate,
		"pnl":          metrics.TotalPnL,
		"sharpe":       metrics.SharpeRatio,
		"profitFactor": metrics.ProfitFactor,
		"maxDrawdown":  metrics.MaxDrawdownPct,
		"drawdownDays": metrics.MaxDrawdownDurationDays,
	})
}
