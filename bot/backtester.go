package bot

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/AORiskTrader/backtest"
	"gitlab.com/aoterocom/AORiskTrader/features"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gitlab.com/aoterocom/AORiskTrader/services"
	"gitlab.com/aoterocom/AORiskTrader/strategies"
)

// Backtester runs the candidate strategies over the stored history without saving a model
type Backtester struct {
}

func (bt *Backtester) Run(c *cli.Context) error {
	b, err := Setup(c)
	if err != nil {
		return err
	}
	store, err := b.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	options := services.NewModelSelectorOptions(*b.Config)
	days := options.TrainingDays
	if c.IsSet("days") {
		days = c.Int("days")
	}
	candidates := strategies.Candidates(options.Params)
	if c.IsSet("strategy") {
		kind, err := models.ParseStrategyKind(c.String("strategy"))
		if err != nil {
			return err
		}
		var selected []models.StrategyConfig
		for _, candidate := range candidates {
			if candidate.Kind == kind {
				selected = append(selected, candidate)
			}
		}
		candidates = selected
	}

	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)
	bars, err := store.BarsSince(c.Context, options.Symbol, options.Interval, since)
	if err != nil {
		return err
	}
	points, err := features.NewEngine().Points(bars)
	if err != nil {
		return err
	}
	helpers.Logger.Infoln(fmt.Sprintf("Backtesting %d strategies on %d %s %s bars", len(candidates), len(points),
		options.Symbol, options.Interval))

	backtester := backtest.New(options.Backtest)
	for _, candidate := range candidates {
		strategy, err := strategies.StrategyFactory(candidate)
		if err != nil {
			return err
		}
		result, err := backtester.Run(points, strategy.Signals(points))
		if err != nil {
			return err
		}
		metrics := result.Metrics
		helpers.Logger.WithFields(log.Fields{
			"trades":       metrics.TotalTrades,
			"winRate":      metrics.WinRate,
			"pnl":          metrics.TotalPnL,
			"return":       metrics.TotalReturnPct,
			"sharpe":       metrics.SharpeRatio,
			"profitFactor": metrics.ProfitFactor,
			"maxDrawdown":  metrics.MaxDrawdownPct,
			"finalCapital": result.FinalCapital,
			"passed":       options.Thresholds.Accept(metrics),
		}).Infoln(candidate.ID())

		if path := c.String("export"); path != "" {
			file := fmt.Sprintf("%s_%s.parquet", path, candidate.ID())
			if err := backtest.ExportTrades(file, result.Trades); err != nil {
				return err
			}
			helpers.Logger.Infoln("Trades exported to " + file)
		}
	}
	return nil
}
