package bot

import (
	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/AORiskTrader/config"
	"gitlab.com/aoterocom/AORiskTrader/database"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/providers/binance"
	"gitlab.com/aoterocom/AORiskTrader/providers/paper"
	"gitlab.com/aoterocom/AORiskTrader/services"
)

type Ingestor struct {
}

func (in *Ingestor) Run(c *cli.Context) error {
	b, err := Setup(c)
	if err != nil {
		return err
	}
	cfg := b.Config

	store, err := b.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	bus, err := b.OpenBus(c.Context)
	if err != nil {
		return err
	}
	defer bus.Close()

	var exchangeService interfaces.ExchangeService
	if source := c.String("replay"); source != "" {
		// recorded bars of another sqlite database are replayed through the paper exchange
		recorded, err := database.Open(config.Database{Driver: "sqlite", Name: source})
		if err != nil {
			return err
		}
		defer recorded.Close()
		exchangeService = paper.NewPaperService(0, 0, recorded)
	} else {
		exchangeService = binance.NewBinanceService(cfg.Binance.APIKey, cfg.Binance.APISecret, cfg.Binance.Testnet)
	}
	ingestor := services.NewIngestorService(exchangeService, store, bus, cfg.App.Symbol, cfg.App.Interval)

	if !c.Bool("follow") {
		_, err := ingestor.Backfill(c.Context, c.Int("limit"))
		return err
	}
	period, err := helpers.IntervalDuration(cfg.App.Interval)
	if err != nil {
		return err
	}
	return ingestor.Run(c.Context, c.Int("limit"), period, cfg.Executor.RetryBackoff)
}
