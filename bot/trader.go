package bot

import (
	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/models"
	"gitlab.com/aoterocom/AORiskTrader/notifications"
	"gitlab.com/aoterocom/AORiskTrader/providers/binance"
	"gitlab.com/aoterocom/AORiskTrader/providers/paper"
	"gitlab.com/aoterocom/AORiskTrader/risk"
	"gitlab.com/aoterocom/AORiskTrader/services"
)

type Trader struct {
}

func (t *Trader) Run(c *cli.Context) error {
	b, err := Setup(c)
	if err != nil {
		return err
	}
	cfg := b.Config

	options, err := services.NewTraderOptions(*cfg, consumerName("trader"))
	if err != nil {
		return err
	}

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
	if options.Mode == models.TradingModeLive {
		exchangeService = binance.NewBinanceService(cfg.Binance.APIKey, cfg.Binance.APISecret, cfg.Binance.Testnet)
	}

	riskManager := risk.NewManager(risk.Limits{
		MaxPositionSize:      cfg.Risk.MaxPositionSize,
		MaxDailyLoss:         cfg.Risk.MaxDailyLoss,
		MaxConsecutiveLosses: cfg.Risk.MaxConsecutiveLosses,
	})
	router := services.NewExecutionRouterService(
		paper.NewPaperService(cfg.Execution.FeePct, cfg.Execution.SlippagePct, store), exchangeService)
	tracker := services.NewPositionTrackerService(store, riskManager)
	notifier := notifications.NewNotifier(cfg.Telegram)

	trader := services.NewTraderService(store, bus, riskManager, router, tracker, notifier, options)
	return trader.Run(c.Context)
}
