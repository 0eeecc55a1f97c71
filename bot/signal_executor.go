package bot

import (
	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/services"
)

type SignalExecutor struct {
}

func (se *SignalExecutor) Run(c *cli.Context) error {
	b, err := Setup(c)
	if err != nil {
		return err
	}
	helpers.Logger.Infoln("Signal executor started on " + b.Config.App.Symbol + " " + b.Config.App.Interval)

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

	generator := services.NewSignalGeneratorService(store, bus,
		services.NewSignalGeneratorOptions(*b.Config, consumerName("executor")))
	return generator.Run(c.Context)
}
