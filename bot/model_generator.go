package bot

import (
	"errors"

	"github.com/urfave/cli/v2"
	"gitlab.com/aoterocom/AORiskTrader/helpers"
	"gitlab.com/aoterocom/AORiskTrader/services"
)

type ModelGenerator struct {
}

func (mg *ModelGenerator) Run(c *cli.Context) error {
	b, err := Setup(c)
	if err != nil {
		return err
	}
	helpers.Logger.Infoln("Model generator started")

	store, err := b.OpenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	options := services.NewModelSelectorOptions(*b.Config)
	if c.IsSet("activate") {
		options.Activate = c.Bool("activate")
	}
	if c.IsSet("export") {
		options.ExportPath = c.String("export")
	}

	model, err := services.NewModelSelectorService(store, options).Select(c.Context)
	if errors.Is(err, services.ErrNoCandidate) {
		helpers.Logger.Warnln("No strategy passed the acceptance thresholds, no model saved")
		return nil
	}
	if err != nil {
		return err
	}
	helpers.Logger.Infoln("Model " + model.String() + " ready")
	return nil
}
