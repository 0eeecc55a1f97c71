package strategies

import (
	"fmt"

	"gitlab.com/aoterocom/AORiskTrader/interfaces"
	"gitlab.com/aoterocom/AORiskTrader/models"
)

func StrategyFactory(config models.StrategyConfig) (interfaces.Strategy, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Kind {
	case models.StrategyKindEMARSI:
		return interfaces.Strategy(NewEMARSIStrategy(config)), nil
	case models.StrategyKindMACDBB:
		return interfaces.Strategy(NewMACDBBStrategy(config)), nil
	default:
		return nil, fmt.Errorf("%w: %s is not a known strategy", models.ErrUnknownStrategy, config.Kind)
	}
}

// Candidates is the default set of strategies evaluated by model selection
func Candidates(params models.EMARSIParams) []models.StrategyConfig {
	return []models.StrategyConfig{
		models.NewEMARSIConfig("v1", params),
		models.NewMACDBBConfig("v1"),
	}
}
