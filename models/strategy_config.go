package models

import (
	"fmt"
	"strings"
)

// StrategyKind define the closed set of rule based strategies
type StrategyKind string

const (
	StrategyKindEMARSI StrategyKind = "EMA_RSI"
	StrategyKindMACDBB StrategyKind = "MACD_BB"
)

func (k StrategyKind) Valid() bool {
	switch k {
	case StrategyKindEMARSI, StrategyKindMACDBB:
		return true
	default:
		return false
	}
}

func ParseStrategyKind(value string) (StrategyKind, error) {
	kind := StrategyKind(strings.ToUpper(strings.TrimSpace(value)))
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, value)
	}
	return kind, nil
}

// EMAPeriods are the EMA lengths computed for every bar
var EMAPeriods = []int{9, 21, 50, 200}

// EMARSIParams are the parameters of the EMA cross + RSI strategy. Fast and slow
// periods select among the computed EMAPeriods.
type EMARSIParams struct {
	FastPeriod    int     `json:"ema_fast"`
	SlowPeriod    int     `json:"ema_slow"`
	RSIOversold   float64 `json:"rsi_oversold"`
	RSIOverbought float64 `json:"rsi_overbought"`
}

// StrategyConfig is a tagged variant. MACD_BB carries no parameters.
type StrategyConfig struct {
	Kind    StrategyKind  `json:"strategy"`
	Name    string        `json:"name"`
	Version string        `json:"version"`
	EMARSI  *EMARSIParams `json:"ema_rsi,omitempty"`
}

func DefaultEMARSIParams() EMARSIParams {
	return EMARSIParams{FastPeriod: 9, SlowPeriod: 21, RSIOversold: 30, RSIOverbought: 70}
}

func NewEMARSIConfig(version string, params EMARSIParams) StrategyConfig {
	return StrategyConfig{Kind: StrategyKindEMARSI, Name: string(StrategyKindEMARSI), Version: version, EMARSI: &params}
}

func NewMACDBBConfig(version string) StrategyConfig {
	return StrategyConfig{Kind: StrategyKindMACDBB, Name: string(StrategyKindMACDBB), Version: version}
}

// Validate checks the variant tag and its params
func (c StrategyConfig) Validate() error {
	switch c.Kind {
	case StrategyKindEMARSI:
		p := c.EMARSI
		if p == nil {
			return fmt.Errorf("strategy %s: missing ema_rsi params", c.Kind)
		}
		if !isEMAPeriod(p.FastPeriod) || !isEMAPeriod(p.SlowPeriod) || p.FastPeriod >= p.SlowPeriod {
			return fmt.Errorf("strategy %s: invalid ema periods %d/%d", c.Kind, p.FastPeriod, p.SlowPeriod)
		}
		if p.RSIOversold < 0 || p.RSIOverbought > 100 || p.RSIOversold >= p.RSIOverbought {
			return fmt.Errorf("strategy %s: invalid rsi thresholds %.2f/%.2f", c.Kind, p.RSIOversold, p.RSIOverbought)
		}
		return nil
	case StrategyKindMACDBB:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Kind)
	}
}

func isEMAPeriod(period int) bool {
	for _, p := range EMAPeriods {
		if p == period {
			return true
		}
	}
	return false
}

// ID returns the model name of the config, e.g. EMA_RSI_v1
func (c StrategyConfig) ID() string {
	return c.Name + "_" + c.Version
}
