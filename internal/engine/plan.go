package engine

import (
	"github.com/rxtech-lab/argo-ta/internal/config"
	"github.com/rxtech-lab/argo-ta/internal/types"
)

// step is one indicator instance with the parameters passed to its Config.
type step struct {
	name   types.IndicatorType
	params []any
}

// buildPlan turns a config into the ordered list of indicator runs. The order
// fixes the column order of the resulting table.
func buildPlan(cfg config.IndicatorsConfig) []step {
	plan := []step{}

	for _, window := range cfg.MA.Windows {
		plan = append(plan, step{name: types.IndicatorTypeMA, params: []any{window}})
	}

	if cfg.Bollinger.Enabled {
		plan = append(plan, step{name: types.IndicatorTypeBollingerBands, params: []any{cfg.Bollinger.Window, cfg.Bollinger.K}})
	}

	if cfg.RSI.Enabled {
		plan = append(plan, step{name: types.IndicatorTypeRSI, params: []any{cfg.RSI.Window}})
	}

	if cfg.MACD.Enabled {
		plan = append(plan, step{name: types.IndicatorTypeMACD, params: []any{cfg.MACD.Fast, cfg.MACD.Slow, cfg.MACD.Signal}})
	}

	if cfg.KD.Enabled {
		plan = append(plan, step{name: types.IndicatorTypeStochasticKD, params: []any{cfg.KD.Period, cfg.KD.Com, cfg.KD.FlatRange}})
	}

	if cfg.TD.Enabled {
		plan = append(plan, step{name: types.IndicatorTypeTDSequential, params: nil})
	}

	return plan
}
