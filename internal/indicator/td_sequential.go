package indicator

import (
	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
)

const (
	// TDLookback is how many bars back each close is compared against.
	TDLookback = 4

	ColumnTDBuySetup  = "td_buy_setup"
	ColumnTDSellSetup = "td_sell_setup"
)

// TDSetupResult holds the buy and sell setup counters. 0 means no active setup.
type TDSetupResult struct {
	Buy  []int
	Sell []int
}

// ComputeTDSequential counts consecutive bars whose close is below (buy setup)
// or above (sell setup) the close TDLookback bars earlier.
//
// The first TDLookback bars are 0 for both counters. The two streaks are
// independent, and a comparison that fails resets only its own streak. The
// counters are unbounded; they do not wrap or stop at 9.
func ComputeTDSequential(closes []float64) TDSetupResult {
	buy := make([]int, len(closes))
	sell := make([]int, len(closes))
	buyStreak, sellStreak := 0, 0

	for i := TDLookback; i < len(closes); i++ {
		if closes[i] < closes[i-TDLookback] {
			buyStreak++
		} else {
			buyStreak = 0
		}

		if closes[i] > closes[i-TDLookback] {
			sellStreak++
		} else {
			sellStreak = 0
		}

		buy[i] = buyStreak
		sell[i] = sellStreak
	}

	return TDSetupResult{Buy: buy, Sell: sell}
}

// TDSequential implements the Indicator interface for the TD setup counter.
type TDSequential struct{}

// NewTDSequential creates a new TD Sequential setup indicator.
func NewTDSequential() Indicator {
	return &TDSequential{}
}

// Name returns the name of the indicator.
func (td *TDSequential) Name() types.IndicatorType {
	return types.IndicatorTypeTDSequential
}

// Config accepts no parameters; the lookback is fixed.
func (td *TDSequential) Config(params ...any) error {
	if len(params) != 0 {
		return errors.New(errors.ErrCodeInvalidParameter, "Config expects no parameters")
	}

	return nil
}

// Compute adds the td_buy_setup and td_sell_setup counters.
func (td *TDSequential) Compute(series types.Series, table *types.IndicatorTable) error {
	result := ComputeTDSequential(series.Closes())

	if err := table.AddCounter(ColumnTDBuySetup, result.Buy); err != nil {
		return err
	}

	return table.AddCounter(ColumnTDSellSetup, result.Sell)
}
