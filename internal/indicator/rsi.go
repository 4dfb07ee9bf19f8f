package indicator

import (
	"fmt"
	"math"

	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// DefaultRSIWindow is the RSI lookback.
const DefaultRSIWindow = 14

// ComputeRSI computes the Relative Strength Index using a simple rolling mean
// of gains and losses over the trailing window of close-to-close changes.
//
// This is not Wilder's smoothed RSI and produces materially different values
// from it. Indices 0..window-1 are NaN. When the average loss of a window is
// zero (a rising or flat window) the RSI is exactly 100.
func ComputeRSI(closes []float64, window int) ([]float64, error) {
	if err := positiveWindow("window", window); err != nil {
		return nil, err
	}

	n := len(closes)
	out := naSeries(n)

	if n <= window {
		return out, nil
	}

	gains := make([]float64, n)
	losses := make([]float64, n)

	for i := 1; i < n; i++ {
		delta := closes[i] - closes[i-1]
		gains[i] = math.Max(delta, 0)
		losses[i] = math.Max(-delta, 0)
	}

	for i := window; i < n; i++ {
		avgGain := stat.Mean(gains[i-window+1:i+1], nil)
		avgLoss := stat.Mean(losses[i-window+1:i+1], nil)

		if avgLoss == 0 {
			out[i] = 100

			continue
		}

		out[i] = 100 - 100/(1+avgGain/avgLoss)
	}

	return out, nil
}

// RSIColumn is the table column name for an RSI of window.
func RSIColumn(window int) string {
	return fmt.Sprintf("rsi_%d", window)
}

// RSI represents the Relative Strength Index indicator.
type RSI struct {
	window int
}

// NewRSI creates a new RSI indicator with default configuration.
func NewRSI() Indicator {
	return &RSI{
		window: DefaultRSIWindow,
	}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Config configures the RSI indicator. Expected parameters: window (int).
func (r *RSI) Config(params ...any) error {
	if len(params) != 1 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 1 parameter: window (int)")
	}

	window, err := intParam(params, 0, "window")
	if err != nil {
		return err
	}

	if err := positiveWindow("window", window); err != nil {
		return err
	}

	r.window = window

	return nil
}

// Compute adds the rsi_<window> column.
func (r *RSI) Compute(series types.Series, table *types.IndicatorTable) error {
	values, err := ComputeRSI(series.Closes(), r.window)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate RSI", err)
	}

	return table.AddColumn(RSIColumn(r.window), values)
}
