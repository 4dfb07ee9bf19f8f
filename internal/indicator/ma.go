package indicator

import (
	"fmt"

	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// DefaultMAWindows are the moving average windows offered to chart users.
var DefaultMAWindows = []int{5, 10, 20, 60}

// ComputeMovingAverage returns the simple mean of the trailing window closes
// ending at each index. Indices before window-1 are NaN; partial windows are
// never averaged. A window longer than the series yields all NaN.
func ComputeMovingAverage(closes []float64, window int) ([]float64, error) {
	if err := positiveWindow("window", window); err != nil {
		return nil, err
	}

	return rolling(closes, window, func(win []float64) float64 {
		return stat.Mean(win, nil)
	}), nil
}

// MAColumn is the table column name for a moving average of window.
func MAColumn(window int) string {
	return fmt.Sprintf("ma_%d", window)
}

// MA indicator implements Simple Moving Average calculation.
type MA struct {
	window int
}

// NewMA creates a new MA indicator with default configuration.
func NewMA() Indicator {
	return &MA{
		window: 20,
	}
}

// Name returns the name of the indicator.
func (m *MA) Name() types.IndicatorType {
	return types.IndicatorTypeMA
}

// Config expects one parameter: window (int).
func (m *MA) Config(params ...any) error {
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

	m.window = window

	return nil
}

// Compute adds the ma_<window> column.
func (m *MA) Compute(series types.Series, table *types.IndicatorTable) error {
	values, err := ComputeMovingAverage(series.Closes(), m.window)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate MA", err)
	}

	return table.AddColumn(MAColumn(m.window), values)
}
