package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultBollingerWindow     = 20
	DefaultBollingerMultiplier = 2.0

	ColumnBollingerMiddle    = "bb_middle"
	ColumnBollingerUpper     = "bb_upper"
	ColumnBollingerLower     = "bb_lower"
	ColumnBollingerDeviation = "bb_deviation"
)

// BollingerResult holds the band series. All four share the moving
// average's NaN prefix.
type BollingerResult struct {
	Middle    []float64
	Upper     []float64
	Lower     []float64
	Deviation []float64
}

// ComputeBollinger computes Bollinger Bands. The deviation is the population
// standard deviation (divide by N) of the same trailing window as the middle
// band.
func ComputeBollinger(closes []float64, window int, k float64) (BollingerResult, error) {
	if err := positiveWindow("window", window); err != nil {
		return BollingerResult{}, err
	}

	if k <= 0 || math.IsNaN(k) || math.IsInf(k, 0) {
		return BollingerResult{}, errors.Newf(errors.ErrCodeInvalidMultiplier, "multiplier must be a positive number, got %f", k)
	}

	middle, err := ComputeMovingAverage(closes, window)
	if err != nil {
		return BollingerResult{}, err
	}

	deviation := rolling(closes, window, func(win []float64) float64 {
		return math.Sqrt(stat.Moment(2, win, nil))
	})

	upper := naSeries(len(closes))
	lower := naSeries(len(closes))

	for i := range closes {
		if IsNA(middle[i]) || IsNA(deviation[i]) {
			continue
		}

		upper[i] = middle[i] + k*deviation[i]
		lower[i] = middle[i] - k*deviation[i]
	}

	return BollingerResult{
		Middle:    middle,
		Upper:     upper,
		Lower:     lower,
		Deviation: deviation,
	}, nil
}

// BollingerBands implements the Indicator interface for Bollinger Bands.
type BollingerBands struct {
	window int     // Number of periods for moving average
	k      float64 // Number of standard deviations
}

// NewBollingerBands creates a new Bollinger Bands indicator with default configuration.
func NewBollingerBands() Indicator {
	return &BollingerBands{
		window: DefaultBollingerWindow,
		k:      DefaultBollingerMultiplier,
	}
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Config configures the Bollinger Bands indicator. Expected parameters: window (int), k (float64).
func (bb *BollingerBands) Config(params ...any) error {
	if len(params) != 2 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 parameters: window (int), k (float64)")
	}

	window, err := intParam(params, 0, "window")
	if err != nil {
		return err
	}

	if err := positiveWindow("window", window); err != nil {
		return err
	}

	k, err := floatParam(params, 1, "k")
	if err != nil {
		return err
	}

	if k <= 0 {
		return errors.Newf(errors.ErrCodeInvalidMultiplier, "k must be a positive number, got %f", k)
	}

	bb.window = window
	bb.k = k

	return nil
}

// Compute adds the middle, upper, lower and deviation columns.
func (bb *BollingerBands) Compute(series types.Series, table *types.IndicatorTable) error {
	result, err := ComputeBollinger(series.Closes(), bb.window, bb.k)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate Bollinger Bands", err)
	}

	columns := []types.Column{
		{Name: ColumnBollingerMiddle, Values: result.Middle},
		{Name: ColumnBollingerUpper, Values: result.Upper},
		{Name: ColumnBollingerLower, Values: result.Lower},
		{Name: ColumnBollingerDeviation, Values: result.Deviation},
	}

	for _, c := range columns {
		if err := table.AddColumn(c.Name, c.Values); err != nil {
			return err
		}
	}

	return nil
}
