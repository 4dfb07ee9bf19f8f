package indicator

import (
	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
)

const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9

	ColumnMACD          = "macd"
	ColumnMACDSignal    = "macd_signal"
	ColumnMACDHistogram = "macd_histogram"
)

// MACDResult holds the MACD line, its signal line and the histogram.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// ComputeMACD computes MACD from recursive EMAs (see ComputeEMA). The signal
// line is the EMA of the MACD line seeded at its first value, and the
// histogram is exactly MACD minus signal. All outputs are defined from index 0.
func ComputeMACD(closes []float64, fast, slow, signal int) (MACDResult, error) {
	if err := positiveWindow("fast", fast); err != nil {
		return MACDResult{}, err
	}

	if err := positiveWindow("slow", slow); err != nil {
		return MACDResult{}, err
	}

	if err := positiveWindow("signal", signal); err != nil {
		return MACDResult{}, err
	}

	if fast >= slow {
		return MACDResult{}, errors.Newf(errors.ErrCodeInvalidPeriod, "fast span %d must be shorter than slow span %d", fast, slow)
	}

	fastEMA := ewm(closes, spanAlpha(fast))
	slowEMA := ewm(closes, spanAlpha(slow))

	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine := ewm(macd, spanAlpha(signal))

	histogram := make([]float64, len(closes))
	for i := range closes {
		histogram[i] = macd[i] - signalLine[i]
	}

	return MACDResult{
		MACD:      macd,
		Signal:    signalLine,
		Histogram: histogram,
	}, nil
}

// MACD represents the Moving Average Convergence Divergence indicator.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
}

// NewMACD creates a new MACD indicator with default configuration.
func NewMACD() Indicator {
	return &MACD{
		fastPeriod:   DefaultMACDFast,
		slowPeriod:   DefaultMACDSlow,
		signalPeriod: DefaultMACDSignal,
	}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Config configures the MACD indicator. Expected parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int).
func (m *MACD) Config(params ...any) error {
	if len(params) != 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 3 parameters: fastPeriod (int), slowPeriod (int), signalPeriod (int)")
	}

	periods := make([]int, 3)
	names := []string{"fastPeriod", "slowPeriod", "signalPeriod"}

	for i, name := range names {
		period, err := intParam(params, i, name)
		if err != nil {
			return err
		}

		if err := positiveWindow(name, period); err != nil {
			return err
		}

		periods[i] = period
	}

	if periods[0] >= periods[1] {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "fastPeriod %d must be shorter than slowPeriod %d", periods[0], periods[1])
	}

	m.fastPeriod = periods[0]
	m.slowPeriod = periods[1]
	m.signalPeriod = periods[2]

	return nil
}

// Compute adds the macd, macd_signal and macd_histogram columns.
func (m *MACD) Compute(series types.Series, table *types.IndicatorTable) error {
	result, err := ComputeMACD(series.Closes(), m.fastPeriod, m.slowPeriod, m.signalPeriod)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate MACD", err)
	}

	if err := table.AddColumn(ColumnMACD, result.MACD); err != nil {
		return err
	}

	if err := table.AddColumn(ColumnMACDSignal, result.Signal); err != nil {
		return err
	}

	return table.AddColumn(ColumnMACDHistogram, result.Histogram)
}
