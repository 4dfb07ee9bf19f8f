package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
)

const (
	DefaultKDPeriod = 9
	DefaultKDCom    = 2.0

	ColumnKDRSV = "kd_rsv"
	ColumnKDK   = "kd_k"
	ColumnKDD   = "kd_d"

	flatRangeMidpointRSV = 50.0
)

// FlatRangePolicy decides the RSV of a window whose highest high equals its
// lowest low, where the usual formula divides by zero.
type FlatRangePolicy string

const (
	// FlatRangeMidpoint sets RSV to 50.
	FlatRangeMidpoint FlatRangePolicy = "midpoint"
	// FlatRangeCarry repeats the previous defined RSV, or 50 if there is none.
	FlatRangeCarry FlatRangePolicy = "carry"
	// FlatRangeNaN leaves RSV, K and D undefined at that bar. The smoothing
	// state carries over to the next defined RSV.
	FlatRangeNaN FlatRangePolicy = "nan"
)

// ParseFlatRangePolicy converts a config string into a FlatRangePolicy.
// An empty string selects FlatRangeMidpoint.
func ParseFlatRangePolicy(s string) (FlatRangePolicy, error) {
	switch FlatRangePolicy(s) {
	case "", FlatRangeMidpoint:
		return FlatRangeMidpoint, nil
	case FlatRangeCarry:
		return FlatRangeCarry, nil
	case FlatRangeNaN:
		return FlatRangeNaN, nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidPolicy, "unknown flat range policy %q", s)
	}
}

// KDResult holds the raw stochastic value and the smoothed K and D lines.
type KDResult struct {
	RSV []float64
	K   []float64
	D   []float64
}

// ComputeStochasticKD computes the stochastic KD oscillator.
//
// RSV = 100 * (close - lowest low) / (highest high - lowest low) over the
// trailing period. K is the recursive exponential average of RSV with
// alpha = 1/(1+com), seeded at the first defined RSV; D is the same average
// over K. The first period-1 indices are NaN. high, low and close must have
// equal lengths.
func ComputeStochasticKD(high, low, close []float64, period int, com float64, policy FlatRangePolicy) (KDResult, error) {
	err := checkAligned(
		namedColumn{name: "close", values: close},
		namedColumn{name: "high", values: high},
		namedColumn{name: "low", values: low},
	)
	if err != nil {
		return KDResult{}, err
	}

	if err := positiveWindow("period", period); err != nil {
		return KDResult{}, err
	}

	if com < 0 || math.IsNaN(com) || math.IsInf(com, 0) {
		return KDResult{}, errors.Newf(errors.ErrCodeInvalidParameter, "center of mass must be a non-negative number, got %f", com)
	}

	policy, err = ParseFlatRangePolicy(string(policy))
	if err != nil {
		return KDResult{}, err
	}

	rsv := naSeries(len(close))
	lastRSV := math.NaN()

	for i := period - 1; i < len(close); i++ {
		lo, hi := windowExtremes(low[i-period+1:i+1], high[i-period+1:i+1])

		switch {
		case IsNA(lo) || IsNA(close[i]):
			continue
		case hi == lo:
			rsv[i] = flatRangeRSV(policy, lastRSV)
		default:
			rsv[i] = clampPercent(100 * ((close[i] - lo) / (hi - lo)))
		}

		if !IsNA(rsv[i]) {
			lastRSV = rsv[i]
		}
	}

	alpha := comAlpha(com)
	k := clampPercentSeries(ewm(rsv, alpha))
	d := clampPercentSeries(ewm(k, alpha))

	return KDResult{RSV: rsv, K: k, D: d}, nil
}

// clampPercent pins v to [0, 100]. NaN passes through.
func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func clampPercentSeries(values []float64) []float64 {
	for i, v := range values {
		values[i] = clampPercent(v)
	}

	return values
}

func flatRangeRSV(policy FlatRangePolicy, lastRSV float64) float64 {
	switch policy {
	case FlatRangeNaN:
		return math.NaN()
	case FlatRangeCarry:
		if IsNA(lastRSV) {
			return flatRangeMidpointRSV
		}

		return lastRSV
	default:
		return flatRangeMidpointRSV
	}
}

// StochasticKD implements the Indicator interface for the KD oscillator.
type StochasticKD struct {
	period int
	com    float64
	policy FlatRangePolicy
}

// NewStochasticKD creates a new KD indicator with default configuration.
func NewStochasticKD() Indicator {
	return &StochasticKD{
		period: DefaultKDPeriod,
		com:    DefaultKDCom,
		policy: FlatRangeMidpoint,
	}
}

// Name returns the name of the indicator.
func (s *StochasticKD) Name() types.IndicatorType {
	return types.IndicatorTypeStochasticKD
}

// Config configures the KD indicator.
// Expected parameters: period (int), com (float64), and optionally a flat range policy (FlatRangePolicy or string).
func (s *StochasticKD) Config(params ...any) error {
	if len(params) < 2 || len(params) > 3 {
		return errors.New(errors.ErrCodeMissingParameter, "Config expects 2 or 3 parameters: period (int), com (float64), policy (string)")
	}

	period, err := intParam(params, 0, "period")
	if err != nil {
		return err
	}

	if err := positiveWindow("period", period); err != nil {
		return err
	}

	com, err := floatParam(params, 1, "com")
	if err != nil {
		return err
	}

	if com < 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter, "com must be a non-negative number, got %f", com)
	}

	policy := FlatRangeMidpoint

	if len(params) == 3 {
		var raw string

		switch p := params[2].(type) {
		case FlatRangePolicy:
			raw = string(p)
		case string:
			raw = p
		default:
			return errors.New(errors.ErrCodeInvalidType, "invalid type for policy parameter, expected string")
		}

		policy, err = ParseFlatRangePolicy(raw)
		if err != nil {
			return err
		}
	}

	s.period = period
	s.com = com
	s.policy = policy

	return nil
}

// Compute adds the kd_rsv, kd_k and kd_d columns.
func (s *StochasticKD) Compute(series types.Series, table *types.IndicatorTable) error {
	result, err := ComputeStochasticKD(series.Highs(), series.Lows(), series.Closes(), s.period, s.com, s.policy)
	if err != nil {
		return errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to calculate stochastic KD", err)
	}

	if err := table.AddColumn(ColumnKDRSV, result.RSV); err != nil {
		return err
	}

	if err := table.AddColumn(ColumnKDK, result.K); err != nil {
		return err
	}

	return table.AddColumn(ColumnKDD, result.D)
}
