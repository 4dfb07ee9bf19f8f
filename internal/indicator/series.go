package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// IsNA reports whether v is the "no value" sentinel used in derived series.
func IsNA(v float64) bool {
	return math.IsNaN(v)
}

// naSeries returns n "no value" entries.
func naSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}

	return out
}

// namedColumn pairs a column with the name used in shape errors.
type namedColumn struct {
	name   string
	values []float64
}

// checkAligned verifies every column has the length of the first one.
func checkAligned(columns ...namedColumn) error {
	if len(columns) == 0 {
		return nil
	}

	expected := len(columns[0].values)
	for _, c := range columns[1:] {
		if len(c.values) != expected {
			return errors.NewInputShapeError(c.name, expected, len(c.values))
		}
	}

	return nil
}

// rolling applies fn to every full trailing window. Indices before the first
// full window are NaN. fn receives a subslice of values and must not keep it.
func rolling(values []float64, window int, fn func(win []float64) float64) []float64 {
	out := naSeries(len(values))
	for i := window - 1; i < len(values); i++ {
		out[i] = fn(values[i-window+1 : i+1])
	}

	return out
}

// windowExtremes returns min(lows) and max(highs), or NaN for both when
// either window holds a missing value.
func windowExtremes(lows, highs []float64) (lo, hi float64) {
	if floats.HasNaN(lows) || floats.HasNaN(highs) {
		return math.NaN(), math.NaN()
	}

	return floats.Min(lows), floats.Max(highs)
}

// ewm is the recursive exponential average without bias adjustment:
// out[seed] = values[seed], out[i] = alpha*values[i] + (1-alpha)*out[i-1].
// The seed is the first non-NaN value. A NaN input after the seed yields NaN
// at that index and leaves the running state untouched.
func ewm(values []float64, alpha float64) []float64 {
	out := naSeries(len(values))
	seeded := false
	state := 0.0

	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}

		if !seeded {
			state = v
			seeded = true
		} else {
			state = alpha*v + (1-alpha)*state
		}

		out[i] = state
	}

	return out
}

// spanAlpha converts an EMA span to its smoothing factor.
func spanAlpha(span int) float64 {
	return 2.0 / (float64(span) + 1.0)
}

// comAlpha converts a center of mass to its smoothing factor.
func comAlpha(com float64) float64 {
	return 1.0 / (1.0 + com)
}

// intParam reads params[idx] as an int. Whole float64 values are accepted
// since JSON and YAML decode numbers that way.
func intParam(params []any, idx int, name string) (int, error) {
	switch v := params[idx].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, errors.Newf(errors.ErrCodeInvalidType, "%s must be a whole number, got %v", name, v)
		}

		return int(v), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected int", name)
	}
}

// floatParam reads params[idx] as a float64, accepting ints.
func floatParam(params []any, idx int, name string) (float64, error) {
	switch v := params[idx].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidType, "invalid type for %s parameter, expected float64", name)
	}
}

func positiveWindow(name string, window int) error {
	if window <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "%s must be a positive integer, got %d", name, window)
	}

	return nil
}
