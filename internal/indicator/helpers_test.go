package indicator

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/stretchr/testify/suite"
)

// sameSeries compares float series treating NaN as equal to NaN.
func sameSeries(s *suite.Suite, expected, actual []float64, msgAndArgs ...any) {
	s.Require().Len(actual, len(expected), msgAndArgs...)

	for i := range expected {
		if math.IsNaN(expected[i]) {
			s.True(math.IsNaN(actual[i]), "index %d: expected NaN, got %v", i, actual[i])

			continue
		}

		s.InDelta(expected[i], actual[i], 1e-9, "index %d", i)
	}
}

// closeSeries builds a daily series whose high/low straddle each close by 1.
func closeSeries(s *suite.Suite, closes ...float64) types.Series {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))

	for i, c := range closes {
		bars[i] = types.Bar{
			Time:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: 100,
		}
	}

	series, err := types.NewSeries("TEST", bars)
	s.Require().NoError(err)

	return series
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func ramp(from, to float64) []float64 {
	out := []float64{}
	step := 1.0

	if to < from {
		step = -1
	}

	for v := from; ; v += step {
		out = append(out, v)
		if v == to {
			break
		}
	}

	return out
}

var nan = math.NaN()
