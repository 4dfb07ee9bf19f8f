package indicator

import (
	"testing"

	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RSITestSuite struct {
	suite.Suite
}

func TestRSISuite(t *testing.T) {
	suite.Run(t, new(RSITestSuite))
}

func (suite *RSITestSuite) TestHandComputed() {
	out, err := ComputeRSI([]float64{1, 2, 1, 3}, 2)
	suite.Require().NoError(err)

	suite.True(IsNA(out[0]))
	suite.True(IsNA(out[1]))
	suite.InDelta(50.0, out[2], 1e-12)
	suite.InDelta(200.0/3.0, out[3], 1e-12)
}

func (suite *RSITestSuite) TestFlatSeriesIsExactlyHundred() {
	out, err := ComputeRSI(constant(30, 42), 14)
	suite.Require().NoError(err)

	for i := 0; i < 14; i++ {
		suite.True(IsNA(out[i]), "index %d", i)
	}

	for i := 14; i < 30; i++ {
		suite.Equal(100.0, out[i], "index %d", i)
	}
}

func (suite *RSITestSuite) TestMonotonicSeries() {
	rising, err := ComputeRSI(ramp(1, 30), 14)
	suite.Require().NoError(err)
	suite.Equal(100.0, rising[29])

	falling, err := ComputeRSI(ramp(30, 1), 14)
	suite.Require().NoError(err)
	suite.Equal(0.0, falling[29])
}

func (suite *RSITestSuite) TestBounded() {
	closes := []float64{
		44.34, 44.09, 44.15, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08,
		45.89, 46.03, 45.61, 46.28, 46.28, 46.00, 46.03, 46.41, 46.22, 45.64,
		46.21, 46.25, 45.71, 46.45, 45.78, 45.35, 44.03, 44.18, 44.22, 44.57,
	}

	out, err := ComputeRSI(closes, DefaultRSIWindow)
	suite.Require().NoError(err)

	for i := DefaultRSIWindow; i < len(closes); i++ {
		suite.GreaterOrEqual(out[i], 0.0)
		suite.LessOrEqual(out[i], 100.0)
	}
}

func (suite *RSITestSuite) TestShortSeriesIsUndefined() {
	out, err := ComputeRSI(ramp(1, 14), 14)
	suite.Require().NoError(err)
	sameSeries(&suite.Suite, naSeries(14), out)

	out, err = ComputeRSI(nil, 14)
	suite.Require().NoError(err)
	suite.Empty(out)
}

func (suite *RSITestSuite) TestInvalidWindow() {
	_, err := ComputeRSI([]float64{1, 2, 3}, 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (suite *RSITestSuite) TestConfig() {
	rsi := NewRSI()
	rsiImpl := rsi.(*RSI)
	suite.Equal(DefaultRSIWindow, rsiImpl.window)
	suite.Equal(types.IndicatorTypeRSI, rsi.Name())

	suite.NoError(rsi.Config(6))
	suite.Equal(6, rsiImpl.window)

	suite.True(errors.HasCode(rsi.Config(), errors.ErrCodeMissingParameter))
	suite.True(errors.HasCode(rsi.Config(2.5), errors.ErrCodeInvalidType))
	suite.True(errors.HasCode(rsi.Config(-1), errors.ErrCodeInvalidPeriod))
}

func (suite *RSITestSuite) TestCompute() {
	series := closeSeries(&suite.Suite, 1, 2, 1, 3)
	table := types.NewIndicatorTable(series)

	rsi := NewRSI()
	suite.Require().NoError(rsi.Config(2))
	suite.Require().NoError(rsi.Compute(series, table))

	suite.Equal([]string{"rsi_2"}, table.ColumnNames())
	suite.InDelta(50.0, table.Value(RSIColumn(2), 2).Unwrap(), 1e-12)
}
