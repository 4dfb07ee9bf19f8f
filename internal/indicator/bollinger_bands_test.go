package indicator

import (
	"math"
	"testing"

	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type BollingerBandsTestSuite struct {
	suite.Suite
}

func TestBollingerBandsSuite(t *testing.T) {
	suite.Run(t, new(BollingerBandsTestSuite))
}

func (suite *BollingerBandsTestSuite) TestPopulationDeviation() {
	closes := ramp(1, 20)

	result, err := ComputeBollinger(closes, 20, 2)
	suite.Require().NoError(err)

	for i := 0; i < 19; i++ {
		suite.True(IsNA(result.Middle[i]))
		suite.True(IsNA(result.Upper[i]))
		suite.True(IsNA(result.Lower[i]))
		suite.True(IsNA(result.Deviation[i]))
	}

	// population variance of 1..20 is (20^2-1)/12
	dev := math.Sqrt(399.0 / 12.0)
	suite.InDelta(10.5, result.Middle[19], 1e-12)
	suite.InDelta(dev, result.Deviation[19], 1e-12)
	suite.InDelta(10.5+2*dev, result.Upper[19], 1e-12)
	suite.InDelta(10.5-2*dev, result.Lower[19], 1e-12)
}

func (suite *BollingerBandsTestSuite) TestBandWidthIsFourDeviations() {
	closes := []float64{
		101.2, 100.8, 102.5, 103.1, 101.9, 104.4, 105.0, 103.7, 102.2, 104.9,
		106.3, 107.1, 105.8, 104.6, 106.9, 108.2, 109.0, 107.5, 106.4, 108.8,
		110.1, 109.6, 111.3, 112.0, 110.7,
	}

	result, err := ComputeBollinger(closes, DefaultBollingerWindow, DefaultBollingerMultiplier)
	suite.Require().NoError(err)

	for i := DefaultBollingerWindow - 1; i < len(closes); i++ {
		suite.GreaterOrEqual(result.Deviation[i], 0.0)
		suite.InDelta(4*result.Deviation[i], result.Upper[i]-result.Lower[i], 1e-9, "index %d", i)
	}
}

func (suite *BollingerBandsTestSuite) TestMiddleMatchesMovingAverage() {
	closes := []float64{5, 7, 6, 8, 9, 7, 6, 5, 8, 10}

	result, err := ComputeBollinger(closes, 4, 2)
	suite.Require().NoError(err)

	ma, err := ComputeMovingAverage(closes, 4)
	suite.Require().NoError(err)

	sameSeries(&suite.Suite, ma, result.Middle)
}

func (suite *BollingerBandsTestSuite) TestConstantSeriesCollapses() {
	result, err := ComputeBollinger(constant(25, 10), 20, 2)
	suite.Require().NoError(err)

	for i := 19; i < 25; i++ {
		suite.Equal(10.0, result.Middle[i])
		suite.Equal(0.0, result.Deviation[i])
		suite.Equal(10.0, result.Upper[i])
		suite.Equal(10.0, result.Lower[i])
	}
}

func (suite *BollingerBandsTestSuite) TestInvalidParameters() {
	_, err := ComputeBollinger([]float64{1}, 0, 2)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))

	_, err = ComputeBollinger([]float64{1}, 20, 0)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidMultiplier))

	_, err = ComputeBollinger([]float64{1}, 20, math.NaN())
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidMultiplier))
}

func (suite *BollingerBandsTestSuite) TestConfig() {
	bb := NewBollingerBands()
	bbImpl := bb.(*BollingerBands)
	suite.Equal(20, bbImpl.window)
	suite.Equal(2.0, bbImpl.k)
	suite.Equal(types.IndicatorTypeBollingerBands, bb.Name())

	suite.NoError(bb.Config(10, 2.5))
	suite.Equal(10, bbImpl.window)
	suite.Equal(2.5, bbImpl.k)

	suite.NoError(bb.Config(15, 3))
	suite.Equal(3.0, bbImpl.k)

	suite.True(errors.HasCode(bb.Config(10), errors.ErrCodeMissingParameter))
	suite.True(errors.HasCode(bb.Config(0, 2.0), errors.ErrCodeInvalidPeriod))
	suite.True(errors.HasCode(bb.Config(10, -1.0), errors.ErrCodeInvalidMultiplier))
	suite.True(errors.HasCode(bb.Config(10, "2"), errors.ErrCodeInvalidType))
}

func (suite *BollingerBandsTestSuite) TestCompute() {
	series := closeSeries(&suite.Suite, ramp(1, 25)...)
	table := types.NewIndicatorTable(series)

	suite.Require().NoError(NewBollingerBands().Compute(series, table))
	suite.Equal(
		[]string{ColumnBollingerMiddle, ColumnBollingerUpper, ColumnBollingerLower, ColumnBollingerDeviation},
		table.ColumnNames(),
	)
	suite.True(table.Value(ColumnBollingerMiddle, 18).IsNone())
	suite.InDelta(10.5, table.Value(ColumnBollingerMiddle, 19).Unwrap(), 1e-12)
}
