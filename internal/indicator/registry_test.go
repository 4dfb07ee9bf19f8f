package indicator

import (
	"sync"
	"testing"

	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
	registry IndicatorRegistry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewIndicatorRegistry()
}

func (suite *RegistryTestSuite) TestRegisterIndicator() {
	err := suite.registry.RegisterIndicator(types.IndicatorTypeRSI, NewRSI)
	suite.NoError(err)

	indicator, err := suite.registry.NewIndicator(types.IndicatorTypeRSI)
	suite.NoError(err)
	suite.Equal(types.IndicatorTypeRSI, indicator.Name())
}

func (suite *RegistryTestSuite) TestRegisterDuplicate() {
	suite.Require().NoError(suite.registry.RegisterIndicator(types.IndicatorTypeRSI, NewRSI))

	err := suite.registry.RegisterIndicator(types.IndicatorTypeRSI, NewRSI)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorAlreadyExists))
}

func (suite *RegistryTestSuite) TestRegisterNilFactory() {
	err := suite.registry.RegisterIndicator(types.IndicatorTypeMA, nil)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *RegistryTestSuite) TestNewIndicatorNotFound() {
	indicator, err := suite.registry.NewIndicator(types.IndicatorTypeMACD)
	suite.Nil(indicator)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestInstancesAreIndependent() {
	suite.Require().NoError(suite.registry.RegisterIndicator(types.IndicatorTypeMA, NewMA))

	first, err := suite.registry.NewIndicator(types.IndicatorTypeMA)
	suite.Require().NoError(err)
	second, err := suite.registry.NewIndicator(types.IndicatorTypeMA)
	suite.Require().NoError(err)

	suite.Require().NoError(first.Config(5))
	suite.Equal(5, first.(*MA).window)
	suite.Equal(20, second.(*MA).window)
}

func (suite *RegistryTestSuite) TestListAndRemove() {
	suite.Require().NoError(suite.registry.RegisterIndicator(types.IndicatorTypeRSI, NewRSI))
	suite.Require().NoError(suite.registry.RegisterIndicator(types.IndicatorTypeMA, NewMA))

	suite.Equal([]types.IndicatorType{types.IndicatorTypeMA, types.IndicatorTypeRSI}, suite.registry.ListIndicators())

	suite.NoError(suite.registry.RemoveIndicator(types.IndicatorTypeMA))
	suite.Equal([]types.IndicatorType{types.IndicatorTypeRSI}, suite.registry.ListIndicators())

	err := suite.registry.RemoveIndicator(types.IndicatorTypeMA)
	suite.True(errors.HasCode(err, errors.ErrCodeIndicatorNotFound))
}

func (suite *RegistryTestSuite) TestDefaultRegistry() {
	registry := NewDefaultRegistry()
	suite.ElementsMatch(types.AllIndicatorTypes(), registry.ListIndicators())

	for _, name := range types.AllIndicatorTypes() {
		indicator, err := registry.NewIndicator(name)
		suite.Require().NoError(err)
		suite.Equal(name, indicator.Name())
	}
}

func (suite *RegistryTestSuite) TestConcurrentAccess() {
	registry := NewDefaultRegistry()

	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, _ = registry.NewIndicator(types.IndicatorTypeMACD)
			_ = registry.ListIndicators()
		}()
	}

	wg.Wait()
	suite.Len(registry.ListIndicators(), len(types.AllIndicatorTypes()))
}
