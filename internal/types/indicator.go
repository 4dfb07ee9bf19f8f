package types

type IndicatorType string

const (
	IndicatorTypeMA             IndicatorType = "ma"
	IndicatorTypeBollingerBands IndicatorType = "bollinger_bands"
	IndicatorTypeRSI            IndicatorType = "rsi"
	IndicatorTypeMACD           IndicatorType = "macd"
	IndicatorTypeStochasticKD   IndicatorType = "stochastic_kd"
	IndicatorTypeTDSequential   IndicatorType = "td_sequential"
)

// AllIndicatorTypes lists every indicator the engine knows how to build.
func AllIndicatorTypes() []IndicatorType {
	return []IndicatorType{
		IndicatorTypeMA,
		IndicatorTypeBollingerBands,
		IndicatorTypeRSI,
		IndicatorTypeMACD,
		IndicatorTypeStochasticKD,
		IndicatorTypeTDSequential,
	}
}
