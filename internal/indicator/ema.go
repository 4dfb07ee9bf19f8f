package indicator

// ComputeEMA returns the exponential moving average of values with smoothing
// factor 2/(span+1), computed recursively without bias adjustment and seeded
// at the first value. There is no warm-up gap: every index from the seed on
// is defined, even though early values are unstable.
func ComputeEMA(values []float64, span int) ([]float64, error) {
	if err := positiveWindow("span", span); err != nil {
		return nil, err
	}

	return ewm(values, spanAlpha(span)), nil
}
