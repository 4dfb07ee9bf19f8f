package indicator

import (
	"github.com/rxtech-lab/argo-ta/internal/types"
)

// Indicator is a configurable technical indicator that appends its output
// columns to a table aligned with the input series.
//
// Implementations hold only their parameters; Compute never mutates the
// series and allocates fresh output slices on every call.
type Indicator interface {
	// Name returns the name of the indicator
	Name() types.IndicatorType
	// Config sets the indicator parameters. The accepted params differ per indicator.
	Config(params ...any) error
	// Compute adds the indicator's columns for series to table
	Compute(series types.Series, table *types.IndicatorTable) error
}
