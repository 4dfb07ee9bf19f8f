package engine

import (
	"context"

	"github.com/rxtech-lab/argo-ta/internal/config"
	"github.com/rxtech-lab/argo-ta/internal/types"
)

// OnProgressCallback is called after each symbol of a batch finishes,
// successfully or not. Calls are serialized.
type OnProgressCallback func(done int, total int, symbol string, err error)

// BatchOptions controls ComputeBatch.
type BatchOptions struct {
	// Concurrency bounds parallel symbols. Zero or less means one per CPU.
	Concurrency int
	// FailFast stops the batch at the first failing symbol and returns its error.
	FailFast bool
	// OnProgress is optional.
	OnProgress OnProgressCallback
}

// BatchResult is the outcome for one symbol of a batch. Exactly one of
// Table and Err is set.
type BatchResult struct {
	Symbol string
	Table  *types.IndicatorTable
	Err    error
}

// Engine computes indicator tables for OHLCV series.
type Engine interface {
	// Compute runs every indicator enabled in cfg over series. The returned
	// table is owned by the caller.
	Compute(series types.Series, cfg config.IndicatorsConfig) (*types.IndicatorTable, error)
	// ComputeBatch computes many series in parallel. Results keep the input order.
	ComputeBatch(ctx context.Context, series []types.Series, cfg config.IndicatorsConfig, opts BatchOptions) ([]BatchResult, error)
}
