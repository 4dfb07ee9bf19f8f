package engine

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-ta/internal/cache"
	"github.com/rxtech-lab/argo-ta/internal/config"
	"github.com/rxtech-lab/argo-ta/internal/indicator"
	"github.com/rxtech-lab/argo-ta/internal/logger"
	"github.com/rxtech-lab/argo-ta/internal/metrics"
	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type EngineV1 struct {
	registry indicator.IndicatorRegistry
	cache    cache.Cache
	metrics  *metrics.Metrics
	log      *logger.Logger
	inflight singleflight.Group
}

// Option customizes an EngineV1.
type Option func(*EngineV1)

// WithRegistry replaces the default indicator registry.
func WithRegistry(registry indicator.IndicatorRegistry) Option {
	return func(e *EngineV1) {
		e.registry = registry
	}
}

// WithCache memoizes computed tables. Without it every call recomputes.
func WithCache(c cache.Cache) Option {
	return func(e *EngineV1) {
		e.cache = c
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *EngineV1) {
		e.metrics = m
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(e *EngineV1) {
		e.log = log
	}
}

// NewEngineV1 creates an engine over the built-in indicators.
func NewEngineV1(opts ...Option) Engine {
	e := &EngineV1{
		registry: indicator.NewDefaultRegistry(),
		cache:    nil,
		metrics:  nil,
		log:      logger.NewNopLogger(),
		inflight: singleflight.Group{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Compute implements Engine.
func (e *EngineV1) Compute(series types.Series, cfg config.IndicatorsConfig) (*types.IndicatorTable, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key, err := Fingerprint(series, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIndicatorCalculation, "failed to fingerprint request", err)
	}

	if e.cache != nil {
		cached := e.cache.Get(key)
		e.observeCacheSize()

		if cached.IsSome() {
			e.log.Debug("Indicator table served from cache",
				zap.String("symbol", series.Symbol()),
				zap.String("fingerprint", key),
			)

			e.countCompute(metrics.ResultCacheHit)

			return copyTable(cached.Unwrap()), nil
		}
	}

	leader := false
	result, err, _ := e.inflight.Do(key, func() (any, error) {
		leader = true

		return e.compute(series, cfg, key)
	})
	if err != nil {
		e.countCompute(metrics.ResultError)

		return nil, err
	}

	if !leader {
		e.log.Debug("Indicator computation shared with concurrent caller",
			zap.String("symbol", series.Symbol()),
		)

		e.countCompute(metrics.ResultShared)
	}

	return copyTable(result.(*types.IndicatorTable)), nil
}

func (e *EngineV1) countCompute(result string) {
	if e.metrics != nil {
		e.metrics.ComputeTotal.WithLabelValues(result).Inc()
	}
}

// observeCacheSize refreshes the cache gauge. Len drops expired entries, so
// the gauge follows TTL expiry as well as inserts.
func (e *EngineV1) observeCacheSize() {
	if e.metrics != nil && e.cache != nil {
		e.metrics.CacheEntries.Set(float64(e.cache.Len()))
	}
}

func (e *EngineV1) compute(series types.Series, cfg config.IndicatorsConfig, key string) (*types.IndicatorTable, error) {
	start := time.Now()
	table := types.NewIndicatorTable(series)

	for _, s := range buildPlan(cfg) {
		ind, err := e.registry.NewIndicator(s.name)
		if err != nil {
			return nil, err
		}

		if err := ind.Config(s.params...); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidParameter, err, "failed to configure %s", s.name)
		}

		if err := ind.Compute(series, table); err != nil {
			return nil, err
		}
	}

	elapsed := time.Since(start)

	e.log.Debug("Computed indicator table",
		zap.String("symbol", series.Symbol()),
		zap.Int("bars", series.Len()),
		zap.Strings("columns", table.ColumnNames()),
		zap.Duration("elapsed", elapsed),
	)

	if e.metrics != nil {
		e.metrics.ObserveCompute(series.Len(), elapsed)
	}

	if e.cache != nil {
		e.cache.Set(key, table)
		e.observeCacheSize()
	}

	return table, nil
}

// ComputeBatch implements Engine.
func (e *EngineV1) ComputeBatch(ctx context.Context, series []types.Series, cfg config.IndicatorsConfig, opts BatchOptions) ([]BatchResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	results := make([]BatchResult, len(series))
	done := 0

	var progressMu sync.Mutex

	g, groupCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range series {
		s := series[i]

		report := func(err error) {
			progressMu.Lock()
			defer progressMu.Unlock()

			done++
			if opts.OnProgress != nil {
				opts.OnProgress(done, len(series), s.Symbol(), err)
			}
		}

		g.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				results[i] = BatchResult{Symbol: s.Symbol(), Err: err}
				report(err)

				return nil
			}

			table, err := e.Compute(s, cfg)
			results[i] = BatchResult{Symbol: s.Symbol(), Table: table, Err: err}

			e.recordBatch(s.Symbol(), err)
			report(err)

			if err != nil && opts.FailFast {
				return errors.Wrapf(errors.ErrCodeIndicatorCalculation, err, "symbol %s", s.Symbol())
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}

	return results, nil
}

func (e *EngineV1) recordBatch(symbol string, err error) {
	result := metrics.ResultComputed

	if err != nil {
		result = metrics.ResultError

		e.log.Warn("Batch symbol failed",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
	}

	if e.metrics != nil {
		e.metrics.BatchSymbolsTotal.WithLabelValues(result).Inc()
	}
}

// copyTable hands out an independent table so callers cannot mutate a
// memoized one.
func copyTable(t *types.IndicatorTable) *types.IndicatorTable {
	return t.Tail(t.Len())
}
