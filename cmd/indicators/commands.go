package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ta/internal/cache"
	"github.com/rxtech-lab/argo-ta/internal/config"
	"github.com/rxtech-lab/argo-ta/internal/datasource"
	"github.com/rxtech-lab/argo-ta/internal/engine"
	"github.com/rxtech-lab/argo-ta/internal/logger"
	"github.com/rxtech-lab/argo-ta/internal/presentation"
	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/internal/writer"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const (
	readerDuckDB = "duckdb"
	readerCSV    = "csv"
)

// session bundles what every data command needs.
type session struct {
	cfg    config.Config
	log    *logger.Logger
	source datasource.DataSource
	engine engine.Engine
}

func setup(cmd *cli.Command) (*session, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}

	log, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	source, err := openSource(cmd.String("reader"), cmd.String("data"), log)
	if err != nil {
		return nil, err
	}

	eng := engine.NewEngineV1(
		engine.WithLogger(log),
		engine.WithCache(cache.NewCacheV1(cfg.Cache.TTL, cfg.Cache.MaxEntries)),
	)

	return &session{cfg: cfg, log: log, source: source, engine: eng}, nil
}

func (r *session) close() {
	if err := r.source.Close(); err != nil {
		r.log.Warn("Failed to close data source", zap.Error(err))
	}

	_ = r.log.Sync()
}

func openSource(reader string, path string, log *logger.Logger) (datasource.DataSource, error) {
	var (
		source datasource.DataSource
		err    error
	)

	switch reader {
	case readerDuckDB:
		source, err = datasource.NewDuckDBDataSource(":memory:", log)
		if err != nil {
			return nil, err
		}
	case readerCSV:
		source = datasource.NewCSVDataSource(log)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unknown reader %q, expected %s or %s", reader, readerDuckDB, readerCSV)
	}

	if err := source.Initialize(path); err != nil {
		_ = source.Close()

		return nil, err
	}

	return source, nil
}

func timeRange(cmd *cli.Command) (optional.Option[time.Time], optional.Option[time.Time]) {
	start, end := optional.None[time.Time](), optional.None[time.Time]()

	if cmd.IsSet("start") {
		start = optional.Some(cmd.Timestamp("start").UTC())
	}

	if cmd.IsSet("end") {
		end = optional.Some(cmd.Timestamp("end").UTC())
	}

	return start, end
}

// resolveSeries loads the first market candidate that has data.
func resolveSeries(r *session, symbol string, market string, start, end optional.Option[time.Time]) (types.Series, error) {
	candidates := []string{symbol}

	if market != "" {
		var err error

		candidates, err = presentation.MarketSymbols(symbol, presentation.Market(market))
		if err != nil {
			return types.Series{}, err
		}
	}

	var lastErr error

	for _, candidate := range candidates {
		series, err := r.source.LoadSeries(candidate, start, end)
		if err == nil {
			return series, nil
		}

		if !errors.HasCode(err, errors.ErrCodeDataNotFound) {
			return types.Series{}, err
		}

		r.log.Debug("No data for candidate symbol", zap.String("symbol", candidate))
		lastErr = err
	}

	return types.Series{}, errors.Wrapf(errors.ErrCodeDataNotFound, lastErr, "no data for %s (tried %s)", symbol, strings.Join(candidates, ", "))
}

func computeAction(_ context.Context, cmd *cli.Command) error {
	r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer r.close()

	start, end := timeRange(cmd)

	series, err := resolveSeries(r, cmd.String("symbol"), cmd.String("market"), start, end)
	if err != nil {
		return err
	}

	table, err := r.engine.Compute(series, r.cfg.Indicators)
	if err != nil {
		return err
	}

	table, err = displayWindow(table, cmd.String("period"), int(cmd.Int("tail")))
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		encoder := json.NewEncoder(cmd.Root().Writer)
		encoder.SetIndent("", "  ")

		return encoder.Encode(table)
	}

	w, err := writer.NewTableWriter(output, int32(cmd.Int("precision")), r.log)
	if err != nil {
		return err
	}

	if err := w.Write(table); err != nil {
		return err
	}

	r.log.Info("Indicator table written",
		zap.String("symbol", table.Symbol),
		zap.String("path", w.OutputPath()),
		zap.Int("rows", table.Len()),
	)

	return nil
}

func displayWindow(table *types.IndicatorTable, period string, tail int) (*types.IndicatorTable, error) {
	switch {
	case period != "" && tail > 0:
		return nil, errors.New(errors.ErrCodeInvalidParameter, "--period and --tail are mutually exclusive")
	case period != "":
		return presentation.DisplayWindow(table, period)
	case tail > 0:
		return table.Tail(tail), nil
	default:
		return table, nil
	}
}

func batchAction(ctx context.Context, cmd *cli.Command) error {
	format := datasource.Format(cmd.String("format"))
	if format != datasource.FormatCSV && format != datasource.FormatParquet {
		return errors.Newf(errors.ErrCodeUnsupportedFormat, "unknown output format %q", format)
	}

	r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer r.close()

	symbols := cmd.StringSlice("symbols")
	if len(symbols) == 0 {
		symbols, err = r.source.ListSymbols()
		if err != nil {
			return err
		}
	}

	start, end := timeRange(cmd)
	series := make([]types.Series, 0, len(symbols))

	for _, symbol := range symbols {
		s, err := r.source.LoadSeries(symbol, start, end)
		if err != nil {
			return errors.Wrapf(errors.GetCode(err), err, "failed to load %s", symbol)
		}

		series = append(series, s)
	}

	bar := progressbar.NewOptions(len(series),
		progressbar.OptionSetDescription("Computing indicators"),
		progressbar.OptionSetWriter(cmd.Root().ErrWriter),
		progressbar.OptionShowCount(),
	)

	results, err := r.engine.ComputeBatch(ctx, series, r.cfg.Indicators, engine.BatchOptions{
		Concurrency: int(cmd.Int("concurrency")),
		FailFast:    cmd.Bool("fail-fast"),
		OnProgress: func(_ int, _ int, _ string, _ error) {
			_ = bar.Add(1)
		},
	})

	_ = bar.Finish()

	if err != nil {
		return err
	}

	outputDir := cmd.String("output-dir")
	failed := 0

	for _, result := range results {
		if result.Err != nil {
			failed++

			r.log.Error("Symbol failed", zap.String("symbol", result.Symbol), zap.Error(result.Err))

			continue
		}

		path := filepath.Join(outputDir, fmt.Sprintf("%s.%s", result.Symbol, format))

		w, err := writer.NewTableWriter(path, int32(cmd.Int("precision")), r.log)
		if err != nil {
			return err
		}

		if err := w.Write(result.Table); err != nil {
			return err
		}
	}

	r.log.Info("Batch finished",
		zap.Int("symbols", len(results)),
		zap.Int("failed", failed),
		zap.String("output_dir", outputDir),
	)

	if failed > 0 {
		return errors.Newf(errors.ErrCodeIndicatorCalculation, "%d of %d symbols failed", failed, len(results))
	}

	return nil
}

func symbolsAction(_ context.Context, cmd *cli.Command) error {
	r, err := setup(cmd)
	if err != nil {
		return err
	}
	defer r.close()

	symbols, err := r.source.ListSymbols()
	if err != nil {
		return err
	}

	for _, symbol := range symbols {
		fmt.Fprintln(cmd.Root().Writer, symbol)
	}

	return nil
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := config.JSONSchema()
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		_, err := fmt.Fprintln(cmd.Root().Writer, schema)

		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create directory for %s", output)
	}

	if err := os.WriteFile(output, []byte(schema), 0644); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write %s", output)
	}

	return nil
}
