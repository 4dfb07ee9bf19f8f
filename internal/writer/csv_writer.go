package writer

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/argo-ta/internal/logger"
	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CSVWriter writes a table as a wide CSV file with fixed-precision values.
type CSVWriter struct {
	outputPath string
	precision  int32
	logger     *logger.Logger
}

func NewCSVWriter(outputPath string, precision int32, logger *logger.Logger) *CSVWriter {
	return &CSVWriter{
		outputPath: outputPath,
		precision:  precision,
		logger:     logger,
	}
}

// Write implements TableWriter.
func (w *CSVWriter) Write(table *types.IndicatorTable) error {
	if err := ensureDir(w.outputPath); err != nil {
		return err
	}

	file, err := os.Create(w.outputPath)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create %s", w.outputPath)
	}
	defer file.Close()

	out := gocsv.NewSafeCSVWriter(csv.NewWriter(file))

	header := append([]string{"time", "symbol"}, table.ColumnNames()...)
	if err := out.Write(header); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to write header", err)
	}

	for i := range table.Times {
		if err := out.Write(w.row(table, i)); err != nil {
			return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to write row %d", i)
		}
	}

	out.Flush()

	if err := out.Error(); err != nil {
		return errors.Wrap(errors.ErrCodeWriteFailed, "failed to flush csv", err)
	}

	w.logger.Debug("Wrote indicator table",
		zap.String("path", w.outputPath),
		zap.String("symbol", table.Symbol),
		zap.Int("rows", table.Len()),
	)

	return nil
}

// OutputPath implements TableWriter.
func (w *CSVWriter) OutputPath() string {
	return w.outputPath
}

func (w *CSVWriter) row(table *types.IndicatorTable, i int) []string {
	record := make([]string, 0, 2+len(table.Columns)+len(table.Counters))
	record = append(record, table.Times[i].UTC().Format(time.RFC3339), table.Symbol)

	for _, c := range table.Columns {
		if missing(c.Values[i]) {
			record = append(record, "")

			continue
		}

		record = append(record, decimal.NewFromFloat(c.Values[i]).StringFixed(w.precision))
	}

	for _, c := range table.Counters {
		record = append(record, strconv.Itoa(c.Values[i]))
	}

	return record
}
