package writer

import (
	"math"
	"os"
	"path/filepath"

	"github.com/rxtech-lab/argo-ta/internal/datasource"
	"github.com/rxtech-lab/argo-ta/internal/logger"
	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
)

// DefaultPrecision is the number of decimals CSV output keeps.
const DefaultPrecision int32 = 4

// TableWriter persists an indicator table. Rows are written in table order
// with the columns time, symbol, then every float column and counter. Missing
// values are written as empty cells or NULL.
type TableWriter interface {
	Write(table *types.IndicatorTable) error
	OutputPath() string
}

// NewTableWriter picks a writer from the extension of outputPath.
func NewTableWriter(outputPath string, precision int32, logger *logger.Logger) (TableWriter, error) {
	format, err := datasource.DetectFormat(outputPath)
	if err != nil {
		return nil, err
	}

	if format == datasource.FormatParquet {
		return NewParquetWriter(outputPath, logger), nil
	}

	return NewCSVWriter(outputPath, precision, logger), nil
}

// ensureDir creates the parent directory of path.
func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeWriteFailed, err, "failed to create directory for %s", path)
	}

	return nil
}

func missing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
