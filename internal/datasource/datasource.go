package datasource

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
)

// Format is the on-disk layout of an OHLCV file.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// DataSource loads stored OHLCV bars. Files hold one row per bar with the
// columns time, symbol, open, high, low, close and volume.
type DataSource interface {
	// Initialize attaches the file at path. Calling it again replaces the file.
	Initialize(path string) error
	// LoadSeries returns the bars of symbol between the optional inclusive
	// bounds, ordered by time. Duplicate timestamps are rejected with
	// ErrCodeOutOfOrder rather than dropped.
	LoadSeries(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.Series, error)
	// ListSymbols returns the distinct symbols in sorted order.
	ListSymbols() ([]string, error)
	// Count returns the number of bars for symbol between the optional bounds.
	Count(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (int, error)
	// Close releases any resources.
	Close() error
}

// DetectFormat infers the file format from its extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet":
		return FormatParquet, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported data file %s, expected .parquet or .csv", path)
	}
}

// inRange reports whether t lies within the optional inclusive bounds.
func inRange(t time.Time, start optional.Option[time.Time], end optional.Option[time.Time]) bool {
	if start.IsSome() && t.Before(start.Unwrap()) {
		return false
	}

	if end.IsSome() && t.After(end.Unwrap()) {
		return false
	}

	return true
}
