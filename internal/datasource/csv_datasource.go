package datasource

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ta/internal/logger"
	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
	"go.uber.org/zap"
)

// csvTime accepts RFC3339 timestamps and plain dates.
type csvTime struct {
	time.Time
}

var csvTimeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (t *csvTime) UnmarshalCSV(value string) error {
	for _, layout := range csvTimeLayouts {
		parsed, err := time.Parse(layout, strings.TrimSpace(value))
		if err == nil {
			t.Time = parsed.UTC()

			return nil
		}
	}

	return errors.Newf(errors.ErrCodeInvalidType, "cannot parse time %q", value)
}

type csvBar struct {
	Time   csvTime `csv:"time"`
	Symbol string  `csv:"symbol"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// CSVDataSource keeps a whole CSV file in memory. Rows without a symbol
// belong to the instrument named by the file's base name.
type CSVDataSource struct {
	logger *logger.Logger
	bars   map[string][]types.Bar
}

func NewCSVDataSource(logger *logger.Logger) DataSource {
	return &CSVDataSource{
		logger: logger,
		bars:   nil,
	}
}

// Initialize implements DataSource.
func (c *CSVDataSource) Initialize(path string) error {
	c.logger.Debug("Initializing CSV data source", zap.String("path", path))

	format, err := DetectFormat(path)
	if err != nil {
		return err
	}

	if format != FormatCSV {
		return errors.Newf(errors.ErrCodeUnsupportedFormat, "CSV data source cannot read %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to open %s", path)
	}
	defer file.Close()

	var rows []csvBar
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to parse %s", path)
	}

	defaultSymbol := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	bars := make(map[string][]types.Bar)

	for _, row := range rows {
		symbol := row.Symbol
		if symbol == "" {
			symbol = defaultSymbol
		}

		bars[symbol] = append(bars[symbol], types.Bar{
			Symbol: symbol,
			Time:   row.Time.Time,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}

	for _, list := range bars {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Time.Before(list[j].Time) })
	}

	c.bars = bars

	c.logger.Debug("Loaded CSV file",
		zap.String("path", path),
		zap.Int("rows", len(rows)),
		zap.Int("symbols", len(bars)),
	)

	return nil
}

// LoadSeries implements DataSource.
func (c *CSVDataSource) LoadSeries(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (types.Series, error) {
	selected, err := c.selectBars(symbol, start, end)
	if err != nil {
		return types.Series{}, err
	}

	if len(selected) == 0 {
		return types.Series{}, errors.Newf(errors.ErrCodeDataNotFound, "no data found for symbol: %s", symbol)
	}

	return types.NewSeries(symbol, selected)
}

// ListSymbols implements DataSource.
func (c *CSVDataSource) ListSymbols() ([]string, error) {
	if c.bars == nil {
		return nil, errors.New(errors.ErrCodeDataSourceUnavailable, "data source is not initialized")
	}

	symbols := make([]string, 0, len(c.bars))
	for symbol := range c.bars {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols, nil
}

// Count implements DataSource.
func (c *CSVDataSource) Count(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) (int, error) {
	selected, err := c.selectBars(symbol, start, end)
	if err != nil {
		return 0, err
	}

	return len(selected), nil
}

// Close implements DataSource.
func (c *CSVDataSource) Close() error {
	c.bars = nil

	return nil
}

func (c *CSVDataSource) selectBars(symbol string, start optional.Option[time.Time], end optional.Option[time.Time]) ([]types.Bar, error) {
	if c.bars == nil {
		return nil, errors.New(errors.ErrCodeDataSourceUnavailable, "data source is not initialized")
	}

	selected := []types.Bar{}

	for _, bar := range c.bars[symbol] {
		if inRange(bar.Time, start, end) {
			selected = append(selected, bar)
		}
	}

	return selected, nil
}
