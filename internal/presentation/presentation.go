// Package presentation maps engine output onto what a chart renderer shows:
// the display window, the TD labels and the symbol candidates to look up.
// Nothing here feeds back into indicator computation.
package presentation

import (
	"strings"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ta/internal/types"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
)

// MaxTDDisplayCount is the largest setup count a chart labels.
const MaxTDDisplayCount = 9

// TDDisplayCount returns the label for a setup counter, or None when the
// counter is 0 or has run past MaxTDDisplayCount.
func TDDisplayCount(count int) optional.Option[int] {
	if count < 1 || count > MaxTDDisplayCount {
		return optional.None[int]()
	}

	return optional.Some(count)
}

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TDLabel is one number drawn on the chart. Buy labels go under the bar's
// low and sell labels over its high.
type TDLabel struct {
	Index int  `json:"index"`
	Side  Side `json:"side"`
	Count int  `json:"count"`
}

// TDLabels lists the labels for the given counters in bar order, buy before
// sell on the same bar.
func TDLabels(buy, sell []int) ([]TDLabel, error) {
	if len(buy) != len(sell) {
		return nil, errors.NewInputShapeError("sell", len(buy), len(sell))
	}

	labels := []TDLabel{}

	for i := range buy {
		if count := TDDisplayCount(buy[i]); count.IsSome() {
			labels = append(labels, TDLabel{Index: i, Side: SideBuy, Count: count.Unwrap()})
		}

		if count := TDDisplayCount(sell[i]); count.IsSome() {
			labels = append(labels, TDLabel{Index: i, Side: SideSell, Count: count.Unwrap()})
		}
	}

	return labels, nil
}

// periodBars approximates trading days per lookback period.
var periodBars = map[string]int{
	"1mo": 21,
	"2mo": 42,
	"3mo": 63,
	"1y":  252,
	"5y":  1260,
}

// PeriodBars returns the number of daily bars shown for a period choice.
func PeriodBars(period string) (int, error) {
	bars, ok := periodBars[period]
	if !ok {
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "unknown period %q, expected one of 1mo, 2mo, 3mo, 1y, 5y", period)
	}

	return bars, nil
}

// DisplayWindow trims a table to the bars shown for period. Indicators must
// be computed over the full history first so the window starts warmed up.
func DisplayWindow(table *types.IndicatorTable, period string) (*types.IndicatorTable, error) {
	bars, err := PeriodBars(period)
	if err != nil {
		return nil, err
	}

	return table.Tail(bars), nil
}

type Market string

const (
	MarketTW Market = "TW"
	MarketUS Market = "US"
)

// MarketSymbols returns the lookup candidates for a user-entered symbol, in
// the order a data source should try them. Taiwan listings are tried on the
// main board (.TW) before the OTC board (.TWO).
func MarketSymbols(symbol string, market Market) ([]string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "symbol is required")
	}

	switch Market(strings.ToUpper(string(market))) {
	case MarketTW:
		if strings.HasSuffix(symbol, ".TW") || strings.HasSuffix(symbol, ".TWO") {
			return []string{symbol}, nil
		}

		return []string{symbol + ".TW", symbol + ".TWO"}, nil
	case MarketUS:
		return []string{symbol}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unknown market %q", market)
	}
}
