package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
)

// Bar is one trading period's OHLCV summary.
type Bar struct {
	Symbol string    `csv:"symbol" json:"symbol,omitempty"`
	Time   time.Time `csv:"time" json:"time"`
	Open   float64   `csv:"open" json:"open"`
	High   float64   `csv:"high" json:"high"`
	Low    float64   `csv:"low" json:"low"`
	Close  float64   `csv:"close" json:"close"`
	Volume float64   `csv:"volume" json:"volume"`
}

// Series is an immutable, time-ordered sequence of bars for one instrument.
// Accessors always return copies so the caller's bars are never shared with
// indicator output.
type Series struct {
	symbol string
	bars   []Bar
}

// NewSeries copies bars into a Series. Timestamps must be strictly increasing;
// the series is never sorted or deduplicated here. Price relations such as
// high >= low are not checked.
func NewSeries(symbol string, bars []Bar) (Series, error) {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Time.After(bars[i-1].Time) {
			return Series{}, errors.NewOutOfOrderError(i, bars[i-1].Time, bars[i].Time)
		}
	}

	copied := make([]Bar, len(bars))
	copy(copied, bars)

	return Series{symbol: symbol, bars: copied}, nil
}

// Symbol returns the instrument the series belongs to.
func (s Series) Symbol() string {
	return s.symbol
}

// Len returns the number of bars.
func (s Series) Len() int {
	return len(s.bars)
}

// At returns the bar at index i, or None when i is out of range.
func (s Series) At(i int) optional.Option[Bar] {
	if i < 0 || i >= len(s.bars) {
		return optional.None[Bar]()
	}

	return optional.Some(s.bars[i])
}

// Bars returns a copy of all bars.
func (s Series) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)

	return out
}

// Tail returns a series holding at most the last n bars.
func (s Series) Tail(n int) Series {
	if n < 0 {
		n = 0
	}

	if n >= len(s.bars) {
		return s
	}

	out := make([]Bar, n)
	copy(out, s.bars[len(s.bars)-n:])

	return Series{symbol: s.symbol, bars: out}
}

// Times returns the bar timestamps.
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Time
	}

	return out
}

// Opens returns the open column.
func (s Series) Opens() []float64 {
	return s.column(func(b Bar) float64 { return b.Open })
}

// Highs returns the high column.
func (s Series) Highs() []float64 {
	return s.column(func(b Bar) float64 { return b.High })
}

// Lows returns the low column.
func (s Series) Lows() []float64 {
	return s.column(func(b Bar) float64 { return b.Low })
}

// Closes returns the close column.
func (s Series) Closes() []float64 {
	return s.column(func(b Bar) float64 { return b.Close })
}

// Volumes returns the volume column.
func (s Series) Volumes() []float64 {
	return s.column(func(b Bar) float64 { return b.Volume })
}

func (s Series) column(pick func(Bar) float64) []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = pick(b)
	}

	return out
}
