package types

import (
	"encoding/json"
	"math"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ta/pkg/errors"
)

// Column is one named floating-point indicator output. NaN marks "no value".
type Column struct {
	Name   string
	Values []float64
}

// CounterColumn is one named integer indicator output, such as a TD setup count.
type CounterColumn struct {
	Name   string
	Values []int
}

// IndicatorTable holds indicator outputs index-aligned with the bars they were
// computed from.
type IndicatorTable struct {
	Symbol   string
	Times    []time.Time
	Columns  []Column
	Counters []CounterColumn
}

// NewIndicatorTable creates an empty table aligned with series.
func NewIndicatorTable(series Series) *IndicatorTable {
	return &IndicatorTable{
		Symbol:   series.Symbol(),
		Times:    series.Times(),
		Columns:  []Column{},
		Counters: []CounterColumn{},
	}
}

// Len returns the number of rows.
func (t *IndicatorTable) Len() int {
	return len(t.Times)
}

// AddColumn appends a float column. The column must have one value per row.
func (t *IndicatorTable) AddColumn(name string, values []float64) error {
	if len(values) != t.Len() {
		return errors.NewInputShapeError(name, t.Len(), len(values))
	}

	if t.Column(name).IsSome() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "column %s already exists", name)
	}

	t.Columns = append(t.Columns, Column{Name: name, Values: values})

	return nil
}

// AddCounter appends an integer column. The column must have one value per row.
func (t *IndicatorTable) AddCounter(name string, values []int) error {
	if len(values) != t.Len() {
		return errors.NewInputShapeError(name, t.Len(), len(values))
	}

	if t.Counter(name).IsSome() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "counter %s already exists", name)
	}

	t.Counters = append(t.Counters, CounterColumn{Name: name, Values: values})

	return nil
}

// Column looks up a float column by name.
func (t *IndicatorTable) Column(name string) optional.Option[[]float64] {
	for _, c := range t.Columns {
		if c.Name == name {
			return optional.Some(c.Values)
		}
	}

	return optional.None[[]float64]()
}

// Counter looks up an integer column by name.
func (t *IndicatorTable) Counter(name string) optional.Option[[]int] {
	for _, c := range t.Counters {
		if c.Name == name {
			return optional.Some(c.Values)
		}
	}

	return optional.None[[]int]()
}

// Value returns column[name][i], or None if the column is missing, i is out
// of range or the value is NaN.
func (t *IndicatorTable) Value(name string, i int) optional.Option[float64] {
	col := t.Column(name)
	if col.IsNone() {
		return optional.None[float64]()
	}

	values := col.Unwrap()
	if i < 0 || i >= len(values) || math.IsNaN(values[i]) {
		return optional.None[float64]()
	}

	return optional.Some(values[i])
}

// ColumnNames returns float column names followed by counter names, in insertion order.
func (t *IndicatorTable) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns)+len(t.Counters))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}

	for _, c := range t.Counters {
		names = append(names, c.Name)
	}

	return names
}

// Tail returns a copy holding at most the last n rows, for display windows.
func (t *IndicatorTable) Tail(n int) *IndicatorTable {
	if n < 0 {
		n = 0
	}

	start := 0
	if n < t.Len() {
		start = t.Len() - n
	}

	out := &IndicatorTable{
		Symbol:   t.Symbol,
		Times:    append([]time.Time(nil), t.Times[start:]...),
		Columns:  make([]Column, len(t.Columns)),
		Counters: make([]CounterColumn, len(t.Counters)),
	}

	for i, c := range t.Columns {
		out.Columns[i] = Column{Name: c.Name, Values: append([]float64(nil), c.Values[start:]...)}
	}

	for i, c := range t.Counters {
		out.Counters[i] = CounterColumn{Name: c.Name, Values: append([]int(nil), c.Values[start:]...)}
	}

	return out
}

type tableJSON struct {
	Symbol   string                `json:"symbol"`
	Times    []time.Time           `json:"times"`
	Columns  map[string][]*float64 `json:"columns"`
	Counters map[string][]int      `json:"counters"`
}

// MarshalJSON encodes NaN as null, which encoding/json cannot represent otherwise.
func (t *IndicatorTable) MarshalJSON() ([]byte, error) {
	out := tableJSON{
		Symbol:   t.Symbol,
		Times:    t.Times,
		Columns:  make(map[string][]*float64, len(t.Columns)),
		Counters: make(map[string][]int, len(t.Counters)),
	}

	for _, c := range t.Columns {
		values := make([]*float64, len(c.Values))
		for i := range c.Values {
			if math.IsNaN(c.Values[i]) || math.IsInf(c.Values[i], 0) {
				continue
			}

			v := c.Values[i]
			values[i] = &v
		}

		out.Columns[c.Name] = values
	}

	for _, c := range t.Counters {
		out.Counters[c.Name] = c.Values
	}

	return json.Marshal(out)
}
