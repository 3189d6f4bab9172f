package data

import (
	"sort"
	"time"

	"github.com/twquant/trader/market"
)

// Frame is a date-indexed view of one field: a date -> value series for
// macro tables, or a date x stock matrix for per-stock tables.
type Frame struct {
	Table string
	Field string

	// Macro marks a table with no per-stock dimension; values are stored
	// under the empty stock code.
	Macro bool

	// Partial marks a frame resolved from fewer dates than requested.
	Partial bool

	dates []time.Time
	codes map[string]struct{}
	cells map[int64]map[string]float64
}

func newFrame(table, field string, macro bool) *Frame {
	return &Frame{
		Table: table,
		Field: field,
		Macro: macro,
		codes: make(map[string]struct{}),
		cells: make(map[int64]map[string]float64),
	}
}

func dayKey(t time.Time) int64 {
	return market.Midnight(t).Unix()
}

// set records one observation, overwriting any previous value for the same
// (date, code) pair. Dates are normalized to midnight UTC.
func (f *Frame) set(date time.Time, code string, value float64) {
	k := dayKey(date)
	row, ok := f.cells[k]
	if !ok {
		row = make(map[string]float64)
		f.cells[k] = row
		f.dates = append(f.dates, market.Midnight(date))
	}
	row[code] = value
	f.codes[code] = struct{}{}
}

// finalize sorts the date index; call once after the last set.
func (f *Frame) finalize() *Frame {
	sort.Slice(f.dates, func(i, j int) bool { return f.dates[i].Before(f.dates[j]) })
	return f
}

// Len returns the number of distinct dates in the frame.
func (f *Frame) Len() int { return len(f.dates) }

// Empty reports whether the frame holds no observations.
func (f *Frame) Empty() bool { return len(f.dates) == 0 }

// Dates returns the frame's dates in ascending order. The slice is shared;
// callers must not mutate it.
func (f *Frame) Dates() []time.Time { return f.dates }

// Codes returns the stock codes present in the frame, sorted. Macro frames
// return an empty slice.
func (f *Frame) Codes() []string {
	out := make([]string, 0, len(f.codes))
	for code := range f.codes {
		if code == "" {
			continue
		}
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Value returns the observation for (date, code), if present.
func (f *Frame) Value(date time.Time, code string) (float64, bool) {
	row, ok := f.cells[dayKey(date)]
	if !ok {
		return 0, false
	}
	v, ok := row[code]
	return v, ok
}

// MacroValue returns the observation for date on a macro frame.
func (f *Frame) MacroValue(date time.Time) (float64, bool) {
	return f.Value(date, "")
}

// Latest returns the most recent observation for code, if any.
func (f *Frame) Latest(code string) (float64, bool) {
	for i := len(f.dates) - 1; i >= 0; i-- {
		if v, ok := f.Value(f.dates[i], code); ok {
			return v, true
		}
	}
	return 0, false
}

// Column returns code's values aligned to Dates. Missing observations are
// reported through the parallel ok slice.
func (f *Frame) Column(code string) (values []float64, ok []bool) {
	values = make([]float64, len(f.dates))
	ok = make([]bool, len(f.dates))
	for i, d := range f.dates {
		values[i], ok[i] = f.Value(d, code)
	}
	return values, ok
}

// Slice returns the sub-frame covering span (inclusive). The result shares
// no date index with the receiver and carries the receiver's flags.
func (f *Frame) Slice(span Span) *Frame {
	out := newFrame(f.Table, f.Field, f.Macro)
	out.Partial = f.Partial
	for _, d := range f.dates {
		if d.Before(span.Start) || d.After(span.End) {
			continue
		}
		for code, v := range f.cells[dayKey(d)] {
			out.set(d, code, v)
		}
	}
	return out.finalize()
}
