package data

import (
	"sort"
	"time"
)

// Span is an inclusive date range over which a cached series is
// authoritative.
type Span struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether o lies entirely within s.
func (s Span) Contains(o Span) bool {
	return !o.Start.Before(s.Start) && !o.End.After(s.End)
}

// IsZero reports whether the span is unset.
func (s Span) IsZero() bool { return s.Start.IsZero() && s.End.IsZero() }

// DateIndex holds the sorted known observation dates of every table, built
// once from the store at cache construction.
type DateIndex struct {
	dates map[string][]time.Time // ascending per table
}

// NewDateIndex builds an index from per-table date lists. Each list is
// copied and sorted.
func NewDateIndex(tableDates map[string][]time.Time) *DateIndex {
	ix := &DateIndex{dates: make(map[string][]time.Time, len(tableDates))}
	for table, ds := range tableDates {
		cp := make([]time.Time, len(ds))
		copy(cp, ds)
		sort.Slice(cp, func(i, j int) bool { return cp[i].Before(cp[j]) })
		ix.dates[table] = cp
	}
	return ix
}

// Dates returns table's known dates, ascending.
func (ix *DateIndex) Dates(table string) []time.Time { return ix.dates[table] }

// HasDate reports whether table has an observation exactly on day.
func (ix *DateIndex) HasDate(table string, day time.Time) bool {
	ds := ix.dates[table]
	i := sort.Search(len(ds), func(i int) bool { return !ds[i].Before(day) })
	return i < len(ds) && ds[i].Equal(day)
}

// SpanBefore resolves the lookback most recent known dates of table at or
// before asOf into an inclusive span. When fewer than lookback dates
// qualify the span covers all of them and partial is true. ok is false when
// no date qualifies at all.
func (ix *DateIndex) SpanBefore(table string, asOf time.Time, lookback int) (span Span, partial, ok bool) {
	ds := ix.dates[table]

	// First index strictly after asOf.
	hi := sort.Search(len(ds), func(i int) bool { return ds[i].After(asOf) })
	if hi == 0 {
		return Span{}, false, false
	}

	lo := hi - lookback
	if lo < 0 {
		lo = 0
		partial = true
	}
	return Span{Start: ds[lo], End: ds[hi-1]}, partial, true
}
