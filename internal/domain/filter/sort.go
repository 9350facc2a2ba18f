package filter

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Sort returns a new slice holding records ordered by key. The sort is
// stable: records with equal keys keep their input order. An empty key means
// DefaultSortKey; an unsupported key leaves the order unchanged.
func Sort[T any](records []T, key SortKey, schema Schema[T]) []T {
	return sortRecords(records, key, schema, nil)
}

type keyed[T any] struct {
	rec   T
	ts    time.Time
	valid bool
	rank  int
	score decimal.Decimal
}

func sortRecords[T any](records []T, key SortKey, schema Schema[T], sink *Sink) []T {
	if key == "" {
		key = DefaultSortKey
	}

	rows := make([]keyed[T], len(records))
	for i, rec := range records {
		row := keyed[T]{rec: rec}
		switch key {
		case SortRecency:
			t, err := schema.Timestamp(rec)
			if err != nil {
				sink.Report(schema.ID(rec), "timestamp", fmt.Errorf("%w: %v", ErrMalformedTimestamp, err))
			} else {
				row.ts, row.valid = t, true
			}
		case SortRank:
			row.rank = schema.rankOf(rec)
		case SortScore:
			if schema.Score != nil {
				row.score = schema.Score(rec)
			}
		}
		rows[i] = row
	}

	switch key {
	case SortRecency:
		slices.SortStableFunc(rows, compareRecency[T])
	case SortRank:
		slices.SortStableFunc(rows, func(a, b keyed[T]) int {
			return cmp.Compare(b.rank, a.rank)
		})
	case SortScore:
		slices.SortStableFunc(rows, func(a, b keyed[T]) int {
			return b.score.Cmp(a.score)
		})
	}

	out := make([]T, len(rows))
	for i, row := range rows {
		out[i] = row.rec
	}
	return out
}

// compareRecency orders newest first; unreadable timestamps go last.
func compareRecency[T any](a, b keyed[T]) int {
	switch {
	case a.valid && !b.valid:
		return -1
	case !a.valid && b.valid:
		return 1
	case !a.valid && !b.valid:
		return 0
	}
	return b.ts.Compare(a.ts)
}
