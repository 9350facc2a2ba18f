package filter

import (
	"strings"
	"time"
)

// Predicate reports whether a record satisfies one criterion.
type Predicate[T any] func(T) bool

// All is the predicate that admits every record.
func All[T any](T) bool { return true }

// None is the predicate that admits no record.
func None[T any](T) bool { return false }

// DateRangeCriterion admits records whose timestamp lies in r, both bounds
// inclusive. A record whose timestamp cannot be read is rejected and passed
// to onError (which may be nil). An inverted range admits nothing.
func DateRangeCriterion[T any](r DateRange, timestamp func(T) (time.Time, error), onError func(T, error)) Predicate[T] {
	if r.IsZero() {
		return All[T]
	}
	if r.Inverted() {
		return None[T]
	}
	return func(rec T) bool {
		t, err := timestamp(rec)
		if err != nil {
			if onError != nil {
				onError(rec, err)
			}
			return false
		}
		return r.Contains(t)
	}
}

// SetCriterion admits records whose field value is one of values.
// An empty set is a wildcard and admits every record.
func SetCriterion[T any](values []string, field func(T) string) Predicate[T] {
	if len(values) == 0 {
		return All[T]
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return func(rec T) bool {
		_, ok := set[field(rec)]
		return ok
	}
}

// EqualCriterion admits records whose field equals value exactly.
// An empty value admits every record.
func EqualCriterion[T any](value string, field func(T) string) Predicate[T] {
	if value == "" {
		return All[T]
	}
	return func(rec T) bool {
		return field(rec) == value
	}
}

// SearchCriterion admits records where text is a case-insensitive substring
// of at least one of fields. Empty text admits every record.
func SearchCriterion[T any](text string, fields ...func(T) string) Predicate[T] {
	if text == "" {
		return All[T]
	}
	needle := strings.ToLower(text)
	return func(rec T) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(rec)), needle) {
				return true
			}
		}
		return false
	}
}
