package filter

import (
	"fmt"
	"slices"
)

// Filter returns the records that satisfy every predicate, in input order.
// With no predicates it returns a copy of records.
func Filter[T any](records []T, predicates ...Predicate[T]) []T {
	out := make([]T, 0, len(records))
next:
	for _, rec := range records {
		for _, p := range predicates {
			if !p(rec) {
				continue next
			}
		}
		out = append(out, rec)
	}
	return out
}

// Result is the output of Engine.Apply.
type Result[T any] struct {
	Items       []T
	Diagnostics []Diagnostic
}

// Engine filters and orders records of one kind.
// It holds no mutable state and is safe for concurrent use.
type Engine[T any] struct {
	schema Schema[T]
}

// NewEngine validates schema and returns an engine for it.
func NewEngine[T any](schema Schema[T]) (*Engine[T], error) {
	if err := schema.validate(); err != nil {
		return nil, err
	}
	return &Engine[T]{schema: schema}, nil
}

// MustEngine is NewEngine that panics on an invalid schema.
// Use only for package-level schemas.
func MustEngine[T any](schema Schema[T]) *Engine[T] {
	e, err := NewEngine(schema)
	if err != nil {
		panic(err)
	}
	return e
}

// Schema returns the engine's schema.
func (e *Engine[T]) Schema() Schema[T] {
	return e.schema
}

// Validate reports configuration errors without touching any records.
func (e *Engine[T]) Validate(cfg Config) error {
	_, err := e.compile(cfg, nil)
	return err
}

// Apply filters records by cfg and orders the survivors by cfg.SortKey.
// The returned error is non-nil only for an invalid configuration; problems
// with individual records are returned as Result.Diagnostics.
func (e *Engine[T]) Apply(records []T, cfg Config) (Result[T], error) {
	var sink Sink
	predicates, err := e.compile(cfg, &sink)
	if err != nil {
		return Result[T]{}, err
	}

	filtered := Filter(records, predicates...)
	sorted := sortRecords(filtered, cfg.SortKey, e.schema, &sink)

	return Result[T]{
		Items:       sorted,
		Diagnostics: sink.Diagnostics(),
	}, nil
}

// compile turns cfg into the list of active predicates.
func (e *Engine[T]) compile(cfg Config, sink *Sink) ([]Predicate[T], error) {
	key := cfg.SortKey
	if key == "" {
		key = DefaultSortKey
	}
	switch key {
	case SortRecency, SortRank:
	case SortScore:
		if e.schema.Score == nil {
			return nil, invalidf("sort key %q is not supported for this record kind", key)
		}
	default:
		return nil, invalidf("unknown sort key %q", key)
	}

	var predicates []Predicate[T]

	if !cfg.DateRange.IsZero() {
		predicates = append(predicates, DateRangeCriterion(cfg.DateRange, e.schema.Timestamp, e.reporter(sink, "timestamp", ErrMalformedTimestamp)))
	}

	// Map iteration order does not matter: the predicates form a conjunction.
	for name, values := range cfg.Selected {
		d, ok := e.schema.dimension(name)
		if !ok {
			return nil, invalidf("unknown filter dimension %q", name)
		}
		if len(values) > 0 {
			predicates = append(predicates, SetCriterion(values, d.Value))
		}
	}

	for name, value := range cfg.Equals {
		d, ok := e.schema.dimension(name)
		if !ok {
			return nil, invalidf("unknown filter dimension %q", name)
		}
		if value != "" {
			predicates = append(predicates, EqualCriterion(value, d.Value))
		}
	}

	if cfg.SearchText != "" {
		fields, err := e.searchFields(cfg.SearchIn)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, SearchCriterion(cfg.SearchText, fields...))
	}

	if cfg.Expression != "" {
		expr, err := CompileExpr(cfg.Expression)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		predicates = append(predicates, ExprCriterion(expr, e.schema.attributes, e.reporter(sink, "expression", ErrExpression)))
	}

	return predicates, nil
}

func (e *Engine[T]) searchFields(names []string) ([]func(T) string, error) {
	if len(names) == 0 {
		fields := make([]func(T) string, 0, len(e.schema.SearchFields))
		for _, f := range e.schema.SearchFields {
			fields = append(fields, f.Value)
		}
		return fields, nil
	}

	fields := make([]func(T) string, 0, len(names))
	for _, name := range slices.Compact(slices.Sorted(slices.Values(names))) {
		f, ok := e.schema.searchField(name)
		if !ok {
			return nil, invalidf("unknown search field %q", name)
		}
		fields = append(fields, f.Value)
	}
	return fields, nil
}

func (e *Engine[T]) reporter(sink *Sink, field string, kind error) func(T, error) {
	if sink == nil {
		return nil
	}
	return func(rec T, err error) {
		sink.Report(e.schema.ID(rec), field, fmt.Errorf("%w: %v", kind, err))
	}
}
