// Package filter implements multi-criteria filtering and ordering over
// homogeneous record collections.
//
// Records are reached only through a Schema of field accessors, so the same
// engine serves news items, alerts and signals. Every operation is pure: input
// slices are never mutated and a fresh slice is always returned.
package filter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SortKey selects the comparator used by the Sort Engine.
type SortKey string

const (
	SortRecency SortKey = "recency" // Timestamp, newest first
	SortRank    SortKey = "rank"    // RankMap value, highest first
	SortScore   SortKey = "score"   // Schema.Score, highest first
)

// DefaultSortKey is used when Config.SortKey is empty.
const DefaultSortKey = SortRecency

// ParseSortKey converts user input into a SortKey.
// Empty input yields DefaultSortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultSortKey, nil
	case "recency", "date", "newest":
		return SortRecency, nil
	case "rank", "priority", "severity", "relevance":
		return SortRank, nil
	case "score":
		return SortScore, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// RankMap maps categorical values to integer ranks. Higher sorts first.
// Values missing from the map rank as 0.
type RankMap map[string]int

// Rank returns the rank of v, or 0 when v is not in the map.
func (m RankMap) Rank(v string) int {
	return m[v]
}

// DateRange is an inclusive interval. A nil bound is unbounded on that side.
type DateRange struct {
	Start *time.Time `json:"start,omitempty"`
	End   *time.Time `json:"end,omitempty"`
}

// IsZero reports whether both bounds are open.
func (r DateRange) IsZero() bool {
	return r.Start == nil && r.End == nil
}

// Inverted reports whether Start is after End. No instant satisfies an
// inverted range.
func (r DateRange) Inverted() bool {
	return r.Start != nil && r.End != nil && r.Start.After(*r.End)
}

// Contains reports whether t lies within the range, bounds inclusive.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start != nil && t.Before(*r.Start) {
		return false
	}
	if r.End != nil && t.After(*r.End) {
		return false
	}
	return true
}

// Config is a single filtering request. It is built by the caller for each
// call and carries no identity of its own.
type Config struct {
	DateRange DateRange `json:"dateRange"`

	// Selected holds the accepted values per dimension.
	// An empty list places no constraint on that dimension.
	Selected map[string][]string `json:"selected,omitempty"`

	// Equals holds an exact, case-sensitive value per dimension.
	// An empty value places no constraint on that dimension.
	Equals map[string]string `json:"equals,omitempty"`

	// SearchText is matched case-insensitively as a substring of any search field.
	SearchText string `json:"searchText,omitempty"`

	// SearchIn restricts search to the named fields. Empty means all fields.
	SearchIn []string `json:"searchIn,omitempty"`

	// Expression is an optional CEL predicate evaluated against each record.
	Expression string `json:"expression,omitempty"`

	SortKey SortKey `json:"sortKey,omitempty"`
}

// Select returns a copy of c with dimension constrained to values.
func (c Config) Select(dimension string, values ...string) Config {
	selected := make(map[string][]string, len(c.Selected)+1)
	for k, v := range c.Selected {
		selected[k] = v
	}
	selected[dimension] = values
	c.Selected = selected
	return c
}

// Equal returns a copy of c with dimension required to equal value.
func (c Config) Equal(dimension, value string) Config {
	equals := make(map[string]string, len(c.Equals)+1)
	for k, v := range c.Equals {
		equals[k] = v
	}
	equals[dimension] = value
	c.Equals = equals
	return c
}

// Fingerprint returns a stable string identifying the configuration.
// Two configs with equal fingerprints produce identical results.
func (c Config) Fingerprint() string {
	if c.SortKey == "" {
		c.SortKey = DefaultSortKey
	}
	// encoding/json writes map keys in sorted order.
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return string(b)
}

// Dimension is a named categorical field.
type Dimension[T any] struct {
	Name  string
	Value func(T) string
}

// Schema describes how the engine reads a record type.
type Schema[T any] struct {
	// ID identifies a record in diagnostics. Required.
	ID func(T) string

	// Timestamp returns the record's point in time. Required.
	// An error marks the record's date as malformed.
	Timestamp func(T) (time.Time, error)

	Dimensions   []Dimension[T]
	SearchFields []Dimension[T]

	// RankBy names the dimension ranked through Rank.
	RankBy string
	Rank   RankMap

	// Score is optional; it is required only for SortScore.
	Score func(T) decimal.Decimal
}

func (s Schema[T]) dimension(name string) (Dimension[T], bool) {
	for _, d := range s.Dimensions {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension[T]{}, false
}

func (s Schema[T]) searchField(name string) (Dimension[T], bool) {
	for _, d := range s.SearchFields {
		if d.Name == name {
			return d, true
		}
	}
	return Dimension[T]{}, false
}

func (s Schema[T]) rankOf(rec T) int {
	d, ok := s.dimension(s.RankBy)
	if !ok {
		return 0
	}
	return s.Rank.Rank(d.Value(rec))
}

func (s Schema[T]) validate() error {
	if s.ID == nil {
		return fmt.Errorf("schema: id accessor is required")
	}
	if s.Timestamp == nil {
		return fmt.Errorf("schema: timestamp accessor is required")
	}
	seen := make(map[string]struct{}, len(s.Dimensions))
	for _, d := range s.Dimensions {
		if d.Name == "" || d.Value == nil {
			return fmt.Errorf("schema: dimension needs a name and an accessor")
		}
		if _, dup := seen[d.Name]; dup {
			return fmt.Errorf("schema: duplicate dimension %q", d.Name)
		}
		seen[d.Name] = struct{}{}
	}
	for _, f := range s.SearchFields {
		if f.Name == "" || f.Value == nil {
			return fmt.Errorf("schema: search field needs a name and an accessor")
		}
	}
	if s.RankBy != "" {
		if _, ok := seen[s.RankBy]; !ok {
			return fmt.Errorf("schema: rank dimension %q is not declared", s.RankBy)
		}
	}
	return nil
}

// DateLayouts are the formats accepted by ParseDate, tried in order.
var DateLayouts = []string{
	time.RFC3339Nano,
	time.DateTime,
	time.DateOnly,
}

// ParseDate parses a record or query date. Date-only values are UTC midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
