package filter

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned by Engine.Apply when the configuration itself
// is unusable: an unknown dimension, search field or sort key, or an
// expression that does not compile.
var ErrInvalidConfig = errors.New("invalid filter configuration")

// ErrMalformedTimestamp marks a record whose timestamp could not be read.
var ErrMalformedTimestamp = errors.New("malformed timestamp")

// ErrExpression marks a record on which the expression could not be evaluated.
var ErrExpression = errors.New("expression evaluation failed")

// Diagnostic is a data-quality problem found on a single record.
// A record with a diagnostic is never admitted by the criterion that raised it.
type Diagnostic struct {
	RecordID string `json:"recordId"`
	Field    string `json:"field"`
	Err      error  `json:"-"`
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("record %s: %s: %v", d.RecordID, d.Field, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

// Message is the human-readable cause, for JSON responses.
func (d Diagnostic) Message() string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Sink collects diagnostics during one Apply. The zero value is ready to use.
// Each (record, field) pair is reported once.
type Sink struct {
	items []Diagnostic
	seen  map[string]struct{}
}

// Report records a diagnostic unless the same record and field were
// already reported.
func (s *Sink) Report(recordID, field string, err error) {
	if s == nil {
		return
	}
	key := recordID + "\x00" + field
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	if _, dup := s.seen[key]; dup {
		return
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, Diagnostic{RecordID: recordID, Field: field, Err: err})
}

// Diagnostics returns the collected diagnostics in report order.
func (s *Sink) Diagnostics() []Diagnostic {
	if s == nil || len(s.items) == 0 {
		return nil
	}
	out := make([]Diagnostic, len(s.items))
	copy(out, s.items)
	return out
}
