package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// recordVar is the name under which a record is exposed to expressions.
const recordVar = "record"

// Expr is a compiled CEL predicate, e.g.
//
//	record.priority == "high" && record.journal.startsWith("Financial")
type Expr struct {
	source  string
	program cel.Program
}

// CompileExpr compiles source into a boolean predicate over a record map.
func CompileExpr(source string) (*Expr, error) {
	env, err := cel.NewEnv(
		cel.Variable(recordVar, cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("create expression env: %w", err)
	}

	ast, iss := env.Compile(source)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("compile expression: %w", iss.Err())
	}

	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", out)
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build expression program: %w", err)
	}
	return &Expr{source: source, program: program}, nil
}

// String returns the expression source.
func (e *Expr) String() string {
	return e.source
}

// Eval evaluates the expression against attrs.
func (e *Expr) Eval(attrs map[string]any) (bool, error) {
	out, _, err := e.program.Eval(map[string]any{recordVar: attrs})
	if err != nil {
		return false, err
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression returned %T, want bool", out.Value())
	}
	return b, nil
}

// ExprCriterion admits records for which e evaluates to true. Records on which
// evaluation fails are rejected and passed to onError (which may be nil).
func ExprCriterion[T any](e *Expr, attrs func(T) map[string]any, onError func(T, error)) Predicate[T] {
	if e == nil {
		return All[T]
	}
	return func(rec T) bool {
		ok, err := e.Eval(attrs(rec))
		if err != nil {
			if onError != nil {
				onError(rec, err)
			}
			return false
		}
		return ok
	}
}

// attributes builds the expression view of rec from the schema.
func (s Schema[T]) attributes(rec T) map[string]any {
	attrs := make(map[string]any, len(s.Dimensions)+len(s.SearchFields)+3)
	for _, f := range s.SearchFields {
		attrs[f.Name] = f.Value(rec)
	}
	for _, d := range s.Dimensions {
		attrs[d.Name] = d.Value(rec)
	}
	attrs["id"] = s.ID(rec)
	attrs["rank"] = int64(s.rankOf(rec))
	if s.Score != nil {
		score, _ := s.Score(rec).Float64()
		attrs["score"] = score
	}
	return attrs
}
