// Package enabledby implements the enabled-by expression language: a small
// boolean formula over feature symbols that controls conditional inclusion of
// specification items.
//
// An expression is decoded from the YAML value of an item's enabled-by
// attribute:
//
//	enabled-by: true                          # Literal
//	enabled-by: RTEMS_SMP                     # Symbol
//	enabled-by: [A, B]                        # Or
//	enabled-by: {and: [A, {not: B}]}          # And, Not
//	enabled-by: {or: [A, B]}                  # Or
//
// Parse turns such a value into a typed Expr tree. IsEnabled evaluates the
// tree against an active feature set and Render prints an equivalent
// expression in a target notation.
package enabledby

import (
	"sort"

	"github.com/teranos/specgraph/errors"
)

// Expr is an enabled-by expression. The concrete types are Literal, Symbol,
// And, Or and Not.
type Expr interface {
	isExpr()
}

// Literal is a constant truth value.
type Literal bool

// Symbol is true iff the named feature is active.
type Symbol string

// And is true iff all operands are true. An empty And is true.
type And []Expr

// Or is true iff any operand is true. An empty Or is false.
type Or []Expr

// Not negates its operand.
type Not struct {
	X Expr
}

func (Literal) isExpr() {}
func (Symbol) isExpr()  {}
func (And) isExpr()     {}
func (Or) isExpr()      {}
func (Not) isExpr()     {}

// Operator keys of the mapping form.
const (
	OpAnd = "and"
	OpOr  = "or"
	OpNot = "not"
)

// Parse converts a decoded YAML value into an expression.
func Parse(raw any) (Expr, error) {
	switch v := raw.(type) {
	case bool:
		return Literal(v), nil
	case string:
		return Symbol(v), nil
	case []any:
		return parseList(v, OpOr)
	case map[string]any:
		if len(v) != 1 {
			return nil, errors.Markf(errors.ErrExpression,
				"expression mapping must have exactly one key, got %d", len(v))
		}
		for key, operand := range v {
			return parseOp(key, operand)
		}
	case map[any]any:
		converted := make(map[string]any, len(v))
		for key, operand := range v {
			s, ok := key.(string)
			if !ok {
				return nil, errors.Markf(errors.ErrExpression,
					"expression mapping key %v is not a string", key)
			}
			converted[s] = operand
		}
		return Parse(converted)
	}
	return nil, errors.Markf(errors.ErrExpression,
		"unsupported expression value %v (%T)", raw, raw)
}

func parseOp(key string, operand any) (Expr, error) {
	switch key {
	case OpAnd, OpOr:
		list, ok := operand.([]any)
		if !ok {
			return nil, errors.Markf(errors.ErrExpression,
				"operand of '%s' must be a sequence, got %T", key, operand)
		}
		return parseList(list, key)
	case OpNot:
		x, err := Parse(operand)
		if err != nil {
			return nil, errors.Wrapf(err, "operand of '%s'", key)
		}
		return Not{X: x}, nil
	}
	return nil, errors.Markf(errors.ErrExpression,
		"unknown expression operator '%s' (want and, or, not)", key)
}

func parseList(list []any, op string) (Expr, error) {
	operands := make([]Expr, 0, len(list))
	for i, raw := range list {
		x, err := Parse(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "operand %d of '%s'", i, op)
		}
		operands = append(operands, x)
	}
	if op == OpAnd {
		return And(operands), nil
	}
	return Or(operands), nil
}

// Symbols returns the sorted, distinct symbol names used by the expression.
func Symbols(e Expr) []string {
	seen := make(map[string]struct{})
	collectSymbols(e, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectSymbols(e Expr, seen map[string]struct{}) {
	switch v := e.(type) {
	case Symbol:
		seen[string(v)] = struct{}{}
	case And:
		for _, x := range v {
			collectSymbols(x, seen)
		}
	case Or:
		for _, x := range v {
			collectSymbols(x, seen)
		}
	case Not:
		collectSymbols(v.X, seen)
	}
}
