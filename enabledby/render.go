package enabledby

import "strings"

// Notation maps symbols and operators to a target expression language.
type Notation interface {
	Symbol(name string) string
	Literal(value bool) string
	And() string
	Or() string
	Not(operand string) string
}

// CPreprocessor renders expressions for #if directives, e.g.
// "defined(A) && !defined(B)".
var CPreprocessor Notation = cNotation{}

// Python renders expressions as Python boolean expressions, e.g.
// "A and not B".
var Python Notation = pythonNotation{}

type cNotation struct{}

func (cNotation) Symbol(name string) string { return "defined(" + name + ")" }
func (cNotation) And() string               { return " && " }
func (cNotation) Or() string                { return " || " }
func (cNotation) Not(operand string) string { return "!" + operand }
func (cNotation) Literal(value bool) string {
	if value {
		return "1"
	}
	return "0"
}

type pythonNotation struct{}

func (pythonNotation) Symbol(name string) string { return name }
func (pythonNotation) And() string               { return " and " }
func (pythonNotation) Or() string                { return " or " }
func (pythonNotation) Not(operand string) string { return "not " + operand }
func (pythonNotation) Literal(value bool) string {
	if value {
		return "True"
	}
	return "False"
}

// Render returns the expression in the given notation. Compound operands are
// parenthesised; the outermost pair is dropped.
func Render(e Expr, n Notation) string {
	return stripOuterParens(render(e, n))
}

func render(e Expr, n Notation) string {
	switch v := e.(type) {
	case Literal:
		return n.Literal(bool(v))
	case Symbol:
		return n.Symbol(string(v))
	case And:
		return renderOp([]Expr(v), n, n.And(), true)
	case Or:
		return renderOp([]Expr(v), n, n.Or(), false)
	case Not:
		return n.Not(render(v.X, n))
	}
	return ""
}

func renderOp(operands []Expr, n Notation, op string, empty bool) string {
	switch len(operands) {
	case 0:
		return n.Literal(empty)
	case 1:
		return render(operands[0], n)
	}
	parts := make([]string, len(operands))
	for i, x := range operands {
		parts[i] = render(x, n)
	}
	return "(" + strings.Join(parts, op) + ")"
}

// stripOuterParens removes a parenthesis pair enclosing the whole string.
// "(A) && (B)" is left untouched.
func stripOuterParens(s string) string {
	if len(s) < 2 || s[0] != '(' || s[len(s)-1] != ')' {
		return s
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return s
			}
		}
	}
	return s[1 : len(s)-1]
}
