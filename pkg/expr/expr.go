// Package expr defines the filter AST that query translation walks.
//
// Filters are built from constructors rather than host-language lambdas:
//
//	expr.And(
//		expr.Eq(expr.Prop("Id"), expr.Val(5)),
//		expr.Ge(expr.Prop("Age"), expr.Val(18)),
//	)
//
// The AST also represents constructs the SQL translator rejects (negation,
// calls, nested members); translating them fails with an error naming the
// construct.
package expr

import (
	"fmt"
	"strings"
)

// Expr is a node of a filter expression.
type Expr interface {
	fmt.Stringer
	node()
}

// Member references a property. Path has more than one element for nested
// access such as Customer.Name.
type Member struct {
	Path []string
}

// Constant is a literal or captured value.
type Constant struct {
	Value any
}

// Op is a comparison operator.
type Op int

// Comparison operators.
const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// Valid reports whether o is one of the declared comparison operators.
func (o Op) Valid() bool {
	return o >= OpEq && o <= OpGe
}

// String returns the SQL spelling of the operator.
func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	default:
		return "?"
	}
}

// Flip returns the operator that holds with the operands swapped.
func (o Op) Flip() Op {
	switch o {
	case OpLt:
		return OpGt
	case OpLe:
		return OpGe
	case OpGt:
		return OpLt
	case OpGe:
		return OpLe
	default:
		return o
	}
}

// Compare is a binary comparison.
type Compare struct {
	Op          Op
	Left, Right Expr
}

// Connective is AND or OR.
type Connective int

// Connectives.
const (
	ConnAnd Connective = iota
	ConnOr
)

// Valid reports whether c is AND or OR.
func (c Connective) Valid() bool {
	return c == ConnAnd || c == ConnOr
}

// String returns the SQL keyword.
func (c Connective) String() string {
	if c == ConnOr {
		return "OR"
	}
	return "AND"
}

// Logical combines two boolean operands.
type Logical struct {
	Conn        Connective
	Left, Right Expr
}

// Negation is a logical NOT.
type Negation struct {
	Operand Expr
}

// Call is a method or function invocation. Target is nil for free functions.
type Call struct {
	Method string
	Target Expr
	Args   []Expr
}

func (*Member) node()   {}
func (*Constant) node() {}
func (*Compare) node()  {}
func (*Logical) node()  {}
func (*Negation) node() {}
func (*Call) node()     {}

func (m *Member) String() string { return strings.Join(m.Path, ".") }

func (c *Constant) String() string {
	switch v := c.Value.(type) {
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case nil:
		return "NULL"
	default:
		return fmt.Sprint(v)
	}
}

func (c *Compare) String() string {
	return "(" + c.Left.String() + " " + c.Op.String() + " " + c.Right.String() + ")"
}

func (l *Logical) String() string {
	return "(" + l.Left.String() + " " + l.Conn.String() + " " + l.Right.String() + ")"
}

func (n *Negation) String() string { return "NOT " + n.Operand.String() }

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	name := c.Method
	if c.Target != nil {
		name = c.Target.String() + "." + name
	}
	return name + "(" + strings.Join(args, ", ") + ")"
}

// Prop references a property; dots denote nested access.
func Prop(path string) Expr {
	return &Member{Path: strings.Split(path, ".")}
}

// Val wraps a value.
func Val(v any) Expr {
	return &Constant{Value: v}
}

// Cmp builds a comparison.
func Cmp(op Op, left, right Expr) Expr {
	return &Compare{Op: op, Left: left, Right: right}
}

// Eq builds left = right.
func Eq(left, right Expr) Expr { return Cmp(OpEq, left, right) }

// Ne builds left <> right.
func Ne(left, right Expr) Expr { return Cmp(OpNe, left, right) }

// Lt builds left < right.
func Lt(left, right Expr) Expr { return Cmp(OpLt, left, right) }

// Le builds left <= right.
func Le(left, right Expr) Expr { return Cmp(OpLe, left, right) }

// Gt builds left > right.
func Gt(left, right Expr) Expr { return Cmp(OpGt, left, right) }

// Ge builds left >= right.
func Ge(left, right Expr) Expr { return Cmp(OpGe, left, right) }

// And builds left AND right. Extra operands fold to the left:
// And(a, b, c) is ((a AND b) AND c).
func And(left, right Expr, more ...Expr) Expr {
	return fold(ConnAnd, left, right, more)
}

// Or builds left OR right, folding extra operands to the left.
func Or(left, right Expr, more ...Expr) Expr {
	return fold(ConnOr, left, right, more)
}

func fold(conn Connective, left, right Expr, more []Expr) Expr {
	out := &Logical{Conn: conn, Left: left, Right: right}
	for _, e := range more {
		out = &Logical{Conn: conn, Left: out, Right: e}
	}
	return out
}

// Not builds NOT operand.
func Not(operand Expr) Expr { return &Negation{Operand: operand} }

// Invoke builds target.method(args...). A nil target is a free function.
func Invoke(target Expr, method string, args ...Expr) Expr {
	return &Call{Method: method, Target: target, Args: args}
}
