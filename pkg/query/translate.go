// Package query translates filter expressions and projections into SQL
// fragments and assembles SELECT statements from them.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/dialect"
	"github.com/leapstack-labs/leaporm/pkg/expr"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
)

// Predicate is a translated filter.
type Predicate struct {
	SQL string
	// Params maps placeholder names (p0, p1, ...) to their values.
	Params map[string]any
	// Order lists placeholder names in the order they appear in SQL.
	Order []string
}

// Args returns the driver arguments for the predicate in dialect form.
func (p Predicate) Args(d dialect.Dialect) []any {
	return d.BindArgs(p.Order, p.Params)
}

// Option configures a translation.
type Option func(*translator)

// Properties declares the known property set when no mapping is given.
// Members resolve to a column of the same name.
func Properties(names ...string) Option {
	return func(t *translator) {
		t.known = make(map[string]bool, len(names))
		for _, n := range names {
			t.known[n] = true
		}
	}
}

// Translate renders filter as a fully parenthesized predicate.
//
// Placeholders are named p0, p1, ... in left-to-right order, restarting at
// p0 on every call. Only comparisons between a property and a constant and
// AND/OR of supported operands are accepted; anything else fails the whole
// call with a *core.TranslationError and no partial SQL.
func Translate(m *mapping.EntityMapping, d dialect.Dialect, filter expr.Expr, opts ...Option) (Predicate, error) {
	if d == nil {
		return Predicate{}, core.Configf("", "predicate translation requires a dialect: %v", dialect.ErrDialectRequired)
	}
	t := &translator{m: m, d: d, params: make(map[string]any)}
	for _, opt := range opts {
		opt(t)
	}
	sql, err := t.visit(filter)
	if err != nil {
		return Predicate{}, err
	}
	return Predicate{SQL: sql, Params: t.params, Order: t.order}, nil
}

type translator struct {
	m      *mapping.EntityMapping
	d      dialect.Dialect
	known  map[string]bool
	params map[string]any
	order  []string
}

func unsupported(construct, reason string) error {
	return &core.TranslationError{Construct: construct, Reason: reason}
}

func (t *translator) visit(e expr.Expr) (string, error) {
	switch n := e.(type) {
	case *expr.Logical:
		if !n.Conn.Valid() {
			return "", unsupported("Logical(conn "+strconv.Itoa(int(n.Conn))+")", "unsupported logical connective")
		}
		left, err := t.visit(n.Left)
		if err != nil {
			return "", err
		}
		right, err := t.visit(n.Right)
		if err != nil {
			return "", err
		}
		return "(" + left + " " + n.Conn.String() + " " + right + ")", nil
	case *expr.Compare:
		return t.visitCompare(n)
	case *expr.Negation:
		return "", unsupported("Not", "logical negation is not supported")
	case *expr.Call:
		return "", unsupported("Call("+n.Method+")", "method calls are not supported")
	case *expr.Member:
		return "", unsupported("Member("+n.String()+")", "a bare member is not a predicate")
	case *expr.Constant:
		return "", unsupported("Constant("+n.String()+")", "a bare constant is not a predicate")
	case nil:
		return "", unsupported("nil", "empty filter")
	default:
		return "", unsupported(fmt.Sprintf("%T", e), "")
	}
}

func (t *translator) visitCompare(c *expr.Compare) (string, error) {
	op := c.Op
	if !op.Valid() {
		return "", unsupported("Compare(op "+strconv.Itoa(int(op))+")", "unsupported comparison operator")
	}
	member, mok := c.Left.(*expr.Member)
	constant, cok := c.Right.(*expr.Constant)
	if !mok && !cok {
		// constant on the left: flip so the column stays on the left
		if lc, ok := c.Left.(*expr.Constant); ok {
			if rm, ok := c.Right.(*expr.Member); ok {
				member, constant, op = rm, lc, op.Flip()
				mok, cok = true, true
			}
		}
	}

	switch {
	case mok && cok:
	case mok:
		if _, ok := c.Right.(*expr.Member); ok {
			return "", unsupported("Compare(member "+op.String()+" member)", "both operands are properties")
		}
		return "", t.operandError(c.Right)
	case cok:
		if _, ok := c.Left.(*expr.Constant); ok {
			return "", unsupported("Compare(constant "+op.String()+" constant)", "no property operand")
		}
		return "", t.operandError(c.Left)
	default:
		return "", t.operandError(c.Left)
	}

	column, err := t.column(member)
	if err != nil {
		return "", err
	}
	if constant.Value == nil {
		return "", unsupported("Compare("+member.String()+" "+op.String()+" NULL)", "null comparisons are not supported")
	}

	name := fmt.Sprintf("p%d", len(t.order))
	t.params[name] = constant.Value
	t.order = append(t.order, name)
	return "(" + t.d.FormatColumn(column) + " " + op.String() + " " + t.d.FormatParameter(name) + ")", nil
}

// operandError reports why e cannot be a comparison operand.
func (t *translator) operandError(e expr.Expr) error {
	if m, ok := e.(*expr.Member); ok {
		_, err := t.column(m)
		return err
	}
	_, err := t.visit(e)
	if err != nil {
		return err
	}
	return unsupported(fmt.Sprintf("%T", e), "not a comparison operand")
}

func (t *translator) column(m *expr.Member) (string, error) {
	name := m.String()
	if len(m.Path) != 1 {
		return "", unsupported("Member("+name+")", "nested member access is not supported")
	}
	return resolveColumn(t.m, t.known, name)
}

func resolveColumn(m *mapping.EntityMapping, known map[string]bool, property string) (string, error) {
	if m != nil {
		col, ok := m.ColumnFor(property)
		if !ok {
			return "", unsupported("Member("+property+")", "unknown property of "+m.Name())
		}
		return col, nil
	}
	if known != nil && !known[property] {
		return "", unsupported("Member("+property+")", "unknown property")
	}
	if strings.TrimSpace(property) == "" {
		return "", unsupported("Member()", "empty property name")
	}
	return property, nil
}
