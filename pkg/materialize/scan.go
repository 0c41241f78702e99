package materialize

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNotStruct is returned when the scan destination is not a struct type.
var ErrNotStruct = errors.New("materialize: destination must be a struct type")

// colKind classifies the strategy for scanning a result column into a struct field.
type colKind uint8

const (
	ckSink  colKind = iota // column is ignored, scan into sink
	ckPtr                  // field is *T (we use a **T holder)
	ckValue                // direct value field, including sql.Scanner implementations
)

// scanPlan describes how to map each result column to a struct field (immutable).
type scanPlan struct {
	kinds  []colKind
	fPath  [][]int
	ptrIdx []int
	ptrT   []reflect.Type // for ckPtr: the *T field type
}

type planKey struct {
	dstType reflect.Type
	sig     string
}

// Scanner materializes rows into structs through a TypeMapper, caching one
// scan plan per (type, column signature). It is safe for concurrent use.
type Scanner struct {
	mapper TypeMapper
	plans  sync.Map // planKey -> *scanPlan
}

// NewScanner creates a scanner. A nil mapper uses a ColumnAttributeMapper.
func NewScanner(mapper TypeMapper) *Scanner {
	if mapper == nil {
		mapper = &ColumnAttributeMapper{}
	}
	return &Scanner{mapper: mapper}
}

func (s *Scanner) plan(t reflect.Type, cols []string) *scanPlan {
	key := planKey{dstType: t, sig: columnsSignature(cols)}
	if p, ok := s.plans.Load(key); ok {
		return p.(*scanPlan)
	}
	p := &scanPlan{
		kinds: make([]colKind, len(cols)),
		fPath: make([][]int, len(cols)),
		ptrT:  make([]reflect.Type, len(cols)),
	}
	for i, col := range cols {
		mem := s.mapper.FindMember(t, col)
		if mem == nil {
			p.kinds[i] = ckSink
			continue
		}
		p.fPath[i] = mem.Index
		ft := t.FieldByIndex(mem.Index).Type
		if ft.Kind() == reflect.Pointer && !ft.Implements(scannerType) {
			p.kinds[i] = ckPtr
			p.ptrT[i] = ft
			p.ptrIdx = append(p.ptrIdx, i)
			continue
		}
		p.kinds[i] = ckValue
	}
	actual, _ := s.plans.LoadOrStore(key, p)
	return actual.(*scanPlan)
}

var scannerType = reflect.TypeFor[sql.Scanner]()

// rowScanner holds the per-query mutable buffers for one plan.
type rowScanner struct {
	plan    *scanPlan
	targets []any
	sinks   []any
	holders []reflect.Value
}

func newRowScanner(p *scanPlan) *rowScanner {
	n := len(p.kinds)
	rs := &rowScanner{
		plan:    p,
		targets: make([]any, n),
		sinks:   make([]any, n),
		holders: make([]reflect.Value, n),
	}
	for i := range n {
		rs.sinks[i] = new(any)
	}
	for _, i := range p.ptrIdx {
		rs.holders[i] = reflect.New(p.ptrT[i]) // **T
	}
	return rs
}

func (rs *rowScanner) scan(rows *sql.Rows, dst reflect.Value) error {
	for i, kind := range rs.plan.kinds {
		switch kind {
		case ckSink:
			rs.targets[i] = rs.sinks[i]
		case ckValue:
			rs.targets[i] = fieldByIndexAlloc(dst, rs.plan.fPath[i]).Addr().Interface()
		case ckPtr:
			h := rs.holders[i]
			h.Elem().SetZero()
			rs.targets[i] = h.Interface()
		}
	}
	if err := rows.Scan(rs.targets...); err != nil {
		return err
	}
	for _, i := range rs.plan.ptrIdx {
		fieldByIndexAlloc(dst, rs.plan.fPath[i]).Set(rs.holders[i].Elem())
	}
	return nil
}

// ScanAll reads every remaining row into a new T.
// Unmapped columns are read and discarded.
func ScanAll[T any](s *Scanner, rows *sql.Rows) ([]T, error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %s", ErrNotStruct, t)
	}
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	rs := newRowScanner(s.plan(t, cols))

	var out []T
	for rows.Next() {
		var item T
		if err := rs.scan(rows, reflect.ValueOf(&item).Elem()); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ScanOne reads the next row into a T. found is false when no row remains.
func ScanOne[T any](s *Scanner, rows *sql.Rows) (item T, found bool, err error) {
	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Struct {
		return item, false, fmt.Errorf("%w: %s", ErrNotStruct, t)
	}
	cols, err := rows.Columns()
	if err != nil {
		return item, false, err
	}
	if !rows.Next() {
		return item, false, rows.Err()
	}
	rs := newRowScanner(s.plan(t, cols))
	if err := rs.scan(rows, reflect.ValueOf(&item).Elem()); err != nil {
		return item, false, err
	}
	return item, true, nil
}

// ScanInto scans the current row into an existing struct pointed to by dst.
// The caller positions rows with Next.
func (s *Scanner) ScanInto(rows *sql.Rows, dst any) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: %T", ErrNotStruct, dst)
	}
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	return newRowScanner(s.plan(v.Elem().Type(), cols)).scan(rows, v.Elem())
}

// fieldByIndexAlloc walks a struct by index path, allocating intermediate
// pointer nodes on the way (but NOT allocating the leaf pointer itself).
func fieldByIndexAlloc(root reflect.Value, path []int) reflect.Value {
	v := root
	for i, idx := range path {
		f := v.Field(idx)
		if i == len(path)-1 {
			return f
		}
		if f.Kind() == reflect.Pointer {
			if f.IsNil() {
				f.Set(reflect.New(f.Type().Elem()))
			}
			v = f.Elem()
		} else {
			v = f
		}
	}
	return v
}
