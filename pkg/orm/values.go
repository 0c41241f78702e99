package orm

import (
	"fmt"
	"reflect"

	"github.com/leapstack-labs/leaporm/pkg/core"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
)

// entityValue returns the addressable struct behind entity.
func entityValue[T any](m *mapping.EntityMapping, entity *T) (reflect.Value, error) {
	if entity == nil {
		return reflect.Value{}, fmt.Errorf("orm: nil %s entity", m.Name())
	}
	v := reflect.ValueOf(entity).Elem()
	if m.Type() != v.Type() {
		return reflect.Value{}, core.Configf(m.Name(), "mapping is bound to %v, not %v", m.Type(), v.Type())
	}
	return v, nil
}

// field returns the struct field backing p. Embedded pointers are allocated
// when alloc is set; otherwise a nil embedded pointer yields an invalid value.
func field(v reflect.Value, m *mapping.EntityMapping, p mapping.PropertyMapping, alloc bool) (reflect.Value, error) {
	if len(p.Index) == 0 {
		return reflect.Value{}, core.Configf(m.Name(), "property %s has no struct field", p.Name)
	}
	for i, x := range p.Index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !alloc {
					return reflect.Value{}, nil
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, nil
}

// values collects the current value of every named property.
func values(v reflect.Value, m *mapping.EntityMapping, names []string) (map[string]any, error) {
	out := make(map[string]any, len(names))
	for _, name := range names {
		if _, seen := out[name]; seen {
			continue
		}
		p, ok := m.Property(name)
		if !ok {
			return nil, core.Configf(m.Name(), "property %s does not exist", name)
		}
		f, err := field(v, m, p, false)
		if err != nil {
			return nil, err
		}
		if f.IsValid() {
			out[name] = f.Interface()
		} else {
			out[name] = nil
		}
	}
	return out, nil
}

// keyTargets returns scan destinations for every key field in declaration order.
func keyTargets(v reflect.Value, m *mapping.EntityMapping) ([]any, error) {
	keys := m.Keys()
	dst := make([]any, len(keys))
	for i, k := range keys {
		f, err := field(v, m, k, true)
		if err != nil {
			return nil, err
		}
		dst[i] = f.Addr().Interface()
	}
	return dst, nil
}
