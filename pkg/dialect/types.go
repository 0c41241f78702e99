package dialect

import (
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leaporm/pkg/core"
)

var (
	timeType = reflect.TypeOf(time.Time{})
	uuidType = reflect.TypeOf(uuid.UUID{})
)

// HostKindOf classifies a host value type for type mapping.
// It unwraps pointers, database/sql Null wrappers (including sql.Null[T])
// and named types, so `type Status int32` classifies as KindInt32.
func HostKindOf(t reflect.Type) (core.HostKind, bool) {
	if t == nil {
		return core.KindInvalid, false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t {
	case timeType:
		return core.KindTime, true
	case uuidType:
		return core.KindUUID, true
	}

	if isNullWrapper(t) {
		return HostKindOf(t.Field(0).Type)
	}

	switch t.Kind() {
	case reflect.Bool:
		return core.KindBool, true
	case reflect.Int8:
		return core.KindInt8, true
	case reflect.Int16:
		return core.KindInt16, true
	case reflect.Int32:
		return core.KindInt32, true
	case reflect.Int, reflect.Int64:
		return core.KindInt64, true
	case reflect.Uint8:
		return core.KindUint8, true
	case reflect.Uint16:
		return core.KindUint16, true
	case reflect.Uint32:
		return core.KindUint32, true
	case reflect.Uint, reflect.Uint64:
		return core.KindUint64, true
	case reflect.Float32:
		return core.KindFloat32, true
	case reflect.Float64:
		return core.KindFloat64, true
	case reflect.String:
		return core.KindString, true
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return core.KindBytes, true
		}
	}
	return core.KindInvalid, false
}

// isNullWrapper reports whether t is one of database/sql's Null structs,
// whose first field carries the value.
func isNullWrapper(t reflect.Type) bool {
	return t.Kind() == reflect.Struct &&
		t.PkgPath() == "database/sql" &&
		strings.HasPrefix(t.Name(), "Null") &&
		t.NumField() == 2
}
