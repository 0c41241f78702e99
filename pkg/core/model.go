package core

// Generation describes where a property's value comes from on insert.
type Generation int

const (
	// GenerationNone means the caller supplies the value.
	GenerationNone Generation = iota
	// GenerationIdentity means the engine assigns the value during insert.
	GenerationIdentity
	// GenerationSequence means the value is drawn from a named sequence before insert.
	GenerationSequence
)

// String returns the string representation of the generation mode.
func (g Generation) String() string {
	switch g {
	case GenerationNone:
		return "none"
	case GenerationIdentity:
		return "identity"
	case GenerationSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Generated reports whether the value is produced by the database.
func (g Generation) Generated() bool {
	return g == GenerationIdentity || g == GenerationSequence
}

// KeyColumn describes one primary key column handed to a dialect's
// returning-id builder. Keys are always passed in declaration order.
type KeyColumn struct {
	Column     string     // Column name as stored in the table
	Property   string     // Property name; also the bound parameter name
	Generation Generation // How the value is produced
	Sequence   string     // Sequence name for GenerationSequence
}

// HostKind is the normalized classification of a host value type,
// after unwrapping pointers, sql.Null* wrappers and named (enum-like) types.
type HostKind int

// HostKind constants.
const (
	KindInvalid HostKind = iota
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindTime
	KindUUID
)

// String returns the string representation of the host kind.
func (k HostKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "int8"
	case KindInt16:
		return "int16"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindUint32:
		return "uint32"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindTime:
		return "time"
	case KindUUID:
		return "uuid"
	default:
		return "invalid"
	}
}

// DbType is a backend parameter/column type name (e.g., "bigint", "uniqueidentifier").
type DbType string
