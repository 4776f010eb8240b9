// Package value defines the abstract Value Capability that the core engine
// uses to manipulate caller-owned JSON-shaped values. The engine never
// reaches inside a Value handle directly; every operation goes through the
// Capability interface supplied by the caller.
package value

// Type is the tag identifying the shape of a Value.
type Type int

const (
	Null Type = iota
	Bool
	Number
	String
	Array
	Object
)

// String returns the lower-case name of the type tag, as used by the
// expression-language `type()` method.
func (t Type) String() string {
	switch t {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an opaque handle to a caller-owned JSON-shaped value. The core
// never inspects it; every operation is routed through a Capability.
type Value interface{}

// Capability is the vtable through which the engine manipulates Values. It is
// the idiomatic Go shape of the abstract "record of function pointers" the
// spec describes: an interface plays the role of a caller-supplied vtable.
//
// All constructors and Clone return freshly owned Values the caller
// (evaluator/renderer) must either place into a container via Append or
// release via Free. Free is retained for parity with capabilities backed by
// non-GC'd storage; the reference jsonvalue implementation's Free is a no-op.
type Capability interface {
	// Parse decodes a JSON string into a freshly owned Value.
	Parse(json string) (Value, error)
	// Print serializes v to a JSON string. Does not consume v.
	Print(v Value) (string, error)
	// Free releases a Value that is no longer needed.
	Free(v Value)
	// Clone returns a freshly owned deep copy of v.
	Clone(v Value) Value

	// NewNull, NewBool, NewNumber, NewString construct fresh primitive values.
	NewNull() Value
	NewBool(b bool) Value
	NewNumber(n float64) Value
	NewString(s string) Value
	// NewArray and NewObject construct fresh, empty containers.
	NewArray() Value
	NewObject() Value

	// TypeOf returns v's type tag.
	TypeOf(v Value) Type
	// AsBool, AsNumber, AsString extract the primitive payload. Behaviour is
	// undefined if v is not of the matching type; callers must check TypeOf
	// first.
	AsBool(v Value) bool
	AsNumber(v Value) float64
	AsString(v Value) string

	// Len returns string byte length / array element count / object key
	// count. Undefined for other types.
	Len(v Value) int

	// GetIndex returns the i'th element of an array, or the i'th byte (as a
	// 1-length string) of a string. ok is false when i is out of range.
	GetIndex(v Value, i int) (Value, bool)
	// GetKey returns the value stored at key in an object. ok is false when
	// the key is absent.
	GetKey(v Value, key string) (Value, bool)
	// Keys returns the ordered keys of an object.
	Keys(v Value) []string

	// Append pushes elem onto an array (ownership of elem transfers to the
	// container) and returns the (possibly same) container handle.
	Append(array, elem Value) Value
	// Set stores value at key in an object (ownership of value transfers)
	// and returns the (possibly same) container handle.
	Set(object Value, key string, val Value) Value

	// Equal compares two scalar values of matching type for equality.
	// Arrays and objects are defined to compare unequal unless they are the
	// identical handle (see DESIGN.md: "array/object equality" open
	// question resolution — reference/identity equality only).
	Equal(a, b Value) bool
}

// Truthy implements the expression language's truthiness rule (§4.D):
// null → false; bool → itself; number → nonzero; string → nonempty;
// array/object → nonzero length.
func Truthy(cap Capability, v Value) bool {
	switch cap.TypeOf(v) {
	case Null:
		return false
	case Bool:
		return cap.AsBool(v)
	case Number:
		return cap.AsNumber(v) != 0
	case String:
		return cap.Len(v) > 0
	case Array, Object:
		return cap.Len(v) > 0
	default:
		return false
	}
}
