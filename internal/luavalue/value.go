// Package luavalue bridges the embedded Lua runtime's tagged values to
// Go. Value is a closed union over the kinds the host cares about, with
// runtime-internal kinds (functions, userdata, threads) classified but
// never special-cased, so no discriminant is lost crossing the bridge.
// All inspection and construction of live runtime values goes through
// FromState and Push; nothing else in the repository depends on how the
// runtime encodes numbers or tables.
package luavalue

import "github.com/Shopify/go-lua"

// Kind is the dynamic value discriminant.
type Kind int

const (
	KindNil Kind = iota
	KindFalse
	KindTrue
	KindInteger
	KindFloat
	KindString
	KindArray
	KindHash
	KindSymbol
	KindFunction
	KindUserData
	KindThread
)

// String returns the kind name used in errors and logs.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindFalse:
		return "false"
	case KindTrue:
		return "true"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindHash:
		return "hash"
	case KindSymbol:
		return "symbol"
	case KindFunction:
		return "function"
	case KindUserData:
		return "userdata"
	case KindThread:
		return "thread"
	default:
		return "unknown"
	}
}

// Value is an immutable snapshot of one dynamic value. The zero Value
// is Nil. Values never alias runtime memory; the runtime's collector
// owns the originals.
type Value struct {
	kind    Kind
	integer int64
	float   float64
	text    string
	items   []Value
	entries map[string]Value
	ref     any
	raw     lua.Type
}

// Kind returns the full discriminant, including runtime-internal kinds.
func (v Value) Kind() Kind { return v.kind }

// RawType returns the runtime's own type tag for values captured from a
// live state. Values constructed in Go report the tag Push would use.
func (v Value) RawType() lua.Type { return v.raw }

func (v Value) IsNil() bool     { return v.kind == KindNil }
func (v Value) IsTrue() bool    { return v.kind == KindTrue }
func (v Value) IsFalse() bool   { return v.kind == KindFalse }
func (v Value) IsInteger() bool { return v.kind == KindInteger }
func (v Value) IsFloat() bool   { return v.kind == KindFloat }
func (v Value) IsString() bool  { return v.kind == KindString }
func (v Value) IsArray() bool   { return v.kind == KindArray }
func (v Value) IsHash() bool    { return v.kind == KindHash }
func (v Value) IsSymbol() bool  { return v.kind == KindSymbol }

// Int returns the integer payload. Defined only when IsInteger holds;
// callers must check the predicate first.
func (v Value) Int() int64 { return v.integer }

// Float returns the float payload. Defined only when IsFloat holds.
func (v Value) Float() float64 { return v.float }

// Text returns the string payload for string and symbol values.
func (v Value) Text() string { return v.text }

// Ref returns the opaque object reference for userdata values.
func (v Value) Ref() any { return v.ref }

// Len returns the element count of an array value, zero otherwise.
func (v Value) Len() int { return len(v.items) }

// Index returns the array element at the zero-based index. Out-of-range
// indexing returns Nil, matching the runtime's own semantics.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.items) {
		return Value{}
	}
	return v.items[i]
}

// Entry returns the hash entry for the given string key, Nil when the
// key is absent or the value is not a hash.
func (v Value) Entry(key string) Value {
	if v.kind != KindHash {
		return Value{}
	}
	return v.entries[key]
}

// Keys returns the hash keys in unspecified order.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.entries))
	for key := range v.entries {
		keys = append(keys, key)
	}
	return keys
}

// Nil returns the nil value.
func Nil() Value { return Value{} }

// True returns the boolean true value.
func True() Value { return Value{kind: KindTrue, raw: lua.TypeBoolean} }

// False returns the boolean false value.
func False() Value { return Value{kind: KindFalse, raw: lua.TypeBoolean} }

// Boolean returns True or False.
func Boolean(b bool) Value {
	if b {
		return True()
	}
	return False()
}

// Integer returns a freshly tagged integer value.
func Integer(i int64) Value {
	return Value{kind: KindInteger, integer: i, raw: lua.TypeNumber}
}

// Float returns a freshly tagged float value.
func Float(f float64) Value {
	return Value{kind: KindFloat, float: f, raw: lua.TypeNumber}
}

// Text returns a freshly tagged string value.
func Text(s string) Value {
	return Value{kind: KindString, text: s, raw: lua.TypeString}
}

// Symbol returns an interned identifier value. The runtime has no
// native symbol type; Push writes it as its string spelling.
func Symbol(s string) Value {
	return Value{kind: KindSymbol, text: s, raw: lua.TypeString}
}

// ObjectRef returns a value wrapping an opaque host object reference.
func ObjectRef(ref any) Value {
	return Value{kind: KindUserData, ref: ref, raw: lua.TypeUserData}
}

// NewArray returns an array value over the given elements.
func NewArray(items ...Value) Value {
	return Value{kind: KindArray, items: items, raw: lua.TypeTable}
}

// NewHash returns a hash value over the given entries.
func NewHash(entries map[string]Value) Value {
	if entries == nil {
		entries = map[string]Value{}
	}
	return Value{kind: KindHash, entries: entries, raw: lua.TypeTable}
}
