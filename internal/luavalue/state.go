package luavalue

import (
	"math"

	"github.com/Shopify/go-lua"
)

// FromState captures the value at the given stack index as a Value. It
// is total over every runtime type: kinds without a dedicated variant
// are classified as function, userdata, or thread with the raw tag
// preserved. The stack is left unchanged.
func FromState(l *lua.State, index int) Value {
	raw := l.TypeOf(index)
	switch raw {
	case lua.TypeNil, lua.TypeNone:
		return Value{}
	case lua.TypeBoolean:
		return Boolean(l.ToBoolean(index))
	case lua.TypeNumber:
		n, _ := l.ToNumber(index)
		return number(n)
	case lua.TypeString:
		s, _ := l.ToString(index)
		return Text(s)
	case lua.TypeTable:
		return tableValue(l, index)
	case lua.TypeUserData, lua.TypeLightUserData:
		return Value{kind: KindUserData, ref: l.ToUserData(index), raw: raw}
	case lua.TypeFunction:
		return Value{kind: KindFunction, raw: raw}
	case lua.TypeThread:
		return Value{kind: KindThread, raw: raw}
	default:
		return Value{kind: KindUserData, raw: raw}
	}
}

// number hides the runtime's numeric encoding: integral numbers become
// integers, everything else stays a float. The upper bound is exclusive
// of 2^63: float64(math.MaxInt64) rounds up to exactly 2^63, which does
// not fit in int64 and would flip sign on conversion.
func number(n float64) Value {
	if !math.IsInf(n, 0) && !math.IsNaN(n) && math.Mod(n, 1) == 0 &&
		n >= math.Ldexp(-1, 63) && n < math.Ldexp(1, 63) {
		return Integer(int64(n))
	}
	return Float(n)
}

// tableValue classifies a table as an array when its keys form a dense
// 1..n sequence, otherwise as a hash of its string-keyed entries.
func tableValue(l *lua.State, index int) Value {
	index = l.AbsIndex(index)

	isArray := true
	maxIndex := 0
	count := 0
	l.PushNil()
	for l.Next(index) {
		if isArray {
			if l.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := l.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		l.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		items := make([]Value, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			l.RawGetInt(index, i)
			items = append(items, FromState(l, -1))
			l.Pop(1)
		}
		return NewArray(items...)
	}

	entries := map[string]Value{}
	l.PushNil()
	for l.Next(index) {
		if l.TypeOf(-2) == lua.TypeString {
			key, _ := l.ToString(-2)
			entries[key] = FromState(l, -1)
		}
		l.Pop(1)
	}
	return NewHash(entries)
}

// Push constructs the value on top of the stack through the runtime's
// own allocation path. Construction never fails; kinds the runtime
// cannot represent from Go (functions, threads) push nil.
func Push(l *lua.State, v Value) {
	switch v.kind {
	case KindNil:
		l.PushNil()
	case KindTrue:
		l.PushBoolean(true)
	case KindFalse:
		l.PushBoolean(false)
	case KindInteger:
		// int is 32-bit on some platforms; payloads outside its range
		// go through the runtime's float encoding instead of truncating.
		if int64(int(v.integer)) == v.integer {
			l.PushInteger(int(v.integer))
		} else {
			l.PushNumber(float64(v.integer))
		}
	case KindFloat:
		l.PushNumber(v.float)
	case KindString, KindSymbol:
		l.PushString(v.text)
	case KindArray:
		l.NewTable()
		for i, item := range v.items {
			Push(l, item)
			l.RawSetInt(-2, i+1)
		}
	case KindHash:
		l.NewTable()
		for key, entry := range v.entries {
			Push(l, entry)
			l.SetField(-2, key)
		}
	case KindUserData:
		l.PushUserData(v.ref)
	default:
		l.PushNil()
	}
}
