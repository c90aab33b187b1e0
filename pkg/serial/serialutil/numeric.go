// Package serialutil holds the utility extensions spec.md §4.G describes:
// primitive widening, a fixed-capacity raw-array adapter, and a dynamic-
// sequence adapter, plus the byte-width conveniences that let int8/uint8/
// int16/uint16 fields ride the wire's four primitive types.
package serialutil

import "github.com/lk2023060901/gosave/pkg/serial"

// Numeric is a tagged union over the wire's three numeric primitives,
// grounded on original_source's Numeric struct and its operator>>
// conversions. Widen constructs one from whatever the decoder actually
// found on disk and converts it to whatever the reader asked for.
type Numeric struct {
	typ   serial.ValueType
	i     int32
	u     uint32
	f     float32
	boo   bool
}

func NumericInt(v int32) Numeric    { return Numeric{typ: serial.TypeInt, i: v} }
func NumericUint(v uint32) Numeric  { return Numeric{typ: serial.TypeUint, u: v} }
func NumericFloat(v float32) Numeric { return Numeric{typ: serial.TypeFloat, f: v} }
func NumericBool(v bool) Numeric    { return Numeric{typ: serial.TypeBool, boo: v} }

// AsInt32 converts the numeric to int32 per the widening table: numeric ->
// numeric is a cast, bool -> numeric is 0/1.
func (n Numeric) AsInt32() int32 {
	switch n.typ {
	case serial.TypeInt:
		return n.i
	case serial.TypeUint:
		return int32(n.u)
	case serial.TypeFloat:
		return int32(n.f)
	case serial.TypeBool:
		if n.boo {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (n Numeric) AsUint32() uint32 {
	switch n.typ {
	case serial.TypeInt:
		return uint32(n.i)
	case serial.TypeUint:
		return n.u
	case serial.TypeFloat:
		return uint32(n.f)
	case serial.TypeBool:
		if n.boo {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (n Numeric) AsFloat32() float32 {
	switch n.typ {
	case serial.TypeInt:
		return float32(n.i)
	case serial.TypeUint:
		return float32(n.u)
	case serial.TypeFloat:
		return n.f
	case serial.TypeBool:
		if n.boo {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AsBool converts per "any numeric -> bool: zero <-> false, non-zero <->
// true".
func (n Numeric) AsBool() bool {
	switch n.typ {
	case serial.TypeInt:
		return n.i != 0
	case serial.TypeUint:
		return n.u != 0
	case serial.TypeFloat:
		return n.f != 0
	case serial.TypeBool:
		return n.boo
	default:
		return false
	}
}

// Widen converts a decoded Numeric to the target ValueType, covering all
// 16 (source, target) pairs across {Int,UInt,Float,Bool}. It reports
// ok=false for a target type outside that set (e.g. String, Object), in
// which case the caller must leave the destination slot untouched per
// spec.md §7 ("no conversion available -> slot untouched").
func Widen(n Numeric, target serial.ValueType) (Numeric, bool) {
	switch target {
	case serial.TypeInt:
		return NumericInt(n.AsInt32()), true
	case serial.TypeUint:
		return NumericUint(n.AsUint32()), true
	case serial.TypeFloat:
		return NumericFloat(n.AsFloat32()), true
	case serial.TypeBool:
		return NumericBool(n.AsBool()), true
	default:
		return Numeric{}, false
	}
}
