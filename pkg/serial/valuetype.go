package serial

// ValueType enumerates the value kinds the contract and the binary wire
// format distinguish. The numeric values match the binary format's 3-bit
// type tag exactly (spec.md §6): 0=Int, 1=UInt, 2=Float, 3=Bool,
// 4=String, 5=Object, 6=Array, 7=Null.
type ValueType uint8

const (
	TypeInt ValueType = iota
	TypeUint
	TypeFloat
	TypeBool
	TypeString
	TypeObject
	TypeArray
	TypeNull
)

var valueTypeName = [...]string{
	TypeInt:    "int",
	TypeUint:   "uint",
	TypeFloat:  "float",
	TypeBool:   "bool",
	TypeString: "string",
	TypeObject: "object",
	TypeArray:  "array",
	TypeNull:   "null",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeName) {
		return valueTypeName[t]
	}
	return "unknown"
}

// IsNumeric reports whether t is one of the three numeric primitives that
// participate in the int/uint/float widening table.
func (t ValueType) IsNumeric() bool {
	return t == TypeInt || t == TypeUint || t == TypeFloat
}
