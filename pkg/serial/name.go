package serial

import "hash/fnv"

// Name is a lightweight, possibly-static byte-string view used as a field
// key. Static names are a hint that the backing bytes outlive any use of
// the Name; neither binding in this module reads the flag.
type Name struct {
	bytes  []byte
	Static bool
}

// NewName copies s into a new Name. Use this for any name whose backing
// string does not outlive the call.
func NewName(s string) Name {
	b := make([]byte, len(s))
	copy(b, s)
	return Name{bytes: b}
}

// StaticName wraps s without copying. The caller must guarantee s outlives
// every consumer of the returned Name (e.g. a package-level string
// constant, or a field name literal passed directly at a call site).
func StaticName(s string) Name {
	return Name{bytes: []byte(s), Static: true}
}

// String returns the name's bytes as a string, copying if necessary.
func (n Name) String() string {
	return string(n.bytes)
}

// Len returns the length of the name in bytes.
func (n Name) Len() int {
	return len(n.bytes)
}

// Equal reports whether n and other denote the same field name.
// Equality is length-then-bytes, per spec.
func (n Name) Equal(other Name) bool {
	if len(n.bytes) != len(other.bytes) {
		return false
	}
	for i := range n.bytes {
		if n.bytes[i] != other.bytes[i] {
			return false
		}
	}
	return true
}

// Hash returns an FNV-1a hash of the name's bytes. serial/binary's
// stringTable buckets interned entries by this value so intern only
// linear-scans the names that collide on it, instead of the whole table.
func (n Name) Hash() uint64 {
	h := fnv.New64a()
	h.Write(n.bytes)
	return h.Sum64()
}

// IsEmpty reports whether the name has zero length.
func (n Name) IsEmpty() bool {
	return len(n.bytes) == 0
}
