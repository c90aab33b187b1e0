package binary

import (
	"encoding/binary"
	"math"
)

// Primitive bodies are written little-endian. spec.md §9/Open Question ii
// pins the format as native-endian with no portability guarantee; this
// implementation picks little-endian as its concrete "native" choice
// (true native-endian would require runtime byte-order detection for no
// benefit, since cross-machine portability is explicitly out of scope)
// and documents the choice here instead of adding an unused wire version
// marker.

func putInt32(b []byte, v int32)     { binary.LittleEndian.PutUint32(b, uint32(v)) }
func getInt32(b []byte) int32        { return int32(binary.LittleEndian.Uint32(b)) }
func putUint32(b []byte, v uint32)   { binary.LittleEndian.PutUint32(b, v) }
func getUint32(b []byte) uint32      { return binary.LittleEndian.Uint32(b) }
func putFloat32(b []byte, v float32) { binary.LittleEndian.PutUint32(b, math.Float32bits(v)) }
func getFloat32(b []byte) float32    { return math.Float32frombits(binary.LittleEndian.Uint32(b)) }
func putBool(b []byte, v bool) {
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
}
func getBool(b []byte) bool { return b[0] != 0 }
