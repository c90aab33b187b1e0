package binary

import (
	"encoding/binary"

	"github.com/lk2023060901/gosave/pkg/metrics"
	"github.com/lk2023060901/gosave/pkg/util/merr"
)

// Encode serializes a container to the bit-exact wire format spec.md §6
// describes: string_count, then (len, bytes) pairs, then body_size, then
// body bytes. Word-width fields are persisted as fixed 8-byte
// little-endian integers — a concrete stand-in for the original's
// platform-word-width usize, matching this package's little-endian
// primitive choice (see wire.go) and spec.md §9/ii's acknowledged
// non-goal of cross-machine portability.
func Encode(c *Container) []byte {
	metrics.SerialStringTableSize.Observe(float64(len(c.strings.strings)))
	size := 8 + 8*len(c.strings.strings)
	for _, s := range c.strings.strings {
		size += len(s)
	}
	size += 8 + c.used

	out := make([]byte, size)
	off := 0
	binary.LittleEndian.PutUint64(out[off:], uint64(len(c.strings.strings)))
	off += 8
	for _, s := range c.strings.strings {
		binary.LittleEndian.PutUint64(out[off:], uint64(len(s)))
		off += 8
		copy(out[off:], s)
		off += len(s)
	}
	binary.LittleEndian.PutUint64(out[off:], uint64(c.used))
	off += 8
	copy(out[off:], c.Bytes())
	return out
}

// Decode parses the wire format produced by Encode into a borrowed View.
// The returned View aliases data; the caller must keep data alive for as
// long as any Reader built from the View is in use.
func Decode(data []byte) (View, error) {
	off := 0
	if off+8 > len(data) {
		return View{}, merr.ErrCorruptedInput
	}
	stringCount := binary.LittleEndian.Uint64(data[off:])
	off += 8

	strings := make([]string, 0, stringCount)
	for i := uint64(0); i < stringCount; i++ {
		if off+8 > len(data) {
			return View{}, merr.ErrCorruptedInput
		}
		strLen := binary.LittleEndian.Uint64(data[off:])
		off += 8
		if off+int(strLen) > len(data) {
			return View{}, merr.ErrCorruptedInput
		}
		strings = append(strings, string(data[off:off+int(strLen)]))
		off += int(strLen)
	}

	if off+8 > len(data) {
		return View{}, merr.ErrCorruptedInput
	}
	bodySize := binary.LittleEndian.Uint64(data[off:])
	off += 8
	if off+int(bodySize) > len(data) {
		return View{}, merr.ErrCorruptedInput
	}

	return View{strings: strings, data: data[off : off+int(bodySize)]}, nil
}
