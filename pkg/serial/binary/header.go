// Package binary implements the packed binary codec: spec.md §4.E's
// on-wire layout, string-interning table, override nullification and
// null-compaction, and the zero-copy read path. Grounded on
// original_source/src/binary_serializer.cpp's ElementHeader/ArrayHeader
// packed structs and their grow/write/nullify/remove_null_elements
// helpers, reworked into Go slice operations instead of raw pointer
// arithmetic.
package binary

import (
	"encoding/binary"

	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/util/merr"
)

// elementHeaderSize and arrayHeaderSize are the packed sizes spec.md §3/§6
// mandate: 6 bytes and 4 bytes respectively, verified against the
// original's static_assert(sizeof(ElementHeader) == 6) /
// static_assert(sizeof(ArrayHeader) == 4).
const (
	elementHeaderSize = 6
	arrayHeaderSize   = 4

	maxNameIndex    = 8191      // 13 bits
	maxStringCount  = 8192      // maxNameIndex + 1
	maxArrayCount   = 536870911 // 29 bits
	maxElementBody  = 1<<32 - 1 // 32-bit size field

	writerInitialSize  = 4096 // spec.md §4.E.3: "starts at 4096 bytes"
	writerGrowthFactor = 2
)

// elementHeader mirrors the original's packed bit layout: 3-bit type tag,
// 13-bit name index, 32-bit body size (16 bits total for the first two
// fields, packed into a little-endian uint16, then a little-endian uint32).
type elementHeader struct {
	typ  serial.ValueType
	name uint16
	size uint32
}

func encodeElementHeader(h elementHeader) [elementHeaderSize]byte {
	var buf [elementHeaderSize]byte
	packed := uint16(h.typ)&0x7 | (h.name&0x1FFF)<<3
	binary.LittleEndian.PutUint16(buf[0:2], packed)
	binary.LittleEndian.PutUint32(buf[2:6], h.size)
	return buf
}

func decodeElementHeader(buf []byte) elementHeader {
	packed := binary.LittleEndian.Uint16(buf[0:2])
	return elementHeader{
		typ:  serial.ValueType(packed & 0x7),
		name: (packed >> 3) & 0x1FFF,
		size: binary.LittleEndian.Uint32(buf[2:6]),
	}
}

// arrayHeader mirrors the original's packed 3-bit inner type + 29-bit
// element count, packed into a little-endian uint32.
type arrayHeader struct {
	innerType serial.ValueType
	count     uint32
}

func encodeArrayHeader(h arrayHeader) [arrayHeaderSize]byte {
	var buf [arrayHeaderSize]byte
	packed := uint32(h.innerType)&0x7 | (h.count&0x1FFFFFFF)<<3
	binary.LittleEndian.PutUint32(buf[:], packed)
	return buf
}

func decodeArrayHeader(buf []byte) arrayHeader {
	packed := binary.LittleEndian.Uint32(buf[:4])
	return arrayHeader{
		innerType: serial.ValueType(packed & 0x7),
		count:     (packed >> 3) & 0x1FFFFFFF,
	}
}

func checkNameIndex(idx int) error {
	if idx > maxNameIndex {
		return merr.ErrNameIndexTooBig
	}
	return nil
}

func checkArrayCount(n int) error {
	if n > maxArrayCount {
		return merr.ErrArrayTooLarge
	}
	return nil
}

func checkBodySize(n int) error {
	if uint64(n) > maxElementBody {
		return merr.ErrBodyTooLarge
	}
	return nil
}
