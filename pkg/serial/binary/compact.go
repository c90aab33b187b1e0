package binary

import "github.com/lk2023060901/gosave/pkg/serial"

// nullifyByName walks the element sequence in data[start:end] (one object
// scope) and retags as Null every header whose name index matches idx,
// per spec.md §4.E.4: override nullification is scope-local and does not
// recurse into nested objects, since walking only steps over sibling
// headers by their size field.
func nullifyByName(data []byte, start, end int, idx uint16) {
	off := start
	for off < end {
		h := decodeElementHeader(data[off : off+elementHeaderSize])
		if h.name == idx && h.typ != serial.TypeNull {
			h.typ = serial.TypeNull
			enc := encodeElementHeader(h)
			copy(data[off:off+elementHeaderSize], enc[:])
		}
		off += elementHeaderSize + int(h.size)
	}
}

// compactScope removes every Null-typed top-level element from
// data[start:end], shifting subsequent bytes down, and returns the new
// end offset. Go's builtin copy is memmove-safe for overlapping slices
// (unlike C's memcpy, which the original source works around with a
// manual word-aligned loop), so the shift here is a plain copy.
func compactScope(data []byte, start, end int) int {
	write := start
	read := start
	for read < end {
		h := decodeElementHeader(data[read : read+elementHeaderSize])
		total := elementHeaderSize + int(h.size)
		if h.typ == serial.TypeNull {
			read += total
			continue
		}
		if write != read {
			copy(data[write:write+total], data[read:read+total])
		}
		write += total
		read += total
	}
	return write
}
