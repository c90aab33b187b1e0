package binary

import (
	"github.com/lk2023060901/gosave/pkg/metrics"
	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/util/merr"
)

const metricFormatBinary = "binary"

// Writer drives the Serializer contract over a Container, appending
// packed elements to its buffer. A Writer exclusively borrows its
// Container (spec.md §3/§5: writers are single-threaded, non-concurrent).
// The start offset marks the first header this scope owns; nested scopes
// (Object, WriteObjectArray entries) get their own Writer with their own
// start, mirroring original_source's per-scope BinaryWriter instances.
type Writer struct {
	c     *Container
	start int
}

// NewWriter returns a top-level writer over a fresh or existing
// container, scoped to start at the container's current used length.
func NewWriter(c *Container) *Writer {
	return &Writer{c: c, start: c.used}
}

// Finish runs null-compaction over the writer's owned range (spec.md
// §4.E.5) and must be called once the caller is done writing through
// this Writer — the Go equivalent of the original's destructor-driven
// cleanup, since Go has no deterministic destructors. Nested scopes
// (Object, array entries) call it internally; callers of a top-level
// Writer must call it explicitly before reading c.Bytes().
func (w *Writer) Finish() {
	before := w.c.used - w.start
	w.c.used = compactScope(w.c.data, w.start, w.c.used)
	after := w.c.used - w.start
	metrics.SerialCompactionReclaimedBytes.Observe(float64(before - after))
}

func (w *Writer) IsReader() bool { return false }

func (w *Writer) HasMember(name serial.Name) bool {
	idx, ok := w.c.strings.lookupIndex(name)
	if !ok {
		return false
	}
	off := w.start
	for off < w.c.used {
		h := decodeElementHeader(w.c.data[off : off+elementHeaderSize])
		if int(h.name) == idx && h.typ != serial.TypeNull {
			return true
		}
		off += elementHeaderSize + int(h.size)
	}
	return false
}

func (w *Writer) resolveName(name serial.Name) (uint16, error) {
	if name.Len() > maxNameIndex {
		return 0, merr.WithName(merr.ErrNameTooLong, name.String())
	}
	idx, err := w.c.strings.intern(name)
	if err != nil {
		return 0, merr.WithName(merr.ErrTooManyStrings, name.String())
	}
	if err := checkNameIndex(idx); err != nil {
		return 0, merr.WithName(merr.ErrNameIndexTooBig, name.String())
	}
	return uint16(idx), nil
}

// nullifyBeforeWrite performs override nullification (spec.md §4.E.4)
// over the scope owned by w, for the given resolved name index, before a
// new element under that name is appended.
func (w *Writer) nullifyBeforeWrite(idx uint16) {
	nullifyByName(w.c.data, w.start, w.c.used, idx)
}

func (w *Writer) writeFixed(name serial.Name, typ serial.ValueType, body []byte) error {
	idx, err := w.resolveName(name)
	if err != nil {
		return err
	}
	w.nullifyBeforeWrite(idx)
	hdr := encodeElementHeader(elementHeader{typ: typ, name: idx, size: uint32(len(body))})
	w.c.append(hdr[:])
	w.c.append(body)
	metrics.SerialWriteElements.WithLabelValues(metricFormatBinary).Inc()
	return nil
}

func (w *Writer) Int32(name serial.Name, v *int32) error {
	var body [4]byte
	putInt32(body[:], *v)
	return w.writeFixed(name, serial.TypeInt, body[:])
}

func (w *Writer) Uint32(name serial.Name, v *uint32) error {
	var body [4]byte
	putUint32(body[:], *v)
	return w.writeFixed(name, serial.TypeUint, body[:])
}

func (w *Writer) Float32(name serial.Name, v *float32) error {
	var body [4]byte
	putFloat32(body[:], *v)
	return w.writeFixed(name, serial.TypeFloat, body[:])
}

func (w *Writer) Bool(name serial.Name, v *bool) error {
	var body [1]byte
	putBool(body[:], *v)
	return w.writeFixed(name, serial.TypeBool, body[:])
}

// Bytes writes a byte-string field: the string value is interned into the
// string table and the body is its 4-byte index, per spec.md §4.E.1.
func (w *Writer) Bytes(name serial.Name, v *[]byte) error {
	valueIdx, err := w.c.strings.intern(serial.NewName(string(*v)))
	if err != nil {
		return merr.WithName(merr.ErrTooManyStrings, name.String())
	}
	var body [4]byte
	putUint32(body[:], uint32(valueIdx))
	return w.writeFixed(name, serial.TypeString, body[:])
}

// Object enters a nested object scope. If the callback writes nothing,
// the reserved header is rewound and no element is emitted at all
// (empty-object elision, spec.md §4.E.3). Unlike original_source, override
// nullification is applied before reserving the header too, generalizing
// spec.md §4.E.4's override rule uniformly to every element kind instead
// of only scalars/arrays.
func (w *Writer) Object(name serial.Name, fn func(serial.Serializer) error) error {
	idx, err := w.resolveName(name)
	if err != nil {
		return err
	}
	w.nullifyBeforeWrite(idx)

	headerStart := w.c.reserve(elementHeaderSize)
	sub := &Writer{c: w.c, start: w.c.used}
	if err := fn(sub); err != nil {
		return err
	}
	sub.Finish()

	if w.c.used == headerStart+elementHeaderSize {
		w.c.used = headerStart
		return nil
	}

	size := w.c.used - headerStart - elementHeaderSize
	if err := checkBodySize(size); err != nil {
		return err
	}
	hdr := encodeElementHeader(elementHeader{typ: serial.TypeObject, name: idx, size: uint32(size)})
	copy(w.c.data[headerStart:headerStart+elementHeaderSize], hdr[:])
	metrics.SerialWriteElements.WithLabelValues(metricFormatBinary).Inc()
	return nil
}

// Iterate visits every non-Null child of the current scope in on-disk
// order, reflecting overrides applied so far even though compaction has
// not run yet (spec.md §4.B: "must reflect the current written state").
func (w *Writer) Iterate(fn func(s serial.Serializer, name serial.Name) (bool, error)) error {
	off := w.start
	for off < w.c.used {
		h := decodeElementHeader(w.c.data[off : off+elementHeaderSize])
		if h.typ != serial.TypeNull {
			elemName := serial.NewName(w.c.strings.lookup(int(h.name)))
			cont, err := fn(w, elemName)
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		off += elementHeaderSize + int(h.size)
	}
	return nil
}

func (w *Writer) writeArrayHeader(name serial.Name, innerType serial.ValueType, count int, payload func() []byte) error {
	if err := checkArrayCount(count); err != nil {
		return merr.WithName(err, name.String())
	}
	idx, err := w.resolveName(name)
	if err != nil {
		return err
	}
	w.nullifyBeforeWrite(idx)

	body := payload()
	size := arrayHeaderSize + len(body)
	if err := checkBodySize(size); err != nil {
		return merr.WithName(err, name.String())
	}
	hdr := encodeElementHeader(elementHeader{typ: serial.TypeArray, name: idx, size: uint32(size)})
	w.c.append(hdr[:])
	ah := encodeArrayHeader(arrayHeader{innerType: innerType, count: uint32(count)})
	w.c.append(ah[:])
	w.c.append(body)
	metrics.SerialWriteElements.WithLabelValues(metricFormatBinary).Inc()
	return nil
}

func (w *Writer) Int32Array(name serial.Name, arr serial.Int32Array) error {
	n := arr.Len()
	if arr.SupportsBulk() && len(arr.GetAll()) != n {
		return merr.WithName(merr.ErrBulkContractViolated, name.String())
	}
	return w.writeArrayHeader(name, serial.TypeInt, n, func() []byte {
		body := make([]byte, n*4)
		if arr.SupportsBulk() {
			for i, v := range arr.GetAll() {
				putInt32(body[i*4:], v)
			}
			return body
		}
		for i := 0; i < n; i++ {
			putInt32(body[i*4:], arr.Get(i))
		}
		return body
	})
}

func (w *Writer) Uint32Array(name serial.Name, arr serial.Uint32Array) error {
	n := arr.Len()
	if arr.SupportsBulk() && len(arr.GetAll()) != n {
		return merr.WithName(merr.ErrBulkContractViolated, name.String())
	}
	return w.writeArrayHeader(name, serial.TypeUint, n, func() []byte {
		body := make([]byte, n*4)
		if arr.SupportsBulk() {
			for i, v := range arr.GetAll() {
				putUint32(body[i*4:], v)
			}
			return body
		}
		for i := 0; i < n; i++ {
			putUint32(body[i*4:], arr.Get(i))
		}
		return body
	})
}

func (w *Writer) Float32Array(name serial.Name, arr serial.Float32Array) error {
	n := arr.Len()
	if arr.SupportsBulk() && len(arr.GetAll()) != n {
		return merr.WithName(merr.ErrBulkContractViolated, name.String())
	}
	return w.writeArrayHeader(name, serial.TypeFloat, n, func() []byte {
		body := make([]byte, n*4)
		if arr.SupportsBulk() {
			for i, v := range arr.GetAll() {
				putFloat32(body[i*4:], v)
			}
			return body
		}
		for i := 0; i < n; i++ {
			putFloat32(body[i*4:], arr.Get(i))
		}
		return body
	})
}

func (w *Writer) BoolArray(name serial.Name, arr serial.BoolArray) error {
	n := arr.Len()
	if arr.SupportsBulk() && len(arr.GetAll()) != n {
		return merr.WithName(merr.ErrBulkContractViolated, name.String())
	}
	return w.writeArrayHeader(name, serial.TypeBool, n, func() []byte {
		body := make([]byte, n)
		if arr.SupportsBulk() {
			for i, v := range arr.GetAll() {
				putBool(body[i:i+1], v)
			}
			return body
		}
		for i := 0; i < n; i++ {
			putBool(body[i:i+1], arr.Get(i))
		}
		return body
	})
}

func (w *Writer) NameArray(name serial.Name, arr serial.NameArray) error {
	n := arr.Len()
	if arr.SupportsBulk() && len(arr.GetAll()) != n {
		return merr.WithName(merr.ErrBulkContractViolated, name.String())
	}
	values := make([]serial.Name, n)
	if arr.SupportsBulk() {
		copy(values, arr.GetAll())
	} else {
		for i := 0; i < n; i++ {
			values[i] = arr.Get(i)
		}
	}
	// Each string must be interned before the body is built, so resolve
	// them outside writeArrayHeader's payload closure (which must not
	// itself fail).
	indices := make([]uint32, n)
	for i, v := range values {
		idx, err := w.c.strings.intern(v)
		if err != nil {
			return merr.WithName(merr.ErrTooManyStrings, name.String())
		}
		indices[i] = uint32(idx)
	}
	return w.writeArrayHeader(name, serial.TypeString, n, func() []byte {
		body := make([]byte, n*4)
		for i, idx := range indices {
			putUint32(body[i*4:], idx)
		}
		return body
	})
}

// WriteObjectArray emits n entries under name, each produced by a nested
// Writer whose Finish() runs before its entry_size is recorded, mirroring
// original_source's write_object_array.
func (w *Writer) WriteObjectArray(name serial.Name, n int, fn func(serial.Serializer, int) error) error {
	if err := checkArrayCount(n); err != nil {
		return merr.WithName(err, name.String())
	}
	headerStart := w.c.reserve(elementHeaderSize + arrayHeaderSize)

	for i := 0; i < n; i++ {
		sizeStart := w.c.reserve(4)
		sub := &Writer{c: w.c, start: w.c.used}
		if err := fn(sub, i); err != nil {
			return err
		}
		sub.Finish()
		entrySize := w.c.used - sizeStart - 4
		putUint32(w.c.data[sizeStart:sizeStart+4], uint32(entrySize))
	}

	idx, err := w.resolveName(name)
	if err != nil {
		return err
	}
	nullifyByName(w.c.data, w.start, headerStart, idx)

	size := w.c.used - headerStart - elementHeaderSize
	if err := checkBodySize(size); err != nil {
		return err
	}
	hdr := encodeElementHeader(elementHeader{typ: serial.TypeArray, name: idx, size: uint32(size)})
	copy(w.c.data[headerStart:headerStart+elementHeaderSize], hdr[:])
	ah := encodeArrayHeader(arrayHeader{innerType: serial.TypeObject, count: uint32(n)})
	copy(w.c.data[headerStart+elementHeaderSize:headerStart+elementHeaderSize+arrayHeaderSize], ah[:])
	return nil
}

func (w *Writer) ObjectArraySize(name serial.Name) (int, bool) {
	return 0, false
}

func (w *Writer) ReadObjectArray(name serial.Name, fn func(serial.Serializer, int) error) error {
	return merr.WithName(merr.ErrWrongDirection, name.String())
}

// WriteSubContainer embeds another, already-finished container as an
// opaque byte chunk under name — the memory-chunk escape (spec.md
// §4.E.7): an Array element whose inner type is Null, repurposed to mean
// "opaque payload, size = ArrayHeader.count". This is the substrate for
// nesting one binary container inside another (original_source's
// write_sub_binary_holder).
func (w *Writer) WriteSubContainer(name serial.Name, inner []byte) error {
	return w.writeArrayHeader(name, serial.TypeNull, len(inner), func() []byte {
		return inner
	})
}

var _ serial.Serializer = (*Writer)(nil)
