package binary

import (
	"github.com/lk2023060901/gosave/pkg/metrics"
	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/serial/serialutil"
	"github.com/lk2023060901/gosave/pkg/util/merr"
)

// Reader drives the Serializer contract read-only over a borrowed element
// range. It carries no mutable state beyond the borrow itself (spec.md
// §3/§5), so any number of Readers over the same finalized Container may
// be driven concurrently from independent goroutines.
type Reader struct {
	strings []string
	data    []byte
}

// NewReader wraps a finished Container for reading. The Writer that
// produced c must have had Finish called first.
func NewReader(c *Container) *Reader {
	return &Reader{strings: c.strings.strings, data: c.Bytes()}
}

// NewViewReader wraps a View (a borrowed string table and byte range from
// memory the caller owns, e.g. after parsing a file per spec.md §3).
func NewViewReader(v View) *Reader {
	return &Reader{strings: v.strings, data: v.data}
}

func (r *Reader) IsReader() bool { return true }

// find performs the scope-local linear lookup spec.md §4.E.6 describes,
// bounds-checking each header's claimed size against the bytes actually
// remaining (spec.md §7's SHOULD) and returning merr.ErrCorruptedInput on
// mismatch instead of reading out of bounds.
func (r *Reader) find(name serial.Name) (elementHeader, int, bool, error) {
	off := 0
	for off < len(r.data) {
		if off+elementHeaderSize > len(r.data) {
			return elementHeader{}, 0, false, merr.ErrCorruptedInput
		}
		h := decodeElementHeader(r.data[off : off+elementHeaderSize])
		bodyStart := off + elementHeaderSize
		bodyEnd := bodyStart + int(h.size)
		if bodyEnd > len(r.data) {
			return elementHeader{}, 0, false, merr.ErrCorruptedInput
		}
		if int(h.name) >= len(r.strings) {
			return elementHeader{}, 0, false, merr.ErrCorruptedInput
		}
		if r.strings[h.name] == name.String() {
			return h, bodyStart, true, nil
		}
		off = bodyEnd
	}
	return elementHeader{}, 0, false, nil
}

func (r *Reader) HasMember(name serial.Name) bool {
	_, _, found, err := r.find(name)
	return err == nil && found
}

func readNumeric(typ serial.ValueType, body []byte) (serialutil.Numeric, bool) {
	switch typ {
	case serial.TypeInt:
		return serialutil.NumericInt(getInt32(body)), true
	case serial.TypeUint:
		return serialutil.NumericUint(getUint32(body)), true
	case serial.TypeFloat:
		return serialutil.NumericFloat(getFloat32(body)), true
	case serial.TypeBool:
		return serialutil.NumericBool(getBool(body)), true
	default:
		return serialutil.Numeric{}, false
	}
}

func (r *Reader) readScalar(name serial.Name, target serial.ValueType) (serialutil.Numeric, bool, error) {
	h, bodyStart, found, err := r.find(name)
	if err != nil {
		return serialutil.Numeric{}, false, err
	}
	if !found {
		return serialutil.Numeric{}, false, nil
	}
	if h.typ == serial.TypeArray {
		// Array-to-scalar does not collapse (spec.md §4.B Open Question
		// i): leave the slot untouched.
		return serialutil.Numeric{}, false, nil
	}
	n, ok := readNumeric(h.typ, r.data[bodyStart:bodyStart+int(h.size)])
	if !ok {
		return serialutil.Numeric{}, false, nil
	}
	widened, ok := serialutil.Widen(n, target)
	if !ok {
		return serialutil.Numeric{}, false, nil
	}
	metrics.SerialReadElements.WithLabelValues(metricFormatBinary).Inc()
	return widened, true, nil
}

func (r *Reader) Int32(name serial.Name, v *int32) error {
	n, ok, err := r.readScalar(name, serial.TypeInt)
	if err != nil {
		return err
	}
	if ok {
		*v = n.AsInt32()
	}
	return nil
}

func (r *Reader) Uint32(name serial.Name, v *uint32) error {
	n, ok, err := r.readScalar(name, serial.TypeUint)
	if err != nil {
		return err
	}
	if ok {
		*v = n.AsUint32()
	}
	return nil
}

func (r *Reader) Float32(name serial.Name, v *float32) error {
	n, ok, err := r.readScalar(name, serial.TypeFloat)
	if err != nil {
		return err
	}
	if ok {
		*v = n.AsFloat32()
	}
	return nil
}

func (r *Reader) Bool(name serial.Name, v *bool) error {
	n, ok, err := r.readScalar(name, serial.TypeBool)
	if err != nil {
		return err
	}
	if ok {
		*v = n.AsBool()
	}
	return nil
}

// Bytes stores a copy of the string-table entry in *v; the slice does not
// alias the Reader's Container or View.
func (r *Reader) Bytes(name serial.Name, v *[]byte) error {
	h, bodyStart, found, err := r.find(name)
	if err != nil {
		return err
	}
	if !found || h.typ != serial.TypeString {
		return nil
	}
	strIdx := getUint32(r.data[bodyStart : bodyStart+4])
	if int(strIdx) >= len(r.strings) {
		return merr.ErrCorruptedInput
	}
	*v = []byte(r.strings[strIdx])
	return nil
}

func (r *Reader) Object(name serial.Name, fn func(serial.Serializer) error) error {
	h, bodyStart, found, err := r.find(name)
	if err != nil {
		return err
	}
	if !found || h.typ != serial.TypeObject {
		return nil
	}
	metrics.SerialReadElements.WithLabelValues(metricFormatBinary).Inc()
	sub := &Reader{strings: r.strings, data: r.data[bodyStart : bodyStart+int(h.size)]}
	return fn(sub)
}

func (r *Reader) Iterate(fn func(s serial.Serializer, name serial.Name) (bool, error)) error {
	off := 0
	for off < len(r.data) {
		if off+elementHeaderSize > len(r.data) {
			return merr.ErrCorruptedInput
		}
		h := decodeElementHeader(r.data[off : off+elementHeaderSize])
		bodyEnd := off + elementHeaderSize + int(h.size)
		if bodyEnd > len(r.data) || int(h.name) >= len(r.strings) {
			return merr.ErrCorruptedInput
		}
		cont, err := fn(r, serial.NewName(r.strings[h.name]))
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		off = bodyEnd
	}
	return nil
}

// readArrayBody decodes the ArrayHeader and payload for name, handling
// the scalar-as-array synthesis rule (spec.md §4.B: a scalar found where
// an array was requested becomes a one-element array). It returns the
// inner type, element count, and the payload byte range (or ok=false if
// absent/inconvertible).
func (r *Reader) readArrayBody(name serial.Name, targetInner serial.ValueType) (innerType serial.ValueType, count int, payload []byte, ok bool, err error) {
	h, bodyStart, found, ferr := r.find(name)
	if ferr != nil {
		return 0, 0, nil, false, ferr
	}
	if !found {
		return 0, 0, nil, false, nil
	}
	if h.typ == serial.TypeArray {
		if bodyStart+arrayHeaderSize > len(r.data) {
			return 0, 0, nil, false, merr.ErrCorruptedInput
		}
		ah := decodeArrayHeader(r.data[bodyStart : bodyStart+arrayHeaderSize])
		payloadStart := bodyStart + arrayHeaderSize
		payloadEnd := bodyStart + int(h.size)
		if payloadEnd > len(r.data) || payloadStart > payloadEnd {
			return 0, 0, nil, false, merr.ErrCorruptedInput
		}
		metrics.SerialReadElements.WithLabelValues(metricFormatBinary).Inc()
		return ah.innerType, int(ah.count), r.data[payloadStart:payloadEnd], true, nil
	}
	// Scalar-as-array: a convertible scalar synthesizes a one-element
	// array of the target inner type.
	if targetInner.IsNumeric() || targetInner == serial.TypeBool {
		n, ok := readNumeric(h.typ, r.data[bodyStart:bodyStart+int(h.size)])
		if !ok {
			return 0, 0, nil, false, nil
		}
		widened, ok := serialutil.Widen(n, targetInner)
		if !ok {
			return 0, 0, nil, false, nil
		}
		body := make([]byte, 4)
		switch targetInner {
		case serial.TypeInt:
			putInt32(body, widened.AsInt32())
		case serial.TypeUint:
			putUint32(body, widened.AsUint32())
		case serial.TypeFloat:
			putFloat32(body, widened.AsFloat32())
		case serial.TypeBool:
			body = body[:1]
			putBool(body, widened.AsBool())
		}
		return targetInner, 1, body, true, nil
	}
	return 0, 0, nil, false, nil
}

func (r *Reader) Int32Array(name serial.Name, arr serial.Int32Array) error {
	innerType, n, payload, found, err := r.readArrayBody(name, serial.TypeInt)
	if err != nil || !found {
		return err
	}
	arr.SetLen(n)
	if innerType == serial.TypeInt && arr.SupportsBulk() {
		values := make([]int32, n)
		for i := 0; i < n; i++ {
			values[i] = getInt32(payload[i*4:])
		}
		arr.SetAll(values)
		return nil
	}
	for i := 0; i < n; i++ {
		num, ok := readNumeric(innerType, payload[i*4:(i+1)*4])
		if !ok {
			continue
		}
		widened, ok := serialutil.Widen(num, serial.TypeInt)
		if ok {
			arr.Set(i, widened.AsInt32())
		}
	}
	return nil
}

func (r *Reader) Uint32Array(name serial.Name, arr serial.Uint32Array) error {
	innerType, n, payload, found, err := r.readArrayBody(name, serial.TypeUint)
	if err != nil || !found {
		return err
	}
	arr.SetLen(n)
	if innerType == serial.TypeUint && arr.SupportsBulk() {
		values := make([]uint32, n)
		for i := 0; i < n; i++ {
			values[i] = getUint32(payload[i*4:])
		}
		arr.SetAll(values)
		return nil
	}
	for i := 0; i < n; i++ {
		num, ok := readNumeric(innerType, payload[i*4:(i+1)*4])
		if !ok {
			continue
		}
		widened, ok := serialutil.Widen(num, serial.TypeUint)
		if ok {
			arr.Set(i, widened.AsUint32())
		}
	}
	return nil
}

func (r *Reader) Float32Array(name serial.Name, arr serial.Float32Array) error {
	innerType, n, payload, found, err := r.readArrayBody(name, serial.TypeFloat)
	if err != nil || !found {
		return err
	}
	arr.SetLen(n)
	if innerType == serial.TypeFloat && arr.SupportsBulk() {
		values := make([]float32, n)
		for i := 0; i < n; i++ {
			values[i] = getFloat32(payload[i*4:])
		}
		arr.SetAll(values)
		return nil
	}
	for i := 0; i < n; i++ {
		num, ok := readNumeric(innerType, payload[i*4:(i+1)*4])
		if !ok {
			continue
		}
		widened, ok := serialutil.Widen(num, serial.TypeFloat)
		if ok {
			arr.Set(i, widened.AsFloat32())
		}
	}
	return nil
}

func (r *Reader) BoolArray(name serial.Name, arr serial.BoolArray) error {
	innerType, n, payload, found, err := r.readArrayBody(name, serial.TypeBool)
	if err != nil || !found {
		return err
	}
	arr.SetLen(n)
	if innerType == serial.TypeBool && arr.SupportsBulk() {
		values := make([]bool, n)
		for i := 0; i < n; i++ {
			values[i] = getBool(payload[i : i+1])
		}
		arr.SetAll(values)
		return nil
	}
	for i := 0; i < n; i++ {
		stride := 4
		if innerType == serial.TypeBool {
			stride = 1
		}
		num, ok := readNumeric(innerType, payload[i*stride:i*stride+stride])
		if !ok {
			continue
		}
		widened, ok := serialutil.Widen(num, serial.TypeBool)
		if ok {
			arr.Set(i, widened.AsBool())
		}
	}
	return nil
}

// NameArray only accepts an on-disk String-typed array (strings have no
// numeric widening, unlike the other three wire primitives).
func (r *Reader) NameArray(name serial.Name, arr serial.NameArray) error {
	innerType, n, payload, found, err := r.readArrayBody(name, serial.TypeString)
	if err != nil || !found || innerType != serial.TypeString {
		return err
	}
	arr.SetLen(n)
	values := make([]serial.Name, n)
	for i := 0; i < n; i++ {
		idx := getUint32(payload[i*4:])
		if int(idx) >= len(r.strings) {
			return merr.ErrCorruptedInput
		}
		values[i] = serial.NewName(r.strings[idx])
	}
	if arr.SupportsBulk() {
		arr.SetAll(values)
		return nil
	}
	for i, v := range values {
		arr.Set(i, v)
	}
	return nil
}

func (r *Reader) WriteObjectArray(name serial.Name, n int, fn func(serial.Serializer, int) error) error {
	return merr.WithName(merr.ErrWrongDirection, name.String())
}

func (r *Reader) ObjectArraySize(name serial.Name) (int, bool) {
	h, bodyStart, found, err := r.find(name)
	if err != nil || !found || h.typ != serial.TypeArray {
		return 0, false
	}
	if bodyStart+arrayHeaderSize > len(r.data) {
		return 0, false
	}
	ah := decodeArrayHeader(r.data[bodyStart : bodyStart+arrayHeaderSize])
	if ah.innerType != serial.TypeObject {
		return 0, false
	}
	return int(ah.count), true
}

func (r *Reader) ReadObjectArray(name serial.Name, fn func(serial.Serializer, int) error) error {
	h, bodyStart, found, err := r.find(name)
	if err != nil {
		return err
	}
	if !found || h.typ != serial.TypeArray {
		return nil
	}
	if bodyStart+arrayHeaderSize > len(r.data) {
		return merr.ErrCorruptedInput
	}
	ah := decodeArrayHeader(r.data[bodyStart : bodyStart+arrayHeaderSize])
	if ah.innerType != serial.TypeObject {
		return nil
	}
	off := bodyStart + arrayHeaderSize
	end := bodyStart + int(h.size)
	for i := 0; i < int(ah.count); i++ {
		if off+4 > end {
			return merr.ErrCorruptedInput
		}
		entrySize := int(getUint32(r.data[off : off+4]))
		off += 4
		if off+entrySize > end {
			return merr.ErrCorruptedInput
		}
		sub := &Reader{strings: r.strings, data: r.data[off : off+entrySize]}
		if err := fn(sub, i); err != nil {
			return err
		}
		off += entrySize
	}
	return nil
}

// ReadSubContainer retrieves a memory-chunk-escaped sub-container (spec.md
// §4.E.7) embedded under name and returns a borrowed view onto its bytes.
func (r *Reader) ReadSubContainer(name serial.Name) ([]byte, bool, error) {
	h, bodyStart, found, err := r.find(name)
	if err != nil || !found || h.typ != serial.TypeArray {
		return nil, false, err
	}
	if bodyStart+arrayHeaderSize > len(r.data) {
		return nil, false, merr.ErrCorruptedInput
	}
	ah := decodeArrayHeader(r.data[bodyStart : bodyStart+arrayHeaderSize])
	if ah.innerType != serial.TypeNull {
		return nil, false, nil
	}
	payloadStart := bodyStart + arrayHeaderSize
	payloadEnd := bodyStart + int(h.size)
	if payloadEnd > len(r.data) {
		return nil, false, merr.ErrCorruptedInput
	}
	return r.data[payloadStart:payloadEnd], true, nil
}

// FieldKind reports an element's on-wire type tag and, for arrays, the
// inner type from its ArrayHeader. Transcoders use this to pick which
// Serializer method to drive without already knowing the schema.
type FieldKind struct {
	Type      serial.ValueType
	InnerType serial.ValueType
}

// Inspect reports the FieldKind of name without consuming it, or
// found=false if name is absent.
func (r *Reader) Inspect(name serial.Name) (FieldKind, bool, error) {
	h, bodyStart, found, err := r.find(name)
	if err != nil || !found {
		return FieldKind{}, false, err
	}
	fk := FieldKind{Type: h.typ}
	if h.typ == serial.TypeArray {
		if bodyStart+arrayHeaderSize > len(r.data) {
			return FieldKind{}, false, merr.ErrCorruptedInput
		}
		ah := decodeArrayHeader(r.data[bodyStart : bodyStart+arrayHeaderSize])
		fk.InnerType = ah.innerType
	}
	return fk, true, nil
}

var _ serial.Serializer = (*Reader)(nil)
