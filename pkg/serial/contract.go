// Package serial defines the polymorphic two-direction serializer
// contract: a single user-written description of a value's shape that
// drives either a write or a read depending on the concrete Serializer
// implementation bound to it (jsonformat or binary).
package serial

import "github.com/lk2023060901/gosave/pkg/util/merr"

// Int32Array, Uint32Array, Float32Array, BoolArray and NameArray are the
// per-type primitive array adapters the contract drives. A single generic
// type in serialutil (DynamicArray/FixedArray) satisfies all five once
// instantiated on the matching element type.
type Int32Array interface {
	Len() int
	Get(i int) int32
	SetLen(n int)
	Set(i int, v int32)
	SupportsBulk() bool
	GetAll() []int32
	SetAll(v []int32)
}

type Uint32Array interface {
	Len() int
	Get(i int) uint32
	SetLen(n int)
	Set(i int, v uint32)
	SupportsBulk() bool
	GetAll() []uint32
	SetAll(v []uint32)
}

type Float32Array interface {
	Len() int
	Get(i int) float32
	SetLen(n int)
	Set(i int, v float32)
	SupportsBulk() bool
	GetAll() []float32
	SetAll(v []float32)
}

type BoolArray interface {
	Len() int
	Get(i int) bool
	SetLen(n int)
	Set(i int, v bool)
	SupportsBulk() bool
	GetAll() []bool
	SetAll(v []bool)
}

type NameArray interface {
	Len() int
	Get(i int) Name
	SetLen(n int)
	Set(i int, v Name)
	SupportsBulk() bool
	GetAll() []Name
	SetAll(v []Name)
}

// Serializer is the polymorphic contract implemented by the four concrete
// encoders: json writer, json reader, binary writer, binary reader. Every
// operation takes a name and a mutable slot; writers read the slot and
// ignore what they leave behind, readers overwrite the slot on success and
// leave it untouched on a missing field or an inconvertible type mismatch.
//
// Operations documented "writer-only" or "reader-only" return
// merr.ErrWrongDirection when invoked on the wrong concrete type.
type Serializer interface {
	// IsReader distinguishes direction.
	IsReader() bool

	// HasMember reports whether a field with this name exists in the
	// current object scope.
	HasMember(name Name) bool

	// Int32, Uint32, Float32 and Bool serialize a primitive field.
	// Writers read *v; readers overwrite *v on success, applying
	// serialutil.Widen when the persisted type differs from T.
	Int32(name Name, v *int32) error
	Uint32(name Name, v *uint32) error
	Float32(name Name, v *float32) error
	Bool(name Name, v *bool) error

	// Bytes serializes a byte-string field. On a reader, *v may alias
	// memory owned by the decoder, so it is only guaranteed valid while
	// the decoder and its backing container are alive; callers that need
	// the bytes to outlive the decoder must copy them. The binary and JSON
	// readers in this module both store a fresh copy.
	Bytes(name Name, v *[]byte) error

	// Object enters a nested object. The callback receives an inner
	// Serializer scoped to the nested object. On a writer, if the
	// callback writes nothing, no element is emitted at all (empty-
	// object elision) and HasMember(name) on a later read is false. On
	// a reader, the callback is invoked only if the field exists and is
	// object-typed.
	Object(name Name, fn func(Serializer) error) error

	// Iterate invokes fn for every child field of the current object,
	// in on-disk (or JSON map) iteration order. Iteration stops early
	// if fn returns (false, nil).
	Iterate(fn func(s Serializer, name Name) (bool, error)) error

	// Int32Array, Uint32Array, Float32Array, BoolArray and NameArray
	// serialize a primitive array field through the matching adapter.
	Int32Array(name Name, arr Int32Array) error
	Uint32Array(name Name, arr Uint32Array) error
	Float32Array(name Name, arr Float32Array) error
	BoolArray(name Name, arr BoolArray) error
	NameArray(name Name, arr NameArray) error

	// WriteObjectArray is writer-only: it emits n entries under name,
	// invoking fn(sub, i) for each; fn may write nothing for an index,
	// which is encoded as a null entry.
	WriteObjectArray(name Name, n int, fn func(Serializer, int) error) error

	// ObjectArraySize is reader-only: it reports the element count of
	// an object array field, or ok=false if the field does not exist
	// or is not array-typed.
	ObjectArraySize(name Name) (n int, ok bool)

	// ReadObjectArray is reader-only: it invokes fn(sub, i) for each
	// entry of an object-array field; a null entry invokes fn with a
	// Serializer whose HasMember is always false.
	ReadObjectArray(name Name, fn func(Serializer, int) error) error
}

// WriteInt32, WriteUint32, WriteFloat32, WriteBool and WriteBytes are the
// writer-only, constant-slot convenience wrappers spec.md §4.B calls for
// (Go has no const-overload dispatch, so these operate on values instead
// of pointers). Calling them on a reader returns merr.ErrWrongDirection.
func WriteInt32(s Serializer, name Name, v int32) error {
	if s.IsReader() {
		return merr.WithName(merr.ErrWrongDirection, name.String())
	}
	return s.Int32(name, &v)
}

func WriteUint32(s Serializer, name Name, v uint32) error {
	if s.IsReader() {
		return merr.WithName(merr.ErrWrongDirection, name.String())
	}
	return s.Uint32(name, &v)
}

func WriteFloat32(s Serializer, name Name, v float32) error {
	if s.IsReader() {
		return merr.WithName(merr.ErrWrongDirection, name.String())
	}
	return s.Float32(name, &v)
}

func WriteBool(s Serializer, name Name, v bool) error {
	if s.IsReader() {
		return merr.WithName(merr.ErrWrongDirection, name.String())
	}
	return s.Bool(name, &v)
}

func WriteBytes(s Serializer, name Name, v []byte) error {
	if s.IsReader() {
		return merr.WithName(merr.ErrWrongDirection, name.String())
	}
	return s.Bytes(name, &v)
}
