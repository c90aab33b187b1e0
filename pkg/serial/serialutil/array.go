package serialutil

import "github.com/lk2023060901/gosave/pkg/serial"

// Elem constrains the element types the wire format and the contract's
// five array interfaces (Int32Array, Uint32Array, Float32Array, BoolArray,
// NameArray) know about. A DynamicArray[T] or FixedArray[T] instantiated
// on one of these satisfies the matching named interface structurally —
// Go generics give us one adapter body instead of five near-duplicate
// structs.
type Elem interface {
	int32 | uint32 | float32 | bool | serial.Name
}

// DynamicArray wraps an owning, growable sequence. It implements the bulk
// contract (spec.md's "dynamic-sequence adapter... implements bulk
// contract when the element type is plain-old-data") for every Elem type;
// Name is not plain-old-data on the wire in the same sense but GetAll/
// SetAll are still well-defined (a slice of borrowed views), so bulk is
// supported uniformly across all five instantiations.
type DynamicArray[T Elem] struct {
	data []T
}

// NewDynamicArray adapts an existing slice in place (no copy); mutations
// through the adapter are visible to the caller's slice header only if the
// caller re-reads via Values after SetLen grows the backing array.
func NewDynamicArray[T Elem](data []T) *DynamicArray[T] {
	return &DynamicArray[T]{data: data}
}

func (a *DynamicArray[T]) Len() int          { return len(a.data) }
func (a *DynamicArray[T]) Get(i int) T       { return a.data[i] }
func (a *DynamicArray[T]) Set(i int, v T)    { a.data[i] = v }
func (a *DynamicArray[T]) SupportsBulk() bool { return true }
func (a *DynamicArray[T]) GetAll() []T        { return a.data }
func (a *DynamicArray[T]) SetAll(v []T) {
	a.data = v
}

func (a *DynamicArray[T]) SetLen(n int) {
	if n <= cap(a.data) {
		a.data = a.data[:n]
		return
	}
	grown := make([]T, n)
	copy(grown, a.data)
	a.data = grown
}

// Values returns the adapter's current backing slice.
func (a *DynamicArray[T]) Values() []T { return a.data }

// FixedArray wraps a pointer to a fixed-capacity slice; writes beyond the
// original capacity panic rather than silently reallocating, matching
// spec.md's "asserts writes do not exceed capacity" for the fixed-capacity
// raw-array adapter. loaded, when non-nil, receives the element count
// actually produced by a reader (the "optional loaded size output").
type FixedArray[T Elem] struct {
	data   []T
	cap    int
	loaded *int
}

// NewFixedArray adapts data in place; its length is used as the initial
// logical size and its capacity bounds every subsequent SetLen.
func NewFixedArray[T Elem](data []T, loaded *int) *FixedArray[T] {
	return &FixedArray[T]{data: data, cap: cap(data), loaded: loaded}
}

func (a *FixedArray[T]) Len() int       { return len(a.data) }
func (a *FixedArray[T]) Get(i int) T    { return a.data[i] }
func (a *FixedArray[T]) Set(i int, v T) { a.data[i] = v }

func (a *FixedArray[T]) SupportsBulk() bool { return true }
func (a *FixedArray[T]) GetAll() []T        { return a.data }
func (a *FixedArray[T]) SetAll(v []T) {
	if len(v) > a.cap {
		panic("serialutil: FixedArray.SetAll exceeds fixed capacity")
	}
	a.data = a.data[:0]
	a.data = append(a.data, v...)
}

func (a *FixedArray[T]) SetLen(n int) {
	if n > a.cap {
		panic("serialutil: FixedArray.SetLen exceeds fixed capacity")
	}
	a.data = a.data[:n]
	if a.loaded != nil {
		*a.loaded = n
	}
}
