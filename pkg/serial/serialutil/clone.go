package serialutil

import "golang.org/x/exp/slices"

// CloneValues returns an independent copy of a DynamicArray's backing
// slice, for callers that need to retain values beyond the lifetime of
// the buffer the adapter was constructed over.
func CloneValues[T Elem](a *DynamicArray[T]) []T {
	return slices.Clone(a.Values())
}
