package binary

import (
	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/util/merr"
)

// stringTable is the per-container string table (spec.md §4.E.2). The
// original source does an O(n) linear scan (map_string_to_integer); this
// implementation buckets entries by serial.Name.Hash() (FNV-1a) instead,
// so intern only does a linear scan within one hash bucket instead of
// across the whole table. The wire order (the strings slice) is still
// what gets persisted — only the lookup index changed.
type stringTable struct {
	strings []string
	buckets map[uint64][]int
}

func newStringTable() *stringTable {
	return &stringTable{buckets: make(map[uint64][]int)}
}

// intern returns the index of name's bytes, adding it to the table if not
// already present. Returns merr.ErrTooManyStrings if the table is already
// at the 8192-entry limit and name is not already interned.
func (t *stringTable) intern(name serial.Name) (int, error) {
	h := name.Hash()
	for _, idx := range t.buckets[h] {
		if t.strings[idx] == name.String() {
			return idx, nil
		}
	}
	if len(t.strings) >= maxStringCount {
		return 0, merr.ErrTooManyStrings
	}
	idx := len(t.strings)
	t.strings = append(t.strings, name.String())
	t.buckets[h] = append(t.buckets[h], idx)
	return idx, nil
}

func (t *stringTable) lookup(idx int) string {
	return t.strings[idx]
}

// lookupIndex returns name's index without interning it, for callers that
// only need to know whether name is already present (e.g. HasMember).
func (t *stringTable) lookupIndex(name serial.Name) (int, bool) {
	for _, idx := range t.buckets[name.Hash()] {
		if t.strings[idx] == name.String() {
			return idx, true
		}
	}
	return 0, false
}

func (t *stringTable) len() int {
	return len(t.strings)
}
