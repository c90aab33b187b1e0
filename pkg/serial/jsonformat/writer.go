package jsonformat

import (
	"strconv"

	"github.com/bytedance/sonic/ast"

	"github.com/lk2023060901/gosave/pkg/metrics"
	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/util/merr"
)

const metricFormatJSON = "json"

// Writer drives the Serializer contract by building a sonic/ast.Node tree
// in place. A fresh Writer starts over a Null node and lazily becomes an
// Object on its first field write (ensureObject), matching spec.md §4.D:
// writers replace or create the field at name; writing an empty object
// elides the field entirely.
type Writer struct {
	node *ast.Node
}

// NewWriter returns a root Writer over a freshly allocated node. Call
// Root after writing to obtain the finished tree.
func NewWriter() *Writer {
	n := ast.NewNull()
	return &Writer{node: &n}
}

// Root returns the tree this writer (and everything nested under it) has
// built. Valid to call at any point; most useful after the top-level
// write completes.
func (w *Writer) Root() ast.Node {
	return *w.node
}

func (w *Writer) IsReader() bool { return false }

func ensureObject(n *ast.Node) {
	if n.Type() != ast.V_OBJECT {
		*n = ast.NewObject(nil)
	}
}

func (w *Writer) HasMember(name serial.Name) bool {
	if w.node.Type() != ast.V_OBJECT {
		return false
	}
	field := w.node.Get(name.String())
	return field != nil && field.Exists()
}

func (w *Writer) setField(name serial.Name, value ast.Node) error {
	ensureObject(w.node)
	_, err := w.node.Set(name.String(), value)
	if err == nil {
		metrics.SerialWriteElements.WithLabelValues(metricFormatJSON).Inc()
	}
	return err
}

func (w *Writer) Int32(name serial.Name, v *int32) error {
	return w.setField(name, ast.NewNumber(strconv.FormatInt(int64(*v), 10)))
}

func (w *Writer) Uint32(name serial.Name, v *uint32) error {
	return w.setField(name, ast.NewNumber(strconv.FormatUint(uint64(*v), 10)))
}

// Float32 writes the value as a plain JSON number. A value with no
// fractional part (e.g. 3.0) is still emitted through the general
// formatter rather than specially cased as an integer literal, matching
// sonic/ast's own behavior (SPEC_FULL.md §10, carried from
// original_source's json_serializer.cpp number-formatting notes minus its
// engine-specific pretty-printing).
func (w *Writer) Float32(name serial.Name, v *float32) error {
	return w.setField(name, ast.NewNumber(strconv.FormatFloat(float64(*v), 'g', -1, 32)))
}

func (w *Writer) Bool(name serial.Name, v *bool) error {
	return w.setField(name, ast.NewBool(*v))
}

func (w *Writer) Bytes(name serial.Name, v *[]byte) error {
	return w.setField(name, ast.NewString(string(*v)))
}

// Object enters a nested object scope over a fresh local node; if the
// callback leaves it as anything other than a non-empty object, the field
// is elided entirely rather than written as an explicit null.
func (w *Writer) Object(name serial.Name, fn func(serial.Serializer) error) error {
	child := ast.NewNull()
	sub := &Writer{node: &child}
	if err := fn(sub); err != nil {
		return err
	}
	if child.Type() != ast.V_OBJECT {
		return nil
	}
	n, err := child.Len()
	if err != nil || n == 0 {
		return nil
	}
	return w.setField(name, child)
}

// Iterate visits the fields written so far, in insertion order (ast
// objects are backed by an ordered pair slice, not a Go map, so order is
// input order — a strictly stronger guarantee than spec.md requires).
func (w *Writer) Iterate(fn func(s serial.Serializer, name serial.Name) (bool, error)) error {
	if w.node.Type() != ast.V_OBJECT {
		return nil
	}
	it, err := w.node.Properties()
	if err != nil {
		return err
	}
	for it.HasNext() {
		var pair ast.Pair
		if !it.Next(&pair) {
			break
		}
		sub := &Writer{node: &pair.Value}
		cont, err := fn(sub, serial.NewName(pair.Key))
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
	return nil
}

func (w *Writer) Int32Array(name serial.Name, arr serial.Int32Array) error {
	n := arr.Len()
	if arr.SupportsBulk() && len(arr.GetAll()) != n {
		return merr.WithName(merr.ErrBulkContractViolated, name.String())
	}
	nodes := make([]ast.Node, n)
	for i := 0; i < n; i++ {
		nodes[i] = ast.NewNumber(strconv.FormatInt(int64(arr.Get(i)), 10))
	}
	return w.setField(name, ast.NewArray(nodes))
}

func (w *Writer) Uint32Array(name serial.Name, arr serial.Uint32Array) error {
	n := arr.Len()
	if arr.SupportsBulk() && len(arr.GetAll()) != n {
		return merr.WithName(merr.ErrBulkContractViolated, name.String())
	}
	nodes := make([]ast.Node, n)
	for i := 0; i < n; i++ {
		nodes[i] = ast.NewNumber(strconv.FormatUint(uint64(arr.Get(i)), 10))
	}
	return w.setField(name, ast.NewArray(nodes))
}

func (w *Writer) Float32Array(name serial.Name, arr serial.Float32Array) error {
	n := arr.Len()
	if arr.SupportsBulk() && len(arr.GetAll()) != n {
		return merr.WithName(merr.ErrBulkContractViolated, name.String())
	}
	nodes := make([]ast.Node, n)
	for i := 0; i < n; i++ {
		nodes[i] = ast.NewNumber(strconv.FormatFloat(float64(arr.Get(i)), 'g', -1, 32))
	}
	return w.setField(name, ast.NewArray(nodes))
}

func (w *Writer) BoolArray(name serial.Name, arr serial.BoolArray) error {
	n := arr.Len()
	if arr.SupportsBulk() && len(arr.GetAll()) != n {
		return merr.WithName(merr.ErrBulkContractViolated, name.String())
	}
	nodes := make([]ast.Node, n)
	for i := 0; i < n; i++ {
		nodes[i] = ast.NewBool(arr.Get(i))
	}
	return w.setField(name, ast.NewArray(nodes))
}

func (w *Writer) NameArray(name serial.Name, arr serial.NameArray) error {
	n := arr.Len()
	if arr.SupportsBulk() && len(arr.GetAll()) != n {
		return merr.WithName(merr.ErrBulkContractViolated, name.String())
	}
	nodes := make([]ast.Node, n)
	for i := 0; i < n; i++ {
		nodes[i] = ast.NewString(arr.Get(i).String())
	}
	return w.setField(name, ast.NewArray(nodes))
}

// WriteObjectArray emits n entries, each built by its own fresh local
// node via fn; an index fn leaves untouched serializes as JSON null.
func (w *Writer) WriteObjectArray(name serial.Name, n int, fn func(serial.Serializer, int) error) error {
	entries := make([]ast.Node, n)
	for i := range entries {
		entries[i] = ast.NewNull()
		sub := &Writer{node: &entries[i]}
		if err := fn(sub, i); err != nil {
			return err
		}
	}
	return w.setField(name, ast.NewArray(entries))
}

func (w *Writer) ObjectArraySize(name serial.Name) (int, bool) {
	return 0, false
}

func (w *Writer) ReadObjectArray(name serial.Name, fn func(serial.Serializer, int) error) error {
	return merr.WithName(merr.ErrWrongDirection, name.String())
}

var _ serial.Serializer = (*Writer)(nil)
