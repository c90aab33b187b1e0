package jsonformat

import (
	"github.com/bytedance/sonic/ast"

	"github.com/lk2023060901/gosave/pkg/metrics"
	"github.com/lk2023060901/gosave/pkg/serial"
	"github.com/lk2023060901/gosave/pkg/serial/serialutil"
	"github.com/lk2023060901/gosave/pkg/util/merr"
)

// Reader drives the Serializer contract read-only over a borrowed
// sonic/ast.Node. It carries no mutable state, so multiple Readers over
// disjoint branches of the same tree may be driven concurrently.
type Reader struct {
	node *ast.Node
}

// NewReader wraps a parsed (or hand-built) node tree for reading.
func NewReader(root *ast.Node) *Reader {
	return &Reader{node: root}
}

func (r *Reader) IsReader() bool { return true }

func (r *Reader) field(name serial.Name) *ast.Node {
	if r.node.Type() != ast.V_OBJECT {
		return nil
	}
	n := r.node.Get(name.String())
	if n == nil || !n.Exists() {
		return nil
	}
	return n
}

func (r *Reader) HasMember(name serial.Name) bool {
	return r.field(name) != nil
}

func (r *Reader) readScalar(name serial.Name, target serial.ValueType) (serialutil.Numeric, bool) {
	n := r.field(name)
	if n == nil {
		return serialutil.Numeric{}, false
	}
	if n.Type() == ast.V_ARRAY {
		// Array-to-scalar does not collapse (spec.md §4.B Open Question i).
		return serialutil.Numeric{}, false
	}
	num, ok := numericFromNode(n)
	if !ok {
		return serialutil.Numeric{}, false
	}
	widened, ok := serialutil.Widen(num, target)
	if ok {
		metrics.SerialReadElements.WithLabelValues(metricFormatJSON).Inc()
	}
	return widened, ok
}

func (r *Reader) Int32(name serial.Name, v *int32) error {
	if n, ok := r.readScalar(name, serial.TypeInt); ok {
		*v = n.AsInt32()
	}
	return nil
}

func (r *Reader) Uint32(name serial.Name, v *uint32) error {
	if n, ok := r.readScalar(name, serial.TypeUint); ok {
		*v = n.AsUint32()
	}
	return nil
}

func (r *Reader) Float32(name serial.Name, v *float32) error {
	if n, ok := r.readScalar(name, serial.TypeFloat); ok {
		*v = n.AsFloat32()
	}
	return nil
}

func (r *Reader) Bool(name serial.Name, v *bool) error {
	if n, ok := r.readScalar(name, serial.TypeBool); ok {
		*v = n.AsBool()
	}
	return nil
}

func (r *Reader) Bytes(name serial.Name, v *[]byte) error {
	n := r.field(name)
	if n == nil || n.Type() != ast.V_STRING {
		return nil
	}
	s, err := n.String()
	if err != nil {
		return nil
	}
	*v = []byte(s)
	return nil
}

func (r *Reader) Object(name serial.Name, fn func(serial.Serializer) error) error {
	n := r.field(name)
	if n == nil || n.Type() != ast.V_OBJECT {
		return nil
	}
	metrics.SerialReadElements.WithLabelValues(metricFormatJSON).Inc()
	sub := &Reader{node: n}
	return fn(sub)
}

func (r *Reader) Iterate(fn func(s serial.Serializer, name serial.Name) (bool, error)) error {
	if r.node.Type() != ast.V_OBJECT {
		return nil
	}
	it, err := r.node.Properties()
	if err != nil {
		return err
	}
	for it.HasNext() {
		var pair ast.Pair
		if !it.Next(&pair) {
			break
		}
		sub := &Reader{node: &pair.Value}
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

// readArray handles both a real JSON array and the scalar-as-array
// synthesis rule, returning the element nodes (one synthesized node for
// the scalar case) or ok=false if the field is absent/inconvertible.
func (r *Reader) readArray(name serial.Name, targetInner serial.ValueType) ([]ast.Node, bool) {
	n := r.field(name)
	if n == nil {
		return nil, false
	}
	if n.Type() == ast.V_ARRAY {
		nodes, err := n.ArrayUseNode()
		if err != nil {
			return nil, false
		}
		metrics.SerialReadElements.WithLabelValues(metricFormatJSON).Inc()
		return nodes, true
	}
	num, ok := numericFromNode(n)
	if !ok {
		return nil, false
	}
	widened, ok := serialutil.Widen(num, targetInner)
	if !ok {
		return nil, false
	}
	return []ast.Node{numericToNode(widened, targetInner)}, true
}

func numericToNode(n serialutil.Numeric, target serial.ValueType) ast.Node {
	switch target {
	case serial.TypeInt:
		return ast.NewNumber(intToString(int64(n.AsInt32())))
	case serial.TypeUint:
		return ast.NewNumber(uintToString(uint64(n.AsUint32())))
	case serial.TypeFloat:
		return ast.NewNumber(floatToString(float64(n.AsFloat32())))
	case serial.TypeBool:
		return ast.NewBool(n.AsBool())
	default:
		return ast.NewNull()
	}
}

func (r *Reader) Int32Array(name serial.Name, arr serial.Int32Array) error {
	nodes, ok := r.readArray(name, serial.TypeInt)
	if !ok {
		return nil
	}
	arr.SetLen(len(nodes))
	for i := range nodes {
		num, ok := numericFromNode(&nodes[i])
		if !ok {
			continue
		}
		if widened, ok := serialutil.Widen(num, serial.TypeInt); ok {
			arr.Set(i, widened.AsInt32())
		}
	}
	return nil
}

func (r *Reader) Uint32Array(name serial.Name, arr serial.Uint32Array) error {
	nodes, ok := r.readArray(name, serial.TypeUint)
	if !ok {
		return nil
	}
	arr.SetLen(len(nodes))
	for i := range nodes {
		num, ok := numericFromNode(&nodes[i])
		if !ok {
			continue
		}
		if widened, ok := serialutil.Widen(num, serial.TypeUint); ok {
			arr.Set(i, widened.AsUint32())
		}
	}
	return nil
}

func (r *Reader) Float32Array(name serial.Name, arr serial.Float32Array) error {
	nodes, ok := r.readArray(name, serial.TypeFloat)
	if !ok {
		return nil
	}
	arr.SetLen(len(nodes))
	for i := range nodes {
		num, ok := numericFromNode(&nodes[i])
		if !ok {
			continue
		}
		if widened, ok := serialutil.Widen(num, serial.TypeFloat); ok {
			arr.Set(i, widened.AsFloat32())
		}
	}
	return nil
}

func (r *Reader) BoolArray(name serial.Name, arr serial.BoolArray) error {
	nodes, ok := r.readArray(name, serial.TypeBool)
	if !ok {
		return nil
	}
	arr.SetLen(len(nodes))
	for i := range nodes {
		num, ok := numericFromNode(&nodes[i])
		if !ok {
			continue
		}
		if widened, ok := serialutil.Widen(num, serial.TypeBool); ok {
			arr.Set(i, widened.AsBool())
		}
	}
	return nil
}

func (r *Reader) NameArray(name serial.Name, arr serial.NameArray) error {
	n := r.field(name)
	if n == nil || n.Type() != ast.V_ARRAY {
		return nil
	}
	nodes, err := n.ArrayUseNode()
	if err != nil {
		return nil
	}
	arr.SetLen(len(nodes))
	for i := range nodes {
		if nodes[i].Type() != ast.V_STRING {
			continue
		}
		s, err := nodes[i].String()
		if err != nil {
			continue
		}
		arr.Set(i, serial.NewName(s))
	}
	return nil
}

func (r *Reader) WriteObjectArray(name serial.Name, n int, fn func(serial.Serializer, int) error) error {
	return merr.WithName(merr.ErrWrongDirection, name.String())
}

func (r *Reader) ObjectArraySize(name serial.Name) (int, bool) {
	n := r.field(name)
	if n == nil || n.Type() != ast.V_ARRAY {
		return 0, false
	}
	l, err := n.Len()
	if err != nil {
		return 0, false
	}
	return l, true
}

func (r *Reader) ReadObjectArray(name serial.Name, fn func(serial.Serializer, int) error) error {
	n := r.field(name)
	if n == nil || n.Type() != ast.V_ARRAY {
		return nil
	}
	nodes, err := n.ArrayUseNode()
	if err != nil {
		return nil
	}
	for i := range nodes {
		sub := &Reader{node: &nodes[i]}
		if err := fn(sub, i); err != nil {
			return err
		}
	}
	return nil
}

// Inspect reports name's JSON type as the nearest serial.ValueType, and for
// arrays the inferred element type (spec.md §4.F: any real element makes
// the whole array real, otherwise the first element's type dominates; an
// empty array has no inferrable inner type and reports TypeNull).
// Transcoders use this to pick which Serializer method to drive without
// already knowing the schema.
func (r *Reader) Inspect(name serial.Name) (typ serial.ValueType, innerTyp serial.ValueType, found bool) {
	n := r.field(name)
	if n == nil {
		return 0, 0, false
	}
	switch n.Type() {
	case ast.V_OBJECT:
		return serial.TypeObject, 0, true
	case ast.V_ARRAY:
		nodes, err := n.ArrayUseNode()
		if err != nil {
			return serial.TypeArray, serial.TypeNull, true
		}
		return serial.TypeArray, inferArrayInner(nodes), true
	case ast.V_STRING:
		return serial.TypeString, 0, true
	case ast.V_TRUE, ast.V_FALSE:
		return serial.TypeBool, 0, true
	case ast.V_NUMBER:
		if _, err := n.Int64(); err == nil {
			return serial.TypeInt, 0, true
		}
		return serial.TypeFloat, 0, true
	default:
		return serial.TypeNull, 0, true
	}
}

func inferArrayInner(nodes []ast.Node) serial.ValueType {
	if len(nodes) == 0 {
		return serial.TypeNull
	}
	if nodes[0].Type() == ast.V_OBJECT {
		return serial.TypeObject
	}
	inner := serial.TypeInt
	for i := range nodes {
		switch nodes[i].Type() {
		case ast.V_NUMBER:
			if _, err := nodes[i].Int64(); err != nil {
				inner = serial.TypeFloat
			}
		case ast.V_TRUE, ast.V_FALSE:
			if i == 0 {
				inner = serial.TypeBool
			}
		case ast.V_STRING:
			if i == 0 {
				inner = serial.TypeString
			}
		}
	}
	return inner
}

var _ serial.Serializer = (*Reader)(nil)
