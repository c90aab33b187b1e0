// Package jsonformat binds the Serializer contract onto a
// github.com/bytedance/sonic/ast.Node tree — sonic is already the
// teacher's JSON library, and its ast package is exactly the "collaborator
// returning/accepting a tree of tagged values" spec.md §1 declares out of
// scope for tokenization (see SPEC_FULL.md §4.D).
package jsonformat

import (
	"github.com/bytedance/sonic/ast"

	"github.com/lk2023060901/gosave/pkg/serial/serialutil"
)

// numericFromNode converts a JSON scalar node into the widening table's
// tagged union. JSON has no separate int/uint/float wire types the way
// the binary codec does, so a number that round-trips through Int64 is
// treated as Int (preserving exactness); anything else falls back to
// Float64.
func numericFromNode(n *ast.Node) (serialutil.Numeric, bool) {
	switch n.Type() {
	case ast.V_NUMBER:
		if i, err := n.Int64(); err == nil {
			return serialutil.NumericInt(int32(i)), true
		}
		if f, err := n.Float64(); err == nil {
			return serialutil.NumericFloat(float32(f)), true
		}
		return serialutil.Numeric{}, false
	case ast.V_TRUE, ast.V_FALSE:
		b, _ := n.Bool()
		return serialutil.NumericBool(b), true
	default:
		return serialutil.Numeric{}, false
	}
}
