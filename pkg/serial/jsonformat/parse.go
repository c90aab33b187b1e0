package jsonformat

import "github.com/bytedance/sonic/ast"

// Parse tokenizes json into a sonic/ast tree ready for NewReader. Actual
// JSON tokenization is the external collaborator spec.md §1 excludes from
// this module's scope; sonic's own parser supplies it.
func Parse(json string) (ast.Node, error) {
	p := ast.NewParser(json)
	return p.Parse()
}

// Marshal renders a node tree (typically the Root of a Writer) back to
// JSON text.
func Marshal(n ast.Node) ([]byte, error) {
	return n.MarshalJSON()
}
