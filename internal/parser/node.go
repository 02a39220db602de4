package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// wrapNode wraps a tree-sitter node in our Node type
func wrapNode(tsNode *sitter.Node, content []byte) *Node {
	if tsNode == nil {
		return nil
	}

	return &Node{
		tsNode:  tsNode,
		content: content,
	}
}

// Type returns the node type (e.g., "function_declaration", "call_expression")
func (n *Node) Type() string {
	if n == nil || n.tsNode == nil {
		return ""
	}
	return n.tsNode.Type()
}

// Text returns the source code text for this node
func (n *Node) Text() string {
	if n == nil || n.tsNode == nil {
		return ""
	}
	return n.tsNode.Content(n.content)
}

// Children returns all child nodes
func (n *Node) Children() []*Node {
	if n == nil || n.tsNode == nil {
		return nil
	}

	count := int(n.tsNode.ChildCount())
	children := make([]*Node, 0, count)

	for i := 0; i < count; i++ {
		child := n.tsNode.Child(i)
		if child != nil {
			children = append(children, wrapNode(child, n.content))
		}
	}

	return children
}

// NamedChildren returns only named child nodes (skips punctuation, etc.)
func (n *Node) NamedChildren() []*Node {
	if n == nil || n.tsNode == nil {
		return nil
	}

	count := int(n.tsNode.NamedChildCount())
	children := make([]*Node, 0, count)

	for i := 0; i < count; i++ {
		child := n.tsNode.NamedChild(i)
		if child != nil {
			children = append(children, wrapNode(child, n.content))
		}
	}

	return children
}

// ChildByFieldName returns a child node by field name
func (n *Node) ChildByFieldName(field string) *Node {
	if n == nil || n.tsNode == nil {
		return nil
	}

	child := n.tsNode.ChildByFieldName(field)
	return wrapNode(child, n.content)
}

// Parent returns the syntactic parent of this node, or nil at the root.
func (n *Node) Parent() *Node {
	if n == nil || n.tsNode == nil {
		return nil
	}
	return wrapNode(n.tsNode.Parent(), n.content)
}

// StartPoint returns the starting position of this node
func (n *Node) StartPoint() (row, col uint32) {
	if n == nil || n.tsNode == nil {
		return 0, 0
	}
	point := n.tsNode.StartPoint()
	return point.Row, point.Column
}

// EndPoint returns the ending position of this node
func (n *Node) EndPoint() (row, col uint32) {
	if n == nil || n.tsNode == nil {
		return 0, 0
	}
	point := n.tsNode.EndPoint()
	return point.Row, point.Column
}

// StartByte returns the byte offset where this node begins in the source.
// Edits (see internal/transform) are keyed by this range rather than by
// row/column, since splicing text is a byte-level operation.
func (n *Node) StartByte() uint32 {
	if n == nil || n.tsNode == nil {
		return 0
	}
	return n.tsNode.StartByte()
}

// EndByte returns the byte offset where this node ends in the source.
func (n *Node) EndByte() uint32 {
	if n == nil || n.tsNode == nil {
		return 0
	}
	return n.tsNode.EndByte()
}

// IsNamed reports whether this is a named (vs. anonymous/punctuation) node.
func (n *Node) IsNamed() bool {
	if n == nil || n.tsNode == nil {
		return false
	}
	return n.tsNode.IsNamed()
}

// FunctionName returns the callee text of a call_expression, or "" if n is
// not a call. For a member-expression callee ("obj.fn") the full dotted
// text is returned.
func (n *Node) FunctionName() string {
	if n == nil || n.Type() != "call_expression" {
		return ""
	}
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	return fn.Text()
}

// IsCallTo reports whether this node is a call_expression whose callee is
// exactly name, or — for namespaced access like "pkg.name" — whose callee
// ends in ".name". This generalizes the teacher's hook/memo name-matching
// (IsHookCall, isReactMemo) to any tracked macro or runtime identifier.
func (n *Node) IsCallTo(name string) bool {
	fn := n.FunctionName()
	if fn == "" {
		return false
	}
	if fn == name {
		return true
	}
	return strings.HasSuffix(fn, "."+name)
}

// Arguments returns the named argument expressions of a call_expression.
func (n *Node) Arguments() []*Node {
	if n == nil || n.Type() != "call_expression" {
		return nil
	}
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	return args.NamedChildren()
}

// DeclarationKeyword returns "let"/"const"/"var" for a lexical_declaration
// or variable_declaration node (its first, anonymous child), or "" for any
// other node type.
func (n *Node) DeclarationKeyword() string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "lexical_declaration", "variable_declaration":
	default:
		return ""
	}
	children := n.Children()
	if len(children) == 0 {
		return ""
	}
	return children[0].Text()
}

// Walk traverses the AST depth-first, calling visitor for each node.
// Returning false from visitor skips that node's children.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}

	// Call visitor; if it returns false, skip this node's children
	if !visitor(n) {
		return
	}

	// Recursively visit children
	for _, child := range n.Children() {
		child.Walk(visitor)
	}
}
