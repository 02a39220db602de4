// Package parser wraps the tree-sitter TSX grammar behind a small,
// read-only AST facade. fictc never mutates the parsed tree: every stage
// downstream treats *Node as an immutable view over the original source
// bytes and expresses rewrites as byte-range edits (see internal/transform),
// not as new tree-sitter nodes.
package parser

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Parser parses one source file into an AST.
type Parser interface {
	ParseFile(filePath string, content []byte) (*AST, error)
	Close() error
}

// AST represents a parsed module.
type AST struct {
	Root     *Node
	FilePath string
	Language string
	Source   []byte
	tree     *sitter.Tree // kept for cleanup
}

// Node is an immutable view over one tree-sitter node and the source
// buffer it was parsed from.
type Node struct {
	tsNode  *sitter.Node
	content []byte
}
