package parser

import (
	"testing"
)

func TestNewParser(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer parser.Close()

	if parser == nil {
		t.Fatal("Parser is nil")
	}
}

func TestParseSimpleComponent(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer parser.Close()

	content := []byte(`
let count = $state(0);
const doubled = count * 2;
export function Counter() {
  return <div>{doubled}</div>;
}
`)

	ast, err := parser.ParseFile("simple.tsx", content)
	if err != nil {
		t.Fatalf("Failed to parse file: %v", err)
	}
	defer ast.Close()

	if ast.Root == nil {
		t.Fatal("AST root is nil")
	}

	if ast.Root.Type() != "program" {
		t.Errorf("Expected root type 'program', got '%s'", ast.Root.Type())
	}
}

func TestParseSyntaxError(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer parser.Close()

	_, err = parser.ParseFile("broken.tsx", []byte(`function( {`))
	if err == nil {
		t.Fatal("expected a syntax error")
	}
}

func TestNodeMethods(t *testing.T) {
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer parser.Close()

	content := []byte(`function test() { return <div>Hello</div>; }`)
	ast, err := parser.ParseFile("test.tsx", content)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	defer ast.Close()

	root := ast.Root
	if root == nil {
		t.Fatal("Root is nil")
	}

	// Test Type()
	if root.Type() != "program" {
		t.Errorf("Expected type 'program', got '%s'", root.Type())
	}

	// Test Children()
	children := root.Children()
	if len(children) == 0 {
		t.Error("Expected children, got none")
	}

	// Test NamedChildren()
	namedChildren := root.NamedChildren()
	if len(namedChildren) == 0 {
		t.Error("Expected named children, got none")
	}

	// Test StartPoint()
	row, col := root.StartPoint()
	if row != 0 || col != 0 {
		t.Errorf("Expected start point (0, 0), got (%d, %d)", row, col)
	}

	// Test StartByte/EndByte round-trip against the source buffer
	if root.StartByte() != 0 {
		t.Errorf("Expected start byte 0, got %d", root.StartByte())
	}
	if int(root.EndByte()) != len(content) {
		t.Errorf("Expected end byte %d, got %d", len(content), root.EndByte())
	}
}
