package analyzer

import (
	"testing"

	"github.com/oskari/fictc/internal/parser"
)

func TestExtractImports(t *testing.T) {
	// Parse a file with various import types
	content := []byte(`
import React from 'react';
import { $state, $effect } from 'fict';
import * as Utils from './utils';
import Counter from './Counter';
`)

	p, err := parser.NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	defer p.Close()

	ast, err := p.ParseFile("test.tsx", content)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	defer ast.Close()

	imports := ExtractImports(ast)

	// Should find 4 imports
	if len(imports) != 4 {
		t.Errorf("Expected 4 imports, got %d", len(imports))
	}

	// Check first import: default import
	if imports[0].Source != "react" {
		t.Errorf("Expected source 'react', got '%s'", imports[0].Source)
	}
	if imports[0].Default != "React" {
		t.Errorf("Expected default 'React', got '%s'", imports[0].Default)
	}

	// Check second import: named imports
	if imports[1].Source != "fict" {
		t.Errorf("Expected source 'fict', got '%s'", imports[1].Source)
	}
	if len(imports[1].Named) != 2 {
		t.Errorf("Expected 2 named imports, got %d", len(imports[1].Named))
	}

	// Check third import: namespace import
	if imports[2].Source != "./utils" {
		t.Errorf("Expected source './utils', got '%s'", imports[2].Source)
	}
	if imports[2].Namespace != "Utils" {
		t.Errorf("Expected namespace 'Utils', got '%s'", imports[2].Namespace)
	}
}
