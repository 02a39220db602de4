package analyzer

import "github.com/oskari/fictc/internal/parser"

// NamedImport represents a single named import with optional alias
type NamedImport struct {
	ImportedName string // The name being imported from the module
	LocalName    string // The local name (alias), same as ImportedName if no alias
}

// Import represents an import statement
type Import struct {
	Source    string        // Import path: "./Counter", "fict", etc.
	Default   string        // Default import: "React" in "import React from 'react'"
	Named     []NamedImport // Named imports: e.g., {ImportedName: "$state", LocalName: "$state"}
	Namespace string        // Namespace: "Utils" in "import * as Utils from './utils'"
	Node      *parser.Node  // The import_statement node, for stage 5 rewriting
}

// Module represents a parsed file with metadata gathered by stage 1.
type Module struct {
	FilePath      string
	AST           *parser.AST
	Imports       []Import
	Macros        MacroImports
	ExportedNames map[string]bool
}
