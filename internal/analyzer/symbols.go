package analyzer

import (
	"github.com/oskari/fictc/internal/parser"
)

// FrameworkModule is the module specifier user code imports the reactive
// macros from: import { $state, $effect } from "fict".
const FrameworkModule = "fict"

// MacroNames are the identifiers stage 1 tracks as magic, macro-like
// bindings rather than ordinary function calls.
const (
	StateMacro  = "$state"
	EffectMacro = "$effect"
)

// MacroImports records whether $state/$effect are in scope for a module,
// and under which local name (accounting for import aliasing:
// import { $state as useState } from "fict").
type MacroImports struct {
	HasState    bool
	HasEffect   bool
	StateLocal  string
	EffectLocal string
}

// AnalyzeMacroImports scans module's top-level imports for specifiers
// bound to the framework module and records whether $state/$effect are
// locally bound, direct or aliased.
func AnalyzeMacroImports(module *Module) MacroImports {
	var mi MacroImports

	for _, imp := range module.Imports {
		if imp.Source != FrameworkModule {
			continue
		}
		for _, named := range imp.Named {
			switch named.ImportedName {
			case StateMacro:
				mi.HasState = true
				mi.StateLocal = named.LocalName
			case EffectMacro:
				mi.HasEffect = true
				mi.EffectLocal = named.LocalName
			}
		}
	}

	return mi
}

// CollectExportedNames returns the union of every local name a module
// exports: export { a, b as c } clauses without a module specifier, and
// the referent of export default <identifier>. Names introduced directly
// by export let/const/function declarations are recognized separately
// when those declarations are visited by the classifier.
func CollectExportedNames(module *Module) map[string]bool {
	names := make(map[string]bool)

	module.AST.Root.Walk(func(node *parser.Node) bool {
		if node.Type() != "export_statement" {
			return true
		}

		// export default <identifier>
		if value := node.ChildByFieldName("value"); value != nil && value.Type() == "identifier" {
			names[value.Text()] = true
			return true
		}

		for _, child := range node.NamedChildren() {
			if child.Type() != "export_clause" {
				continue
			}
			for _, spec := range child.NamedChildren() {
				if spec.Type() != "export_specifier" {
					continue
				}
				ids := spec.NamedChildren()
				if len(ids) == 0 {
					continue
				}
				// export { local as exported } -> the LOCAL identifier is
				// what matters for this pass; the exported alias is
				// irrelevant to classification.
				names[ids[0].Text()] = true
			}
		}

		return true
	})

	return names
}

// StripMacroImports removes the $state/$effect specifiers from a
// framework-module import declaration, leaving other named imports
// (if any) untouched. Returns the replacement text for the whole
// import_statement node, and removed=true if nothing is left to import
// and the statement should be deleted outright.
func StripMacroImports(node *parser.Node) (text string, removed bool) {
	clause := findImportClause(node)
	if clause == nil {
		return node.Text(), false
	}

	named := findNamedImports(clause)
	if named == nil {
		return node.Text(), false
	}

	kept := make([]string, 0)
	for _, spec := range named.NamedChildren() {
		if spec.Type() != "import_specifier" {
			continue
		}
		ids := spec.NamedChildren()
		if len(ids) == 0 {
			continue
		}
		importedName := ids[0].Text()
		if importedName == StateMacro || importedName == EffectMacro {
			continue
		}
		kept = append(kept, spec.Text())
	}

	hasDefaultOrNamespace := false
	for _, child := range clause.NamedChildren() {
		if child.Type() == "identifier" || child.Type() == "namespace_import" {
			hasDefaultOrNamespace = true
		}
	}

	if len(kept) == 0 && !hasDefaultOrNamespace {
		return "", true
	}
	if len(kept) == 0 {
		// Default/namespace import survives; drop the named braces entirely.
		return buildImportWithoutNamed(node, clause), false
	}

	return buildImportWithNamed(node, clause, named, kept), false
}

func findImportClause(node *parser.Node) *parser.Node {
	for _, child := range node.NamedChildren() {
		if child.Type() == "import_clause" {
			return child
		}
	}
	return nil
}

func findNamedImports(clause *parser.Node) *parser.Node {
	for _, child := range clause.NamedChildren() {
		if child.Type() == "named_imports" {
			return child
		}
	}
	return nil
}

// buildImportWithNamed reconstructs the import statement's source text
// with a narrowed named_imports list, preserving everything else
// byte-for-byte (default import, source string, quote style).
func buildImportWithNamed(node, clause, named *parser.Node, kept []string) string {
	full := node.Text()
	start := named.StartByte() - node.StartByte()
	end := named.EndByte() - node.StartByte()
	replacement := "{ " + joinSpecifiers(kept) + " }"
	return full[:start] + replacement + full[end:]
}

func buildImportWithoutNamed(node, clause *parser.Node) string {
	// Conservative fallback: only default/namespace import survives, so
	// replace the whole clause with just that child's own text.
	full := node.Text()
	clauseStart := clause.StartByte() - node.StartByte()
	clauseEnd := clause.EndByte() - node.StartByte()

	for _, child := range clause.NamedChildren() {
		if child.Type() == "identifier" || child.Type() == "namespace_import" {
			return full[:clauseStart] + child.Text() + full[clauseEnd:]
		}
	}
	return full
}

func joinSpecifiers(specs []string) string {
	out := ""
	for i, s := range specs {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
