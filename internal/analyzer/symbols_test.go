package analyzer

import (
	"strings"
	"testing"

	"github.com/oskari/fictc/internal/parser"
)

func parseModule(t *testing.T, content string) *Module {
	t.Helper()
	p, err := parser.NewParser()
	if err != nil {
		t.Fatalf("failed to create parser: %v", err)
	}
	t.Cleanup(func() { p.Close() })

	ast, err := p.ParseFile("test.tsx", []byte(content))
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	t.Cleanup(func() { ast.Close() })

	return &Module{
		FilePath: "test.tsx",
		AST:      ast,
		Imports:  ExtractImports(ast),
	}
}

func TestAnalyzeMacroImports_Direct(t *testing.T) {
	module := parseModule(t, `import { $state, $effect } from 'fict';`)
	macros := AnalyzeMacroImports(module)

	if !macros.HasState || macros.StateLocal != "$state" {
		t.Errorf("expected $state bound directly, got %+v", macros)
	}
	if !macros.HasEffect || macros.EffectLocal != "$effect" {
		t.Errorf("expected $effect bound directly, got %+v", macros)
	}
}

func TestAnalyzeMacroImports_Aliased(t *testing.T) {
	module := parseModule(t, `import { $state as useState } from 'fict';`)
	macros := AnalyzeMacroImports(module)

	if !macros.HasState || macros.StateLocal != "useState" {
		t.Errorf("expected $state aliased to useState, got %+v", macros)
	}
	if macros.HasEffect {
		t.Error("did not expect $effect to be bound")
	}
}

func TestAnalyzeMacroImports_OtherModuleIgnored(t *testing.T) {
	module := parseModule(t, `import { $state } from './not-fict';`)
	macros := AnalyzeMacroImports(module)

	if macros.HasState {
		t.Error("expected import from a non-framework module to be ignored")
	}
}

func TestCollectExportedNames_ExportClause(t *testing.T) {
	module := parseModule(t, `
const count = 1;
function Widget() {}
export { count, Widget as Component };
`)
	names := CollectExportedNames(module)

	if !names["count"] {
		t.Error("expected count to be collected from export clause")
	}
	if !names["Widget"] {
		t.Error("expected Widget's local name to be collected from export clause")
	}
}

func TestCollectExportedNames_DefaultIdentifier(t *testing.T) {
	module := parseModule(t, `
function Widget() {}
export default Widget;
`)
	names := CollectExportedNames(module)

	if !names["Widget"] {
		t.Error("expected export default <identifier> to collect the identifier")
	}
}

func TestStripMacroImports_RemovesWholeImport(t *testing.T) {
	module := parseModule(t, `import { $state, $effect } from 'fict';`)
	text, removed := StripMacroImports(module.Imports[0].Node)

	if !removed {
		t.Fatalf("expected import to be entirely removed, got text %q", text)
	}
}

func TestStripMacroImports_KeepsOtherSpecifiers(t *testing.T) {
	module := parseModule(t, `import { $state, onMount } from 'fict';`)
	text, removed := StripMacroImports(module.Imports[0].Node)

	if removed {
		t.Fatal("expected onMount to survive")
	}
	if !strings.Contains(text, "onMount") {
		t.Errorf("expected onMount to remain in %q", text)
	}
	if strings.Contains(text, "$state") {
		t.Errorf("expected $state to be stripped from %q", text)
	}
}
