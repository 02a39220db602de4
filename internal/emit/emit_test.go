package emit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oskari/fictc/internal/analyzer"
	"github.com/oskari/fictc/internal/classify"
	"github.com/oskari/fictc/internal/diag"
	"github.com/oskari/fictc/internal/parser"
	"github.com/oskari/fictc/internal/transform"
)

func parseModule(t *testing.T, src string) *analyzer.Module {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "App.tsx")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := parser.NewParser()
	if err != nil {
		t.Fatalf("parser.NewParser: %v", err)
	}
	defer p.Close()

	ast, err := p.ParseFile(path, []byte(src))
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	module := &analyzer.Module{
		FilePath: path,
		AST:      ast,
		Imports:  analyzer.ExtractImports(ast),
	}
	module.Macros = analyzer.AnalyzeMacroImports(module)
	module.ExportedNames = analyzer.CollectExportedNames(module)
	return module
}

func TestValidateMacroImports_Unimported(t *testing.T) {
	module := parseModule(t, `let count = $state(0);`)
	if err := ValidateMacroImports(module); err == nil {
		t.Fatal("expected EFICT-UNIMPORTED for an unimported $state use")
	}
}

func TestValidateMacroImports_Imported(t *testing.T) {
	module := parseModule(t, `import { $state } from 'fict';
let count = $state(0);`)
	if err := ValidateMacroImports(module); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestEmit_InjectsRuntimeImportAndStripsFramework(t *testing.T) {
	src := `import { $state } from 'fict';
let count = $state(0);
`
	module := parseModule(t, src)
	res, err := classify.Classify(module)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	v := transform.NewVisitor(module, res, diag.NewCollector(nil), transform.Options{})
	edits, err := v.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out, err := Emit(module, edits, v.HelpersUsed(), "fict-runtime")
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if strings.Contains(out, "from 'fict'") || strings.Contains(out, `from "fict"`) {
		t.Errorf("expected framework import stripped, got:\n%s", out)
	}
	if !strings.Contains(out, `from "fict-runtime"`) {
		t.Errorf("expected runtime import injected, got:\n%s", out)
	}
	if !strings.Contains(out, "Signal as __fictSignal") {
		t.Errorf("expected Signal helper imported, got:\n%s", out)
	}
}

func TestEmit_ExtendsExistingRuntimeImportInPlace(t *testing.T) {
	src := `import { Effect as __fictEffect } from 'fict-runtime';
import { $state } from 'fict';
let count = $state(0);
`
	module := parseModule(t, src)
	res, err := classify.Classify(module)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	v := transform.NewVisitor(module, res, diag.NewCollector(nil), transform.Options{})
	edits, err := v.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	out, err := Emit(module, edits, v.HelpersUsed(), "fict-runtime")
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if strings.Count(out, `from "fict-runtime"`)+strings.Count(out, `from 'fict-runtime'`) != 1 {
		t.Errorf("expected exactly one fict-runtime import statement, got:\n%s", out)
	}
	if !strings.Contains(out, "Effect as __fictEffect") {
		t.Errorf("expected the pre-existing Effect specifier preserved, got:\n%s", out)
	}
	if !strings.Contains(out, "Signal as __fictSignal") {
		t.Errorf("expected the Signal specifier merged in, got:\n%s", out)
	}
}
