package transform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oskari/fictc/internal/analyzer"
	"github.com/oskari/fictc/internal/classify"
	"github.com/oskari/fictc/internal/diag"
	"github.com/oskari/fictc/internal/parser"
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

func TestVisitor_RewritesSignalDeclarationAndReads(t *testing.T) {
	src := `import { $state } from 'fict';
let count = $state(0);
function increment() {
  count++;
}
`
	module := parseModule(t, src)
	res, err := classify.Classify(module)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	classify.ClassifyGetterOnly(module, res)

	v := NewVisitor(module, res, diag.NewCollector(nil), Options{})
	edits, err := v.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := edits.Apply(module.AST.Source)
	if !strings.Contains(out, "Signal(0)") {
		t.Errorf("expected Signal(0) in output, got:\n%s", out)
	}
	if !strings.Contains(out, "count(count() + 1)") {
		t.Errorf("expected increment rewritten to count(count() + 1), got:\n%s", out)
	}
}

func TestVisitor_RejectsStateInsideIf(t *testing.T) {
	src := `import { $state } from 'fict';
function App() {
  if (true) {
    let count = $state(0);
  }
}
`
	module := parseModule(t, src)
	res, err := classify.Classify(module)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	v := NewVisitor(module, res, diag.NewCollector(nil), Options{})
	_, err = v.Run()
	if err == nil {
		t.Fatal("expected a fatal error for $state inside an if statement")
	}
}

func TestVisitor_RewritesFunctionScopedSignal(t *testing.T) {
	src := `import { $state } from 'fict';
function Counter() {
  let count = $state(0);
  return <div onClick={() => count++}>{count}</div>;
}
`
	module := parseModule(t, src)
	res, err := classify.Classify(module)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	classify.ClassifyGetterOnly(module, res)

	v := NewVisitor(module, res, diag.NewCollector(nil), Options{})
	edits, err := v.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := edits.Apply(module.AST.Source)
	if !strings.Contains(out, "Signal(0)") {
		t.Errorf("expected Signal(0) for a function-scoped $state, got:\n%s", out)
	}
	if !strings.Contains(out, "count(count() + 1)") {
		t.Errorf("expected count++ rewritten, got:\n%s", out)
	}
	if !strings.Contains(out, "Insert(() => count())") {
		t.Errorf("expected the JSX read of count lowered to an Insert producer calling count(), got:\n%s", out)
	}
}

func TestVisitor_DestructuredPropsBecomeAccessors(t *testing.T) {
	src := `function Greeting({ name, count = 0 }) {
  return <div>{name}{count}</div>;
}
`
	module := parseModule(t, src)
	res, err := classify.Classify(module)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	classify.ClassifyGetterOnly(module, res)

	v := NewVisitor(module, res, diag.NewCollector(nil), Options{})
	edits, err := v.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := edits.Apply(module.AST.Source)
	if !strings.Contains(out, "function Greeting(__props)") {
		t.Errorf("expected a single __props parameter, got:\n%s", out)
	}
	if !strings.Contains(out, "const name = () => __props.name;") {
		t.Errorf("expected a plain name accessor, got:\n%s", out)
	}
	if !strings.Contains(out, "tmp === undefined ? 0 : tmp") {
		t.Errorf("expected a defaulted accessor, got:\n%s", out)
	}
	if !strings.Contains(out, "Insert(() => name())") || !strings.Contains(out, "Insert(() => count())") {
		t.Errorf("expected both destructured names read as calls inside Insert producers in JSX, got:\n%s", out)
	}
}

func TestVisitor_GroupsRegionAcrossIfBranches(t *testing.T) {
	src := `import { $state } from 'fict';
let count = $state(0);
function Summary() {
  let heading, extra;
  if (count > 0) {
    heading = ` + "`${count} items`" + `;
    extra = count * 10;
  }
  return <div>{heading}{extra}</div>;
}
`
	module := parseModule(t, src)
	res, err := classify.Classify(module)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	classify.ClassifyGetterOnly(module, res)

	v := NewVisitor(module, res, diag.NewCollector(nil), Options{})
	edits, err := v.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := edits.Apply(module.AST.Source)
	if !strings.Contains(out, "__fictRegion_0") {
		t.Errorf("expected a grouped region memo, got:\n%s", out)
	}
	if !strings.Contains(out, "return { heading, extra };") {
		t.Errorf("expected a combined region return object, got:\n%s", out)
	}
	if !strings.Contains(out, "const heading = () => __fictRegion_0().heading;") {
		t.Errorf("expected a heading region accessor, got:\n%s", out)
	}
	if !strings.Contains(out, "const extra = () => __fictRegion_0().extra;") {
		t.Errorf("expected an extra region accessor, got:\n%s", out)
	}
}

func TestVisitor_RewritesMemoDeclaration(t *testing.T) {
	src := `import { $state } from 'fict';
let count = $state(0);
const doubled = count * 2;
export function App() {
  return <div>{doubled}</div>;
}
`
	module := parseModule(t, src)
	res, err := classify.Classify(module)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	classify.ClassifyGetterOnly(module, res)

	v := NewVisitor(module, res, diag.NewCollector(nil), Options{})
	edits, err := v.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := edits.Apply(module.AST.Source)
	if !strings.Contains(out, "Memo(() => count() * 2)") {
		t.Errorf("expected doubled memoized, got:\n%s", out)
	}
}
