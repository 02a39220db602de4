package region

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oskari/fictc/internal/parser"
)

func parseBody(t *testing.T, src string) []*parser.Node {
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

	var fn *parser.Node
	ast.Root.Walk(func(n *parser.Node) bool {
		if fn != nil {
			return false
		}
		if n.Type() == "function_declaration" {
			fn = n
			return false
		}
		return true
	})
	if fn == nil {
		t.Fatal("expected a function_declaration in source")
	}
	return fn.ChildByFieldName("body").NamedChildren()
}

func tracked(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestDetect_CanonicalTwoOutputShape(t *testing.T) {
	stmts := parseBody(t, `function Summary() {
  let heading, extra;
  if (count > 0) {
    heading = count;
    extra = count * 10;
  }
  return heading;
}
`)
	cand, ok := Detect(stmts, 0, tracked("count"))
	if !ok {
		t.Fatal("expected Detect to recognize the canonical let+if shape")
	}
	if len(cand.Outputs) != 2 || cand.Outputs[0] != "heading" || cand.Outputs[1] != "extra" {
		t.Errorf("expected outputs [heading extra], got %v", cand.Outputs)
	}
}

func TestDetect_FallsBackWhenFewerThanTwoOutputs(t *testing.T) {
	stmts := parseBody(t, `function Summary() {
  let heading, extra;
  if (count > 0) {
    heading = count;
  }
  return heading;
}
`)
	_, ok := Detect(stmts, 0, tracked("count"))
	if ok {
		t.Fatal("expected Detect to decline a region with only one assigned output")
	}
}

func TestDetect_DeclinesWhenNothingTracked(t *testing.T) {
	stmts := parseBody(t, `function Summary() {
  let heading, extra;
  if (flag) {
    heading = "a";
    extra = "b";
  }
  return heading;
}
`)
	_, ok := Detect(stmts, 0, tracked("count"))
	if ok {
		t.Fatal("expected Detect to decline a region that reads nothing tracked")
	}
}

func TestExclusiveOutputs_BothBranchesDisqualifies(t *testing.T) {
	stmts := parseBody(t, `function Summary() {
  let heading, extra;
  if (count > 0) {
    heading = count;
    extra = 1;
  } else {
    heading = "none";
    extra = 2;
  }
  return heading;
}
`)
	cand, ok := Detect(stmts, 0, tracked("count"))
	if !ok {
		t.Fatal("expected Detect to recognize the region")
	}
	_, _, exclusive := ExclusiveOutputs(cand.If, cand.Outputs)
	if exclusive {
		t.Error("expected exclusive=false since heading is assigned in both branches")
	}
}

func TestExclusiveOutputs_PerBranchOwnership(t *testing.T) {
	stmts := parseBody(t, `function Summary() {
  let heading, warning;
  if (count > 0) {
    heading = count;
  } else {
    warning = "empty";
  }
  return heading;
}
`)
	cand, ok := Detect(stmts, 0, tracked("count"))
	if !ok {
		t.Fatal("expected Detect to recognize the region")
	}
	onlyCons, onlyAlt, exclusive := ExclusiveOutputs(cand.If, cand.Outputs)
	if !exclusive {
		t.Fatal("expected exclusive=true when each output is owned by exactly one branch")
	}
	if len(onlyCons) != 1 || onlyCons[0] != "heading" {
		t.Errorf("expected onlyConsequence=[heading], got %v", onlyCons)
	}
	if len(onlyAlt) != 1 || onlyAlt[0] != "warning" {
		t.Errorf("expected onlyAlternative=[warning], got %v", onlyAlt)
	}
}
