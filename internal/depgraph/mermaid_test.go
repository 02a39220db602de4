package depgraph

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestToMermaid_RendersNodesAndEdges(t *testing.T) {
	g := New()
	a := g.AddNode("count", KindSignal, "App.tsx", 1)
	b := g.AddNode("doubled", KindMemo, "App.tsx", 2)
	g.AddEdge(EdgeDependsOn, b, a)

	got := g.ToMermaid()

	want := []string{
		"flowchart TD",
		sanitizeID(a) + `["count (signal)"]`,
		sanitizeID(b) + `["doubled (memo)"]`,
		sanitizeID(b) + " -->|depends_on| " + sanitizeID(a),
		"style " + sanitizeID(a) + " fill:#e1f5e1",
		"style " + sanitizeID(b) + " fill:#fff4e1",
	}
	for _, line := range want {
		if !strings.Contains(got, line) {
			t.Errorf("expected rendered Mermaid to contain %q, got:\n%s", line, got)
		}
	}
}

func TestToMermaidWithTitle_IsStableAcrossCalls(t *testing.T) {
	g := New()
	g.AddNode("count", KindSignal, "App.tsx", 1)

	first := g.ToMermaidWithTitle("App.tsx")
	second := g.ToMermaidWithTitle("App.tsx")

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("expected identical renders for an unchanged graph (-first +second):\n%s", diff)
	}
}
