package depgraph

import "testing"

func TestDetectCycles_Acyclic(t *testing.T) {
	g := New()
	a := g.AddNode("a", KindSignal, "test.tsx", 1)
	b := g.AddNode("b", KindMemo, "test.tsx", 2)
	g.AddEdge(EdgeDependsOn, a, b)

	if cycles := g.DetectCycles(); len(cycles) != 0 {
		t.Errorf("expected no cycles, got %d", len(cycles))
	}
}

func TestDetectCycles_SelfReference(t *testing.T) {
	g := New()
	a := g.AddNode("a", KindMemo, "test.tsx", 1)
	g.AddEdge(EdgeDependsOn, a, a)

	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(cycles))
	}
}

func TestDetectCycles_Indirect(t *testing.T) {
	g := New()
	a := g.AddNode("a", KindMemo, "test.tsx", 1)
	b := g.AddNode("b", KindMemo, "test.tsx", 2)
	c := g.AddNode("c", KindMemo, "test.tsx", 3)

	// a depends on b, b depends on c, c depends on a -> cycle
	g.AddEdge(EdgeDependsOn, b, a)
	g.AddEdge(EdgeDependsOn, c, b)
	g.AddEdge(EdgeDependsOn, a, c)

	cycles := g.DetectCycles()
	if len(cycles) == 0 {
		t.Fatal("expected at least one cycle")
	}
}

func TestGenerateNodeID_Stable(t *testing.T) {
	id1 := GenerateNodeID(KindSignal, "count", "App.tsx", 3)
	id2 := GenerateNodeID(KindSignal, "count", "App.tsx", 3)
	if id1 != id2 {
		t.Errorf("expected stable IDs, got %q and %q", id1, id2)
	}

	id3 := GenerateNodeID(KindSignal, "count", "App.tsx", 4)
	if id1 == id3 {
		t.Error("expected different line numbers to produce different IDs")
	}
}
