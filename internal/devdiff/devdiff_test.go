package devdiff

import "testing"

func TestGenerate_NoChange(t *testing.T) {
	p, err := Generate("App.tsx", "let x = 1;\n", "let x = 1;\n")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(p.Hunks) != 0 {
		t.Errorf("expected no hunks for identical content, got %d", len(p.Hunks))
	}
}

func TestGenerate_Change(t *testing.T) {
	p, err := Generate("App.tsx", "let count = $state(0);\n", "let count = Signal(0);\n")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(p.Hunks) == 0 {
		t.Fatal("expected at least one hunk for changed content")
	}
}
