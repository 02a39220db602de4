package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oskari/fictc/internal/config"
)

func TestDiscoverSourceFiles_FiltersByExtensionAndIgnore(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	write("App.tsx", "export const x = 1;")
	write("helper.ts", "export const y = 2;")
	write("App.test.tsx", "export const z = 3;")
	write("README.md", "not a source file")

	cfg := config.DefaultConfig()
	cfg.Ignore = []string{"**/*.test.tsx"}

	files, err := discoverSourceFiles(dir, cfg)
	if err != nil {
		t.Fatalf("discoverSourceFiles: %v", err)
	}

	got := make(map[string]bool)
	for _, f := range files {
		got[filepath.Base(f)] = true
	}
	if !got["App.tsx"] || !got["helper.ts"] {
		t.Errorf("expected App.tsx and helper.ts to be discovered, got %v", got)
	}
	if got["App.test.tsx"] {
		t.Error("expected App.test.tsx to be excluded by the ignore pattern")
	}
	if got["README.md"] {
		t.Error("expected README.md to be excluded by extension")
	}
}

func TestDiscoverSourceFiles_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "App.tsx")
	if err := os.WriteFile(path, []byte("export const x = 1;"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	files, err := discoverSourceFiles(path, config.DefaultConfig())
	if err != nil {
		t.Fatalf("discoverSourceFiles: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Errorf("expected exactly [%s], got %v", path, files)
	}
}

func TestRunBuildOnce_CompilesValidModule(t *testing.T) {
	dir := t.TempDir()
	src := `import { $state, $effect } from "fict";

export function Counter() {
	let count = $state(0);
	$effect(() => console.log(count));
	return <button onClick={() => count++}>{count}</button>;
}
`
	path := filepath.Join(dir, "Counter.tsx")
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	outDir = t.TempDir()
	jsonFlag = false
	defer func() { outDir = ""; jsonFlag = false }()

	cfg := config.DefaultConfig()
	if err := runBuildOnce([]string{path}, compilerOptions(cfg)); err != nil {
		t.Fatalf("runBuildOnce: %v", err)
	}

	out, err := os.ReadFile(filepath.Join(outDir, "Counter.js"))
	if err != nil {
		t.Fatalf("expected compiled output file: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected non-empty compiled output")
	}
}
