package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oskari/fictc/internal/compiler"
	"github.com/oskari/fictc/internal/config"
	"github.com/oskari/fictc/internal/diag"
	"github.com/oskari/fictc/internal/parser"
)

var sourceExtensions = map[string]bool{
	".tsx": true,
	".jsx": true,
	".ts":  true,
	".js":  true,
}

var (
	watchFlag bool
	jsonFlag  bool
	outDir    string
)

var buildCmd = &cobra.Command{
	Use:   "build <path>",
	Short: "compile a file or directory tree of fict modules",
	Args:  cobra.ExactArgs(1),
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "recompile on source changes")
	buildCmd.Flags().BoolVar(&jsonFlag, "json", false, "emit machine-readable {code, diagnostics} records")
	buildCmd.Flags().StringVarP(&outDir, "out", "o", "", "write compiled output under this directory instead of stdout")
}

// fileJob is one unit of the build worker pool, generalized from the
// teacher's FileJob{Path,Index} — Index preserves input order so
// parallel results can be resorted for stable, reproducible output.
type fileJob struct {
	Path  string
	Index int
}

// fileResult is what a worker produces for one fileJob.
type fileResult struct {
	Path        string
	Index       int
	Code        string
	Diagnostics []diag.Diagnostic
	Err         error
}

func runBuild(cmd *cobra.Command, args []string) error {
	root := args[0]
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("fictc build: %w", err)
	}

	startDir := root
	if !info.IsDir() {
		startDir = filepath.Dir(root)
	}
	cfg, err := config.Load(startDir)
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	files, err := discoverSourceFiles(root, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		pterm.Warning.Printf("no source files found under %s\n", root)
		return nil
	}

	opts := compilerOptions(cfg)
	if err := runBuildOnce(files, opts); err != nil {
		return err
	}

	if watchFlag {
		return watchAndRebuild(root, cfg, opts)
	}
	return nil
}

func applyFlagOverrides(cfg *config.Config) {
	v := viper.GetViper()
	if v.IsSet("dev") {
		cfg.Dev = v.GetBool("dev")
	}
	if v.IsSet("sourcemap") {
		cfg.Sourcemap = v.GetBool("sourcemap")
	}
	if v.IsSet("fine-grained-dom") {
		cfg.FineGrainedDom = v.GetBool("fine-grained-dom")
	}
	if v.IsSet("lazy-conditional") {
		cfg.LazyConditional = v.GetBool("lazy-conditional")
	}
	if v.IsSet("getter-cache") {
		cfg.GetterCache = v.GetBool("getter-cache")
	}
	if v.IsSet("runtime-module") && v.GetString("runtime-module") != "" {
		cfg.RuntimeModule = v.GetString("runtime-module")
	}
}

// discoverSourceFiles walks root (or returns it directly, if it's a
// single file) collecting recognized extensions not excluded by
// cfg.ShouldIgnore.
func discoverSourceFiles(root string, cfg *config.Config) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "node_modules" || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceExtensions[filepath.Ext(path)] {
			return nil
		}
		if cfg.ShouldIgnore(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	return files, err
}

// runBuildOnce compiles every file through a bounded worker pool,
// generalized from the teacher's cmd/react-analyzer worker-pool shape
// (channel-fed FileJobs, a fixed set of workers bounded by
// runtime.NumCPU() but never more than len(files), a WaitGroup, and a
// final resort by original index so output order matches input order
// regardless of completion order).
func runBuildOnce(files []string, opts compiler.Options) error {
	workerCount := runtime.NumCPU()
	if workerCount > len(files) {
		workerCount = len(files)
	}
	if workerCount < 1 {
		workerCount = 1
	}

	jobs := make(chan fileJob, len(files))
	results := make(chan fileResult, len(files))
	var wg sync.WaitGroup

	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := parser.NewParser()
			if err != nil {
				return
			}
			defer p.Close()
			for job := range jobs {
				results <- compileOne(p, job, opts)
			}
		}()
	}

	for i, f := range files {
		jobs <- fileJob{Path: f, Index: i}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]fileResult, 0, len(files))
	for r := range results {
		collected = append(collected, r)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].Index < collected[j].Index })

	return reportResults(collected)
}

func compileOne(p *parser.TreeSitterParser, job fileJob, opts compiler.Options) fileResult {
	source, err := os.ReadFile(job.Path)
	if err != nil {
		return fileResult{Path: job.Path, Index: job.Index, Err: err}
	}

	ast, err := p.ParseFile(job.Path, source)
	if err != nil {
		return fileResult{Path: job.Path, Index: job.Index, Err: err}
	}

	code, ctx, err := compiler.Compile(ast, job.Path, opts)
	result := fileResult{Path: job.Path, Index: job.Index, Code: code, Err: err}
	if ctx != nil {
		result.Diagnostics = ctx.Warnings.Warnings()
	}
	return result
}

func reportResults(results []fileResult) error {
	if jsonFlag {
		return reportResultsJSON(results)
	}

	failed := 0
	for _, r := range results {
		for _, w := range r.Diagnostics {
			diag.WriteText(os.Stderr, []diag.Diagnostic{w})
		}
		if r.Err != nil {
			failed++
			var fatal *diag.FatalError
			if asFatal(r.Err, &fatal) {
				diag.WriteText(os.Stderr, []diag.Diagnostic{fatal.Diagnostic})
			} else {
				pterm.Error.Printf("%s: %v\n", r.Path, r.Err)
			}
			continue
		}
		if err := writeOutput(r.Path, r.Code); err != nil {
			return err
		}
		pterm.Success.Printf("compiled %s\n", r.Path)
	}

	if failed > 0 {
		return fmt.Errorf("fictc build: %d file(s) failed to compile", failed)
	}
	return nil
}

func asFatal(err error, target **diag.FatalError) bool {
	fatal, ok := err.(*diag.FatalError)
	if ok {
		*target = fatal
	}
	return ok
}

type jsonRecord struct {
	Path        string            `json:"path"`
	Code        string            `json:"code,omitempty"`
	Diagnostics []diag.Diagnostic `json:"diagnostics,omitempty"`
	Error       string            `json:"error,omitempty"`
}

func reportResultsJSON(results []fileResult) error {
	records := make([]jsonRecord, 0, len(results))
	failed := 0
	for _, r := range results {
		rec := jsonRecord{Path: r.Path, Code: r.Code, Diagnostics: r.Diagnostics}
		if r.Err != nil {
			rec.Error = r.Err.Error()
			failed++
		}
		records = append(records, rec)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("fictc build: %d file(s) failed to compile", failed)
	}
	return nil
}

func writeOutput(srcPath, code string) error {
	if outDir == "" {
		if !jsonFlag {
			fmt.Println(code)
		}
		return nil
	}

	rel := filepath.Base(srcPath)
	ext := filepath.Ext(rel)
	outName := strings.TrimSuffix(rel, ext) + ".js"
	outPath := filepath.Join(outDir, outName)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(code), 0644)
}

// watchAndRebuild recompiles the whole discovered file set whenever
// fsnotify reports a write under root, debounced per-event by fsnotify's
// own coalescing rather than a manual timer — adequate for the single-
// directory dev-loop this command targets.
func watchAndRebuild(root string, cfg *config.Config, opts compiler.Options) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fictc build --watch: %w", err)
	}
	defer watcher.Close()

	if err := addWatchDirs(watcher, root); err != nil {
		return err
	}

	pterm.Info.Println("watching for changes, press ctrl-c to stop")
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !sourceExtensions[filepath.Ext(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			files, err := discoverSourceFiles(root, cfg)
			if err != nil {
				pterm.Error.Printf("rediscovering files: %v\n", err)
				continue
			}
			if err := runBuildOnce(files, opts); err != nil {
				pterm.Error.Printf("%v\n", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			pterm.Error.Printf("watch error: %v\n", err)
		}
	}
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return watcher.Add(filepath.Dir(root))
	}
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "node_modules" || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
