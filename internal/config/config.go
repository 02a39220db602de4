// Package config loads fictc's project-level configuration: compiler
// options (spec.md §6), tsconfig.json path aliases used by module
// resolution, and the set of files a directory build should skip.
//
// Layering follows the teacher's search-then-merge shape, generalized to
// viper so flags, environment variables (FICTC_*), and one of several
// config file formats all feed the same struct without a hand-rolled
// merge function per field.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// CompilerOptions mirrors the subset of tsconfig.json's compilerOptions
// fictc's module resolver needs: baseUrl-relative alias targets.
type CompilerOptions struct {
	BaseURL string              `json:"baseUrl"`
	Paths   map[string][]string `json:"paths"`
}

// Config is the merged project configuration: compiler.Options-shaped
// fields plus the ambient pieces (alias table, ignore globs) that live
// outside a single compile.
type Config struct {
	Dev             bool     `mapstructure:"dev"`
	Sourcemap       bool     `mapstructure:"sourcemap"`
	FineGrainedDom  bool     `mapstructure:"fineGrainedDom"`
	LazyConditional bool     `mapstructure:"lazyConditional"`
	GetterCache     bool     `mapstructure:"getterCache"`
	Optimize        bool     `mapstructure:"optimize"`
	RuntimeModule   string   `mapstructure:"runtimeModule"`
	Ignore          []string `mapstructure:"ignore"`

	CompilerOptions CompilerOptions `mapstructure:"-"`
}

// DefaultConfig returns the conservative, VDOM-mode default: every
// feature flag off, no ignore patterns, the ambient runtime module name.
func DefaultConfig() *Config {
	return &Config{
		RuntimeModule: "fict-runtime",
		Ignore:        []string{},
	}
}

// Load searches startDir and its ancestors for a config file, merges it
// over the defaults (FICTC_* environment variables take priority over any
// file; command-line flags are not read here, the CLI applies them to the
// returned Config afterwards), and also loads tsconfig.json's compilerOptions
// if present. Returns defaults, untouched, if nothing is found.
func Load(startDir string) (*Config, error) {
	cfg, _, err := LoadWithPath(startDir)
	return cfg, err
}

// LoadWithPath is Load, additionally returning the path of the config
// file actually used ("" if running on defaults alone).
func LoadWithPath(startDir string) (*Config, string, error) {
	v := viper.New()
	v.SetEnvPrefix("FICTC")
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("dev", d.Dev)
	v.SetDefault("sourcemap", d.Sourcemap)
	v.SetDefault("fineGrainedDom", d.FineGrainedDom)
	v.SetDefault("lazyConditional", d.LazyConditional)
	v.SetDefault("getterCache", d.GetterCache)
	v.SetDefault("optimize", d.Optimize)
	v.SetDefault("runtimeModule", d.RuntimeModule)
	v.SetDefault("ignore", d.Ignore)

	configPath, err := findConfigFile(startDir)
	usedPath := ""
	if err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("fictc: failed to read config file %s: %w", configPath, err)
		}
		usedPath = configPath
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", fmt.Errorf("fictc: failed to decode config: %w", err)
	}

	if opts, err := loadTSConfig(startDir); err == nil {
		cfg.CompilerOptions = *opts
	}

	return cfg, usedPath, nil
}

// BindFlags wires the build command's flags into viper so they outrank
// every other layer, mirroring the teacher's CLI-flags-win posture but
// routed through viper instead of manual overwrites.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	return v.BindPFlags(flags)
}

// findConfigFile searches dir and its ancestors for the first config
// file fictc recognizes, in priority order.
func findConfigFile(dir string) (string, error) {
	configNames := []string{".fictrc.yaml", ".fictrc.yml", ".fictrc.json", "fict.config.yaml", "fict.config.json"}

	currentDir := dir
	for {
		for _, name := range configNames {
			candidate := filepath.Join(currentDir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("no config file found")
}

// loadTSConfig searches dir and its ancestors for tsconfig.json and
// parses compilerOptions.baseUrl/paths into a CompilerOptions. Returns an
// error if no tsconfig.json is found; the caller treats that as "no
// aliases configured" rather than a fatal condition.
func loadTSConfig(dir string) (*CompilerOptions, error) {
	currentDir := dir
	for {
		candidate := filepath.Join(currentDir, "tsconfig.json")
		if data, err := os.ReadFile(candidate); err == nil {
			var raw struct {
				CompilerOptions CompilerOptions `json:"compilerOptions"`
			}
			if err := json.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("fictc: failed to parse %s: %w", candidate, err)
			}
			return &raw.CompilerOptions, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return nil, fmt.Errorf("no tsconfig.json found")
}

// ParsePathAliases expands compilerOptions.paths into a flat alias→target
// table rooted at baseDir (baseUrl resolved against the tsconfig.json's
// own directory). Each target keeps its "*" wildcard marker so
// FindLongestMatchingAlias can substitute the matched suffix.
func (c CompilerOptions) ParsePathAliases(baseDir string) map[string]string {
	root := baseDir
	if c.BaseURL != "" {
		root = filepath.Join(baseDir, c.BaseURL)
	}

	aliases := make(map[string]string)
	for pattern, targets := range c.Paths {
		if len(targets) == 0 {
			continue
		}
		aliases[pattern] = filepath.ToSlash(filepath.Join(root, targets[0]))
	}
	return aliases
}

// FindLongestMatchingAlias returns the alias entry whose pattern (with its
// "*" wildcard, if any) matches the longest prefix of specifier, and the
// resolved target with the wildcard substituted. ok is false when no
// alias applies; analyzer.ModuleResolver then reports the specifier as an
// external package.
func FindLongestMatchingAlias(aliases map[string]string, specifier string) (resolved string, ok bool) {
	bestLen := -1
	for pattern, target := range aliases {
		prefix := strings.TrimSuffix(pattern, "*")
		if !strings.HasPrefix(specifier, prefix) {
			continue
		}
		if len(prefix) <= bestLen {
			continue
		}
		bestLen = len(prefix)
		if strings.HasSuffix(pattern, "*") {
			suffix := specifier[len(prefix):]
			resolved = strings.TrimSuffix(target, "*") + suffix
		} else {
			resolved = target
		}
		ok = true
	}
	return resolved, ok
}

// ShouldIgnore reports whether filePath matches one of the configured
// ignore globs. The last matching pattern wins, so a later "!" negation
// can re-include a file an earlier broad pattern excluded.
func (c *Config) ShouldIgnore(filePath string) bool {
	normalizedPath := filepath.ToSlash(filePath)

	ignored := false
	for _, pattern := range c.Ignore {
		if matchGlobPattern(normalizedPath, pattern) {
			ignored = !strings.HasPrefix(pattern, "!")
		}
	}
	return ignored
}

// matchGlobPattern implements simple glob pattern matching.
// Supports: *, **, and negation with !
func matchGlobPattern(path, pattern string) bool {
	if strings.HasPrefix(pattern, "!") {
		return matchGlobPattern(path, pattern[1:])
	}

	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)

	if strings.Contains(pattern, "**") {
		parts := strings.Split(pattern, "**")
		if len(parts) == 2 {
			prefix := parts[0]
			suffix := parts[1]

			prefix = strings.TrimSuffix(prefix, "/")
			suffix = strings.TrimPrefix(suffix, "/")

			if prefix != "" {
				if !strings.HasPrefix(path, prefix+"/") && path != prefix {
					return false
				}
			}

			if suffix != "" {
				if strings.HasPrefix(suffix, "*") {
					return simpleGlobMatch(path, "*"+suffix)
				}
				return strings.Contains(path, "/"+suffix+"/") ||
					strings.HasSuffix(path, "/"+suffix) ||
					strings.HasPrefix(path, suffix+"/")
			}

			return true
		}
	}

	if strings.Contains(pattern, "*") {
		return simpleGlobMatch(path, pattern)
	}

	return path == pattern || strings.Contains(path, pattern) || strings.HasSuffix(path, "/"+pattern)
}

// simpleGlobMatch implements basic glob matching with *.
func simpleGlobMatch(path, pattern string) bool {
	patternParts := strings.Split(pattern, "*")
	if len(patternParts) == 1 {
		return path == pattern
	}

	searchPath := path
	for i, part := range patternParts {
		if part == "" {
			continue
		}

		index := strings.Index(searchPath, part)
		if index == -1 {
			return false
		}

		if i == 0 && !strings.HasPrefix(pattern, "*") && index != 0 {
			return false
		}

		if i == len(patternParts)-1 && !strings.HasSuffix(pattern, "*") {
			return strings.HasSuffix(searchPath, part)
		}

		searchPath = searchPath[index+len(part):]
	}

	return true
}
