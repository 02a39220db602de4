// Package cli is the cobra-based command surface for fictc, replacing
// the teacher's flag-based cmd/react-analyzer/main.go with the
// cobra+viper tree bennypowers-cem's cmd/ package uses throughout.
package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oskari/fictc/internal/compiler"
	"github.com/oskari/fictc/internal/config"
)

// Version is set at build time via -ldflags, mirroring the teacher's
// cmd/react-analyzer hardcoded Version const.
var Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "fictc",
	Short:   "AOT compiler for the fict reactive framework",
	Long:    "fictc compiles $state/$effect/derived-const source modules into calls against the fict-runtime reactive runtime.",
	Version: Version,
}

// Execute runs the root command. Called once from cmd/fictc/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().Bool("dev", false, "set the compiler's Dev option (the same checks run either way)")
	rootCmd.PersistentFlags().Bool("sourcemap", false, "signal downstream sourcemap emission")
	rootCmd.PersistentFlags().Bool("fine-grained-dom", false, "lower intrinsic JSX elements to direct DOM construction")
	rootCmd.PersistentFlags().Bool("lazy-conditional", false, "enable Rule J branch-exclusive region deferral")
	rootCmd.PersistentFlags().Bool("getter-cache", false, "allow read coalescing within a synchronous region")
	rootCmd.PersistentFlags().String("runtime-module", "", "module specifier emitted runtime imports resolve against")

	config.BindFlags(viper.GetViper(), rootCmd.PersistentFlags())

	rootCmd.AddCommand(buildCmd)
}

// compilerOptions assembles compiler.Options from the loaded config and
// any CLI overrides bound into viper by BindFlags.
func compilerOptions(cfg *config.Config) compiler.Options {
	opts := compiler.Options{
		Dev:             cfg.Dev,
		Sourcemap:       cfg.Sourcemap,
		FineGrainedDom:  cfg.FineGrainedDom,
		LazyConditional: cfg.LazyConditional,
		GetterCache:     cfg.GetterCache,
		Optimize:        cfg.Optimize,
		RuntimeModule:   cfg.RuntimeModule,
	}
	return opts.WithDefaults()
}
