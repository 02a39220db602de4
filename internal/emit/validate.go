package emit

import (
	"github.com/oskari/fictc/internal/analyzer"
	"github.com/oskari/fictc/internal/diag"
	"github.com/oskari/fictc/internal/parser"
)

// ValidateMacroImports raises EFICT-UNIMPORTED the first time $state or
// $effect is called without having been imported from the framework
// module, per spec.md §4.1's failure semantics. Must run before stage 2
// classification, since an unimported macro call would otherwise be
// silently ignored as a plain function call.
func ValidateMacroImports(module *analyzer.Module) error {
	if module.Macros.HasState && module.Macros.HasEffect {
		return nil
	}
	if module.AST == nil || module.AST.Root == nil {
		return nil
	}

	var firstErr error
	module.AST.Root.Walk(func(n *parser.Node) bool {
		if firstErr != nil {
			return false
		}
		if n.Type() != "call_expression" {
			return true
		}
		switch {
		case !module.Macros.HasState && n.IsCallTo(analyzer.StateMacro):
			line, col := n.StartPoint()
			firstErr = diag.NewFatal(diag.CodeUnimported, module.FilePath, line+1, col,
				"%s is used but not imported from %q", analyzer.StateMacro, analyzer.FrameworkModule)
			return false
		case !module.Macros.HasEffect && n.IsCallTo(analyzer.EffectMacro):
			line, col := n.StartPoint()
			firstErr = diag.NewFatal(diag.CodeUnimported, module.FilePath, line+1, col,
				"%s is used but not imported from %q", analyzer.EffectMacro, analyzer.FrameworkModule)
			return false
		}
		return true
	})
	return firstErr
}
