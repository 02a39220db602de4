package compiler

import "github.com/oskari/fictc/internal/diag"

// ModuleMetadata is the cached classification of another module, reachable
// through module resolution: the value a ResolveModuleMetadata function
// returns, saying whether an exported binding is a signal, memo, or plain
// export.
type ModuleMetadata struct {
	StateVars   map[string]bool
	MemoVars    map[string]bool
	AliasVars   map[string]bool
	Exported    map[string]bool
}

// ResolveModuleMetadata looks up cached classification for another module
// given an import specifier and the importing file's path. Compile does
// not call it: imported bindings are treated as plain whether or not one
// is set.
type ResolveModuleMetadata func(specifier, importer string) (*ModuleMetadata, bool)

// Options are the compiler options spec.md §6 enumerates, one struct per
// compile. The zero value is a conservative, VDOM-mode, production
// configuration — every bool defaults to false per spec.md.
type Options struct {
	// Dev is carried into Context.Options; Compile runs the same checks
	// (cycle detection included) whether or not it is set.
	Dev bool
	// Sourcemap signals the downstream printer; it does not affect this
	// transformer's semantic output.
	Sourcemap bool
	// FineGrainedDom enables the §4.5 direct-DOM lowering path.
	FineGrainedDom bool
	// LazyConditional enables Rule J (branch-exclusive region deferral).
	LazyConditional bool
	// GetterCache allows read coalescing within a synchronous region.
	// Implementation-dependent; the only contract is that semantics are
	// preserved.
	GetterCache bool
	// Optimize is reserved; no required behavior.
	Optimize bool

	// OnWarn receives every non-fatal diagnostic. If nil, warnings are
	// written to a stable text stream by the caller (see diag.WriteText).
	OnWarn diag.OnWarn

	// ResolveModuleMetadata optionally holds a resolver for other modules'
	// cached classification. Compile does not consult it; signal/memo
	// knowledge is not propagated across imports.
	ResolveModuleMetadata ResolveModuleMetadata

	// RuntimeModule is the specifier emitted helper imports are attached
	// to. Ambient default, not named by spec.md: "fict-runtime".
	RuntimeModule string
}

// WithDefaults returns a copy of o with zero-valued ambient fields filled
// in. Spec-level fields (Dev, Sourcemap, ...) are left exactly as given —
// their zero value (false) is itself the documented default.
func (o Options) WithDefaults() Options {
	if o.RuntimeModule == "" {
		o.RuntimeModule = "fict-runtime"
	}
	return o
}
