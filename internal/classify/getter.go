package classify

import (
	"github.com/oskari/fictc/internal/analyzer"
	"github.com/oskari/fictc/internal/parser"
)

// refContext is the enclosing syntactic position of one reference to a
// candidate derived binding, per spec.md §4.3.
type refContext int

const (
	ctxOther refContext = iota
	ctxReactive
	ctxEvent
)

// ClassifyGetterOnly decides, for every non-exported memo in res.MemoVars
// (declared at module top level or at a function body's top level), whether it can be emitted as a plain getter
// (`const k = () => e`) rather than memoized, per spec.md §4.3: only if
// every reference to k in the module is inside an event-handler
// attribute value or a plain (non-JSX, non-$effect) nested function.
// Exported names always memoize, matching the conservative rule for
// open question (a) in spec.md §9 — any ambiguous reference defaults to
// "reactive" and keeps the binding memoized.
func ClassifyGetterOnly(module *analyzer.Module, res *Result) {
	if module.AST == nil || module.AST.Root == nil {
		return
	}

	effectLocal := module.Macros.EffectLocal
	if effectLocal == "" {
		effectLocal = analyzer.EffectMacro
	}

	for name := range res.MemoVars {
		decl := res.DerivedDecls[name]
		if decl == nil {
			continue
		}
		if module.ExportedNames[name] || isDirectlyExported(decl) {
			continue
		}

		declStart, declEnd := decl.StartByte(), decl.EndByte()
		onlyEvent := true
		sawAny := false
		module.AST.Root.Walk(func(n *parser.Node) bool {
			if n.StartByte() >= declStart && n.EndByte() <= declEnd {
				return false // skip the declaration's own initializer
			}
			if n.Type() != "identifier" || n.Text() != name {
				return true
			}
			sawAny = true
			if classifyRefContext(n, effectLocal) != ctxEvent {
				onlyEvent = false
			}
			return true
		})

		if sawAny && onlyEvent {
			res.GetterOnlyVars[name] = true
		}
	}
}

// isDirectlyExported reports whether decl (a variable_declarator) sits
// inside an `export const`/`export let` statement, which
// analyzer.CollectExportedNames does not itself surface — it only tracks
// export clauses and export-default identifiers.
func isDirectlyExported(decl *parser.Node) bool {
	for n := decl.Parent(); n != nil; n = n.Parent() {
		if n.Type() == "export_statement" {
			return true
		}
	}
	return false
}

// classifyRefContext walks ref's ancestors outward until it finds a
// syntactic marker that decides the reference's class, per spec.md
// §4.3's reactive/event/other split.
func classifyRefContext(ref *parser.Node, effectLocal string) refContext {
	for n := ref.Parent(); n != nil; n = n.Parent() {
		switch n.Type() {
		case "jsx_attribute":
			if isEventAttribute(n) {
				return ctxEvent
			}
			return ctxReactive
		case "jsx_expression":
			// jsx_expression wraps both attribute values ({value}) and
			// child expressions ({value}); only the former needs the
			// enclosing jsx_attribute's name to tell event from reactive.
			if parent := n.Parent(); parent == nil || parent.Type() != "jsx_attribute" {
				return ctxReactive
			}
		case "call_expression":
			if n.IsCallTo(effectLocal) {
				return ctxReactive
			}
		case "arrow_function", "function_expression":
			if isEffectCallbackArgument(n, effectLocal) {
				return ctxReactive
			}
			return ctxEvent
		case "function_declaration":
			return ctxEvent
		case "export_statement":
			return ctxOther
		}
	}
	return ctxOther
}

// isEffectCallbackArgument reports whether fn is itself one of the
// argument expressions of an $effect(...) call. Reads inside an effect's
// own callback body are reactive (the effect re-runs when they change),
// unlike an ordinary function value passed elsewhere, so the outer
// "arrow_function/function_expression ⇒ event" rule above must not fire
// for it.
func isEffectCallbackArgument(fn *parser.Node, effectLocal string) bool {
	call := fn.Parent()
	if call != nil && call.Type() != "call_expression" {
		// fn sits inside the call's "arguments" list node.
		call = call.Parent()
	}
	if call == nil || call.Type() != "call_expression" || !call.IsCallTo(effectLocal) {
		return false
	}
	for _, arg := range call.Arguments() {
		if arg.StartByte() == fn.StartByte() && arg.EndByte() == fn.EndByte() {
			return true
		}
	}
	return false
}

// isEventAttribute reports whether a jsx_attribute node's name begins
// with "on" (onClick, onInput, ...), the convention the runtime contract
// (bindEvent) and spec.md §3's JSX position classes use to recognize
// event-handler attributes.
func isEventAttribute(attr *parser.Node) bool {
	var name string
	for _, child := range attr.Children() {
		if child.Type() == "property_identifier" {
			name = child.Text()
			break
		}
	}
	return len(name) > 2 && name[0] == 'o' && name[1] == 'n' &&
		name[2] >= 'A' && name[2] <= 'Z'
}
