// Package classify implements stage 2 of the pipeline: partitioning a
// module's top-level bindings into signals, memos and aliases, building
// the dependency graph between them, and flagging each binding's
// reference sites enough to later decide memo vs getter-only (§4.3).
//
// Grounded on the teacher's internal/graph builder, which walks
// variable_declarator/lexical_declaration nodes to classify component
// state and build a component dependency graph; generalized here from
// "component depends on component" to "memo depends on signal/memo".
package classify

import (
	"github.com/oskari/fictc/internal/analyzer"
	"github.com/oskari/fictc/internal/depgraph"
	"github.com/oskari/fictc/internal/diag"
	"github.com/oskari/fictc/internal/parser"
)

// Binding is one top-level `let`/`const` declaration the classifier has
// recognized as reactive (or reactive-adjacent).
type Binding struct {
	Name     string
	NodeID   string // depgraph node ID, once classified as Signal or Memo
	Decl     *parser.Node
	Init     *parser.Node // the initializer expression, nil for bare `let x`
	Line     uint32
	RefNames []string // identifiers the initializer reads, in source order
}

// Result is the output of classifying one module: the three disjoint
// sets of reactive identifier names, the dependency graph connecting
// them, and the declaration node for every derived (memo or alias)
// binding so stage 3 can find its initializer again.
type Result struct {
	StateVars      map[string]bool
	MemoVars       map[string]bool
	AliasVars      map[string]bool
	GetterOnlyVars map[string]bool
	Graph          *depgraph.Graph
	DerivedDecls   map[string]*parser.Node
	StateNodeIDs   map[string]string // signal name -> depgraph node ID
	MemoNodeIDs    map[string]string // memo name -> depgraph node ID
}

// Classify walks module's top-level statements plus the top-level
// statement list of every function body in the module, recognizing
// `$state` declarations and `const` derivations, and returns the
// partitioned binding sets plus their dependency graph. Per spec.md
// §4.2, `let x = $state(e)` is valid at the top level of a module OR of
// a function body (component-local state), so each function body is its
// own classification scope in addition to the module root — a nested
// block (if/for/while body) is still out of scope, matching the
// teacher's top-level-only component/hook scan generalized one level
// deeper for function-scoped state.
func Classify(module *analyzer.Module) (*Result, error) {
	res := &Result{
		StateVars:      make(map[string]bool),
		MemoVars:       make(map[string]bool),
		AliasVars:      make(map[string]bool),
		GetterOnlyVars: make(map[string]bool),
		Graph:          depgraph.New(),
		DerivedDecls:   make(map[string]*parser.Node),
		StateNodeIDs:   make(map[string]string),
		MemoNodeIDs:    make(map[string]string),
	}

	if module.AST == nil || module.AST.Root == nil {
		return res, nil
	}

	bindings := topLevelBindings(module.AST.Root)
	for _, body := range functionScopeBodies(module.AST.Root) {
		bindings = append(bindings, topLevelBindings(body)...)
	}

	// Pass 1: recognize $state(...) declarations.
	stateLocal := module.Macros.StateLocal
	if stateLocal == "" {
		stateLocal = analyzer.StateMacro
	}
	for _, b := range bindings {
		if module.Macros.HasState && b.Init != nil && b.Init.IsCallTo(stateLocal) {
			res.StateVars[b.Name] = true
			line, _ := b.Decl.StartPoint()
			id := res.Graph.AddNode(b.Name, depgraph.KindSignal, module.FilePath, line+1)
			res.StateNodeIDs[b.Name] = id
		}
	}

	// Pass 2: classify every remaining const/let binding as an alias
	// (initializer is exactly another tracked identifier) or a candidate
	// memo (initializer reads at least one tracked identifier,
	// transitively through prior passes). Aliases and memos are resolved
	// together in dependency order since a memo may read an alias, and
	// an alias may point at a memo declared earlier in the file.
	changed := true
	for changed {
		changed = false
		for _, b := range bindings {
			if b.Init == nil {
				continue
			}
			if res.StateVars[b.Name] || res.MemoVars[b.Name] || res.AliasVars[b.Name] {
				continue
			}

			refs := collectIdentifierRefs(b.Init)
			if len(refs) == 0 {
				continue
			}

			if b.Init.Type() == "identifier" && isTracked(res, b.Init.Text()) {
				res.AliasVars[b.Name] = true
				res.DerivedDecls[b.Name] = b.Decl
				changed = true
				continue
			}

			tracksAny := false
			for _, ref := range refs {
				if isTracked(res, ref) {
					tracksAny = true
					break
				}
			}
			if !tracksAny {
				continue
			}

			res.MemoVars[b.Name] = true
			res.DerivedDecls[b.Name] = b.Decl
			line, _ := b.Decl.StartPoint()
			id := res.Graph.AddNode(b.Name, depgraph.KindMemo, module.FilePath, line+1)
			res.MemoNodeIDs[b.Name] = id
			changed = true
		}
	}

	// Pass 3: wire dependency edges now that every name's final
	// classification and node ID is known.
	for _, b := range bindings {
		targetID, ok := res.MemoNodeIDs[b.Name]
		if !ok {
			continue
		}
		for _, ref := range collectIdentifierRefs(b.Init) {
			if sourceID, ok := res.StateNodeIDs[ref]; ok {
				res.Graph.AddEdge(depgraph.EdgeDependsOn, sourceID, targetID)
			} else if sourceID, ok := res.MemoNodeIDs[ref]; ok {
				res.Graph.AddEdge(depgraph.EdgeDependsOn, sourceID, targetID)
			}
		}
	}

	if cycles := res.Graph.DetectCycles(); len(cycles) > 0 {
		c := cycles[0]
		names := make([]string, 0, len(c.NodeIDs))
		for _, id := range c.NodeIDs {
			if n, ok := res.Graph.Nodes[id]; ok {
				names = append(names, n.Name)
			}
		}
		line := uint32(0)
		if len(c.NodeIDs) > 0 {
			if n, ok := res.Graph.Nodes[c.NodeIDs[0]]; ok {
				line = n.Line
			}
		}
		return res, diag.NewFatal(diag.CodeCycle, module.FilePath, line, 0,
			"circular dependency among derived values: %v", names)
	}

	return res, nil
}

func isTracked(res *Result, name string) bool {
	return res.StateVars[name] || res.MemoVars[name] || res.AliasVars[name]
}

// topLevelBindings returns one Binding per variable_declarator directly
// inside a top-level lexical_declaration/variable_declaration statement.
func topLevelBindings(root *parser.Node) []Binding {
	var out []Binding
	for _, stmt := range root.NamedChildren() {
		if stmt.DeclarationKeyword() == "" {
			continue
		}
		for _, child := range stmt.NamedChildren() {
			if child.Type() != "variable_declarator" {
				continue
			}
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil || nameNode.Type() != "identifier" {
				continue // destructured top-level bindings aren't reactive candidates
			}
			line, _ := child.StartPoint()
			out = append(out, Binding{
				Name: nameNode.Text(),
				Decl: child,
				Init: child.ChildByFieldName("value"),
				Line: line + 1,
			})
		}
	}
	return out
}

// functionScopeBodies returns the statement_block body of every
// function_declaration/function_expression/arrow_function/method
// definition nested anywhere under root, so each function's own
// top-level `let`/`const` bindings can be classified as a separate
// scope. A concise arrow body (`() => expr`, no braces) has no
// statement_block and contributes no bindings here.
func functionScopeBodies(root *parser.Node) []*parser.Node {
	var out []*parser.Node
	root.Walk(func(n *parser.Node) bool {
		switch n.Type() {
		case "function_declaration", "function_expression", "arrow_function",
			"method_definition", "generator_function", "generator_function_declaration":
			if body := n.ChildByFieldName("body"); body != nil && body.Type() == "statement_block" {
				out = append(out, body)
			}
		}
		return true
	})
	return out
}

// collectIdentifierRefs returns every bare identifier expr reads,
// skipping the property side of member expressions (obj.prop reads obj,
// not prop) and object-literal keys.
func collectIdentifierRefs(expr *parser.Node) []string {
	if expr == nil {
		return nil
	}
	var refs []string
	expr.Walk(func(n *parser.Node) bool {
		switch n.Type() {
		case "member_expression":
			if obj := n.ChildByFieldName("object"); obj != nil {
				refs = append(refs, collectIdentifierRefs(obj)...)
			}
			return false
		case "property_identifier":
			return false
		case "identifier", "shorthand_property_identifier":
			// shorthand_property_identifier ({ count }) is simultaneously
			// the object key and a reference to the outer binding.
			refs = append(refs, n.Text())
			return false
		}
		return true
	})
	return refs
}
