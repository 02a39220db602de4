// Package region implements the detection half of stage 4 (spec.md
// §4.4): recognizing the statement shapes Rule D's region grouper and
// Rule J's lazy-branch variant operate over. It only inspects *parser.Node
// shapes and returns plain data — internal/transform owns every edit
// and every emitted string, since region has no notion of the edit list
// or the classifier's tracked-name sets.
//
// Grounded on the teacher's internal/graph builder, which likewise
// walks a fixed statement-list shape (component bodies) to recognize a
// pattern (hook calls, JSX returns) and hands the matched nodes back to
// its caller for the actual analysis.
package region

import "github.com/oskari/fictc/internal/parser"

// Candidate is one detected grouping opportunity: a bare, multi-name
// let/var declaration immediately followed by a single if statement that
// assigns a subset of those names.
type Candidate struct {
	Let     *parser.Node
	If      *parser.Node
	Outputs []string // declared names actually assigned in If, in source order
}

// Detect looks for the canonical region shape spec.md §4.4's own
// scenario 7 names — `let a, b; if (cond) { a = ...; b = ...; }` (with
// an optional else) — starting at index i of stmts. This is a
// deliberately conservative subset of §4.4 phase 1-2's general fixed-point
// collection over arbitrary contiguous defining statements: phase 3's own
// fallback gate ("if fewer than two distinct outputs remain, fall back
// to per-declaration memo emission") means any wider shape this detector
// doesn't recognize simply falls back to ordinary per-declaration
// handling, which is always a legal (if less optimized) emission.
func Detect(stmts []*parser.Node, i int, isTracked func(string) bool) (Candidate, bool) {
	if i+1 >= len(stmts) {
		return Candidate{}, false
	}
	letStmt := stmts[i]
	ifStmt := stmts[i+1]

	if letStmt.Type() != "lexical_declaration" && letStmt.Type() != "variable_declaration" {
		return Candidate{}, false
	}
	if ifStmt.Type() != "if_statement" {
		return Candidate{}, false
	}

	declared := bareNames(letStmt)
	if len(declared) < 2 {
		return Candidate{}, false
	}

	assigned := BranchAssignments(ifStmt)
	var outputs []string
	for _, name := range declared {
		if assigned[name] {
			outputs = append(outputs, name)
		}
	}
	if len(outputs) < 2 {
		return Candidate{}, false
	}

	if !conditionOrAssignmentsTrack(ifStmt, isTracked) {
		return Candidate{}, false
	}

	return Candidate{Let: letStmt, If: ifStmt, Outputs: outputs}, true
}

// bareNames returns the declared names of every variable_declarator in
// declStmt with no initializer — only an uninitialized `let` name is a
// candidate region output, since it carries no value of its own for the
// region to clobber.
func bareNames(declStmt *parser.Node) []string {
	var names []string
	for _, c := range declStmt.NamedChildren() {
		if c.Type() != "variable_declarator" {
			continue
		}
		if c.ChildByFieldName("value") != nil {
			continue
		}
		name := c.ChildByFieldName("name")
		if name != nil && name.Type() == "identifier" {
			names = append(names, name.Text())
		}
	}
	return names
}

// BranchAssignments returns every identifier directly assigned to (via
// `=` or a compound operator) at the top level of ifStmt's consequence
// and alternative blocks — not reached through any further-nested
// if/for/while/switch/try, since those stay out of scope of the
// region's single evaluation per §4.4's own "nested regions disabled"
// rule.
func BranchAssignments(ifStmt *parser.Node) map[string]bool {
	out := make(map[string]bool)
	for _, name := range directAssignments(ifStmt.ChildByFieldName("consequence")) {
		out[name] = true
	}
	for _, name := range directAssignments(ifStmt.ChildByFieldName("alternative")) {
		out[name] = true
	}
	return out
}

// ExclusiveOutputs partitions outputs (assumed already confirmed
// assigned somewhere in ifStmt by Detect) into those assigned only in
// the consequence, only in the alternative, or in both — the last case
// disqualifies the whole candidate from Rule J's branch-exclusive
// deferral, per §4.4 phase 5.
func ExclusiveOutputs(ifStmt *parser.Node, outputs []string) (onlyConsequence, onlyAlternative []string, exclusive bool) {
	cons := make(map[string]bool)
	for _, n := range directAssignments(ifStmt.ChildByFieldName("consequence")) {
		cons[n] = true
	}
	alt := make(map[string]bool)
	for _, n := range directAssignments(ifStmt.ChildByFieldName("alternative")) {
		alt[n] = true
	}

	exclusive = true
	for _, name := range outputs {
		switch {
		case cons[name] && alt[name]:
			exclusive = false
		case cons[name]:
			onlyConsequence = append(onlyConsequence, name)
		case alt[name]:
			onlyAlternative = append(onlyAlternative, name)
		default:
			exclusive = false
		}
	}
	return onlyConsequence, onlyAlternative, exclusive
}

func directAssignments(block *parser.Node) []string {
	block = unwrapBlock(block)
	if block == nil {
		return nil
	}
	var names []string
	for _, stmt := range block.NamedChildren() {
		if stmt.Type() != "expression_statement" {
			continue
		}
		children := stmt.NamedChildren()
		if len(children) == 0 {
			continue
		}
		e := children[0]
		if e.Type() != "assignment_expression" && e.Type() != "augmented_assignment_expression" {
			continue
		}
		left := e.ChildByFieldName("left")
		if left != nil && left.Type() == "identifier" {
			names = append(names, left.Text())
		}
	}
	return names
}

// unwrapBlock returns n if it's a braced statement_block, or nil for a
// brace-less if-body or an absent (nil) branch — this detector only
// recognizes the braced form, falling back to per-declaration handling
// otherwise.
func unwrapBlock(n *parser.Node) *parser.Node {
	if n != nil && n.Type() == "statement_block" {
		return n
	}
	return nil
}

// conditionOrAssignmentsTrack reports whether ifStmt reads any
// currently-tracked name anywhere within it (condition or branch
// bodies), without crossing into a nested function's own body. A region
// with nothing reactive in it has no reason to be memoized.
func conditionOrAssignmentsTrack(ifStmt *parser.Node, isTracked func(string) bool) bool {
	tracked := false
	ifStmt.Walk(func(n *parser.Node) bool {
		if tracked {
			return false
		}
		switch n.Type() {
		case "function_declaration", "arrow_function", "function_expression":
			return false
		case "identifier":
			if isTracked(n.Text()) {
				tracked = true
				return false
			}
		}
		return true
	})
	return tracked
}
