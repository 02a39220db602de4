package transform

import (
	"fmt"
	"strings"

	"github.com/oskari/fictc/internal/analyzer"
	"github.com/oskari/fictc/internal/classify"
	"github.com/oskari/fictc/internal/diag"
	"github.com/oskari/fictc/internal/parser"
	"github.com/oskari/fictc/internal/runtime"
)

// Options carries the subset of compiler.Options the visitor needs,
// threaded in separately since transform cannot import compiler (which
// imports transform).
type Options struct {
	// FineGrainedDom enables the §4.5 direct-DOM lowering path for
	// intrinsic JSX elements instead of leaving them for a VDOM pragma.
	FineGrainedDom bool
	// LazyConditional enables Rule J's branch-exclusive region deferral
	// (§4.4 phase 5) on top of plain Rule D grouping.
	LazyConditional bool
}

// Visitor drives the shadow-aware rewrite of one module's AST into an
// edit list, per spec.md §4.2.
type Visitor struct {
	module  *analyzer.Module
	class   *classify.Result
	edits   *EditList
	shadow  *ShadowStack
	helpers map[runtime.HelperID]bool
	warn    *diag.Collector
	opts    Options

	regionCounter      int
	fineGrainedCounter int

	// propsStack holds, per enclosing destructured-props function
	// currently being visited, the set of local names Rule E (§4.2)
	// bound to a `__props.<path>` accessor — these read like memos
	// anywhere in that function's body (and any nested closures) even
	// though classify never saw them, since they're synthesized here,
	// not classified at stage 2.
	propsStack []map[string]bool

	stateLocal  string
	effectLocal string
}

// NewVisitor constructs a Visitor for one module compile.
func NewVisitor(module *analyzer.Module, class *classify.Result, warn *diag.Collector, opts Options) *Visitor {
	stateLocal := module.Macros.StateLocal
	if stateLocal == "" {
		stateLocal = analyzer.StateMacro
	}
	effectLocal := module.Macros.EffectLocal
	if effectLocal == "" {
		effectLocal = analyzer.EffectMacro
	}
	return &Visitor{
		module:      module,
		class:       class,
		edits:       &EditList{},
		shadow:      NewShadowStack(),
		helpers:     make(map[runtime.HelperID]bool),
		warn:        warn,
		opts:        opts,
		stateLocal:  stateLocal,
		effectLocal: effectLocal,
	}
}

// HelpersUsed returns the runtime helpers this compile actually emitted
// calls to, for the import emitter.
func (v *Visitor) HelpersUsed() map[runtime.HelperID]bool {
	return v.helpers
}

// Run walks the module's AST and returns the accumulated edit list, or a
// *diag.FatalError on a fatal malformed-reactive-use per spec.md §4.2.
func (v *Visitor) Run() (*EditList, error) {
	if v.module.AST == nil || v.module.AST.Root == nil {
		return v.edits, nil
	}
	if err := v.visitStatements(v.module.AST.Root, true); err != nil {
		return nil, err
	}
	return v.edits, nil
}

func (v *Visitor) use(h runtime.HelperID) string {
	v.helpers[h] = true
	return runtime.Alias(h)
}

func (v *Visitor) isTracked(name string) bool {
	if v.shadow.IsShadowed(name) {
		return false
	}
	for i := len(v.propsStack) - 1; i >= 0; i-- {
		if v.propsStack[i][name] {
			return true
		}
	}
	return v.class.StateVars[name] || v.class.MemoVars[name] || v.class.AliasVars[name]
}

func (v *Visitor) isSignal(name string) bool {
	return !v.shadow.IsShadowed(name) && v.class.StateVars[name]
}

func (v *Visitor) line(n *parser.Node) uint32 {
	line, _ := n.StartPoint()
	return line + 1
}

// visitStatements walks each statement in a block/program body. topLevel
// is true only for the module's own root or a function's own top-level
// statement list — `$state` declarations are only legal there, never
// inside a nested block, and only a top-level list is ever eligible for
// Rule D/J region grouping (§4.4: "Nested regions ... disabled").
func (v *Visitor) visitStatements(body *parser.Node, topLevel bool) error {
	stmts := body.NamedChildren()

	if !topLevel {
		for _, stmt := range stmts {
			if err := v.visitStatement(stmt, topLevel); err != nil {
				return err
			}
		}
		return nil
	}

	frame := make(map[string]bool)
	v.propsStack = append(v.propsStack, frame)
	defer func() { v.propsStack = v.propsStack[:len(v.propsStack)-1] }()

	for i := 0; i < len(stmts); {
		next, matched, err := v.tryGroupRegion(stmts, i, frame)
		if err != nil {
			return err
		}
		if matched {
			i = next
			continue
		}
		if err := v.visitStatement(stmts[i], topLevel); err != nil {
			return err
		}
		i++
	}
	return nil
}

func (v *Visitor) visitStatement(stmt *parser.Node, topLevel bool) error {
	switch stmt.Type() {
	case "lexical_declaration", "variable_declaration":
		return v.visitDeclaration(stmt, topLevel)
	case "expression_statement":
		children := stmt.NamedChildren()
		if len(children) == 0 {
			return nil
		}
		return v.visitExpression(children[0])
	case "if_statement", "switch_statement", "for_statement", "for_in_statement",
		"while_statement", "do_statement", "try_statement":
		return v.visitNestedBlock(stmt)
	case "function_declaration":
		return v.visitFunctionLike(stmt)
	case "export_statement":
		for _, c := range stmt.NamedChildren() {
			if err := v.visitStatement(c, topLevel); err != nil {
				return err
			}
		}
		return nil
	case "return_statement":
		for _, c := range stmt.NamedChildren() {
			if err := v.visitExpression(c); err != nil {
				return err
			}
		}
		return nil
	default:
		for _, c := range stmt.NamedChildren() {
			if err := v.visitExpression(c); err != nil {
				return err
			}
		}
		return nil
	}
}

// visitNestedBlock rejects $state anywhere inside a loop/conditional
// body (spec.md §4.2 failure semantics) while still rewriting reads of
// already-tracked names within it.
func (v *Visitor) visitNestedBlock(n *parser.Node) error {
	if stateCall := v.findStateCall(n); stateCall != nil {
		return diag.NewFatal(diag.CodeStatePlacement, v.module.FilePath, v.line(stateCall), 0,
			"$state is not allowed inside a %s", n.Type())
	}
	for _, c := range n.NamedChildren() {
		if err := v.visitExpression(c); err != nil {
			return err
		}
	}
	return nil
}

func (v *Visitor) findStateCall(n *parser.Node) *parser.Node {
	var found *parser.Node
	n.Walk(func(c *parser.Node) bool {
		if found != nil {
			return false
		}
		if c.Type() == "function_declaration" || c.Type() == "arrow_function" || c.Type() == "function_expression" {
			return false // a nested function's own $state use is reported separately
		}
		if c.IsCallTo(v.stateLocal) {
			found = c
			return false
		}
		return true
	})
	return found
}

// visitFunctionLike pushes a shadow frame for the function's parameters
// and recurses into its body. `$state` is legal directly at a function's
// own top-level statement list, same as at module top level; only a
// further-nested block (if/for/while/switch/try) rejects it. A single
// object-pattern parameter on a function whose body renders JSX is a
// component with destructured props (Rule E, spec.md §4.2) and is
// rewritten instead of shadowed.
func (v *Visitor) visitFunctionLike(fn *parser.Node) error {
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		params = fn.ChildByFieldName("parameter")
	}

	body := fn.ChildByFieldName("body")

	if pattern := singleObjectPatternParam(params); pattern != nil && body != nil &&
		body.Type() == "statement_block" && containsDirectJSX(body) {
		return v.rewriteProps(pattern, body)
	}

	v.shadow.Push(params)
	defer v.shadow.Pop()

	if body == nil {
		return nil
	}
	if body.Type() == "statement_block" {
		// $state is legal directly in this function's own top-level
		// statement list; visitNestedBlock rejects it inside any
		// if/for/while/switch/try nested within this body, and
		// findStateCall (called from there) itself stops at the
		// boundary of any further-nested function, so a $state use
		// several function-levels down is reported at its own
		// function's visitFunctionLike call, not here.
		return v.visitStatements(body, true)
	}
	return v.visitExpression(body)
}

// singleObjectPatternParam returns params' sole object_pattern parameter,
// unwrapping a required_parameter/optional_parameter wrapper if present,
// or nil if params has zero or more than one parameter, or its one
// parameter isn't an object pattern.
func singleObjectPatternParam(params *parser.Node) *parser.Node {
	if params == nil {
		return nil
	}
	children := params.NamedChildren()
	if len(children) != 1 {
		return nil
	}
	p := children[0]
	switch p.Type() {
	case "object_pattern":
		return p
	case "required_parameter", "optional_parameter":
		if pattern := p.ChildByFieldName("pattern"); pattern != nil && pattern.Type() == "object_pattern" {
			return pattern
		}
	}
	return nil
}

// containsDirectJSX reports whether a JSX node appears anywhere in body
// without crossing into a nested function's own body, mirroring
// findStateCall's scoping (a callback's JSX doesn't make its enclosing
// function a props-destructuring component).
func containsDirectJSX(body *parser.Node) bool {
	found := false
	body.Walk(func(c *parser.Node) bool {
		if found {
			return false
		}
		switch c.Type() {
		case "function_declaration", "arrow_function", "function_expression":
			return false
		case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
			found = true
			return false
		}
		return true
	})
	return found
}

// propsEntry is one destructured name bound to a `__props.<path>`
// accessor (or the rest-pattern name, which is bound to a plain
// snapshot instead).
type propsEntry struct {
	Local, Path string
	Default     *parser.Node
}

// destructureProps walks a single-level object_pattern (the grammar
// doesn't allow destructuring props any deeper without naming every
// level explicitly) and returns its named entries plus its rest entry,
// if any.
func destructureProps(pattern *parser.Node) ([]propsEntry, *propsEntry) {
	var entries []propsEntry
	var rest *propsEntry
	for _, c := range pattern.NamedChildren() {
		switch c.Type() {
		case "shorthand_property_identifier_pattern":
			name := c.Text()
			entries = append(entries, propsEntry{Local: name, Path: name})

		case "object_assignment_pattern":
			left := c.ChildByFieldName("left")
			right := c.ChildByFieldName("right")
			if left != nil {
				name := left.Text()
				entries = append(entries, propsEntry{Local: name, Path: name, Default: right})
			}

		case "pair_pattern":
			key := c.ChildByFieldName("key")
			value := c.ChildByFieldName("value")
			if key == nil || value == nil {
				continue
			}
			if value.Type() == "assignment_pattern" {
				local := value.ChildByFieldName("left")
				def := value.ChildByFieldName("right")
				if local != nil {
					entries = append(entries, propsEntry{Local: local.Text(), Path: key.Text(), Default: def})
				}
			} else if value.Type() == "identifier" {
				entries = append(entries, propsEntry{Local: value.Text(), Path: key.Text()})
			}

		case "rest_pattern":
			for _, rc := range c.NamedChildren() {
				if rc.Type() == "identifier" {
					name := rc.Text()
					rest = &propsEntry{Local: name, Path: name}
				}
			}
		}
	}
	return entries, rest
}

// propsAccessorStmt renders one entry's getter-accessor prologue
// statement: `const name = () => __props.path;`, or, when the
// destructuring pattern carried a default, the `tmp === undefined ?
// expr : tmp` form spec.md §4.2 specifies.
func propsAccessorStmt(e propsEntry) string {
	if e.Default == nil {
		return fmt.Sprintf("const %s = () => __props.%s;\n", e.Local, e.Path)
	}
	return fmt.Sprintf(
		"const %s = () => { const tmp = __props.%s; return tmp === undefined ? %s : tmp; };\n",
		e.Local, e.Path, e.Default.Text())
}

// rewriteProps implements Rule E (spec.md §4.2): the destructuring
// parameter becomes a single `__props` parameter, and every destructured
// name is rebound via a getter-accessor prologue inserted at the top of
// the function body, so the rest of the body can go on reading `name`
// the same way it reads any other memo — visitExpression rewrites those
// reads to `name()` because the name is pushed onto v.propsStack.
func (v *Visitor) rewriteProps(pattern, body *parser.Node) error {
	entries, rest := destructureProps(pattern)

	v.edits.Splice(pattern.StartByte(), pattern.EndByte(), "__props")

	names := make(map[string]bool, len(entries)+1)
	var prologue strings.Builder
	for _, e := range entries {
		names[e.Local] = true
		prologue.WriteString(propsAccessorStmt(e))
	}
	if rest != nil {
		names[rest.Local] = true
		v.warn.Warn(diag.NewWarning(diag.CodePropsRest, v.module.FilePath, v.line(pattern), 0,
			"rest pattern %q in destructured props is a point-in-time snapshot, not reactive", rest.Local))
		prologue.WriteString(fmt.Sprintf("const %s = { ...__props };\n", rest.Local))
	}

	if prologue.Len() > 0 {
		insertAt := body.StartByte() + 1 // just inside the body's opening '{'
		v.edits.Splice(insertAt, insertAt, "\n"+prologue.String())
	}

	v.propsStack = append(v.propsStack, names)
	defer func() { v.propsStack = v.propsStack[:len(v.propsStack)-1] }()

	return v.visitStatements(body, true)
}

// visitDeclaration handles `let x = $state(e)` and `const k = e`
// declarations, per spec.md §4.2's rewrite table.
func (v *Visitor) visitDeclaration(decl *parser.Node, topLevel bool) error {
	for _, child := range decl.NamedChildren() {
		if child.Type() != "variable_declarator" {
			continue
		}
		nameNode := child.ChildByFieldName("name")
		valueNode := child.ChildByFieldName("value")

		if valueNode != nil && valueNode.IsCallTo(v.stateLocal) {
			if nameNode == nil || nameNode.Type() != "identifier" {
				return diag.NewFatal(diag.CodeStateDestructure, v.module.FilePath, v.line(child), 0,
					"Destructuring $state is not supported")
			}
			if !topLevel {
				return diag.NewFatal(diag.CodeStatePlacement, v.module.FilePath, v.line(child), 0,
					"$state must be declared at module or function top level")
			}
			args := valueNode.Arguments()
			if len(args) > 0 {
				if err := v.visitExpression(args[0]); err != nil {
					return err
				}
			}
			alias := v.use(runtime.Signal)
			fn := valueNode.ChildByFieldName("function")
			if fn != nil {
				v.edits.Splice(fn.StartByte(), fn.EndByte(), alias)
			}
			continue
		}

		if nameNode == nil || valueNode == nil {
			continue
		}
		name := nameNode.Text()

		if v.class.AliasVars[name] {
			if err := v.visitExpression(valueNode); err != nil {
				return err
			}
			continue
		}

		if v.class.MemoVars[name] {
			if err := v.visitExpression(valueNode); err != nil {
				return err
			}
			if v.class.GetterOnlyVars[name] {
				wrapped := fmt.Sprintf("() => %s", v.renderNode(valueNode))
				v.edits.Splice(valueNode.StartByte(), valueNode.EndByte(), wrapped)
			} else {
				alias := v.use(runtime.Memo)
				wrapped := fmt.Sprintf("%s(() => %s)", alias, v.renderNode(valueNode))
				v.edits.Splice(valueNode.StartByte(), valueNode.EndByte(), wrapped)
			}
			continue
		}

		// Not a reactive binding: still rewrite any tracked reads inside
		// its initializer (e.g. a plain local computed from a signal
		// without itself becoming a memo candidate — excluded upstream
		// only when classify found no tracked reference at all, so this
		// is a defensive no-op in the common case).
		if err := v.visitExpression(valueNode); err != nil {
			return err
		}
	}
	return nil
}

// visitExpression rewrites e in place (recording edits) and recurses
// into its subexpressions, per spec.md §4.2's identifier/assignment
// rewrite rules. JSX nodes are delegated to visitJSX.
func (v *Visitor) visitExpression(e *parser.Node) error {
	if e == nil {
		return nil
	}

	switch e.Type() {
	case "identifier":
		if v.isTracked(e.Text()) {
			v.edits.Splice(e.EndByte(), e.EndByte(), "()")
		}
		return nil

	case "assignment_expression", "augmented_assignment_expression":
		return v.visitAssignment(e)

	case "update_expression":
		return v.visitUpdate(e)

	case "call_expression":
		if e.IsCallTo(v.effectLocal) {
			args := e.Arguments()
			for _, a := range args {
				if err := v.visitExpression(a); err != nil {
					return err
				}
			}
			alias := v.use(runtime.Effect)
			fn := e.ChildByFieldName("function")
			if fn != nil {
				v.edits.Splice(fn.StartByte(), fn.EndByte(), alias)
			}
			return nil
		}
		for _, a := range e.Arguments() {
			if err := v.visitExpression(a); err != nil {
				return err
			}
		}
		if fn := e.ChildByFieldName("function"); fn != nil && fn.Type() == "member_expression" {
			return v.visitMemberExpression(fn)
		}
		return nil

	case "member_expression":
		return v.visitMemberExpression(e)

	case "subscript_expression":
		obj := e.ChildByFieldName("object")
		index := e.ChildByFieldName("index")
		if obj != nil && obj.Type() == "identifier" && v.isTracked(obj.Text()) {
			if index != nil && index.Type() != "string" && index.Type() != "number" {
				v.warn.Warn(diag.NewWarning(diag.CodeDynamicAccess, v.module.FilePath, v.line(e), 0,
					"dynamic property access on tracked value %q is not reactively tracked", obj.Text()))
			}
		}
		if index != nil {
			return v.visitExpression(index)
		}
		return nil

	case "object":
		for _, prop := range e.NamedChildren() {
			if prop.Type() == "shorthand_property_identifier" && v.isTracked(prop.Text()) {
				v.edits.Splice(prop.EndByte(), prop.EndByte(), fmt.Sprintf(": %s()", prop.Text()))
				continue
			}
			if err := v.visitExpression(prop); err != nil {
				return err
			}
		}
		return nil

	case "pair":
		return v.visitExpression(e.ChildByFieldName("value"))

	case "arrow_function", "function_expression":
		return v.visitFunctionLike(e)

	case "jsx_element", "jsx_self_closing_element", "jsx_fragment":
		return v.visitJSX(e)

	case "parenthesized_expression", "unary_expression", "await_expression", "spread_element":
		for _, c := range e.NamedChildren() {
			if err := v.visitExpression(c); err != nil {
				return err
			}
		}
		return nil

	default:
		for _, c := range e.NamedChildren() {
			if err := v.visitExpression(c); err != nil {
				return err
			}
		}
		return nil
	}
}

// visitMemberExpression rewrites obj.prop reads: a tracked object's
// property access is not itself made reactive (only whole-signal reads
// are wrapped), but the object sub-expression may still be a tracked
// identifier that needs `()`.
func (v *Visitor) visitMemberExpression(e *parser.Node) error {
	obj := e.ChildByFieldName("object")
	if obj == nil {
		return nil
	}
	if obj.Type() == "identifier" && v.isTracked(obj.Text()) {
		v.edits.Splice(obj.EndByte(), obj.EndByte(), "()")
		return nil
	}
	return v.visitExpression(obj)
}

// visitAssignment rewrites `x = e`, `x += e`, ... per spec.md §4.2.
func (v *Visitor) visitAssignment(e *parser.Node) error {
	left := e.ChildByFieldName("left")
	right := e.ChildByFieldName("right")
	op := assignmentOperator(e)

	if left == nil || left.Type() != "identifier" {
		if left != nil && left.Type() == "member_expression" {
			obj := left.ChildByFieldName("object")
			if obj != nil && obj.Type() == "identifier" && v.isTracked(obj.Text()) {
				v.warn.Warn(diag.NewWarning(diag.CodeDeepMutation, v.module.FilePath, v.line(e), 0,
					"mutating a property of tracked value %q does not trigger reactivity", obj.Text()))
			}
		}
		if right != nil {
			return v.visitExpression(right)
		}
		return nil
	}

	name := left.Text()
	if !v.isSignal(name) {
		if right != nil {
			return v.visitExpression(right)
		}
		return nil
	}

	if right != nil {
		if err := v.visitExpression(right); err != nil {
			return err
		}
	}
	rhsText := ""
	if right != nil {
		rhsText = right.Text()
	}

	var replacement string
	if op == "=" {
		replacement = fmt.Sprintf("%s(%s)", name, rhsText)
	} else {
		binOp := op[:len(op)-1] // strip trailing '='
		replacement = fmt.Sprintf("%s(%s() %s %s)", name, name, binOp, rhsText)
	}
	v.edits.Splice(e.StartByte(), e.EndByte(), replacement)
	return nil
}

// visitUpdate rewrites `++x`, `x++`, `--x`, `x--` per spec.md §4.2.
func (v *Visitor) visitUpdate(e *parser.Node) error {
	operand := e.ChildByFieldName("argument")
	if operand == nil {
		children := e.NamedChildren()
		if len(children) > 0 {
			operand = children[0]
		}
	}
	if operand == nil || operand.Type() != "identifier" || !v.isSignal(operand.Text()) {
		return nil
	}
	name := operand.Text()
	delta := "+ 1"
	if updateIsDecrement(e) {
		delta = "- 1"
	}
	replacement := fmt.Sprintf("%s(%s() %s)", name, name, delta)
	v.edits.Splice(e.StartByte(), e.EndByte(), replacement)
	return nil
}

// assignmentOperator reports the textual operator of an
// assignment_expression ("=") or augmented_assignment_expression
// ("+=", "-=", ...). Prefers the grammar's "operator" field; falls back
// to scanning the node's own direct (non-named) children for the
// operator token, since punctuation tokens are anonymous.
func assignmentOperator(e *parser.Node) string {
	if opNode := e.ChildByFieldName("operator"); opNode != nil {
		return opNode.Text()
	}
	for _, c := range e.Children() {
		switch c.Text() {
		case "=", "+=", "-=", "*=", "/=", "%=":
			return c.Text()
		}
	}
	return "="
}

func updateIsDecrement(e *parser.Node) bool {
	for _, c := range e.Children() {
		if c.Type() == "--" {
			return true
		}
	}
	return false
}
