package transform

import (
	"fmt"
	"strings"

	"github.com/oskari/fictc/internal/parser"
	"github.com/oskari/fictc/internal/runtime"
)

// visitJSX dispatches a jsx_element/jsx_self_closing_element/jsx_fragment
// node to attribute and child rewriting per spec.md §4.2 items 1-3, and
// to the fine-grained lowering path (§4.5) when enabled and the tag is
// an intrinsic (lowercase) element.
func (v *Visitor) visitJSX(n *parser.Node) error {
	switch n.Type() {
	case "jsx_fragment":
		for _, c := range n.NamedChildren() {
			if err := v.visitJSXChild(c); err != nil {
				return err
			}
		}
		return nil
	case "jsx_self_closing_element", "jsx_element":
		opening := jsxOpening(n)

		if v.opts.FineGrainedDom && opening != nil && isIntrinsicTag(elementTag(opening)) {
			replacement, err := v.lowerFineGrainedElement(n, opening)
			if err != nil {
				return err
			}
			v.edits.Splice(n.StartByte(), n.EndByte(), replacement)
			return nil
		}

		if opening != nil {
			if err := v.visitJSXAttributes(opening); err != nil {
				return err
			}
		}
		if n.Type() == "jsx_element" {
			for _, c := range n.NamedChildren() {
				if c.Type() == "jsx_opening_element" || c.Type() == "jsx_closing_element" {
					continue
				}
				if err := v.visitJSXChild(c); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return nil
}

// jsxOpening returns the jsx_opening_element of n (or n itself, for a
// self-closing element), grounded on the teacher's
// rules.getOpeningElement helper used throughout its JSX-aware rules.
func jsxOpening(n *parser.Node) *parser.Node {
	if n.Type() == "jsx_self_closing_element" {
		return n
	}
	for _, c := range n.NamedChildren() {
		if c.Type() == "jsx_opening_element" {
			return c
		}
	}
	return nil
}

// elementTag returns the tag name of a jsx_opening_element /
// jsx_self_closing_element node, grounded on the teacher's
// rules.getComponentName helper.
func elementTag(opening *parser.Node) string {
	for _, c := range opening.Children() {
		switch c.Type() {
		case "identifier", "jsx_identifier":
			return c.Text()
		}
	}
	return ""
}

// isIntrinsicTag reports whether tag is a lowercase (DOM) element name
// rather than a capitalized component reference, per spec.md §4.5.
func isIntrinsicTag(tag string) bool {
	return tag != "" && tag[0] >= 'a' && tag[0] <= 'z'
}

func (v *Visitor) visitJSXAttributes(opening *parser.Node) error {
	for _, attr := range opening.NamedChildren() {
		switch attr.Type() {
		case "jsx_attribute":
			if err := v.visitJSXAttribute(attr); err != nil {
				return err
			}
		case "jsx_spread_attribute", "jsx_expression":
			// {...e}: rewrite inner reads only, per spec.md §4.2 item 3.
			for _, c := range attr.NamedChildren() {
				if err := v.visitExpression(c); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// visitJSXAttribute implements spec.md §4.2 item 1's three-way split:
// key/ref (rewrite reads only), event handler (rewrite reads/writes, no
// extra wrapper), or ordinary reactive attribute (wrap in a closure when
// the value reads a tracked name).
func (v *Visitor) visitJSXAttribute(attr *parser.Node) error {
	var attrName string
	var value *parser.Node
	for _, c := range attr.Children() {
		switch c.Type() {
		case "property_identifier":
			attrName = c.Text()
		case "jsx_expression":
			value = c
		}
	}
	if value == nil {
		return nil
	}
	inner := firstNamedChild(value)
	if inner == nil {
		return nil
	}

	switch {
	case attrName == "key" || attrName == "ref":
		return v.visitExpression(inner)

	case isEventHandlerName(attrName):
		return v.visitExpression(inner)

	default:
		readsTracked := v.exprReadsTracked(inner)
		if err := v.visitExpression(inner); err != nil {
			return err
		}
		if readsTracked && !isFunctionLiteral(inner) {
			wrapped := fmt.Sprintf("() => %s", inner.Text())
			v.edits.Splice(inner.StartByte(), inner.EndByte(), wrapped)
		}
		return nil
	}
}

// visitJSXChild implements spec.md §4.2 item 2's child-expression
// lowering decision tree.
func (v *Visitor) visitJSXChild(child *parser.Node) error {
	if child.Type() != "jsx_expression" {
		if child.Type() == "jsx_element" || child.Type() == "jsx_self_closing_element" || child.Type() == "jsx_fragment" {
			return v.visitJSX(child)
		}
		return nil // plain text/whitespace
	}

	inner := firstNamedChild(child)
	if inner == nil {
		return nil
	}

	if isFunctionLiteral(inner) {
		return v.visitExpression(inner)
	}

	if cond, whenTrue, whenFalse, ok := asConditional(inner); ok {
		return v.lowerConditional(inner, cond, whenTrue, whenFalse)
	}

	if xs, fn, ok := asMapCall(inner); ok {
		return v.lowerKeyedList(inner, xs, fn)
	}

	if v.exprReadsTracked(inner) {
		if err := v.visitExpression(inner); err != nil {
			return err
		}
		alias := v.use(runtime.Insert)
		wrapped := fmt.Sprintf("%s(() => %s)", alias, inner.Text())
		v.edits.Splice(inner.StartByte(), inner.EndByte(), wrapped)
		return nil
	}

	return v.visitExpression(inner)
}

// lowerConditional rewrites `c ? a : b` / `c && a` into a Conditional
// runtime call per spec.md §4.2 item 2, visiting (and thus rewriting
// reads within) all three branches before splicing.
func (v *Visitor) lowerConditional(inner, cond, whenTrue, whenFalse *parser.Node) error {
	for _, e := range []*parser.Node{cond, whenTrue, whenFalse} {
		if e != nil {
			if err := v.visitExpression(e); err != nil {
				return err
			}
		}
	}
	alias := v.use(runtime.Conditional)
	createElementAlias := v.use(runtime.CreateElement)

	falseBranch := "undefined"
	if whenFalse != nil {
		falseBranch = fmt.Sprintf("() => %s", whenFalse.Text())
	}
	condText := cond.Text()
	trueText := whenTrue.Text()
	replacement := fmt.Sprintf("%s(() => %s, () => %s, %s, [%s])",
		alias, condText, trueText, createElementAlias, falseBranch)
	v.edits.Splice(inner.StartByte(), inner.EndByte(), replacement)
	return nil
}

// lowerKeyedList rewrites `xs.map(fn)` into a KeyedList runtime call per
// spec.md §4.2 item 2, extracting a key function from a `key={…}`
// attribute on the rendered element when present.
func (v *Visitor) lowerKeyedList(inner, xs, fn *parser.Node) error {
	if err := v.visitExpression(xs); err != nil {
		return err
	}
	if err := v.visitExpression(fn); err != nil {
		return err
	}
	alias := v.use(runtime.KeyedList)
	keyFn := extractKeyFn(fn)
	replacement := fmt.Sprintf("%s(() => %s, %s, %s, %s)",
		alias, xs.Text(), keyFn, fn.Text(), v.use(runtime.CreateElement))
	v.edits.Splice(inner.StartByte(), inner.EndByte(), replacement)
	return nil
}

// extractKeyFn finds the key={…} attribute on the single JSX element a
// .map renderFn returns, building an extractor arrow from it; falls
// back to an index-based key when no key attribute is present.
func extractKeyFn(renderFn *parser.Node) string {
	params := renderFn.ChildByFieldName("parameters")
	paramName := "item"
	if params != nil {
		named := params.NamedChildren()
		if len(named) > 0 && named[0].Type() == "identifier" {
			paramName = named[0].Text()
		}
	}

	var element *parser.Node
	renderFn.Walk(func(n *parser.Node) bool {
		if element != nil {
			return false
		}
		if n.Type() == "jsx_element" || n.Type() == "jsx_self_closing_element" {
			element = n
			return false
		}
		return true
	})
	if element != nil {
		opening := element
		if element.Type() == "jsx_element" {
			for _, c := range element.NamedChildren() {
				if c.Type() == "jsx_opening_element" {
					opening = c
					break
				}
			}
		}
		for _, attr := range opening.NamedChildren() {
			if attr.Type() != "jsx_attribute" {
				continue
			}
			var name string
			var value *parser.Node
			for _, c := range attr.Children() {
				switch c.Type() {
				case "property_identifier":
					name = c.Text()
				case "jsx_expression":
					value = c
				}
			}
			if name == "key" && value != nil {
				if inner := firstNamedChild(value); inner != nil {
					return fmt.Sprintf("(%s) => %s", paramName, inner.Text())
				}
			}
		}
	}
	return "(_, __index) => __index"
}

func firstNamedChild(n *parser.Node) *parser.Node {
	children := n.NamedChildren()
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

func isFunctionLiteral(n *parser.Node) bool {
	switch n.Type() {
	case "arrow_function", "function_expression", "function":
		return true
	}
	return false
}

func isEventHandlerName(name string) bool {
	return len(name) > 2 && name[0] == 'o' && name[1] == 'n' && name[2] >= 'A' && name[2] <= 'Z'
}

// asConditional recognizes `c ? a : b` and `c && a` child expressions.
func asConditional(e *parser.Node) (cond, whenTrue, whenFalse *parser.Node, ok bool) {
	switch e.Type() {
	case "ternary_expression":
		return e.ChildByFieldName("condition"), e.ChildByFieldName("consequence"), e.ChildByFieldName("alternative"), true
	case "binary_expression":
		if opNode := e.ChildByFieldName("operator"); opNode != nil && opNode.Text() == "&&" {
			return e.ChildByFieldName("left"), e.ChildByFieldName("right"), nil, true
		}
		// Fall back to scanning children for the "&&" token when the
		// grammar doesn't expose an "operator" field.
		for _, c := range e.Children() {
			if c.Text() == "&&" {
				return e.ChildByFieldName("left"), e.ChildByFieldName("right"), nil, true
			}
		}
	}
	return nil, nil, nil, false
}

// asMapCall recognizes `xs.map(fn)`.
func asMapCall(e *parser.Node) (xs, fn *parser.Node, ok bool) {
	if e.Type() != "call_expression" {
		return nil, nil, false
	}
	callee := e.ChildByFieldName("function")
	if callee == nil || callee.Type() != "member_expression" {
		return nil, nil, false
	}
	prop := callee.ChildByFieldName("property")
	if prop == nil || prop.Text() != "map" {
		return nil, nil, false
	}
	args := e.Arguments()
	if len(args) == 0 {
		return nil, nil, false
	}
	return callee.ChildByFieldName("object"), args[0], true
}

// lowerFineGrainedElement implements spec.md §4.5: an intrinsic JSX
// element becomes an IIFE that creates the element with
// document.createElement, applies every attribute binding, appends
// every child, and returns the node — replacing the jsx_element's text
// wholesale rather than leaving JSX syntax for a downstream pragma, the
// way the VDOM path does.
func (v *Visitor) lowerFineGrainedElement(n, opening *parser.Node) (string, error) {
	tag := elementTag(opening)
	elVar := fmt.Sprintf("__fictEl_%d", v.fineGrainedCounter)
	v.fineGrainedCounter++

	stmts := []string{fmt.Sprintf("const %s = document.createElement(%q);", elVar, tag)}

	for _, attr := range opening.NamedChildren() {
		switch attr.Type() {
		case "jsx_attribute":
			stmt, err := v.lowerFineGrainedAttribute(elVar, attr)
			if err != nil {
				return "", err
			}
			if stmt != "" {
				stmts = append(stmts, stmt)
			}
		case "jsx_spread_attribute", "jsx_expression":
			for _, c := range attr.NamedChildren() {
				if err := v.visitExpression(c); err != nil {
					return "", err
				}
			}
		}
	}

	if n.Type() == "jsx_element" {
		for _, c := range n.NamedChildren() {
			if c.Type() == "jsx_opening_element" || c.Type() == "jsx_closing_element" {
				continue
			}
			childStmts, err := v.lowerFineGrainedChild(elVar, c)
			if err != nil {
				return "", err
			}
			stmts = append(stmts, childStmts...)
		}
	}

	stmts = append(stmts, fmt.Sprintf("return %s;", elVar))
	return fmt.Sprintf("(() => {\n  %s\n})()", strings.Join(stmts, "\n  ")), nil
}

// lowerFineGrainedAttribute classifies one jsx_attribute per spec.md
// §4.5's list and returns the single statement binding (or directly
// setting) it against elVar, or "" for an attribute consumed
// structurally elsewhere (key).
func (v *Visitor) lowerFineGrainedAttribute(elVar string, attr *parser.Node) (string, error) {
	var attrName string
	var value *parser.Node
	for _, c := range attr.Children() {
		switch c.Type() {
		case "property_identifier":
			attrName = c.Text()
		case "jsx_expression", "string":
			value = c
		}
	}
	if attrName == "" || attrName == "key" {
		return "", nil
	}

	if value != nil && value.Type() == "string" {
		return staticAttributeStmt(elVar, attrName, value.Text()), nil
	}

	var inner *parser.Node
	if value != nil {
		inner = firstNamedChild(value)
	}
	if inner == nil {
		return staticAttributeStmt(elVar, attrName, "true"), nil
	}

	if attrName == "ref" {
		if err := v.visitExpression(inner); err != nil {
			return "", err
		}
		innerText := v.renderNode(inner)
		if isFunctionLiteral(inner) {
			return fmt.Sprintf("(%s)(%s);", innerText, elVar), nil
		}
		return fmt.Sprintf("%s.current = %s;", innerText, elVar), nil
	}

	if isEventHandlerName(attrName) {
		if err := v.visitExpression(inner); err != nil {
			return "", err
		}
		event, opts := eventBindOptions(attrName)
		alias := v.use(runtime.BindEvent)
		return fmt.Sprintf("%s(%s, %q, %s%s);", alias, elVar, event, v.renderNode(inner), opts), nil
	}

	if err := v.visitExpression(inner); err != nil {
		return "", err
	}
	switch attrName {
	case "class", "className":
		return v.lowerFineGrainedNamedBind(runtime.BindClass, elVar, "", inner), nil
	case "style":
		return v.lowerFineGrainedNamedBind(runtime.BindStyle, elVar, "", inner), nil
	default:
		if runtime.DOMProperties[attrName] {
			return v.lowerFineGrainedNamedBind(runtime.BindProperty, elVar, attrName, inner), nil
		}
		return v.lowerFineGrainedNamedBind(runtime.BindAttribute, elVar, attrName, inner), nil
	}
}

// staticAttributeStmt renders a non-reactive attribute directly, since
// binding a value that can never change would only add runtime
// overhead.
func staticAttributeStmt(elVar, attrName, literal string) string {
	if attrName == "class" || attrName == "className" {
		return fmt.Sprintf("%s.className = %s;", elVar, literal)
	}
	return fmt.Sprintf("%s.setAttribute(%q, %s);", elVar, attrName, literal)
}

// lowerFineGrainedNamedBind renders a bind*(el, value) or, when key is
// non-empty, bind*(el, "key", value) call against one of the bindClass/
// bindStyle/bindProperty/bindAttribute helpers.
func (v *Visitor) lowerFineGrainedNamedBind(h runtime.HelperID, elVar, key string, inner *parser.Node) string {
	alias := v.use(h)
	valueExpr := fmt.Sprintf("() => %s", v.renderNode(inner))
	if key == "" {
		return fmt.Sprintf("%s(%s, %s);", alias, elVar, valueExpr)
	}
	return fmt.Sprintf("%s(%s, %q, %s);", alias, elVar, key, valueExpr)
}

// eventBindOptions strips any Capture/Passive/Once suffix from an
// onEventNameSuffix attribute name, returning the lowercased DOM event
// name and a trailing `, { ... }` addEventListener options argument (or
// "" when no suffix was present), per spec.md §4.5.
func eventBindOptions(attrName string) (event string, optionsArg string) {
	name := attrName[2:] // strip "on"
	var capture, passive, once bool
	for {
		switch {
		case strings.HasSuffix(name, "Capture"):
			name = strings.TrimSuffix(name, "Capture")
			capture = true
		case strings.HasSuffix(name, "Passive"):
			name = strings.TrimSuffix(name, "Passive")
			passive = true
		case strings.HasSuffix(name, "Once"):
			name = strings.TrimSuffix(name, "Once")
			once = true
		default:
			event = strings.ToLower(name)
			if capture || passive || once {
				var opts []string
				if capture {
					opts = append(opts, "capture: true")
				}
				if passive {
					opts = append(opts, "passive: true")
				}
				if once {
					opts = append(opts, "once: true")
				}
				optionsArg = fmt.Sprintf(", { %s }", strings.Join(opts, ", "))
			}
			return event, optionsArg
		}
	}
}

// lowerFineGrainedChild renders the statements that append one child of
// a fine-grained element to parentVar: a nested intrinsic element lowers
// recursively; a component or fragment bridges through Insert's
// explicit-parent form so the still-JSX-syntax subtree mounts under a
// downstream JSX pragma; a plain tracked read becomes a placeholder text
// node bound via bindText; conditional/list expressions bridge through
// Insert the same way a component child does; everything else is static
// text.
func (v *Visitor) lowerFineGrainedChild(parentVar string, child *parser.Node) ([]string, error) {
	switch child.Type() {
	case "jsx_element", "jsx_self_closing_element":
		opening := jsxOpening(child)
		if opening != nil && isIntrinsicTag(elementTag(opening)) {
			nested, err := v.lowerFineGrainedElement(child, opening)
			if err != nil {
				return nil, err
			}
			return []string{fmt.Sprintf("%s.appendChild(%s);", parentVar, nested)}, nil
		}
		if err := v.visitJSX(child); err != nil {
			return nil, err
		}
		return []string{v.bridgeInsert(parentVar, v.renderNode(child))}, nil

	case "jsx_fragment":
		if err := v.visitJSX(child); err != nil {
			return nil, err
		}
		return []string{v.bridgeInsert(parentVar, v.renderNode(child))}, nil

	case "jsx_expression":
		return v.lowerFineGrainedExpressionChild(parentVar, child)

	default:
		text := child.Text()
		if strings.TrimSpace(text) == "" {
			return nil, nil
		}
		return []string{fmt.Sprintf("%s.appendChild(document.createTextNode(%q));", parentVar, text)}, nil
	}
}

func (v *Visitor) lowerFineGrainedExpressionChild(parentVar string, child *parser.Node) ([]string, error) {
	inner := firstNamedChild(child)
	if inner == nil {
		return nil, nil
	}

	if isFunctionLiteral(inner) {
		return nil, v.visitExpression(inner)
	}

	if cond, whenTrue, whenFalse, ok := asConditional(inner); ok {
		for _, e := range []*parser.Node{cond, whenTrue, whenFalse} {
			if e != nil {
				if err := v.visitExpression(e); err != nil {
					return nil, err
				}
			}
		}
		condAlias := v.use(runtime.Conditional)
		createAlias := v.use(runtime.CreateElement)
		falseBranch := "undefined"
		if whenFalse != nil {
			falseBranch = fmt.Sprintf("() => %s", v.renderNode(whenFalse))
		}
		expr := fmt.Sprintf("%s(() => %s, () => %s, %s, [%s])",
			condAlias, v.renderNode(cond), v.renderNode(whenTrue), createAlias, falseBranch)
		return []string{v.bridgeInsert(parentVar, expr)}, nil
	}

	if xs, fn, ok := asMapCall(inner); ok {
		if err := v.visitExpression(xs); err != nil {
			return nil, err
		}
		if err := v.visitExpression(fn); err != nil {
			return nil, err
		}
		listAlias := v.use(runtime.KeyedList)
		createAlias := v.use(runtime.CreateElement)
		keyFn := extractKeyFn(fn)
		expr := fmt.Sprintf("%s(() => %s, %s, %s, %s)", listAlias, v.renderNode(xs), keyFn, v.renderNode(fn), createAlias)
		return []string{v.bridgeInsert(parentVar, expr)}, nil
	}

	if v.exprReadsTracked(inner) {
		if err := v.visitExpression(inner); err != nil {
			return nil, err
		}
		textVar := fmt.Sprintf("__fictText_%d", v.fineGrainedCounter)
		v.fineGrainedCounter++
		bindAlias := v.use(runtime.BindText)
		return []string{
			fmt.Sprintf("const %s = document.createTextNode(\"\");", textVar),
			fmt.Sprintf("%s.appendChild(%s);", parentVar, textVar),
			fmt.Sprintf("%s(%s, () => %s);", bindAlias, textVar, v.renderNode(inner)),
		}, nil
	}

	if err := v.visitExpression(inner); err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("%s.appendChild(document.createTextNode(String(%s)));", parentVar, v.renderNode(inner))}, nil
}

// renderNode reconstructs n's text with any edits already recorded
// against its span applied — used wherever fine-grained lowering embeds
// a sub-expression's text into a hand-built statement string instead of
// letting the top-level Apply pass render it in place.
func (v *Visitor) renderNode(n *parser.Node) string {
	return v.edits.RenderRange(v.module.AST.Source, n.StartByte(), n.EndByte())
}

// bridgeInsert renders the explicit-parent 3-argument form of Insert
// (spec.md §6's external-interface signature) used to mount a
// component/conditional/list child under a fine-grained parent, as
// opposed to the 1-argument form the plain VDOM path uses when the
// runtime itself owns the insertion point.
func (v *Visitor) bridgeInsert(parentVar, producerExpr string) string {
	insertAlias := v.use(runtime.Insert)
	createAlias := v.use(runtime.CreateElement)
	return fmt.Sprintf("%s(%s, () => %s, %s);", insertAlias, parentVar, producerExpr, createAlias)
}

// exprReadsTracked reports whether e reads any currently-tracked,
// non-shadowed identifier anywhere within it.
func (v *Visitor) exprReadsTracked(e *parser.Node) bool {
	found := false
	e.Walk(func(n *parser.Node) bool {
		if found {
			return false
		}
		if n.Type() == "identifier" && v.isTracked(n.Text()) {
			found = true
			return false
		}
		return true
	})
	return found
}
