package transform

import "github.com/oskari/fictc/internal/parser"

// ShadowStack tracks which tracked names are locally rebound within the
// function-like node currently being visited, per spec.md §4.2's
// shadowing rules: every binding-pattern name in a function's parameter
// list — recursively through array/object patterns — shadows a
// same-named tracked identifier for that function's body.
type ShadowStack struct {
	frames []map[string]bool
}

// NewShadowStack returns an empty stack.
func NewShadowStack() *ShadowStack {
	return &ShadowStack{}
}

// Push opens a new shadow frame populated with every binding name found
// in params (a formal_parameters node, or nil for a zero-arg function).
func (s *ShadowStack) Push(params *parser.Node) {
	frame := make(map[string]bool)
	if params != nil {
		for _, p := range params.NamedChildren() {
			collectBindingNames(p, frame)
		}
	}
	s.frames = append(s.frames, frame)
}

// PushNames opens a new shadow frame with an explicit name set. The
// visitor does not call it: catch-clause parameters and for-loop
// bindings open no shadow frame.
func (s *ShadowStack) PushNames(names []string) {
	frame := make(map[string]bool, len(names))
	for _, n := range names {
		frame[n] = true
	}
	s.frames = append(s.frames, frame)
}

// Pop closes the innermost frame.
func (s *ShadowStack) Pop() {
	if len(s.frames) == 0 {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// IsShadowed reports whether name is shadowed by any live frame.
func (s *ShadowStack) IsShadowed(name string) bool {
	for _, f := range s.frames {
		if f[name] {
			return true
		}
	}
	return false
}

// collectBindingNames recursively extracts every identifier bound by a
// parameter node — identifier, required_parameter/optional_parameter
// wrappers, object_pattern, array_pattern, and assignment patterns
// (defaulted parameters) — grounded on the teacher's
// graph/builder.go extractParamNames walk over the same node shapes.
func collectBindingNames(n *parser.Node, out map[string]bool) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		out[n.Text()] = true
	case "required_parameter", "optional_parameter":
		if pattern := n.ChildByFieldName("pattern"); pattern != nil {
			collectBindingNames(pattern, out)
		} else {
			for _, c := range n.NamedChildren() {
				collectBindingNames(c, out)
			}
		}
	case "assignment_pattern":
		if left := n.ChildByFieldName("left"); left != nil {
			collectBindingNames(left, out)
		}
	case "object_pattern":
		for _, c := range n.NamedChildren() {
			switch c.Type() {
			case "shorthand_property_identifier_pattern":
				out[c.Text()] = true
			case "pair_pattern":
				if value := c.ChildByFieldName("value"); value != nil {
					collectBindingNames(value, out)
				}
			case "rest_pattern":
				for _, rc := range c.NamedChildren() {
					collectBindingNames(rc, out)
				}
			default:
				collectBindingNames(c, out)
			}
		}
	case "array_pattern", "rest_pattern":
		for _, c := range n.NamedChildren() {
			collectBindingNames(c, out)
		}
	}
}
