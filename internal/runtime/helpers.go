// Package runtime names the external reactive runtime's contract (spec.md
// §6). fictc never implements these helpers — it only emits calls to them
// and tracks, per compile, which ones were actually used so the import
// emitter (internal/emit) can import exactly that set and no more.
package runtime

// HelperID identifies one runtime helper fictc may emit a call to.
type HelperID string

const (
	Signal        HelperID = "Signal"
	Memo          HelperID = "Memo"
	Effect        HelperID = "Effect"
	CreateElement HelperID = "createElement"
	Fragment      HelperID = "Fragment"
	Conditional   HelperID = "Conditional"
	KeyedList     HelperID = "KeyedList"
	List          HelperID = "List"
	Insert        HelperID = "Insert"
	BindText      HelperID = "bindText"
	BindAttribute HelperID = "bindAttribute"
	BindProperty  HelperID = "bindProperty"
	BindClass     HelperID = "bindClass"
	BindStyle     HelperID = "bindStyle"
	BindEvent     HelperID = "bindEvent"
	OnDestroy     HelperID = "onDestroy"
)

// Alias is the stable import alias fictc binds each helper to in emitted
// code, per spec.md §6 ("createSignal as __fictSignal" pattern).
func Alias(id HelperID) string {
	return "__fict" + string(id)
}

// AllHelpers lists every helper the emitter may need an alias for, in a
// fixed order so import specifier lists are emitted deterministically
// (Rule D's determinism requirement in spec.md §9 extends naturally to
// import ordering).
var AllHelpers = []HelperID{
	Signal, Memo, Effect, CreateElement, Fragment, Conditional, KeyedList,
	List, Insert, BindText, BindAttribute, BindProperty, BindClass,
	BindStyle, BindEvent, OnDestroy,
}

// DOMProperties is the set of DOM properties (vs. plain attributes) spec.md
// §4.5 names for fine-grained lowering: value, checked, selected, disabled,
// readOnly, multiple, muted.
var DOMProperties = map[string]bool{
	"value":    true,
	"checked":  true,
	"selected": true,
	"disabled": true,
	"readOnly": true,
	"multiple": true,
	"muted":    true,
}
