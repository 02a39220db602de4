package transform

import (
	"fmt"
	"strings"

	"github.com/oskari/fictc/internal/parser"
	"github.com/oskari/fictc/internal/region"
	"github.com/oskari/fictc/internal/runtime"
)

// tryGroupRegion attempts Rule D/J region grouping (spec.md §4.4) at
// index i of a top-level statement list, mutating frame with every
// output name it emits so the rest of this statement list treats them
// as memo-like reads the same way classify-derived memos are (isTracked
// consults v.propsStack, and this frame is exactly the one
// visitStatements pushed for this list). Returns the index to resume
// per-statement visiting from, and whether a region was emitted at i.
func (v *Visitor) tryGroupRegion(stmts []*parser.Node, i int, frame map[string]bool) (int, bool, error) {
	cand, ok := region.Detect(stmts, i, v.isTracked)
	if !ok {
		return i, false, nil
	}

	// Rewrite reads/writes inside the if exactly as it would be visited
	// outside a region (tracked identifiers still become calls, nested
	// $state is still rejected) — only the emission wrapping differs.
	if err := v.visitNestedBlock(cand.If); err != nil {
		return i, false, err
	}

	regionNum := v.regionCounter
	v.regionCounter++
	regionVar := fmt.Sprintf("__fictRegion_%d", regionNum)

	var body string
	if v.opts.LazyConditional {
		onlyCons, onlyAlt, exclusive := region.ExclusiveOutputs(cand.If, cand.Outputs)
		if exclusive && cand.If.ChildByFieldName("alternative") != nil {
			body = v.lazyRegionBody(cand, onlyCons, onlyAlt, regionNum)
		} else {
			body = v.plainRegionBody(cand, regionNum)
		}
	} else {
		body = v.plainRegionBody(cand, regionNum)
	}

	alias := v.use(runtime.Memo)
	var replacement strings.Builder
	fmt.Fprintf(&replacement, "const %s = %s(() => {\n%s\n});\n", regionVar, alias, body)
	for _, out := range cand.Outputs {
		fmt.Fprintf(&replacement, "const %s = () => %s().%s;\n", out, regionVar, out)
		frame[out] = true
	}

	v.edits.Splice(cand.Let.StartByte(), cand.If.EndByte(), strings.TrimRight(replacement.String(), "\n"))

	return i + 2, true, nil
}

// plainRegionBody renders Rule D's base emission (§4.4 phase 4): the
// region's own outputs declared bare, the original if/else cloned
// verbatim (with its already-recorded edits applied), and a closing
// object return — an output left unassigned on the branch actually
// taken reads back as undefined, exactly as phase 4 specifies.
func (v *Visitor) plainRegionBody(cand region.Candidate, regionNum int) string {
	declNames := strings.Join(cand.Outputs, ", ")
	ifText := v.edits.RenderRange(v.module.AST.Source, cand.If.StartByte(), cand.If.EndByte())
	return fmt.Sprintf("  let %s;\n  %s\n  return { %s };", declNames, ifText, declNames)
}

// lazyRegionBody renders Rule J's branch-exclusive deferral (§4.4 phase
// 5): the condition is hoisted into a named `__fictCond_K` temporary to
// preserve single-evaluation semantics, and each branch explicitly fills
// the other branch's exclusive outputs with null rather than leaving
// them merely undefined.
func (v *Visitor) lazyRegionBody(cand region.Candidate, onlyCons, onlyAlt []string, regionNum int) string {
	condNode := cand.If.ChildByFieldName("condition")
	consNode := cand.If.ChildByFieldName("consequence")
	altNode := cand.If.ChildByFieldName("alternative")

	condText := v.edits.RenderRange(v.module.AST.Source, condNode.StartByte(), condNode.EndByte())
	consText := v.edits.RenderRange(v.module.AST.Source, consNode.StartByte(), consNode.EndByte())
	altText := v.edits.RenderRange(v.module.AST.Source, altNode.StartByte(), altNode.EndByte())

	condVar := fmt.Sprintf("__fictCond_%d", regionNum)
	consBody := fillBranchNulls(consText, onlyAlt)
	altBody := fillBranchNulls(altText, onlyCons)

	declNames := strings.Join(cand.Outputs, ", ")
	return fmt.Sprintf("  let %s;\n  const %s = %s;\n  if (%s) %s else %s\n  return { %s };",
		declNames, condVar, condText, condVar, consBody, altBody, declNames)
}

// fillBranchNulls inserts `<name> = null;` for every name in missing
// just before blockText's closing brace, so a branch's return object
// property for an output it never assigns is an explicit null rather
// than a merely-undefined bare declaration.
func fillBranchNulls(blockText string, missing []string) string {
	if len(missing) == 0 {
		return blockText
	}
	var fill strings.Builder
	for _, name := range missing {
		fmt.Fprintf(&fill, "%s = null;\n", name)
	}
	idx := strings.LastIndex(blockText, "}")
	if idx < 0 {
		return blockText + fill.String()
	}
	return blockText[:idx] + fill.String() + blockText[idx:]
}
