// Package transform implements stages 3 and 4 of the pipeline: the
// shadow-aware rewriting visitor that turns reactive source constructs
// into runtime calls, JSX lowering, and the region grouper/lazy branch
// optimizer.
//
// fictc never builds a new AST to print — go-tree-sitter's Node is an
// immutable, read-only view with no constructible replacement. Every
// rewrite is instead recorded as a byte-range Edit against the original
// source and applied in one pass at the end, the same "magic string"
// technique bundlers use for source-preserving transforms (see
// evanw-esbuild's approach of tracking original byte offsets through a
// source map, generalized here to direct splicing since fictc has no
// intermediate IR to re-print from).
package transform

import "sort"

// Edit replaces source[Start:End] with Text.
type Edit struct {
	Start uint32
	End   uint32
	Text  string
}

// EditList accumulates Edits for one module compile and applies them in
// a single left-to-right pass.
type EditList struct {
	edits []Edit
}

// Add records an edit. Overlapping edits are resolved at Apply time by
// position, not by the order they were added: the edit that starts
// earliest is kept (the narrower one when two start together), and any
// edit starting inside a kept edit's span is dropped.
func (l *EditList) Add(start, end uint32, text string) {
	l.edits = append(l.edits, Edit{Start: start, End: end, Text: text})
}

// Splice replaces the full span [start,end) with text. Alias for Add
// used at call sites that read more naturally as "splice".
func (l *EditList) Splice(start, end uint32, text string) {
	l.Add(start, end, text)
}

// Len reports how many edits have been recorded.
func (l *EditList) Len() int {
	return len(l.edits)
}

// Apply reconstructs the transformed source by applying every
// non-overlapping edit, in source order, against the original bytes.
func (l *EditList) Apply(source []byte) string {
	sorted := make([]Edit, len(l.edits))
	copy(sorted, l.edits)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		// Narrower edits (added first, during the innermost part of a
		// depth-first walk) win ties by sorting to be processed first;
		// the cursor skip below then causes the wider, later-discovered
		// edit at the same start to be dropped as overlapping.
		return sorted[i].End < sorted[j].End
	})

	var out []byte
	var cursor uint32
	for _, e := range sorted {
		if e.Start < cursor {
			continue // overlaps an edit already applied; drop it
		}
		out = append(out, source[cursor:e.Start]...)
		out = append(out, e.Text...)
		cursor = e.End
	}
	out = append(out, source[cursor:]...)
	return string(out)
}

// RenderRange reconstructs just the [start,end) span of source with
// every already-recorded edit that falls fully inside it applied,
// without consuming or mutating the edit list — used by region grouping
// to clone an already-rewritten statement's text into a synthesized
// memo body.
func (l *EditList) RenderRange(source []byte, start, end uint32) string {
	sorted := make([]Edit, len(l.edits))
	copy(sorted, l.edits)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	var out []byte
	cursor := start
	for _, e := range sorted {
		if e.Start < start || e.End > end || e.Start < cursor {
			continue
		}
		out = append(out, source[cursor:e.Start]...)
		out = append(out, e.Text...)
		cursor = e.End
	}
	out = append(out, source[cursor:end]...)
	return string(out)
}
