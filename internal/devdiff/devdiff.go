// Package devdiff renders a before/after unified diff preview of one
// compile. Neither the compiler nor the CLI calls it; it is a standalone
// helper for callers that want such a preview.
//
// Grounded on the diff-generation/parsing split in the pack's
// services/trace/diff package: a unified-diff string is built line by
// line, then handed to sourcegraph/go-diff to parse back into typed
// hunks for structured rendering, rather than re-deriving hunk
// boundaries by hand.
package devdiff

import (
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// Hunk is one contiguous changed region, mirroring godiff.Hunk's shape
// with only the fields the CLI preview needs.
type Hunk struct {
	OrigLine int
	NewLine  int
	Body     string
}

// Preview is the rendered before/after diff for one file compile.
type Preview struct {
	FilePath string
	Hunks    []Hunk
}

// Generate computes a unified diff between oldContent and newContent and
// parses it into Hunks. Returns a Preview with no hunks if the two are
// identical.
func Generate(filePath, oldContent, newContent string) (*Preview, error) {
	if oldContent == newContent {
		return &Preview{FilePath: filePath}, nil
	}

	unified := unifiedDiff(filePath, oldContent, newContent)
	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(unified))
	if err != nil {
		return nil, fmt.Errorf("parsing generated diff for %s: %w", filePath, err)
	}

	preview := &Preview{FilePath: filePath}
	for _, fd := range fileDiffs {
		for _, h := range fd.Hunks {
			preview.Hunks = append(preview.Hunks, Hunk{
				OrigLine: int(h.OrigStartLine),
				NewLine:  int(h.NewStartLine),
				Body:     string(h.Body),
			})
		}
	}
	return preview, nil
}

// unifiedDiff builds a minimal line-oriented unified diff. It does not
// attempt a minimal edit script (no LCS/Myers pass) — every changed
// line range is emitted as one hunk spanning old-vs-new in full, which
// is adequate for a dev-mode preview of a single-file AOT compile
// (inputs are one module at a time, not arbitrary large diffs).
func unifiedDiff(filePath, oldContent, newContent string) string {
	oldLines := strings.Split(oldContent, "\n")
	newLines := strings.Split(newContent, "\n")

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", filePath)
	fmt.Fprintf(&sb, "+++ b/%s\n", filePath)
	fmt.Fprintf(&sb, "@@ -1,%d +1,%d @@\n", len(oldLines), len(newLines))
	for _, l := range oldLines {
		sb.WriteString("-" + l + "\n")
	}
	for _, l := range newLines {
		sb.WriteString("+" + l + "\n")
	}
	return sb.String()
}
